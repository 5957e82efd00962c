package evaluation

import (
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"

	"deep-agent/pkg/utils"
)

// Immediate-trigger tuning. The scan window and thresholds are fixed: the
// tick must stay bounded regardless of conversation length.
const (
	recentMessageWindow  = 10
	recentErrorThreshold = 3
	systemTodoThreshold  = 2
)

// errorKeywords mark a message as an error signal (case-insensitive)
var errorKeywords = []string{"error", "failed", "exception", "timeout", "unable to"}

// systemTodoKeywords mark a todo as a system-improvement signal
var systemTodoKeywords = []string{"system", "improve", "refine"}

// SchedulerConfig holds the evaluation cadence settings
type SchedulerConfig struct {
	EvaluationIntervalHours float64
	PerformanceThreshold    float64
	AutoTriggerRefinement   bool
}

// DefaultSchedulerConfig returns the default scheduler configuration
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		EvaluationIntervalHours: 24,
		PerformanceThreshold:    0.8,
		AutoTriggerRefinement:   true,
	}
}

// SchedulerState is the scheduler's mutable state, exclusively owned by one
// Scheduler instance.
type SchedulerState struct {
	LastEvaluationTime time.Time `json:"last_evaluation_time"`
	EvaluationCount    int       `json:"evaluation_count"`
}

// TickResult reports what one tick decided. Internal failures surface here as
// a degraded result instead of an error: the tick is fail-open and never
// blocks the request it runs on.
type TickResult struct {
	Evaluated        bool    `json:"evaluated"`
	ImmediateTrigger bool    `json:"immediate_trigger"`
	HoursSinceLast   float64 `json:"hours_since_last"`
	TasksAdded       int     `json:"tasks_added"`
	Degraded         bool    `json:"degraded"`
	DegradedReason   string  `json:"degraded_reason,omitempty"`
}

// Scheduler is the per-request evaluation gate. On every model-request tick
// it inspects the recent conversation and the agent's todo list for error or
// improvement signals and either lets time pass or injects evaluation tasks.
//
// A Scheduler belongs to a single agent's turn loop and is not safe for
// concurrent use; give each agent instance its own Scheduler or add external
// synchronization.
type Scheduler struct {
	config SchedulerConfig
	state  SchedulerState
	logger utils.ExtendedLogger
	now    func() time.Time
}

// NewScheduler creates a scheduler with the given cadence configuration
func NewScheduler(config SchedulerConfig, logger utils.ExtendedLogger) *Scheduler {
	if config.EvaluationIntervalHours <= 0 {
		config.EvaluationIntervalHours = 24
	}
	if config.PerformanceThreshold <= 0 {
		config.PerformanceThreshold = 0.8
	}
	return &Scheduler{
		config: config,
		logger: logger,
		now:    time.Now,
	}
}

// Config returns the scheduler's configuration
func (s *Scheduler) Config() SchedulerConfig {
	return s.config
}

// State returns a copy of the scheduler's mutable state
func (s *Scheduler) State() SchedulerState {
	return s.state
}

// Tick runs the evaluation gate once for the current model request. It is
// synchronous, bounded, and never returns an error: failures while injecting
// tasks are reported in the result and the request proceeds unmodified.
func (s *Scheduler) Tick(messages []llms.MessageContent, todos TodoList) TickResult {
	now := s.now()
	hoursSinceLast := now.Sub(s.state.LastEvaluationTime).Hours()

	result := TickResult{
		ImmediateTrigger: s.shouldTriggerImmediate(messages, todos),
		HoursSinceLast:   hoursSinceLast,
	}

	if hoursSinceLast < s.config.EvaluationIntervalHours && !result.ImmediateTrigger {
		return result
	}

	result.Evaluated = true
	tasks := s.evaluationTasks()

	if todos == nil {
		result.Degraded = true
		result.DegradedReason = "no todo list bound to scheduler"
	} else if err := todos.Append(tasks...); err != nil {
		result.Degraded = true
		result.DegradedReason = fmt.Sprintf("failed to append evaluation tasks: %v", err)
		if s.logger != nil {
			s.logger.WithError(err).Warn("evaluation task injection failed, proceeding without")
		}
	} else {
		result.TasksAdded = len(tasks)
	}

	// State advances even on a degraded tick so a broken todo sink cannot
	// turn every subsequent request into an injection attempt.
	s.state.LastEvaluationTime = now
	s.state.EvaluationCount++

	if s.logger != nil {
		s.logger.WithFields(map[string]interface{}{
			"immediate_trigger": result.ImmediateTrigger,
			"hours_since_last":  result.HoursSinceLast,
			"tasks_added":       result.TasksAdded,
			"evaluation_count":  s.state.EvaluationCount,
		}).Debug("evaluation tick fired")
	}

	return result
}

// shouldTriggerImmediate checks the recent conversation and todo list for
// signals that evaluation should not wait for the interval.
func (s *Scheduler) shouldTriggerImmediate(messages []llms.MessageContent, todos TodoList) bool {
	recent := messages
	if len(recent) > recentMessageWindow {
		recent = recent[len(recent)-recentMessageWindow:]
	}

	errorCount := 0
	for _, message := range recent {
		if containsAny(messageText(message), errorKeywords) {
			errorCount++
		}
	}
	if errorCount >= recentErrorThreshold {
		return true
	}

	if todos == nil {
		return false
	}

	systemTodos := 0
	for _, todo := range todos.Items() {
		if containsAny(todo.Content, systemTodoKeywords) {
			systemTodos++
		}
	}
	return systemTodos >= systemTodoThreshold
}

// evaluationTasks builds the fixed task set injected on an evaluation tick
func (s *Scheduler) evaluationTasks() []TodoTask {
	tasks := []TodoTask{
		{
			Content:  "Conduct periodic system performance evaluation using evaluation-agent",
			Status:   TodoStatusPending,
			Priority: TodoPriorityMedium,
			Category: CategoryEvaluation,
		},
		{
			Content:  "Monitor system health and performance metrics using evaluation-agent",
			Status:   TodoStatusPending,
			Priority: TodoPriorityMedium,
			Category: CategoryEvaluation,
		},
	}

	if s.config.AutoTriggerRefinement {
		tasks = append(tasks, TodoTask{
			Content:  "Check if system refinement is needed using evaluation-agent",
			Status:   TodoStatusPending,
			Priority: TodoPriorityMedium,
			Category: CategoryEvaluation,
		})
	}

	return tasks
}

// messageText flattens the text parts of a message for keyword scanning
func messageText(message llms.MessageContent) string {
	var sb strings.Builder
	for _, part := range message.Parts {
		if text, ok := part.(llms.TextContent); ok {
			sb.WriteString(text.Text)
			sb.WriteString(" ")
		}
	}
	return sb.String()
}

// containsAny reports whether text contains any keyword, case-insensitively
func containsAny(text string, keywords []string) bool {
	lowered := strings.ToLower(text)
	for _, keyword := range keywords {
		if strings.Contains(lowered, keyword) {
			return true
		}
	}
	return false
}
