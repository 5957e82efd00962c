package evaluation

import (
	"context"
	"time"
)

// Metric name constants. These are the keys a MetricsSource is expected to
// populate for a time window.
const (
	MetricTotalTasks      = "total_tasks"
	MetricSuccessfulTasks = "successful_tasks"
	MetricFailedTasks     = "failed_tasks"
	MetricAvgResponseTime = "average_response_time"
	MetricUserSatisfaction = "user_satisfaction"
	MetricErrorRate       = "error_rate"
)

// Criterion is a named, independently-scored dimension of agent performance
type Criterion string

const (
	CriterionSuccessRate     Criterion = "success_rate"
	CriterionResponseQuality Criterion = "response_quality"
	CriterionEfficiency      Criterion = "efficiency"
	CriterionErrorHandling   Criterion = "error_handling"
)

// Criterion status constants
const (
	StatusGood             = "good"
	StatusNeedsImprovement = "needs_improvement"
)

// CriterionResult is the scoring outcome for a single criterion
type CriterionResult struct {
	Score          float64 `json:"score"`
	Threshold      float64 `json:"threshold"`
	Status         string  `json:"status"`
	Recommendation string  `json:"recommendation"`
}

// RecommendedAction is a concrete follow-up suggested by an evaluation
type RecommendedAction struct {
	Action         string `json:"action"`
	Priority       string `json:"priority"`
	Description    string `json:"description"`
	ExpectedImpact string `json:"expected_impact"`
}

// EvaluationResult is the full outcome of evaluating one agent over a window.
// It is transient: nothing in this package persists it.
type EvaluationResult struct {
	AgentName          string                       `json:"agent_name"`
	EvaluationTime     time.Time                    `json:"evaluation_timestamp"`
	TimeWindowHours    float64                      `json:"time_window_hours"`
	Metrics            map[string]float64           `json:"metrics"`
	CriteriaEvaluation map[Criterion]CriterionResult `json:"criteria_evaluation"`
	OverallScore       float64                      `json:"overall_score"`
	ImprovementNeeded  bool                         `json:"improvement_needed"`
	PriorityAreas      []Criterion                  `json:"priority_areas"`
	RecommendedActions []RecommendedAction          `json:"recommended_actions"`
}

// Todo status constants
type TodoStatus string

const (
	TodoStatusPending    TodoStatus = "pending"
	TodoStatusInProgress TodoStatus = "in_progress"
	TodoStatusDone       TodoStatus = "done"
)

// Todo priority constants
type TodoPriority string

const (
	TodoPriorityLow    TodoPriority = "low"
	TodoPriorityMedium TodoPriority = "medium"
	TodoPriorityHigh   TodoPriority = "high"
)

// Todo category tags used by this package
const (
	CategoryEvaluation        = "evaluation"
	CategorySystemImprovement = "system_improvement"
)

// TodoTask is one entry on an agent's planning list. The scheduler only ever
// appends tasks; completing them belongs to the agent's own loop.
type TodoTask struct {
	Content  string       `json:"content"`
	Status   TodoStatus   `json:"status"`
	Priority TodoPriority `json:"priority"`
	Category string       `json:"category"`
}

// TodoList is the per-agent planning list the scheduler inspects and appends
// to. The agent's own loop owns task completion.
type TodoList interface {
	Items() []TodoTask
	Append(tasks ...TodoTask) error
}

// MetricsSource fetches raw windowed metrics for an agent. The sqlite-backed
// implementation lives in pkg/metrics; tests inject fakes.
type MetricsSource interface {
	Fetch(ctx context.Context, agentName string, window time.Duration) (map[string]float64, error)
}

// OverrideHistory exposes the override store's history timestamps to the
// refinement trigger. *database.SQLiteDB satisfies it.
type OverrideHistory interface {
	LatestOverrideTime(ctx context.Context, agentName string) (*time.Time, error)
}
