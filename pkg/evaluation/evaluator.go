package evaluation

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"deep-agent/pkg/utils"
)

// DefaultCriteria are evaluated when a caller supplies none
var DefaultCriteria = []Criterion{
	CriterionSuccessRate,
	CriterionResponseQuality,
	CriterionEfficiency,
	CriterionErrorHandling,
}

// defaultThresholds are the per-criterion acceptance thresholds
var defaultThresholds = map[Criterion]float64{
	CriterionSuccessRate:     0.90,
	CriterionResponseQuality: 0.85,
	CriterionEfficiency:      0.80,
	CriterionErrorHandling:   0.85,
}

// criterionRecommendations maps each criterion to its canned recommendation
// for the good and needs-improvement cases.
var criterionRecommendations = map[Criterion][2]string{
	CriterionSuccessRate:     {"Maintain current performance", "Focus on task completion and accuracy"},
	CriterionResponseQuality: {"Minor improvements possible", "Improve response structure and relevance"},
	CriterionEfficiency:      {"Maintain current performance", "Optimize response generation"},
	CriterionErrorHandling:   {"Maintain current performance", "Improve error recovery mechanisms"},
}

// efficiencyTargetSeconds is the response time that earns a full efficiency
// score; slower averages decay proportionally.
const efficiencyTargetSeconds = 2.0

// EvaluatorConfig holds evaluator tuning
type EvaluatorConfig struct {
	// PerformanceThreshold is the overall score below which improvement is
	// considered needed. Defaults to 0.8.
	PerformanceThreshold float64

	// Thresholds overrides per-criterion thresholds; missing criteria use
	// the defaults.
	Thresholds map[Criterion]float64
}

// DefaultEvaluatorConfig returns the default evaluator configuration
func DefaultEvaluatorConfig() EvaluatorConfig {
	return EvaluatorConfig{PerformanceThreshold: 0.8}
}

// Evaluator scores agent performance over a time window against weighted
// criteria. It is a pure read/compute component: it never mutates the
// override store or scheduler state.
type Evaluator struct {
	metrics    MetricsSource
	config     EvaluatorConfig
	thresholds map[Criterion]float64
	logger     utils.ExtendedLogger
}

// NewEvaluator creates a new evaluator over the given metrics source
func NewEvaluator(metrics MetricsSource, config EvaluatorConfig, logger utils.ExtendedLogger) (*Evaluator, error) {
	if metrics == nil {
		return nil, fmt.Errorf("metrics source is required")
	}
	if config.PerformanceThreshold == 0 {
		config.PerformanceThreshold = 0.8
	}
	if config.PerformanceThreshold < 0 || config.PerformanceThreshold > 1 {
		return nil, fmt.Errorf("performance threshold must be in [0,1], got %v", config.PerformanceThreshold)
	}

	thresholds := make(map[Criterion]float64, len(defaultThresholds))
	for c, t := range defaultThresholds {
		thresholds[c] = t
	}
	for c, t := range config.Thresholds {
		thresholds[c] = t
	}

	return &Evaluator{
		metrics:    metrics,
		config:     config,
		thresholds: thresholds,
		logger:     logger,
	}, nil
}

// PerformanceThreshold returns the configured overall threshold
func (e *Evaluator) PerformanceThreshold() float64 {
	return e.config.PerformanceThreshold
}

// Evaluate scores an agent against the given criteria over the trailing time
// window. An empty criteria list evaluates the default set. Unknown criteria
// are contract violations and produce an error before any metrics fetch.
func (e *Evaluator) Evaluate(ctx context.Context, agentName string, criteria []Criterion, timeWindowHours float64) (*EvaluationResult, error) {
	if agentName == "" {
		return nil, fmt.Errorf("agent name is required")
	}
	if len(criteria) == 0 {
		criteria = DefaultCriteria
	}
	for _, c := range criteria {
		if _, ok := e.thresholds[c]; !ok {
			return nil, fmt.Errorf("unknown evaluation criterion: %s", c)
		}
	}
	if timeWindowHours <= 0 {
		timeWindowHours = 24
	}

	window := time.Duration(timeWindowHours * float64(time.Hour))
	metrics, err := e.metrics.Fetch(ctx, agentName, window)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch metrics for %s: %w", agentName, err)
	}

	result := &EvaluationResult{
		AgentName:          agentName,
		EvaluationTime:     time.Now().UTC(),
		TimeWindowHours:    timeWindowHours,
		Metrics:            metrics,
		CriteriaEvaluation: make(map[Criterion]CriterionResult, len(criteria)),
	}

	var sum float64
	anyBelow := false
	for _, criterion := range criteria {
		score := scoreCriterion(criterion, metrics)
		threshold := e.thresholds[criterion]

		status := StatusGood
		if score < threshold {
			status = StatusNeedsImprovement
			anyBelow = true
		}

		result.CriteriaEvaluation[criterion] = CriterionResult{
			Score:          score,
			Threshold:      threshold,
			Status:         status,
			Recommendation: recommendationFor(criterion, status),
		}
		sum += score
	}

	result.OverallScore = clamp01(sum / float64(len(criteria)))
	result.ImprovementNeeded = result.OverallScore < e.config.PerformanceThreshold || anyBelow
	result.PriorityAreas = priorityAreas(result.CriteriaEvaluation)
	result.RecommendedActions = recommendedActions(result.PriorityAreas)

	if e.logger != nil {
		e.logger.WithFields(map[string]interface{}{
			"agent_name":         agentName,
			"overall_score":      result.OverallScore,
			"improvement_needed": result.ImprovementNeeded,
			"priority_areas":     result.PriorityAreas,
		}).Debug("agent performance evaluated")
	}

	return result, nil
}

// scoreCriterion derives one criterion score from the raw window metrics
func scoreCriterion(criterion Criterion, metrics map[string]float64) float64 {
	switch criterion {
	case CriterionSuccessRate:
		total := metrics[MetricTotalTasks]
		if total <= 0 {
			return 0
		}
		return clamp01(metrics[MetricSuccessfulTasks] / total)
	case CriterionResponseQuality:
		return clamp01(metrics[MetricUserSatisfaction])
	case CriterionEfficiency:
		avg := metrics[MetricAvgResponseTime]
		if avg <= efficiencyTargetSeconds {
			if metrics[MetricTotalTasks] <= 0 {
				return 0
			}
			return 1
		}
		return clamp01(efficiencyTargetSeconds / avg)
	case CriterionErrorHandling:
		if metrics[MetricTotalTasks] <= 0 {
			return 0
		}
		return clamp01(1 - metrics[MetricErrorRate])
	default:
		return 0
	}
}

// recommendationFor returns the canned recommendation for a criterion status
func recommendationFor(criterion Criterion, status string) string {
	recs, ok := criterionRecommendations[criterion]
	if !ok {
		return ""
	}
	if status == StatusGood {
		return recs[0]
	}
	return recs[1]
}

// priorityAreas lists failing criteria ordered by shortfall, worst first.
// Ties break alphabetically so results are stable.
func priorityAreas(results map[Criterion]CriterionResult) []Criterion {
	type shortfall struct {
		criterion Criterion
		gap       float64
	}

	var failing []shortfall
	for criterion, r := range results {
		if r.Status == StatusNeedsImprovement {
			failing = append(failing, shortfall{criterion, r.Threshold - r.Score})
		}
	}

	sort.Slice(failing, func(i, j int) bool {
		if failing[i].gap != failing[j].gap {
			return failing[i].gap > failing[j].gap
		}
		return failing[i].criterion < failing[j].criterion
	})

	areas := make([]Criterion, 0, len(failing))
	for _, f := range failing {
		areas = append(areas, f.criterion)
	}
	return areas
}

// recommendedActions derives follow-up actions from the priority areas
func recommendedActions(areas []Criterion) []RecommendedAction {
	if len(areas) == 0 {
		return nil
	}

	var promptAreas []string
	needsToolWork := false
	for _, area := range areas {
		switch area {
		case CriterionEfficiency:
			needsToolWork = true
		default:
			promptAreas = append(promptAreas, string(area))
		}
	}

	var actions []RecommendedAction
	if len(promptAreas) > 0 {
		actions = append(actions, RecommendedAction{
			Action:         "system_prompt_refinement",
			Priority:       "high",
			Description:    fmt.Sprintf("Refine system prompt to improve %s", strings.Join(promptAreas, " and ")),
			ExpectedImpact: "medium",
		})
	}
	if needsToolWork {
		actions = append(actions, RecommendedAction{
			Action:         "tool_optimization",
			Priority:       "medium",
			Description:    "Optimize tool usage patterns",
			ExpectedImpact: "low",
		})
	}
	return actions
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
