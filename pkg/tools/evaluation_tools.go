package tools

import (
	"context"
	"fmt"

	"deep-agent/pkg/evaluation"
)

// EvaluatePerformanceArgs are the arguments for evaluate_agent_performance
type EvaluatePerformanceArgs struct {
	AgentName          string   `json:"agent_name" jsonschema:"description=Name of the agent to evaluate"`
	EvaluationCriteria []string `json:"evaluation_criteria,omitempty" jsonschema:"description=Criteria to evaluate against (defaults to the standard set)"`
	TimeWindowHours    float64  `json:"time_window_hours,omitempty" jsonschema:"description=Time window for evaluation in hours (default 24)"`
}

func (t *Toolset) handleEvaluatePerformance(ctx context.Context, raw map[string]interface{}) (string, error) {
	var args EvaluatePerformanceArgs
	if err := decodeArgs(raw, &args); err != nil {
		return "", err
	}

	criteria := make([]evaluation.Criterion, 0, len(args.EvaluationCriteria))
	for _, c := range args.EvaluationCriteria {
		criteria = append(criteria, evaluation.Criterion(c))
	}

	result, err := t.evaluator.Evaluate(ctx, args.AgentName, criteria, args.TimeWindowHours)
	if err != nil {
		return "", fmt.Errorf("error evaluating agent performance: %w", err)
	}

	return jsonResult(map[string]interface{}{
		"success":    true,
		"evaluation": result,
	})
}

// TriggerRefinementArgs are the arguments for should_trigger_system_refinement
type TriggerRefinementArgs struct {
	AgentName                    string  `json:"agent_name" jsonschema:"description=Name of the agent to check"`
	PerformanceThreshold         float64 `json:"performance_threshold,omitempty" jsonschema:"description=Minimum performance score to avoid refinement (default 0.8)"`
	TimeSinceLastRefinementHours float64 `json:"time_since_last_refinement_hours,omitempty" jsonschema:"description=Minimum hours between refinements (default 24)"`
}

func (t *Toolset) handleTriggerRefinement(ctx context.Context, raw map[string]interface{}) (string, error) {
	var args TriggerRefinementArgs
	if err := decodeArgs(raw, &args); err != nil {
		return "", err
	}
	if args.PerformanceThreshold == 0 {
		args.PerformanceThreshold = t.evaluator.PerformanceThreshold()
	}
	if args.TimeSinceLastRefinementHours == 0 {
		args.TimeSinceLastRefinementHours = 24
	}

	decision, err := t.trigger.ShouldTrigger(ctx, args.AgentName, args.PerformanceThreshold, args.TimeSinceLastRefinementHours)
	if err != nil {
		return "", fmt.Errorf("error checking refinement trigger: %w", err)
	}

	return jsonResult(map[string]interface{}{
		"success":  true,
		"decision": decision,
	})
}

// AddEvaluationTasksArgs are the arguments for add_evaluation_tasks_to_todos
type AddEvaluationTasksArgs struct {
	AgentName         string                      `json:"agent_name" jsonschema:"description=Name of the agent to add tasks for"`
	EvaluationResults evaluation.EvaluationResult `json:"evaluation_results" jsonschema:"description=Results from a prior performance evaluation"`
}

func (t *Toolset) handleAddEvaluationTasks(ctx context.Context, raw map[string]interface{}) (string, error) {
	var args AddEvaluationTasksArgs
	if err := decodeArgs(raw, &args); err != nil {
		return "", err
	}

	tasks := evaluation.ImprovementTasks(&args.EvaluationResults)

	return jsonResult(map[string]interface{}{
		"success":     true,
		"message":     fmt.Sprintf("Added %d evaluation tasks for %s", len(tasks), args.AgentName),
		"tasks_added": tasks,
		"agent_name":  args.AgentName,
	})
}

// MonitorHealthArgs are the arguments for monitor_system_health
type MonitorHealthArgs struct {
	Components     []string `json:"components,omitempty" jsonschema:"description=Agent names to score (defaults to the known agents)"`
	AlertThreshold float64  `json:"alert_threshold,omitempty" jsonschema:"description=Score below which an alert is raised (default 0.7)"`
}

// defaultHealthComponents are scored when a caller names none
var defaultHealthComponents = []string{"research_agent", "database_agent", "coding_agent", "workflow_agent"}

func (t *Toolset) handleMonitorHealth(ctx context.Context, raw map[string]interface{}) (string, error) {
	var args MonitorHealthArgs
	if err := decodeArgs(raw, &args); err != nil {
		return "", err
	}
	if args.AlertThreshold == 0 {
		args.AlertThreshold = 0.7
	}
	if len(args.Components) == 0 {
		args.Components = defaultHealthComponents
	}

	scores := make(map[string]float64, len(args.Components))
	for _, component := range args.Components {
		result, err := t.evaluator.Evaluate(ctx, component, nil, 24)
		if err != nil {
			return "", fmt.Errorf("error monitoring system health: %w", err)
		}
		scores[component] = result.OverallScore
	}

	report := evaluation.MonitorHealth(scores, args.AlertThreshold)

	return jsonResult(map[string]interface{}{
		"success":       true,
		"health_status": report,
	})
}

// PerformanceTrendsArgs are the arguments for get_performance_trends
type PerformanceTrendsArgs struct {
	AgentName string `json:"agent_name" jsonschema:"description=Name of the agent to analyze"`
	Days      int    `json:"days,omitempty" jsonschema:"description=Number of days to analyze (default 7)"`
	Metric    string `json:"metric,omitempty" jsonschema:"description=Metric to analyze (default success_rate)"`
}

func (t *Toolset) handlePerformanceTrends(ctx context.Context, raw map[string]interface{}) (string, error) {
	var args PerformanceTrendsArgs
	if err := decodeArgs(raw, &args); err != nil {
		return "", err
	}
	if args.Days <= 0 {
		args.Days = 7
	}
	if args.Metric == "" {
		args.Metric = "success_rate"
	}

	series, err := t.db.MetricSeries(ctx, args.AgentName, args.Metric, args.Days)
	if err != nil {
		return "", fmt.Errorf("error getting performance trends: %w", err)
	}

	points := make([]evaluation.TrendPoint, 0, len(series))
	for _, p := range series {
		points = append(points, evaluation.TrendPoint{Date: p.Date, Value: p.Value})
	}

	report := evaluation.Trends(points, args.Days)

	return jsonResult(map[string]interface{}{
		"success":         true,
		"metric_analyzed": args.Metric,
		"trends":          report,
	})
}
