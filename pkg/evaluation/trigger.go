package evaluation

import (
	"context"
	"fmt"
	"time"

	"deep-agent/pkg/utils"
)

// TriggerDecision reports whether refinement should run now and why
type TriggerDecision struct {
	ShouldTrigger        bool     `json:"should_trigger"`
	AgentName            string   `json:"agent_name"`
	OverallScore         float64  `json:"overall_score"`
	PerformanceThreshold float64  `json:"performance_threshold"`
	// HoursSinceLastRefinement is nil when the agent has no override history,
	// in which case the elapsed-time condition holds unconditionally.
	HoursSinceLastRefinement *float64 `json:"time_since_last_refinement_hours,omitempty"`
	Reasons                  []string `json:"trigger_reasons"`
}

// Trigger decides whether prompt refinement should run for an agent. Either
// of two conditions is sufficient: the overall score is below the threshold,
// or enough time has passed since the last refinement recorded in the
// override store's history.
type Trigger struct {
	evaluator *Evaluator
	history   OverrideHistory
	logger    utils.ExtendedLogger
	now       func() time.Time
}

// NewTrigger creates a refinement trigger
func NewTrigger(evaluator *Evaluator, history OverrideHistory, logger utils.ExtendedLogger) (*Trigger, error) {
	if evaluator == nil {
		return nil, fmt.Errorf("evaluator is required")
	}
	if history == nil {
		return nil, fmt.Errorf("override history is required")
	}
	return &Trigger{
		evaluator: evaluator,
		history:   history,
		logger:    logger,
		now:       time.Now,
	}, nil
}

// ShouldTrigger evaluates the agent's current performance and applies the
// trigger decision rule. minHoursSinceLastRefinement bounds how often
// time-based refinement can fire.
func (t *Trigger) ShouldTrigger(ctx context.Context, agentName string, performanceThreshold, minHoursSinceLastRefinement float64) (*TriggerDecision, error) {
	result, err := t.evaluator.Evaluate(ctx, agentName, nil, 24)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate %s for trigger decision: %w", agentName, err)
	}
	return t.Decide(ctx, agentName, result.OverallScore, performanceThreshold, minHoursSinceLastRefinement)
}

// Decide applies the decision rule to an already-computed overall score
func (t *Trigger) Decide(ctx context.Context, agentName string, overallScore, performanceThreshold, minHoursSinceLastRefinement float64) (*TriggerDecision, error) {
	if agentName == "" {
		return nil, fmt.Errorf("agent name is required")
	}

	decision := &TriggerDecision{
		AgentName:            agentName,
		OverallScore:         overallScore,
		PerformanceThreshold: performanceThreshold,
	}

	if overallScore < performanceThreshold {
		decision.ShouldTrigger = true
		decision.Reasons = append(decision.Reasons,
			fmt.Sprintf("Performance score %.2f below threshold %.2f", overallScore, performanceThreshold))
	}

	last, err := t.history.LatestOverrideTime(ctx, agentName)
	if err != nil {
		return nil, fmt.Errorf("failed to query override history for %s: %w", agentName, err)
	}

	if last == nil {
		decision.ShouldTrigger = true
		decision.Reasons = append(decision.Reasons,
			fmt.Sprintf("No prior refinement recorded for %s", agentName))
	} else {
		hours := t.now().Sub(*last).Hours()
		decision.HoursSinceLastRefinement = &hours
		if hours >= minHoursSinceLastRefinement {
			decision.ShouldTrigger = true
			decision.Reasons = append(decision.Reasons,
				fmt.Sprintf("Sufficient time (%.1fh) since last refinement", hours))
		}
	}

	if t.logger != nil {
		t.logger.WithFields(map[string]interface{}{
			"agent_name":     agentName,
			"should_trigger": decision.ShouldTrigger,
			"reasons":        decision.Reasons,
		}).Debug("refinement trigger decided")
	}

	return decision, nil
}
