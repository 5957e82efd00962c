package tools

import (
	"context"
	"fmt"

	"deep-agent/pkg/database"
	"deep-agent/pkg/evaluation"
)

// AnalyzePerformanceArgs are the arguments for analyze_system_performance
type AnalyzePerformanceArgs struct {
	AgentName       string  `json:"agent_name" jsonschema:"description=Name of the agent to analyze"`
	TimeWindowHours float64 `json:"time_window_hours,omitempty" jsonschema:"description=Time window for analysis in hours (default 24)"`
}

func (t *Toolset) handleAnalyzePerformance(ctx context.Context, raw map[string]interface{}) (string, error) {
	var args AnalyzePerformanceArgs
	if err := decodeArgs(raw, &args); err != nil {
		return "", err
	}

	result, err := t.evaluator.Evaluate(ctx, args.AgentName, nil, args.TimeWindowHours)
	if err != nil {
		return "", fmt.Errorf("error analyzing system performance: %w", err)
	}

	targets := make([]evaluation.Improvement, 0, len(result.PriorityAreas))
	for _, area := range result.PriorityAreas {
		if imp, ok := improvementForCriterion(area); ok {
			targets = append(targets, imp)
		}
	}

	return jsonResult(map[string]interface{}{
		"success":             true,
		"analysis":            result,
		"improvement_targets": targets,
	})
}

// improvementForCriterion maps a failing criterion to a refinement target tag
func improvementForCriterion(c evaluation.Criterion) (evaluation.Improvement, bool) {
	switch c {
	case evaluation.CriterionResponseQuality:
		return evaluation.ImprovementClarity, true
	case evaluation.CriterionErrorHandling:
		return evaluation.ImprovementErrorHandling, true
	case evaluation.CriterionSuccessRate:
		return evaluation.ImprovementReasoning, true
	default:
		return "", false
	}
}

// ResearchBestPracticesArgs are the arguments for research_agent_best_practices
type ResearchBestPracticesArgs struct {
	ResearchTopics []string `json:"research_topics,omitempty" jsonschema:"description=Topics to research (defaults to the standard topic set)"`
}

func (t *Toolset) handleResearchBestPractices(ctx context.Context, raw map[string]interface{}) (string, error) {
	var args ResearchBestPracticesArgs
	if err := decodeArgs(raw, &args); err != nil {
		return "", err
	}

	findings, err := t.research.Search(ctx, args.ResearchTopics)
	if err != nil {
		return "", fmt.Errorf("error researching best practices: %w", err)
	}

	return jsonResult(map[string]interface{}{
		"success":        true,
		"findings":       findings,
		"findings_count": len(findings),
	})
}

// GeneratePromptArgs are the arguments for generate_improved_system_prompt
type GeneratePromptArgs struct {
	AgentName           string                       `json:"agent_name" jsonschema:"description=Name of the agent the prompt belongs to"`
	CurrentPrompt       string                       `json:"current_prompt" jsonschema:"description=The prompt text to improve"`
	PerformanceAnalysis *evaluation.EvaluationResult `json:"performance_analysis,omitempty" jsonschema:"description=Evaluation result driving the refinement"`
	ResearchFindings    []evaluation.Finding         `json:"research_findings,omitempty" jsonschema:"description=Research findings informing the refinement"`
	ImprovementTargets  []string                     `json:"improvement_targets,omitempty" jsonschema:"description=Improvement tags to apply (clarity / error_handling / reasoning)"`
}

func (t *Toolset) handleGeneratePrompt(ctx context.Context, raw map[string]interface{}) (string, error) {
	var args GeneratePromptArgs
	if err := decodeArgs(raw, &args); err != nil {
		return "", err
	}
	if args.CurrentPrompt == "" {
		return "", fmt.Errorf("current_prompt is required")
	}

	targets := make([]evaluation.Improvement, 0, len(args.ImprovementTargets))
	for _, target := range args.ImprovementTargets {
		targets = append(targets, evaluation.Improvement(target))
	}

	result := evaluation.Refine(args.CurrentPrompt, args.PerformanceAnalysis, args.ResearchFindings, targets)

	return jsonResult(map[string]interface{}{
		"success":         true,
		"agent_name":      args.AgentName,
		"improved_prompt": result.ImprovedPrompt,
		"change_summary":  result.ChangeSummary,
	})
}

// SaveOverrideArgs are the arguments for save_system_prompt_override
type SaveOverrideArgs struct {
	AgentName       string  `json:"agent_name" jsonschema:"description=Name of the agent the override applies to"`
	OriginalPrompt  string  `json:"original_prompt,omitempty" jsonschema:"description=The prompt being replaced"`
	ImprovedPrompt  string  `json:"improved_prompt" jsonschema:"description=The new prompt text"`
	ChangeReason    string  `json:"change_reason" jsonschema:"description=Why the prompt was changed"`
	ConfidenceScore float64 `json:"confidence_score,omitempty" jsonschema:"description=Confidence in the improvement between 0 and 1 (default 0.8)"`
}

func (t *Toolset) handleSaveOverride(ctx context.Context, raw map[string]interface{}) (string, error) {
	var args SaveOverrideArgs
	if err := decodeArgs(raw, &args); err != nil {
		return "", err
	}
	if args.ConfidenceScore == 0 {
		args.ConfidenceScore = 0.8
	}

	req := &database.SaveOverrideRequest{
		AgentName:       args.AgentName,
		ImprovedPrompt:  args.ImprovedPrompt,
		ChangeReason:    args.ChangeReason,
		ConfidenceScore: args.ConfidenceScore,
	}
	if args.OriginalPrompt != "" {
		req.OriginalPrompt = &args.OriginalPrompt
	}

	override, err := t.overrides.Save(ctx, req)
	if err != nil {
		return "", fmt.Errorf("error saving system prompt override: %w", err)
	}

	return jsonResult(map[string]interface{}{
		"success":     true,
		"message":     fmt.Sprintf("System prompt override saved for %s", override.AgentName),
		"override_id": override.ID,
		"override":    override,
	})
}

// GetOverrideArgs are the arguments for get_system_prompt_override
type GetOverrideArgs struct {
	AgentName string `json:"agent_name" jsonschema:"description=Name of the agent to look up"`
}

func (t *Toolset) handleGetOverride(ctx context.Context, raw map[string]interface{}) (string, error) {
	var args GetOverrideArgs
	if err := decodeArgs(raw, &args); err != nil {
		return "", err
	}

	override, err := t.overrides.Active(ctx, args.AgentName)
	if err != nil {
		return "", fmt.Errorf("error getting system prompt override: %w", err)
	}
	if override == nil {
		return jsonResult(map[string]interface{}{
			"success":      true,
			"has_override": false,
			"message":      fmt.Sprintf("No active override for %s", args.AgentName),
		})
	}

	return jsonResult(map[string]interface{}{
		"success":      true,
		"has_override": true,
		"override":     override,
	})
}

// ListOverridesArgs are the arguments for list_system_prompt_overrides
type ListOverridesArgs struct{}

func (t *Toolset) handleListOverrides(ctx context.Context, raw map[string]interface{}) (string, error) {
	overrides, err := t.overrides.List(ctx)
	if err != nil {
		return "", fmt.Errorf("error listing system prompt overrides: %w", err)
	}

	return jsonResult(map[string]interface{}{
		"success":   true,
		"count":     len(overrides),
		"overrides": overrides,
	})
}

// RemoveOverrideArgs are the arguments for remove_system_prompt_override
type RemoveOverrideArgs struct {
	AgentName string `json:"agent_name" jsonschema:"description=Name of the agent to revert to its default prompt"`
}

func (t *Toolset) handleRemoveOverride(ctx context.Context, raw map[string]interface{}) (string, error) {
	var args RemoveOverrideArgs
	if err := decodeArgs(raw, &args); err != nil {
		return "", err
	}

	removed, err := t.overrides.Remove(ctx, args.AgentName)
	if err != nil {
		return "", fmt.Errorf("error removing system prompt override: %w", err)
	}

	message := fmt.Sprintf("No active override to remove for %s", args.AgentName)
	if removed {
		message = fmt.Sprintf("Override removed, %s reverted to default prompt", args.AgentName)
	}

	return jsonResult(map[string]interface{}{
		"success":    true,
		"removed":    removed,
		"agent_name": args.AgentName,
		"message":    message,
	})
}
