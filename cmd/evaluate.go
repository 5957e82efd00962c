package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"deep-agent/pkg/evaluation"
)

// evaluateCmd runs a one-shot performance evaluation against the local store
var evaluateCmd = &cobra.Command{
	Use:   "evaluate [agent-name]",
	Short: "Evaluate an agent's performance from logged interactions",
	Long: `Evaluate an agent's recent performance against the standard criteria and
print the scored result as JSON.

Examples:
  deep-agent evaluate research_agent                  # Score over the last 24 hours
  deep-agent evaluate research_agent --window 48      # Score over the last 48 hours
  deep-agent evaluate research_agent --check-trigger  # Also print the refinement trigger decision`,
	Args: cobra.ExactArgs(1),
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().Float64("window", 24, "evaluation time window in hours")
	evaluateCmd.Flags().StringSlice("criteria", nil, "criteria to evaluate (default: the standard set)")
	evaluateCmd.Flags().Bool("check-trigger", false, "also print the refinement trigger decision")
	evaluateCmd.Flags().Float64("threshold", 0.8, "performance threshold for the trigger decision")
	evaluateCmd.Flags().Float64("min-hours", 24, "minimum hours between refinements for the trigger decision")
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	agentName := args[0]
	window, _ := cmd.Flags().GetFloat64("window")
	criteriaNames, _ := cmd.Flags().GetStringSlice("criteria")

	comps, cleanup, err := buildComponents()
	if err != nil {
		return err
	}
	defer cleanup()

	criteria := make([]evaluation.Criterion, 0, len(criteriaNames))
	for _, name := range criteriaNames {
		criteria = append(criteria, evaluation.Criterion(name))
	}

	result, err := comps.evaluator.Evaluate(cmd.Context(), agentName, criteria, window)
	if err != nil {
		return fmt.Errorf("evaluation failed: %w", err)
	}

	output := map[string]interface{}{"evaluation": result}

	if checkTrigger, _ := cmd.Flags().GetBool("check-trigger"); checkTrigger {
		threshold, _ := cmd.Flags().GetFloat64("threshold")
		minHours, _ := cmd.Flags().GetFloat64("min-hours")

		decision, err := comps.trigger.Decide(cmd.Context(), agentName, result.OverallScore, threshold, minHours)
		if err != nil {
			return fmt.Errorf("trigger check failed: %w", err)
		}
		output["trigger_decision"] = decision
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
