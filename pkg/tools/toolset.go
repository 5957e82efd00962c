// Package tools exposes the evaluation and refinement subsystem as a tool
// list an agent (or an MCP server) can bind.
package tools

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"

	"deep-agent/pkg/database"
	"deep-agent/pkg/evaluation"
	"deep-agent/pkg/overrides"
	"deep-agent/pkg/utils"
)

// Toolset binds the evaluation core to callable tools. Handlers forward to
// the evaluator, trigger, refiner and override service and return JSON
// strings.
type Toolset struct {
	evaluator *evaluation.Evaluator
	trigger   *evaluation.Trigger
	research  evaluation.ResearchSource
	overrides *overrides.Service
	db        database.Database
	logger    utils.ExtendedLogger
}

// NewToolset creates the toolset. All collaborators are required except the
// research source, which defaults to the curated offline library.
func NewToolset(
	evaluator *evaluation.Evaluator,
	trigger *evaluation.Trigger,
	research evaluation.ResearchSource,
	overrideService *overrides.Service,
	db database.Database,
	logger utils.ExtendedLogger,
) (*Toolset, error) {
	if evaluator == nil || trigger == nil || overrideService == nil || db == nil {
		return nil, &overrides.ConfigurationError{Message: "toolset requires evaluator, trigger, override service and database"}
	}
	if research == nil {
		research = evaluation.NewCuratedResearch()
	}
	return &Toolset{
		evaluator: evaluator,
		trigger:   trigger,
		research:  research,
		overrides: overrideService,
		db:        db,
		logger:    logger,
	}, nil
}

// toolSpec pairs a tool definition with its handler
type toolSpec struct {
	name        string
	description string
	args        interface{}
	handler     func(ctx context.Context, args map[string]interface{}) (string, error)
}

// specs returns every tool this set exposes, in a stable order
func (t *Toolset) specs() []toolSpec {
	return []toolSpec{
		{
			name:        "evaluate_agent_performance",
			description: "Evaluate agent performance and determine if improvements are needed",
			args:        &EvaluatePerformanceArgs{},
			handler:     t.handleEvaluatePerformance,
		},
		{
			name:        "should_trigger_system_refinement",
			description: "Check if system refinement should be triggered based on performance",
			args:        &TriggerRefinementArgs{},
			handler:     t.handleTriggerRefinement,
		},
		{
			name:        "add_evaluation_tasks_to_todos",
			description: "Add evaluation-based improvement tasks to the agent todo list",
			args:        &AddEvaluationTasksArgs{},
			handler:     t.handleAddEvaluationTasks,
		},
		{
			name:        "monitor_system_health",
			description: "Monitor system health and performance metrics",
			args:        &MonitorHealthArgs{},
			handler:     t.handleMonitorHealth,
		},
		{
			name:        "get_performance_trends",
			description: "Get performance trends and historical data",
			args:        &PerformanceTrendsArgs{},
			handler:     t.handlePerformanceTrends,
		},
		{
			name:        "analyze_system_performance",
			description: "Analyze current system performance and identify improvement areas",
			args:        &AnalyzePerformanceArgs{},
			handler:     t.handleAnalyzePerformance,
		},
		{
			name:        "research_agent_best_practices",
			description: "Research best practices for AI agent system design and prompts",
			args:        &ResearchBestPracticesArgs{},
			handler:     t.handleResearchBestPractices,
		},
		{
			name:        "generate_improved_system_prompt",
			description: "Generate improved system prompt based on analysis and research",
			args:        &GeneratePromptArgs{},
			handler:     t.handleGeneratePrompt,
		},
		{
			name:        "save_system_prompt_override",
			description: "Save a system prompt improvement as the agent's active override",
			args:        &SaveOverrideArgs{},
			handler:     t.handleSaveOverride,
		},
		{
			name:        "get_system_prompt_override",
			description: "Get the current active system prompt override for an agent",
			args:        &GetOverrideArgs{},
			handler:     t.handleGetOverride,
		},
		{
			name:        "list_system_prompt_overrides",
			description: "List all system prompt overrides and their status",
			args:        &ListOverridesArgs{},
			handler:     t.handleListOverrides,
		},
		{
			name:        "remove_system_prompt_override",
			description: "Remove the active system prompt override for an agent, reverting to default",
			args:        &RemoveOverrideArgs{},
			handler:     t.handleRemoveOverride,
		},
	}
}

// Tools returns the llms.Tool definitions for binding into an agent
func (t *Toolset) Tools() []llms.Tool {
	specs := t.specs()
	tools := make([]llms.Tool, 0, len(specs))
	for _, spec := range specs {
		tools = append(tools, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        spec.name,
				Description: spec.description,
				Parameters:  toolSchema(spec.args),
			},
		})
	}
	return tools
}

// Names returns the tool names in definition order
func (t *Toolset) Names() []string {
	specs := t.specs()
	names := make([]string, 0, len(specs))
	for _, spec := range specs {
		names = append(names, spec.name)
	}
	return names
}

// Describe returns a tool's description, or "" for unknown names
func (t *Toolset) Describe(name string) string {
	for _, spec := range t.specs() {
		if spec.name == name {
			return spec.description
		}
	}
	return ""
}

// Call executes a tool by name
func (t *Toolset) Call(ctx context.Context, name string, args map[string]interface{}) (string, error) {
	for _, spec := range t.specs() {
		if spec.name == name {
			result, err := spec.handler(ctx, args)
			if err != nil && t.logger != nil {
				t.logger.WithError(err).WithField("tool", name).Error("tool call failed")
			}
			return result, err
		}
	}
	return "", fmt.Errorf("unknown tool: %s", name)
}
