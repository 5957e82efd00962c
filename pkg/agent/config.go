// Package agent assembles agent definitions: a default instruction string,
// possibly superseded by a validated prompt override, plus the bound tool
// list and an evaluation scheduler.
package agent

import (
	"github.com/tmc/langchaingo/llms"

	"deep-agent/pkg/evaluation"
)

// Well-known agent names
const (
	ResearchAgent = "research_agent"
	DatabaseAgent = "database_agent"
	CodingAgent   = "coding_agent"
	WorkflowAgent = "workflow_agent"
)

// defaultInstructions are the hardcoded instruction strings agents fall back
// to when no override is active.
var defaultInstructions = map[string]string{
	ResearchAgent: "You are a research agent. Gather, verify and summarize information for the user, citing your sources.",
	DatabaseAgent: "You are a database agent. Manage research artifacts and prompt templates in the local store.",
	CodingAgent:   "You are a coding agent. Write, review and debug code following the project's conventions.",
	WorkflowAgent: "You are a workflow agent. Create and manage automation workflows on behalf of the user.",
}

// DefaultInstruction returns the built-in instruction for a known agent name,
// or the generic fallback for unknown names.
func DefaultInstruction(agentName string) string {
	if instruction, ok := defaultInstructions[agentName]; ok {
		return instruction
	}
	return "You are a helpful agent."
}

// Definition is an assembled agent: name, bound instruction text and tools,
// and the evaluation scheduler that runs on its request path.
type Definition struct {
	Name         string
	Instructions string
	// Overridden reports whether Instructions came from the override store
	// rather than the default registry.
	Overridden bool
	Tools      []llms.Tool
	Scheduler  *evaluation.Scheduler
}

// Config holds agent assembly settings
type Config struct {
	// Scheduler cadence for the assembled agent
	Scheduler evaluation.SchedulerConfig
}

// DefaultConfig returns the default agent assembly configuration
func DefaultConfig() Config {
	return Config{
		Scheduler: evaluation.DefaultSchedulerConfig(),
	}
}
