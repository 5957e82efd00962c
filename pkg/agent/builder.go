package agent

import (
	"context"

	"deep-agent/pkg/evaluation"
	"deep-agent/pkg/overrides"
	"deep-agent/pkg/tools"
	"deep-agent/pkg/utils"
)

// Builder assembles agent definitions from the override store, the shared
// toolset and the scheduler configuration.
type Builder struct {
	overrides *overrides.Service
	toolset   *tools.Toolset
	config    Config
	logger    utils.ExtendedLogger
}

// NewBuilder creates an agent builder. The override service is required; the
// toolset is optional (an agent may carry no tools).
func NewBuilder(overrideService *overrides.Service, toolset *tools.Toolset, config Config, logger utils.ExtendedLogger) (*Builder, error) {
	if overrideService == nil {
		return nil, &overrides.ConfigurationError{Message: "agent builder requires an override service"}
	}
	if config.Scheduler.EvaluationIntervalHours <= 0 {
		config.Scheduler = evaluation.DefaultSchedulerConfig()
	}
	return &Builder{
		overrides: overrideService,
		toolset:   toolset,
		config:    config,
		logger:    logger,
	}, nil
}

// Build assembles the named agent. An active override supersedes the default
// instruction string; a missing or unreachable override falls back to the
// default and is never fatal.
func (b *Builder) Build(ctx context.Context, agentName string) *Definition {
	defaultInstruction := DefaultInstruction(agentName)
	instruction := b.overrides.InstructionFor(ctx, agentName, defaultInstruction)

	def := &Definition{
		Name:         agentName,
		Instructions: instruction,
		Overridden:   instruction != defaultInstruction,
		Scheduler:    evaluation.NewScheduler(b.config.Scheduler, b.logger),
	}
	if b.toolset != nil {
		def.Tools = b.toolset.Tools()
	}

	if b.logger != nil {
		b.logger.WithFields(map[string]interface{}{
			"agent_name": agentName,
			"overridden": def.Overridden,
			"tool_count": len(def.Tools),
		}).Info("agent definition assembled")
	}

	return def
}
