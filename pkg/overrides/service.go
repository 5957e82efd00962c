// Package overrides wraps the override store with validation and the
// prompt-resolution semantics the agent-construction layer depends on.
package overrides

import (
	"context"
	"errors"
	"fmt"

	"deep-agent/pkg/database"
	"deep-agent/pkg/utils"
)

// Service is the Override Store's validating front. All writes go through it
// so malformed overrides are rejected before any store mutation.
type Service struct {
	db     database.Database
	logger utils.ExtendedLogger
}

// NewService creates the override service
func NewService(db database.Database, logger utils.ExtendedLogger) (*Service, error) {
	if db == nil {
		return nil, &ConfigurationError{Message: "override store requires a database"}
	}
	return &Service{db: db, logger: logger}, nil
}

// Save validates and persists a new override, deactivating any previously
// active one for the same agent.
func (s *Service) Save(ctx context.Context, req *database.SaveOverrideRequest) (*database.PromptOverride, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	override, err := s.db.SaveOverride(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to save override for %s: %w", req.AgentName, err)
	}

	if s.logger != nil {
		s.logger.WithFields(map[string]interface{}{
			"agent_name":       override.AgentName,
			"override_id":      override.ID,
			"confidence_score": override.ConfidenceScore,
		}).Info("system prompt override saved")
	}

	return override, nil
}

// Active returns the agent's active override, or (nil, nil) when none exists.
// Absence is a normal outcome, not an error.
func (s *Service) Active(ctx context.Context, agentName string) (*database.PromptOverride, error) {
	if agentName == "" {
		return nil, &ValidationError{Field: "agent_name", Message: "must not be empty"}
	}

	override, err := s.db.GetActiveOverride(ctx, agentName)
	if err != nil {
		if errors.Is(err, database.ErrOverrideNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active override for %s: %w", agentName, err)
	}
	return override, nil
}

// List returns the full override history, newest first
func (s *Service) List(ctx context.Context) ([]database.PromptOverride, error) {
	overrides, err := s.db.ListOverrides(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list overrides: %w", err)
	}
	return overrides, nil
}

// Remove reverts an agent to its default prompt by deactivating the active
// override. Returns false when none was active.
func (s *Service) Remove(ctx context.Context, agentName string) (bool, error) {
	if agentName == "" {
		return false, &ValidationError{Field: "agent_name", Message: "must not be empty"}
	}

	removed, err := s.db.RemoveOverride(ctx, agentName)
	if err != nil {
		return false, fmt.Errorf("failed to remove override for %s: %w", agentName, err)
	}

	if removed && s.logger != nil {
		s.logger.WithField("agent_name", agentName).Info("system prompt override removed")
	}

	return removed, nil
}

// InstructionFor resolves the prompt text to bind when constructing an agent:
// a validated override supersedes the default instruction string. Store
// failures fall back to the default — a missing or unreachable override is
// never fatal to agent construction.
func (s *Service) InstructionFor(ctx context.Context, agentName, defaultPrompt string) string {
	override, err := s.Active(ctx, agentName)
	if err != nil {
		if s.logger != nil {
			s.logger.WithError(err).WithField("agent_name", agentName).
				Warn("override lookup failed, using default prompt")
		}
		return defaultPrompt
	}
	if override == nil {
		return defaultPrompt
	}
	return override.ImprovedPrompt
}

// validate rejects malformed override fields before any store mutation
func validate(req *database.SaveOverrideRequest) error {
	if req == nil {
		return &ValidationError{Field: "request", Message: "must not be nil"}
	}
	if req.AgentName == "" {
		return &ValidationError{Field: "agent_name", Message: "must not be empty"}
	}
	if req.ImprovedPrompt == "" {
		return &ValidationError{Field: "improved_prompt", Message: "must not be empty"}
	}
	if req.ChangeReason == "" {
		return &ValidationError{Field: "change_reason", Message: "required for audit"}
	}
	if req.ConfidenceScore < 0 || req.ConfidenceScore > 1 {
		return &ValidationError{Field: "confidence_score", Message: "must be in [0,1]"}
	}
	return nil
}
