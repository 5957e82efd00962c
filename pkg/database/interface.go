package database

import (
	"context"
	"time"
)

// Database interface for override and interaction storage
type Database interface {
	// Prompt override management. SaveOverride deactivates any previously
	// active row for the same (agent_name, prompt_type) in the same
	// transaction, preserving the single-active-row invariant.
	SaveOverride(ctx context.Context, req *SaveOverrideRequest) (*PromptOverride, error)
	GetActiveOverride(ctx context.Context, agentName string) (*PromptOverride, error)
	ListOverrides(ctx context.Context) ([]PromptOverride, error)
	RemoveOverride(ctx context.Context, agentName string) (bool, error)
	LatestOverrideTime(ctx context.Context, agentName string) (*time.Time, error)

	// Interaction metrics
	RecordInteraction(ctx context.Context, req *RecordInteractionRequest) (*InteractionRecord, error)
	AggregateInteractions(ctx context.Context, agentName string, window time.Duration) (*InteractionAggregate, error)
	MetricSeries(ctx context.Context, agentName, metric string, days int) ([]MetricPoint, error)

	// Health check
	Ping(ctx context.Context) error
	Close() error
}
