// Package metrics adapts the interaction store into the evaluator's
// MetricsSource collaborator.
package metrics

import (
	"context"
	"fmt"
	"time"

	"deep-agent/pkg/database"
	"deep-agent/pkg/evaluation"
)

// SQLiteSource derives windowed metrics from logged interactions
type SQLiteSource struct {
	db database.Database
}

// NewSQLiteSource creates a metrics source over the interaction store
func NewSQLiteSource(db database.Database) (*SQLiteSource, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}
	return &SQLiteSource{db: db}, nil
}

// Fetch aggregates the agent's interactions over the trailing window into the
// metric map the evaluator scores from. An empty window yields zero totals;
// the evaluator decides what that means.
func (s *SQLiteSource) Fetch(ctx context.Context, agentName string, window time.Duration) (map[string]float64, error) {
	agg, err := s.db.AggregateInteractions(ctx, agentName, window)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate interactions: %w", err)
	}

	return map[string]float64{
		evaluation.MetricTotalTasks:       float64(agg.TotalTasks),
		evaluation.MetricSuccessfulTasks:  float64(agg.SuccessfulTasks),
		evaluation.MetricFailedTasks:      float64(agg.FailedTasks),
		evaluation.MetricAvgResponseTime:  agg.AvgResponseTime,
		evaluation.MetricUserSatisfaction: agg.AvgUserRating,
		evaluation.MetricErrorRate:        agg.ErrorRate,
	}, nil
}
