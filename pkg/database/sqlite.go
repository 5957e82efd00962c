package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteDB implements the Database interface using SQLite
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB creates a new SQLite database connection
func NewSQLiteDB(dbPath string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Serialize writers instead of failing fast on a locked database
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationRunner := NewMigrationRunner(db)
	if err := migrationRunner.RunMigrations(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

// SaveOverride deactivates any active override for (agent_name, 'system') and
// inserts the new row as the active one. Both statements run in a single
// transaction so concurrent saves for the same agent cannot leave two rows
// active.
func (s *SQLiteDB) SaveOverride(ctx context.Context, req *SaveOverrideRequest) (*PromptOverride, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	deactivate := `
		UPDATE system_overrides
		SET is_active = 0, updated_at = ?
		WHERE agent_name = ? AND prompt_type = ? AND is_active = 1
	`
	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, deactivate, now, req.AgentName, PromptTypeSystem); err != nil {
		return nil, fmt.Errorf("failed to deactivate previous overrides: %w", err)
	}

	insert := `
		INSERT INTO system_overrides (agent_name, prompt_type, original_prompt, improved_prompt, change_reason, confidence_score, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 1, ?, ?)
		RETURNING id, agent_name, prompt_type, original_prompt, improved_prompt, change_reason, confidence_score, is_active, created_at, updated_at
	`

	var override PromptOverride
	err = tx.QueryRowContext(ctx, insert,
		req.AgentName, PromptTypeSystem, req.OriginalPrompt, req.ImprovedPrompt, req.ChangeReason, req.ConfidenceScore, now, now,
	).Scan(
		&override.ID, &override.AgentName, &override.PromptType, &override.OriginalPrompt,
		&override.ImprovedPrompt, &override.ChangeReason, &override.ConfidenceScore,
		&override.IsActive, &override.CreatedAt, &override.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert override: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit override: %w", err)
	}

	return &override, nil
}

// GetActiveOverride returns the single active override for an agent, or
// ErrOverrideNotFound if the agent was never overridden (or was reverted)
func (s *SQLiteDB) GetActiveOverride(ctx context.Context, agentName string) (*PromptOverride, error) {
	query := `
		SELECT id, agent_name, prompt_type, original_prompt, improved_prompt, change_reason, confidence_score, is_active, created_at, updated_at
		FROM system_overrides
		WHERE agent_name = ? AND prompt_type = ? AND is_active = 1
		ORDER BY created_at DESC
		LIMIT 1
	`

	var override PromptOverride
	err := s.db.QueryRowContext(ctx, query, agentName, PromptTypeSystem).Scan(
		&override.ID, &override.AgentName, &override.PromptType, &override.OriginalPrompt,
		&override.ImprovedPrompt, &override.ChangeReason, &override.ConfidenceScore,
		&override.IsActive, &override.CreatedAt, &override.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrOverrideNotFound
		}
		return nil, fmt.Errorf("failed to get active override: %w", err)
	}

	return &override, nil
}

// ListOverrides returns all overrides newest first, including inactive history
func (s *SQLiteDB) ListOverrides(ctx context.Context) ([]PromptOverride, error) {
	query := `
		SELECT id, agent_name, prompt_type, original_prompt, improved_prompt, change_reason, confidence_score, is_active, created_at, updated_at
		FROM system_overrides
		ORDER BY created_at DESC, id DESC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list overrides: %w", err)
	}
	defer rows.Close()

	overrides := make([]PromptOverride, 0)
	for rows.Next() {
		var override PromptOverride
		err := rows.Scan(
			&override.ID, &override.AgentName, &override.PromptType, &override.OriginalPrompt,
			&override.ImprovedPrompt, &override.ChangeReason, &override.ConfidenceScore,
			&override.IsActive, &override.CreatedAt, &override.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan override: %w", err)
		}
		overrides = append(overrides, override)
	}

	return overrides, rows.Err()
}

// RemoveOverride soft-deletes the active override for an agent. It returns
// false without error when no override was active.
func (s *SQLiteDB) RemoveOverride(ctx context.Context, agentName string) (bool, error) {
	query := `
		UPDATE system_overrides
		SET is_active = 0, updated_at = ?
		WHERE agent_name = ? AND prompt_type = ? AND is_active = 1
	`

	result, err := s.db.ExecContext(ctx, query, time.Now().UTC(), agentName, PromptTypeSystem)
	if err != nil {
		return false, fmt.Errorf("failed to remove override: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// LatestOverrideTime returns the creation time of the newest override row for
// an agent (active or not), or nil when the agent has no override history.
// The refinement trigger uses this for its elapsed-time condition.
func (s *SQLiteDB) LatestOverrideTime(ctx context.Context, agentName string) (*time.Time, error) {
	query := `
		SELECT created_at
		FROM system_overrides
		WHERE agent_name = ? AND prompt_type = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	var createdAt time.Time
	err := s.db.QueryRowContext(ctx, query, agentName, PromptTypeSystem).Scan(&createdAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest override time: %w", err)
	}

	return &createdAt, nil
}

// RecordInteraction stores one interaction record
func (s *SQLiteDB) RecordInteraction(ctx context.Context, req *RecordInteractionRequest) (*InteractionRecord, error) {
	query := `
		INSERT INTO interactions (session_id, agent_name, success, duration_seconds, had_error, error_text, user_rating, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id, session_id, agent_name, success, duration_seconds, had_error, error_text, user_rating, created_at
	`

	var record InteractionRecord
	err := s.db.QueryRowContext(ctx, query,
		req.SessionID, req.AgentName, req.Success, req.DurationSec, req.HadError, req.ErrorText, req.UserRating, time.Now().UTC(),
	).Scan(
		&record.ID, &record.SessionID, &record.AgentName, &record.Success,
		&record.DurationSec, &record.HadError, &record.ErrorText, &record.UserRating, &record.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to record interaction: %w", err)
	}

	return &record, nil
}

// AggregateInteractions computes windowed aggregates for an agent. A window
// with no records returns zero totals, not an error; the evaluator decides
// how to score an empty window.
func (s *SQLiteDB) AggregateInteractions(ctx context.Context, agentName string, window time.Duration) (*InteractionAggregate, error) {
	since := time.Now().UTC().Add(-window)

	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(success), 0),
			COALESCE(SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(duration_seconds), 0),
			COALESCE(AVG(had_error), 0),
			COALESCE(AVG(user_rating), 0),
			COALESCE(SUM(CASE WHEN user_rating IS NOT NULL THEN 1 ELSE 0 END), 0)
		FROM interactions
		WHERE agent_name = ? AND created_at >= ?
	`

	agg := InteractionAggregate{
		AgentName:   agentName,
		WindowHours: window.Hours(),
	}
	err := s.db.QueryRowContext(ctx, query, agentName, since).Scan(
		&agg.TotalTasks, &agg.SuccessfulTasks, &agg.FailedTasks,
		&agg.AvgResponseTime, &agg.ErrorRate, &agg.AvgUserRating, &agg.RatedTasks,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate interactions: %w", err)
	}

	return &agg, nil
}

// metricExpressions is the closed set of metric series this store can produce.
// Queries are assembled only from these fixed expressions plus bound
// parameters, never from caller-supplied SQL.
var metricExpressions = map[string]string{
	"success_rate":          "AVG(success)",
	"average_response_time": "AVG(duration_seconds)",
	"error_rate":            "AVG(had_error)",
	"user_satisfaction":     "AVG(user_rating)",
}

// MetricSeries returns daily values of a named metric for the trailing window
func (s *SQLiteDB) MetricSeries(ctx context.Context, agentName, metric string, days int) ([]MetricPoint, error) {
	expr, ok := metricExpressions[metric]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", metric)
	}
	if days <= 0 {
		days = 7
	}

	since := time.Now().UTC().AddDate(0, 0, -days)

	query := fmt.Sprintf(`
		SELECT date(created_at), %s
		FROM interactions
		WHERE agent_name = ? AND created_at >= ?
		GROUP BY date(created_at)
		ORDER BY date(created_at) ASC
	`, expr)

	rows, err := s.db.QueryContext(ctx, query, agentName, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get metric series: %w", err)
	}
	defer rows.Close()

	points := make([]MetricPoint, 0)
	for rows.Next() {
		var day string
		var value sql.NullFloat64
		if err := rows.Scan(&day, &value); err != nil {
			return nil, fmt.Errorf("failed to scan metric point: %w", err)
		}

		date, err := time.Parse("2006-01-02", day)
		if err != nil {
			return nil, fmt.Errorf("failed to parse metric date: %w", err)
		}

		points = append(points, MetricPoint{Date: date, Value: value.Float64})
	}

	return points, rows.Err()
}

// Ping tests the database connection
func (s *SQLiteDB) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}
