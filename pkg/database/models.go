package database

import (
	"time"
)

// Prompt type constants
const (
	PromptTypeSystem = "system"
)

// PromptOverride represents a versioned system prompt replacement for a named
// agent. At most one row per (agent_name, prompt_type) is active at a time;
// superseded rows stay in the table as history.
type PromptOverride struct {
	ID              int64     `json:"id" db:"id"`
	AgentName       string    `json:"agent_name" db:"agent_name"`
	PromptType      string    `json:"prompt_type" db:"prompt_type"`
	OriginalPrompt  *string   `json:"original_prompt,omitempty" db:"original_prompt"`
	ImprovedPrompt  string    `json:"improved_prompt" db:"improved_prompt"`
	ChangeReason    string    `json:"change_reason" db:"change_reason"`
	ConfidenceScore float64   `json:"confidence_score" db:"confidence_score"`
	IsActive        bool      `json:"is_active" db:"is_active"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// SaveOverrideRequest represents a request to save a new prompt override
type SaveOverrideRequest struct {
	AgentName       string  `json:"agent_name"`
	OriginalPrompt  *string `json:"original_prompt,omitempty"`
	ImprovedPrompt  string  `json:"improved_prompt"`
	ChangeReason    string  `json:"change_reason"`
	ConfidenceScore float64 `json:"confidence_score"`
}

// InteractionRecord represents one logged agent interaction. The evaluator
// aggregates these over a time window to score performance criteria.
type InteractionRecord struct {
	ID          int64     `json:"id" db:"id"`
	SessionID   string    `json:"session_id" db:"session_id"`
	AgentName   string    `json:"agent_name" db:"agent_name"`
	Success     bool      `json:"success" db:"success"`
	DurationSec float64   `json:"duration_seconds" db:"duration_seconds"`
	HadError    bool      `json:"had_error" db:"had_error"`
	ErrorText   string    `json:"error_text,omitempty" db:"error_text"`
	UserRating  *float64  `json:"user_rating,omitempty" db:"user_rating"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// RecordInteractionRequest represents a request to log an interaction
type RecordInteractionRequest struct {
	SessionID   string   `json:"session_id,omitempty"`
	AgentName   string   `json:"agent_name"`
	Success     bool     `json:"success"`
	DurationSec float64  `json:"duration_seconds"`
	HadError    bool     `json:"had_error"`
	ErrorText   string   `json:"error_text,omitempty"`
	UserRating  *float64 `json:"user_rating,omitempty"`
}

// InteractionAggregate holds windowed aggregates over interaction records
type InteractionAggregate struct {
	AgentName       string  `json:"agent_name"`
	WindowHours     float64 `json:"window_hours"`
	TotalTasks      int     `json:"total_tasks"`
	SuccessfulTasks int     `json:"successful_tasks"`
	FailedTasks     int     `json:"failed_tasks"`
	AvgResponseTime float64 `json:"average_response_time"`
	ErrorRate       float64 `json:"error_rate"`
	AvgUserRating   float64 `json:"user_satisfaction"`
	RatedTasks      int     `json:"rated_tasks"`
}

// MetricPoint is one dated value in a historical metric series
type MetricPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}
