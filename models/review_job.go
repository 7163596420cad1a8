package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ReviewJobStatus represents the status of a review job
type ReviewJobStatus string

const (
	JobStatusPending    ReviewJobStatus = "pending"
	JobStatusInProgress ReviewJobStatus = "in_progress"
	JobStatusCompleted  ReviewJobStatus = "completed"
	JobStatusFailed     ReviewJobStatus = "failed"
)

// ReviewStep represents a step in the review pipeline
type ReviewStep struct {
	Name        string `json:"name"`
	Status      string `json:"status"` // "pending", "in_progress", "completed", "failed"
	Description string `json:"description,omitempty"`
}

// ReviewSteps represents a list of review steps
type ReviewSteps []ReviewStep

// Value implements driver.Valuer for JSONB
func (s ReviewSteps) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// Scan implements sql.Scanner for JSONB
func (s *ReviewSteps) Scan(value interface{}) error {
	if value == nil {
		*s = make(ReviewSteps, 0)
		return nil
	}

	// Handle different types that pgx might return for JSONB
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		// If we can't convert, return empty slice
		*s = make(ReviewSteps, 0)
		return nil
	}

	// Handle empty bytes as empty slice
	if len(bytes) == 0 {
		*s = make(ReviewSteps, 0)
		return nil
	}

	return json.Unmarshal(bytes, s)
}

// ReviewJob represents a background contract review job
type ReviewJob struct {
	ID           uuid.UUID       `json:"id"`
	ContractID   uuid.UUID       `json:"contract_id"`
	Status       ReviewJobStatus `json:"status"`
	CurrentStep  *string         `json:"current_step,omitempty"`
	Steps        ReviewSteps     `json:"steps"`
	ErrorMessage *string         `json:"error_message,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	CompletedAt  *time.Time      `json:"completed_at,omitempty"`
}
