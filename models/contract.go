package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ContractStatus represents the review lifecycle of a contract
type ContractStatus string

const (
	ContractStatusDraft      ContractStatus = "draft"
	ContractStatusProcessing ContractStatus = "processing"
	ContractStatusReviewed   ContractStatus = "reviewed"
	ContractStatusFailed     ContractStatus = "failed"
)

// ContractMetadata represents parsed metadata about a contract document
type ContractMetadata map[string]interface{}

// Value implements driver.Valuer for JSONB
func (m ContractMetadata) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// Scan implements sql.Scanner for JSONB
func (m *ContractMetadata) Scan(value interface{}) error {
	if value == nil {
		*m = make(ContractMetadata)
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	if len(bytes) == 0 {
		*m = make(ContractMetadata)
		return nil
	}

	return json.Unmarshal(bytes, m)
}

// Contract represents a contract under review
type Contract struct {
	ID               uuid.UUID        `json:"id"`
	UserID           uuid.UUID        `json:"user_id"`
	Status           ContractStatus   `json:"status"`
	Title            string           `json:"title"`
	CounterpartyName string           `json:"counterparty_name"`
	OriginalText     string           `json:"original_text"`
	FileID           *uuid.UUID       `json:"file_id,omitempty"`
	Metadata         ContractMetadata `json:"metadata,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
	ReviewedAt       *time.Time       `json:"reviewed_at,omitempty"`
}
