package models

import (
	"time"

	"github.com/google/uuid"
)

// Verdict is the final per-term decision produced by a review run
type Verdict struct {
	ID               uuid.UUID   `json:"id"`
	ContractID       uuid.UUID   `json:"contract_id"`
	TermID           uuid.UUID   `json:"term_id"`
	ClauseBoundaryID *uuid.UUID  `json:"clause_boundary_id,omitempty"`
	Rag              RagStatus   `json:"rag"`
	Matches          bool        `json:"matches"`
	Severity         Severity    `json:"severity"`
	MatchReason      MatchReason `json:"match_reason"`
	Confidence       float64     `json:"confidence"`
	Explanation      string      `json:"explanation"`
	Differences      []string    `json:"differences,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
}
