package models

import (
	"time"

	"github.com/google/uuid"
)

// PreAgreedTerm is a contractual requirement negotiated outside the document
// under review, used as ground truth to check contract clauses against
type PreAgreedTerm struct {
	ID                     uuid.UUID `json:"id"`
	ContractID             uuid.UUID `json:"contract_id"`
	TermCategory           string    `json:"term_category"`
	TermDescription        string    `json:"term_description"`
	ExpectedValue          string    `json:"expected_value"`
	IsMandatory            bool      `json:"is_mandatory"`
	NormalizedTermCategory *string   `json:"normalized_term_category,omitempty"`
	NormalizedClauseType   *string   `json:"normalized_clause_type,omitempty"`
	CreatedAt              time.Time `json:"created_at"`
}
