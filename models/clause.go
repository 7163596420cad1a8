package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// RawLineBasedClause is a clause candidate as proposed by the extraction
// collaborator, referencing 0-indexed line numbers of the numbered document.
// Untrusted: ranges may be invalid, overlapping, or off by a sentence.
type RawLineBasedClause struct {
	StartLine    int       `json:"start_line"`
	EndLine      int       `json:"end_line"`
	ClauseType   string    `json:"clause_type"`
	Summary      string    `json:"summary"`
	Confidence   float64   `json:"confidence"`
	RagStatus    RagStatus `json:"rag_status"`
	SectionTitle *string   `json:"section_title,omitempty"`
}

// RawIndexedClause is a clause candidate expressed as a character range into
// the original text. Still untrusted until validated.
type RawIndexedClause struct {
	StartIndex   int       `json:"start_index"`
	EndIndex     int       `json:"end_index"`
	ClauseType   string    `json:"clause_type"`
	Summary      string    `json:"summary"`
	Confidence   float64   `json:"confidence"`
	RagStatus    RagStatus `json:"rag_status"`
	SectionTitle *string   `json:"section_title,omitempty"`
}

// ValidatedClause is a RawIndexedClause whose boundaries have been snapped
// onto valid cut points, plus the exact slice of the original text.
// Guaranteed non-overlapping with its siblings. Immutable after validation.
type ValidatedClause struct {
	RawIndexedClause
	Content string `json:"content"`
}

// ClauseBoundary is a persisted, already-validated clause of a contract
type ClauseBoundary struct {
	ID         uuid.UUID `json:"id"`
	ContractID uuid.UUID `json:"contract_id"`
	ClauseType string    `json:"clause_type"`
	Content    string    `json:"content"`
	Summary    string    `json:"summary"`
	StartIndex int       `json:"start_index"`
	EndIndex   int       `json:"end_index"`
	Confidence float64   `json:"confidence"`
	RagStatus  RagStatus `json:"rag_status"`
	CreatedAt  time.Time `json:"created_at"`
}

// TemplateMetadata represents free-form metadata on a clause template
type TemplateMetadata map[string]interface{}

// Value implements driver.Valuer for JSONB
func (m TemplateMetadata) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// Scan implements sql.Scanner for JSONB
func (m *TemplateMetadata) Scan(value interface{}) error {
	if value == nil {
		*m = make(TemplateMetadata)
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
		*m = make(TemplateMetadata)
		return nil
	}

	return json.Unmarshal(bytes, m)
}

// ClauseTemplate is an entry in the clause library used for similarity search
type ClauseTemplate struct {
	ID             uuid.UUID        `json:"id"`
	ClauseType     string           `json:"clause_type"`
	Text           string           `json:"text"`
	SourceDocument string           `json:"source_document"`
	Metadata       TemplateMetadata `json:"metadata,omitempty"`
	Distance       float64          `json:"distance,omitempty"` // Vector similarity distance
}

// ClauseMatchResult is library-match metadata attached to a clause, produced
// by the similarity-search collaborator. Read-only to the selection logic.
type ClauseMatchResult struct {
	ID                uuid.UUID `json:"id"`
	ClauseBoundaryID  uuid.UUID `json:"clause_boundary_id"`
	MatchedTemplateID uuid.UUID `json:"matched_template_id"`
	SimilarityScore   float64   `json:"similarity_score"`
	RagRisk           RagStatus `json:"rag_risk"`
}
