package models

import (
	"github.com/google/uuid"
)

// ClauseCandidate pairs a clause with the strategy tier that proposed it for
// a pre-agreed term
type ClauseCandidate struct {
	Clause      *ClauseBoundary    `json:"clause"`
	MatchResult *ClauseMatchResult `json:"match_result,omitempty"`
	MatchReason MatchReason        `json:"match_reason"`
}

// SimilarityScore returns the library-match score backing this candidate,
// or 0 when no match result is attached
func (c ClauseCandidate) SimilarityScore() float64 {
	if c.MatchResult == nil {
		return 0
	}
	return c.MatchResult.SimilarityScore
}

// BatchComparison is one clause/term pair sent to the semantic-comparison
// collaborator
type BatchComparison struct {
	Idx             int         `json:"idx"`
	ClauseID        uuid.UUID   `json:"clause_id"`
	TermID          uuid.UUID   `json:"term_id"`
	ClauseContent   string      `json:"clause_content"`
	TermDescription string      `json:"term_description"`
	ExpectedValue   string      `json:"expected_value"`
	IsMandatory     bool        `json:"is_mandatory"`
	MatchReason     MatchReason `json:"match_reason"`
	SemanticScore   float64     `json:"semantic_score"`
}

// BatchResult is the collaborator's verdict on one BatchComparison
type BatchResult struct {
	Idx         int      `json:"idx"`
	Matches     bool     `json:"matches"`
	Severity    Severity `json:"severity"`
	Explanation string   `json:"explanation"`
	Differences []string `json:"differences,omitempty"`
	Confidence  float64  `json:"confidence"`
}

// Rag maps a comparison result onto the traffic-light scale:
// green = matches with no deviation, amber = matches with a minor deviation,
// red = anything else
func (r BatchResult) Rag() RagStatus {
	if r.Matches && r.Severity == SeverityNone {
		return RagGreen
	}
	if r.Matches && r.Severity == SeverityMinor {
		return RagAmber
	}
	return RagRed
}

// IdentityMatchResult is the outcome of string-matching an identity term
// (a proper-noun value) against the document
type IdentityMatchResult struct {
	Matches    bool      `json:"matches"`
	MatchType  MatchType `json:"match_type"`
	Confidence float64   `json:"confidence"`
	FoundValue string    `json:"found_value,omitempty"`
}

// BestMatch is the single winning clause/result pair for a term after
// reconciliation. At most one exists per term.
type BestMatch struct {
	TermID     uuid.UUID       `json:"term_id"`
	Comparison BatchComparison `json:"comparison"`
	Result     BatchResult     `json:"result"`
	Rag        RagStatus       `json:"rag"`
}
