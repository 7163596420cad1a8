package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"clausecheck-backend/models"
	"clausecheck-backend/textindex"
)

// Extractor proposes clause boundaries for a contract. Implementations may
// return malformed, out-of-range, or overlapping candidates; callers must
// tolerate all three.
type Extractor interface {
	ExtractClauses(ctx context.Context, doc *textindex.LineNumberedDocument) ([]models.RawLineBasedClause, error)
}

// GeminiExtractor asks Gemini for line-range clause proposals against the
// numbered document view
type GeminiExtractor struct {
	client *Client
}

// NewGeminiExtractor creates an extractor over the shared client
func NewGeminiExtractor(client *Client) *GeminiExtractor {
	return &GeminiExtractor{client: client}
}

const extractionPromptTemplate = `You are a contract analyst segmenting a contract into clauses.

The contract below has line numbers in [n] brackets. Reference clauses by line number only.

CONTRACT:
%s

TASK:
Identify every distinct clause. For each, return its line range and classification.

OUTPUT REQUIREMENTS:
- Return ONLY a JSON array, no prose
- Each element: {"start_line": int, "end_line": int, "clause_type": string, "summary": string, "confidence": number 0-1, "rag_status": "green"|"amber"|"red", "section_title": string or null}
- clause_type uses snake_case (e.g. "payment", "termination", "intellectual_property", "exclusivity", "confidentiality", "indemnification", "governing_law", "usage_rights")
- Line ranges are inclusive and 0-indexed
- rag_status reflects how risky the clause looks on its face

Return the JSON array now:`

// ExtractClauses sends the numbered view to Gemini and decodes the proposed
// line-range candidates
func (e *GeminiExtractor) ExtractClauses(ctx context.Context, doc *textindex.LineNumberedDocument) ([]models.RawLineBasedClause, error) {
	prompt := fmt.Sprintf(extractionPromptTemplate, doc.NumberedText)

	response, err := e.client.generate(ctx, prompt, 0.2)
	if err != nil {
		return nil, fmt.Errorf("extraction call failed: %w", err)
	}

	return parseExtractionResponse(response)
}

// rawLineClause mirrors the collaborator's JSON shape with untrusted fields
type rawLineClause struct {
	StartLine    int     `json:"start_line"`
	EndLine      int     `json:"end_line"`
	ClauseType   string  `json:"clause_type"`
	Summary      string  `json:"summary"`
	Confidence   float64 `json:"confidence"`
	RagStatus    string  `json:"rag_status"`
	SectionTitle *string `json:"section_title"`
}

func parseExtractionResponse(response string) ([]models.RawLineBasedClause, error) {
	payload := stripCodeFence(response)

	var raw []rawLineClause
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, &ParseError{Payload: payload, Err: err}
	}

	clauses := make([]models.RawLineBasedClause, 0, len(raw))
	for _, r := range raw {
		clauses = append(clauses, models.RawLineBasedClause{
			StartLine:    r.StartLine,
			EndLine:      r.EndLine,
			ClauseType:   r.ClauseType,
			Summary:      r.Summary,
			Confidence:   clampConfidence(r.Confidence),
			RagStatus:    models.ParseRagStatus(r.RagStatus),
			SectionTitle: r.SectionTitle,
		})
	}
	return clauses, nil
}
