package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"clausecheck-backend/models"
)

// Comparer judges whether clauses satisfy their pre-agreed terms. May return
// fewer results than requested; missing entries leave their terms unresolved
// for the round.
type Comparer interface {
	CompareBatch(ctx context.Context, comparisons []models.BatchComparison) (map[int]models.BatchResult, error)
}

// GeminiComparer sends clause/term pairs to Gemini in one batched prompt
type GeminiComparer struct {
	client *Client
}

// NewGeminiComparer creates a comparer over the shared client
func NewGeminiComparer(client *Client) *GeminiComparer {
	return &GeminiComparer{client: client}
}

const comparisonPromptHeader = `You are a contract analyst checking clauses against pre-agreed deal terms.

For each numbered pair below, judge whether the clause satisfies the term.

PAIRS:
`

const comparisonPromptFooter = `
OUTPUT REQUIREMENTS:
- Return ONLY a JSON array, no prose
- One element per pair: {"idx": int, "matches": bool, "severity": "none"|"minor"|"major", "explanation": string, "differences": [string], "confidence": number 0-1}
- severity is "none" when the clause fully satisfies the term, "minor" for immaterial deviations, "major" otherwise
- differences lists each concrete deviation from the expected value

Return the JSON array now:`

// CompareBatch sends one batch to Gemini and returns results keyed by idx.
// Results for unknown indices are discarded; indices the model skipped are
// simply absent from the map (logged, not fatal).
func (c *GeminiComparer) CompareBatch(ctx context.Context, comparisons []models.BatchComparison) (map[int]models.BatchResult, error) {
	if len(comparisons) == 0 {
		return map[int]models.BatchResult{}, nil
	}

	prompt := buildComparisonPrompt(comparisons)

	response, err := c.client.generate(ctx, prompt, 0.1)
	if err != nil {
		return nil, fmt.Errorf("comparison call failed: %w", err)
	}

	results, err := parseComparisonResponse(response, comparisons)
	if err != nil {
		return nil, err
	}

	if len(results) < len(comparisons) {
		log.Printf("Warning: Comparison batch returned %d of %d results", len(results), len(comparisons))
	}
	return results, nil
}

func buildComparisonPrompt(comparisons []models.BatchComparison) string {
	var b strings.Builder
	b.WriteString(comparisonPromptHeader)

	for _, cmp := range comparisons {
		fmt.Fprintf(&b, "\n--- PAIR %d ---\n", cmp.Idx)
		fmt.Fprintf(&b, "TERM: %s\n", cmp.TermDescription)
		fmt.Fprintf(&b, "EXPECTED VALUE: %s\n", cmp.ExpectedValue)
		if cmp.IsMandatory {
			b.WriteString("MANDATORY: yes\n")
		}
		fmt.Fprintf(&b, "CLAUSE:\n%s\n", cmp.ClauseContent)
	}

	b.WriteString(comparisonPromptFooter)
	return b.String()
}

// rawBatchResult mirrors the collaborator's JSON shape with untrusted fields
type rawBatchResult struct {
	Idx         int      `json:"idx"`
	Matches     bool     `json:"matches"`
	Severity    string   `json:"severity"`
	Explanation string   `json:"explanation"`
	Differences []string `json:"differences"`
	Confidence  float64  `json:"confidence"`
}

func parseComparisonResponse(response string, comparisons []models.BatchComparison) (map[int]models.BatchResult, error) {
	payload := stripCodeFence(response)

	var raw []rawBatchResult
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, &ParseError{Payload: payload, Err: err}
	}

	requested := make(map[int]bool, len(comparisons))
	for _, cmp := range comparisons {
		requested[cmp.Idx] = true
	}

	results := make(map[int]models.BatchResult, len(raw))
	for _, r := range raw {
		if !requested[r.Idx] {
			log.Printf("Warning: Dropping comparison result for unknown idx %d", r.Idx)
			continue
		}
		results[r.Idx] = models.BatchResult{
			Idx:         r.Idx,
			Matches:     r.Matches,
			Severity:    models.ParseSeverity(r.Severity),
			Explanation: r.Explanation,
			Differences: r.Differences,
			Confidence:  clampConfidence(r.Confidence),
		}
	}
	return results, nil
}
