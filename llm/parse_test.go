package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clausecheck-backend/models"
)

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"json fence", "```json\n[{\"a\":1}]\n```", `[{"a":1}]`},
		{"bare fence", "```\n{}\n```", "{}"},
		{"no fence passes through", `[{"a":1}]`, `[{"a":1}]`},
		{"surrounding whitespace trimmed", "  \n[1,2]\n  ", "[1,2]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripCodeFence(tt.input))
		})
	}
}

func TestClampConfidence(t *testing.T) {
	assert.Equal(t, 0.7, clampConfidence(0.7))
	assert.Equal(t, 0.0, clampConfidence(0))
	assert.Equal(t, 1.0, clampConfidence(1))
	assert.Equal(t, 0.5, clampConfidence(-0.1))
	assert.Equal(t, 0.5, clampConfidence(1.5))
}

func TestParseExtractionResponse(t *testing.T) {
	t.Run("decodes a fenced array", func(t *testing.T) {
		response := "```json\n" + `[
			{"start_line": 2, "end_line": 5, "clause_type": "payment", "summary": "fee schedule", "confidence": 0.9, "rag_status": "GREEN", "section_title": "Fees"},
			{"start_line": 6, "end_line": 8, "clause_type": "termination", "confidence": 1.7, "rag_status": "bogus"}
		]` + "\n```"

		clauses, err := parseExtractionResponse(response)

		require.NoError(t, err)
		require.Len(t, clauses, 2)

		assert.Equal(t, 2, clauses[0].StartLine)
		assert.Equal(t, 5, clauses[0].EndLine)
		assert.Equal(t, "payment", clauses[0].ClauseType)
		assert.Equal(t, models.RagGreen, clauses[0].RagStatus)
		require.NotNil(t, clauses[0].SectionTitle)
		assert.Equal(t, "Fees", *clauses[0].SectionTitle)

		// out-of-range confidence and unknown rag fall back to safe defaults
		assert.Equal(t, 0.5, clauses[1].Confidence)
		assert.Equal(t, models.RagAmber, clauses[1].RagStatus)
		assert.Nil(t, clauses[1].SectionTitle)
	})

	t.Run("empty array is valid", func(t *testing.T) {
		clauses, err := parseExtractionResponse("[]")

		require.NoError(t, err)
		assert.Empty(t, clauses)
	})

	t.Run("malformed payload surfaces a ParseError", func(t *testing.T) {
		_, err := parseExtractionResponse("I could not find any clauses, sorry.")

		var parseErr *ParseError
		require.True(t, errors.As(err, &parseErr))
		assert.Contains(t, parseErr.Payload, "could not find")
	})
}

func TestParseComparisonResponse(t *testing.T) {
	comparisons := []models.BatchComparison{{Idx: 0}, {Idx: 1}}

	t.Run("keys results by idx", func(t *testing.T) {
		response := `[
			{"idx": 0, "matches": true, "severity": "none", "explanation": "exact amount", "confidence": 0.95},
			{"idx": 1, "matches": true, "severity": "minor", "explanation": "net-45 instead of net-30", "differences": ["payment window"], "confidence": 0.8}
		]`

		results, err := parseComparisonResponse(response, comparisons)

		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, models.SeverityNone, results[0].Severity)
		assert.Equal(t, models.SeverityMinor, results[1].Severity)
		assert.Equal(t, []string{"payment window"}, results[1].Differences)
	})

	t.Run("drops results for unknown indices", func(t *testing.T) {
		response := `[
			{"idx": 0, "matches": true, "severity": "none", "confidence": 0.9},
			{"idx": 7, "matches": true, "severity": "none", "confidence": 0.9}
		]`

		results, err := parseComparisonResponse(response, comparisons)

		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Contains(t, results, 0)
	})

	t.Run("missing entries are simply absent", func(t *testing.T) {
		response := `[{"idx": 1, "matches": false, "severity": "major", "confidence": 0.7}]`

		results, err := parseComparisonResponse(response, comparisons)

		require.NoError(t, err)
		assert.NotContains(t, results, 0)
		assert.Equal(t, models.SeverityMajor, results[1].Severity)
		assert.False(t, results[1].Matches)
	})

	t.Run("unknown severity defaults to major", func(t *testing.T) {
		response := `[{"idx": 0, "matches": true, "severity": "catastrophic", "confidence": 0.5}]`

		results, err := parseComparisonResponse(response, comparisons)

		require.NoError(t, err)
		assert.Equal(t, models.SeverityMajor, results[0].Severity)
	})

	t.Run("malformed payload surfaces a ParseError", func(t *testing.T) {
		var parseErr *ParseError
		_, err := parseComparisonResponse("no json here", comparisons)
		assert.True(t, errors.As(err, &parseErr))
	})
}

func TestBatchResultRag(t *testing.T) {
	assert.Equal(t, models.RagGreen, models.BatchResult{Matches: true, Severity: models.SeverityNone}.Rag())
	assert.Equal(t, models.RagAmber, models.BatchResult{Matches: true, Severity: models.SeverityMinor}.Rag())
	assert.Equal(t, models.RagRed, models.BatchResult{Matches: true, Severity: models.SeverityMajor}.Rag())
	assert.Equal(t, models.RagRed, models.BatchResult{Matches: false, Severity: models.SeverityNone}.Rag())
}
