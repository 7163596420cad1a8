package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clausecheck-backend/models"
)

// plainConfig disables snapping so sweep behavior can be tested in isolation
func plainConfig() Config {
	return Config{MinClauseLength: 5, MaxClauseLength: 1000}
}

func TestValidateOverlapSweep(t *testing.T) {
	text := strings.Repeat("abcdefghi ", 10)

	t.Run("earliest-starting clause wins a collision", func(t *testing.T) {
		raw := []models.RawIndexedClause{
			{StartIndex: 40, EndIndex: 90, ClauseType: "payment", Confidence: 0.99},
			{StartIndex: 10, EndIndex: 60, ClauseType: "term", Confidence: 0.2},
		}

		res := Validate(raw, text, plainConfig())

		require.Len(t, res.Valid, 1)
		assert.Equal(t, "term", res.Valid[0].ClauseType)
		assert.Equal(t, 10, res.Valid[0].StartIndex)
		assert.Equal(t, 1, res.Telemetry.DroppedOverlap)
		assert.Equal(t, 2, res.Telemetry.Returned)
		assert.Equal(t, 1, res.Telemetry.Valid)
	})

	t.Run("touching spans are both kept", func(t *testing.T) {
		raw := []models.RawIndexedClause{
			{StartIndex: 10, EndIndex: 58, ClauseType: "term"},
			{StartIndex: 60, EndIndex: 98, ClauseType: "payment"},
		}

		res := Validate(raw, text, plainConfig())

		require.Len(t, res.Valid, 2)
		assert.Equal(t, 0, res.Telemetry.DroppedOverlap)
	})

	t.Run("survivors are sorted by start", func(t *testing.T) {
		raw := []models.RawIndexedClause{
			{StartIndex: 60, EndIndex: 98, ClauseType: "payment"},
			{StartIndex: 10, EndIndex: 58, ClauseType: "term"},
		}

		res := Validate(raw, text, plainConfig())

		require.Len(t, res.Valid, 2)
		assert.Equal(t, "term", res.Valid[0].ClauseType)
		assert.Equal(t, "payment", res.Valid[1].ClauseType)
	})

	t.Run("content is the exact slice of the original", func(t *testing.T) {
		raw := []models.RawIndexedClause{{StartIndex: 10, EndIndex: 58}}

		res := Validate(raw, text, plainConfig())

		require.Len(t, res.Valid, 1)
		assert.Equal(t, text[10:58], res.Valid[0].Content)
	})
}

func TestValidateDrops(t *testing.T) {
	text := strings.Repeat("abcdefghi ", 10)

	t.Run("out-of-bounds and inverted candidates", func(t *testing.T) {
		raw := []models.RawIndexedClause{
			{StartIndex: -5, EndIndex: 20},
			{StartIndex: 50, EndIndex: 30},
			{StartIndex: 10, EndIndex: 2000},
		}

		res := Validate(raw, text, plainConfig())

		assert.Empty(t, res.Valid)
		assert.Equal(t, 3, res.Telemetry.DroppedBounds)
	})

	t.Run("length at the minimum is dropped", func(t *testing.T) {
		raw := []models.RawIndexedClause{{StartIndex: 10, EndIndex: 15}}

		res := Validate(raw, text, plainConfig())

		assert.Empty(t, res.Valid)
		assert.Equal(t, 1, res.Telemetry.DroppedLength)
	})

	t.Run("length beyond twice the maximum is dropped", func(t *testing.T) {
		cfg := Config{MinClauseLength: 2, MaxClauseLength: 10}
		raw := []models.RawIndexedClause{{StartIndex: 10, EndIndex: 58}}

		res := Validate(raw, text, cfg)

		assert.Empty(t, res.Valid)
		assert.Equal(t, 1, res.Telemetry.DroppedLength)
	})

	t.Run("whitespace-only content is dropped", func(t *testing.T) {
		padded := "word " + strings.Repeat(" ", 10) + "tail"
		raw := []models.RawIndexedClause{{StartIndex: 5, EndIndex: 15}}

		res := Validate(raw, padded, plainConfig())

		assert.Empty(t, res.Valid)
		assert.Equal(t, 1, res.Telemetry.DroppedEmpty)
	})
}

func TestValidateSnapsToSentences(t *testing.T) {
	text := "First obligation is stated here. Second obligation follows immediately after. Third one ends the list."
	want := "Second obligation follows immediately after."

	raw := []models.RawIndexedClause{
		{StartIndex: 40, EndIndex: 70, ClauseType: "payment"},
	}

	res := Validate(raw, text, DefaultConfig())

	require.Len(t, res.Valid, 1)
	assert.Equal(t, want, res.Valid[0].Content)
	assert.Equal(t, strings.Index(text, "Second"), res.Valid[0].StartIndex)
	assert.GreaterOrEqual(t, res.Snap.SentenceSnaps, 2)
}

func TestValidateTrimsLeadingHeader(t *testing.T) {
	body := "The Client shall pay the Talent a total fee of fifty thousand dollars within thirty days of invoice receipt."
	text := "PAYMENT TERMS\n" + body + "\n"

	raw := []models.RawIndexedClause{
		{StartIndex: 0, EndIndex: len(text), ClauseType: "payment"},
	}

	res := Validate(raw, text, DefaultConfig())

	require.Len(t, res.Valid, 1)
	assert.Equal(t, body, res.Valid[0].Content)
	assert.Equal(t, strings.Index(text, "The Client"), res.Valid[0].StartIndex)
}

func TestValidateForcesBoundariesOntoLineStart(t *testing.T) {
	// a run with no sentence terminators: the snapper cannot help, the forced
	// expansion must walk back to the preceding newline
	run := strings.Repeat("alpha beta gamma delta ", 5)
	text := "Intro heading\n" + run + "tail end of text"

	raw := []models.RawIndexedClause{
		{StartIndex: 64, EndIndex: 124, ClauseType: "term"},
	}

	res := Validate(raw, text, DefaultConfig())

	require.Len(t, res.Valid, 1)
	assert.Equal(t, strings.Index(text, "alpha"), res.Valid[0].StartIndex)
	assert.GreaterOrEqual(t, res.Snap.ForcedExpansions, 1)
}

func TestCoverageRate(t *testing.T) {
	assert.Equal(t, 0.0, Telemetry{}.CoverageRate())
	assert.InDelta(t, 0.75, Telemetry{Returned: 4, Valid: 3}.CoverageRate(), 1e-9)
}

func TestValidateEmptyInput(t *testing.T) {
	res := Validate(nil, "some document text", DefaultConfig())

	assert.Empty(t, res.Valid)
	assert.Equal(t, 0, res.Telemetry.Returned)
	assert.Equal(t, 0.0, res.Telemetry.CoverageRate())
}
