package boundary

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnapToWordBoundary(t *testing.T) {
	text := "Hello world test"

	tests := []struct {
		name      string
		index     int
		dir       Direction
		maxAdjust int
		want      int
	}{
		{"mid-word start snaps back to word start", 2, SnapStart, 15, 0},
		{"mid-word end snaps forward past word", 8, SnapEnd, 15, 11},
		{"start already on boundary unchanged", 6, SnapStart, 15, 6},
		{"end already on boundary unchanged", 11, SnapEnd, 15, 11},
		{"negative index clamps to zero", -4, SnapStart, 15, 0},
		{"index past end clamps to length", 99, SnapEnd, 15, len(text)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SnapToWordBoundary(text, tt.index, tt.dir, tt.maxAdjust)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("walk is bounded by maxAdjust", func(t *testing.T) {
		got := SnapToWordBoundary("abcdefghij", 5, SnapStart, 2)
		assert.Equal(t, 3, got)
	})
}

func TestIsSentenceEndPeriod(t *testing.T) {
	tests := []struct {
		name string
		text string
		idx  int
		want bool
	}{
		{"final period of a sentence", "This sentence ends with a pause.", 31, true},
		{"domain dot is not sentence end", "Visit example.com today.", 13, false},
		{"decimal point is not sentence end", "Pay 3.14 percent interest.", 5, false},
		{"abbreviation Corp is rejected", "Acme Corp. was founded in 1990.", 9, false},
		{"abbreviation Inc is rejected", "Nike, Inc. agrees to the terms.", 9, false},
		{"single uppercase initial is rejected", "J. Smith signs below.", 1, false},
		{"e.g. is rejected", "Deliverables (e.g. photos) follow.", 17, false},
		{"period mid-sentence before space accepted", "It ends here. And continues.", 12, true},
		{"index not pointing at a period", "No dot here", 3, false},
		{"out of range index", "short.", 42, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSentenceEndPeriod(tt.text, tt.idx))
		})
	}
}

func TestFindSentenceStart(t *testing.T) {
	text := "First sentence. Second part here."

	t.Run("finds position after previous terminator", func(t *testing.T) {
		idx := strings.Index(text, "part")
		got := FindSentenceStart(text, idx, 100)
		assert.Equal(t, strings.Index(text, "Second"), got)
	})

	t.Run("returns idx when window has no boundary", func(t *testing.T) {
		plain := "no terminators anywhere in this stretch of text"
		assert.Equal(t, 30, FindSentenceStart(plain, 30, 10))
	})

	t.Run("paragraph break counts as a boundary", func(t *testing.T) {
		doc := "Intro line\n\nBody paragraph text"
		idx := strings.Index(doc, "paragraph")
		got := FindSentenceStart(doc, idx, 100)
		assert.Equal(t, strings.Index(doc, "Body"), got)
	})

	t.Run("zero index stays zero", func(t *testing.T) {
		assert.Equal(t, 0, FindSentenceStart(text, 0, 100))
	})
}

func TestFindSentenceEnd(t *testing.T) {
	text := "Clause text ends here. Next clause begins."

	t.Run("returns position after terminator", func(t *testing.T) {
		got := FindSentenceEnd(text, 5, 100)
		assert.Equal(t, strings.Index(text, ".")+1, got)
	})

	t.Run("returns idx when window has no boundary", func(t *testing.T) {
		plain := "no terminators anywhere in this stretch of text"
		assert.Equal(t, 5, FindSentenceEnd(plain, 5, 10))
	})

	t.Run("stops at blank line", func(t *testing.T) {
		doc := "First block of text\n\nSecond block"
		got := FindSentenceEnd(doc, 6, 100)
		assert.Equal(t, strings.Index(doc, "\n"), got)
	})

	t.Run("index at end of text returns length", func(t *testing.T) {
		assert.Equal(t, len(text), FindSentenceEnd(text, len(text), 100))
	})
}

func TestFindListItemStart(t *testing.T) {
	t.Run("finds bullet marker", func(t *testing.T) {
		text := "Header\n- First item text\n- Second item"
		idx := strings.Index(text, "item")
		got := FindListItemStart(text, idx, 100)
		assert.Equal(t, strings.Index(text, "-"), got)
	})

	t.Run("finds numbered marker", func(t *testing.T) {
		text := "Terms:\n1. Payment due in thirty days"
		idx := strings.Index(text, "due")
		got := FindListItemStart(text, idx, 100)
		assert.Equal(t, strings.Index(text, "1."), got)
	})

	t.Run("no marker returns -1", func(t *testing.T) {
		text := "plain paragraph with no list structure at all"
		assert.Equal(t, -1, FindListItemStart(text, 20, 100))
	})

	t.Run("marker outside lookback window is missed", func(t *testing.T) {
		text := "- item with a very long tail that keeps going on and on"
		assert.Equal(t, -1, FindListItemStart(text, 50, 5))
	})
}

func TestIsLikelyHeader(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"PAYMENT TERMS", true},
		{"IV. Governing Law", true},
		{"3.2 Payment Schedule", true},
		{"Deliverables:", true},
		{"The party shall deliver all items promptly", false},
		{"ab", false},
		{strings.Repeat("LONG HEADER ", 10), false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, IsLikelyHeader(tt.line))
		})
	}
}

func TestSnapToSentenceBoundary(t *testing.T) {
	t.Run("start snaps to previous sentence end", func(t *testing.T) {
		text := "First sentence here. And the second sentence continues onward."
		var tel SnapTelemetry
		got := SnapToSentenceBoundary(text, 30, SnapStart, 100, 0, &tel)
		assert.Equal(t, strings.Index(text, "And"), got)
		assert.Equal(t, 1, tel.SentenceSnaps)
	})

	t.Run("end snaps forward to terminator", func(t *testing.T) {
		text := "Clause text ends here. Next clause begins."
		var tel SnapTelemetry
		got := SnapToSentenceBoundary(text, 5, SnapEnd, 100, 0, &tel)
		assert.Equal(t, strings.Index(text, ".")+1, got)
		assert.Equal(t, 1, tel.SentenceSnaps)
	})

	t.Run("list marker wins over sentence boundary", func(t *testing.T) {
		text := "Intro. Items follow:\n- pay the fee promptly\n- deliver on time"
		idx := strings.Index(text, "fee")
		var tel SnapTelemetry
		got := SnapToSentenceBoundary(text, idx, SnapStart, 100, 0, &tel)
		assert.Equal(t, strings.Index(text, "- pay"), got)
		assert.Equal(t, 1, tel.ListSnaps)
	})

	t.Run("extended window recovers a distant sentence start", func(t *testing.T) {
		text := "End of the previous sentence. this continuation clause runs for quite a long while before stopping"
		idx := strings.Index(text, "ause") // mid-word inside "clause"
		var tel SnapTelemetry
		got := SnapToSentenceBoundary(text, idx, SnapStart, 10, 120, &tel)
		assert.Equal(t, strings.Index(text, "this"), got)
		assert.Equal(t, 1, tel.ExtendedSnaps)
	})

	t.Run("falls back to word boundary without a clause length hint", func(t *testing.T) {
		text := "End of the previous sentence. this continuation clause runs for quite a long while before stopping"
		idx := strings.Index(text, "ause")
		var tel SnapTelemetry
		got := SnapToSentenceBoundary(text, idx, SnapStart, 10, 0, &tel)
		assert.Equal(t, strings.Index(text, "clause"), got)
		assert.Equal(t, 1, tel.WordSnaps)
	})

	t.Run("nil telemetry is tolerated", func(t *testing.T) {
		text := "Short. And more."
		got := SnapToSentenceBoundary(text, 10, SnapStart, 100, 0, nil)
		assert.Equal(t, strings.Index(text, "And"), got)
	})
}

func TestSnapTelemetryMerge(t *testing.T) {
	total := SnapTelemetry{SentenceSnaps: 1, WordSnaps: 2}
	total.Merge(SnapTelemetry{SentenceSnaps: 3, ListSnaps: 1, ForcedExpansions: 2})

	assert.Equal(t, 4, total.SentenceSnaps)
	assert.Equal(t, 1, total.ListSnaps)
	assert.Equal(t, 2, total.WordSnaps)
	assert.Equal(t, 2, total.ForcedExpansions)
}
