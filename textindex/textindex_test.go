package textindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clausecheck-backend/models"
)

func TestPrepare(t *testing.T) {
	text := "alpha\nbeta\ngamma"
	doc := Prepare(text)

	assert.Equal(t, 3, doc.TotalLines)
	assert.Equal(t, text, doc.OriginalText)
	assert.Equal(t, "[0] alpha\n[1] beta\n[2] gamma\n", doc.NumberedText)

	// ranges are contiguous and exclude the stripped newline
	assert.Equal(t, LineMapping{LineNumber: 0, StartChar: 0, EndChar: 5, Content: "alpha"}, doc.LineMap[0])
	assert.Equal(t, LineMapping{LineNumber: 1, StartChar: 6, EndChar: 10, Content: "beta"}, doc.LineMap[1])
	assert.Equal(t, LineMapping{LineNumber: 2, StartChar: 11, EndChar: 16, Content: "gamma"}, doc.LineMap[2])

	// a line's range must reproduce its content when sliced from the original
	for i := 0; i < doc.TotalLines; i++ {
		m := doc.LineMap[i]
		assert.Equal(t, m.Content, text[m.StartChar:m.EndChar])
	}
}

func TestPrepareSingleLine(t *testing.T) {
	doc := Prepare("only line")

	assert.Equal(t, 1, doc.TotalLines)
	assert.Equal(t, "[0] only line\n", doc.NumberedText)
	assert.Equal(t, 9, doc.LineMap[0].EndChar)
}

func TestConvertLinesToIndices(t *testing.T) {
	text := "alpha\nbeta\ngamma"
	doc := Prepare(text)

	t.Run("maps a line range onto character offsets", func(t *testing.T) {
		indexed := ConvertLinesToIndices([]models.RawLineBasedClause{
			{StartLine: 0, EndLine: 1, ClauseType: "payment", Confidence: 0.9},
		}, doc)

		require.Len(t, indexed, 1)
		assert.Equal(t, 0, indexed[0].StartIndex)
		assert.Equal(t, 10, indexed[0].EndIndex)
		assert.Equal(t, "alpha\nbeta", text[indexed[0].StartIndex:indexed[0].EndIndex])
		assert.Equal(t, "payment", indexed[0].ClauseType)
	})

	t.Run("clamps out-of-range ends into the document", func(t *testing.T) {
		indexed := ConvertLinesToIndices([]models.RawLineBasedClause{
			{StartLine: 1, EndLine: 99},
			{StartLine: -2, EndLine: 0},
		}, doc)

		require.Len(t, indexed, 2)
		assert.Equal(t, 6, indexed[0].StartIndex)
		assert.Equal(t, len(text), indexed[0].EndIndex)
		assert.Equal(t, 0, indexed[1].StartIndex)
		assert.Equal(t, 5, indexed[1].EndIndex)
	})

	t.Run("drops inverted and fully out-of-range candidates", func(t *testing.T) {
		indexed := ConvertLinesToIndices([]models.RawLineBasedClause{
			{StartLine: 2, EndLine: 1},
			{StartLine: 5, EndLine: 7},
			{StartLine: -3, EndLine: -1},
			{StartLine: 2, EndLine: 2},
		}, doc)

		require.Len(t, indexed, 1)
		assert.Equal(t, 11, indexed[0].StartIndex)
		assert.Equal(t, 16, indexed[0].EndIndex)
	})

	t.Run("empty input yields empty output", func(t *testing.T) {
		assert.Empty(t, ConvertLinesToIndices(nil, doc))
	})
}
