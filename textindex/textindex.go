// Package textindex builds the bidirectional mapping between line numbers and
// character offsets that lets the extraction collaborator reference text by
// line number. LLMs are reliable at counting lines and unreliable at counting
// characters, so the numbered view removes all character-counting burden from
// the collaborator; conversion back to exact offsets happens here.
package textindex

import (
	"fmt"
	"log"
	"strings"

	"clausecheck-backend/models"
)

// LineMapping describes one physical line of the source document.
// EndChar excludes the line's trailing newline.
type LineMapping struct {
	LineNumber int
	StartChar  int
	EndChar    int
	Content    string
}

// LineNumberedDocument owns the line map for one extraction request.
// Built once per document; immutable afterward.
type LineNumberedDocument struct {
	NumberedText string
	LineMap      map[int]LineMapping
	OriginalText string
	TotalLines   int
}

// Prepare splits text on newlines, assigns each line a contiguous
// [startChar, endChar) range, and renders a "[n] line" prefixed view for the
// extraction collaborator.
func Prepare(text string) *LineNumberedDocument {
	lines := strings.Split(text, "\n")

	doc := &LineNumberedDocument{
		LineMap:      make(map[int]LineMapping, len(lines)),
		OriginalText: text,
		TotalLines:   len(lines),
	}

	var numbered strings.Builder
	offset := 0
	for i, line := range lines {
		doc.LineMap[i] = LineMapping{
			LineNumber: i,
			StartChar:  offset,
			EndChar:    offset + len(line),
			Content:    line,
		}
		fmt.Fprintf(&numbered, "[%d] %s\n", i, line)
		// account for the stripped separator
		offset += len(line) + 1
	}

	doc.NumberedText = numbered.String()
	return doc
}

// ConvertLinesToIndices maps line-range clause candidates onto character
// ranges of the original text. Line bounds are clamped into
// [0, totalLines-1]; candidates whose range is inverted or entirely out of
// range are dropped with a warning, never fatally.
func ConvertLinesToIndices(clauses []models.RawLineBasedClause, doc *LineNumberedDocument) []models.RawIndexedClause {
	indexed := make([]models.RawIndexedClause, 0, len(clauses))

	for i, clause := range clauses {
		if clause.StartLine > clause.EndLine {
			log.Printf("Warning: Dropping clause %d: start_line %d > end_line %d", i, clause.StartLine, clause.EndLine)
			continue
		}
		if clause.EndLine < 0 || clause.StartLine > doc.TotalLines-1 {
			log.Printf("Warning: Dropping clause %d: line range [%d,%d] outside document (%d lines)",
				i, clause.StartLine, clause.EndLine, doc.TotalLines)
			continue
		}

		startLine := clampLine(clause.StartLine, doc.TotalLines)
		endLine := clampLine(clause.EndLine, doc.TotalLines)

		indexed = append(indexed, models.RawIndexedClause{
			StartIndex:   doc.LineMap[startLine].StartChar,
			EndIndex:     doc.LineMap[endLine].EndChar,
			ClauseType:   clause.ClauseType,
			Summary:      clause.Summary,
			Confidence:   clause.Confidence,
			RagStatus:    clause.RagStatus,
			SectionTitle: clause.SectionTitle,
		})
	}

	return indexed
}

func clampLine(line, totalLines int) int {
	if line < 0 {
		return 0
	}
	if line > totalLines-1 {
		return totalLines - 1
	}
	return line
}
