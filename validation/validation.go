// Package validation turns untrusted clause candidates into exact,
// non-overlapping, review-ready spans of the original text.
package validation

import (
	"sort"
	"strings"

	"clausecheck-backend/boundary"
	"clausecheck-backend/models"
)

// Config controls clause validation
type Config struct {
	MinClauseLength int
	MaxClauseLength int
	SnapBoundaries  bool
	ForceBoundaries bool
	MaxExpand       int
	SnapWindow      int
}

// DefaultConfig returns the validation defaults used by the review pipeline
func DefaultConfig() Config {
	return Config{
		MinClauseLength: 20,
		MaxClauseLength: 4000,
		SnapBoundaries:  true,
		ForceBoundaries: true,
		MaxExpand:       300,
		SnapWindow:      80,
	}
}

// Telemetry counts candidates dropped per cause during one validation run
type Telemetry struct {
	Returned       int `json:"returned"`
	Valid          int `json:"valid"`
	DroppedBounds  int `json:"dropped_bounds"`
	DroppedOverlap int `json:"dropped_overlap"`
	DroppedEmpty   int `json:"dropped_empty"`
	DroppedLength  int `json:"dropped_length"`
}

// CoverageRate reports valid/returned, 0 when nothing was returned
func (t Telemetry) CoverageRate() float64 {
	if t.Returned == 0 {
		return 0
	}
	return float64(t.Valid) / float64(t.Returned)
}

// Result is the output of one validation run
type Result struct {
	Valid     []models.ValidatedClause
	Telemetry Telemetry
	Snap      boundary.SnapTelemetry
}

// Validate bounds-checks, snaps, forces, trims, and deduplicates raw clause
// candidates against the full document text. Surviving clauses are sorted by
// (start, end) and guaranteed non-overlapping: when two candidates collide the
// earliest-starting one wins and the later one is dropped, even if the later
// one is longer or has higher confidence. Review-queue behavior depends on
// that tie-break; do not change it.
func Validate(raw []models.RawIndexedClause, fullText string, cfg Config) Result {
	res := Result{
		Valid:     make([]models.ValidatedClause, 0, len(raw)),
		Telemetry: Telemetry{Returned: len(raw)},
	}

	candidates := make([]models.RawIndexedClause, 0, len(raw))
	for _, clause := range raw {
		if clause.StartIndex < 0 || clause.EndIndex > len(fullText) || clause.StartIndex >= clause.EndIndex {
			res.Telemetry.DroppedBounds++
			continue
		}

		start, end := clause.StartIndex, clause.EndIndex
		rawLength := end - start

		if cfg.SnapBoundaries {
			start = boundary.SnapToSentenceBoundary(fullText, start, boundary.SnapStart, cfg.SnapWindow, rawLength, &res.Snap)
			end = boundary.SnapToSentenceBoundary(fullText, end, boundary.SnapEnd, cfg.SnapWindow, rawLength, &res.Snap)
		}

		if cfg.ForceBoundaries {
			start, end = forceValidBoundaries(fullText, start, end, cfg.MaxExpand, &res.Snap)
		}

		start = trimLeadingHeader(fullText, start, end, cfg.MinClauseLength)
		end = trimTrailingWhitespace(fullText, start, end, cfg.MinClauseLength)

		if start < 0 || end > len(fullText) || start >= end {
			res.Telemetry.DroppedBounds++
			continue
		}

		length := end - start
		if length <= cfg.MinClauseLength || length > cfg.MaxClauseLength*2 {
			// the 2x slack absorbs boundary expansion applied above
			res.Telemetry.DroppedLength++
			continue
		}

		if strings.TrimSpace(fullText[start:end]) == "" {
			res.Telemetry.DroppedEmpty++
			continue
		}

		clause.StartIndex = start
		clause.EndIndex = end
		candidates = append(candidates, clause)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].StartIndex != candidates[j].StartIndex {
			return candidates[i].StartIndex < candidates[j].StartIndex
		}
		return candidates[i].EndIndex < candidates[j].EndIndex
	})

	// single linear sweep; touching spans (start == previous end) are kept
	previousEnd := -1
	for _, clause := range candidates {
		if clause.StartIndex < previousEnd {
			res.Telemetry.DroppedOverlap++
			continue
		}
		previousEnd = clause.EndIndex
		res.Valid = append(res.Valid, models.ValidatedClause{
			RawIndexedClause: clause,
			Content:          fullText[clause.StartIndex:clause.EndIndex],
		})
	}

	res.Telemetry.Valid = len(res.Valid)
	return res
}

// forceValidBoundaries walks both ends outward, up to maxExpand characters
// each, until they rest on a newline, a sentence terminator, or a bullet
// marker. A stronger, distance-bounded fallback for candidates the snapper
// could not cleanly resolve.
func forceValidBoundaries(text string, start, end, maxExpand int, telemetry *boundary.SnapTelemetry) (int, int) {
	newStart := forceStart(text, start, maxExpand)
	newEnd := forceEnd(text, end, maxExpand)
	if newStart != start || newEnd != end {
		telemetry.ForcedExpansions++
	}
	return newStart, newEnd
}

func forceStart(text string, start, maxExpand int) int {
	if start <= 0 {
		return 0
	}
	if startsCleanly(text, start) {
		return start
	}

	limit := start - maxExpand
	if limit < 0 {
		limit = 0
	}
	for i := start - 1; i >= limit; i-- {
		c := text[i]
		if c == '\n' || c == ':' || c == ';' || c == '!' || c == '?' ||
			(c == '.' && boundary.IsSentenceEndPeriod(text, i)) {
			return skipSpaces(text, i+1)
		}
		if isBulletMarker(text, i) {
			return i
		}
		if i == 0 {
			return 0
		}
	}
	return start
}

func forceEnd(text string, end, maxExpand int) int {
	if end >= len(text) {
		return len(text)
	}
	if endsCleanly(text, end) {
		return end
	}

	limit := end + maxExpand
	if limit > len(text) {
		limit = len(text)
	}
	for i := end; i < limit; i++ {
		c := text[i]
		if c == '\n' {
			return i
		}
		if c == ':' || c == ';' || c == '!' || c == '?' ||
			(c == '.' && boundary.IsSentenceEndPeriod(text, i)) {
			return i + 1
		}
	}
	return end
}

// startsCleanly reports whether a span starting at idx already rests on a
// line start or sentence start
func startsCleanly(text string, idx int) bool {
	if idx == 0 || text[idx-1] == '\n' {
		return true
	}
	i := idx - 1
	for i >= 0 && (text[i] == ' ' || text[i] == '\t') {
		i--
	}
	if i < 0 {
		return true
	}
	c := text[i]
	if c == '\n' || c == ':' || c == ';' || c == '!' || c == '?' {
		return true
	}
	return c == '.' && boundary.IsSentenceEndPeriod(text, i)
}

// endsCleanly reports whether a span ending at idx already rests on a
// terminator or line end
func endsCleanly(text string, idx int) bool {
	if idx >= len(text) || text[idx] == '\n' {
		return true
	}
	if idx == 0 {
		return false
	}
	c := text[idx-1]
	if c == ':' || c == ';' || c == '!' || c == '?' {
		return true
	}
	return c == '.' && boundary.IsSentenceEndPeriod(text, idx-1)
}

func isBulletMarker(text string, idx int) bool {
	if idx > 0 && text[idx-1] != '\n' && text[idx-1] != ' ' && text[idx-1] != '\t' {
		return false
	}
	c := text[idx]
	if c == '*' || c == '-' {
		return idx+1 < len(text) && (text[idx+1] == ' ' || text[idx+1] == '\t')
	}
	// UTF-8 bullets: • (e2 80 a2) and · (c2 b7)
	if c == 0xE2 && idx+2 < len(text) && text[idx+1] == 0x80 && text[idx+2] == 0xA2 {
		return true
	}
	if c == 0xC2 && idx+1 < len(text) && text[idx+1] == 0xB7 {
		return true
	}
	return false
}

func skipSpaces(text string, idx int) int {
	for idx < len(text) && (text[idx] == ' ' || text[idx] == '\t' || text[idx] == '\n' || text[idx] == '\r') {
		idx++
	}
	return idx
}

// trimLeadingHeader strips a spurious section header the clause boundary
// accidentally swallowed, provided the remainder still meets the minimum
// clause length.
func trimLeadingHeader(text string, start, end, minLength int) int {
	if start >= end {
		return start
	}

	lineEnd := strings.IndexByte(text[start:end], '\n')
	if lineEnd < 0 {
		return start
	}

	firstLine := text[start : start+lineEnd]
	if !boundary.IsLikelyHeader(firstLine) {
		return start
	}

	trimmed := skipSpaces(text, start+lineEnd+1)
	if end-trimmed > minLength {
		return trimmed
	}
	return start
}

// trimTrailingWhitespace moves the end back over trailing whitespace,
// provided the remainder still meets the minimum clause length
func trimTrailingWhitespace(text string, start, end, minLength int) int {
	trimmed := end
	for trimmed > start {
		c := text[trimmed-1]
		if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
			break
		}
		trimmed--
	}
	if trimmed-start > minLength {
		return trimmed
	}
	return end
}
