// Package boundary provides pure boundary-detection functions used to snap
// approximate clause spans onto linguistically valid cut points: word edges,
// sentence terminators, and list-item markers.
package boundary

import (
	"regexp"
	"strings"
)

// Direction selects which end of a span is being adjusted
type Direction int

const (
	SnapStart Direction = iota
	SnapEnd
)

const (
	// DefaultWordMaxAdjust bounds how far a word-boundary snap may walk
	DefaultWordMaxAdjust = 15
	// DefaultSentenceWindow bounds sentence/list-item boundary scans
	DefaultSentenceWindow = 100
	// ExtendedWindowCap caps the adaptive second-pass search window
	ExtendedWindowCap = 200
)

// SnapTelemetry counts how boundary adjustments were achieved. Used for
// quality auditing, not decision logic.
type SnapTelemetry struct {
	SentenceSnaps    int `json:"sentence_snaps"`
	ListSnaps        int `json:"list_snaps"`
	WordSnaps        int `json:"word_snaps"`
	ExtendedSnaps    int `json:"extended_snaps"`
	ForcedExpansions int `json:"forced_expansions"`
}

// Merge adds another telemetry delta into this accumulator
func (t *SnapTelemetry) Merge(other SnapTelemetry) {
	t.SentenceSnaps += other.SentenceSnaps
	t.ListSnaps += other.ListSnaps
	t.WordSnaps += other.WordSnaps
	t.ExtendedSnaps += other.ExtendedSnaps
	t.ForcedExpansions += other.ForcedExpansions
}

// IsWordChar reports whether b is part of an alphanumeric run
func IsWordChar(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// SnapToWordBoundary walks at most maxAdjust characters to the nearest edge
// of the alphanumeric run containing index. Positions already on a boundary
// are returned unchanged.
func SnapToWordBoundary(text string, index int, dir Direction, maxAdjust int) int {
	if index <= 0 {
		return 0
	}
	if index >= len(text) {
		return len(text)
	}

	i := index
	if dir == SnapStart {
		for steps := 0; i > 0 && steps < maxAdjust && IsWordChar(text[i-1]); steps++ {
			i--
		}
		return i
	}

	for steps := 0; i < len(text) && steps < maxAdjust && IsWordChar(text[i]); steps++ {
		i++
	}
	return i
}

// Abbreviations that commonly precede a period without ending a sentence.
// Lowercased; compared against the word immediately before the period.
var abbreviations = map[string]bool{
	"inc": true, "ltd": true, "llc": true, "corp": true, "co": true,
	"no": true, "vs": true, "etc": true, "approx": true,
	"mr": true, "mrs": true, "ms": true, "dr": true, "st": true,
	"e.g": true, "i.e": true, "g": true, "e": true,
}

// IsSentenceEndPeriod reports whether the period at idx actually terminates a
// sentence. Periods inside abbreviations ("Inc.", "e.g.", "J."), decimals, and
// URL-like tokens ("example.com") are rejected.
func IsSentenceEndPeriod(text string, idx int) bool {
	if idx < 0 || idx >= len(text) || text[idx] != '.' {
		return false
	}

	// Decimal, domain, or email: alphanumeric-ish continuation after the dot
	if idx+1 < len(text) {
		next := text[idx+1]
		if (next >= 'a' && next <= 'z') || (next >= '0' && next <= '9') || next == '@' {
			return false
		}
	}

	// Single uppercase initial, e.g. "J."
	if idx >= 1 && text[idx-1] >= 'A' && text[idx-1] <= 'Z' {
		if idx < 2 || !IsWordChar(text[idx-2]) {
			return false
		}
	}

	// Known abbreviation immediately before the period
	wordStart := idx
	for wordStart > 0 && (IsWordChar(text[wordStart-1]) || text[wordStart-1] == '.') {
		wordStart--
	}
	word := strings.ToLower(strings.TrimSuffix(text[wordStart:idx], "."))
	if abbreviations[word] {
		return false
	}

	return true
}

// isSentenceTerminator reports whether the character at idx ends a sentence
func isSentenceTerminator(text string, idx int) bool {
	switch text[idx] {
	case '!', '?', ':', ';':
		return true
	case '.':
		return IsSentenceEndPeriod(text, idx)
	}
	return false
}

// FindSentenceStart scans backward up to maxLookback for a sentence
// terminator or a blank-line paragraph break and returns the position just
// after it (skipping whitespace). Returns idx unchanged if no boundary is
// found within the window.
func FindSentenceStart(text string, idx, maxLookback int) int {
	if idx <= 0 {
		return 0
	}
	if idx > len(text) {
		idx = len(text)
	}

	limit := idx - maxLookback
	if limit < 0 {
		limit = 0
	}

	for i := idx - 1; i >= limit; i-- {
		if isSentenceTerminator(text, i) {
			return skipForwardWhitespace(text, i+1, idx)
		}
		if text[i] == '\n' && i > 0 && isBlankBefore(text, i) {
			return skipForwardWhitespace(text, i+1, idx)
		}
	}
	return idx
}

// FindSentenceEnd scans forward up to maxLookahead for a sentence terminator
// or a blank-line paragraph break and returns the exclusive end position.
// Returns idx unchanged if no boundary is found within the window.
func FindSentenceEnd(text string, idx, maxLookahead int) int {
	if idx < 0 {
		return 0
	}
	if idx >= len(text) {
		return len(text)
	}

	limit := idx + maxLookahead
	if limit > len(text) {
		limit = len(text)
	}

	for i := idx; i < limit; i++ {
		if isSentenceTerminator(text, i) {
			return i + 1
		}
		if text[i] == '\n' && i+1 < len(text) && isBlankAfter(text, i) {
			return i
		}
	}
	return idx
}

var listMarkerPattern = regexp.MustCompile(`^[ \t]*(?:[•·*-]|\d+[.)])[ \t]`)

// FindListItemStart finds the nearest preceding bullet or numbered list
// marker that follows a newline, within maxLookback characters. Returns the
// index where the list item begins, or -1 if none is found in the window.
func FindListItemStart(text string, idx, maxLookback int) int {
	if idx <= 0 || idx > len(text) {
		return -1
	}

	limit := idx - maxLookback
	if limit < 0 {
		limit = 0
	}

	for i := idx - 1; i >= limit; i-- {
		if text[i] != '\n' && i != 0 {
			continue
		}
		lineStart := i
		if text[i] == '\n' {
			lineStart = i + 1
		}
		rest := text[lineStart:]
		if loc := listMarkerPattern.FindStringIndex(rest); loc != nil {
			marker := lineStart + loc[0]
			// the marker must not be past the position we are snapping
			if marker <= idx {
				return skipForwardWhitespace(text, marker, len(text))
			}
		}
		if i == 0 {
			break
		}
	}
	return -1
}

var numberedHeadingPattern = regexp.MustCompile(`^(?:[IVXLC]+|\d+(?:\.\d+)*)[.)]?\s+\S`)

// IsLikelyHeader classifies a line as a section header: short, and either
// ALL-CAPS, a numbered heading ("IV. Title"), or colon-terminated.
func IsLikelyHeader(line string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < 3 || len(trimmed) > 80 {
		return false
	}

	if numberedHeadingPattern.MatchString(trimmed) {
		return true
	}
	if strings.HasSuffix(trimmed, ":") {
		return true
	}

	// ALL-CAPS: at least one uppercase letter and none lowercase
	hasUpper := false
	for i := 0; i < len(trimmed); i++ {
		c := trimmed[i]
		if c >= 'a' && c <= 'z' {
			return false
		}
		if c >= 'A' && c <= 'Z' {
			hasUpper = true
		}
	}
	return hasUpper
}

// SnapToSentenceBoundary is the composite snapping policy. For a start
// boundary it prefers a list-item marker (the strongest signal a paragraph
// position is a true clause start), then a sentence boundary, then falls back
// to a word boundary. If the word-boundary result still looks mid-sentence
// and a clauseLength hint is available, the sentence search is retried with
// an extended window of min(200, clauseLength) before giving up. Short base
// windows avoid over-correcting well-formed input; the second pass recovers
// genuinely mis-cut candidates without unbounded searching.
func SnapToSentenceBoundary(text string, idx int, dir Direction, baseMaxAdjust, clauseLength int, telemetry *SnapTelemetry) int {
	if telemetry == nil {
		telemetry = &SnapTelemetry{}
	}
	if idx <= 0 {
		return 0
	}
	if idx >= len(text) {
		return len(text)
	}

	if dir == SnapStart {
		if list := FindListItemStart(text, idx, baseMaxAdjust); list >= 0 {
			telemetry.ListSnaps++
			return list
		}
		if start := FindSentenceStart(text, idx, baseMaxAdjust); start != idx {
			telemetry.SentenceSnaps++
			return start
		}
	} else {
		if end := FindSentenceEnd(text, idx, baseMaxAdjust); end != idx {
			telemetry.SentenceSnaps++
			return end
		}
	}

	word := SnapToWordBoundary(text, idx, dir, DefaultWordMaxAdjust)

	if isMidSentence(text, word, dir) && clauseLength > 0 {
		extended := ExtendedWindowCap
		if clauseLength < extended {
			extended = clauseLength
		}
		if extended > baseMaxAdjust {
			if dir == SnapStart {
				if list := FindListItemStart(text, idx, extended); list >= 0 {
					telemetry.ExtendedSnaps++
					return list
				}
				if start := FindSentenceStart(text, idx, extended); start != idx {
					telemetry.ExtendedSnaps++
					return start
				}
			} else {
				if end := FindSentenceEnd(text, idx, extended); end != idx {
					telemetry.ExtendedSnaps++
					return end
				}
			}
		}
	}

	telemetry.WordSnaps++
	return word
}

// isMidSentence reports whether a boundary position still sits inside a
// sentence: a lowercase letter whose preceding non-space character is a
// letter or digit.
func isMidSentence(text string, idx int, dir Direction) bool {
	if dir == SnapEnd {
		// an end boundary is mid-sentence when the next non-space character
		// continues in lowercase
		for i := idx; i < len(text); i++ {
			c := text[i]
			if c == ' ' || c == '\t' {
				continue
			}
			return c >= 'a' && c <= 'z'
		}
		return false
	}

	if idx >= len(text) || text[idx] < 'a' || text[idx] > 'z' {
		return false
	}
	for i := idx - 1; i >= 0; i-- {
		c := text[i]
		if c == ' ' || c == '\t' {
			continue
		}
		return IsWordChar(c) || c == ','
	}
	return false
}

func skipForwardWhitespace(text string, from, max int) int {
	i := from
	for i < max && i < len(text) && (text[i] == ' ' || text[i] == '\t' || text[i] == '\n' || text[i] == '\r') {
		i++
	}
	return i
}

// isBlankBefore reports whether the newline at idx closes a blank line
func isBlankBefore(text string, idx int) bool {
	for i := idx - 1; i >= 0; i-- {
		switch text[i] {
		case ' ', '\t', '\r':
			continue
		case '\n':
			return true
		default:
			return false
		}
	}
	return false
}

// isBlankAfter reports whether the newline at idx opens a blank line
func isBlankAfter(text string, idx int) bool {
	for i := idx + 1; i < len(text); i++ {
		switch text[i] {
		case ' ', '\t', '\r':
			continue
		case '\n':
			return true
		default:
			return false
		}
	}
	return false
}
