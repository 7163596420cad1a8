// Package matching pairs validated contract clauses with pre-agreed terms:
// identity terms are resolved by direct string search, the rest through a
// prioritized strategy chain and an external semantic comparison whose
// results are reconciled deterministically.
package matching

import (
	"strings"

	"clausecheck-backend/models"
)

// Identity term categories are checked by presence, not semantics: their
// value is a proper noun and either it appears in the document or it does not.
var identityCategories = map[string]bool{
	"brand name":        true,
	"brand":             true,
	"talent name":       true,
	"talent":            true,
	"agency name":       true,
	"agency":            true,
	"client name":       true,
	"client":            true,
	"company name":      true,
	"company":           true,
	"counterparty name": true,
}

// IsIdentityTerm reports whether a term should bypass semantic comparison.
// The LLM-suggested normalized category is consulted first.
func IsIdentityTerm(term *models.PreAgreedTerm) bool {
	if term.NormalizedTermCategory != nil && identityCategories[normalizeCategory(*term.NormalizedTermCategory)] {
		return true
	}
	return identityCategories[normalizeCategory(term.TermCategory)]
}

func normalizeCategory(category string) string {
	return strings.ToLower(strings.TrimSpace(category))
}

// CheckIdentityMatch searches for an expected identity value, strongest
// signal first: exact substring in the clause, exact substring in the full
// document, then a partial match requiring at least 70% of the value's
// significant words somewhere in the document.
func CheckIdentityMatch(expectedValue, clauseContent, fullText string) models.IdentityMatchResult {
	expected := strings.TrimSpace(expectedValue)
	if expected == "" {
		return models.IdentityMatchResult{MatchType: models.MatchTypeAbsent}
	}

	expectedLower := strings.ToLower(expected)

	if found := findSubstring(clauseContent, expectedLower); found != "" {
		return models.IdentityMatchResult{
			Matches:    true,
			MatchType:  models.MatchTypeExact,
			Confidence: 1.0,
			FoundValue: found,
		}
	}

	if found := findSubstring(fullText, expectedLower); found != "" {
		return models.IdentityMatchResult{
			Matches:    true,
			MatchType:  models.MatchTypeExact,
			Confidence: 0.95,
			FoundValue: found,
		}
	}

	if found := findSubstring(normalizeIdentity(fullText), normalizeIdentity(expectedLower)); found != "" {
		return models.IdentityMatchResult{
			Matches:    true,
			MatchType:  models.MatchTypeNormalized,
			Confidence: 0.85,
			FoundValue: expected,
		}
	}

	words := significantWords(expectedLower)
	if len(words) > 0 {
		textLower := strings.ToLower(fullText)
		present := 0
		for _, word := range words {
			if strings.Contains(textLower, word) {
				present++
			}
		}
		ratio := float64(present) / float64(len(words))
		if ratio >= 0.7 {
			return models.IdentityMatchResult{
				Matches:    true,
				MatchType:  models.MatchTypePartial,
				Confidence: ratio * 0.8,
				FoundValue: expected,
			}
		}
	}

	return models.IdentityMatchResult{MatchType: models.MatchTypeAbsent}
}

// IdentityRag maps an identity match onto the traffic-light scale. A fuzzy
// identity match is never auto-approved: partial matches stay amber for human
// review, and an absent mandatory term is red.
func IdentityRag(result models.IdentityMatchResult, isMandatory bool) models.RagStatus {
	switch result.MatchType {
	case models.MatchTypeExact, models.MatchTypeNormalized:
		return models.RagGreen
	case models.MatchTypePartial:
		return models.RagAmber
	default:
		if isMandatory {
			return models.RagRed
		}
		return models.RagAmber
	}
}

// findSubstring does a case-insensitive search and returns the matched text
// in its original casing, or "" if absent
func findSubstring(haystack, needleLower string) string {
	if needleLower == "" {
		return ""
	}
	idx := strings.Index(strings.ToLower(haystack), needleLower)
	if idx < 0 {
		return ""
	}
	return haystack[idx : idx+len(needleLower)]
}

// normalizeIdentity strips punctuation and collapses whitespace so that
// "Nike, Inc." still matches "Nike Inc"
func normalizeIdentity(s string) string {
	var b strings.Builder
	lastSpace := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace && b.Len() > 0 {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// significantWords returns the words of an identity value worth matching on
// individually (longer than 2 characters)
func significantWords(s string) []string {
	var words []string
	for _, word := range strings.Fields(normalizeIdentity(s)) {
		if len(word) > 2 {
			words = append(words, word)
		}
	}
	return words
}
