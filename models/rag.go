package models

import "strings"

// RagStatus is a red/amber/green classification of risk or match quality
type RagStatus string

const (
	RagGreen RagStatus = "green"
	RagAmber RagStatus = "amber"
	RagRed   RagStatus = "red"
)

// ParseRagStatus normalizes an untrusted status string, defaulting to amber
func ParseRagStatus(s string) RagStatus {
	switch RagStatus(strings.ToLower(strings.TrimSpace(s))) {
	case RagGreen:
		return RagGreen
	case RagRed:
		return RagRed
	default:
		return RagAmber
	}
}

// Score ranks RAG statuses for best-match selection: green > amber > red
func (r RagStatus) Score() int {
	switch r {
	case RagGreen:
		return 3
	case RagAmber:
		return 2
	default:
		return 1
	}
}

// Severity describes how far a clause deviates from its pre-agreed term
type Severity string

const (
	SeverityNone  Severity = "none"
	SeverityMinor Severity = "minor"
	SeverityMajor Severity = "major"
)

// ParseSeverity normalizes an untrusted severity string, defaulting to major
func ParseSeverity(s string) Severity {
	switch Severity(strings.ToLower(strings.TrimSpace(s))) {
	case SeverityNone:
		return SeverityNone
	case SeverityMinor:
		return SeverityMinor
	default:
		return SeverityMajor
	}
}

// MatchReason records which selection strategy paired a clause with a term
type MatchReason string

const (
	ReasonTypeMatch           MatchReason = "type_match"
	ReasonFallbackMatch       MatchReason = "fallback_match"
	ReasonSemanticFallback    MatchReason = "semantic_fallback"
	ReasonEmbeddingSimilarity MatchReason = "embedding_similarity"
	ReasonIdentityMatch       MatchReason = "identity_match"
)

// Weight ranks match reasons: a structurally grounded match outranks a
// higher-confidence but structurally weaker one
func (m MatchReason) Weight() float64 {
	switch m {
	case ReasonTypeMatch:
		return 1.0
	case ReasonFallbackMatch:
		return 0.8
	case ReasonEmbeddingSimilarity:
		return 0.7
	default:
		return 0.5
	}
}

// MatchType describes how an identity term was located in the document
type MatchType string

const (
	MatchTypeExact      MatchType = "exact"
	MatchTypeNormalized MatchType = "normalized"
	MatchTypePartial    MatchType = "partial"
	MatchTypeAbsent     MatchType = "absent"
)
