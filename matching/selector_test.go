package matching

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clausecheck-backend/models"
)

func clause(clauseType, content string) *models.ClauseBoundary {
	return &models.ClauseBoundary{
		ID:         uuid.New(),
		ClauseType: clauseType,
		Content:    content,
	}
}

func matchResult(clauseID uuid.UUID, score float64) *models.ClauseMatchResult {
	return &models.ClauseMatchResult{
		ID:               uuid.New(),
		ClauseBoundaryID: clauseID,
		SimilarityScore:  score,
	}
}

func TestNormalizeClauseType(t *testing.T) {
	assert.Equal(t, "payment_terms", NormalizeClauseType("Payment-Terms"))
	assert.Equal(t, "usage_rights", NormalizeClauseType("  Usage Rights  "))
	assert.Equal(t, "termination", NormalizeClauseType("termination"))
}

func TestBuildClauseIndex(t *testing.T) {
	payment := clause("Payment Terms", "payment clause")
	termination := clause("termination", "termination clause")

	weak := matchResult(payment.ID, 0.6)
	strong := matchResult(payment.ID, 0.9)

	idx := BuildClauseIndex(
		[]*models.ClauseBoundary{payment, termination},
		[]*models.ClauseMatchResult{weak, strong},
	)

	assert.Len(t, idx.ByType["payment_terms"], 1)
	assert.Len(t, idx.ByType["termination"], 1)
	assert.Same(t, payment, idx.ByID[payment.ID])

	best := idx.BestMatchResult(payment.ID)
	require.NotNil(t, best)
	assert.Equal(t, 0.9, best.SimilarityScore)

	assert.Nil(t, idx.BestMatchResult(termination.ID))
}

func TestSelectForTermTypeMatch(t *testing.T) {
	payment := clause("payment", "payment clause")
	invoicing := clause("invoicing", "invoicing clause")
	idx := BuildClauseIndex([]*models.ClauseBoundary{payment, invoicing}, nil)

	term := &models.PreAgreedTerm{TermCategory: "Payment Terms", TermDescription: "total fee"}
	candidates := NewSelector().SelectForTerm(term, idx)

	// the chain stops at the primary type tier: the fallback-tier invoicing
	// clause is never consulted
	require.Len(t, candidates, 1)
	assert.Same(t, payment, candidates[0].Clause)
	assert.Equal(t, models.ReasonTypeMatch, candidates[0].MatchReason)
}

func TestSelectForTermFallbackType(t *testing.T) {
	invoicing := clause("invoicing", "invoicing clause")
	idx := BuildClauseIndex([]*models.ClauseBoundary{invoicing}, nil)

	term := &models.PreAgreedTerm{TermCategory: "Payment Terms", TermDescription: "total fee"}
	candidates := NewSelector().SelectForTerm(term, idx)

	require.Len(t, candidates, 1)
	assert.Same(t, invoicing, candidates[0].Clause)
	assert.Equal(t, models.ReasonFallbackMatch, candidates[0].MatchReason)
}

func TestSelectForTermNormalizedClauseTypeOverride(t *testing.T) {
	payment := clause("payment", "payment clause")
	exclusivity := clause("exclusivity", "exclusivity clause")
	idx := BuildClauseIndex([]*models.ClauseBoundary{payment, exclusivity}, nil)

	term := &models.PreAgreedTerm{
		TermCategory:         "Payment Terms",
		NormalizedClauseType: strPtr("exclusivity"),
	}
	candidates := NewSelector().SelectForTerm(term, idx)

	require.Len(t, candidates, 1)
	assert.Same(t, exclusivity, candidates[0].Clause)
}

func TestSelectForTermKeywordOverlap(t *testing.T) {
	publicity := clause("publicity_rights", "publicity clause")
	payment := clause("payment", "payment clause")
	idx := BuildClauseIndex([]*models.ClauseBoundary{publicity, payment}, nil)

	// "publicity" is not a known category, so the type tiers find nothing and
	// the keyword tier pairs on the shared word
	term := &models.PreAgreedTerm{
		TermCategory:    "Publicity",
		TermDescription: "press releases and publicity approvals",
	}
	candidates := NewSelector().SelectForTerm(term, idx)

	require.Len(t, candidates, 1)
	assert.Same(t, publicity, candidates[0].Clause)
	assert.Equal(t, models.ReasonSemanticFallback, candidates[0].MatchReason)
}

func TestSelectForTermEmbeddingFallback(t *testing.T) {
	strong := clause("governing_law", "strongly matched clause")
	weak := clause("governing_law", "weakly matched clause")
	idx := BuildClauseIndex(
		[]*models.ClauseBoundary{strong, weak},
		[]*models.ClauseMatchResult{
			matchResult(strong.ID, 0.9),
			matchResult(weak.ID, 0.65),
		},
	)

	term := &models.PreAgreedTerm{
		TermCategory:    "Renewal Option",
		TermDescription: "renewal options subsequent years",
	}
	candidates := NewSelector().SelectForTerm(term, idx)

	// only the result above the 0.70 threshold survives
	require.Len(t, candidates, 1)
	assert.Same(t, strong, candidates[0].Clause)
	assert.Equal(t, models.ReasonEmbeddingSimilarity, candidates[0].MatchReason)
}

func TestSelectForTermOrderingAndCap(t *testing.T) {
	c1 := clause("payment", "one")
	c2 := clause("payment", "two")
	c3 := clause("payment", "three")
	c4 := clause("payment", "four")

	idx := BuildClauseIndex(
		[]*models.ClauseBoundary{c1, c2, c3, c4},
		[]*models.ClauseMatchResult{
			matchResult(c1.ID, 0.5),
			matchResult(c2.ID, 0.9),
			matchResult(c3.ID, 0.7),
		},
	)

	term := &models.PreAgreedTerm{TermCategory: "Payment Terms"}
	candidates := NewSelector().SelectForTerm(term, idx)

	require.Len(t, candidates, DefaultMaxCandidates)
	assert.Same(t, c2, candidates[0].Clause)
	assert.Equal(t, 0.9, candidates[0].SimilarityScore())
	assert.Same(t, c3, candidates[1].Clause)
	assert.Same(t, c1, candidates[2].Clause)
}

func TestSelectForTermNoMatch(t *testing.T) {
	idx := BuildClauseIndex(nil, nil)

	term := &models.PreAgreedTerm{TermCategory: "weird", TermDescription: "zzz qqq"}
	assert.Nil(t, NewSelector().SelectForTerm(term, idx))
}
