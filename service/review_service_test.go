package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clausecheck-backend/matching"
	"clausecheck-backend/models"
)

func TestSimilarityFromDistance(t *testing.T) {
	assert.InDelta(t, 0.9, similarityFromDistance(0.1), 1e-9)
	assert.InDelta(t, 0.25, similarityFromDistance(0.75), 1e-9)
	assert.Equal(t, 0.0, similarityFromDistance(1.4))
	assert.Equal(t, 1.0, similarityFromDistance(-0.2))
}

func TestLibraryRag(t *testing.T) {
	assert.Equal(t, models.RagGreen, libraryRag(0.92))
	assert.Equal(t, models.RagGreen, libraryRag(0.85))
	assert.Equal(t, models.RagAmber, libraryRag(0.75))
	assert.Equal(t, models.RagAmber, libraryRag(0.70))
	assert.Equal(t, models.RagRed, libraryRag(0.69))
}

func TestInitializeSteps(t *testing.T) {
	steps := initializeSteps()

	require.Len(t, steps, 5)
	assert.Equal(t, stepExtracting, steps[0].Name)
	assert.Equal(t, stepRecording, steps[4].Name)
	for _, step := range steps {
		assert.Equal(t, "pending", step.Status)
	}
}

func TestBuildVerdictsIdentityOutcomes(t *testing.T) {
	contractID := uuid.New()
	term := &models.PreAgreedTerm{ID: uuid.New(), TermCategory: "brand name", ExpectedValue: "Nike"}
	boundary := &models.ClauseBoundary{ID: uuid.New()}

	t.Run("exact match", func(t *testing.T) {
		plan := matching.BatchPlan{
			Identity: []matching.IdentityOutcome{{
				Term:   term,
				Clause: boundary,
				Result: models.IdentityMatchResult{
					Matches:    true,
					MatchType:  models.MatchTypeExact,
					Confidence: 0.95,
				},
				Rag: models.RagGreen,
			}},
		}

		verdicts := buildVerdicts(contractID, plan, nil)

		require.Len(t, verdicts, 1)
		v := verdicts[0]
		assert.Equal(t, contractID, v.ContractID)
		assert.Equal(t, term.ID, v.TermID)
		require.NotNil(t, v.ClauseBoundaryID)
		assert.Equal(t, boundary.ID, *v.ClauseBoundaryID)
		assert.Equal(t, models.RagGreen, v.Rag)
		assert.True(t, v.Matches)
		assert.Equal(t, models.SeverityNone, v.Severity)
		assert.Equal(t, models.ReasonIdentityMatch, v.MatchReason)
		assert.Equal(t, 0.95, v.Confidence)
		assert.Contains(t, v.Explanation, "Nike")
	})

	t.Run("absent value gets full confidence", func(t *testing.T) {
		plan := matching.BatchPlan{
			Identity: []matching.IdentityOutcome{{
				Term:   term,
				Result: models.IdentityMatchResult{MatchType: models.MatchTypeAbsent},
				Rag:    models.RagRed,
			}},
		}

		verdicts := buildVerdicts(contractID, plan, nil)

		require.Len(t, verdicts, 1)
		v := verdicts[0]
		assert.False(t, v.Matches)
		assert.Nil(t, v.ClauseBoundaryID)
		assert.Equal(t, models.SeverityMajor, v.Severity)
		assert.Equal(t, 1.0, v.Confidence)
		assert.Contains(t, v.Explanation, "not found")
	})

	t.Run("partial match is a minor deviation", func(t *testing.T) {
		plan := matching.BatchPlan{
			Identity: []matching.IdentityOutcome{{
				Term: term,
				Result: models.IdentityMatchResult{
					Matches:    true,
					MatchType:  models.MatchTypePartial,
					Confidence: 0.6,
				},
				Rag: models.RagAmber,
			}},
		}

		verdicts := buildVerdicts(contractID, plan, nil)

		require.Len(t, verdicts, 1)
		assert.Equal(t, models.SeverityMinor, verdicts[0].Severity)
		assert.Equal(t, 0.6, verdicts[0].Confidence)
	})
}

func TestBuildVerdictsBestMatches(t *testing.T) {
	contractID := uuid.New()
	termID := uuid.New()
	clauseID := uuid.New()

	best := map[uuid.UUID]models.BestMatch{
		termID: {
			TermID: termID,
			Comparison: models.BatchComparison{
				Idx:         0,
				ClauseID:    clauseID,
				TermID:      termID,
				MatchReason: models.ReasonTypeMatch,
			},
			Result: models.BatchResult{
				Matches:     true,
				Severity:    models.SeverityMinor,
				Explanation: "net-45 instead of net-30",
				Differences: []string{"payment window"},
				Confidence:  0.8,
			},
			Rag: models.RagAmber,
		},
	}

	verdicts := buildVerdicts(contractID, matching.BatchPlan{}, best)

	require.Len(t, verdicts, 1)
	v := verdicts[0]
	assert.Equal(t, termID, v.TermID)
	require.NotNil(t, v.ClauseBoundaryID)
	assert.Equal(t, clauseID, *v.ClauseBoundaryID)
	assert.Equal(t, models.RagAmber, v.Rag)
	assert.Equal(t, models.SeverityMinor, v.Severity)
	assert.Equal(t, models.ReasonTypeMatch, v.MatchReason)
	assert.Equal(t, []string{"payment window"}, v.Differences)
}

func TestBuildVerdictsUnmatchedTerms(t *testing.T) {
	contractID := uuid.New()
	mandatory := &models.PreAgreedTerm{ID: uuid.New(), IsMandatory: true}
	optional := &models.PreAgreedTerm{ID: uuid.New()}

	plan := matching.BatchPlan{Unmatched: []*models.PreAgreedTerm{mandatory, optional}}

	verdicts := buildVerdicts(contractID, plan, nil)

	require.Len(t, verdicts, 2)
	byTerm := map[uuid.UUID]*models.Verdict{}
	for _, v := range verdicts {
		byTerm[v.TermID] = v
	}

	assert.Equal(t, models.RagRed, byTerm[mandatory.ID].Rag)
	assert.Equal(t, models.RagAmber, byTerm[optional.ID].Rag)
	for _, v := range verdicts {
		assert.False(t, v.Matches)
		assert.Equal(t, models.SeverityMajor, v.Severity)
		assert.Equal(t, 1.0, v.Confidence)
		assert.Nil(t, v.ClauseBoundaryID)
	}
}

func TestComparisonShortfallNote(t *testing.T) {
	assert.Empty(t, comparisonShortfallNote(10, 10))
	assert.Empty(t, comparisonShortfallNote(0, 0))

	note := comparisonShortfallNote(10, 7)
	assert.Equal(t, "7 of 10 comparisons answered; unanswered terms recorded without a semantic verdict", note)
}

func TestAnnotateSteps(t *testing.T) {
	steps := initializeSteps()

	annotated := annotateSteps(steps, stepMatching, "7 of 10 comparisons answered; unanswered terms recorded without a semantic verdict")

	require.Len(t, annotated, 5)
	for _, step := range annotated {
		if step.Name == stepMatching {
			assert.Contains(t, step.Description, "7 of 10 comparisons answered")
		} else {
			assert.Empty(t, step.Description)
		}
	}
}

func TestAnnotateStepsUnknownStepLeavesAllUntouched(t *testing.T) {
	annotated := annotateSteps(initializeSteps(), "Unknown Step", "note")

	for _, step := range annotated {
		assert.Empty(t, step.Description)
	}
}
