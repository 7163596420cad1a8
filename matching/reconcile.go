package matching

import (
	"github.com/google/uuid"

	"clausecheck-backend/models"
)

// MaxComparisonContentLength bounds clause content sent to the comparison
// collaborator, for context-window economy
const MaxComparisonContentLength = 600

// IdentityOutcome is a term resolved by string matching, bypassing semantic
// comparison entirely
type IdentityOutcome struct {
	Term   *models.PreAgreedTerm
	Clause *models.ClauseBoundary
	Result models.IdentityMatchResult
	Rag    models.RagStatus
}

// BatchPlan partitions one reconciliation run: identity terms resolved
// immediately, semantic terms queued for the comparison collaborator, and
// terms no strategy could pair with a clause (left without a verdict rather
// than guessed at).
type BatchPlan struct {
	Identity    []IdentityOutcome
	Comparisons []models.BatchComparison
	Unmatched   []*models.PreAgreedTerm
}

// BuildBatchComparisons partitions terms into identity and semantic terms.
// Identity terms are resolved on the spot; each semantic term contributes one
// BatchComparison per candidate clause, indexed for correlation with the
// collaborator's response.
func BuildBatchComparisons(terms []*models.PreAgreedTerm, idx *ClauseIndex, selector *Selector, fullText string) BatchPlan {
	var plan BatchPlan

	nextIdx := 0
	for _, term := range terms {
		candidates := selector.SelectForTerm(term, idx)

		if IsIdentityTerm(term) {
			outcome := IdentityOutcome{Term: term}
			clauseContent := ""
			if len(candidates) > 0 {
				outcome.Clause = candidates[0].Clause
				clauseContent = candidates[0].Clause.Content
			}
			outcome.Result = CheckIdentityMatch(term.ExpectedValue, clauseContent, fullText)
			outcome.Rag = IdentityRag(outcome.Result, term.IsMandatory)
			plan.Identity = append(plan.Identity, outcome)
			continue
		}

		if len(candidates) == 0 {
			plan.Unmatched = append(plan.Unmatched, term)
			continue
		}

		for _, candidate := range candidates {
			plan.Comparisons = append(plan.Comparisons, models.BatchComparison{
				Idx:             nextIdx,
				ClauseID:        candidate.Clause.ID,
				TermID:          term.ID,
				ClauseContent:   truncate(candidate.Clause.Content, MaxComparisonContentLength),
				TermDescription: term.TermDescription,
				ExpectedValue:   term.ExpectedValue,
				IsMandatory:     term.IsMandatory,
				MatchReason:     candidate.MatchReason,
				SemanticScore:   candidate.SimilarityScore(),
			})
			nextIdx++
		}
	}

	return plan
}

// SelectBestMatchPerTerm picks one winner per term from the collaborator's
// results using a three-level deterministic tie-break, each level applied
// only when the previous one tied:
//
//  1. RAG score: green > amber > red
//  2. match-reason weight: type_match > fallback_match >
//     embedding_similarity > semantic_fallback
//  3. model confidence
//
// A structurally grounded match outranks a higher-confidence but structurally
// weaker one. Comparisons the collaborator never answered are skipped; their
// terms may end up with no verdict for this round.
func SelectBestMatchPerTerm(comparisons []models.BatchComparison, results map[int]models.BatchResult) map[uuid.UUID]models.BestMatch {
	best := make(map[uuid.UUID]models.BestMatch)

	for _, comparison := range comparisons {
		result, ok := results[comparison.Idx]
		if !ok {
			continue
		}

		candidate := models.BestMatch{
			TermID:     comparison.TermID,
			Comparison: comparison,
			Result:     result,
			Rag:        result.Rag(),
		}

		current, exists := best[comparison.TermID]
		if !exists || beats(candidate, current) {
			best[comparison.TermID] = candidate
		}
	}

	return best
}

func beats(a, b models.BestMatch) bool {
	if a.Rag.Score() != b.Rag.Score() {
		return a.Rag.Score() > b.Rag.Score()
	}
	if a.Comparison.MatchReason.Weight() != b.Comparison.MatchReason.Weight() {
		return a.Comparison.MatchReason.Weight() > b.Comparison.MatchReason.Weight()
	}
	return a.Result.Confidence > b.Result.Confidence
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
