package matching

import (
	"strings"

	"github.com/google/uuid"

	"clausecheck-backend/models"
)

// ClauseIndex is a derived, in-memory lookup over one document's validated
// clauses and their library-match results. Rebuilt per reconciliation run;
// never persisted or shared across requests.
type ClauseIndex struct {
	ByType                 map[string][]*models.ClauseBoundary
	ByID                   map[uuid.UUID]*models.ClauseBoundary
	MatchResultsByClauseID map[uuid.UUID][]*models.ClauseMatchResult
	AllMatchResults        []*models.ClauseMatchResult
}

// BuildClauseIndex indexes clauses by normalized type and id, and attaches
// similarity-search results by clause id
func BuildClauseIndex(clauses []*models.ClauseBoundary, matchResults []*models.ClauseMatchResult) *ClauseIndex {
	idx := &ClauseIndex{
		ByType:                 make(map[string][]*models.ClauseBoundary),
		ByID:                   make(map[uuid.UUID]*models.ClauseBoundary, len(clauses)),
		MatchResultsByClauseID: make(map[uuid.UUID][]*models.ClauseMatchResult),
		AllMatchResults:        matchResults,
	}

	for _, clause := range clauses {
		clauseType := NormalizeClauseType(clause.ClauseType)
		idx.ByType[clauseType] = append(idx.ByType[clauseType], clause)
		idx.ByID[clause.ID] = clause
	}

	for _, result := range matchResults {
		idx.MatchResultsByClauseID[result.ClauseBoundaryID] = append(
			idx.MatchResultsByClauseID[result.ClauseBoundaryID], result)
	}

	return idx
}

// BestMatchResult returns the highest-similarity library match attached to a
// clause, or nil when the similarity-search collaborator produced none
func (idx *ClauseIndex) BestMatchResult(clauseID uuid.UUID) *models.ClauseMatchResult {
	var best *models.ClauseMatchResult
	for _, result := range idx.MatchResultsByClauseID[clauseID] {
		if best == nil || result.SimilarityScore > best.SimilarityScore {
			best = result
		}
	}
	return best
}

// NormalizeClauseType canonicalizes a clause type for lookups
func NormalizeClauseType(clauseType string) string {
	normalized := strings.ToLower(strings.TrimSpace(clauseType))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	return strings.ReplaceAll(normalized, " ", "_")
}
