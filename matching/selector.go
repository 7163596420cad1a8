package matching

import (
	"sort"
	"strings"

	"clausecheck-backend/models"
)

const (
	// DefaultMaxCandidates caps how many clauses are proposed per term
	DefaultMaxCandidates = 3
	// DefaultEmbeddingThreshold is the minimum similarity for the embedding
	// strategy to consider a library match
	DefaultEmbeddingThreshold = 0.70
)

// clauseTypesByCategory maps normalized term categories to the clause types
// that structurally carry them, plus weaker fallback types consulted only
// when the primary lookup finds nothing.
var clauseTypesByCategory = map[string]struct {
	Primary  []string
	Fallback []string
}{
	"exclusivity":           {Primary: []string{"exclusivity", "non_compete"}, Fallback: []string{"scope_of_services", "term"}},
	"payment terms":         {Primary: []string{"payment", "compensation", "fees"}, Fallback: []string{"invoicing", "expenses"}},
	"compensation":          {Primary: []string{"compensation", "payment", "fees"}, Fallback: []string{"commercial_success", "expenses"}},
	"usage rights":          {Primary: []string{"usage_rights", "intellectual_property", "license"}, Fallback: []string{"deliverables", "content_rights"}},
	"term":                  {Primary: []string{"term", "duration"}, Fallback: []string{"termination", "renewal"}},
	"termination":           {Primary: []string{"termination"}, Fallback: []string{"term", "breach"}},
	"deliverables":          {Primary: []string{"deliverables", "scope_of_services"}, Fallback: []string{"content_rights", "approval"}},
	"confidentiality":       {Primary: []string{"confidentiality", "non_disclosure"}, Fallback: []string{"intellectual_property"}},
	"intellectual property": {Primary: []string{"intellectual_property", "license"}, Fallback: []string{"usage_rights", "assignment"}},
	"liability":             {Primary: []string{"liability", "limitation_of_liability"}, Fallback: []string{"indemnification", "warranty"}},
	"indemnification":       {Primary: []string{"indemnification", "indemnity"}, Fallback: []string{"liability", "warranty"}},
	"governing law":         {Primary: []string{"governing_law", "jurisdiction"}, Fallback: []string{"dispute_resolution", "arbitration"}},
	"approval rights":       {Primary: []string{"approval", "content_rights"}, Fallback: []string{"deliverables"}},
	"morality":              {Primary: []string{"morality", "conduct"}, Fallback: []string{"termination"}},
}

// Selector runs the prioritized strategy chain that proposes candidate
// clauses for a pre-agreed term
type Selector struct {
	MaxCandidates      int
	EmbeddingThreshold float64
}

// NewSelector creates a selector with default limits
func NewSelector() *Selector {
	return &Selector{
		MaxCandidates:      DefaultMaxCandidates,
		EmbeddingThreshold: DefaultEmbeddingThreshold,
	}
}

type strategy struct {
	name string
	run  func(s *Selector, term *models.PreAgreedTerm, idx *ClauseIndex) []models.ClauseCandidate
}

// Strategies in fixed priority. Selection stops at the first strategy that
// returns any candidate: once a reliable match type is found, weaker signals
// are never consulted for that term.
var strategies = []strategy{
	{"type_match", (*Selector).typeMatch},
	{"fallback_type", (*Selector).fallbackType},
	{"keyword", (*Selector).keywordOverlap},
	{"embedding", (*Selector).embeddingSimilarity},
}

// SelectForTerm returns up to MaxCandidates candidate clauses for a term,
// sorted by similarity score descending within the strategy that fired
func (s *Selector) SelectForTerm(term *models.PreAgreedTerm, idx *ClauseIndex) []models.ClauseCandidate {
	for _, strat := range strategies {
		candidates := strat.run(s, term, idx)
		if len(candidates) == 0 {
			continue
		}

		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].SimilarityScore() > candidates[j].SimilarityScore()
		})
		if len(candidates) > s.MaxCandidates {
			candidates = candidates[:s.MaxCandidates]
		}
		return candidates
	}
	return nil
}

// termClauseTypes resolves the clause types to look up for a term, preferring
// the LLM-suggested normalized clause type over the static category table
func termClauseTypes(term *models.PreAgreedTerm, fallback bool) []string {
	if term.NormalizedClauseType != nil && *term.NormalizedClauseType != "" && !fallback {
		return []string{NormalizeClauseType(*term.NormalizedClauseType)}
	}

	category := normalizeCategory(term.TermCategory)
	if term.NormalizedTermCategory != nil && *term.NormalizedTermCategory != "" {
		category = normalizeCategory(*term.NormalizedTermCategory)
	}

	entry, ok := clauseTypesByCategory[category]
	if !ok {
		return nil
	}
	if fallback {
		return entry.Fallback
	}
	return entry.Primary
}

func (s *Selector) typeMatch(term *models.PreAgreedTerm, idx *ClauseIndex) []models.ClauseCandidate {
	return s.collectByTypes(termClauseTypes(term, false), idx, models.ReasonTypeMatch)
}

func (s *Selector) fallbackType(term *models.PreAgreedTerm, idx *ClauseIndex) []models.ClauseCandidate {
	return s.collectByTypes(termClauseTypes(term, true), idx, models.ReasonFallbackMatch)
}

func (s *Selector) collectByTypes(types []string, idx *ClauseIndex, reason models.MatchReason) []models.ClauseCandidate {
	var candidates []models.ClauseCandidate
	for _, clauseType := range types {
		for _, clause := range idx.ByType[NormalizeClauseType(clauseType)] {
			candidates = append(candidates, models.ClauseCandidate{
				Clause:      clause,
				MatchResult: idx.BestMatchResult(clause.ID),
				MatchReason: reason,
			})
		}
	}
	return candidates
}

// keywordOverlap matches on bidirectional keyword-set overlap between the
// clause type and the term's text
func (s *Selector) keywordOverlap(term *models.PreAgreedTerm, idx *ClauseIndex) []models.ClauseCandidate {
	termWords := keywordSet(term.TermCategory + " " + term.TermDescription)
	if len(termWords) == 0 {
		return nil
	}

	var candidates []models.ClauseCandidate
	for clauseType, clauses := range idx.ByType {
		typeWords := keywordSet(strings.ReplaceAll(clauseType, "_", " "))
		if !overlaps(typeWords, termWords) {
			continue
		}
		for _, clause := range clauses {
			candidates = append(candidates, models.ClauseCandidate{
				Clause:      clause,
				MatchResult: idx.BestMatchResult(clause.ID),
				MatchReason: models.ReasonSemanticFallback,
			})
		}
	}
	return candidates
}

// embeddingSimilarity falls back to pre-computed library similarity: up to
// MaxCandidates matches above the threshold, strongest first
func (s *Selector) embeddingSimilarity(term *models.PreAgreedTerm, idx *ClauseIndex) []models.ClauseCandidate {
	results := make([]*models.ClauseMatchResult, 0, len(idx.AllMatchResults))
	for _, result := range idx.AllMatchResults {
		if result.SimilarityScore >= s.EmbeddingThreshold {
			results = append(results, result)
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].SimilarityScore > results[j].SimilarityScore
	})

	var candidates []models.ClauseCandidate
	seen := make(map[string]bool)
	for _, result := range results {
		clause, ok := idx.ByID[result.ClauseBoundaryID]
		if !ok || seen[clause.ID.String()] {
			continue
		}
		seen[clause.ID.String()] = true
		candidates = append(candidates, models.ClauseCandidate{
			Clause:      clause,
			MatchResult: result,
			MatchReason: models.ReasonEmbeddingSimilarity,
		})
		if len(candidates) == s.MaxCandidates {
			break
		}
	}
	return candidates
}

var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "that": true,
	"shall": true, "must": true, "any": true, "all": true, "per": true,
}

func keywordSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,;:()\"'")
		if len(word) > 2 && !stopwords[word] {
			set[word] = true
		}
	}
	return set
}

func overlaps(a, b map[string]bool) bool {
	for word := range a {
		if b[word] {
			return true
		}
	}
	return false
}
