package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"clausecheck-backend/llm"
	"clausecheck-backend/matching"
	"clausecheck-backend/models"
	"clausecheck-backend/repository"
	"clausecheck-backend/textindex"
	"clausecheck-backend/validation"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReviewService runs the contract review pipeline
type ReviewService struct {
	contractRepo *repository.ContractRepository
	jobRepo      *repository.ReviewJobRepository
	clauseRepo   *repository.ClauseRepository
	templateRepo *repository.ClauseTemplateRepository
	termRepo     *repository.TermRepository
	verdictRepo  *repository.VerdictRepository
	db           *pgxpool.Pool

	extractor llm.Extractor
	comparer  llm.Comparer
	embedder  llm.Embedder

	validationCfg validation.Config
	selector      *matching.Selector
}

// ReviewServiceOption is a functional option for ReviewService
type ReviewServiceOption func(*ReviewService)

// ReviewWithContractRepository sets the contract repository
func ReviewWithContractRepository(repo *repository.ContractRepository) ReviewServiceOption {
	return func(s *ReviewService) {
		s.contractRepo = repo
	}
}

// ReviewWithJobRepository sets the review job repository
func ReviewWithJobRepository(repo *repository.ReviewJobRepository) ReviewServiceOption {
	return func(s *ReviewService) {
		s.jobRepo = repo
	}
}

// ReviewWithClauseRepository sets the clause repository
func ReviewWithClauseRepository(repo *repository.ClauseRepository) ReviewServiceOption {
	return func(s *ReviewService) {
		s.clauseRepo = repo
	}
}

// ReviewWithTemplateRepository sets the clause template repository
func ReviewWithTemplateRepository(repo *repository.ClauseTemplateRepository) ReviewServiceOption {
	return func(s *ReviewService) {
		s.templateRepo = repo
	}
}

// ReviewWithTermRepository sets the term repository
func ReviewWithTermRepository(repo *repository.TermRepository) ReviewServiceOption {
	return func(s *ReviewService) {
		s.termRepo = repo
	}
}

// ReviewWithVerdictRepository sets the verdict repository
func ReviewWithVerdictRepository(repo *repository.VerdictRepository) ReviewServiceOption {
	return func(s *ReviewService) {
		s.verdictRepo = repo
	}
}

// ReviewWithDatabase sets the database pool
func ReviewWithDatabase(db *pgxpool.Pool) ReviewServiceOption {
	return func(s *ReviewService) {
		s.db = db
	}
}

// ReviewWithExtractor sets the clause extractor
func ReviewWithExtractor(extractor llm.Extractor) ReviewServiceOption {
	return func(s *ReviewService) {
		s.extractor = extractor
	}
}

// ReviewWithComparer sets the semantic comparer
func ReviewWithComparer(comparer llm.Comparer) ReviewServiceOption {
	return func(s *ReviewService) {
		s.comparer = comparer
	}
}

// ReviewWithEmbedder sets the embedder
func ReviewWithEmbedder(embedder llm.Embedder) ReviewServiceOption {
	return func(s *ReviewService) {
		s.embedder = embedder
	}
}

// ReviewWithValidationConfig overrides the validation defaults
func ReviewWithValidationConfig(cfg validation.Config) ReviewServiceOption {
	return func(s *ReviewService) {
		s.validationCfg = cfg
	}
}

// NewReviewService creates a new review service
func NewReviewService(opts ...ReviewServiceOption) *ReviewService {
	s := &ReviewService{
		validationCfg: validation.DefaultConfig(),
		selector:      matching.NewSelector(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var (
	ErrContractNotFound    = errors.New("contract not found")
	ErrMissingContractText = errors.New("contract has no text to review")
	ErrNoTermsDefined      = errors.New("contract has no pre-agreed terms")
	ErrJobCreationFailed   = errors.New("failed to create review job")
	ErrJobNotFound         = errors.New("review job not found")
	ErrExtractionFailed    = errors.New("failed to extract clauses")
	ErrComparisonFailed    = errors.New("failed to compare clauses against terms")
)

// Pipeline step names, in execution order
const (
	stepExtracting = "Extracting Clauses"
	stepValidating = "Validating Boundaries"
	stepIndexing   = "Indexing Clause Library"
	stepMatching   = "Matching Terms"
	stepRecording  = "Recording Verdicts"
)

// comparisonBatchSize bounds how many clause/term pairs go to the comparison
// collaborator in one call
const comparisonBatchSize = 10

// templateSearchLimit is how many library templates are consulted per clause
const templateSearchLimit = 3

// StartReviewRequest represents a request to start a contract review
type StartReviewRequest struct {
	ContractID uuid.UUID
}

// StartReviewResult represents the result of creating a review job
type StartReviewResult struct {
	JobID uuid.UUID
}

// GetJobStatusRequest represents a request to get job status
type GetJobStatusRequest struct {
	JobID uuid.UUID
}

// GetJobStatusResult represents the result of getting job status
type GetJobStatusResult struct {
	Job *models.ReviewJob
}

// StartReview creates a review job and returns immediately
// This method must complete in <100ms to avoid HTTP timeouts
func (s *ReviewService) StartReview(
	ctx context.Context,
	req StartReviewRequest,
) (*StartReviewResult, error) {
	if s.contractRepo == nil {
		return nil, errors.New("contract repository not set")
	}
	if s.jobRepo == nil {
		return nil, errors.New("review job repository not set")
	}
	if s.termRepo == nil {
		return nil, errors.New("term repository not set")
	}

	// 1. Validate contract exists and has required data
	contract, err := s.contractRepo.GetByID(ctx, req.ContractID)
	if err != nil {
		return nil, ErrContractNotFound
	}

	if contract.OriginalText == "" {
		return nil, ErrMissingContractText
	}

	terms, err := s.termRepo.ListByContract(ctx, req.ContractID)
	if err != nil {
		return nil, err
	}
	if len(terms) == 0 {
		return nil, ErrNoTermsDefined
	}

	// 2. Create review job with initial steps
	job := &models.ReviewJob{
		ID:         uuid.New(),
		ContractID: req.ContractID,
		Status:     models.JobStatusPending,
		Steps:      initializeSteps(),
	}

	err = s.jobRepo.Create(ctx, job)
	if err != nil {
		return nil, ErrJobCreationFailed
	}

	return &StartReviewResult{
		JobID: job.ID,
	}, nil
}

// GetJobStatus retrieves the status of a review job
func (s *ReviewService) GetJobStatus(
	ctx context.Context,
	req GetJobStatusRequest,
) (*GetJobStatusResult, error) {
	if s.jobRepo == nil {
		return nil, errors.New("review job repository not set")
	}

	job, err := s.jobRepo.GetByID(ctx, req.JobID)
	if err != nil {
		return nil, ErrJobNotFound
	}

	return &GetJobStatusResult{
		Job: job,
	}, nil
}

// initializeSteps creates the initial review steps
func initializeSteps() models.ReviewSteps {
	names := []string{stepExtracting, stepValidating, stepIndexing, stepMatching, stepRecording}

	steps := make(models.ReviewSteps, 0, len(names))
	for _, name := range names {
		steps = append(steps, models.ReviewStep{
			Name:   name,
			Status: "pending",
		})
	}
	return steps
}

// ProcessReview performs the actual review work in the background
// This method runs in a goroutine and can take 30-90 seconds
func (s *ReviewService) ProcessReview(
	ctx context.Context,
	jobID uuid.UUID,
) error {
	if s.jobRepo == nil {
		return errors.New("review job repository not set")
	}
	if s.contractRepo == nil {
		return errors.New("contract repository not set")
	}
	if s.extractor == nil {
		return errors.New("extractor not set")
	}
	if s.comparer == nil {
		return errors.New("comparer not set")
	}

	// 1. Load job and contract
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to load review job: %w", err)
	}

	contract, err := s.contractRepo.GetByID(ctx, job.ContractID)
	if err != nil {
		s.markJobFailed(ctx, jobID, "failed to load contract: "+err.Error())
		return err
	}

	err = s.jobRepo.UpdateStatus(ctx, jobID, models.JobStatusInProgress)
	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}

	err = s.contractRepo.UpdateStatus(ctx, contract.ID, models.ContractStatusProcessing)
	if err != nil {
		s.markJobFailed(ctx, jobID, "failed to update contract status: "+err.Error())
		return err
	}

	// Re-reviews start from a clean slate
	if err := s.clearPreviousReview(ctx, contract.ID); err != nil {
		s.failReview(ctx, jobID, contract.ID, "failed to clear previous review: "+err.Error())
		return err
	}

	// 2. Extract clause candidates
	if err := s.updateStepStatus(ctx, jobID, stepExtracting, "in_progress"); err != nil {
		s.failReview(ctx, jobID, contract.ID, "failed to update step: "+err.Error())
		return err
	}

	doc := textindex.Prepare(contract.OriginalText)

	rawClauses, err := s.extractor.ExtractClauses(ctx, doc)
	if err != nil {
		s.failReview(ctx, jobID, contract.ID, "extraction failed: "+err.Error())
		return fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	indexed := textindex.ConvertLinesToIndices(rawClauses, doc)

	if err := s.updateStepStatus(ctx, jobID, stepExtracting, "completed"); err != nil {
		s.failReview(ctx, jobID, contract.ID, "failed to update step: "+err.Error())
		return err
	}

	// 3. Validate boundaries and persist the surviving clauses
	if err := s.updateStepStatus(ctx, jobID, stepValidating, "in_progress"); err != nil {
		s.failReview(ctx, jobID, contract.ID, "failed to update step: "+err.Error())
		return err
	}

	result := validation.Validate(indexed, contract.OriginalText, s.validationCfg)
	log.Printf("Validation for contract %s: %d/%d clauses valid (coverage %.2f)",
		contract.ID, result.Telemetry.Valid, result.Telemetry.Returned, result.Telemetry.CoverageRate())

	boundaries, err := s.clauseRepo.CreateBatch(ctx, contract.ID, result.Valid)
	if err != nil {
		s.failReview(ctx, jobID, contract.ID, "failed to store clauses: "+err.Error())
		return err
	}

	if err := s.updateStepStatus(ctx, jobID, stepValidating, "completed"); err != nil {
		s.failReview(ctx, jobID, contract.ID, "failed to update step: "+err.Error())
		return err
	}

	// 4. Search the clause library for each stored clause
	if err := s.updateStepStatus(ctx, jobID, stepIndexing, "in_progress"); err != nil {
		s.failReview(ctx, jobID, contract.ID, "failed to update step: "+err.Error())
		return err
	}

	matchResults := s.searchClauseLibrary(ctx, boundaries)

	if err := s.updateStepStatus(ctx, jobID, stepIndexing, "completed"); err != nil {
		s.failReview(ctx, jobID, contract.ID, "failed to update step: "+err.Error())
		return err
	}

	// 5. Match terms against clauses
	if err := s.updateStepStatus(ctx, jobID, stepMatching, "in_progress"); err != nil {
		s.failReview(ctx, jobID, contract.ID, "failed to update step: "+err.Error())
		return err
	}

	terms, err := s.termRepo.ListByContract(ctx, contract.ID)
	if err != nil {
		s.failReview(ctx, jobID, contract.ID, "failed to load terms: "+err.Error())
		return err
	}

	idx := matching.BuildClauseIndex(boundaries, matchResults)
	plan := matching.BuildBatchComparisons(terms, idx, s.selector, contract.OriginalText)

	comparisonResults, err := s.runComparisons(ctx, plan.Comparisons)
	if err != nil {
		s.failReview(ctx, jobID, contract.ID, "comparison failed: "+err.Error())
		return fmt.Errorf("%w: %v", ErrComparisonFailed, err)
	}

	best := matching.SelectBestMatchPerTerm(plan.Comparisons, comparisonResults)

	// An unanswered comparison leaves its term without a semantic verdict;
	// record the shortfall on the step instead of inventing one
	if note := comparisonShortfallNote(len(plan.Comparisons), len(comparisonResults)); note != "" {
		if err := s.annotateStep(ctx, jobID, stepMatching, note); err != nil {
			log.Printf("Warning: Failed to record comparison shortfall for job %s: %v", jobID, err)
		}
	}

	if err := s.updateStepStatus(ctx, jobID, stepMatching, "completed"); err != nil {
		s.failReview(ctx, jobID, contract.ID, "failed to update step: "+err.Error())
		return err
	}

	// 6. Record verdicts
	if err := s.updateStepStatus(ctx, jobID, stepRecording, "in_progress"); err != nil {
		s.failReview(ctx, jobID, contract.ID, "failed to update step: "+err.Error())
		return err
	}

	verdicts := buildVerdicts(contract.ID, plan, best)

	err = s.verdictRepo.CreateBatch(ctx, verdicts)
	if err != nil {
		s.failReview(ctx, jobID, contract.ID, "failed to store verdicts: "+err.Error())
		return err
	}

	if err := s.updateStepStatus(ctx, jobID, stepRecording, "completed"); err != nil {
		s.failReview(ctx, jobID, contract.ID, "failed to update step: "+err.Error())
		return err
	}

	// 7. Mark contract reviewed and complete the job
	err = s.contractRepo.MarkReviewed(ctx, contract.ID)
	if err != nil {
		s.failReview(ctx, jobID, contract.ID, "failed to mark contract reviewed: "+err.Error())
		return err
	}

	err = s.jobRepo.Complete(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to complete job: %w", err)
	}

	return nil
}

// clearPreviousReview removes the clauses and verdicts of any earlier run
func (s *ReviewService) clearPreviousReview(ctx context.Context, contractID uuid.UUID) error {
	if err := s.verdictRepo.DeleteByContract(ctx, contractID); err != nil {
		return err
	}
	return s.clauseRepo.DeleteByContract(ctx, contractID)
}

// searchClauseLibrary embeds each clause and looks up its nearest library
// templates. Library search is advisory: per-clause failures are logged and
// skipped so the review can proceed on structural matching alone.
func (s *ReviewService) searchClauseLibrary(ctx context.Context, boundaries []*models.ClauseBoundary) []*models.ClauseMatchResult {
	if s.embedder == nil || s.templateRepo == nil {
		log.Printf("Warning: Clause library search not configured; skipping")
		return nil
	}

	var matchResults []*models.ClauseMatchResult
	for _, clause := range boundaries {
		embedding, err := s.embedder.EmbedText(ctx, clause.Content, llm.TaskTypeQuery)
		if err != nil {
			log.Printf("Warning: Failed to embed clause %s: %v", clause.ID, err)
			continue
		}

		templates, err := s.templateRepo.SearchSimilar(ctx, embedding, matching.NormalizeClauseType(clause.ClauseType), templateSearchLimit)
		if err != nil {
			log.Printf("Warning: Library search failed for clause %s: %v", clause.ID, err)
			continue
		}

		for _, template := range templates {
			score := similarityFromDistance(template.Distance)
			matchResults = append(matchResults, &models.ClauseMatchResult{
				ID:                uuid.New(),
				ClauseBoundaryID:  clause.ID,
				MatchedTemplateID: template.ID,
				SimilarityScore:   score,
				RagRisk:           libraryRag(score),
			})
		}
	}

	return matchResults
}

// similarityFromDistance converts a pgvector cosine distance to a similarity
// score in [0, 1]
func similarityFromDistance(distance float64) float64 {
	score := 1 - distance
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// libraryRag classifies a library similarity score on the traffic-light scale
func libraryRag(score float64) models.RagStatus {
	switch {
	case score >= 0.85:
		return models.RagGreen
	case score >= 0.70:
		return models.RagAmber
	default:
		return models.RagRed
	}
}

// runComparisons sends the planned comparisons to the collaborator in
// sequential batches and merges the results
func (s *ReviewService) runComparisons(ctx context.Context, comparisons []models.BatchComparison) (map[int]models.BatchResult, error) {
	results := make(map[int]models.BatchResult, len(comparisons))

	for start := 0; start < len(comparisons); start += comparisonBatchSize {
		end := start + comparisonBatchSize
		if end > len(comparisons) {
			end = len(comparisons)
		}

		batchResults, err := s.comparer.CompareBatch(ctx, comparisons[start:end])
		if err != nil {
			return nil, err
		}
		for idx, result := range batchResults {
			results[idx] = result
		}
	}

	return results, nil
}

// buildVerdicts assembles the final per-term verdicts from identity outcomes,
// reconciled semantic matches, and terms no strategy could place
func buildVerdicts(contractID uuid.UUID, plan matching.BatchPlan, best map[uuid.UUID]models.BestMatch) []*models.Verdict {
	var verdicts []*models.Verdict

	for _, outcome := range plan.Identity {
		verdict := &models.Verdict{
			ContractID:  contractID,
			TermID:      outcome.Term.ID,
			Rag:         outcome.Rag,
			Matches:     outcome.Result.Matches,
			Severity:    identitySeverity(outcome.Result.MatchType),
			MatchReason: models.ReasonIdentityMatch,
			Confidence:  outcome.Result.Confidence,
			Explanation: identityExplanation(outcome),
		}
		if outcome.Clause != nil {
			id := outcome.Clause.ID
			verdict.ClauseBoundaryID = &id
		}
		// Absence is determined deterministically, not estimated
		if !outcome.Result.Matches {
			verdict.Confidence = 1.0
		}
		verdicts = append(verdicts, verdict)
	}

	for _, match := range best {
		clauseID := match.Comparison.ClauseID
		verdicts = append(verdicts, &models.Verdict{
			ContractID:       contractID,
			TermID:           match.TermID,
			ClauseBoundaryID: &clauseID,
			Rag:              match.Rag,
			Matches:          match.Result.Matches,
			Severity:         match.Result.Severity,
			MatchReason:      match.Comparison.MatchReason,
			Confidence:       match.Result.Confidence,
			Explanation:      match.Result.Explanation,
			Differences:      match.Result.Differences,
		})
	}

	for _, term := range plan.Unmatched {
		rag := models.RagAmber
		if term.IsMandatory {
			rag = models.RagRed
		}
		verdicts = append(verdicts, &models.Verdict{
			ContractID:  contractID,
			TermID:      term.ID,
			Rag:         rag,
			Matches:     false,
			Severity:    models.SeverityMajor,
			MatchReason: models.ReasonSemanticFallback,
			Confidence:  1.0,
			Explanation: "No clause in the contract addresses this term",
		})
	}

	return verdicts
}

// identitySeverity maps an identity match type onto the deviation scale
func identitySeverity(matchType models.MatchType) models.Severity {
	switch matchType {
	case models.MatchTypeExact, models.MatchTypeNormalized:
		return models.SeverityNone
	case models.MatchTypePartial:
		return models.SeverityMinor
	default:
		return models.SeverityMajor
	}
}

func identityExplanation(outcome matching.IdentityOutcome) string {
	switch outcome.Result.MatchType {
	case models.MatchTypeExact:
		return fmt.Sprintf("Expected value %q found verbatim in the contract", outcome.Term.ExpectedValue)
	case models.MatchTypeNormalized:
		return fmt.Sprintf("Expected value %q found after normalizing punctuation", outcome.Term.ExpectedValue)
	case models.MatchTypePartial:
		return fmt.Sprintf("Expected value %q only partially present; needs human review", outcome.Term.ExpectedValue)
	default:
		return fmt.Sprintf("Expected value %q not found in the contract", outcome.Term.ExpectedValue)
	}
}

// updateStepStatus updates the status of a specific step in the review job
func (s *ReviewService) updateStepStatus(ctx context.Context, jobID uuid.UUID, stepName, status string) error {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return err
	}

	steps := job.Steps
	var currentStep string
	if job.CurrentStep != nil {
		currentStep = *job.CurrentStep
	}

	for i := range steps {
		if steps[i].Name == stepName {
			steps[i].Status = status
			if status == "in_progress" {
				currentStep = stepName
			}
			break
		}
	}

	return s.jobRepo.UpdateProgress(ctx, jobID, currentStep, steps)
}

// annotateStep records a description on a step without changing its status
func (s *ReviewService) annotateStep(ctx context.Context, jobID uuid.UUID, stepName, description string) error {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return err
	}

	var currentStep string
	if job.CurrentStep != nil {
		currentStep = *job.CurrentStep
	}

	steps := annotateSteps(job.Steps, stepName, description)

	return s.jobRepo.UpdateProgress(ctx, jobID, currentStep, steps)
}

// annotateSteps sets the description on the named step
func annotateSteps(steps models.ReviewSteps, stepName, description string) models.ReviewSteps {
	for i := range steps {
		if steps[i].Name == stepName {
			steps[i].Description = description
			break
		}
	}
	return steps
}

// comparisonShortfallNote describes how many planned comparisons came back
// unanswered; empty when every comparison was answered
func comparisonShortfallNote(planned, answered int) string {
	if answered >= planned {
		return ""
	}
	return fmt.Sprintf("%d of %d comparisons answered; unanswered terms recorded without a semantic verdict", answered, planned)
}

// failReview marks both the job and the contract as failed
func (s *ReviewService) failReview(ctx context.Context, jobID, contractID uuid.UUID, errorMessage string) {
	s.markJobFailed(ctx, jobID, errorMessage)
	if err := s.contractRepo.UpdateStatus(ctx, contractID, models.ContractStatusFailed); err != nil {
		log.Printf("Warning: Failed to mark contract %s failed: %v", contractID, err)
	}
}

// markJobFailed marks a job as failed with an error message
func (s *ReviewService) markJobFailed(ctx context.Context, jobID uuid.UUID, errorMessage string) {
	err := s.jobRepo.Fail(ctx, jobID, errorMessage)
	if err != nil {
		log.Printf("Warning: Failed to mark job %s failed: %v", jobID, err)
	}
}
