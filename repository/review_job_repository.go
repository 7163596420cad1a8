package repository

import (
	"context"
	"time"

	"clausecheck-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReviewJobRepository handles database operations for review jobs
type ReviewJobRepository struct {
	db *pgxpool.Pool
}

// NewReviewJobRepository creates a new review job repository
func NewReviewJobRepository(db *pgxpool.Pool) *ReviewJobRepository {
	return &ReviewJobRepository{db: db}
}

// Create creates a new review job
func (r *ReviewJobRepository) Create(ctx context.Context, job *models.ReviewJob) error {
	query := `
		INSERT INTO review_jobs (
			contract_id, status, current_step, steps, error_message
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		job.ContractID,
		job.Status,
		job.CurrentStep,
		job.Steps,
		job.ErrorMessage,
	).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)

	return err
}

// GetByID retrieves a review job by ID
func (r *ReviewJobRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ReviewJob, error) {
	job := &models.ReviewJob{}
	query := `
		SELECT id, contract_id, status, current_step, steps, error_message,
			created_at, updated_at, completed_at
		FROM review_jobs
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&job.ID,
		&job.ContractID,
		&job.Status,
		&job.CurrentStep,
		&job.Steps,
		&job.ErrorMessage,
		&job.CreatedAt,
		&job.UpdatedAt,
		&job.CompletedAt,
	)

	if err != nil {
		return nil, err
	}

	// Ensure Steps is never nil (safeguard in case Scan didn't handle NULL properly)
	if job.Steps == nil {
		job.Steps = make(models.ReviewSteps, 0)
	}

	return job, nil
}

// GetByContractID retrieves the latest review job for a contract
func (r *ReviewJobRepository) GetByContractID(ctx context.Context, contractID uuid.UUID) (*models.ReviewJob, error) {
	job := &models.ReviewJob{}
	query := `
		SELECT id, contract_id, status, current_step, steps, error_message,
			created_at, updated_at, completed_at
		FROM review_jobs
		WHERE contract_id = $1
		ORDER BY created_at DESC
		LIMIT 1`

	err := r.db.QueryRow(ctx, query, contractID).Scan(
		&job.ID,
		&job.ContractID,
		&job.Status,
		&job.CurrentStep,
		&job.Steps,
		&job.ErrorMessage,
		&job.CreatedAt,
		&job.UpdatedAt,
		&job.CompletedAt,
	)

	if err != nil {
		return nil, err
	}

	if job.Steps == nil {
		job.Steps = make(models.ReviewSteps, 0)
	}

	return job, nil
}

// UpdateStatus updates the status of a review job
func (r *ReviewJobRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ReviewJobStatus) error {
	query := `
		UPDATE review_jobs SET
			status = $2,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, status)
	return err
}

// UpdateProgress updates the progress of a review job
func (r *ReviewJobRepository) UpdateProgress(ctx context.Context, id uuid.UUID, currentStep string, steps models.ReviewSteps) error {
	query := `
		UPDATE review_jobs SET
			current_step = $2,
			steps = $3,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, currentStep, steps)
	return err
}

// Complete marks a review job as completed
func (r *ReviewJobRepository) Complete(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	query := `
		UPDATE review_jobs SET
			status = $2,
			completed_at = $3,
			updated_at = $3
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, models.JobStatusCompleted, now)
	return err
}

// Fail marks a review job as failed
func (r *ReviewJobRepository) Fail(ctx context.Context, id uuid.UUID, errorMessage string) error {
	query := `
		UPDATE review_jobs SET
			status = $2,
			error_message = $3,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, models.JobStatusFailed, errorMessage)
	return err
}
