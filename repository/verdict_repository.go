package repository

import (
	"context"
	"fmt"

	"clausecheck-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// VerdictRepository handles database operations for review verdicts
type VerdictRepository struct {
	db *pgxpool.Pool
}

// NewVerdictRepository creates a new verdict repository
func NewVerdictRepository(db *pgxpool.Pool) *VerdictRepository {
	return &VerdictRepository{db: db}
}

// CreateBatch persists the verdicts of one review run
func (r *VerdictRepository) CreateBatch(ctx context.Context, verdicts []*models.Verdict) error {
	query := `
		INSERT INTO verdicts (
			contract_id, term_id, clause_boundary_id, rag, matches,
			severity, match_reason, confidence, explanation, differences
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`

	for _, v := range verdicts {
		err := r.db.QueryRow(
			ctx, query,
			v.ContractID,
			v.TermID,
			v.ClauseBoundaryID,
			v.Rag,
			v.Matches,
			v.Severity,
			v.MatchReason,
			v.Confidence,
			v.Explanation,
			v.Differences,
		).Scan(&v.ID, &v.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert verdict: %w", err)
		}
	}

	return nil
}

// ListByContract retrieves all verdicts for a contract
func (r *VerdictRepository) ListByContract(ctx context.Context, contractID uuid.UUID) ([]*models.Verdict, error) {
	query := `
		SELECT id, contract_id, term_id, clause_boundary_id, rag, matches,
			severity, match_reason, confidence, explanation, differences, created_at
		FROM verdicts
		WHERE contract_id = $1
		ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var verdicts []*models.Verdict
	for rows.Next() {
		v := &models.Verdict{}
		err := rows.Scan(
			&v.ID,
			&v.ContractID,
			&v.TermID,
			&v.ClauseBoundaryID,
			&v.Rag,
			&v.Matches,
			&v.Severity,
			&v.MatchReason,
			&v.Confidence,
			&v.Explanation,
			&v.Differences,
			&v.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		verdicts = append(verdicts, v)
	}

	return verdicts, rows.Err()
}

// DeleteByContract removes all verdicts for a contract before a re-review
func (r *VerdictRepository) DeleteByContract(ctx context.Context, contractID uuid.UUID) error {
	query := `DELETE FROM verdicts WHERE contract_id = $1`
	_, err := r.db.Exec(ctx, query, contractID)
	return err
}
