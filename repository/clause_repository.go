package repository

import (
	"context"
	"fmt"

	"clausecheck-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ClauseRepository handles database operations for validated clause boundaries
type ClauseRepository struct {
	db *pgxpool.Pool
}

// NewClauseRepository creates a new clause repository
func NewClauseRepository(db *pgxpool.Pool) *ClauseRepository {
	return &ClauseRepository{db: db}
}

// CreateBatch persists the validated clauses of one extraction run and
// returns the stored boundaries with their assigned IDs
func (r *ClauseRepository) CreateBatch(ctx context.Context, contractID uuid.UUID, clauses []models.ValidatedClause) ([]*models.ClauseBoundary, error) {
	query := `
		INSERT INTO clause_boundaries (
			contract_id, clause_type, content, summary,
			start_index, end_index, confidence, rag_status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`

	boundaries := make([]*models.ClauseBoundary, 0, len(clauses))
	for _, clause := range clauses {
		b := &models.ClauseBoundary{
			ContractID: contractID,
			ClauseType: clause.ClauseType,
			Content:    clause.Content,
			Summary:    clause.Summary,
			StartIndex: clause.StartIndex,
			EndIndex:   clause.EndIndex,
			Confidence: clause.Confidence,
			RagStatus:  clause.RagStatus,
		}

		err := r.db.QueryRow(
			ctx, query,
			b.ContractID,
			b.ClauseType,
			b.Content,
			b.Summary,
			b.StartIndex,
			b.EndIndex,
			b.Confidence,
			b.RagStatus,
		).Scan(&b.ID, &b.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to insert clause boundary: %w", err)
		}

		boundaries = append(boundaries, b)
	}

	return boundaries, nil
}

// ListByContract retrieves all clause boundaries for a contract in document order
func (r *ClauseRepository) ListByContract(ctx context.Context, contractID uuid.UUID) ([]*models.ClauseBoundary, error) {
	query := `
		SELECT id, contract_id, clause_type, content, summary,
			start_index, end_index, confidence, rag_status, created_at
		FROM clause_boundaries
		WHERE contract_id = $1
		ORDER BY start_index ASC`

	rows, err := r.db.Query(ctx, query, contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var boundaries []*models.ClauseBoundary
	for rows.Next() {
		b := &models.ClauseBoundary{}
		err := rows.Scan(
			&b.ID,
			&b.ContractID,
			&b.ClauseType,
			&b.Content,
			&b.Summary,
			&b.StartIndex,
			&b.EndIndex,
			&b.Confidence,
			&b.RagStatus,
			&b.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		boundaries = append(boundaries, b)
	}

	return boundaries, rows.Err()
}

// DeleteByContract removes all clause boundaries for a contract, so a review
// can be re-run from scratch
func (r *ClauseRepository) DeleteByContract(ctx context.Context, contractID uuid.UUID) error {
	query := `DELETE FROM clause_boundaries WHERE contract_id = $1`
	_, err := r.db.Exec(ctx, query, contractID)
	return err
}
