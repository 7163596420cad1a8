package repository

import (
	"context"

	"clausecheck-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TermRepository handles database operations for pre-agreed terms
type TermRepository struct {
	db *pgxpool.Pool
}

// NewTermRepository creates a new term repository
func NewTermRepository(db *pgxpool.Pool) *TermRepository {
	return &TermRepository{db: db}
}

// Create creates a new pre-agreed term
func (r *TermRepository) Create(ctx context.Context, term *models.PreAgreedTerm) error {
	query := `
		INSERT INTO pre_agreed_terms (
			contract_id, term_category, term_description, expected_value,
			is_mandatory, normalized_term_category, normalized_clause_type
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`

	return r.db.QueryRow(
		ctx, query,
		term.ContractID,
		term.TermCategory,
		term.TermDescription,
		term.ExpectedValue,
		term.IsMandatory,
		term.NormalizedTermCategory,
		term.NormalizedClauseType,
	).Scan(&term.ID, &term.CreatedAt)
}

// ListByContract retrieves all pre-agreed terms for a contract
func (r *TermRepository) ListByContract(ctx context.Context, contractID uuid.UUID) ([]*models.PreAgreedTerm, error) {
	query := `
		SELECT id, contract_id, term_category, term_description, expected_value,
			is_mandatory, normalized_term_category, normalized_clause_type, created_at
		FROM pre_agreed_terms
		WHERE contract_id = $1
		ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, contractID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var terms []*models.PreAgreedTerm
	for rows.Next() {
		term := &models.PreAgreedTerm{}
		err := rows.Scan(
			&term.ID,
			&term.ContractID,
			&term.TermCategory,
			&term.TermDescription,
			&term.ExpectedValue,
			&term.IsMandatory,
			&term.NormalizedTermCategory,
			&term.NormalizedClauseType,
			&term.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		terms = append(terms, term)
	}

	return terms, rows.Err()
}

// Delete deletes a pre-agreed term
func (r *TermRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM pre_agreed_terms WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
