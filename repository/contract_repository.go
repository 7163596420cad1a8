package repository

import (
	"context"
	"fmt"
	"time"

	"clausecheck-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ContractRepository handles database operations for contracts
type ContractRepository struct {
	db *pgxpool.Pool
}

// NewContractRepository creates a new contract repository
func NewContractRepository(db *pgxpool.Pool) *ContractRepository {
	return &ContractRepository{db: db}
}

// Create creates a new contract
func (r *ContractRepository) Create(ctx context.Context, contract *models.Contract) error {
	query := `
		INSERT INTO contracts (
			user_id, status, title, counterparty_name, original_text,
			file_id, metadata
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		) RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		contract.UserID,
		contract.Status,
		contract.Title,
		contract.CounterpartyName,
		contract.OriginalText,
		contract.FileID,
		contract.Metadata,
	).Scan(&contract.ID, &contract.CreatedAt, &contract.UpdatedAt)

	return err
}

// GetByID retrieves a contract by ID
func (r *ContractRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	contract := &models.Contract{}
	query := `
		SELECT id, user_id, status, title, counterparty_name, original_text,
			file_id, metadata, created_at, updated_at, reviewed_at
		FROM contracts
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&contract.ID,
		&contract.UserID,
		&contract.Status,
		&contract.Title,
		&contract.CounterpartyName,
		&contract.OriginalText,
		&contract.FileID,
		&contract.Metadata,
		&contract.CreatedAt,
		&contract.UpdatedAt,
		&contract.ReviewedAt,
	)

	if err != nil {
		return nil, err
	}

	return contract, nil
}

// Update updates a contract
func (r *ContractRepository) Update(ctx context.Context, contract *models.Contract) error {
	query := `
		UPDATE contracts SET
			status = $2,
			title = $3,
			counterparty_name = $4,
			original_text = $5,
			file_id = $6,
			metadata = $7,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRow(
		ctx, query,
		contract.ID,
		contract.Status,
		contract.Title,
		contract.CounterpartyName,
		contract.OriginalText,
		contract.FileID,
		contract.Metadata,
	).Scan(&contract.UpdatedAt)

	return err
}

// UpdateStatus updates only the review status of a contract
func (r *ContractRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ContractStatus) error {
	query := `
		UPDATE contracts SET
			status = $2,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, status)
	return err
}

// MarkReviewed marks a contract as reviewed
func (r *ContractRepository) MarkReviewed(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	query := `
		UPDATE contracts SET
			status = $2,
			reviewed_at = $3,
			updated_at = $3
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, models.ContractStatusReviewed, now)
	return err
}

// ListByUserID retrieves contracts for a user
func (r *ContractRepository) ListByUserID(ctx context.Context, userID uuid.UUID, status *models.ContractStatus, limit, offset int) ([]*models.Contract, error) {
	query := `
		SELECT id, user_id, status, title, counterparty_name, original_text,
			file_id, metadata, created_at, updated_at, reviewed_at
		FROM contracts
		WHERE user_id = $1`

	args := []interface{}{userID}
	argIndex := 2

	if status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, *status)
		argIndex++
	}

	query += " ORDER BY created_at DESC"

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, limit)
		argIndex++
		if offset > 0 {
			query += fmt.Sprintf(" OFFSET $%d", argIndex)
			args = append(args, offset)
		}
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contracts []*models.Contract
	for rows.Next() {
		contract := &models.Contract{}
		err := rows.Scan(
			&contract.ID,
			&contract.UserID,
			&contract.Status,
			&contract.Title,
			&contract.CounterpartyName,
			&contract.OriginalText,
			&contract.FileID,
			&contract.Metadata,
			&contract.CreatedAt,
			&contract.UpdatedAt,
			&contract.ReviewedAt,
		)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, contract)
	}

	return contracts, rows.Err()
}

// Delete deletes a contract
func (r *ContractRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM contracts WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}
