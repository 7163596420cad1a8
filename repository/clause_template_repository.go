package repository

import (
	"context"
	"fmt"
	"strings"

	"clausecheck-backend/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ClauseTemplateRepository handles database operations for the clause library
type ClauseTemplateRepository struct {
	db *pgxpool.Pool
}

// NewClauseTemplateRepository creates a new clause template repository
func NewClauseTemplateRepository(db *pgxpool.Pool) *ClauseTemplateRepository {
	return &ClauseTemplateRepository{db: db}
}

// formatVector formats an embedding vector as a string for pgx
func formatVector(embedding []float64) string {
	if len(embedding) == 0 {
		return "[]"
	}
	var parts []string
	for _, v := range embedding {
		parts = append(parts, fmt.Sprintf("%.6f", v))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Insert stores a clause template with its embedding
func (r *ClauseTemplateRepository) Insert(ctx context.Context, template *models.ClauseTemplate, embedding []float64) error {
	if len(embedding) != 768 {
		return fmt.Errorf("embedding must be 768 dimensions, got %d", len(embedding))
	}

	query := `
		INSERT INTO clause_templates (
			clause_type, template_text, source_document, metadata, embedding
		) VALUES ($1, $2, $3, $4, $5::vector)
		RETURNING id`

	return r.db.QueryRow(
		ctx, query,
		template.ClauseType,
		template.Text,
		template.SourceDocument,
		template.Metadata,
		formatVector(embedding),
	).Scan(&template.ID)
}

// SearchSimilar performs a vector search over the clause library.
// embedding: query embedding vector (768 dimensions)
// clauseType: optional clause type filter ("" matches all types)
// limit: maximum number of templates to return
func (r *ClauseTemplateRepository) SearchSimilar(
	ctx context.Context,
	embedding []float64,
	clauseType string,
	limit int,
) ([]models.ClauseTemplate, error) {
	if len(embedding) != 768 {
		return nil, fmt.Errorf("embedding must be 768 dimensions, got %d", len(embedding))
	}

	vectorStr := formatVector(embedding)

	var typeFilter string
	var args []interface{}
	if clauseType == "" {
		typeFilter = "TRUE"
		args = []interface{}{vectorStr, limit}
	} else {
		typeFilter = "clause_type = $2"
		args = []interface{}{vectorStr, clauseType, limit}
	}

	query := fmt.Sprintf(`
		SELECT
			id,
			clause_type,
			template_text,
			source_document,
			metadata,
			embedding <=> $1::vector AS distance
		FROM clause_templates
		WHERE %s
		ORDER BY
			embedding <=> $1::vector
		LIMIT $%d`, typeFilter, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query clause templates: %w", err)
	}
	defer rows.Close()

	var templates []models.ClauseTemplate
	for rows.Next() {
		var t models.ClauseTemplate
		err := rows.Scan(
			&t.ID,
			&t.ClauseType,
			&t.Text,
			&t.SourceDocument,
			&t.Metadata,
			&t.Distance,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan clause template: %w", err)
		}
		templates = append(templates, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clause templates: %w", err)
	}

	return templates, nil
}
