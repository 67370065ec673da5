package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"vocabclash/internal/database"
	"vocabclash/internal/models"
)

// TemplateRepository handles database operations for vocabulary templates
type TemplateRepository struct {
	db *database.DB
}

// NewTemplateRepository creates a new template repository
func NewTemplateRepository(db *database.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

// GetTemplate retrieves a template and its items in order.
// Returns models.ErrNotFound when no template has the id.
func (r *TemplateRepository) GetTemplate(ctx context.Context, id string) (*models.Template, error) {
	tmpl := &models.Template{}
	err := r.db.QueryRowContext(ctx, "SELECT id, name, created_at FROM templates WHERE id = ?", id).Scan(
		&tmpl.ID,
		&tmpl.Name,
		&tmpl.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("template %q: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}

	query := `
		SELECT word, image_reference, audio_filename
		FROM template_items
		WHERE template_id = ?
		ORDER BY position ASC
	`
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query template items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.VocabularyItem
		if err := rows.Scan(&item.Word, &item.ImageReference, &item.AudioFilename); err != nil {
			return nil, fmt.Errorf("failed to scan template item: %w", err)
		}
		tmpl.Items = append(tmpl.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read template items: %w", err)
	}

	return tmpl, nil
}

// SaveTemplate creates or replaces a template, rewriting its items in one transaction
func (r *TemplateRepository) SaveTemplate(ctx context.Context, tmpl *models.Template) error {
	if tmpl.CreatedAt.IsZero() {
		tmpl.CreatedAt = time.Now().UTC()
	}

	return r.db.WithTx(ctx, func(tx *database.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.GetDialect().UpsertTemplateQuery(), tmpl.ID, tmpl.Name, tmpl.CreatedAt); err != nil {
			return fmt.Errorf("failed to save template: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM template_items WHERE template_id = ?", tmpl.ID); err != nil {
			return fmt.Errorf("failed to clear template items: %w", err)
		}

		query := `
			INSERT INTO template_items (template_id, position, word, image_reference, audio_filename)
			VALUES (?, ?, ?, ?, ?)
		`
		for i, item := range tmpl.Items {
			if _, err := tx.ExecContext(ctx, query, tmpl.ID, i, item.Word, item.ImageReference, item.AudioFilename); err != nil {
				return fmt.Errorf("failed to save template item %d: %w", i, err)
			}
		}
		return nil
	})
}

// ListTemplates returns every template without items, ordered by name
func (r *TemplateRepository) ListTemplates(ctx context.Context) ([]models.Template, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, created_at FROM templates ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query templates: %w", err)
	}
	defer rows.Close()

	var templates []models.Template
	for rows.Next() {
		var tmpl models.Template
		if err := rows.Scan(&tmpl.ID, &tmpl.Name, &tmpl.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}
		templates = append(templates, tmpl)
	}
	return templates, rows.Err()
}

// DeleteTemplate removes a template and its items
func (r *TemplateRepository) DeleteTemplate(ctx context.Context, id string) error {
	return r.db.WithTx(ctx, func(tx *database.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM template_items WHERE template_id = ?", id); err != nil {
			return fmt.Errorf("failed to delete template items: %w", err)
		}
		result, err := tx.ExecContext(ctx, "DELETE FROM templates WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to delete template: %w", err)
		}
		if n, _ := result.RowsAffected(); n == 0 {
			return fmt.Errorf("template %q: %w", id, models.ErrNotFound)
		}
		return nil
	})
}
