package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"vocabclash/internal/models"
	"vocabclash/internal/validation"
)

// TemplateRepository stores authored templates
type TemplateRepository interface {
	GetTemplate(ctx context.Context, id string) (*models.Template, error)
	SaveTemplate(ctx context.Context, tmpl *models.Template) error
	ListTemplates(ctx context.Context) ([]models.Template, error)
	DeleteTemplate(ctx context.Context, id string) error
}

// bundleVersion is the current template bundle format
const bundleVersion = 1

// TemplateBundle is the file format used to move templates between installations
type TemplateBundle struct {
	Version    int               `json:"version"`
	ExportedAt time.Time         `json:"exportedAt"`
	Templates  []models.Template `json:"templates"`
}

// Pronouncer produces an audio file for a word
type Pronouncer interface {
	Generate(ctx context.Context, word string) (string, error)
}

// TemplateService imports vocabulary templates
type TemplateService struct {
	repo       TemplateRepository
	pronouncer Pronouncer
	logger     *slog.Logger
}

// NewTemplateService creates a template service. pronouncer may be nil to skip audio.
func NewTemplateService(repo TemplateRepository, pronouncer Pronouncer, logger *slog.Logger) *TemplateService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TemplateService{repo: repo, pronouncer: pronouncer, logger: logger}
}

// Import validates and stores templates, replacing any with the same id.
// Audio is attached to items that have none; an audio failure is logged and
// does not stop the import.
func (s *TemplateService) Import(ctx context.Context, templates []models.Template) (int, error) {
	for i := range templates {
		tmpl := &templates[i]
		tmpl.Name = strings.TrimSpace(tmpl.Name)
		for j := range tmpl.Items {
			tmpl.Items[j].Word = strings.TrimSpace(tmpl.Items[j].Word)
		}
		if err := validation.ValidateTemplate(tmpl); err != nil {
			return 0, fmt.Errorf("template %d (%q): %w", i, tmpl.ID, err)
		}
	}

	imported := 0
	for i := range templates {
		tmpl := &templates[i]
		s.attachAudio(ctx, tmpl)
		if err := s.repo.SaveTemplate(ctx, tmpl); err != nil {
			return imported, fmt.Errorf("failed to save template %q: %w", tmpl.ID, err)
		}
		imported++
		s.logger.Info("template imported", "template_id", tmpl.ID, "items", len(tmpl.Items))
	}
	return imported, nil
}

// List returns every stored template without items
func (s *TemplateService) List(ctx context.Context) ([]models.Template, error) {
	return s.repo.ListTemplates(ctx)
}

// Delete removes a template. Stored sessions built from it are kept and still
// resume; new sessions can no longer be built.
func (s *TemplateService) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteTemplate(ctx, id); err != nil {
		return err
	}
	s.logger.Info("template deleted", "template_id", id)
	return nil
}

func (s *TemplateService) attachAudio(ctx context.Context, tmpl *models.Template) {
	if s.pronouncer == nil {
		return
	}
	for j := range tmpl.Items {
		item := &tmpl.Items[j]
		if item.AudioFilename != "" {
			continue
		}
		filename, err := s.pronouncer.Generate(ctx, item.Word)
		if err != nil {
			s.logger.Warn("failed to generate pronunciation", "word", item.Word, "error", err)
			continue
		}
		item.AudioFilename = filename
	}
}

// ImportFromReader reads a template bundle and imports its templates
func (s *TemplateService) ImportFromReader(ctx context.Context, r io.Reader) (int, error) {
	var bundle TemplateBundle
	if err := json.NewDecoder(r).Decode(&bundle); err != nil {
		return 0, fmt.Errorf("failed to parse template bundle: %v: %w", err, models.ErrInvalidData)
	}
	if bundle.Version > bundleVersion {
		return 0, fmt.Errorf("template bundle version %d is newer than supported version %d: %w",
			bundle.Version, bundleVersion, models.ErrInvalidData)
	}
	return s.Import(ctx, bundle.Templates)
}

// ExportToWriter writes every stored template, with items, as a bundle
func (s *TemplateService) ExportToWriter(ctx context.Context, w io.Writer) (int, error) {
	summaries, err := s.repo.ListTemplates(ctx)
	if err != nil {
		return 0, err
	}

	bundle := TemplateBundle{
		Version:    bundleVersion,
		ExportedAt: time.Now().UTC(),
		Templates:  make([]models.Template, 0, len(summaries)),
	}
	for _, summary := range summaries {
		tmpl, err := s.repo.GetTemplate(ctx, summary.ID)
		if err != nil {
			return 0, fmt.Errorf("failed to export template %q: %w", summary.ID, err)
		}
		bundle.Templates = append(bundle.Templates, *tmpl)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(bundle); err != nil {
		return 0, fmt.Errorf("failed to write template bundle: %w", err)
	}
	return len(bundle.Templates), nil
}
