package service

import (
	"context"

	"vocabclash/internal/models"
)

// SessionStore is a string key-value store holding serialized sessions
type SessionStore interface {
	// Get returns the value under key; ok is false when absent
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// TemplateSource provides read-only access to vocabulary templates
type TemplateSource interface {
	GetTemplate(ctx context.Context, id string) (*models.Template, error)
}
