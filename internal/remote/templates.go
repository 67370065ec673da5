// Package remote reads vocabulary templates from the platform's document API.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"vocabclash/internal/models"
)

// maxDocumentSize caps the template document body read from the API
const maxDocumentSize = 1 << 20

// document is the wire shape of a template: { name, vocabularies: [{vocab, imageURL}] }
type document struct {
	Name         string `json:"name"`
	Vocabularies []struct {
		Vocab    *string `json:"vocab"`
		ImageURL string  `json:"imageURL"`
	} `json:"vocabularies"`
}

// StatusError is returned for unexpected HTTP responses; callers treat it as transient
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("template API returned status %d", e.StatusCode)
}

// TemplateClient fetches templates over HTTP
type TemplateClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *slog.Logger
}

// NewTemplateClient creates a client for the API rooted at baseURL.
// apiKey is sent as a bearer token when set.
func NewTemplateClient(baseURL, apiKey string, client *http.Client, logger *slog.Logger) *TemplateClient {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TemplateClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
		logger:  logger,
	}
}

// GetTemplate reads the template document with the given id.
// A 404 yields models.ErrNotFound and an undecodable body models.ErrInvalidData.
func (c *TemplateClient) GetTemplate(ctx context.Context, id string) (*models.Template, error) {
	endpoint := c.baseURL + "/templates/" + url.PathEscape(id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build template request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch template %q: %w", id, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("template %q: %w", id, models.ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxDocumentSize))
		c.logger.Warn("template fetch failed", "template_id", id, "status", resp.StatusCode)
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	var doc document
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxDocumentSize)).Decode(&doc); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, err
		}
		return nil, fmt.Errorf("template %q is not a valid document: %v: %w", id, err, models.ErrInvalidData)
	}

	tmpl := &models.Template{ID: id, Name: doc.Name}
	for i, v := range doc.Vocabularies {
		if v.Vocab == nil {
			return nil, fmt.Errorf("template %q vocabulary %d has no word: %w", id, i, models.ErrInvalidData)
		}
		tmpl.Items = append(tmpl.Items, models.VocabularyItem{
			Word:           *v.Vocab,
			ImageReference: v.ImageURL,
		})
	}

	c.logger.Debug("template fetched", "template_id", id, "items", len(tmpl.Items))
	return tmpl, nil
}
