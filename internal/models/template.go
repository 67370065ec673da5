package models

import (
	"fmt"
	"strings"
	"time"
)

// VocabularyItem is one word of a vocabulary template
type VocabularyItem struct {
	Word           string `json:"word"`
	ImageReference string `json:"imageReference,omitempty"`
	AudioFilename  string `json:"audioFilename,omitempty"`
}

// Template is an immutable, remotely authored vocabulary list used to seed game sessions
type Template struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Items     []VocabularyItem `json:"items"`
	CreatedAt time.Time        `json:"createdAt,omitempty"`
}

// Validate checks a template can seed a session. An empty item list is reported
// as ErrNotFound, a malformed item as ErrInvalidData.
func (t *Template) Validate() error {
	if len(t.Items) == 0 {
		return fmt.Errorf("template %q has no vocabularies: %w", t.ID, ErrNotFound)
	}
	for i, item := range t.Items {
		if strings.TrimSpace(item.Word) == "" {
			return fmt.Errorf("template %q item %d has an empty word: %w", t.ID, i, ErrInvalidData)
		}
	}
	return nil
}

// Words returns the words of the template in order
func (t *Template) Words() []string {
	words := make([]string, len(t.Items))
	for i, item := range t.Items {
		words[i] = item.Word
	}
	return words
}
