package game

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"vocabclash/internal/models"
)

// Session is the mutable, locally persisted progress of one player through one
// template in one mode
type Session struct {
	SessionID    string         `json:"sessionId"`
	TemplateID   string         `json:"templateId"`
	Mode         Mode           `json:"mode"`
	Items        []ItemProgress `json:"items"`
	CurrentIndex int            `json:"currentIndex"`
	IsComplete   bool           `json:"isComplete"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

// Summary counts the answers of a session
type Summary struct {
	TemplateID string
	Mode       Mode
	Total      int
	Correct    int
	Incorrect  int
}

// Build creates a fresh session for a template: every item pending, the first
// item current
func Build(tmpl *models.Template, mode Mode, pool *WordPool, rng Randomizer, now time.Time) (*Session, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}

	items := make([]ItemProgress, len(tmpl.Items))
	for i, vocab := range tmpl.Items {
		vocab.Word = strings.TrimSpace(vocab.Word)
		item, err := newItem(mode.kindFor(i), vocab, pool, rng)
		if err != nil {
			return nil, fmt.Errorf("failed to build item %d of template %q: %w", i, tmpl.ID, err)
		}
		items[i] = item
	}

	return &Session{
		SessionID:  SessionID(mode, tmpl.ID),
		TemplateID: tmpl.ID,
		Mode:       mode,
		Items:      items,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// Key returns the local store key of the session
func (s *Session) Key() string {
	return StateKey(s.Mode, s.TemplateID)
}

// Current returns the current item, or false once the session is complete
func (s *Session) Current() (*ItemProgress, bool) {
	if s.IsComplete || s.CurrentIndex >= len(s.Items) {
		return nil, false
	}
	return &s.Items[s.CurrentIndex], true
}

func (s *Session) item(index int) (*ItemProgress, error) {
	if s.IsComplete {
		return nil, ErrSessionComplete
	}
	if index < 0 || index >= len(s.Items) {
		return nil, ErrItemOutOfRange
	}
	if index != s.CurrentIndex {
		return nil, ErrNotCurrentItem
	}
	return &s.Items[index], nil
}

// SelectOption answers a pending multiple-choice item. Both outcomes are terminal.
func (s *Session) SelectOption(index int, option string) error {
	item, err := s.item(index)
	if err != nil {
		return err
	}
	if item.Kind != KindChoice {
		return ErrWrongItemKind
	}
	return item.Choice.choose(option)
}

// PlaceLetter puts a scrambled tile into the first empty slot of a letter item
func (s *Session) PlaceLetter(index int, letter string) error {
	item, err := s.item(index)
	if err != nil {
		return err
	}
	if item.Kind != KindLetters {
		return ErrWrongItemKind
	}
	return item.Letters.place(letter)
}

// RemoveLetter clears a slot of the current letter item, including one of a
// completed word that has not been advanced past
func (s *Session) RemoveLetter(index, slot int) error {
	item, err := s.item(index)
	if err != nil {
		return err
	}
	if item.Kind != KindLetters {
		return ErrWrongItemKind
	}
	return item.Letters.remove(slot)
}

// Advance moves past the current item once it is terminal. Reaching the end
// completes the session; the index is frozen from then on.
func (s *Session) Advance() error {
	if s.IsComplete {
		return ErrSessionComplete
	}
	item, ok := s.Current()
	if !ok {
		return ErrSessionComplete
	}
	if !item.Terminal() {
		return ErrItemNotTerminal
	}

	s.CurrentIndex++
	if s.CurrentIndex >= len(s.Items) {
		s.IsComplete = true
	}
	return nil
}

// Summary counts correct and incorrect answers so far
func (s *Session) Summary() Summary {
	sum := Summary{TemplateID: s.TemplateID, Mode: s.Mode, Total: len(s.Items)}
	for i := range s.Items {
		switch s.Items[i].Status() {
		case StatusCompleted, StatusCorrect:
			sum.Correct++
		case StatusIncorrect:
			sum.Incorrect++
		}
	}
	return sum
}

// Validate checks the structure of a decoded session
func (s *Session) Validate() error {
	if !s.Mode.Valid() {
		return fmt.Errorf("session has unknown mode %q: %w", s.Mode, models.ErrInvalidData)
	}
	if s.TemplateID == "" {
		return fmt.Errorf("session has no template id: %w", models.ErrInvalidData)
	}
	if len(s.Items) == 0 {
		return fmt.Errorf("session %q has no items: %w", s.TemplateID, models.ErrInvalidData)
	}
	if s.CurrentIndex < 0 || s.CurrentIndex > len(s.Items) {
		return fmt.Errorf("session %q index %d out of range: %w", s.TemplateID, s.CurrentIndex, models.ErrInvalidData)
	}
	if s.IsComplete != (s.CurrentIndex == len(s.Items)) {
		return fmt.Errorf("session %q completion flag is inconsistent: %w", s.TemplateID, models.ErrInvalidData)
	}

	for i := range s.Items {
		item := &s.Items[i]
		if item.Kind != s.Mode.kindFor(i) {
			return fmt.Errorf("session %q item %d has kind %q in mode %q: %w", s.TemplateID, i, item.Kind, s.Mode, models.ErrInvalidData)
		}
		if err := item.validate(); err != nil {
			return fmt.Errorf("session %q item %d: %w", s.TemplateID, i, err)
		}
		if i < s.CurrentIndex && !item.Terminal() {
			return fmt.Errorf("session %q passed unanswered item %d: %w", s.TemplateID, i, models.ErrInvalidData)
		}
		if i > s.CurrentIndex && item.Status() != StatusPending {
			return fmt.Errorf("session %q has progress on future item %d: %w", s.TemplateID, i, models.ErrInvalidData)
		}
	}
	return nil
}

// Encode serializes the session snapshot
func (s *Session) Encode() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to encode session: %w", err)
	}
	return string(data), nil
}

// Decode parses and validates a serialized session snapshot
func Decode(data string) (*Session, error) {
	var s Session
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("failed to decode session: %v: %w", err, models.ErrInvalidData)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}
