package handlers

import (
	"net/url"
	"path"
	"time"

	"vocabclash/internal/game"
)

// SessionView is the JSON rendering of a session. Current is nil once the
// session is complete.
type SessionView struct {
	SessionID    string        `json:"sessionId"`
	TemplateID   string        `json:"templateId"`
	Mode         game.Mode     `json:"mode"`
	CurrentIndex int           `json:"currentIndex"`
	Total        int           `json:"total"`
	IsComplete   bool          `json:"isComplete"`
	Current      *ItemView     `json:"current,omitempty"`
	Items        []ItemSummary `json:"items"`
	Score        ScoreView     `json:"score"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// ItemSummary is the status line of one item
type ItemSummary struct {
	Index  int             `json:"index"`
	Kind   game.ItemKind   `json:"kind"`
	Status game.ItemStatus `json:"status"`
}

// ItemView renders the current item in its mode
type ItemView struct {
	Index   int           `json:"index"`
	Kind    game.ItemKind `json:"kind"`
	Letters *LetterView   `json:"letters,omitempty"`
	Choice  *ChoiceView   `json:"choice,omitempty"`
}

// LetterView shows placed tiles with EmptySlot for gaps and the tiles left to place
type LetterView struct {
	Slots     []string `json:"slots"`
	Remaining []string `json:"remaining"`
	Badge     string   `json:"badge,omitempty"`
	Audio     string   `json:"audio,omitempty"`
}

// ChoiceView shows the picture and offered words. Answer is revealed once chosen.
type ChoiceView struct {
	ImageReference string       `json:"imageReference,omitempty"`
	Options        []string     `json:"options"`
	Chosen         string       `json:"chosen,omitempty"`
	Outcome        game.Outcome `json:"outcome"`
	Answer         string       `json:"answer,omitempty"`
	Audio          string       `json:"audio,omitempty"`
}

type ScoreView struct {
	Correct   int `json:"correct"`
	Incorrect int `json:"incorrect"`
}

type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type SavedGameView struct {
	Mode       game.Mode `json:"mode"`
	TemplateID string    `json:"templateId"`
}

type TemplateView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// newSessionView renders s
func newSessionView(s *game.Session) SessionView {
	summary := s.Summary()
	view := SessionView{
		SessionID:    s.SessionID,
		TemplateID:   s.TemplateID,
		Mode:         s.Mode,
		CurrentIndex: s.CurrentIndex,
		Total:        len(s.Items),
		IsComplete:   s.IsComplete,
		Items:        make([]ItemSummary, len(s.Items)),
		Score:        ScoreView{Correct: summary.Correct, Incorrect: summary.Incorrect},
		UpdatedAt:    s.UpdatedAt,
	}
	for i := range s.Items {
		view.Items[i] = ItemSummary{Index: i, Kind: s.Items[i].Kind, Status: s.Items[i].Status()}
	}
	if item, ok := s.Current(); ok {
		view.Current = newItemView(s.CurrentIndex, item)
	}
	return view
}

func newItemView(index int, item *game.ItemProgress) *ItemView {
	view := &ItemView{Index: index, Kind: item.Kind}
	switch item.Kind {
	case game.KindLetters:
		view.Letters = newLetterView(item.Letters)
	case game.KindChoice:
		view.Choice = newChoiceView(item.Choice)
	}
	return view
}

func newLetterView(l *game.LetterPlacement) *LetterView {
	slots := make([]string, len(l.PlacedSlots))
	for i, s := range l.PlacedSlots {
		if s == "" {
			s = EmptySlot
		}
		slots[i] = s
	}
	view := &LetterView{Slots: slots, Remaining: l.RemainingTiles(), Audio: audioURL(l.AudioReference)}
	if l.IsWordComplete {
		view.Badge = BadgeComplete
	}
	return view
}

func newChoiceView(c *game.MultipleChoice) *ChoiceView {
	view := &ChoiceView{
		ImageReference: c.ImageReference,
		Options:        c.OfferedOptions,
		Outcome:        c.Outcome,
		Audio:          audioURL(c.AudioReference),
	}
	if c.ChosenOption != nil {
		view.Chosen = *c.ChosenOption
		view.Answer = c.TargetWord
	}
	return view
}

// audioURL is the served path of a pronunciation file, or empty when there is none
func audioURL(filename string) string {
	if filename == "" {
		return ""
	}
	return AudioPathPrefix + url.PathEscape(path.Base(filename))
}
