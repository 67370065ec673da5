package service

import (
	"context"
	"log/slog"
	"time"

	"vocabclash/internal/game"
)

// CompletionNotifier is told when a player finishes a session
type CompletionNotifier interface {
	SessionCompleted(ctx context.Context, summary game.Summary) error
}

// Play drives one session for one player. Mutations are rejected with
// ErrNotLoaded until Load succeeds, and every accepted transition is autosaved.
// A Play is not safe for concurrent use.
type Play struct {
	reconciler *Reconciler
	store      SessionStore
	mode       game.Mode
	templateID string
	notifier   CompletionNotifier
	logger     *slog.Logger
	now        func() time.Time

	session *game.Session
	loaded  bool
}

// NewPlay creates an unloaded play for mode and templateID over store
func NewPlay(reconciler *Reconciler, store SessionStore, mode game.Mode, templateID string, notifier CompletionNotifier, logger *slog.Logger) *Play {
	if logger == nil {
		logger = slog.Default()
	}
	return &Play{
		reconciler: reconciler,
		store:      store,
		mode:       mode,
		templateID: templateID,
		notifier:   notifier,
		logger:     logger.With("mode", string(mode), "template_id", templateID),
		now:        time.Now,
	}
}

// Load resumes or builds the session
func (p *Play) Load(ctx context.Context) error {
	session, err := p.reconciler.Load(ctx, p.store, p.mode, p.templateID)
	if err != nil {
		return err
	}
	p.session = session
	p.loaded = true
	return nil
}

// Loaded reports whether the session is ready for play
func (p *Play) Loaded() bool {
	return p.loaded
}

// Session returns the loaded session, or nil before Load
func (p *Play) Session() *game.Session {
	return p.session
}

// SelectOption answers the multiple-choice item at index
func (p *Play) SelectOption(ctx context.Context, index int, option string) error {
	return p.apply(ctx, func(s *game.Session) error { return s.SelectOption(index, option) })
}

// PlaceLetter places a tile into the letter item at index
func (p *Play) PlaceLetter(ctx context.Context, index int, letter string) error {
	return p.apply(ctx, func(s *game.Session) error { return s.PlaceLetter(index, letter) })
}

// RemoveLetter clears a slot of the letter item at index
func (p *Play) RemoveLetter(ctx context.Context, index, slot int) error {
	return p.apply(ctx, func(s *game.Session) error { return s.RemoveLetter(index, slot) })
}

// Advance moves to the next item, notifying completion when it was the last
func (p *Play) Advance(ctx context.Context) error {
	if err := p.apply(ctx, func(s *game.Session) error { return s.Advance() }); err != nil {
		return err
	}
	if p.session.IsComplete {
		summary := p.session.Summary()
		p.logger.Info("session complete", "correct", summary.Correct, "incorrect", summary.Incorrect, "total", summary.Total)
		if p.notifier != nil {
			if err := p.notifier.SessionCompleted(ctx, summary); err != nil {
				p.logger.Warn("completion notification failed", "error", err)
			}
		}
	}
	return nil
}

// Reset discards progress and starts over from a freshly built session
func (p *Play) Reset(ctx context.Context) error {
	if !p.loaded {
		return ErrNotLoaded
	}
	session, err := p.reconciler.Rebuild(ctx, p.store, p.mode, p.templateID)
	if err != nil {
		return err
	}
	p.session = session
	return nil
}

// Abandon removes the stored session. The play must be loaded again before further use.
func (p *Play) Abandon(ctx context.Context) error {
	if !p.loaded {
		return ErrNotLoaded
	}
	if err := p.store.Remove(ctx, p.session.Key()); err != nil {
		return err
	}
	p.session = nil
	p.loaded = false
	return nil
}

func (p *Play) apply(ctx context.Context, transition func(*game.Session) error) error {
	if !p.loaded {
		return ErrNotLoaded
	}
	if err := transition(p.session); err != nil {
		return err
	}
	p.session.UpdatedAt = p.now().UTC()
	p.save(ctx)
	return nil
}

func (p *Play) save(ctx context.Context) {
	payload, err := p.session.Encode()
	if err != nil {
		p.logger.Error("failed to encode session", "error", err)
		return
	}
	if err := p.store.Set(ctx, p.session.Key(), payload); err != nil {
		p.logger.Warn("autosave failed", "error", err)
	}
}
