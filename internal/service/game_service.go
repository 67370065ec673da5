package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"vocabclash/internal/game"
	"vocabclash/internal/models"
)

const notifyTimeout = 15 * time.Second

// StateRepository stores serialized sessions per player
type StateRepository interface {
	GetState(ctx context.Context, playerID int64, key string) (string, bool, error)
	SaveState(ctx context.Context, playerID int64, key, payload string) error
	DeleteState(ctx context.Context, playerID int64, key string) error
	ListStateKeys(ctx context.Context, playerID int64) ([]string, error)
	DeleteStaleStates(ctx context.Context, before time.Time) (int64, error)
}

// PlayerLookup finds players by id
type PlayerLookup interface {
	GetPlayerByID(ctx context.Context, id int64) (*models.Player, error)
}

// SummaryMailer sends completion reports
type SummaryMailer interface {
	SendSessionSummary(ctx context.Context, toEmail, playerName, templateName string, summary game.Summary) error
}

// GameService opens game sessions for players and keeps stored sessions tidy
type GameService struct {
	reconciler *Reconciler
	sink       *Autosaver
	states     StateRepository
	players    PlayerLookup
	templates  TemplateSource
	mailer     SummaryMailer
	ttl        time.Duration
	logger     *slog.Logger
	now        func() time.Time

	notifications sync.WaitGroup
}

// NewGameService creates a game service. mailer may be nil.
func NewGameService(reconciler *Reconciler, sink *Autosaver, states StateRepository, players PlayerLookup,
	templates TemplateSource, mailer SummaryMailer, ttl time.Duration, logger *slog.Logger) *GameService {
	if logger == nil {
		logger = slog.Default()
	}
	return &GameService{
		reconciler: reconciler,
		sink:       sink,
		states:     states,
		players:    players,
		templates:  templates,
		mailer:     mailer,
		ttl:        ttl,
		logger:     logger,
		now:        time.Now,
	}
}

// Open loads the player's session for mode and templateID, resuming stored
// progress when present
func (s *GameService) Open(ctx context.Context, playerID int64, mode game.Mode, templateID string) (*Play, error) {
	store := s.sink.Wrap(&playerStore{repo: s.states, playerID: playerID}, fmt.Sprintf("player:%d", playerID))
	notifier := &completionMailer{service: s, playerID: playerID}
	play := NewPlay(s.reconciler, store, mode, templateID, notifier, s.logger.With("player_id", playerID))
	if err := play.Load(ctx); err != nil {
		return nil, err
	}
	return play, nil
}

// SavedGame identifies a stored session
type SavedGame struct {
	Mode       game.Mode
	TemplateID string
}

// ListSaved returns the player's stored sessions, most recently played first
func (s *GameService) ListSaved(ctx context.Context, playerID int64) ([]SavedGame, error) {
	if err := s.sink.Flush(ctx); err != nil {
		return nil, err
	}
	keys, err := s.states.ListStateKeys(ctx, playerID)
	if err != nil {
		return nil, err
	}

	saved := make([]SavedGame, 0, len(keys))
	for _, key := range keys {
		mode, templateID, ok := game.ParseStateKey(key)
		if !ok {
			s.logger.Warn("ignoring unrecognised state key", "player_id", playerID, "key", key)
			continue
		}
		saved = append(saved, SavedGame{Mode: mode, TemplateID: templateID})
	}
	return saved, nil
}

// Discard removes the player's stored session for mode and templateID without
// loading it. Removing an absent session is not an error.
func (s *GameService) Discard(ctx context.Context, playerID int64, mode game.Mode, templateID string) error {
	store := s.sink.Wrap(&playerStore{repo: s.states, playerID: playerID}, fmt.Sprintf("player:%d", playerID))
	return store.Remove(ctx, game.StateKey(mode, templateID))
}

// PruneStale removes stored sessions not updated within the retention TTL
func (s *GameService) PruneStale(ctx context.Context) (int64, error) {
	if s.ttl <= 0 {
		return 0, nil
	}
	if err := s.sink.Flush(ctx); err != nil {
		return 0, err
	}
	n, err := s.states.DeleteStaleStates(ctx, s.now().Add(-s.ttl))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info("pruned stale sessions", "count", n)
	}
	return n, nil
}

// RunPruner calls PruneStale every interval until ctx is done
func (s *GameService) RunPruner(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.PruneStale(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn("failed to prune stale sessions", "error", err)
			}
		}
	}
}

// Wait blocks until in-flight completion notifications have finished
func (s *GameService) Wait() {
	s.notifications.Wait()
}

// notifyCompletion emails the player's teacher in the background
func (s *GameService) notifyCompletion(playerID int64, summary game.Summary) {
	if s.mailer == nil {
		return
	}

	s.notifications.Add(1)
	go func() {
		defer s.notifications.Done()
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		player, err := s.players.GetPlayerByID(ctx, playerID)
		if err != nil || player == nil || player.TeacherEmail == "" {
			if err != nil {
				s.logger.Warn("failed to look up player for completion email", "player_id", playerID, "error", err)
			}
			return
		}

		name := summary.TemplateID
		if tmpl, err := s.templates.GetTemplate(ctx, summary.TemplateID); err == nil && tmpl.Name != "" {
			name = tmpl.Name
		}

		if err := s.mailer.SendSessionSummary(ctx, player.TeacherEmail, player.Username, name, summary); err != nil {
			s.logger.Warn("failed to send completion email", "player_id", playerID, "error", err)
		}
	}()
}

type completionMailer struct {
	service  *GameService
	playerID int64
}

func (c *completionMailer) SessionCompleted(_ context.Context, summary game.Summary) error {
	c.service.notifyCompletion(c.playerID, summary)
	return nil
}

// playerStore is the key-value view of one player's stored sessions
type playerStore struct {
	repo     StateRepository
	playerID int64
}

func (p *playerStore) Get(ctx context.Context, key string) (string, bool, error) {
	return p.repo.GetState(ctx, p.playerID, key)
}

func (p *playerStore) Set(ctx context.Context, key, value string) error {
	return p.repo.SaveState(ctx, p.playerID, key, value)
}

func (p *playerStore) Remove(ctx context.Context, key string) error {
	return p.repo.DeleteState(ctx, p.playerID, key)
}
