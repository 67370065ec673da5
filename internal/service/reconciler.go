package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"vocabclash/internal/game"
	"vocabclash/internal/models"
)

// ReconcilerConfig tunes template fetching and session retention
type ReconcilerConfig struct {
	FetchTimeout  time.Duration // per attempt
	FetchAttempts int
	FetchBackoff  time.Duration // first retry delay, doubled per attempt
	SessionTTL    time.Duration // stored sessions older than this are rebuilt; 0 keeps them forever
}

// Reconciler decides whether a game resumes from the local store or is built
// fresh from the remote template
type Reconciler struct {
	source TemplateSource
	pool   *game.WordPool
	rng    game.Randomizer
	cfg    ReconcilerConfig
	logger *slog.Logger
	now    func() time.Time
}

// NewReconciler creates a reconciler reading templates from source
func NewReconciler(source TemplateSource, pool *game.WordPool, rng game.Randomizer, cfg ReconcilerConfig, logger *slog.Logger) *Reconciler {
	if cfg.FetchAttempts < 1 {
		cfg.FetchAttempts = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	if rng == nil {
		rng = game.DefaultRandom()
	}
	return &Reconciler{
		source: source,
		pool:   pool,
		rng:    rng,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// Load returns the stored session for mode and templateID when it is intact,
// otherwise builds a fresh one from the template and persists it before returning.
// A failed store read returns ErrStoreUnavailable rather than overwriting
// progress that could not be read.
func (r *Reconciler) Load(ctx context.Context, store SessionStore, mode game.Mode, templateID string) (*game.Session, error) {
	if err := checkTarget(mode, templateID); err != nil {
		return nil, err
	}
	key := game.StateKey(mode, templateID)
	logger := r.logger.With("key", key)

	payload, ok, err := store.Get(ctx, key)
	switch {
	case err != nil:
		logger.Warn("failed to read stored session", "error", err)
		return nil, fmt.Errorf("%v: %w", err, ErrStoreUnavailable)
	case ok:
		session, err := r.resume(payload, mode, templateID)
		if err == nil {
			logger.Debug("session resumed", "current_index", session.CurrentIndex)
			return session, nil
		}
		logger.Warn("discarding stored session", "error", err)
		if err := store.Remove(ctx, key); err != nil {
			logger.Warn("failed to remove stored session", "error", err)
		}
	}

	return r.Rebuild(ctx, store, mode, templateID)
}

// Rebuild fetches the template, builds a fresh session and overwrites whatever
// is stored under the session's key
func (r *Reconciler) Rebuild(ctx context.Context, store SessionStore, mode game.Mode, templateID string) (*game.Session, error) {
	if err := checkTarget(mode, templateID); err != nil {
		return nil, err
	}

	tmpl, err := r.fetch(ctx, templateID)
	if err != nil {
		return nil, err
	}

	session, err := game.Build(tmpl, mode, r.pool, r.rng, r.now().UTC())
	if err != nil {
		return nil, err
	}

	payload, err := session.Encode()
	if err != nil {
		return nil, err
	}
	if err := store.Set(ctx, session.Key(), payload); err != nil {
		r.logger.Warn("failed to persist fresh session", "key", session.Key(), "error", err)
	}

	r.logger.Info("session built", "key", session.Key(), "items", len(session.Items))
	return session, nil
}

func checkTarget(mode game.Mode, templateID string) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", game.ErrInvalidMode, mode)
	}
	if strings.TrimSpace(templateID) == "" {
		return fmt.Errorf("empty template id: %w", models.ErrNotFound)
	}
	return nil
}

func (r *Reconciler) resume(payload string, mode game.Mode, templateID string) (*game.Session, error) {
	session, err := game.Decode(payload)
	if err != nil {
		return nil, err
	}
	if session.Mode != mode || session.TemplateID != templateID {
		return nil, fmt.Errorf("stored session belongs to %s/%s: %w", session.Mode, session.TemplateID, models.ErrInvalidData)
	}
	if r.cfg.SessionTTL > 0 && r.now().Sub(session.UpdatedAt) > r.cfg.SessionTTL {
		return nil, fmt.Errorf("stored session last updated %s is stale", session.UpdatedAt.Format(time.RFC3339))
	}
	return session, nil
}

// fetch reads a template with a per-attempt timeout, retrying transient
// failures with exponential backoff
func (r *Reconciler) fetch(ctx context.Context, templateID string) (*models.Template, error) {
	attempt := 0
	op := func() (*models.Template, error) {
		attempt++
		attemptCtx := ctx
		if r.cfg.FetchTimeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, r.cfg.FetchTimeout)
			defer cancel()
		}

		tmpl, err := r.source.GetTemplate(attemptCtx, templateID)
		switch {
		case err == nil:
			if tmpl == nil {
				return nil, backoff.Permanent(fmt.Errorf("template %q: %w", templateID, models.ErrNotFound))
			}
			if tmpl.ID == "" {
				tmpl.ID = templateID
			}
			return tmpl, nil
		case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrInvalidData), ctx.Err() != nil:
			return nil, backoff.Permanent(err)
		default:
			return nil, err
		}
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = r.cfg.FetchBackoff
	policy.MaxElapsedTime = 0
	retry := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(r.cfg.FetchAttempts-1)), ctx)

	notify := func(err error, wait time.Duration) {
		r.logger.Warn("template fetch failed, retrying",
			"template_id", templateID, "attempt", attempt, "wait", wait, "error", err)
	}

	tmpl, err := backoff.RetryNotifyWithData(op, retry, notify)
	switch {
	case err == nil:
	case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrInvalidData):
		return nil, err
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case errors.Is(err, context.DeadlineExceeded):
		return nil, fmt.Errorf("template %q after %d attempts: %w", templateID, attempt, ErrFetchTimeout)
	default:
		return nil, fmt.Errorf("template %q after %d attempts: %v: %w", templateID, attempt, err, ErrTemplateUnavailable)
	}

	if err := tmpl.Validate(); err != nil {
		return nil, err
	}
	return tmpl, nil
}
