package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"vocabclash/internal/game"
	"vocabclash/internal/models"
	"vocabclash/internal/service"
	"vocabclash/internal/validation"
)

// TemplateLister lists the templates a player can choose from
type TemplateLister interface {
	List(ctx context.Context) ([]models.Template, error)
}

// GameHandler serves game sessions as JSON
type GameHandler struct {
	games     *service.GameService
	templates TemplateLister
	logger    *slog.Logger
	locks     sessionLocks
}

// NewGameHandler creates a new game handler
func NewGameHandler(games *service.GameService, templates TemplateLister, logger *slog.Logger) *GameHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GameHandler{
		games:     games,
		templates: templates,
		logger:    logger,
		locks:     sessionLocks{m: make(map[string]*sessionLock)},
	}
}

type optionRequest struct {
	Index  *int   `json:"index"`
	Option string `json:"option"`
}

type letterRequest struct {
	Index  *int   `json:"index"`
	Letter string `json:"letter"`
}

// ListTemplates returns the available templates
func (h *GameHandler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.templates.List(r.Context())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	views := make([]TemplateView, len(templates))
	for i, t := range templates {
		views[i] = TemplateView{ID: t.ID, Name: t.Name}
	}
	writeJSON(w, http.StatusOK, views)
}

// ListSaved returns the player's stored sessions
func (h *GameHandler) ListSaved(w http.ResponseWriter, r *http.Request) {
	playerID, ok := GetPlayerIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: ErrUnauthorized})
		return
	}

	saved, err := h.games.ListSaved(r.Context(), playerID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	views := make([]SavedGameView, len(saved))
	for i, g := range saved {
		views[i] = SavedGameView{Mode: g.Mode, TemplateID: g.TemplateID}
	}
	writeJSON(w, http.StatusOK, views)
}

// GetGame resumes or starts the session for the path's mode and template
func (h *GameHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	h.withPlay(w, r, func(context.Context, *service.Play) error { return nil })
}

// SelectOption answers the current multiple-choice item
func (h *GameHandler) SelectOption(w http.ResponseWriter, r *http.Request) {
	var req optionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.withPlay(w, r, func(ctx context.Context, p *service.Play) error {
		return p.SelectOption(ctx, indexOrCurrent(req.Index, p), req.Option)
	})
}

// PlaceLetter places a tile in the first empty slot of the current letter item
func (h *GameHandler) PlaceLetter(w http.ResponseWriter, r *http.Request) {
	var req letterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	h.withPlay(w, r, func(ctx context.Context, p *service.Play) error {
		return p.PlaceLetter(ctx, indexOrCurrent(req.Index, p), req.Letter)
	})
}

// RemoveLetter clears a slot of the current letter item. The item index may
// be given with the index query parameter.
func (h *GameHandler) RemoveLetter(w http.ResponseWriter, r *http.Request) {
	slot, err := strconv.Atoi(r.PathValue("slot"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "slot must be a number"})
		return
	}
	var index *int
	if raw := r.URL.Query().Get("index"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "index must be a number"})
			return
		}
		index = &n
	}
	h.withPlay(w, r, func(ctx context.Context, p *service.Play) error {
		return p.RemoveLetter(ctx, indexOrCurrent(index, p), slot)
	})
}

// Advance moves past the current item once it is answered
func (h *GameHandler) Advance(w http.ResponseWriter, r *http.Request) {
	h.withPlay(w, r, func(ctx context.Context, p *service.Play) error {
		return p.Advance(ctx)
	})
}

// Reset starts the session over from the template
func (h *GameHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.withPlay(w, r, func(ctx context.Context, p *service.Play) error {
		return p.Reset(ctx)
	})
}

// DeleteGame discards the stored session
func (h *GameHandler) DeleteGame(w http.ResponseWriter, r *http.Request) {
	playerID, mode, templateID, ok := h.target(w, r)
	if !ok {
		return
	}
	unlock := h.locks.lock(lockKey(playerID, mode, templateID))
	defer unlock()

	if err := h.games.Discard(r.Context(), playerID, mode, templateID); err != nil {
		respondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// withPlay opens the player's session, applies fn and renders the result.
// Requests for the same session are handled one at a time.
func (h *GameHandler) withPlay(w http.ResponseWriter, r *http.Request, fn func(context.Context, *service.Play) error) {
	playerID, mode, templateID, ok := h.target(w, r)
	if !ok {
		return
	}
	unlock := h.locks.lock(lockKey(playerID, mode, templateID))
	defer unlock()

	ctx := r.Context()
	play, err := h.games.Open(ctx, playerID, mode, templateID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	if err := fn(ctx, play); err != nil {
		respondWithServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, newSessionView(play.Session()))
}

func (h *GameHandler) target(w http.ResponseWriter, r *http.Request) (int64, game.Mode, string, bool) {
	playerID, ok := GetPlayerIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: ErrUnauthorized})
		return 0, "", "", false
	}
	mode, err := game.ParseMode(r.PathValue("mode"))
	if err != nil {
		respondWithServiceError(w, err)
		return 0, "", "", false
	}
	templateID := r.PathValue("templateId")
	if err := validation.ValidateTemplateID(templateID); err != nil {
		respondWithServiceError(w, err)
		return 0, "", "", false
	}
	return playerID, mode, templateID, true
}

func indexOrCurrent(index *int, p *service.Play) int {
	if index != nil {
		return *index
	}
	return p.Session().CurrentIndex
}

func lockKey(playerID int64, mode game.Mode, templateID string) string {
	return fmt.Sprintf("%d/%s", playerID, game.StateKey(mode, templateID))
}

// sessionLocks hands out one mutex per session key, dropping it when unused
type sessionLocks struct {
	mu sync.Mutex
	m  map[string]*sessionLock
}

type sessionLock struct {
	sync.Mutex
	refs int
}

func (l *sessionLocks) lock(key string) func() {
	l.mu.Lock()
	entry, ok := l.m[key]
	if !ok {
		entry = &sessionLock{}
		l.m[key] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.Lock()
	return func() {
		entry.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.m, key)
		}
		l.mu.Unlock()
	}
}
