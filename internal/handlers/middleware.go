package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"vocabclash/internal/security"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	PlayerContextKey    ContextKey = "player"
	RequestIDContextKey ContextKey = "request_id"
)

// TokenParser resolves a bearer token to a player id
type TokenParser interface {
	ParseToken(token string) (int64, error)
}

// Middleware holds dependencies for middleware functions
type Middleware struct {
	tokens  TokenParser
	limiter *security.RateLimiter
	logger  *slog.Logger
}

// NewMiddleware creates a new middleware instance. limiter may be nil.
func NewMiddleware(tokens TokenParser, limiter *security.RateLimiter, logger *slog.Logger) *Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &Middleware{tokens: tokens, limiter: limiter, logger: logger}
}

// RequirePlayer is middleware that requires a valid bearer token
func (m *Middleware) RequirePlayer(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: ErrUnauthorized})
			return
		}

		playerID, err := m.tokens.ParseToken(token)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: ErrUnauthorized})
			return
		}

		ctx := context.WithValue(r.Context(), PlayerContextKey, playerID)
		next(w, r.WithContext(ctx))
	}
}

// RateLimit rejects clients exceeding the limiter's budget
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if m.limiter != nil && !m.limiter.Allow(security.GetClientIP(r)) {
			writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: ErrTooManyRequests})
			return
		}
		next(w, r)
	}
}

// Logging middleware tags requests with an id and logs them
func (m *Middleware) Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := security.RequestID(r)
		w.Header().Set(security.RequestIDHeader, requestID)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		ctx := context.WithValue(r.Context(), RequestIDContextKey, requestID)
		next.ServeHTTP(rec, r.WithContext(ctx))

		m.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
			"request_id", requestID,
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// GetPlayerIDFromContext retrieves the authenticated player id from the request context
func GetPlayerIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(PlayerContextKey).(int64)
	return id, ok
}
