package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"vocabclash/internal/game"
	"vocabclash/internal/models"
	"vocabclash/internal/security"
	"vocabclash/internal/service"
)

const (
	testToken    = "good-token"
	testPlayerID = int64(7)
)

var errBackend = errors.New("backend unavailable")

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stubTemplates serves templates from memory. err, when set, fails every fetch.
type stubTemplates struct {
	mu        sync.Mutex
	templates map[string]models.Template
	err       error
}

func (s *stubTemplates) GetTemplate(_ context.Context, id string) (*models.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	t, ok := s.templates[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	t.Items = append([]models.VocabularyItem(nil), t.Items...)
	return &t, nil
}

func (s *stubTemplates) List(_ context.Context) ([]models.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Template, 0, len(s.templates))
	for _, t := range s.templates {
		out = append(out, models.Template{ID: t.ID, Name: t.Name})
	}
	return out, nil
}

func (s *stubTemplates) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// memStates is an in-memory session state repository
type memStates struct {
	mu   sync.Mutex
	data map[int64]map[string]string
}

func (m *memStates) GetState(_ context.Context, playerID int64, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[playerID][key]
	return v, ok, nil
}

func (m *memStates) SaveState(_ context.Context, playerID int64, key, payload string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = make(map[int64]map[string]string)
	}
	if m.data[playerID] == nil {
		m.data[playerID] = make(map[string]string)
	}
	m.data[playerID][key] = payload
	return nil
}

func (m *memStates) DeleteState(_ context.Context, playerID int64, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data[playerID], key)
	return nil
}

func (m *memStates) ListStateKeys(_ context.Context, playerID int64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.data[playerID]))
	for k := range m.data[playerID] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *memStates) DeleteStaleStates(context.Context, time.Time) (int64, error) {
	return 0, nil
}

type noPlayers struct{}

func (noPlayers) GetPlayerByID(context.Context, int64) (*models.Player, error) {
	return nil, nil
}

type stubTokens struct{}

func (stubTokens) ParseToken(token string) (int64, error) {
	if token != testToken {
		return 0, security.ErrInvalidToken
	}
	return testPlayerID, nil
}

type testServer struct {
	handler   http.Handler
	templates *stubTemplates
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := quietLogger()

	templates := &stubTemplates{templates: map[string]models.Template{
		"animals": {ID: "animals", Name: "Animals", Items: []models.VocabularyItem{
			{Word: "cat", ImageReference: "cat.png", AudioFilename: "word_cat.mp3"},
			{Word: "dog", ImageReference: "dog.png", AudioFilename: "word_dog.mp3"},
		}},
	}}
	pool := game.NewWordPool([]string{"cat", "dog", "cow", "pig", "hen", "fox"})
	reconciler := service.NewReconciler(templates, pool, nil, service.ReconcilerConfig{
		FetchTimeout:  time.Second,
		FetchAttempts: 1,
	}, logger)

	sink := service.NewAutosaver(16, logger)
	t.Cleanup(func() { sink.Close() })

	games := service.NewGameService(reconciler, sink, &memStates{}, noPlayers{}, templates, nil, 0, logger)
	m := NewMiddleware(stubTokens{}, nil, logger)

	audioDir := t.TempDir()
	for _, item := range templates.templates["animals"].Items {
		if err := os.WriteFile(filepath.Join(audioDir, item.AudioFilename), []byte("mp3:"+item.Word), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	return &testServer{
		handler:   Routes(m, NewAuthHandler(nil), NewGameHandler(games, templates, logger), audioDir),
		templates: templates,
	}
}

// do sends a request with the test token and returns the recorder
func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Authorization", "Bearer "+testToken)
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

// session sends a request expecting 200 and decodes the session view
func (s *testServer) session(t *testing.T, method, path string, body any) SessionView {
	t.Helper()
	rec := s.do(t, method, path, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("%s %s = %d: %s", method, path, rec.Code, rec.Body.String())
	}
	var view SessionView
	if err := json.NewDecoder(rec.Body).Decode(&view); err != nil {
		t.Fatalf("decode session view: %v", err)
	}
	return view
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return resp
}
