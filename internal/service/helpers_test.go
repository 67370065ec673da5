package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"vocabclash/internal/game"
	"vocabclash/internal/models"
)

var errBackend = errors.New("backend unavailable")

// memStore is an in-memory SessionStore that records its writes
type memStore struct {
	mu      sync.Mutex
	data    map[string]string
	writes  []string // "set key=value" / "remove key" in applied order
	getErr  error
	setErr  error
	release chan struct{} // when set, writes block until it is closed
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]string)}
}

func (m *memStore) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", false, m.getErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) Set(_ context.Context, key, value string) error {
	if m.release != nil {
		<-m.release
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	m.writes = append(m.writes, "set "+key+"="+value)
	return nil
}

func (m *memStore) Remove(_ context.Context, key string) error {
	if m.release != nil {
		<-m.release
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	m.writes = append(m.writes, "remove "+key)
	return nil
}

func (m *memStore) value(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *memStore) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.writes)
}

// fakeSource serves templates from a map. errs are returned, in order, by the
// first calls before the template is served.
type fakeSource struct {
	mu        sync.Mutex
	templates map[string]*models.Template
	errs      []error
	block     bool // wait for the context to end on every call
	calls     int
}

func (f *fakeSource) GetTemplate(ctx context.Context, id string) (*models.Template, error) {
	f.mu.Lock()
	f.calls++
	var err error
	if len(f.errs) > 0 {
		err, f.errs = f.errs[0], f.errs[1:]
	}
	tmpl, ok := f.templates[id]
	block := f.block
	f.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *tmpl
	cp.Items = append([]models.VocabularyItem(nil), tmpl.Items...)
	return &cp, nil
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func petsSource() *fakeSource {
	return &fakeSource{templates: map[string]*models.Template{
		"g1": {
			ID:    "g1",
			Name:  "Pets",
			Items: []models.VocabularyItem{{Word: "cat"}, {Word: "dog", ImageReference: "dog.png"}},
		},
		"empty": {ID: "empty", Name: "Empty"},
		"broken": {
			ID:    "broken",
			Items: []models.VocabularyItem{{Word: "cat"}, {Word: " "}},
		},
	}}
}

func testWordPool() *game.WordPool {
	return game.NewWordPool([]string{"cow", "pig", "hen", "fox"})
}

func newTestReconciler(source TemplateSource, cfg ReconcilerConfig) *Reconciler {
	if cfg.FetchAttempts == 0 {
		cfg.FetchAttempts = 1
	}
	return NewReconciler(source, testWordPool(), game.DefaultRandom(), cfg, nil)
}

// recordingNotifier collects completion summaries
type recordingNotifier struct {
	summaries []game.Summary
}

func (r *recordingNotifier) SessionCompleted(_ context.Context, summary game.Summary) error {
	r.summaries = append(r.summaries, summary)
	return nil
}

func flush(t *testing.T, a *Autosaver) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Flush(ctx); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
}

// playWord places every letter of word into the letter item at index
func playWord(t *testing.T, p *Play, index int, word string) {
	t.Helper()
	for _, r := range word {
		if err := p.PlaceLetter(context.Background(), index, string(r)); err != nil {
			t.Fatalf("PlaceLetter(%d, %q) error = %v", index, string(r), err)
		}
	}
}
