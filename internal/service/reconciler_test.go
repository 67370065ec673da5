package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"vocabclash/internal/game"
	"vocabclash/internal/models"
)

func TestLoadBuildsFreshSession(t *testing.T) {
	source := petsSource()
	store := newMemStore()
	r := newTestReconciler(source, ReconcilerConfig{})

	s, err := r.Load(context.Background(), store, game.ModeMixed, "g1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if s.CurrentIndex != 0 || s.IsComplete {
		t.Errorf("fresh session at index %d complete %v", s.CurrentIndex, s.IsComplete)
	}
	if len(s.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(s.Items))
	}
	for i := range s.Items {
		if s.Items[i].Status() != game.StatusPending {
			t.Errorf("item %d status = %v, want pending", i, s.Items[i].Status())
		}
	}
	if _, ok := store.value("mixed_gameState_g1"); !ok {
		t.Error("fresh session should be persisted before Load returns")
	}
}

func TestLoadResumesWithoutRefetching(t *testing.T) {
	source := petsSource()
	store := newMemStore()
	r := newTestReconciler(source, ReconcilerConfig{SessionTTL: time.Hour})
	ctx := context.Background()

	first, err := r.Load(ctx, store, game.ModeScramble, "g1")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	second, err := r.Load(ctx, store, game.ModeScramble, "g1")
	if err != nil {
		t.Fatalf("second Load() error = %v", err)
	}

	if source.callCount() != 1 {
		t.Errorf("template fetched %d times, want 1", source.callCount())
	}
	a, _ := first.Encode()
	b, _ := second.Encode()
	if a != b {
		t.Errorf("resumed session differs from stored one:\n%s\n%s", a, b)
	}
}

func TestLoadFailures(t *testing.T) {
	tests := []struct {
		name       string
		mode       game.Mode
		templateID string
		wantErr    error
	}{
		{name: "missing template", mode: game.ModeScramble, templateID: "nope", wantErr: models.ErrNotFound},
		{name: "template without vocabularies", mode: game.ModeScramble, templateID: "empty", wantErr: models.ErrNotFound},
		{name: "malformed template", mode: game.ModePicture, templateID: "broken", wantErr: models.ErrInvalidData},
		{name: "empty template id", mode: game.ModePicture, templateID: "", wantErr: models.ErrNotFound},
		{name: "unknown mode", mode: game.Mode("puzzle"), templateID: "g1", wantErr: game.ErrInvalidMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			r := newTestReconciler(petsSource(), ReconcilerConfig{FetchAttempts: 3})

			_, err := r.Load(context.Background(), store, tt.mode, tt.templateID)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Load() error = %v, want %v", err, tt.wantErr)
			}
			if store.writeCount() != 0 {
				t.Errorf("failed load wrote %d times", store.writeCount())
			}
		})
	}
}

func TestLoadDiscardsUnusableSnapshots(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name  string
		setup func(t *testing.T, store *memStore, r *Reconciler)
	}{
		{
			name: "corrupted json",
			setup: func(t *testing.T, store *memStore, r *Reconciler) {
				store.data["scramble_gameState_g1"] = "{not json"
			},
		},
		{
			name: "structurally invalid",
			setup: func(t *testing.T, store *memStore, r *Reconciler) {
				store.data["scramble_gameState_g1"] = `{"mode":"scramble","templateId":"g1","items":[]}`
			},
		},
		{
			name: "snapshot of another game",
			setup: func(t *testing.T, store *memStore, r *Reconciler) {
				s, err := r.Load(context.Background(), store, game.ModePicture, "g1")
				if err != nil {
					t.Fatal(err)
				}
				payload, _ := s.Encode()
				store.data["scramble_gameState_g1"] = payload
			},
		},
		{
			name: "stale snapshot",
			setup: func(t *testing.T, store *memStore, r *Reconciler) {
				r.now = func() time.Time { return now.Add(-48 * time.Hour) }
				if _, err := r.Load(context.Background(), store, game.ModeScramble, "g1"); err != nil {
					t.Fatal(err)
				}
				r.now = func() time.Time { return now }
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			r := newTestReconciler(petsSource(), ReconcilerConfig{SessionTTL: 24 * time.Hour})
			tt.setup(t, store, r)

			s, err := r.Load(context.Background(), store, game.ModeScramble, "g1")
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if s.Mode != game.ModeScramble || s.TemplateID != "g1" || s.CurrentIndex != 0 {
				t.Errorf("Load() = %s/%s at %d, want a fresh scramble session", s.Mode, s.TemplateID, s.CurrentIndex)
			}

			payload, ok := store.value("scramble_gameState_g1")
			if !ok {
				t.Fatal("rebuilt session was not persisted")
			}
			if _, err := game.Decode(payload); err != nil {
				t.Errorf("persisted payload does not decode: %v", err)
			}
		})
	}
}

func TestLoadToleratesStoreWriteFailures(t *testing.T) {
	store := newMemStore()
	store.setErr = errBackend
	r := newTestReconciler(petsSource(), ReconcilerConfig{})

	s, err := r.Load(context.Background(), store, game.ModePicture, "g1")
	if err != nil {
		t.Fatalf("Load() error = %v, want a fresh session despite write failures", err)
	}
	if len(s.Items) != 2 {
		t.Errorf("got %d items, want 2", len(s.Items))
	}
}

func TestLoadKeepsProgressAfterReadFailure(t *testing.T) {
	store := newMemStore()
	source := petsSource()
	r := newTestReconciler(source, ReconcilerConfig{})
	ctx := context.Background()

	s, err := r.Load(ctx, store, game.ModePicture, "g1")
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SelectOption(0, "cat"); err != nil {
		t.Fatal(err)
	}
	if err := s.Advance(); err != nil {
		t.Fatal(err)
	}
	payload, err := s.Encode()
	if err != nil {
		t.Fatal(err)
	}
	store.Set(ctx, s.Key(), payload)

	store.getErr = errBackend
	if _, err := r.Load(ctx, store, game.ModePicture, "g1"); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("Load() error = %v, want ErrStoreUnavailable", err)
	}

	store.getErr = nil
	resumed, err := r.Load(ctx, store, game.ModePicture, "g1")
	if err != nil {
		t.Fatal(err)
	}
	if resumed.CurrentIndex != 1 {
		t.Errorf("CurrentIndex = %d after a failed read, want stored progress 1", resumed.CurrentIndex)
	}
}

func TestFetchRetryPolicy(t *testing.T) {
	tests := []struct {
		name      string
		errs      []error
		block     bool
		attempts  int
		wantErr   error
		wantCalls int
	}{
		{name: "recovers after transient failures", errs: []error{errBackend, errBackend}, attempts: 3, wantCalls: 3},
		{name: "gives up after the last attempt", errs: []error{errBackend, errBackend, errBackend}, attempts: 2, wantErr: ErrTemplateUnavailable, wantCalls: 2},
		{name: "not found is not retried", errs: []error{models.ErrNotFound}, attempts: 3, wantErr: models.ErrNotFound, wantCalls: 1},
		{name: "invalid data is not retried", errs: []error{models.ErrInvalidData}, attempts: 3, wantErr: models.ErrInvalidData, wantCalls: 1},
		{name: "every attempt times out", block: true, attempts: 2, wantErr: ErrFetchTimeout, wantCalls: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := petsSource()
			source.errs = tt.errs
			source.block = tt.block
			r := newTestReconciler(source, ReconcilerConfig{
				FetchTimeout:  20 * time.Millisecond,
				FetchAttempts: tt.attempts,
				FetchBackoff:  time.Millisecond,
			})

			_, err := r.Load(context.Background(), newMemStore(), game.ModeScramble, "g1")
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Load() error = %v, want %v", err, tt.wantErr)
			}
			if got := source.callCount(); got != tt.wantCalls {
				t.Errorf("source called %d times, want %d", got, tt.wantCalls)
			}
		})
	}
}

func TestFetchHonoursCallerCancellation(t *testing.T) {
	source := petsSource()
	source.block = true
	r := newTestReconciler(source, ReconcilerConfig{FetchAttempts: 5, FetchBackoff: time.Millisecond})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := r.Load(ctx, newMemStore(), game.ModeScramble, "g1")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Load() error = %v, want the caller's deadline", err)
	}
	if source.callCount() != 1 {
		t.Errorf("source called %d times after cancellation, want 1", source.callCount())
	}
}
