package repository

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"vocabclash/internal/config"
	"vocabclash/internal/database"
	"vocabclash/internal/models"
)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	db, err := database.InitializeWithConfig(&config.Config{
		DatabaseType: "sqlite",
		DatabasePath: filepath.Join(t.TempDir(), "repo.db"),
	})
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.RunMigrations(); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}
	return db
}

func createPlayer(t *testing.T, db *database.DB, username string) *models.Player {
	t.Helper()
	player, err := NewPlayerRepository(db).CreatePlayer(context.Background(), username, "hash", "")
	if err != nil {
		t.Fatalf("CreatePlayer() error = %v", err)
	}
	return player
}

func TestSessionStateRepository(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewSessionStateRepository(db)

	ada := createPlayer(t, db, "ada")
	bob := createPlayer(t, db, "bob")

	const key = "scramble_gameState_g1"

	if _, ok, err := repo.GetState(ctx, ada.ID, key); err != nil || ok {
		t.Fatalf("GetState() on empty table = ok %v, err %v", ok, err)
	}

	if err := repo.SaveState(ctx, ada.ID, key, `{"v":1}`); err != nil {
		t.Fatalf("SaveState() error = %v", err)
	}
	if err := repo.SaveState(ctx, ada.ID, key, `{"v":2}`); err != nil {
		t.Fatalf("SaveState() overwrite error = %v", err)
	}

	got, ok, err := repo.GetState(ctx, ada.ID, key)
	if err != nil || !ok || got != `{"v":2}` {
		t.Errorf("GetState() = %q, %v, %v; want last write", got, ok, err)
	}

	if _, ok, _ := repo.GetState(ctx, bob.ID, key); ok {
		t.Error("players must not share state keys")
	}

	keys, err := repo.ListStateKeys(ctx, ada.ID)
	if err != nil || len(keys) != 1 || keys[0] != key {
		t.Errorf("ListStateKeys() = %v, %v", keys, err)
	}

	if err := repo.DeleteState(ctx, ada.ID, key); err != nil {
		t.Fatalf("DeleteState() error = %v", err)
	}
	if err := repo.DeleteState(ctx, ada.ID, key); err != nil {
		t.Fatalf("DeleteState() of an absent key error = %v", err)
	}
	if _, ok, _ := repo.GetState(ctx, ada.ID, key); ok {
		t.Error("GetState() after DeleteState() should report absent")
	}
}

func TestDeleteStaleStates(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewSessionStateRepository(db)
	player := createPlayer(t, db, "ada")

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	writes := []struct {
		key string
		at  time.Time
	}{
		{"scramble_gameState_old", base.Add(-48 * time.Hour)},
		{"picture_gameState_old", base.Add(-25 * time.Hour)},
		{"mixed_gameState_new", base.Add(-time.Hour)},
	}
	for _, w := range writes {
		repo.now = func() time.Time { return w.at }
		if err := repo.SaveState(ctx, player.ID, w.key, "{}"); err != nil {
			t.Fatalf("SaveState() error = %v", err)
		}
	}

	n, err := repo.DeleteStaleStates(ctx, base.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteStaleStates() error = %v", err)
	}
	if n != 2 {
		t.Errorf("DeleteStaleStates() removed %d, want 2", n)
	}
	if _, ok, _ := repo.GetState(ctx, player.ID, "mixed_gameState_new"); !ok {
		t.Error("recent state should survive pruning")
	}
}

func TestTemplateRepository(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewTemplateRepository(db)

	if _, err := repo.GetTemplate(ctx, "missing"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("GetTemplate(missing) error = %v, want ErrNotFound", err)
	}

	tmpl := &models.Template{
		ID:   "g1",
		Name: "Pets",
		Items: []models.VocabularyItem{
			{Word: "cat"},
			{Word: "dog", ImageReference: "dog.png", AudioFilename: "dog.mp3"},
		},
	}
	if err := repo.SaveTemplate(ctx, tmpl); err != nil {
		t.Fatalf("SaveTemplate() error = %v", err)
	}

	// replacing shrinks the item list and renames
	tmpl.Name = "Farm"
	tmpl.Items = []models.VocabularyItem{{Word: "cow"}}
	if err := repo.SaveTemplate(ctx, tmpl); err != nil {
		t.Fatalf("SaveTemplate() replace error = %v", err)
	}

	got, err := repo.GetTemplate(ctx, "g1")
	if err != nil {
		t.Fatalf("GetTemplate() error = %v", err)
	}
	if got.Name != "Farm" || len(got.Items) != 1 || got.Items[0].Word != "cow" {
		t.Errorf("GetTemplate() = %+v", got)
	}

	list, err := repo.ListTemplates(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListTemplates() = %v, %v", list, err)
	}

	if err := repo.DeleteTemplate(ctx, "g1"); err != nil {
		t.Fatalf("DeleteTemplate() error = %v", err)
	}
	if err := repo.DeleteTemplate(ctx, "g1"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("DeleteTemplate() twice error = %v, want ErrNotFound", err)
	}
}

func TestPlayerRepository(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	repo := NewPlayerRepository(db)

	created, err := repo.CreatePlayer(ctx, "ada", "hash", "teacher@example.com")
	if err != nil {
		t.Fatalf("CreatePlayer() error = %v", err)
	}
	if _, err := repo.CreatePlayer(ctx, "ada", "hash", ""); err == nil {
		t.Error("CreatePlayer() with a duplicate username should fail")
	}

	byName, err := repo.GetPlayerByUsername(ctx, "ada")
	if err != nil || byName == nil || byName.ID != created.ID || byName.TeacherEmail != "teacher@example.com" {
		t.Fatalf("GetPlayerByUsername() = %+v, %v", byName, err)
	}

	missing, err := repo.GetPlayerByID(ctx, created.ID+100)
	if err != nil || missing != nil {
		t.Errorf("GetPlayerByID(missing) = %+v, %v; want nil, nil", missing, err)
	}

	if err := repo.UpdatePIN(ctx, created.ID, "newhash"); err != nil {
		t.Fatalf("UpdatePIN() error = %v", err)
	}
	byID, _ := repo.GetPlayerByID(ctx, created.ID)
	if byID.PINHash != "newhash" {
		t.Errorf("PINHash = %q, want newhash", byID.PINHash)
	}
}
