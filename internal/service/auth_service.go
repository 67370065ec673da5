package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"vocabclash/internal/credentials"
	"vocabclash/internal/models"
	"vocabclash/internal/security"
	"vocabclash/internal/validation"
)

// PlayerStore creates and finds players
type PlayerStore interface {
	CreatePlayer(ctx context.Context, username, pinHash, teacherEmail string) (*models.Player, error)
	GetPlayerByUsername(ctx context.Context, username string) (*models.Player, error)
	GetPlayerByID(ctx context.Context, id int64) (*models.Player, error)
	UpdatePIN(ctx context.Context, id int64, pinHash string) error
}

// maxUsernameAttempts bounds how many generated usernames are tried before giving up
const maxUsernameAttempts = 10

// AuthService handles player sign-in
type AuthService struct {
	players          PlayerStore
	tokens           *security.TokenIssuer
	generateUsername func() (string, error)
}

// NewAuthService creates a new auth service
func NewAuthService(players PlayerStore, tokens *security.TokenIssuer) *AuthService {
	return &AuthService{players: players, tokens: tokens, generateUsername: credentials.GenerateUsername}
}

// Login checks a username and PIN and issues a bearer token
func (s *AuthService) Login(ctx context.Context, username, pin string) (string, time.Time, error) {
	player, err := s.players.GetPlayerByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to look up player: %w", err)
	}
	if player == nil || !security.CheckPIN(pin, player.PINHash) {
		return "", time.Time{}, ErrInvalidCredentials
	}
	return s.tokens.Issue(player.ID)
}

// ParseToken returns the player id a token was issued for
func (s *AuthService) ParseToken(token string) (int64, error) {
	return s.tokens.Parse(token)
}

// CreatePlayer registers a player and returns the generated PIN, which is not
// stored in plain text and cannot be recovered later. An empty username is
// replaced by a generated one.
func (s *AuthService) CreatePlayer(ctx context.Context, username, teacherEmail string) (*models.Player, string, error) {
	if teacherEmail != "" {
		if err := validation.ValidateEmail(teacherEmail); err != nil {
			return nil, "", err
		}
	}

	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		generated, err := s.uniqueUsername(ctx)
		if err != nil {
			return nil, "", err
		}
		username = generated
	} else {
		if err := validation.ValidateUsername(username); err != nil {
			return nil, "", err
		}
		taken, err := s.usernameTaken(ctx, username)
		if err != nil {
			return nil, "", err
		}
		if taken {
			return nil, "", ErrUsernameTaken
		}
	}

	pin, err := credentials.GeneratePIN()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate PIN: %w", err)
	}
	hash, err := security.HashPIN(pin)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash PIN: %w", err)
	}

	player, err := s.players.CreatePlayer(ctx, username, hash, strings.TrimSpace(teacherEmail))
	if err != nil {
		return nil, "", err
	}
	return player, pin, nil
}

// uniqueUsername generates usernames until one is free, up to maxUsernameAttempts
func (s *AuthService) uniqueUsername(ctx context.Context) (string, error) {
	for i := 0; i < maxUsernameAttempts; i++ {
		username, err := s.generateUsername()
		if err != nil {
			return "", fmt.Errorf("failed to generate username: %w", err)
		}
		if err := validation.ValidateUsername(username); err != nil {
			return "", err
		}
		taken, err := s.usernameTaken(ctx, username)
		if err != nil {
			return "", err
		}
		if !taken {
			return username, nil
		}
	}
	return "", fmt.Errorf("no free username after %d attempts: %w", maxUsernameAttempts, ErrUsernameTaken)
}

func (s *AuthService) usernameTaken(ctx context.Context, username string) (bool, error) {
	existing, err := s.players.GetPlayerByUsername(ctx, username)
	if err != nil {
		return false, fmt.Errorf("failed to check existing player: %w", err)
	}
	return existing != nil, nil
}

// ResetPIN replaces a player's PIN with a newly generated one and returns it
func (s *AuthService) ResetPIN(ctx context.Context, username string) (string, error) {
	player, err := s.players.GetPlayerByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		return "", fmt.Errorf("failed to look up player: %w", err)
	}
	if player == nil {
		return "", fmt.Errorf("player %q: %w", username, models.ErrNotFound)
	}

	pin, err := credentials.GeneratePIN()
	if err != nil {
		return "", fmt.Errorf("failed to generate PIN: %w", err)
	}
	hash, err := security.HashPIN(pin)
	if err != nil {
		return "", fmt.Errorf("failed to hash PIN: %w", err)
	}
	if err := s.players.UpdatePIN(ctx, player.ID, hash); err != nil {
		return "", err
	}
	return pin, nil
}
