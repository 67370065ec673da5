package game

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Mode selects how the items of a session are played
type Mode string

const (
	// ModeScramble plays every word as letter placement
	ModeScramble Mode = "scramble"
	// ModePicture plays every word as a multiple-choice picture question
	ModePicture Mode = "picture"
	// ModeMixed alternates letter placement (even items) and multiple choice (odd items)
	ModeMixed Mode = "mixed"
)

var sessionNamespace = uuid.MustParse("6f1c2a9e-4b7d-5e21-9c3a-2d8f0b6e4a17")

// ParseMode parses a mode name
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
	return m, nil
}

// Valid reports whether m is a known mode
func (m Mode) Valid() bool {
	switch m {
	case ModeScramble, ModePicture, ModeMixed:
		return true
	}
	return false
}

func (m Mode) kindFor(index int) ItemKind {
	switch m {
	case ModePicture:
		return KindChoice
	case ModeMixed:
		if index%2 == 1 {
			return KindChoice
		}
	}
	return KindLetters
}

const stateKeyInfix = "_gameState_"

// StateKey is the local store key of the session for a template played in a mode
func StateKey(mode Mode, templateID string) string {
	return string(mode) + stateKeyInfix + templateID
}

// ParseStateKey splits a key built by StateKey
func ParseStateKey(key string) (Mode, string, bool) {
	mode, templateID, ok := strings.Cut(key, stateKeyInfix)
	if !ok || templateID == "" || !Mode(mode).Valid() {
		return "", "", false
	}
	return Mode(mode), templateID, true
}

// SessionID derives a stable session identifier from the mode and template id
func SessionID(mode Mode, templateID string) string {
	return uuid.NewSHA1(sessionNamespace, []byte(StateKey(mode, templateID))).String()
}
