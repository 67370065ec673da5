package game

import (
	"errors"
	"fmt"

	"vocabclash/internal/models"
)

// ErrInvalidTransition is wrapped by every rejected state transition.
var ErrInvalidTransition = errors.New("invalid transition")

var (
	ErrSessionComplete = fmt.Errorf("%w: session is complete", ErrInvalidTransition)
	ErrItemOutOfRange  = fmt.Errorf("%w: item index out of range", ErrInvalidTransition)
	ErrNotCurrentItem  = fmt.Errorf("%w: item is not the current item", ErrInvalidTransition)
	ErrWrongItemKind   = fmt.Errorf("%w: operation does not apply to this item", ErrInvalidTransition)
	ErrItemTerminal    = fmt.Errorf("%w: item is already answered", ErrInvalidTransition)
	ErrItemNotTerminal = fmt.Errorf("%w: current item is not answered yet", ErrInvalidTransition)
	ErrUnknownOption   = fmt.Errorf("%w: option was not offered", ErrInvalidTransition)
	ErrInvalidLetter   = fmt.Errorf("%w: a letter must be a single character", ErrInvalidTransition)
	ErrLetterUnused    = fmt.Errorf("%w: letter is not available", ErrInvalidTransition)
	ErrNoEmptySlot     = fmt.Errorf("%w: all slots are filled", ErrInvalidTransition)
	ErrSlotOutOfRange  = fmt.Errorf("%w: slot index out of range", ErrInvalidTransition)
	ErrSlotEmpty       = fmt.Errorf("%w: slot is already empty", ErrInvalidTransition)
)

var (
	ErrInvalidMode             = errors.New("unknown game mode")
	ErrInsufficientDistractors = fmt.Errorf("%w: word pool has too few distractors", models.ErrInvalidData)
)
