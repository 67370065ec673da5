package game

import (
	"fmt"

	"vocabclash/internal/models"
)

// ItemKind tags the variant held by an ItemProgress
type ItemKind string

const (
	KindLetters ItemKind = "letters"
	KindChoice  ItemKind = "choice"
)

// ItemStatus is the display status of an item
type ItemStatus string

const (
	StatusPending   ItemStatus = "pending"
	StatusPartial   ItemStatus = "partial"
	StatusCompleted ItemStatus = "completed"
	StatusCorrect   ItemStatus = "correct"
	StatusIncorrect ItemStatus = "incorrect"
)

// ItemProgress is the per-word state of a session. Exactly one of Letters or
// Choice is set, matching Kind.
type ItemProgress struct {
	Kind    ItemKind         `json:"kind"`
	Letters *LetterPlacement `json:"letters,omitempty"`
	Choice  *MultipleChoice  `json:"choice,omitempty"`
}

func newItem(kind ItemKind, item models.VocabularyItem, pool *WordPool, rng Randomizer) (ItemProgress, error) {
	switch kind {
	case KindChoice:
		choice, err := newMultipleChoice(item.Word, item.ImageReference, pool, rng)
		if err != nil {
			return ItemProgress{}, err
		}
		choice.AudioReference = item.AudioFilename
		return ItemProgress{Kind: KindChoice, Choice: choice}, nil
	default:
		letters := newLetterPlacement(item.Word, rng)
		letters.AudioReference = item.AudioFilename
		return ItemProgress{Kind: KindLetters, Letters: letters}, nil
	}
}

// TargetWord returns the word the item asks for
func (p *ItemProgress) TargetWord() string {
	switch p.Kind {
	case KindLetters:
		return p.Letters.TargetWord
	case KindChoice:
		return p.Choice.TargetWord
	}
	return ""
}

// Terminal reports whether the item has been answered and may be advanced past
func (p *ItemProgress) Terminal() bool {
	switch p.Kind {
	case KindLetters:
		return p.Letters.IsWordComplete
	case KindChoice:
		return p.Choice.Outcome != OutcomePending
	}
	return false
}

// Status returns the display status of the item
func (p *ItemProgress) Status() ItemStatus {
	switch p.Kind {
	case KindLetters:
		switch {
		case p.Letters.IsWordComplete:
			return StatusCompleted
		case p.Letters.IsEmpty():
			return StatusPending
		default:
			return StatusPartial
		}
	case KindChoice:
		switch p.Choice.Outcome {
		case OutcomeCorrect:
			return StatusCorrect
		case OutcomeIncorrect:
			return StatusIncorrect
		}
	}
	return StatusPending
}

func (p *ItemProgress) validate() error {
	switch p.Kind {
	case KindLetters:
		if p.Letters == nil || p.Choice != nil {
			return fmt.Errorf("letters item has the wrong shape: %w", models.ErrInvalidData)
		}
		return p.Letters.validate()
	case KindChoice:
		if p.Choice == nil || p.Letters != nil {
			return fmt.Errorf("choice item has the wrong shape: %w", models.ErrInvalidData)
		}
		return p.Choice.validate()
	default:
		return fmt.Errorf("unknown item kind %q: %w", p.Kind, models.ErrInvalidData)
	}
}
