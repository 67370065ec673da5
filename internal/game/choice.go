package game

import (
	"fmt"

	"vocabclash/internal/models"
)

// Outcome of a multiple-choice item
type Outcome string

const (
	OutcomePending   Outcome = "pending"
	OutcomeCorrect   Outcome = "correct"
	OutcomeIncorrect Outcome = "incorrect"
)

// OptionCount is the number of options offered per multiple-choice item
const OptionCount = 3

// MultipleChoice is the progress of a picture question offering one correct
// word and two distractors
type MultipleChoice struct {
	TargetWord     string   `json:"targetWord"`
	ImageReference string   `json:"imageReference,omitempty"`
	OfferedOptions []string `json:"offeredOptions"`
	ChosenOption   *string  `json:"chosenOption,omitempty"`
	Outcome        Outcome  `json:"outcome"`
	AudioReference string   `json:"audioReference,omitempty"`
}

func newMultipleChoice(word, image string, pool *WordPool, rng Randomizer) (*MultipleChoice, error) {
	distractors, err := pool.Distractors(word, OptionCount-1, rng)
	if err != nil {
		return nil, err
	}

	options := make([]string, 0, OptionCount)
	options = append(options, word)
	options = append(options, distractors...)
	shuffle(rng, options)

	return &MultipleChoice{
		TargetWord:     word,
		ImageReference: image,
		OfferedOptions: options,
		Outcome:        OutcomePending,
	}, nil
}

func (c *MultipleChoice) choose(option string) error {
	if c.Outcome != OutcomePending {
		return ErrItemTerminal
	}
	if !c.offers(option) {
		return ErrUnknownOption
	}

	chosen := option
	c.ChosenOption = &chosen
	if option == c.TargetWord {
		c.Outcome = OutcomeCorrect
	} else {
		c.Outcome = OutcomeIncorrect
	}
	return nil
}

func (c *MultipleChoice) offers(option string) bool {
	for _, o := range c.OfferedOptions {
		if o == option {
			return true
		}
	}
	return false
}

func (c *MultipleChoice) validate() error {
	if c.TargetWord == "" {
		return fmt.Errorf("choice item has no target word: %w", models.ErrInvalidData)
	}
	if len(c.OfferedOptions) != OptionCount {
		return fmt.Errorf("choice item %q offers %d options: %w", c.TargetWord, len(c.OfferedOptions), models.ErrInvalidData)
	}
	matches := 0
	for _, o := range c.OfferedOptions {
		if o == c.TargetWord {
			matches++
		}
	}
	if matches != 1 {
		return fmt.Errorf("choice item %q offers the answer %d times: %w", c.TargetWord, matches, models.ErrInvalidData)
	}

	switch c.Outcome {
	case OutcomePending:
		if c.ChosenOption != nil {
			return fmt.Errorf("choice item %q is pending with a chosen option: %w", c.TargetWord, models.ErrInvalidData)
		}
	case OutcomeCorrect, OutcomeIncorrect:
		if c.ChosenOption == nil || !c.offers(*c.ChosenOption) {
			return fmt.Errorf("choice item %q has no valid chosen option: %w", c.TargetWord, models.ErrInvalidData)
		}
		if (*c.ChosenOption == c.TargetWord) != (c.Outcome == OutcomeCorrect) {
			return fmt.Errorf("choice item %q outcome does not match the choice: %w", c.TargetWord, models.ErrInvalidData)
		}
	default:
		return fmt.Errorf("choice item %q has unknown outcome %q: %w", c.TargetWord, c.Outcome, models.ErrInvalidData)
	}
	return nil
}
