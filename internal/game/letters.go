package game

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"vocabclash/internal/models"
)

// LetterPlacement is the progress of a word rebuilt from scrambled letter tiles.
// An empty string in PlacedSlots is an empty slot.
type LetterPlacement struct {
	TargetWord       string   `json:"targetWord"`
	ScrambledLetters []string `json:"scrambledLetters"`
	PlacedSlots      []string `json:"placedSlots"`
	IsWordComplete   bool     `json:"isWordComplete"`
	AudioReference   string   `json:"audioReference,omitempty"`
}

func newLetterPlacement(word string, rng Randomizer) *LetterPlacement {
	letters := splitLetters(word)
	scrambled := make([]string, len(letters))
	copy(scrambled, letters)
	shuffle(rng, scrambled)

	return &LetterPlacement{
		TargetWord:       word,
		ScrambledLetters: scrambled,
		PlacedSlots:      make([]string, len(letters)),
	}
}

func splitLetters(word string) []string {
	letters := make([]string, 0, utf8.RuneCountInString(word))
	for _, r := range word {
		letters = append(letters, string(r))
	}
	return letters
}

// place puts letter into the first empty slot
func (l *LetterPlacement) place(letter string) error {
	if l.IsWordComplete {
		return ErrItemTerminal
	}
	if utf8.RuneCountInString(letter) != 1 {
		return ErrInvalidLetter
	}
	if l.Available(letter) == 0 {
		return ErrLetterUnused
	}

	slot := l.firstEmptySlot()
	if slot < 0 {
		return ErrNoEmptySlot
	}
	l.PlacedSlots[slot] = letter
	l.IsWordComplete = l.spellsTarget()
	return nil
}

// remove clears a filled slot; a completed word becomes incomplete again
func (l *LetterPlacement) remove(slot int) error {
	if slot < 0 || slot >= len(l.PlacedSlots) {
		return ErrSlotOutOfRange
	}
	if l.PlacedSlots[slot] == "" {
		return ErrSlotEmpty
	}
	l.PlacedSlots[slot] = ""
	l.IsWordComplete = false
	return nil
}

func (l *LetterPlacement) firstEmptySlot() int {
	for i, s := range l.PlacedSlots {
		if s == "" {
			return i
		}
	}
	return -1
}

func (l *LetterPlacement) spellsTarget() bool {
	for _, s := range l.PlacedSlots {
		if s == "" {
			return false
		}
	}
	return strings.Join(l.PlacedSlots, "") == l.TargetWord
}

// Available returns how many tiles of letter are not yet placed
func (l *LetterPlacement) Available(letter string) int {
	n := 0
	for _, s := range l.ScrambledLetters {
		if s == letter {
			n++
		}
	}
	for _, s := range l.PlacedSlots {
		if s == letter {
			n--
		}
	}
	return n
}

// RemainingTiles returns the scrambled tiles not yet placed, in scrambled order
func (l *LetterPlacement) RemainingTiles() []string {
	used := make(map[string]int)
	for _, s := range l.PlacedSlots {
		if s != "" {
			used[s]++
		}
	}
	remaining := make([]string, 0, len(l.ScrambledLetters))
	for _, s := range l.ScrambledLetters {
		if used[s] > 0 {
			used[s]--
			continue
		}
		remaining = append(remaining, s)
	}
	return remaining
}

// IsEmpty reports whether no letter has been placed
func (l *LetterPlacement) IsEmpty() bool {
	for _, s := range l.PlacedSlots {
		if s != "" {
			return false
		}
	}
	return true
}

func (l *LetterPlacement) validate() error {
	if l.TargetWord == "" {
		return fmt.Errorf("letter item has no target word: %w", models.ErrInvalidData)
	}
	target := splitLetters(l.TargetWord)
	if len(l.PlacedSlots) != len(target) {
		return fmt.Errorf("letter item %q has %d slots, want %d: %w", l.TargetWord, len(l.PlacedSlots), len(target), models.ErrInvalidData)
	}
	if len(l.ScrambledLetters) != len(target) {
		return fmt.Errorf("letter item %q has %d tiles, want %d: %w", l.TargetWord, len(l.ScrambledLetters), len(target), models.ErrInvalidData)
	}

	counts := make(map[string]int, len(target))
	for _, r := range target {
		counts[r]++
	}
	for _, s := range l.ScrambledLetters {
		counts[s]--
	}
	for _, c := range counts {
		if c != 0 {
			return fmt.Errorf("letter item %q tiles do not match the word: %w", l.TargetWord, models.ErrInvalidData)
		}
	}

	for _, s := range l.PlacedSlots {
		if s == "" {
			continue
		}
		if utf8.RuneCountInString(s) != 1 || l.Available(s) < 0 {
			return fmt.Errorf("letter item %q has an impossible slot %q: %w", l.TargetWord, s, models.ErrInvalidData)
		}
	}
	if l.IsWordComplete != l.spellsTarget() {
		return fmt.Errorf("letter item %q completion flag is inconsistent: %w", l.TargetWord, models.ErrInvalidData)
	}
	return nil
}
