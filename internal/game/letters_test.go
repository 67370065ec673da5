package game

import (
	"errors"
	"strings"
	"testing"
)

func TestLetterPlacementCompletesOnlyWhenSpelledCorrectly(t *testing.T) {
	words := []string{"cat", "letter", "banana", "ökö"}

	for _, word := range words {
		t.Run(word, func(t *testing.T) {
			l := newLetterPlacement(word, DefaultRandom())

			// fill in reverse order first: a wrong spelling must not complete
			letters := splitLetters(word)
			reversed := make([]string, len(letters))
			for i, r := range letters {
				reversed[len(letters)-1-i] = r
			}
			if strings.Join(reversed, "") != word {
				for _, r := range reversed {
					if err := l.place(r); err != nil {
						t.Fatalf("place(%q) error = %v", r, err)
					}
					if l.IsWordComplete {
						t.Fatalf("word complete after wrong placement %v", l.PlacedSlots)
					}
				}
				if err := l.place(letters[0]); !errors.Is(err, ErrLetterUnused) && !errors.Is(err, ErrNoEmptySlot) {
					t.Fatalf("place() into a full word error = %v", err)
				}
				for i := range l.PlacedSlots {
					if err := l.remove(i); err != nil {
						t.Fatalf("remove(%d) error = %v", i, err)
					}
				}
			}

			for i, r := range letters {
				if l.IsWordComplete {
					t.Fatalf("word complete before slot %d was filled", i)
				}
				if err := l.place(r); err != nil {
					t.Fatalf("place(%q) error = %v", r, err)
				}
			}
			if !l.IsWordComplete {
				t.Fatal("word should be complete")
			}
			if strings.Join(l.PlacedSlots, "") != word {
				t.Errorf("slots spell %q, want %q", strings.Join(l.PlacedSlots, ""), word)
			}
			if err := l.validate(); err != nil {
				t.Errorf("validate() error = %v", err)
			}
		})
	}
}

func TestRemoveLetterRevertsCompletion(t *testing.T) {
	s := mustBuild(t, ModeScramble)
	placeWord(t, s, 0, "cat")

	if err := s.RemoveLetter(0, 1); err != nil {
		t.Fatalf("RemoveLetter() error = %v", err)
	}
	item := s.Items[0].Letters
	if item.IsWordComplete {
		t.Fatal("IsWordComplete should revert after removing a letter")
	}
	if s.Items[0].Status() != StatusPartial {
		t.Errorf("Status() = %v, want partial", s.Items[0].Status())
	}
	if err := s.Advance(); !errors.Is(err, ErrItemNotTerminal) {
		t.Errorf("Advance() error = %v, want ErrItemNotTerminal", err)
	}

	// the badge only returns once every slot spells the word again
	if err := s.PlaceLetter(0, "a"); err != nil {
		t.Fatalf("PlaceLetter() error = %v", err)
	}
	if !item.IsWordComplete {
		t.Error("IsWordComplete should be restored after refilling the slot")
	}
}

func TestPlaceLetterRejections(t *testing.T) {
	tests := []struct {
		name    string
		placed  []string
		letter  string
		wantErr error
	}{
		{name: "letter not in word", letter: "z", wantErr: ErrLetterUnused},
		{name: "tile already used", placed: []string{"c"}, letter: "c", wantErr: ErrLetterUnused},
		{name: "multiple characters", letter: "ca", wantErr: ErrInvalidLetter},
		{name: "word complete", placed: []string{"c", "a", "t"}, letter: "c", wantErr: ErrItemTerminal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newLetterPlacement("cat", DefaultRandom())
			for _, p := range tt.placed {
				if err := l.place(p); err != nil {
					t.Fatalf("place(%q) error = %v", p, err)
				}
			}
			if err := l.place(tt.letter); !errors.Is(err, tt.wantErr) {
				t.Errorf("place(%q) error = %v, want %v", tt.letter, err, tt.wantErr)
			}
		})
	}
}

func TestRemoveLetterRejections(t *testing.T) {
	l := newLetterPlacement("cat", DefaultRandom())
	if err := l.remove(0); !errors.Is(err, ErrSlotEmpty) {
		t.Errorf("remove(empty) error = %v, want ErrSlotEmpty", err)
	}
	if err := l.remove(3); !errors.Is(err, ErrSlotOutOfRange) {
		t.Errorf("remove(3) error = %v, want ErrSlotOutOfRange", err)
	}
}

func TestScrambleKeepsLetters(t *testing.T) {
	l := newLetterPlacement("mississippi", &seqRandom{values: []int{3, 1, 4, 1, 5, 9, 2, 6}})
	if len(l.ScrambledLetters) != 11 || len(l.PlacedSlots) != 11 {
		t.Fatalf("got %d tiles and %d slots, want 11", len(l.ScrambledLetters), len(l.PlacedSlots))
	}
	if err := l.validate(); err != nil {
		t.Errorf("scrambled tiles do not match the word: %v", err)
	}
	if got := l.Available("s"); got != 4 {
		t.Errorf("Available(s) = %d, want 4", got)
	}
}

func TestRemainingTiles(t *testing.T) {
	l := &LetterPlacement{
		TargetWord:       "book",
		ScrambledLetters: []string{"o", "k", "b", "o"},
		PlacedSlots:      []string{"b", "o", "", ""},
	}
	got := strings.Join(l.RemainingTiles(), "")
	if got != "ko" {
		t.Errorf("RemainingTiles() = %q, want %q", got, "ko")
	}
}
