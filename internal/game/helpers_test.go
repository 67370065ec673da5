package game

import (
	"testing"
	"time"

	"vocabclash/internal/models"
)

// seqRandom replays a fixed sequence of values, reduced modulo n
type seqRandom struct {
	values []int
	pos    int
}

func (r *seqRandom) Intn(n int) int {
	if len(r.values) == 0 {
		return 0
	}
	v := r.values[r.pos%len(r.values)]
	r.pos++
	return v % n
}

var testNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func testPool() *WordPool {
	return NewWordPool([]string{"cow", "pig", "hen", "fox"})
}

func catDogTemplate() *models.Template {
	return &models.Template{
		ID:    "g1",
		Name:  "Pets",
		Items: []models.VocabularyItem{{Word: "cat"}, {Word: "dog", ImageReference: "dog.png"}},
	}
}

func mustBuild(t *testing.T, mode Mode) *Session {
	t.Helper()
	s, err := Build(catDogTemplate(), mode, testPool(), &seqRandom{values: []int{1, 0, 2}}, testNow)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return s
}

func placeWord(t *testing.T, s *Session, index int, word string) {
	t.Helper()
	for _, letter := range splitLetters(word) {
		if err := s.PlaceLetter(index, letter); err != nil {
			t.Fatalf("PlaceLetter(%d, %q) error = %v", index, letter, err)
		}
	}
}

func wrongOption(c *MultipleChoice) string {
	for _, o := range c.OfferedOptions {
		if o != c.TargetWord {
			return o
		}
	}
	return ""
}
