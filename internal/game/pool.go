package game

import (
	"bufio"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

//go:embed words.txt
var defaultWords string

var (
	defaultPoolOnce sync.Once
	defaultPool     *WordPool
)

// WordPool is the static list of candidate distractor words. It is loaded once
// and never mutated.
type WordPool struct {
	words []string
}

// NewWordPool builds a pool, trimming blanks and dropping case-insensitive duplicates
func NewWordPool(words []string) *WordPool {
	seen := make(map[string]bool, len(words))
	pool := &WordPool{words: make([]string, 0, len(words))}
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		key := strings.ToLower(w)
		if seen[key] {
			continue
		}
		seen[key] = true
		pool.words = append(pool.words, w)
	}
	return pool
}

// DefaultWordPool returns the embedded curriculum word pool
func DefaultWordPool() *WordPool {
	defaultPoolOnce.Do(func() {
		defaultPool = NewWordPool(strings.Split(defaultWords, "\n"))
	})
	return defaultPool
}

// LoadWordPool reads a pool from a file: a JSON array of strings when the file
// has a .json extension, otherwise one word per line
func LoadWordPool(path string) (*WordPool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read word pool: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		var words []string
		if err := json.Unmarshal(data, &words); err != nil {
			return nil, fmt.Errorf("failed to parse word pool %s: %w", path, err)
		}
		return NewWordPool(words), nil
	}

	var words []string
	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for scanner.Scan() {
		words = append(words, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan word pool %s: %w", path, err)
	}
	return NewWordPool(words), nil
}

// Len returns the number of distinct words in the pool
func (p *WordPool) Len() int {
	return len(p.words)
}

// Distractors draws n distinct words from the pool, none equal to correct
func (p *WordPool) Distractors(correct string, n int, rng Randomizer) ([]string, error) {
	candidates := make([]string, 0, len(p.words))
	for _, w := range p.words {
		if !strings.EqualFold(w, strings.TrimSpace(correct)) {
			candidates = append(candidates, w)
		}
	}
	if len(candidates) < n {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrInsufficientDistractors, n, len(candidates))
	}

	// partial Fisher-Yates: the first n positions end up uniformly drawn
	for i := 0; i < n; i++ {
		j := i + rng.Intn(len(candidates)-i)
		candidates[i], candidates[j] = candidates[j], candidates[i]
	}
	return candidates[:n], nil
}
