// Package audio fetches spoken pronunciations for vocabulary words.
package audio

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

const requestTimeout = 10 * time.Second

// Pronouncer downloads text-to-speech audio into a directory, one MP3 per word
type Pronouncer struct {
	audioDir string
	baseURL  string
	client   *http.Client
	logger   *slog.Logger
}

// NewPronouncer creates a pronouncer writing to audioDir and querying the
// translate_tts style endpoint at baseURL
func NewPronouncer(audioDir, baseURL string, logger *slog.Logger) *Pronouncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pronouncer{
		audioDir: audioDir,
		baseURL:  baseURL,
		client:   &http.Client{Timeout: requestTimeout},
		logger:   logger,
	}
}

// Filename returns the audio filename used for word. The readable stem is
// followed by a short hash of the word so words that differ only in
// punctuation or case get separate files.
func Filename(word string) string {
	word = strings.TrimSpace(word)
	sum := sha256.Sum256([]byte(word))

	var b strings.Builder
	for _, r := range strings.ToLower(word) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '\'':
			b.WriteRune('_')
		}
	}
	return "word_" + b.String() + "_" + hex.EncodeToString(sum[:4]) + ".mp3"
}

// Generate returns the filename of the pronunciation of word, downloading it
// when it does not exist yet
func (p *Pronouncer) Generate(ctx context.Context, word string) (string, error) {
	filename := Filename(word)
	path := filepath.Join(p.audioDir, filename)

	if _, err := os.Stat(path); err == nil {
		return filename, nil
	}

	if err := os.MkdirAll(p.audioDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create audio directory: %w", err)
	}
	if err := p.download(ctx, word, path); err != nil {
		return "", fmt.Errorf("failed to generate audio for %q: %w", word, err)
	}

	p.logger.Info("pronunciation generated", "word", word, "file", filename)
	return filename, nil
}

func (p *Pronouncer) download(ctx context.Context, text, outputPath string) error {
	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("q", text)
	params.Set("tl", "en")
	params.Set("client", "tw-ob")
	params.Set("textlen", fmt.Sprintf("%d", len(text)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; vocabclash)")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch audio: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	// write to a temp file first so a failed download never leaves a partial mp3
	tmp, err := os.CreateTemp(filepath.Dir(outputPath), ".tts-*")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}
	return os.Rename(tmp.Name(), outputPath)
}
