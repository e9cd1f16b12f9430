// Package ocr turns page images into text rows for merging against a
// template. Several backends sit behind the Recognizer interface.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgallion1/gridlock/internal/loader"
)

// ErrOCRNotEnabled is returned when a backend was not compiled in or is
// switched off by configuration.
var ErrOCRNotEnabled = errors.New("ocr not enabled")

// Backend names accepted by New.
const (
	BackendClaude    = "claude"
	BackendTesseract = "tesseract"
	BackendNone      = "none"
)

// Recognizer extracts the text of one page image.
type Recognizer interface {
	Recognize(ctx context.Context, image []byte, mediaType string) (string, error)
	Close()
}

// Config selects and configures a backend.
type Config struct {
	Backend    string
	APIKey     string
	Model      string
	PromptFile string
	Language   string
	// Stats, when set, receives one observation per recognition.
	Stats *Stats
}

// New returns the recognizer named by cfg.Backend.
func New(cfg Config) (Recognizer, error) {
	switch strings.ToLower(cfg.Backend) {
	case BackendClaude, "":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("claude backend: ANTHROPIC_API_KEY is required")
		}
		prompt, err := LoadPrompt(cfg.PromptFile)
		if err != nil {
			return nil, err
		}
		c := NewClaudeClient(cfg.APIKey, cfg.Model)
		c.Prompt = prompt
		c.Stats = cfg.Stats
		return c, nil
	case BackendTesseract:
		t, err := NewTesseractClient(cfg.Language)
		if err != nil {
			return nil, err
		}
		if cfg.Stats != nil {
			return observed{Recognizer: t, stats: cfg.Stats}, nil
		}
		return t, nil
	case BackendNone:
		return disabled{}, nil
	default:
		return nil, fmt.Errorf("unknown ocr backend %q", cfg.Backend)
	}
}

// observed records the latency of every call to the wrapped recognizer.
type observed struct {
	Recognizer
	stats *Stats
}

func (o observed) Recognize(ctx context.Context, image []byte, mediaType string) (string, error) {
	start := time.Now()
	text, err := o.Recognizer.Recognize(ctx, image, mediaType)
	o.stats.Observe(time.Since(start), err)
	return text, err
}

type disabled struct{}

func (disabled) Recognize(context.Context, []byte, string) (string, error) {
	return "", ErrOCRNotEnabled
}

func (disabled) Close() {}

// MediaType guesses an image media type from a file name.
func MediaType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/png"
	}
}

// RecognizeFile reads an image from disk and recognizes it.
func RecognizeFile(ctx context.Context, r Recognizer, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	text, err := r.Recognize(ctx, data, MediaType(path))
	if err != nil {
		return "", err
	}
	return CleanResponse(text), nil
}

// CleanResponse strips the Markdown fencing models like to wrap text in and
// drops a doubled trailing newline.
func CleanResponse(s string) string {
	if strings.HasPrefix(strings.TrimSpace(s), "```") {
		if lines, ok := loader.CodeBlock([]byte(s)); ok {
			s = strings.Join(lines, "")
		}
	}
	s = strings.ReplaceAll(s, "```text\n", "")
	s = strings.ReplaceAll(s, "```\n", "")
	s = strings.ReplaceAll(s, "```", "")
	if len(s) > 2 && strings.HasSuffix(s, "\n\n") {
		s = s[:len(s)-1]
	}
	return s
}
