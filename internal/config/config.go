package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultMargin      = 2
	defaultWorkers     = 4
	defaultQueueSize   = 100
	defaultUploadBytes = 20 << 20
	defaultJobTTL      = time.Hour
)

// Config holds the settings shared by the gridlock service and CLI.
type Config struct {
	Port           string
	GridlockAPIKey string

	// OCR backend: claude, tesseract or none.
	OCRBackend      string
	AnthropicAPIKey string
	OCRModel        string
	OCRPromptFile   string
	OCRLanguage     string

	MergeMargin int
	MergeDebug  bool

	// WorkspaceDir roots the batch layout; RunnerConcurrency 0 means one
	// per CPU.
	WorkspaceDir      string
	RunnerConcurrency int

	WorkerCount    int
	MaxQueueSize   int
	MaxUploadBytes int64
	JobTTL         time.Duration

	PDFFallbackPdftotext bool
}

// LoadDotenv reads variables from the given .env files, or ./.env when none
// are named. Missing files are ignored and existing variables win.
func LoadDotenv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	if err := godotenv.Load(present...); err != nil {
		return fmt.Errorf("load %s: %w", strings.Join(present, ", "), err)
	}
	return nil
}

// Load reads the environment. Unparsable or out of range numbers fall back
// to their defaults.
func Load() Config {
	return Config{
		Port:           envOr("PORT", "8090"),
		GridlockAPIKey: os.Getenv("GRIDLOCK_API_KEY"),

		OCRBackend:      strings.ToLower(envOr("OCR_BACKEND", "claude")),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		OCRModel:        envOr("OCR_MODEL", "claude-sonnet-4-5-20250929"),
		OCRPromptFile:   os.Getenv("OCR_PROMPT_FILE"),
		OCRLanguage:     envOr("OCR_LANGUAGE", "eng"),

		MergeMargin: positive(env("MERGE_MARGIN", defaultMargin, strconv.Atoi), defaultMargin),
		MergeDebug:  env("MERGE_DEBUG", false, strconv.ParseBool),

		WorkspaceDir:      envOr("WORKSPACE_DIR", "."),
		RunnerConcurrency: max(env("RUNNER_CONCURRENCY", 0, strconv.Atoi), 0),

		WorkerCount:    positive(env("WORKER_COUNT", defaultWorkers, strconv.Atoi), defaultWorkers),
		MaxQueueSize:   positive(env("MAX_QUEUE_SIZE", defaultQueueSize, strconv.Atoi), defaultQueueSize),
		MaxUploadBytes: positive(env("MAX_UPLOAD_BYTES", int64(defaultUploadBytes), parseInt64), defaultUploadBytes),
		JobTTL:         positive(env("JOB_TTL", defaultJobTTL, time.ParseDuration), defaultJobTTL),

		PDFFallbackPdftotext: env("PDF_FALLBACK_PDFTOTEXT", true, strconv.ParseBool),
	}
}

// Validate checks the settings the HTTP service cannot run without.
func (c Config) Validate() error {
	if c.GridlockAPIKey == "" {
		return errors.New("GRIDLOCK_API_KEY is required")
	}
	switch c.OCRBackend {
	case "claude":
		if c.AnthropicAPIKey == "" {
			return errors.New("ANTHROPIC_API_KEY is required for the claude ocr backend")
		}
	case "tesseract", "none":
	default:
		return fmt.Errorf("OCR_BACKEND must be claude, tesseract or none, got %q", c.OCRBackend)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// env parses key with parse, returning fallback when it is unset or invalid.
func env[T any](key string, fallback T, parse func(string) (T, error)) T {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parsed, err := parse(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func parseInt64(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

func positive[T int | int64 | time.Duration](v, fallback T) T {
	if v <= 0 {
		return fallback
	}
	return v
}
