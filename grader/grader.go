// Package grader sends exam page images to a vision model and parses
// the returned annotation record: a clockwise rotation, a detected
// language, and per-question marks in the original page frame.
package grader

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/gradesheet/gradesheet/orient"
)

var log = logrus.New()

// Grader grades one exam page at a time.
type Grader interface {
	Name() string
	GradePage(ctx context.Context, req PageRequest) (orient.Result, error)
}

// PageRequest carries one encoded page image to the grading service.
type PageRequest struct {
	PageID string
	Image  []byte
}

// Config selects and tunes the backing vision provider.
type Config struct {
	Provider    string
	Model       string
	Prompt      string
	MaxTokens   int
	Temperature *float64

	// MaxEdge downscales the page image so its longer edge does not
	// exceed this many pixels before upload. Zero sends the original.
	MaxEdge int
}

// ConfigFromEnv builds a Config from GRADER_* environment variables.
func ConfigFromEnv() Config {
	cfg := Config{
		Provider: os.Getenv("GRADER_PROVIDER"),
		Model:    os.Getenv("GRADER_MODEL"),
		Prompt:   os.Getenv("GRADER_PROMPT"),
	}
	if v := os.Getenv("GRADER_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxTokens = n
		}
	}
	if v := os.Getenv("GRADER_MAX_EDGE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.MaxEdge = n
		}
	}
	if v := os.Getenv("GRADER_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Temperature = &f
		}
	}
	return cfg
}

// New returns a Grader for the configured provider.
func New(cfg Config) (Grader, error) {
	switch strings.ToLower(cfg.Provider) {
	case "gemini":
		return newGeminiGrader(cfg)
	case "openai", "ollama", "mistral", "anthropic":
		return newLLMGrader(cfg)
	default:
		return nil, fmt.Errorf("grader: unsupported provider: %q", cfg.Provider)
	}
}

// ServiceError reports that the grading service was unreachable,
// rejected the request, or answered with something unparseable. The
// caller keeps the original pages and may retry the batch.
type ServiceError struct {
	Provider string
	Err      error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("grader: service %s: %v", e.Provider, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }
