package model

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Backend names accepted by NewBackend.
const (
	BackendGemini   = "gemini"
	BackendDeepSeek = "deepseek"
)

// Default model settings.
const (
	DefaultGeminiModel     = "gemini-2.5-flash"
	DefaultDeepSeekModel   = "deepseek-reasoner"
	DefaultDeepSeekBaseURL = "https://api.deepseek.com"
	DefaultRequestTimeout  = 2 * time.Minute
)

var (
	ErrMissingAPIKey  = errors.New("model API key is required")
	ErrUnknownBackend = errors.New("unknown model backend")
	ErrEmptyResponse  = errors.New("empty response from model")
)

// Backend performs a single request against one remote model.
type Backend interface {
	// Name returns a human readable backend name.
	Name() string

	// Call sends input with an optional system instruction and returns the
	// trimmed reply text.
	Call(ctx context.Context, input, systemInstruction string, temperature float32) (string, error)
}

// Config selects and configures a backend.
type Config struct {
	Backend         string // "gemini" or "deepseek"
	APIKey          string
	GeminiModel     string
	DeepSeekModel   string
	DeepSeekBaseURL string
	RequestTimeout  time.Duration
}

// NewBackend creates the backend named by cfg.Backend.
func NewBackend(ctx context.Context, cfg Config) (Backend, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}

	switch cfg.Backend {
	case BackendGemini, "":
		model := cfg.GeminiModel
		if model == "" {
			model = DefaultGeminiModel
		}
		return NewGeminiBackend(ctx, cfg.APIKey, model, cfg.RequestTimeout)

	case BackendDeepSeek:
		model := cfg.DeepSeekModel
		if model == "" {
			model = DefaultDeepSeekModel
		}
		baseURL := cfg.DeepSeekBaseURL
		if baseURL == "" {
			baseURL = DefaultDeepSeekBaseURL
		}
		return NewDeepSeekBackend(cfg.APIKey, baseURL, model, cfg.RequestTimeout), nil

	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Backend)
	}
}

// StatusError is returned by backends when the remote API answered with a
// non-success HTTP status.
type StatusError struct {
	Backend string
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Backend, e.Code, e.Message)
}
