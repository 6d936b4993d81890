package models

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai"
	"google.golang.org/genai"

	"codeberg.org/snonux/paperpush/internal/model"
)

// Lister handles listing available models for a backend
type Lister struct {
	cfg model.Config
	out io.Writer
}

// NewLister creates a new model lister writing to out
func NewLister(cfg model.Config, out io.Writer) *Lister {
	return &Lister{cfg: cfg, out: out}
}

// ListAvailableModels prints the text generation models of the configured backend
func (l *Lister) ListAvailableModels(ctx context.Context) error {
	if l.cfg.APIKey == "" {
		return fmt.Errorf("API key not found. Set API_KEY environment variable or configure model.api_key in .paperpush.yaml")
	}

	var (
		names []string
		err   error
	)
	switch l.cfg.Backend {
	case model.BackendGemini, "":
		names, err = l.geminiModels(ctx)
	case model.BackendDeepSeek:
		names, err = l.openAICompatibleModels(ctx)
	default:
		return fmt.Errorf("%w: %s", model.ErrUnknownBackend, l.cfg.Backend)
	}
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}

	sort.Strings(names)
	fmt.Fprintf(l.out, "Available %s models:\n", backendTitle(l.cfg.Backend))
	if len(names) == 0 {
		fmt.Fprintln(l.out, "  No models found")
		return nil
	}
	for _, name := range names {
		fmt.Fprintf(l.out, "  %s\n", name)
	}
	return nil
}

func (l *Lister) openAICompatibleModels(ctx context.Context) ([]string, error) {
	config := openai.DefaultConfig(l.cfg.APIKey)
	config.BaseURL = l.cfg.DeepSeekBaseURL
	if config.BaseURL == "" {
		config.BaseURL = model.DefaultDeepSeekBaseURL
	}
	client := openai.NewClientWithConfig(config)

	list, err := client.ListModels(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		names = append(names, m.ID)
	}
	return names, nil
}

func (l *Lister) geminiModels(ctx context.Context) ([]string, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  l.cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	var names []string
	for m, err := range client.Models.All(ctx) {
		if err != nil {
			return nil, err
		}
		// Only models that can generate text are useful here
		if !supportsGenerate(m.SupportedActions) {
			continue
		}
		names = append(names, strings.TrimPrefix(m.Name, "models/"))
	}
	return names, nil
}

func supportsGenerate(actions []string) bool {
	for _, action := range actions {
		if action == "generateContent" {
			return true
		}
	}
	return false
}

func backendTitle(backend string) string {
	if backend == model.BackendDeepSeek {
		return "DeepSeek"
	}
	return "Gemini"
}
