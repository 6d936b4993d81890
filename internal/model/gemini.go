package model

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

// GeminiBackend calls the Google Gemini API.
type GeminiBackend struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiBackend creates a Gemini backend for the given model.
func NewGeminiBackend(ctx context.Context, apiKey, model string, timeout time.Duration) (*GeminiBackend, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiBackend{
		client:  client,
		model:   model,
		timeout: timeout,
	}, nil
}

// Name returns the backend name including the model.
func (g *GeminiBackend) Name() string {
	return "Gemini " + g.model
}

// Call sends a single GenerateContent request.
func (g *GeminiBackend) Call(ctx context.Context, input, systemInstruction string, temperature float32) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(temperature),
	}
	if systemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(systemInstruction, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(input), config)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", &StatusError{Backend: "Gemini", Code: apiErr.Code, Message: apiErr.Message}
		}
		return "", fmt.Errorf("Gemini request failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
