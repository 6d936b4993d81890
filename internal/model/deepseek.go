package model

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// DeepSeekBackend calls DeepSeek through its OpenAI compatible API.
type DeepSeekBackend struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewDeepSeekBackend creates a DeepSeek backend.
func NewDeepSeekBackend(apiKey, baseURL, model string, timeout time.Duration) *DeepSeekBackend {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = strings.TrimRight(baseURL, "/")

	return &DeepSeekBackend{
		client:  openai.NewClientWithConfig(config),
		model:   model,
		timeout: timeout,
	}
}

// Name returns the backend name including the model.
func (d *DeepSeekBackend) Name() string {
	return "DeepSeek " + d.model
}

// Call sends a single chat completion request.
func (d *DeepSeekBackend) Call(ctx context.Context, input, systemInstruction string, temperature float32) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if systemInstruction != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemInstruction,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: input,
	})

	resp, err := d.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       d.model,
		Messages:    messages,
		Temperature: temperature,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", &StatusError{Backend: "DeepSeek", Code: apiErr.HTTPStatusCode, Message: apiErr.Message}
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) {
			return "", &StatusError{Backend: "DeepSeek", Code: reqErr.HTTPStatusCode, Message: reqErr.Error()}
		}
		return "", fmt.Errorf("DeepSeek request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
