package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"codeberg.org/snonux/paperpush/internal/logger"
)

const feishuTimeout = 10 * time.Second

// Sink delivers a single notification.
type Sink interface {
	Send(ctx context.Context, title, content string) error
}

// FeishuSink posts interactive cards to a Feishu bot webhook.
type FeishuSink struct {
	webhookURL string
	bannerKey  string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewFeishuSink creates a sink for webhookURL. bannerKey is an uploaded image
// key shown above the text; empty omits the image.
func NewFeishuSink(webhookURL, bannerKey string, log *zap.Logger) *FeishuSink {
	return &FeishuSink{
		webhookURL: webhookURL,
		bannerKey:  bannerKey,
		httpClient: &http.Client{Timeout: feishuTimeout},
		logger:     logger.OrNop(log),
	}
}

type feishuText struct {
	Tag     string `json:"tag"`
	Content string `json:"content"`
}

type feishuHeader struct {
	Template string     `json:"template"`
	Title    feishuText `json:"title"`
}

type feishuElement struct {
	Tag     string      `json:"tag"`
	Content string      `json:"content,omitempty"`
	ImgKey  string      `json:"img_key,omitempty"`
	Alt     *feishuText `json:"alt,omitempty"`
	Mode    string      `json:"mode,omitempty"`
	Preview bool        `json:"preview,omitempty"`
}

type feishuCard struct {
	Config   map[string]bool `json:"config"`
	Header   feishuHeader    `json:"header"`
	Elements []feishuElement `json:"elements"`
}

type feishuPayload struct {
	MsgType string `json:"msg_type"`
	// Card is the JSON-encoded card document.
	Card string `json:"card"`
}

type feishuResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// Card builds the card document for one message.
func (f *FeishuSink) Card(title, content string) ([]byte, error) {
	card := feishuCard{
		Config: map[string]bool{"wide_screen_mode": true},
		Header: feishuHeader{
			Template: "green",
			Title:    feishuText{Tag: "plain_text", Content: title},
		},
	}
	if f.bannerKey != "" {
		card.Elements = append(card.Elements, feishuElement{
			Tag:     "img",
			ImgKey:  f.bannerKey,
			Alt:     &feishuText{Tag: "plain_text", Content: ""},
			Mode:    "fit_horizontal",
			Preview: true,
		})
	}
	card.Elements = append(card.Elements, feishuElement{Tag: "markdown", Content: content})
	return json.Marshal(card)
}

// Send posts the card to the webhook.
func (f *FeishuSink) Send(ctx context.Context, title, content string) error {
	card, err := f.Card(title, content)
	if err != nil {
		return fmt.Errorf("failed to encode card: %w", err)
	}
	body, err := json.Marshal(feishuPayload{MsgType: "interactive", Card: string(card)})
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, respBody)
	}

	var result feishuResponse
	if err := json.Unmarshal(respBody, &result); err == nil && result.Code != 0 {
		return fmt.Errorf("webhook rejected message: code %d: %s", result.Code, result.Msg)
	}

	f.logger.Debug("notification sent", zap.String("title", title))
	return nil
}

// NopSink logs notifications instead of sending them.
type NopSink struct {
	logger *zap.Logger
}

// NewNopSink is used when no webhook is configured.
func NewNopSink(log *zap.Logger) *NopSink {
	return &NopSink{logger: logger.OrNop(log)}
}

// Send logs the title.
func (n *NopSink) Send(ctx context.Context, title, content string) error {
	n.logger.Info("no webhook configured, skipping notification", zap.String("title", title))
	return nil
}
