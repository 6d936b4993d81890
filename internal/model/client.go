package model

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"codeberg.org/snonux/paperpush/internal/logger"
)

// Retry defaults.
const (
	DefaultAttempts  = 3
	DefaultBaseDelay = 60 * time.Second
)

// Error classes reported when a call attempt fails.
const (
	ErrorClassTransport   = "transport"
	ErrorClassHTTPStatus  = "http_status"
	ErrorClassTimeout     = "timeout"
	ErrorClassCircuitOpen = "circuit_open"
	ErrorClassUnknown     = "unknown"
)

const (
	relevanceTemperature = 0.2

	relevanceSystemPrompt = "You are an expert paper analyst who judges whether a paper belongs to a specific research area."

	relevancePrompt = `Evaluate whether the following paper abstract is related to search systems (Search), advertising technology (Advertising) or recommender systems (Recommendation).
Analyse the content in detail and decide whether it discusses search engines, computational advertising, click-through rate prediction, personalised recommendation, CTR estimation, ranking algorithms or closely related techniques.
If it is related, answer 'Yes' and briefly explain why; if it is not related, answer 'No'.

Paper abstract:
`
)

// RetryPolicy controls how often and how patiently a call is retried.
type RetryPolicy struct {
	Attempts  int
	BaseDelay time.Duration
}

// Client runs backend calls with retry, backoff and a circuit breaker.
type Client struct {
	backend Backend
	breaker *gobreaker.CircuitBreaker
	policy  RetryPolicy
	sleep   func(ctx context.Context, d time.Duration)
	logger  *zap.Logger
}

// NewClient wraps backend. Zero policy fields fall back to the defaults.
func NewClient(backend Backend, policy RetryPolicy, log *zap.Logger) *Client {
	if policy.Attempts <= 0 {
		policy.Attempts = DefaultAttempts
	}
	if policy.BaseDelay <= 0 {
		policy.BaseDelay = DefaultBaseDelay
	}
	log = logger.OrNop(log).With(zap.String("backend", backend.Name()))

	return &Client{
		backend: backend,
		breaker: newBreaker(backend.Name(), log),
		policy:  policy,
		sleep:   sleepContext,
		logger:  log,
	}
}

// Name returns the name of the wrapped backend.
func (c *Client) Name() string {
	return c.backend.Name()
}

// Call performs a single backend request through the circuit breaker.
func (c *Client) Call(ctx context.Context, input, systemInstruction string, temperature float32) (string, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.backend.Call(ctx, input, systemInstruction, temperature)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// RetryCall calls the backend up to policy.Attempts times. After failed
// attempt k it sleeps BaseDelay*k, except after the last attempt. The bool
// is false when every attempt failed; errors are logged, never returned.
func (c *Client) RetryCall(ctx context.Context, input, systemInstruction string, temperature float32) (string, bool) {
	for attempt := 1; attempt <= c.policy.Attempts; attempt++ {
		text, err := c.Call(ctx, input, systemInstruction, temperature)
		if err == nil {
			return text, true
		}

		c.logger.Warn("model call failed",
			zap.Int("attempt", attempt),
			zap.Int("attempts", c.policy.Attempts),
			zap.String("class", Classify(err)),
			zap.Error(err))

		if attempt < c.policy.Attempts {
			c.sleep(ctx, c.policy.BaseDelay*time.Duration(attempt))
		}
	}
	return "", false
}

// Translate translates each text independently and in order. A text whose
// translation failed yields "" at its position.
func (c *Client) Translate(ctx context.Context, texts []string, systemInstruction string, temperature float32) []string {
	translations := make([]string, 0, len(texts))
	for i, text := range texts {
		translated, ok := c.RetryCall(ctx, text, systemInstruction, temperature)
		if !ok {
			c.logger.Warn("translation failed, leaving item empty", zap.Int("index", i))
			translated = ""
		}
		translations = append(translations, translated)
	}
	return translations
}

// AssessRelevance asks the model whether summary belongs to the search,
// advertising and recommendation area. It returns false when the model could
// not be reached.
func (c *Client) AssessRelevance(ctx context.Context, summary string) bool {
	reply, ok := c.RetryCall(ctx, relevancePrompt+summary, relevanceSystemPrompt, relevanceTemperature)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(reply), "yes")
}

// Classify maps a call error to one of the ErrorClass constants.
func Classify(err error) string {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrorClassCircuitOpen
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorClassTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrorClassTimeout
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return ErrorClassHTTPStatus
	}

	var urlErr *url.Error
	var opErr *net.OpError
	if errors.As(err, &urlErr) || errors.As(err, &opErr) {
		return ErrorClassTransport
	}

	return ErrorClassUnknown
}

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
