package search

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"codeberg.org/snonux/paperpush/internal/logger"
	"codeberg.org/snonux/paperpush/internal/paper"
)

const (
	arxivAPIURL  = "http://export.arxiv.org/api/query"
	arxivTimeout = 60 * time.Second

	defaultMaxRetries = 5
	defaultBackoff    = time.Second
)

// Searcher finds the newest papers for a topic.
type Searcher interface {
	Search(ctx context.Context, topic string, maxResults int) ([]paper.Paper, error)
}

// SearchError is returned when the API kept failing with a server error
// or a transport error.
type SearchError struct {
	Topic      string
	StatusCode int
	Attempts   int
	// Err is the last transport error, nil for server errors.
	Err error
}

func (e *SearchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("arXiv search for %q failed after %d attempts: %v", e.Topic, e.Attempts, e.Err)
	}
	return fmt.Sprintf("arXiv search for %q failed with status %d after %d attempts", e.Topic, e.StatusCode, e.Attempts)
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

// ArxivSearcher implements Searcher for the arXiv export API.
type ArxivSearcher struct {
	baseURL    string
	httpClient *http.Client
	parser     *gofeed.Parser
	maxRetries int
	backoff    time.Duration
	sleep      func(ctx context.Context, d time.Duration) error
	logger     *zap.Logger
}

// NewArxivSearcher creates a searcher against the public arXiv API.
func NewArxivSearcher(log *zap.Logger) *ArxivSearcher {
	return &ArxivSearcher{
		baseURL:    arxivAPIURL,
		httpClient: &http.Client{Timeout: arxivTimeout},
		parser:     gofeed.NewParser(),
		maxRetries: defaultMaxRetries,
		backoff:    defaultBackoff,
		sleep:      sleepContext,
		logger:     logger.OrNop(log),
	}
}

// Name returns the name of the search provider.
func (s *ArxivSearcher) Name() string {
	return "arxiv"
}

// QueryURL builds the API URL for topic, newest submissions first.
func (s *ArxivSearcher) QueryURL(topic string, maxResults int) string {
	params := url.Values{}
	params.Set("search_query", "all:"+topic)
	params.Set("start", "0")
	params.Set("max_results", strconv.Itoa(maxResults))
	params.Set("sortBy", "submittedDate")
	params.Set("sortOrder", "descending")
	return s.baseURL + "?" + params.Encode()
}

// Search returns up to maxResults papers for topic. Server and transport
// errors are retried with exponential backoff; any other non-200 status
// yields no papers.
func (s *ArxivSearcher) Search(ctx context.Context, topic string, maxResults int) ([]paper.Paper, error) {
	queryURL := s.QueryURL(topic, maxResults)

	for attempt := 0; ; attempt++ {
		body, status, err := s.fetch(ctx, queryURL)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("arXiv search cancelled: %w", ctxErr)
		}

		if err == nil && !isRetryableStatus(status) {
			if status != http.StatusOK {
				s.logger.Warn("arXiv returned unexpected status",
					zap.String("topic", topic), zap.Int("status", status))
				return []paper.Paper{}, nil
			}
			return s.parse(topic, body)
		}

		if attempt >= s.maxRetries {
			return nil, &SearchError{Topic: topic, StatusCode: status, Attempts: attempt + 1, Err: err}
		}

		delay := s.backoff * time.Duration(1<<attempt)
		s.logger.Warn("arXiv request failed, retrying",
			zap.String("topic", topic),
			zap.Int("status", status),
			zap.Duration("delay", delay),
			zap.Error(err))
		if err := s.sleep(ctx, delay); err != nil {
			return nil, fmt.Errorf("arXiv search cancelled: %w", err)
		}
	}
}

// fetch performs one GET. A read failure of the body counts as a transport
// error.
func (s *ArxivSearcher) fetch(ctx context.Context, queryURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("request creation failed: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("arXiv request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read arXiv response: %w", err)
	}
	return body, resp.StatusCode, nil
}

func (s *ArxivSearcher) parse(topic string, body []byte) ([]paper.Paper, error) {
	feed, err := s.parser.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse arXiv feed: %w", err)
	}

	papers := make([]paper.Paper, 0, len(feed.Items))
	for _, item := range feed.Items {
		papers = append(papers, toPaper(item))
	}
	s.logger.Info("arXiv search finished", zap.String("topic", topic), zap.Int("papers", len(papers)))
	return papers, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func toPaper(item *gofeed.Item) paper.Paper {
	link := item.GUID
	if link == "" {
		link = item.Link
	}

	summary := strings.TrimSpace(item.Description)
	summary = strings.ReplaceAll(summary, "\r", "")
	summary = strings.ReplaceAll(summary, "\n", " ")

	var date paper.Date
	switch {
	case item.PublishedParsed != nil:
		date = paper.DateOf(item.PublishedParsed.UTC())
	case item.UpdatedParsed != nil:
		date = paper.DateOf(item.UpdatedParsed.UTC())
	}

	return paper.Paper{
		Title:   strings.TrimSpace(item.Title),
		URL:     strings.TrimSpace(link),
		PubDate: date,
		Summary: summary,
	}
}
