package testutil

import (
	"context"
	"fmt"
	"sync"

	"codeberg.org/snonux/paperpush/internal/paper"
)

// MockTranslator mocks the bulk translation call
type MockTranslator struct {
	// Result, when non-nil, is returned as is for every call
	Result []string
	// Translations maps an input text to its translation; missing texts
	// translate to "mock translation of <text>"
	Translations map[string]string
	Calls        [][]string
}

// Translate mocks translating texts positionally
func (m *MockTranslator) Translate(ctx context.Context, texts []string, systemInstruction string, temperature float32) []string {
	m.Calls = append(m.Calls, append([]string(nil), texts...))

	if m.Result != nil {
		return m.Result
	}

	out := make([]string, 0, len(texts))
	for _, text := range texts {
		if translation, ok := m.Translations[text]; ok {
			out = append(out, translation)
			continue
		}
		out = append(out, fmt.Sprintf("mock translation of %s", text))
	}
	return out
}

// TotalTexts returns how many texts were sent for translation
func (m *MockTranslator) TotalTexts() int {
	total := 0
	for _, call := range m.Calls {
		total += len(call)
	}
	return total
}

// MockAssessor mocks relevance classification
type MockAssessor struct {
	// Relevant lists summaries judged relevant; nil means everything is
	Relevant map[string]bool
	Calls    []string
}

// AssessRelevance mocks classifying a summary
func (m *MockAssessor) AssessRelevance(ctx context.Context, summary string) bool {
	m.Calls = append(m.Calls, summary)
	if m.Relevant == nil {
		return true
	}
	return m.Relevant[summary]
}

// MockSearcher mocks the paper search backend
type MockSearcher struct {
	Results map[string][]paper.Paper
	Errors  map[string]error
	Calls   []string
}

// Search mocks searching a topic
func (m *MockSearcher) Search(ctx context.Context, topic string, maxResults int) ([]paper.Paper, error) {
	m.Calls = append(m.Calls, fmt.Sprintf("%s (max=%d)", topic, maxResults))

	if err, ok := m.Errors[topic]; ok {
		return nil, err
	}
	return m.Results[topic], nil
}

// SentMessage is one notification captured by MockSink
type SentMessage struct {
	Title   string
	Content string
}

// MockSink records notifications
type MockSink struct {
	mu       sync.Mutex
	Messages []SentMessage
	Err      error
}

// Send mocks pushing a notification
func (m *MockSink) Send(ctx context.Context, title, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, SentMessage{Title: title, Content: content})
	return m.Err
}

// Sent returns a copy of the recorded messages
func (m *MockSink) Sent() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentMessage(nil), m.Messages...)
}

// TestDataGenerator generates test data
type TestDataGenerator struct{}

// GeneratePaper generates a test paper with the given title and summary
func (g *TestDataGenerator) GeneratePaper(title, summary string) paper.Paper {
	return paper.Paper{
		Title:   title,
		URL:     "http://arxiv.org/abs/2405.00001v1",
		PubDate: paper.Date{Year: 2024, Month: 5, Day: 1},
		Summary: summary,
	}
}
