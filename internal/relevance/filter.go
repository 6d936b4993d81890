// Package relevance keeps the papers a language model judges to be on topic.
package relevance

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"codeberg.org/snonux/paperpush/internal/logger"
	"codeberg.org/snonux/paperpush/internal/paper"
)

// ErrNoAssessor is returned when no classifier is available at all.
var ErrNoAssessor = errors.New("no relevance assessor configured")

// Assessor decides whether a single abstract is relevant.
type Assessor interface {
	AssessRelevance(ctx context.Context, summary string) bool
}

// Filter applies an Assessor to a list of papers.
type Filter struct {
	assessor Assessor
	logger   *zap.Logger
}

// NewFilter creates a filter. A nil assessor makes every Filter call fail
// with ErrNoAssessor.
func NewFilter(assessor Assessor, log *zap.Logger) *Filter {
	return &Filter{
		assessor: assessor,
		logger:   logger.OrNop(log),
	}
}

// Filter returns the relevant papers in input order. A paper whose
// classification fails is dropped.
func (f *Filter) Filter(ctx context.Context, papers []paper.Paper) ([]paper.Paper, error) {
	if f.assessor == nil {
		return nil, ErrNoAssessor
	}

	relevant := make([]paper.Paper, 0, len(papers))
	for i, p := range papers {
		if f.assessor.AssessRelevance(ctx, p.Summary) {
			relevant = append(relevant, p)
		}
		f.logger.Debug("assessed paper",
			zap.Int("index", i+1),
			zap.Int("total", len(papers)),
			zap.String("title", p.Title))
	}

	f.logger.Info("relevance filter finished",
		zap.Int("total", len(papers)),
		zap.Int("relevant", len(relevant)))
	return relevant, nil
}
