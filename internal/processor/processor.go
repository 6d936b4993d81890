package processor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"codeberg.org/snonux/paperpush/internal/logger"
	"codeberg.org/snonux/paperpush/internal/notify"
	"codeberg.org/snonux/paperpush/internal/paper"
	"codeberg.org/snonux/paperpush/internal/relevance"
	"codeberg.org/snonux/paperpush/internal/search"
	"codeberg.org/snonux/paperpush/internal/translation"
)

// Run-level notices.
const (
	NoUpdateContent   = "[WARN] NO UPDATE TODAY!"
	NoRelevantContent = "[INFO] NO RELEVANT PAPERS TODAY!"
)

// Defaults for Config.
const (
	DefaultLimit = 10
	DefaultLabel = "搜广推"
)

// Outcome is the terminal state of a run.
type Outcome int

const (
	OutcomeFailed Outcome = iota
	OutcomeNoUpdate
	OutcomeNoRelevant
	OutcomeNotified
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoUpdate:
		return "no-update"
	case OutcomeNoRelevant:
		return "no-relevant"
	case OutcomeNotified:
		return "notified"
	default:
		return "failed"
	}
}

// Config holds the per-run settings.
type Config struct {
	Topics []string
	// Limit is the maximum number of results per topic.
	Limit int
	// Label names the topic group in notification titles.
	Label string
	// Now defaults to time.Now.
	Now func() time.Time
}

// Processor wires the job stages together.
type Processor struct {
	cfg        Config
	searcher   search.Searcher
	filter     *relevance.Filter
	pipeline   *translation.Pipeline
	dispatcher *notify.Dispatcher
	logger     *zap.Logger
}

// NewProcessor creates a processor. Zero Config fields take their defaults.
func NewProcessor(cfg Config, searcher search.Searcher, filter *relevance.Filter, pipeline *translation.Pipeline, dispatcher *notify.Dispatcher, log *zap.Logger) *Processor {
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
	if cfg.Label == "" {
		cfg.Label = DefaultLabel
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Processor{
		cfg:        cfg,
		searcher:   searcher,
		filter:     filter,
		pipeline:   pipeline,
		dispatcher: dispatcher,
		logger:     logger.OrNop(log),
	}
}

// Run executes one pass. Only a cache failure or cancellation returns an
// error; every other problem degrades the run and is logged.
func (p *Processor) Run(ctx context.Context) (Outcome, error) {
	now := p.cfg.Now()
	today := paper.DateOf(now)
	p.logger.Info("starting daily push", zap.Stringer("date", today), zap.Strings("topics", p.cfg.Topics))

	found, err := p.search(ctx)
	if err != nil {
		return OutcomeFailed, err
	}
	p.logger.Info("search finished", zap.Int("papers", len(found)))

	if len(found) == 0 {
		title := notify.StatusTitle(strings.Join(p.cfg.Topics, ","), today)
		p.dispatcher.Send(ctx, notify.Message{Title: title, Content: NoUpdateContent})
		p.logger.Info("no papers found, run finished")
		return OutcomeNoUpdate, nil
	}

	relevant, err := p.filter.Filter(ctx, found)
	// Papers rejected because their calls were cancelled are not irrelevant.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return OutcomeFailed, fmt.Errorf("run cancelled during relevance filter: %w", ctxErr)
	}
	if err != nil {
		if errors.Is(err, relevance.ErrNoAssessor) {
			p.logger.Warn("relevance filter unavailable, keeping all papers", zap.Error(err))
		} else {
			p.logger.Error("relevance filter failed, keeping all papers", zap.Error(err))
		}
		relevant = found
	}

	if len(relevant) == 0 {
		title := notify.StatusTitle(p.cfg.Label, today)
		p.dispatcher.Send(ctx, notify.Message{Title: title, Content: NoRelevantContent})
		p.logger.Info("no relevant papers, run finished")
		return OutcomeNoRelevant, nil
	}

	result, err := p.pipeline.Process(ctx, relevant)
	if err != nil {
		return OutcomeFailed, err
	}
	if result.Mismatch {
		p.logger.Warn("translations discarded after count mismatch", zap.Int("untranslated", result.Untranslated))
	}

	sent := p.dispatcher.Dispatch(ctx, result.Papers, now)
	p.logger.Info("daily push finished",
		zap.Int("papers", len(result.Papers)),
		zap.Int("sent", sent))

	if err := ctx.Err(); err != nil {
		return OutcomeFailed, fmt.Errorf("run cancelled: %w", err)
	}
	return OutcomeNotified, nil
}

// search queries each topic in order. A failing topic is skipped.
func (p *Processor) search(ctx context.Context) ([]paper.Paper, error) {
	var all []paper.Paper
	for _, topic := range p.cfg.Topics {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("run cancelled: %w", err)
		}

		papers, err := p.searcher.Search(ctx, topic, p.cfg.Limit)
		if err != nil {
			p.logger.Warn("search failed, skipping topic", zap.String("topic", topic), zap.Error(err))
			continue
		}
		p.logger.Debug("searched topic", zap.String("topic", topic), zap.Int("papers", len(papers)))
		all = append(all, papers...)
	}
	return all, nil
}
