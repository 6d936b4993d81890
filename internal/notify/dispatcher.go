package notify

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"codeberg.org/snonux/paperpush/internal/logger"
	"codeberg.org/snonux/paperpush/internal/paper"
)

// DefaultInterval is the minimum spacing between two sends.
const DefaultInterval = 12 * time.Second

// DispatcherConfig configures message rendering and pacing.
type DispatcherConfig struct {
	Label       string
	BackendName string
	// Interval <= 0 disables pacing.
	Interval time.Duration
}

// Dispatcher sends messages in order through a sink, one per interval.
// Sink failures are logged and never stop the remaining sends.
type Dispatcher struct {
	sink    Sink
	cfg     DispatcherConfig
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewDispatcher creates a dispatcher. The first send is immediate.
func NewDispatcher(sink Sink, cfg DispatcherConfig, log *zap.Logger) *Dispatcher {
	limit := rate.Inf
	if cfg.Interval > 0 {
		limit = rate.Every(cfg.Interval)
	}
	return &Dispatcher{
		sink:    sink,
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger.OrNop(log),
	}
}

// Send waits for the pacing slot and delivers one message. It reports whether
// the sink accepted it.
func (d *Dispatcher) Send(ctx context.Context, msg Message) bool {
	if err := d.limiter.Wait(ctx); err != nil {
		d.logger.Warn("notification skipped", zap.String("title", msg.Title), zap.Error(err))
		return false
	}
	if err := d.sink.Send(ctx, msg.Title, msg.Content); err != nil {
		d.logger.Warn("notification failed", zap.String("title", msg.Title), zap.Error(err))
		return false
	}
	return true
}

// Dispatch formats and sends every paper, returning the number the sink
// accepted. now fixes today and yesterday for the whole batch.
func (d *Dispatcher) Dispatch(ctx context.Context, papers []paper.Paper, now time.Time) int {
	today := paper.DateOf(now)
	yesterday := paper.Yesterday(now)

	sent := 0
	for i, p := range papers {
		if ctx.Err() != nil {
			d.logger.Warn("dispatch cancelled", zap.Int("remaining", len(papers)-i))
			break
		}
		msg := Format(p, i+1, len(papers), d.cfg.Label, d.cfg.BackendName, today, yesterday)
		if d.Send(ctx, msg) {
			sent++
		}
		d.logger.Info("pushed paper",
			zap.Int("index", i+1),
			zap.Int("total", len(papers)),
			zap.String("title", p.Title))
	}
	return sent
}
