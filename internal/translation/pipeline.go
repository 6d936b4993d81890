package translation

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"codeberg.org/snonux/paperpush/internal/cache"
	"codeberg.org/snonux/paperpush/internal/logger"
	"codeberg.org/snonux/paperpush/internal/paper"
)

// SystemPrompt is the instruction sent with every abstract translation.
const SystemPrompt = "You are a professional translator specialised in high quality English to Chinese translation in the field of artificial intelligence. " +
	"You will receive the English abstract of a paper on natural language processing (NLP), information retrieval (IR), computer vision (CV) or a related area. " +
	"Translate the abstract accurately and make sure every technical term and detail is expressed correctly. " +
	"Always translate from English into Chinese and reply with the translation only."

// Temperature used for abstract translation.
const Temperature = 1.0

// Translator translates texts positionally. A failed item is "".
type Translator interface {
	Translate(ctx context.Context, texts []string, systemInstruction string, temperature float32) []string
}

// Result is the outcome of one pipeline pass.
type Result struct {
	// Papers is cached ++ novel.
	Papers []paper.Paper

	Cached       int
	Novel        int
	Translated   int
	Untranslated int

	// Mismatch is set when the translator returned a different number of
	// texts than requested; no novel paper is translated in that case.
	Mismatch bool
}

// Pipeline resolves papers from the cache and translates the rest.
type Pipeline struct {
	store      *cache.Store
	translator Translator
	logger     *zap.Logger
}

// NewPipeline creates a pipeline. translator may be nil, in which case novel
// papers are cached untranslated.
func NewPipeline(store *cache.Store, translator Translator, log *zap.Logger) *Pipeline {
	return &Pipeline{
		store:      store,
		translator: translator,
		logger:     logger.OrNop(log),
	}
}

// Process returns relevant papers resolved against the cache, cached ones
// first. Novel papers are translated and appended to the cache file. A
// context cancelled during translation returns an error and leaves the
// cache file untouched.
func (p *Pipeline) Process(ctx context.Context, relevant []paper.Paper) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("translation pass cancelled: %w", err)
	}

	existing, err := p.store.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load paper cache: %w", err)
	}

	cached, novel := cache.Partition(relevant, existing, cache.BuildIndex(existing))
	result := &Result{Cached: len(cached), Novel: len(novel)}

	if len(novel) > 0 {
		result.Mismatch = p.translate(ctx, novel)

		// Items failed by cancellation would be cached untranslated for good.
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("translation pass cancelled, cache left unchanged: %w", err)
		}

		if _, err := p.store.MergeAndPersist(existing, novel); err != nil {
			return nil, fmt.Errorf("failed to persist paper cache: %w", err)
		}
	}

	for _, n := range novel {
		if n.Translated != "" {
			result.Translated++
		} else {
			result.Untranslated++
		}
	}

	result.Papers = make([]paper.Paper, 0, len(cached)+len(novel))
	result.Papers = append(result.Papers, cached...)
	result.Papers = append(result.Papers, novel...)

	p.logger.Info("translation pass finished",
		zap.Int("total", len(relevant)),
		zap.Int("cache_hits", result.Cached),
		zap.Int("translated", result.Translated),
		zap.Int("untranslated", result.Untranslated))

	return result, nil
}

// translate fills in Translated on novel in place. It reports whether the
// translator returned a list of the wrong length.
func (p *Pipeline) translate(ctx context.Context, novel []paper.Paper) bool {
	if p.translator == nil {
		p.logger.Warn("no translator configured, caching papers untranslated", zap.Int("papers", len(novel)))
		return false
	}

	summaries := make([]string, len(novel))
	for i, n := range novel {
		summaries[i] = n.Summary
	}

	translations := p.translator.Translate(ctx, summaries, SystemPrompt, Temperature)
	if len(translations) != len(novel) {
		p.logger.Warn("translation count mismatch, leaving papers untranslated",
			zap.Int("requested", len(novel)),
			zap.Int("returned", len(translations)))
		return true
	}

	for i := range novel {
		novel[i].Translated = translations[i]
	}
	return false
}
