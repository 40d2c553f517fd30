package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"imagefetcher/internal/core/domain"
)

// DefaultBatchDelay is the pause inserted between consecutive URLs.
const DefaultBatchDelay = 2 * time.Second

// Fetcher runs the pipeline for a single URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) *domain.FetchResult
}

// BatchRunner feeds a list of URLs through a Fetcher one at a time.
type BatchRunner struct {
	fetcher Fetcher
	delay   time.Duration
	logger  zerolog.Logger
	events  domain.EventSink
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewBatchRunner creates a BatchRunner. A negative delay is treated as zero.
func NewBatchRunner(fetcher Fetcher, delay time.Duration, logger zerolog.Logger) *BatchRunner {
	if delay < 0 {
		delay = 0
	}
	return &BatchRunner{
		fetcher: fetcher,
		delay:   delay,
		logger:  logger.With().Str("component", "batch").Logger(),
		sleep:   sleepContext,
	}
}

// SetEventSink registers a receiver for batch events.
func (b *BatchRunner) SetEventSink(sink domain.EventSink) {
	b.events = sink
}

// Run processes urls in order and returns the tally. Cancelling ctx stops the
// batch before the next URL; Total still reflects the requested count.
func (b *BatchRunner) Run(ctx context.Context, urls []string) domain.BatchSummary {
	summary := domain.BatchSummary{
		SessionID: uuid.New().String(),
		Total:     len(urls),
	}
	log := b.logger.With().Str("session_id", summary.SessionID).Logger()

	log.Info().Int("total", len(urls)).Msg("Starting batch")
	b.events.Emit(domain.Event{
		Kind:    domain.EventBatchStarted,
		Total:   len(urls),
		Message: fmt.Sprintf("Processing %d URLs", len(urls)),
	})

	for i, raw := range urls {
		if ctx.Err() != nil {
			log.Warn().Int("processed", i).Msg("Batch cancelled")
			break
		}

		url := strings.TrimSpace(raw)
		b.events.Emit(domain.Event{
			Kind:    domain.EventBatchItem,
			URL:     url,
			Index:   i + 1,
			Total:   len(urls),
			Message: fmt.Sprintf("Processing %d/%d", i+1, len(urls)),
		})

		result := b.fetcher.Fetch(ctx, url)
		summary.Add(result)

		if i < len(urls)-1 && b.delay > 0 {
			b.events.Emit(domain.Event{Kind: domain.EventPausing, Message: "Pausing before next request..."})
			if err := b.sleep(ctx, b.delay); err != nil {
				log.Warn().Int("processed", i+1).Msg("Batch cancelled")
				break
			}
		}
	}

	log.Info().
		Int("successful", summary.Successful).
		Int("failed", summary.Failed).
		Int("duplicates", summary.Duplicates).
		Msg("Batch finished")
	return summary
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
