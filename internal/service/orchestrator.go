package service

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"imagefetcher/internal/core/domain"
	"imagefetcher/internal/core/ports"
)

const fallbackContentType = "image/jpeg"

// Options tunes the fetch pipeline.
type Options struct {
	MaxSizeMB      int
	FilenamePrefix string
}

// Orchestrator coordinates the retrieval of a single URL.
type Orchestrator struct {
	downloader ports.Downloader
	storage    ports.Storage
	hashes     ports.HashStore
	resolver   *FilenameResolver
	maxSizeMB  int
	logger     zerolog.Logger
	events     domain.EventSink
	now        func() time.Time
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(
	downloader ports.Downloader,
	storage ports.Storage,
	hashes ports.HashStore,
	opts Options,
	logger zerolog.Logger,
) *Orchestrator {
	if opts.MaxSizeMB <= 0 {
		opts.MaxSizeMB = DefaultMaxSizeMB
	}
	return &Orchestrator{
		downloader: downloader,
		storage:    storage,
		hashes:     hashes,
		resolver:   NewFilenameResolver(storage, opts.FilenamePrefix),
		maxSizeMB:  opts.MaxSizeMB,
		logger:     logger.With().Str("component", "orchestrator").Logger(),
		now:        time.Now,
	}
}

// SetEventSink registers a receiver for pipeline events.
func (o *Orchestrator) SetEventSink(sink domain.EventSink) {
	o.events = sink
}

// Fetch runs the full pipeline for one URL. Every failure is folded into the
// returned result; Fetch itself never errors.
func (o *Orchestrator) Fetch(ctx context.Context, url string) *domain.FetchResult {
	result := &domain.FetchResult{
		ID:        uuid.New().String(),
		URL:       url,
		StartedAt: o.now().UTC(),
	}
	log := o.logger.With().Str("fetch_id", result.ID).Str("url", url).Logger()

	log.Info().Msg("Starting fetch")
	o.emit(result, domain.EventConnecting, "Connecting to: "+url)

	// Step 1: metadata probe
	meta, err := o.downloader.Probe(ctx, url)
	if err != nil {
		return o.fail(result, log, err)
	}

	// Step 2: header validation
	ok, msg := ValidateHeaders(*meta, o.maxSizeMB)
	if !ok {
		return o.fail(result, log, &domain.ValidationError{Message: msg})
	}
	log.Debug().Str("content_type", meta.ContentType).Str("content_length", meta.ContentLength).Msg(msg)
	o.emit(result, domain.EventValidated, msg)

	// Step 3: full retrieval
	o.emit(result, domain.EventDownloading, "Downloading image...")
	payload, err := o.downloader.Download(ctx, url, int64(o.maxSizeMB)*bytesPerMB)
	if err != nil {
		return o.fail(result, log, err)
	}

	// Step 4: dedup
	hash := ContentHash(payload.Content)
	result.Hash = hash
	result.Size = int64(len(payload.Content))
	result.ContentType = payload.ContentType
	log = log.With().Str("hash", hash).Logger()

	if o.hashes.Contains(hash) {
		result.Outcome = domain.OutcomeDuplicate
		result.CompletedAt = o.now().UTC()
		log.Info().Msg("Duplicate content, skipping write")
		o.emitResult(result, domain.EventDuplicate, "Image already exists (duplicate detected)")
		return result
	}

	// Step 5: name and persist
	contentType := payload.ContentType
	if contentType == "" {
		contentType = fallbackContentType
	}
	name, err := o.resolver.Available(ctx, o.resolver.Resolve(url, contentType))
	if err != nil {
		return o.fail(result, log, fmt.Errorf("failed to pick filename: %w", err))
	}
	path, err := o.storage.Save(ctx, name, payload.Content)
	if err != nil {
		return o.fail(result, log, err)
	}
	result.Path = path

	// Step 6: record hash; the file is already on disk so this cannot fail the fetch
	if err := o.hashes.Record(ctx, hash); err != nil {
		warning := fmt.Sprintf("Could not save hash: %v", err)
		result.Warnings = append(result.Warnings, warning)
		log.Warn().Err(err).Str("error_kind", string(domain.ErrKindHashStore)).Msg("Hash not persisted")
		o.emit(result, domain.EventWarning, warning)
	}

	result.Outcome = domain.OutcomeSaved
	result.CompletedAt = o.now().UTC()
	log.Info().
		Str("path", path).
		Int64("size", result.Size).
		Dur("elapsed", result.CompletedAt.Sub(result.StartedAt)).
		Msg("Image saved")
	o.emitResult(result, domain.EventSaved, "Successfully fetched: "+filepath.Base(path))
	return result
}

func (o *Orchestrator) fail(result *domain.FetchResult, log zerolog.Logger, err error) *domain.FetchResult {
	kind := classify(err)
	result.Outcome = domain.OutcomeFailed
	result.ErrorKind = kind
	result.Reason = describe(kind, err)
	result.CompletedAt = o.now().UTC()

	log.Error().Err(err).Str("error_kind", string(kind)).Msg("Fetch failed")
	o.emitResult(result, domain.EventFailed, result.Reason)
	return result
}

func (o *Orchestrator) emit(result *domain.FetchResult, kind domain.EventKind, msg string) {
	o.events.Emit(domain.Event{Kind: kind, FetchID: result.ID, URL: result.URL, Message: msg})
}

func (o *Orchestrator) emitResult(result *domain.FetchResult, kind domain.EventKind, msg string) {
	o.events.Emit(domain.Event{Kind: kind, FetchID: result.ID, URL: result.URL, Message: msg, Result: result})
}
