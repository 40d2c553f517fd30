package downloader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/net/http2"

	"imagefetcher/internal/core/domain"
)

const (
	DefaultUserAgent    = "imgfetch/1.0 (Image Fetcher; Respectful Bot)"
	DefaultProbeTimeout = 10 * time.Second
	DefaultFetchTimeout = 30 * time.Second
)

// Options configures an HTTPDownloader.
type Options struct {
	UserAgent    string
	ProbeTimeout time.Duration
	FetchTimeout time.Duration
	EnableHTTP2  bool
	// Progress receives a byte progress bar during Download. Nil disables it.
	Progress io.Writer
}

// HTTPDownloader implements ports.Downloader using standard HTTP.
type HTTPDownloader struct {
	client *http.Client
	opts   Options
	logger zerolog.Logger
}

// NewHTTPDownloader creates a new HTTPDownloader.
func NewHTTPDownloader(opts Options, logger zerolog.Logger) *HTTPDownloader {
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = DefaultProbeTimeout
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}
	logger = logger.With().Str("component", "downloader").Logger()

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   opts.ProbeTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   opts.ProbeTimeout,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if opts.EnableHTTP2 {
		if err := http2.ConfigureTransport(transport); err != nil {
			logger.Warn().Err(err).Msg("Failed to configure HTTP/2, falling back to HTTP/1.1")
		}
	}

	return &HTTPDownloader{
		// Per-request deadlines come from the context; redirects are followed.
		client: &http.Client{Transport: transport},
		opts:   opts,
		logger: logger,
	}
}

// Probe sends a HEAD request and returns the response metadata.
func (d *HTTPDownloader) Probe(ctx context.Context, url string) (*domain.ResponseMeta, error) {
	ctx, cancel := context.WithTimeout(ctx, d.opts.ProbeTimeout)
	defer cancel()

	resp, err := d.do(ctx, http.MethodHead, url)
	if err != nil {
		return nil, wrapTransportErr(ctx, "probe", d.opts.ProbeTimeout, err)
	}
	resp.Body.Close()

	if err := checkStatus(resp, url); err != nil {
		return nil, err
	}

	d.logger.Debug().
		Str("url", url).
		Int("status_code", resp.StatusCode).
		Str("content_type", resp.Header.Get("Content-Type")).
		Str("content_length", resp.Header.Get("Content-Length")).
		Msg("Probe completed")

	return &domain.ResponseMeta{
		StatusCode:    resp.StatusCode,
		ContentType:   resp.Header.Get("Content-Type"),
		ContentLength: resp.Header.Get("Content-Length"),
	}, nil
}

// Download fetches the image from the given URL.
func (d *HTTPDownloader) Download(ctx context.Context, url string, maxBytes int64) (*domain.Payload, error) {
	ctx, cancel := context.WithTimeout(ctx, d.opts.FetchTimeout)
	defer cancel()

	resp, err := d.do(ctx, http.MethodGet, url)
	if err != nil {
		return nil, wrapTransportErr(ctx, "download", d.opts.FetchTimeout, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, url); err != nil {
		return nil, err
	}

	var body io.Reader = resp.Body
	if maxBytes > 0 {
		body = io.LimitReader(resp.Body, maxBytes+1)
	}

	completed := false
	if d.opts.Progress != nil {
		bar := d.newProgressBar(resp.ContentLength)
		body = io.TeeReader(body, bar)
		defer func() { d.stopProgress(bar, completed) }()
	}

	var buf bytes.Buffer
	if resp.ContentLength > 0 && (maxBytes <= 0 || resp.ContentLength <= maxBytes) {
		buf.Grow(int(resp.ContentLength))
	}
	if _, err := io.Copy(&buf, body); err != nil {
		return nil, wrapTransportErr(ctx, "download", d.opts.FetchTimeout, err)
	}

	if maxBytes > 0 && int64(buf.Len()) > maxBytes {
		return nil, domain.NewValidationError("Image too large (over %dMB). Limit: %dMB",
			maxBytes/(1024*1024), maxBytes/(1024*1024))
	}

	completed = true

	d.logger.Debug().
		Str("url", url).
		Int("content_size", buf.Len()).
		Str("content_type", resp.Header.Get("Content-Type")).
		Msg("Successfully fetched content")

	return &domain.Payload{
		Content:     buf.Bytes(),
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

func (d *HTTPDownloader) do(ctx context.Context, method, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", d.opts.UserAgent)
	req.Header.Set("Accept", "image/*,*/*;q=0.8")
	return d.client.Do(req)
}

func (d *HTTPDownloader) newProgressBar(total int64) *progressbar.ProgressBar {
	w := d.opts.Progress
	return progressbar.NewOptions64(
		total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetDescription("downloading"),
		progressbar.OptionThrottle(80*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)
}

// stopProgress finishes the bar after a full read and erases it otherwise,
// so a failed download leaves no partial bar behind.
func (d *HTTPDownloader) stopProgress(bar *progressbar.ProgressBar, completed bool) {
	var err error
	if completed {
		err = bar.Finish()
	} else {
		err = bar.Clear()
	}
	if err != nil {
		d.logger.Debug().Err(err).Msg("Failed to update progress bar")
	}
}

func checkStatus(resp *http.Response, url string) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.HTTPStatusError{StatusCode: resp.StatusCode, Status: resp.Status, URL: url}
	}
	return nil
}

// wrapTransportErr tags errors caused by the per-request deadline so they
// classify as timeouts regardless of where in the exchange they surfaced.
func wrapTransportErr(ctx context.Context, op string, timeout time.Duration, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s timed out after %s: %w", op, timeout, errors.Join(context.DeadlineExceeded, err))
	}
	return fmt.Errorf("%s failed: %w", op, err)
}
