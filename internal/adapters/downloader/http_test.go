package downloader

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imagefetcher/internal/core/domain"
)

func TestProbe_ReturnsMetadataAndSendsUserAgent(t *testing.T) {
	var gotUA, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotMethod = r.Method
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Length", "1234")
	}))
	defer srv.Close()

	d := NewHTTPDownloader(Options{}, zerolog.Nop())
	meta, err := d.Probe(context.Background(), srv.URL+"/a.png")
	require.NoError(t, err)

	assert.Equal(t, http.MethodHead, gotMethod)
	assert.Equal(t, DefaultUserAgent, gotUA)
	assert.Equal(t, http.StatusOK, meta.StatusCode)
	assert.Equal(t, "image/png", meta.ContentType)
	assert.Equal(t, "1234", meta.ContentLength)
}

func TestProbe_FollowsRedirects(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("/old.png", http.RedirectHandler("/new.png", http.StatusMovedPermanently))
	mux.HandleFunc("/new.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	d := NewHTTPDownloader(Options{UserAgent: "custom/2.0"}, zerolog.Nop())
	meta, err := d.Probe(context.Background(), srv.URL+"/old.png")
	require.NoError(t, err)
	assert.Equal(t, "image/png", meta.ContentType)
}

func TestProbe_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	d := NewHTTPDownloader(Options{}, zerolog.Nop())
	_, err := d.Probe(context.Background(), srv.URL)

	var statusErr *domain.HTTPStatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
	assert.Contains(t, err.Error(), "403")
}

func TestDownload_ReadsBody(t *testing.T) {
	body := bytes.Repeat([]byte("x"), 10_000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/gif")
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	var progress bytes.Buffer
	d := NewHTTPDownloader(Options{Progress: &progress}, zerolog.Nop())
	p, err := d.Download(context.Background(), srv.URL, 1024*1024)
	require.NoError(t, err)
	assert.Equal(t, body, p.Content)
	assert.Equal(t, "image/gif", p.ContentType)
	assert.NotZero(t, progress.Len())
}

func TestDownload_EnforcesLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/gif")
		_, _ = w.Write(bytes.Repeat([]byte("x"), 2048))
	}))
	defer srv.Close()

	d := NewHTTPDownloader(Options{}, zerolog.Nop())

	_, err := d.Download(context.Background(), srv.URL, 2047)
	var validErr *domain.ValidationError
	assert.True(t, errors.As(err, &validErr))

	p, err := d.Download(context.Background(), srv.URL, 2048)
	require.NoError(t, err)
	assert.Len(t, p.Content, 2048)
}

func TestDownload_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/gif")
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	d := NewHTTPDownloader(Options{FetchTimeout: 50 * time.Millisecond}, zerolog.Nop())
	_, err := d.Download(context.Background(), srv.URL, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewHTTPDownloader_HTTP2(t *testing.T) {
	d := NewHTTPDownloader(Options{EnableHTTP2: true}, zerolog.Nop())
	transport, ok := d.client.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Contains(t, transport.TLSNextProto, "h2")
}

func TestDownload_ProgressBarLifecycle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/gif")
		_, _ = w.Write(bytes.Repeat([]byte("x"), 4096))
	}))
	defer srv.Close()

	var progress bytes.Buffer
	d := NewHTTPDownloader(Options{Progress: &progress}, zerolog.Nop())

	_, err := d.Download(context.Background(), srv.URL, 1024)
	require.Error(t, err)
	out := progress.String()
	assert.NotContains(t, out, "\n")
	if out != "" {
		assert.True(t, strings.HasSuffix(out, "\r"), "partial bar should be erased, got %q", out)
	}

	progress.Reset()
	_, err = d.Download(context.Background(), srv.URL, 8192)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(progress.String(), "\n"))
}
