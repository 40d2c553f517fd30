package domain

import "time"

// Outcome is the terminal state of a single fetch attempt.
type Outcome string

const (
	OutcomeSaved     Outcome = "saved"
	OutcomeDuplicate Outcome = "duplicate" // content already on disk, nothing written
	OutcomeFailed    Outcome = "failed"
)

// ResponseMeta is the subset of response headers the fetcher cares about.
type ResponseMeta struct {
	StatusCode    int
	ContentType   string
	ContentLength string // raw header value, may be empty or garbage
}

// Payload holds a fully downloaded response body.
type Payload struct {
	Content     []byte
	ContentType string
}

// FetchResult holds the outcome of one URL.
type FetchResult struct {
	ID          string    `json:"fetch_id"`
	URL         string    `json:"url"`
	Outcome     Outcome   `json:"outcome"`
	Path        string    `json:"path,omitempty"`
	Size        int64     `json:"size,omitempty"`
	Hash        string    `json:"hash,omitempty"`
	ContentType string    `json:"content_type,omitempty"`
	ErrorKind   ErrorKind `json:"error_kind,omitempty"`
	Reason      string    `json:"reason,omitempty"`
	Warnings    []string  `json:"warnings,omitempty"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
}

// Success reports whether the URL ended up on disk, either now or earlier.
func (r *FetchResult) Success() bool {
	return r.Outcome == OutcomeSaved || r.Outcome == OutcomeDuplicate
}

// SizeMB returns the payload size in megabytes.
func (r *FetchResult) SizeMB() float64 {
	return float64(r.Size) / (1024 * 1024)
}

// BatchSummary aggregates results over a list of URLs.
// Duplicates are counted in Successful as well.
type BatchSummary struct {
	SessionID  string `json:"session_id"`
	Successful int    `json:"successful"`
	Failed     int    `json:"failed"`
	Duplicates int    `json:"duplicates"`
	Total      int    `json:"total"`
}

// Add folds a single result into the summary.
func (s *BatchSummary) Add(r *FetchResult) {
	if r.Success() {
		s.Successful++
	} else {
		s.Failed++
	}
	if r.Outcome == OutcomeDuplicate {
		s.Duplicates++
	}
}
