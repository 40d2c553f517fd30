package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"imagefetcher/internal/core/domain"
	"imagefetcher/internal/service"
)

// Batcher runs a list of URLs.
type Batcher interface {
	Run(ctx context.Context, urls []string) domain.BatchSummary
}

// Shell is the interactive menu front end.
type Shell struct {
	fetcher service.Fetcher
	batch   Batcher
	in      io.Reader
	out     io.Writer
	lines   <-chan string
	readErr error // set before lines is closed
}

// New creates a Shell reading commands from in and writing to out.
func New(fetcher service.Fetcher, batch Batcher, in io.Reader, out io.Writer) *Shell {
	return &Shell{fetcher: fetcher, batch: batch, in: in, out: out}
}

// Run loops over the menu until the user exits, input ends or ctx is cancelled.
func (s *Shell) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	s.lines = s.readLines(done)

	s.banner()
	for {
		s.menu()
		choice, ok, err := s.prompt(ctx, "\nEnter your choice (1-3): ")
		if err != nil {
			return err
		}
		if !ok {
			s.goodbye()
			return nil
		}

		switch choice {
		case "1":
			if err := s.single(ctx); err != nil {
				return err
			}
		case "2":
			if err := s.multiple(ctx); err != nil {
				return err
			}
		case "3":
			s.goodbye()
			return nil
		default:
			s.printf("Invalid choice. Please select 1, 2, or 3\n")
		}

		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

func (s *Shell) single(ctx context.Context) error {
	url, ok, err := s.prompt(ctx, "\nPlease enter the image URL: ")
	if err != nil || !ok {
		return err
	}
	if url == "" {
		s.printf("Please provide a valid URL\n")
		return nil
	}
	s.fetcher.Fetch(ctx, url)
	return nil
}

func (s *Shell) multiple(ctx context.Context) error {
	s.printf("\nEnter image URLs (one per line, empty line to finish):\n")
	var urls []string
	for {
		line, ok, err := s.prompt(ctx, "")
		if err != nil {
			return err
		}
		if !ok || line == "" {
			break
		}
		urls = append(urls, line)
	}

	if len(urls) == 0 {
		s.printf("No URLs provided\n")
		return nil
	}

	summary := s.batch.Run(ctx, urls)
	PrintSummary(s.out, summary)
	return nil
}

// Render prints a pipeline event. It is meant to be registered as an EventSink.
func (s *Shell) Render(ev domain.Event) {
	RenderEvent(s.out, ev)
}

// RenderEvent writes a human-readable line for ev.
func RenderEvent(w io.Writer, ev domain.Event) {
	switch ev.Kind {
	case domain.EventConnecting:
		fmt.Fprintf(w, "\n%s\n", ev.Message)
	case domain.EventValidated:
		fmt.Fprintf(w, "OK: %s\n", ev.Message)
	case domain.EventDownloading, domain.EventDuplicate, domain.EventPausing:
		fmt.Fprintln(w, ev.Message)
	case domain.EventSaved:
		fmt.Fprintln(w, ev.Message)
		if r := ev.Result; r != nil {
			fmt.Fprintf(w, "Saved to: %s\n", r.Path)
			fmt.Fprintf(w, "Size: %.2fMB\n", r.SizeMB())
		}
	case domain.EventWarning:
		fmt.Fprintf(w, "Warning: %s\n", ev.Message)
	case domain.EventFailed:
		fmt.Fprintf(w, "Error: %s\n", ev.Message)
	case domain.EventBatchStarted:
		fmt.Fprintf(w, "\nStarting image fetching session\n%s\n", ev.Message)
	case domain.EventBatchItem:
		fmt.Fprintf(w, "--- Processing %d/%d ---\n", ev.Index, ev.Total)
	}
}

// PrintSummary writes the batch tally.
func PrintSummary(w io.Writer, summary domain.BatchSummary) {
	fmt.Fprintf(w, "\nSession Summary:\n")
	fmt.Fprintf(w, "Successful: %d\n", summary.Successful)
	fmt.Fprintf(w, "Failed:     %d\n", summary.Failed)
	if summary.Duplicates > 0 {
		fmt.Fprintf(w, "Duplicates: %d\n", summary.Duplicates)
	}
	fmt.Fprintf(w, "Total:      %d\n", summary.Total)
}

// DescribeResult is a one-line outcome used by non-interactive callers.
func DescribeResult(r *domain.FetchResult) string {
	switch r.Outcome {
	case domain.OutcomeSaved:
		return fmt.Sprintf("saved %s (%.2fMB)", filepath.Base(r.Path), r.SizeMB())
	case domain.OutcomeDuplicate:
		return "duplicate, already present"
	default:
		return fmt.Sprintf("failed [%s]: %s", r.ErrorKind, r.Reason)
	}
}

func (s *Shell) banner() {
	line := strings.Repeat("=", 60)
	s.printf("%s\nImage Fetcher\nDownloads images from the web into a local folder\n%s\n", line, line)
}

func (s *Shell) menu() {
	s.printf("\nChoose an option:\n1. Fetch a single image\n2. Fetch multiple images (one per line)\n3. Exit\n")
}

func (s *Shell) goodbye() {
	s.printf("\nThank you for using Image Fetcher\n")
}

func (s *Shell) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

// prompt prints label and waits for a line. ok is false once input is exhausted.
func (s *Shell) prompt(ctx context.Context, label string) (string, bool, error) {
	if label != "" {
		s.printf("%s", label)
	}
	select {
	case <-ctx.Done():
		return "", false, ctx.Err()
	case line, ok := <-s.lines:
		if !ok && s.readErr != nil {
			return "", false, fmt.Errorf("input error: %w", s.readErr)
		}
		return strings.TrimSpace(line), ok, nil
	}
}

// maxLineBytes caps a single input line; longer lines end the session with an error.
const maxLineBytes = 1 << 20

// readLines feeds input lines to a channel so prompts can also observe ctx.
func (s *Shell) readLines(done <-chan struct{}) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(s.in)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
		s.readErr = scanner.Err()
	}()
	return lines
}
