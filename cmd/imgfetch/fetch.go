package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"imagefetcher/internal/core/domain"
	"imagefetcher/internal/shell"
)

func newFetchCmd(root *rootOptions) *cobra.Command {
	var listFile string
	var quiet bool

	cmd := &cobra.Command{
		Use:   "fetch [url...]",
		Short: "Fetch images without the interactive menu",
		Example: `  imgfetch fetch https://example.com/pics/cat.png
  imgfetch fetch -f urls.txt`,
		RunE: func(c *cobra.Command, args []string) error {
			defer root.closeLog()

			urls := append([]string{}, args...)
			if listFile != "" {
				fromFile, err := readURLFile(listFile)
				if err != nil {
					return err
				}
				urls = append(urls, fromFile...)
			}
			if len(urls) == 0 {
				return fmt.Errorf("no URLs provided")
			}

			out := c.OutOrStdout()
			a, err := root.build(c.Context(), out)
			if err != nil {
				return err
			}

			sink := func(ev domain.Event) { shell.RenderEvent(out, ev) }
			if quiet {
				sink = func(ev domain.Event) {
					if ev.Result != nil {
						fmt.Fprintf(out, "%s: %s\n", ev.URL, shell.DescribeResult(ev.Result))
					}
				}
			}
			a.orchestrator.SetEventSink(sink)
			a.batch.SetEventSink(sink)

			summary := a.batch.Run(c.Context(), urls)
			shell.PrintSummary(out, summary)

			if summary.Failed > 0 {
				return fmt.Errorf("%d of %d URLs failed", summary.Failed, summary.Total)
			}
			return c.Context().Err()
		},
	}

	cmd.Flags().StringVarP(&listFile, "file", "f", "", "Read URLs from a file, one per line ('#' starts a comment)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Print one line per URL instead of step-by-step progress")
	return cmd
}

func readURLFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open URL list: %w", err)
	}
	defer f.Close()
	return parseURLList(f)
}

func parseURLList(r io.Reader) ([]string, error) {
	var urls []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read URL list: %w", err)
	}
	return urls, nil
}
