package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"imagefetcher/internal/adapters/downloader"
	"imagefetcher/internal/adapters/hashstore"
	"imagefetcher/internal/adapters/localstorage"
	"imagefetcher/internal/config"
	"imagefetcher/internal/logger"
	"imagefetcher/internal/service"
	"imagefetcher/internal/shell"
)

type rootOptions struct {
	configPath string
	targetDir  string
	verbose    bool

	cfg       *config.Config
	logger    zerolog.Logger
	logCloser io.Closer
}

// app holds the wired pipeline.
type app struct {
	orchestrator *service.Orchestrator
	batch        *service.BatchRunner
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(&rootOptions{}).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "imgfetch",
		Short:        "imgfetch - download images from the web into a local folder",
		SilenceUsage: true,
		PersistentPreRunE: func(c *cobra.Command, args []string) error {
			return opts.setup()
		},
		RunE: func(c *cobra.Command, args []string) error {
			defer opts.closeLog()

			out := c.OutOrStdout()
			a, err := opts.build(c.Context(), out)
			if err != nil {
				return err
			}

			sh := shell.New(a.orchestrator, a.batch, c.InOrStdin(), out)
			a.orchestrator.SetEventSink(sh.Render)
			a.batch.SetEventSink(sh.Render)

			if err := sh.Run(c.Context()); err != nil && c.Context().Err() == nil {
				return err
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to YAML config (or set "+config.EnvConfigPath+")")
	cmd.PersistentFlags().StringVarP(&opts.targetDir, "dir", "d", "", "Target directory for downloaded images")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(newFetchCmd(opts))
	return cmd
}

// setup loads configuration and builds the logger.
func (o *rootOptions) setup() error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.targetDir != "" {
		cfg.TargetDir = o.targetDir
	}
	if o.verbose {
		cfg.Log.Level = "debug"
	}

	b := logger.NewBuilder().
		WithLevel(cfg.Log.Level).
		WithFormat(cfg.Log.Format)
	if cfg.Log.File != "" {
		b = b.WithFile(cfg.Log.File, cfg.Log.MaxSizeMB, cfg.Log.MaxBackups)
	}
	log, closer, err := b.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	o.cfg = cfg
	o.logger = log
	o.logCloser = closer
	return nil
}

// closeLog releases the log file. Run commands defer it so it also
// happens when they fail.
func (o *rootOptions) closeLog() {
	if o.logCloser == nil {
		return
	}
	if err := o.logCloser.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", err)
	}
	o.logCloser = nil
}

// build wires adapters into the fetch pipeline and loads known hashes.
func (o *rootOptions) build(ctx context.Context, out io.Writer) (*app, error) {
	cfg := o.cfg

	storage := localstorage.NewLocalStorage(cfg.TargetDir, o.logger)
	if err := storage.Init(ctx); err != nil {
		return nil, err
	}

	hashes := hashstore.NewFileStore(cfg.TargetDir, cfg.HashFile)
	n, err := hashes.Load(ctx)
	if err != nil {
		o.logger.Warn().Err(err).Str("path", hashes.Path()).Msg("Could not load existing hashes")
		fmt.Fprintf(out, "Warning: could not load existing hashes: %v\n", err)
	} else if n > 0 {
		fmt.Fprintf(out, "Loaded %d existing image hashes\n", n)
	}

	var progress io.Writer
	if cfg.ShowProgress {
		progress = os.Stderr
	}
	dl := downloader.NewHTTPDownloader(downloader.Options{
		UserAgent:    cfg.UserAgent,
		ProbeTimeout: cfg.ProbeTimeout,
		FetchTimeout: cfg.FetchTimeout,
		EnableHTTP2:  cfg.EnableHTTP2,
		Progress:     progress,
	}, o.logger)

	orch := service.NewOrchestrator(dl, storage, hashes, service.Options{
		MaxSizeMB:      cfg.MaxSizeMB,
		FilenamePrefix: cfg.FilenamePrefix,
	}, o.logger)

	o.logger.Debug().
		Str("target_dir", storage.Dir()).
		Int("known_hashes", n).
		Dur("batch_delay", cfg.BatchDelay).
		Msg("Fetcher ready")

	return &app{
		orchestrator: orch,
		batch:        service.NewBatchRunner(orch, cfg.BatchDelay, o.logger),
	}, nil
}
