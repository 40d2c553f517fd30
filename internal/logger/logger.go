package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Format selects how log lines are rendered.
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
	FormatText    Format = "text" // console layout without colour
)

// Builder assembles a zerolog.Logger with optional rotating file output.
type Builder struct {
	level      zerolog.Level
	format     Format
	console    io.Writer
	filePath   string
	maxSizeMB  int
	maxBackups int
}

// NewBuilder returns a builder that logs warnings and above to stderr.
func NewBuilder() *Builder {
	return &Builder{
		level:      zerolog.WarnLevel,
		format:     FormatConsole,
		console:    os.Stderr,
		maxSizeMB:  10,
		maxBackups: 3,
	}
}

// WithLevel sets the level from a name such as "debug" or "warn".
func (b *Builder) WithLevel(name string) *Builder {
	if name == "" {
		return b
	}
	if lvl, err := zerolog.ParseLevel(strings.ToLower(name)); err == nil {
		b.level = lvl
	}
	return b
}

// WithFormat sets the console format. Unknown formats fall back to console.
func (b *Builder) WithFormat(name string) *Builder {
	switch Format(strings.ToLower(name)) {
	case FormatJSON:
		b.format = FormatJSON
	case FormatText:
		b.format = FormatText
	default:
		b.format = FormatConsole
	}
	return b
}

// WithConsole sets the console destination. Nil disables console output.
func (b *Builder) WithConsole(w io.Writer) *Builder {
	b.console = w
	return b
}

// WithFile enables JSON logging to a size-rotated file.
func (b *Builder) WithFile(path string, maxSizeMB, maxBackups int) *Builder {
	b.filePath = path
	if maxSizeMB > 0 {
		b.maxSizeMB = maxSizeMB
	}
	if maxBackups >= 0 {
		b.maxBackups = maxBackups
	}
	return b
}

// Build creates the logger. The returned closer releases the log file, if any.
func (b *Builder) Build() (zerolog.Logger, io.Closer, error) {
	var writers []io.Writer
	var closer io.Closer = nopCloser{}

	if b.console != nil {
		writers = append(writers, b.consoleWriter())
	}

	if b.filePath != "" {
		if err := os.MkdirAll(filepath.Dir(b.filePath), 0755); err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		lj := &lumberjack.Logger{
			Filename:   b.filePath,
			MaxSize:    b.maxSizeMB,
			MaxBackups: b.maxBackups,
			Compress:   false,
		}
		writers = append(writers, lj)
		closer = lj
	}

	if len(writers) == 0 {
		return zerolog.Nop(), closer, nil
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(b.level).
		With().
		Timestamp().
		Logger()
	return logger, closer, nil
}

func (b *Builder) consoleWriter() io.Writer {
	switch b.format {
	case FormatJSON:
		return b.console
	default:
		return zerolog.ConsoleWriter{
			Out:        b.console,
			TimeFormat: time.RFC3339,
			NoColor:    b.format == FormatText,
		}
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
