package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvPrefix      = "IMGFETCH_"
	EnvConfigPath  = EnvPrefix + "CONFIG"
	DefaultFile    = "imgfetch.yaml"
	DefaultDirName = "Fetched_Images"
)

// Config is the full runtime configuration.
type Config struct {
	TargetDir      string        `yaml:"target_dir" validate:"required"`
	HashFile       string        `yaml:"hash_file" validate:"required,excludesall=/\\,ne=.,ne=.."`
	UserAgent      string        `yaml:"user_agent" validate:"required"`
	ProbeTimeout   time.Duration `yaml:"probe_timeout" validate:"gt=0"`
	FetchTimeout   time.Duration `yaml:"fetch_timeout" validate:"gt=0"`
	MaxSizeMB      int           `yaml:"max_size_mb" validate:"gt=0"`
	BatchDelay     time.Duration `yaml:"batch_delay" validate:"gte=0"`
	FilenamePrefix string        `yaml:"filename_prefix" validate:"required,excludesall=/\\"`
	ShowProgress   bool          `yaml:"show_progress"`
	EnableHTTP2    bool          `yaml:"enable_http2"`
	Log            LogConfig     `yaml:"log"`
}

// LogConfig configures the logger.
type LogConfig struct {
	Level      string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format     string `yaml:"format" validate:"omitempty,oneof=console json text"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" validate:"gte=0"`
	MaxBackups int    `yaml:"max_backups" validate:"gte=0"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		TargetDir:      DefaultDirName,
		HashFile:       ".image_hashes.txt",
		UserAgent:      "imgfetch/1.0 (Image Fetcher; Respectful Bot)",
		ProbeTimeout:   10 * time.Second,
		FetchTimeout:   30 * time.Second,
		MaxSizeMB:      50,
		BatchDelay:     2 * time.Second,
		FilenamePrefix: "image_",
		ShowProgress:   true,
		EnableHTTP2:    true,
		Log: LogConfig{
			Level:      "warn",
			Format:     "console",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file,
// a .env file and IMGFETCH_* environment variables, in that order.
func Load(path string) (*Config, error) {
	// A missing .env is fine; variables may be set by other means.
	_ = godotenv.Load()

	cfg := Default()

	if p := resolvePath(path); p != "" {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", p, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", p, err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolvePath picks the config file: explicit path, then IMGFETCH_CONFIG,
// then imgfetch.yaml in the working directory.
func resolvePath(path string) string {
	if path != "" {
		return path
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		return env
	}
	if _, err := os.Stat(DefaultFile); err == nil {
		return DefaultFile
	}
	return ""
}

func applyEnv(cfg *Config) error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	str("TARGET_DIR", &cfg.TargetDir)
	str("HASH_FILE", &cfg.HashFile)
	str("USER_AGENT", &cfg.UserAgent)
	str("FILENAME_PREFIX", &cfg.FilenamePrefix)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FORMAT", &cfg.Log.Format)
	str("LOG_FILE", &cfg.Log.File)

	durations := map[string]*time.Duration{
		"PROBE_TIMEOUT": &cfg.ProbeTimeout,
		"FETCH_TIMEOUT": &cfg.FetchTimeout,
		"BATCH_DELAY":   &cfg.BatchDelay,
	}
	for key, dst := range durations {
		if v := os.Getenv(EnvPrefix + key); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid %s%s: %w", EnvPrefix, key, err)
			}
			*dst = d
		}
	}

	if v := os.Getenv(EnvPrefix + "MAX_SIZE_MB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sMAX_SIZE_MB: %w", EnvPrefix, err)
		}
		cfg.MaxSizeMB = n
	}

	bools := map[string]*bool{
		"SHOW_PROGRESS": &cfg.ShowProgress,
		"ENABLE_HTTP2":  &cfg.EnableHTTP2,
	}
	for key, dst := range bools {
		if v := os.Getenv(EnvPrefix + key); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid %s%s: %w", EnvPrefix, key, err)
			}
			*dst = b
		}
	}
	return nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	validate := validator.New()
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return fmt.Errorf("configuration validation error: %w", err)
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msg := fmt.Sprintf("'%s' failed rule '%s'", e.Namespace(), e.Tag())
		if e.Param() != "" {
			msg += fmt.Sprintf(" (expected: %s)", e.Param())
		}
		msgs = append(msgs, msg)
	}
	return fmt.Errorf("configuration validation failed:\n  %s", strings.Join(msgs, "\n  "))
}
