package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/robfig/cron/v3"
)

// Version is set at build time via -ldflags
var Version = "dev"

var ErrMissingAPIKey = errors.New("OpenAI API key is required (set OPENAI_KEY or --openai-key)")

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Pipeline configuration
	ProfilePath   string `long:"profile" env:"PROFILE_PATH" description:"Pipeline profile YAML file (defaults are used when empty)"`
	DocumentPath  string `long:"document" env:"DOCUMENT_PATH" default:"README.md" description:"Markdown document to update"`
	OpenAIKey     string `long:"openai-key" env:"OPENAI_KEY" description:"OpenAI API key (required)"`
	OpenAIBaseURL string `long:"openai-base-url" env:"OPENAI_BASE_URL" description:"Base URL of an OpenAI-compatible API"`
	Model         string `long:"model" env:"OPENAI_MODEL" description:"Model name, overrides the profile"`
	DryRun        bool   `long:"dry-run" env:"DRY_RUN" description:"Run the pipeline without writing the document"`

	// Run history
	DBPath string `long:"db-path" env:"DB_PATH" description:"SQLite database for run history (disabled when empty)"`

	// Serve mode
	Serve        bool   `long:"serve" env:"SERVE" description:"Run the HTTP server and scheduler instead of a single pass"`
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	Schedule     string `long:"schedule" env:"SCHEDULE" default:"0 6 * * *" description:"Cron schedule for runs in serve mode"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`
	RunOnStart   bool   `long:"run-on-start" env:"RUN_ON_START" description:"Enqueue a run as soon as the server starts"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Mozilla/5.0 (compatible; BaselineScout/1.0)" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Load parses args and the environment. It returns nil, nil when help was
// requested.
func Load(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		ProfilePath:   raw.ProfilePath,
		DocumentPath:  raw.DocumentPath,
		OpenAIKey:     strings.TrimSpace(raw.OpenAIKey),
		OpenAIBaseURL: raw.OpenAIBaseURL,
		Model:         raw.Model,
		DryRun:        raw.DryRun,
		DBPath:        raw.DBPath,
		Serve:         raw.Serve,
		Port:          raw.Port,
		Schedule:      raw.Schedule,
		APIAccessKey:  raw.APIAccessKey,
		RunOnStart:    raw.RunOnStart,
		UserAgent:     raw.UserAgent,
		Timezone:      raw.Timezone,
		Debug:         raw.Debug,
		Version:       GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		slog.Warn("Invalid timezone, using system default", "timezone", cfg.Timezone, "error", err)
	}

	return cfg, nil
}

// Validate checks settings that must be present before any work starts.
func (c *Cfg) Validate() error {
	if c.OpenAIKey == "" {
		return ErrMissingAPIKey
	}
	if c.DocumentPath == "" {
		return fmt.Errorf("document path is required")
	}
	if c.Serve {
		if _, err := cron.ParseStandard(c.Schedule); err != nil {
			return fmt.Errorf("invalid schedule %q: %w", c.Schedule, err)
		}
	}
	return nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			slog.Debug("Timezone configured", "timezone", timezone)
		}
	}
	return nil
}
