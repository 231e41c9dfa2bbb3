package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./data/stormsense.db" description:"Path to the sqlite database file"`

	// Data directories
	LexiconsDir string `long:"lexicons-dir" env:"LEXICONS_DIR" default:"./lexicons/vi" description:"Directory containing lexicon and taxonomy files"`
	SourcesDir  string `long:"sources-dir" env:"SOURCES_DIR" default:"./sources" description:"Directory containing source definition files"`

	// Run parameters
	Keyword     string `long:"keyword" env:"KEYWORD" description:"Disaster keyword to track (empty matches every post)"`
	From        string `long:"from" env:"FROM" description:"Lower time bound, RFC 3339 (optional)"`
	To          string `long:"to" env:"TO" description:"Upper time bound, RFC 3339 (optional)"`
	Limit       int    `long:"limit" env:"LIMIT" default:"5000" description:"Maximum number of raw posts to ingest per run"`
	WorkerCount int    `long:"worker-count" env:"WORKER_COUNT" default:"5" description:"Number of workers for per-post scoring"`

	// Reporting API
	Serve bool   `long:"serve" env:"SERVE" description:"Keep running and serve aggregate rows over HTTP after the run"`
	Port  string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"stormsense/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, Asia/Ho_Chi_Minh)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:      raw.DBPath,
		LexiconsDir: raw.LexiconsDir,
		SourcesDir:  raw.SourcesDir,
		Keyword:     raw.Keyword,
		From:        raw.From,
		To:          raw.To,
		Limit:       raw.Limit,
		WorkerCount: raw.WorkerCount,
		Serve:       raw.Serve,
		Port:        raw.Port,
		UserAgent:   raw.UserAgent,
		Timezone:    raw.Timezone,
		Debug:       raw.Debug,
		Version:     GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
