package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Loader handles loading and validation of source definitions
type Loader struct {
	sourcesDir string
}

// NewLoader creates a new source definition loader
func NewLoader(sourcesDir string) *Loader {
	return &Loader{sourcesDir: sourcesDir}
}

// LoadAll loads all YAML source definitions from the sources directory
func (l *Loader) LoadAll() (map[string]*SourceConfig, error) {
	configs := make(map[string]*SourceConfig)

	if _, err := os.Stat(l.sourcesDir); os.IsNotExist(err) {
		return configs, nil // Return empty map if directory doesn't exist
	}

	files, err := filepath.Glob(filepath.Join(l.sourcesDir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find YAML files: %w", err)
	}

	ymlFiles, err := filepath.Glob(filepath.Join(l.sourcesDir, "*.yml"))
	if err != nil {
		return nil, fmt.Errorf("failed to find YML files: %w", err)
	}
	files = append(files, ymlFiles...)

	for _, file := range files {
		config, err := l.loadFile(file)
		if err != nil {
			return nil, fmt.Errorf("error loading %s: %w", file, err)
		}

		if err := l.validate(config); err != nil {
			return nil, fmt.Errorf("invalid source definition %s: %w", file, err)
		}

		configs[config.Source.Name] = config
		slog.Debug("Loaded source definition", "file", file, "source", config.Source.Name)
	}

	return configs, nil
}

// loadFile loads a single YAML source definition
func (l *Loader) loadFile(path string) (*SourceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var config SourceConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	l.setDefaults(&config, path)

	return &config, nil
}

// setDefaults applies default values to a source definition
func (l *Loader) setDefaults(config *SourceConfig, path string) {
	if config.Source.Name == "" {
		base := filepath.Base(path)
		config.Source.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if config.Settings.MaxPosts == 0 {
		config.Settings.MaxPosts = 1000
	}
	if config.Settings.Timeout == 0 {
		config.Settings.Timeout = 30 // seconds
	}
}

// validate validates a source definition
func (l *Loader) validate(config *SourceConfig) error {
	switch config.Source.Type {
	case "rss":
		if config.Source.URL == "" {
			return fmt.Errorf("rss source requires a url")
		}
	case "file":
		if config.Source.Path == "" {
			return fmt.Errorf("file source requires a path")
		}
	default:
		return fmt.Errorf("unknown source type: %s", config.Source.Type)
	}

	if config.Settings.MaxPosts < 0 {
		return fmt.Errorf("max_posts must be non-negative")
	}
	if config.Settings.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}

	return nil
}
