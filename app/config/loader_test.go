package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeSource(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("failed to write source definition: %v", err)
	}
}

func TestLoadAll_MissingDirectory(t *testing.T) {
	loader := NewLoader(filepath.Join(t.TempDir(), "does-not-exist"))

	configs, err := loader.LoadAll()
	if err != nil {
		t.Fatalf("missing directory should not be an error: %v", err)
	}
	if len(configs) != 0 {
		t.Errorf("Expected 0 configs, got %d", len(configs))
	}
}

func TestLoadAll_FileSource(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "collections.yaml", `
source:
  name: collections
  type: file
  path: ./data/collections
settings:
  enabled: true
`)

	loader := NewLoader(dir)
	configs, err := loader.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}

	cfg, ok := configs["collections"]
	if !ok {
		t.Fatalf("Expected source 'collections', got %v", configs)
	}
	if cfg.Source.Type != "file" {
		t.Errorf("Expected type file, got %s", cfg.Source.Type)
	}
	if !cfg.Settings.Enabled {
		t.Error("Expected source to be enabled")
	}
	// Defaults
	if cfg.Settings.MaxPosts != 1000 {
		t.Errorf("Expected default max_posts 1000, got %d", cfg.Settings.MaxPosts)
	}
	if cfg.Settings.Timeout != 30 {
		t.Errorf("Expected default timeout 30, got %d", cfg.Settings.Timeout)
	}
}

func TestLoadAll_NameDefaultsToFilename(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "vnexpress.yaml", `
source:
  type: rss
  url: https://vnexpress.net/rss/thoi-su.rss
`)

	loader := NewLoader(dir)
	configs, err := loader.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}
	if _, ok := configs["vnexpress"]; !ok {
		t.Errorf("Expected source named after file, got %v", configs)
	}
}

func TestLoadAll_InvalidType(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "bad.yaml", `
source:
  name: bad
  type: carrier-pigeon
`)

	loader := NewLoader(dir)
	if _, err := loader.LoadAll(); err == nil {
		t.Error("Expected error for unknown source type")
	}
}

func TestLoadAll_RSSRequiresURL(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "bad.yaml", `
source:
  name: bad
  type: rss
`)

	loader := NewLoader(dir)
	if _, err := loader.LoadAll(); err == nil {
		t.Error("Expected error for rss source without url")
	}
}
