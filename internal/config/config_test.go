package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"declutter/internal/config"
)

func TestLoadDefaultsWithoutFile(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	if cfg.Logging.Format != "console" {
		t.Fatalf("unexpected default log format: %q", cfg.Logging.Format)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("unexpected default log level: %q", cfg.Logging.Level)
	}
	if cfg.Organize.DestinationDir != "" {
		t.Fatalf("expected empty destination dir, got %q", cfg.Organize.DestinationDir)
	}
	if len(cfg.Categories) != 5 {
		t.Fatalf("expected 5 built-in categories, got %d", len(cfg.Categories))
	}

	table, err := cfg.CategoryTable()
	if err != nil {
		t.Fatalf("CategoryTable failed: %v", err)
	}
	if got := table.Classify("song.MP3"); got != "Audio" {
		t.Fatalf("expected built-in table to classify song.MP3 as Audio, got %q", got)
	}
	if got := table.Classify("mystery.xyz"); got != "Other" {
		t.Fatalf("expected fallback category Other, got %q", got)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	configPath := filepath.Join(t.TempDir(), "declutter.toml")

	type payload struct {
		Organize struct {
			DestinationDir string `toml:"destination_dir"`
		} `toml:"organize"`
		Logging struct {
			Format string `toml:"format"`
			Level  string `toml:"level"`
		} `toml:"logging"`
		Categories []struct {
			Name       string   `toml:"name"`
			Extensions []string `toml:"extensions"`
		} `toml:"categories"`
	}
	custom := payload{}
	custom.Organize.DestinationDir = "~/sorted"
	custom.Logging.Format = "JSON"
	custom.Logging.Level = "Debug"
	custom.Categories = append(custom.Categories, struct {
		Name       string   `toml:"name"`
		Extensions []string `toml:"extensions"`
	}{Name: "Books", Extensions: []string{".epub", "MOBI"}})

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if want := filepath.Join(tempHome, "sorted"); cfg.Organize.DestinationDir != want {
		t.Fatalf("expected destination dir %q, got %q", want, cfg.Organize.DestinationDir)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected format lowercased to json, got %q", cfg.Logging.Format)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected level lowercased to debug, got %q", cfg.Logging.Level)
	}
	if len(cfg.Categories) != 1 || cfg.Categories[0].Name != "Books" {
		t.Fatalf("expected declared categories to replace built-ins, got %+v", cfg.Categories)
	}

	table, err := cfg.CategoryTable()
	if err != nil {
		t.Fatalf("CategoryTable failed: %v", err)
	}
	if got := table.Classify("novel.mobi"); got != "Books" {
		t.Fatalf("expected bare extension to be normalized, got %q", got)
	}
	if got := table.Classify("song.mp3"); got != "Other" {
		t.Fatalf("expected built-in table replaced, got %q", got)
	}
}

func TestLoadKeepsBuiltInCategoriesWhenFileOmitsThem(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "declutter.toml")
	if err := os.WriteFile(configPath, []byte("[logging]\nlevel = \"warn\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, _, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Fatalf("expected level warn, got %q", cfg.Logging.Level)
	}
	if len(cfg.Categories) != 5 {
		t.Fatalf("expected built-in categories retained, got %d", len(cfg.Categories))
	}
}

func TestLoadMissingExplicitPathUsesDefaults(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nope.toml")

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected exists to be false for missing file")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if len(cfg.Categories) != 5 {
		t.Fatalf("expected built-in categories, got %d", len(cfg.Categories))
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Format = "yaml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown log format")
	}

	cfg = config.Default()
	cfg.Logging.Level = "loud"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown log level")
	}

	cfg = config.Default()
	cfg.Categories = append(cfg.Categories, config.CategoryRule{Name: "Music", Extensions: []string{".mp3"}})
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for duplicate extension")
	}

	cfg = config.Default()
	cfg.Categories = []config.CategoryRule{{Name: "Other", Extensions: []string{".bin"}}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for reserved category name")
	}
}

func TestSampleConfigDecodes(t *testing.T) {
	sample := config.SampleConfig()
	if !strings.Contains(sample, "[organize]") {
		t.Fatalf("sample config missing organize section:\n%s", sample)
	}

	var cfg config.Config
	if err := toml.Unmarshal([]byte(sample), &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if cfg.Logging.Format != "console" {
		t.Fatalf("unexpected sample log format: %q", cfg.Logging.Format)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("sample config failed validation: %v", err)
	}
}

func TestDefaultConfigPath(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	path, err := config.DefaultConfigPath()
	if err != nil {
		t.Fatalf("DefaultConfigPath failed: %v", err)
	}
	want := filepath.Join(tempHome, ".config", "declutter", "config.toml")
	if path != want {
		t.Fatalf("unexpected default config path: got %q want %q", path, want)
	}
}
