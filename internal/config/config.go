package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"declutter/internal/category"
)

//go:embed sample_config.toml
var sampleConfig string

// Organize contains destination settings for the organizing pipeline.
type Organize struct {
	// DestinationDir overrides the default destination (the source root).
	DestinationDir string `toml:"destination_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	Dir    string `toml:"dir"`
}

// CategoryRule declares one category and the extensions it claims.
type CategoryRule struct {
	Name       string   `toml:"name"`
	Extensions []string `toml:"extensions"`
}

// Config encapsulates all configuration values for declutter. Every field
// has a compiled-in default, so running without a config file reproduces
// the stock behavior: the built-in category table, destination equal to
// the source, console logs at info level.
type Config struct {
	Organize   Organize       `toml:"organize"`
	Logging    Logging        `toml:"logging"`
	Categories []CategoryRule `toml:"categories"`
}

// SampleConfig returns the annotated sample configuration file.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes the annotated sample configuration to path.
func CreateSample(path string) error {
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}

// CacheDir returns the per-user directory for runtime state (run locks,
// the run history database), creating it if needed. It falls back to the
// system temp directory when no user cache directory is available.
func CacheDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	dir := filepath.Join(base, "declutter")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create cache directory: %w", err)
	}
	return dir, nil
}

// DefaultConfigPath returns the absolute path of the default config location.
func DefaultConfigPath() (string, error) {
	return ExpandPath("~/.config/declutter/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has paths expanded and the category table checked for
// well-formedness. The boolean reports whether a file was actually read.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// LogFilePath returns the path of the on-disk log file, or the empty
// string when no log directory is configured.
func (c *Config) LogFilePath() string {
	if c.Logging.Dir == "" {
		return ""
	}
	return filepath.Join(c.Logging.Dir, "declutter.log")
}

// CategoryTable builds the immutable classification table from the
// configured rules. Table well-formedness (unique extensions, no reserved
// names) is enforced here, once, at construction.
func (c *Config) CategoryTable() (*category.Table, error) {
	rules := make([]category.Category, 0, len(c.Categories))
	for _, r := range c.Categories {
		rules = append(rules, category.Category{Name: r.Name, Extensions: r.Extensions})
	}
	return category.NewTable(rules)
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("declutter.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

func (c *Config) normalize() error {
	var err error
	if c.Organize.DestinationDir != "" {
		if c.Organize.DestinationDir, err = ExpandPath(c.Organize.DestinationDir); err != nil {
			return fmt.Errorf("organize.destination_dir: %w", err)
		}
	}
	if c.Logging.Dir != "" {
		if c.Logging.Dir, err = ExpandPath(c.Logging.Dir); err != nil {
			return fmt.Errorf("logging.dir: %w", err)
		}
	}
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if len(c.Categories) == 0 {
		c.Categories = defaultCategories()
	}
	return nil
}

// ExpandPath resolves a leading tilde against the home directory and
// makes the result absolute. Empty input stays empty.
func ExpandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
