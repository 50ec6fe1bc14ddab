package testsupport

import (
	"path/filepath"
	"testing"

	"declutter/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with a unique temp destination per
// test. It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Organize.DestinationDir = filepath.Join(base, "sorted")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithDestination overrides the destination directory on the test config.
func WithDestination(path string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Organize.DestinationDir = path
	}
}

// WithInPlaceDestination clears the destination so runs organize the source
// folder itself.
func WithInPlaceDestination() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Organize.DestinationDir = ""
	}
}

// WithCategories replaces the category rules on the test config.
func WithCategories(rules ...config.CategoryRule) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Categories = rules
	}
}
