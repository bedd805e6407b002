// Package testsupport provides shared constructors for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"labelspool/internal/config"
	"labelspool/internal/store"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"
	cfg.Source.Token = "test-token"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithQuietHours overrides the quiet window on the test config.
func WithQuietHours(start, end int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Agent.QuietHoursStart = start
		cfg.Agent.QuietHoursEnd = end
	}
}

// WithExpiryDays overrides the processed-record expiry on the test config.
func WithExpiryDays(days int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Agent.ExpiryDays = days
	}
}

// MustOpenStore opens a store for the config and closes it when the test ends.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return st
}
