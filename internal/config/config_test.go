package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"labelspool/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
[source]
token = "bl-token"
`)
	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config at %s to be used, got %s exists=%v", path, resolved, exists)
	}
	if cfg.Source.StatusID != 91618 {
		t.Fatalf("default status id = %d", cfg.Source.StatusID)
	}
	if cfg.Printer.Name != "Xprinter" {
		t.Fatalf("default printer = %q", cfg.Printer.Name)
	}
	if cfg.PollInterval() != time.Minute {
		t.Fatalf("default poll interval = %s", cfg.PollInterval())
	}
	if cfg.ExpiryWindow() != 5*24*time.Hour {
		t.Fatalf("default expiry window = %s", cfg.ExpiryWindow())
	}
	if !filepath.IsAbs(cfg.Paths.DataDir) {
		t.Fatalf("data dir not expanded: %q", cfg.Paths.DataDir)
	}
	if got := cfg.DatabasePath(); filepath.Dir(got) != cfg.Paths.DataDir {
		t.Fatalf("database path %q not under data dir", got)
	}
}

func TestLoadRequiresSourceToken(t *testing.T) {
	path := writeConfig(t, "")
	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "source.token") {
		t.Fatalf("expected source.token error, got %v", err)
	}
}

func TestLoadRejectsBadQuietHours(t *testing.T) {
	path := writeConfig(t, `
[source]
token = "bl-token"

[agent]
quiet_hours_start = 24
`)
	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "quiet_hours_start") {
		t.Fatalf("expected quiet hours error, got %v", err)
	}
}

func TestLoadRejectsPartialNotifyConfig(t *testing.T) {
	path := writeConfig(t, `
[source]
token = "bl-token"

[notify]
webhook_url = "https://chat.example/messages"
`)
	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "notify.token") {
		t.Fatalf("expected notify.token error, got %v", err)
	}
}

func TestLoadRejectsUnknownLogFormat(t *testing.T) {
	path := writeConfig(t, `
[source]
token = "bl-token"

[logging]
format = "xml"
`)
	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "logging.format") {
		t.Fatalf("expected logging.format error, got %v", err)
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[agent]") {
		t.Fatal("sample config missing [agent] section")
	}
}
