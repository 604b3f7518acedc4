package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", config.Server.Port)
	}
	if config.Clients.FMP.BaseURL == "" {
		t.Error("expected FMP base URL default")
	}
	if config.Scheduler.Cron != "30 16 * * 1-5" {
		t.Errorf("unexpected default cron %q", config.Scheduler.Cron)
	}
	if config.Pipeline.GetTopN() != 5 || config.Pipeline.GetUniverseCap() != 50 {
		t.Errorf("unexpected pipeline defaults: top=%d cap=%d",
			config.Pipeline.GetTopN(), config.Pipeline.GetUniverseCap())
	}
}

func TestLoadConfig_FileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tickerpress.toml")
	content := `
environment = "production"

[server]
port = 9090

[pipeline]
top_n = 3
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("TICKERPRESS_PORT", "7070")
	t.Setenv("FMP_API_KEY", "test-key")
	t.Setenv("TICKERPRESS_SCHEDULER_ENABLED", "false")

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if !config.IsProduction() {
		t.Error("expected production environment from file")
	}
	if config.Pipeline.GetTopN() != 3 {
		t.Errorf("expected top_n 3 from file, got %d", config.Pipeline.GetTopN())
	}
	// Env wins over file.
	if config.Server.Port != 7070 {
		t.Errorf("expected env port 7070, got %d", config.Server.Port)
	}
	if config.Clients.FMP.APIKey != "test-key" {
		t.Errorf("expected FMP key from env, got %q", config.Clients.FMP.APIKey)
	}
	if config.Scheduler.Enabled {
		t.Error("expected scheduler disabled via env")
	}
}

func TestLoadConfig_MissingFileSkipped(t *testing.T) {
	config, err := LoadConfig("/nonexistent/tickerpress.toml")
	if err != nil {
		t.Fatalf("missing file should be skipped, got %v", err)
	}
	if config.Server.Port != 8080 {
		t.Errorf("expected defaults, got port %d", config.Server.Port)
	}
}

func TestGetTimeout_FallsBackOnGarbage(t *testing.T) {
	c := FMPConfig{Timeout: "not-a-duration"}
	if got := c.GetTimeout(); got != 10*time.Second {
		t.Errorf("expected 10s fallback, got %v", got)
	}
	c.Timeout = "30s"
	if got := c.GetTimeout(); got != 30*time.Second {
		t.Errorf("expected 30s, got %v", got)
	}
}
