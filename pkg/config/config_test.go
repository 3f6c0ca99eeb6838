package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Telemetry.BaseURL != "http://localhost:5000" {
		t.Errorf("Expected default base URL, got %s", cfg.Telemetry.BaseURL)
	}
	if cfg.Telemetry.Timeout != 10*time.Second {
		t.Errorf("Expected default timeout 10s, got %s", cfg.Telemetry.Timeout)
	}
	if cfg.Server.Port != "8059" {
		t.Errorf("Expected default port 8059, got %s", cfg.Server.Port)
	}
	if len(cfg.Server.AllowedOrigins) != 2 {
		t.Errorf("Expected 2 default origins, got %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Dashboard.Timezone != "Local" {
		t.Errorf("Expected Local timezone, got %s", cfg.Dashboard.Timezone)
	}
	if !*cfg.Dashboard.DiscardStale || !*cfg.Dashboard.StableColors {
		t.Error("Expected stale guard and stable colors on by default")
	}
	if cfg.Addr() != ":8059" {
		t.Errorf("Expected addr :8059, got %s", cfg.Addr())
	}
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
telemetry:
  base_url: http://farm.local:5000/
  timeout: 3s
server:
  port: "9090"
  allowed_origins:
    - https://dashboard.farm.local
dashboard:
  timezone: UTC
  discard_stale: false
  stable_colors: false
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Telemetry.BaseURL != "http://farm.local:5000" {
		t.Errorf("Expected trailing slash trimmed, got %s", cfg.Telemetry.BaseURL)
	}
	if cfg.Telemetry.Timeout != 3*time.Second {
		t.Errorf("Expected timeout 3s, got %s", cfg.Telemetry.Timeout)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.Server.Port)
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "https://dashboard.farm.local" {
		t.Errorf("Unexpected origins %v", cfg.Server.AllowedOrigins)
	}
	if *cfg.Dashboard.DiscardStale || *cfg.Dashboard.StableColors {
		t.Error("Expected explicit false values to be kept")
	}

	loc, err := cfg.Location()
	if err != nil || loc != time.UTC {
		t.Errorf("Expected UTC location, got %v (%v)", loc, err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfig(t, `
telemetry:
  base_url: http://farm.local:5000
`)

	t.Setenv("TELEMETRY_BASE_URL", "https://telemetry.example.com")
	t.Setenv("TELEMETRY_TIMEOUT", "2s")
	t.Setenv("SERVER_PORT", "8100")
	t.Setenv("SERVER_ALLOWED_ORIGINS", " http://a.example , http://b.example ,")
	t.Setenv("DASHBOARD_TIMEZONE", "UTC")
	t.Setenv("DASHBOARD_DISCARD_STALE", "false")
	t.Setenv("DASHBOARD_STABLE_COLORS", "0")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Telemetry.BaseURL != "https://telemetry.example.com" {
		t.Errorf("Expected env base URL, got %s", cfg.Telemetry.BaseURL)
	}
	if cfg.Telemetry.Timeout != 2*time.Second {
		t.Errorf("Expected env timeout, got %s", cfg.Telemetry.Timeout)
	}
	if cfg.Server.Port != "8100" {
		t.Errorf("Expected env port, got %s", cfg.Server.Port)
	}
	if strings.Join(cfg.Server.AllowedOrigins, "|") != "http://a.example|http://b.example" {
		t.Errorf("Unexpected origins %v", cfg.Server.AllowedOrigins)
	}
	if *cfg.Dashboard.DiscardStale {
		t.Error("Expected DASHBOARD_DISCARD_STALE=false to apply")
	}
	if *cfg.Dashboard.StableColors {
		t.Error("Expected DASHBOARD_STABLE_COLORS=0 to apply")
	}
}

func TestLoad_Errors(t *testing.T) {
	testCases := []struct {
		name     string
		yaml     string
		env      map[string]string
		errorMsg string
	}{
		{name: "Bad scheme", yaml: "telemetry:\n  base_url: ftp://farm.local\n", errorMsg: "http or https"},
		{name: "No host", yaml: "telemetry:\n  base_url: http://\n", errorMsg: "no host"},
		{name: "Bad port", yaml: "server:\n  port: eighty\n", errorMsg: "server.port"},
		{name: "Bad timezone", yaml: "dashboard:\n  timezone: Mars/Olympus\n", errorMsg: "dashboard.timezone"},
		{name: "Bad YAML", yaml: "telemetry: [\n", errorMsg: "failed to parse config"},
		{name: "Bad env timeout", env: map[string]string{"TELEMETRY_TIMEOUT": "soon"}, errorMsg: "TELEMETRY_TIMEOUT"},
		{name: "Bad env bool", env: map[string]string{"DASHBOARD_DISCARD_STALE": "maybe"}, errorMsg: "DASHBOARD_DISCARD_STALE"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeConfig(t, tc.yaml))
			if err == nil {
				t.Fatal("Expected error but got none")
			}
			if !strings.Contains(err.Error(), tc.errorMsg) {
				t.Errorf("Expected error containing '%s', got '%s'", tc.errorMsg, err.Error())
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Telemetry.BaseURL == "" || cfg.Server.Port == "" {
		t.Error("Expected defaults to be applied")
	}
}
