// Package config loads the plantmonitor configuration from YAML and the
// environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Server    ServerConfig    `yaml:"server"`
	Dashboard DashboardConfig `yaml:"dashboard"`
}

// TelemetryConfig points at the crop-manager server
type TelemetryConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type ServerConfig struct {
	Port           string   `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type DashboardConfig struct {
	Timezone     string `yaml:"timezone"`
	DiscardStale *bool  `yaml:"discard_stale"`
	StableColors *bool  `yaml:"stable_colors"`
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads path (optional), applies environment overrides and defaults and
// validates the result.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv("TELEMETRY_BASE_URL"); ok {
		c.Telemetry.BaseURL = v
	}
	if v, ok := os.LookupEnv("TELEMETRY_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid TELEMETRY_TIMEOUT: %w", err)
		}
		c.Telemetry.Timeout = d
	}
	if v, ok := os.LookupEnv("SERVER_PORT"); ok {
		c.Server.Port = v
	}
	if v, ok := os.LookupEnv("SERVER_ALLOWED_ORIGINS"); ok {
		c.Server.AllowedOrigins = splitOrigins(v)
	}
	if v, ok := os.LookupEnv("DASHBOARD_TIMEZONE"); ok {
		c.Dashboard.Timezone = v
	}
	if v, ok := os.LookupEnv("DASHBOARD_DISCARD_STALE"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid DASHBOARD_DISCARD_STALE: %w", err)
		}
		c.Dashboard.DiscardStale = &b
	}
	if v, ok := os.LookupEnv("DASHBOARD_STABLE_COLORS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid DASHBOARD_STABLE_COLORS: %w", err)
		}
		c.Dashboard.StableColors = &b
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Telemetry.BaseURL == "" {
		c.Telemetry.BaseURL = "http://localhost:5000"
	}
	c.Telemetry.BaseURL = strings.TrimRight(c.Telemetry.BaseURL, "/")
	if c.Telemetry.Timeout == 0 {
		c.Telemetry.Timeout = 10 * time.Second
	}
	if c.Server.Port == "" {
		c.Server.Port = "8059"
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{
			"http://localhost:5173",
			"http://localhost:3000",
		}
	}
	if c.Dashboard.Timezone == "" {
		c.Dashboard.Timezone = "Local"
	}
	if c.Dashboard.DiscardStale == nil {
		v := true
		c.Dashboard.DiscardStale = &v
	}
	if c.Dashboard.StableColors == nil {
		v := true
		c.Dashboard.StableColors = &v
	}
}

func (c *Config) validate() error {
	u, err := url.Parse(c.Telemetry.BaseURL)
	if err != nil {
		return fmt.Errorf("telemetry.base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("telemetry.base_url must be http or https, got %q", c.Telemetry.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("telemetry.base_url has no host: %q", c.Telemetry.BaseURL)
	}
	if c.Telemetry.Timeout < 0 {
		return fmt.Errorf("telemetry.timeout must be positive, got %s", c.Telemetry.Timeout)
	}
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("server.port must be numeric, got %q", c.Server.Port)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves the dashboard timezone
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Dashboard.Timezone)
	if err != nil {
		return nil, fmt.Errorf("dashboard.timezone: %w", err)
	}
	return loc, nil
}

// Addr returns the listen address of the HTTP server
func (c *Config) Addr() string {
	return ":" + c.Server.Port
}

func splitOrigins(v string) []string {
	var origins []string
	for _, origin := range strings.Split(v, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}
