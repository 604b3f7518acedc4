// Package common provides shared utilities for tickerpress
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for tickerpress
type Config struct {
	Environment string          `toml:"environment"`
	Server      ServerConfig    `toml:"server"`
	Storage     StorageConfig   `toml:"storage"`
	Clients     ClientsConfig   `toml:"clients"`
	Scheduler   SchedulerConfig `toml:"scheduler"`
	Pipeline    PipelineConfig  `toml:"pipeline"`
	Logging     LoggingConfig   `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StorageConfig holds the embedded store path.
type StorageConfig struct {
	Path string `toml:"path"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	FMP       FMPConfig       `toml:"fmp"`
	Tradestie TradestieConfig `toml:"tradestie"`
	NewsAPI   NewsAPIConfig   `toml:"newsapi"`
	Yahoo     YahooConfig     `toml:"yahoo"`
	Gemini    GeminiConfig    `toml:"gemini"`
}

// FMPConfig holds Financial Modeling Prep API configuration
type FMPConfig struct {
	BaseURL   string `toml:"base_url"`
	APIKey    string `toml:"api_key"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *FMPConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// TradestieConfig holds the WSB trending feed configuration
type TradestieConfig struct {
	BaseURL string `toml:"base_url"`
	Timeout string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *TradestieConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// NewsAPIConfig holds NewsAPI.org configuration
type NewsAPIConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
	Timeout string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *NewsAPIConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// YahooConfig holds the Yahoo Finance news search configuration
type YahooConfig struct {
	BaseURL string `toml:"base_url"`
	Timeout string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *YahooConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
}

// SchedulerConfig controls the daily pipeline cron.
type SchedulerConfig struct {
	Enabled  bool   `toml:"enabled"`
	Cron     string `toml:"cron"`     // default "30 16 * * 1-5"
	Timezone string `toml:"timezone"` // IANA zone, default "America/New_York"
}

// PipelineConfig controls the daily movers pipeline.
type PipelineConfig struct {
	TopN        int `toml:"top_n"`
	UniverseCap int `toml:"universe_cap"` // max tickers fetched per run (rate-limit clamp)
}

// GetTopN returns the configured mover count, defaulting to 5.
func (c *PipelineConfig) GetTopN() int {
	if c.TopN <= 0 {
		return 5
	}
	return c.TopN
}

// GetUniverseCap returns the configured universe cap, defaulting to 50.
func (c *PipelineConfig) GetUniverseCap() int {
	if c.UniverseCap <= 0 {
		return 50
	}
	return c.UniverseCap
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `toml:"level"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Storage: StorageConfig{
			Path: "data/tickerpress",
		},
		Clients: ClientsConfig{
			FMP: FMPConfig{
				BaseURL:   "https://financialmodelingprep.com/api/v3",
				RateLimit: 5,
				Timeout:   "10s",
			},
			Tradestie: TradestieConfig{
				BaseURL: "https://tradestie.com/api/v1",
				Timeout: "10s",
			},
			NewsAPI: NewsAPIConfig{
				BaseURL: "https://newsapi.org/v2",
				Timeout: "10s",
			},
			Yahoo: YahooConfig{
				BaseURL: "https://query1.finance.yahoo.com",
				Timeout: "10s",
			},
			Gemini: GeminiConfig{
				Model: "gemini-2.0-flash",
			},
		},
		Scheduler: SchedulerConfig{
			Enabled:  true,
			Cron:     "30 16 * * 1-5",
			Timezone: "America/New_York",
		},
		Pipeline: PipelineConfig{
			TopN:        5,
			UniverseCap: 50,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	// Apply environment overrides
	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("TICKERPRESS_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("TICKERPRESS_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("TICKERPRESS_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("TICKERPRESS_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if path := os.Getenv("TICKERPRESS_DATA_PATH"); path != "" {
		config.Storage.Path = path
	}

	if v := os.Getenv("FMP_API_KEY"); v != "" {
		config.Clients.FMP.APIKey = v
	}
	if v := os.Getenv("NEWS_API_KEY"); v != "" {
		config.Clients.NewsAPI.APIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		config.Clients.Gemini.APIKey = v
	}

	if v := os.Getenv("TICKERPRESS_SCHEDULER_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			config.Scheduler.Enabled = b
		}
	}
	if v := os.Getenv("TICKERPRESS_SCHEDULER_CRON"); v != "" {
		config.Scheduler.Cron = v
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
