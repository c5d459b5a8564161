// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/user/framescribe/pkg/adapters/httpfetch"
	"github.com/user/framescribe/pkg/adapters/ollama"
	"github.com/user/framescribe/pkg/describer"
	"github.com/user/framescribe/pkg/orchestrator"
	"github.com/user/framescribe/pkg/pipeline"
	"github.com/user/framescribe/pkg/ports"
)

// Config represents the full configuration for framescribe.
type Config struct {
	// Captioning
	Threshold     float64 `yaml:"threshold"`
	MinConfidence float32 `yaml:"min_confidence"`
	MaxCaptions   int     `yaml:"max_captions"`

	// Oracles
	Ollama OllamaConfig `yaml:"ollama"`

	// Fetching
	Fetch FetchConfig `yaml:"fetch"`

	// Result cache
	Cache CacheConfig `yaml:"cache"`

	// HTTP server
	Listen string `yaml:"listen"`

	// Logging
	LogLevel      ports.LogLevel `yaml:"log_level"`
	LogTimestamps bool           `yaml:"log_timestamps"`

	// Debug
	Debug    bool   `yaml:"debug"`
	DebugDir string `yaml:"debug_dir"`
}

// OllamaConfig configures the caption and summary oracles.
type OllamaConfig struct {
	BaseURL      string        `yaml:"base_url"` // empty = OLLAMA_HOST or local default
	CaptionModel string        `yaml:"caption_model"`
	SummaryModel string        `yaml:"summary_model"`
	Timeout      time.Duration `yaml:"timeout"`
	RatePerSec   float64       `yaml:"rate_per_sec"` // 0 = unlimited
	Burst        int           `yaml:"burst"`
}

// FetchConfig configures the HTTP fetcher.
type FetchConfig struct {
	UserAgent     string        `yaml:"user_agent"`
	MaxBytes      int64         `yaml:"max_bytes"` // 0 = unlimited
	HeaderTimeout time.Duration `yaml:"header_timeout"`
}

// CacheConfig configures result memoization.
type CacheConfig struct {
	TTL      time.Duration `yaml:"ttl"`
	ErrorTTL time.Duration `yaml:"error_ttl"`
}

// Defaults returns a Config with default values.
func Defaults() Config {
	return Config{
		Threshold:     pipeline.DefaultSimilarityThreshold,
		MinConfidence: pipeline.DefaultMinConfidence,
		MaxCaptions:   pipeline.DefaultMaxCaptions,

		Ollama: OllamaConfig{
			CaptionModel: ollama.DefaultModel,
			Timeout:      2 * time.Minute,
			Burst:        1,
		},

		Fetch: FetchConfig{
			UserAgent:     "framescribe",
			HeaderTimeout: 30 * time.Second,
		},

		Cache: CacheConfig{
			TTL:      describer.DefaultTTL,
			ErrorTTL: describer.DefaultErrorTTL,
		},

		Listen: ":8080",

		LogLevel: ports.LevelInfo,

		DebugDir: "./debug",
	}
}

// LoadFromFile loads configuration from a YAML file. Keys absent from the
// file keep their default values.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Defaults(), err
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Defaults()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	if c.Threshold < 0 || c.Threshold > 1 {
		errs = append(errs, fmt.Errorf("threshold must be within [0, 1], got %g", c.Threshold))
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		errs = append(errs, fmt.Errorf("min_confidence must be within [0, 1], got %g", c.MinConfidence))
	}
	if c.MaxCaptions < 1 {
		errs = append(errs, fmt.Errorf("max_captions must be at least 1, got %d", c.MaxCaptions))
	}
	if c.Ollama.RatePerSec < 0 {
		errs = append(errs, fmt.Errorf("ollama.rate_per_sec must not be negative, got %g", c.Ollama.RatePerSec))
	}
	if c.Fetch.MaxBytes < 0 {
		errs = append(errs, fmt.Errorf("fetch.max_bytes must not be negative, got %d", c.Fetch.MaxBytes))
	}
	if c.Cache.TTL < 0 || c.Cache.ErrorTTL < 0 {
		errs = append(errs, errors.New("cache ttl values must not be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// ToOrchestratorConfig converts Config to orchestrator.Config.
func (c Config) ToOrchestratorConfig() orchestrator.Config {
	return orchestrator.Config{
		Threshold:     c.Threshold,
		MinConfidence: c.MinConfidence,
		MaxCaptions:   c.MaxCaptions,
	}
}

// OllamaOptions converts the oracle settings to ollama.Options.
func (c Config) OllamaOptions() ollama.Options {
	return ollama.Options{
		BaseURL:      c.Ollama.BaseURL,
		CaptionModel: c.Ollama.CaptionModel,
		SummaryModel: c.Ollama.SummaryModel,
		Timeout:      c.Ollama.Timeout,
	}
}

// FetchOptions converts the fetch settings to httpfetch.Options.
func (c Config) FetchOptions() httpfetch.Options {
	return httpfetch.Options{
		UserAgent:             c.Fetch.UserAgent,
		MaxBytes:              c.Fetch.MaxBytes,
		ResponseHeaderTimeout: c.Fetch.HeaderTimeout,
	}
}

// DescriberOptions converts the cache settings to describer.Options.
func (c Config) DescriberOptions() describer.Options {
	opts := describer.DefaultOptions()
	opts.Base = c.ToOrchestratorConfig()
	opts.TTL = c.Cache.TTL
	opts.ErrorTTL = c.Cache.ErrorTTL
	return opts
}
