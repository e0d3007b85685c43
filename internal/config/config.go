// Package config loads the kiosk settings from the environment, an
// optional .env file and an optional config file.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. KIOSK_API_BASE_URL.
const EnvPrefix = "KIOSK"

type Config struct {
	APIBaseURL         string        `mapstructure:"api_base_url"`
	HTTPTimeout        time.Duration `mapstructure:"http_timeout"`
	Language           string        `mapstructure:"language"`
	STTURL             string        `mapstructure:"stt_url"`
	RecordCommand      string        `mapstructure:"record_command"`
	RecordSeconds      int           `mapstructure:"record_seconds"`
	ReceiptDir         string        `mapstructure:"receipt_dir"`
	LogFile            string        `mapstructure:"log_file"`
	LogLevel           string        `mapstructure:"log_level"`
	RegisterPatients   bool          `mapstructure:"register_patients"`
	BreakerEnabled     bool          `mapstructure:"breaker_enabled"`
	BreakerMaxFailures uint32        `mapstructure:"breaker_max_failures"`
	BreakerTimeout     time.Duration `mapstructure:"breaker_timeout"`
	StubAddr           string        `mapstructure:"stub_addr"`
}

var keys = []string{
	"api_base_url",
	"http_timeout",
	"language",
	"stt_url",
	"record_command",
	"record_seconds",
	"receipt_dir",
	"log_file",
	"log_level",
	"register_patients",
	"breaker_enabled",
	"breaker_max_failures",
	"breaker_timeout",
	"stub_addr",
}

// Load reads the configuration. path names an explicit config file (any
// format viper understands) and must exist when given; otherwise a .env in
// the working directory is used if present.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("api_base_url", "http://localhost:8000")
	v.SetDefault("http_timeout", 0)
	v.SetDefault("language", "vi-VN")
	v.SetDefault("stt_url", "")
	v.SetDefault("record_command", "arecord")
	v.SetDefault("record_seconds", 5)
	v.SetDefault("receipt_dir", ".")
	v.SetDefault("log_file", "medkiosk.log")
	v.SetDefault("log_level", "info")
	v.SetDefault("register_patients", false)
	v.SetDefault("breaker_enabled", false)
	v.SetDefault("breaker_max_failures", 5)
	v.SetDefault("breaker_timeout", 30*time.Second)
	v.SetDefault("stub_addr", ":8000")

	// Bind env vars explicitly so Unmarshal picks them up
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("bind %s: %w", k, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigFile(".env")
		// Try reading .env file, but don't fail if missing
		_ = v.ReadInConfig()
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")

	return cfg, nil
}

// Validate checks the values Load cannot check by type alone.
func (c *Config) Validate() error {
	if err := checkURL("api_base_url", c.APIBaseURL); err != nil {
		return err
	}
	if c.STTURL != "" {
		if err := checkURL("stt_url", c.STTURL); err != nil {
			return err
		}
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("http_timeout must not be negative, got %s", c.HTTPTimeout)
	}
	if strings.TrimSpace(c.Language) == "" {
		return fmt.Errorf("language is required")
	}
	if c.RecordSeconds < 1 || c.RecordSeconds > 60 {
		return fmt.Errorf("record_seconds must be between 1 and 60, got %d", c.RecordSeconds)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if c.BreakerEnabled {
		if c.BreakerMaxFailures == 0 {
			return fmt.Errorf("breaker_max_failures must be positive when breaker_enabled is true")
		}
		if c.BreakerTimeout <= 0 {
			return fmt.Errorf("breaker_timeout must be positive when breaker_enabled is true")
		}
	}
	return nil
}

// SpeechEnabled reports whether a transcription endpoint is configured.
func (c *Config) SpeechEnabled() bool {
	return c.STTURL != ""
}

func checkURL(key, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s is not a valid URL: %w", key, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s must be an http or https URL, got %q", key, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s has no host: %q", key, raw)
	}
	return nil
}
