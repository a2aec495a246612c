// Package config loads the gateway configuration from a JSON file with
// POSTWING_* environment variables layered on top.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// FlexibleStringSlice is a []string that also accepts JSON numbers,
// so allow_from can contain both "123" and 123.
type FlexibleStringSlice []string

func (f *FlexibleStringSlice) UnmarshalJSON(data []byte) error {
	// Try []string first
	var ss []string
	if err := json.Unmarshal(data, &ss); err == nil {
		*f = ss
		return nil
	}

	// Try []interface{} to handle mixed types
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	result := make([]string, 0, len(raw))
	for _, v := range raw {
		switch val := v.(type) {
		case string:
			result = append(result, val)
		case float64:
			result = append(result, fmt.Sprintf("%.0f", val))
		default:
			result = append(result, fmt.Sprintf("%v", val))
		}
	}
	*f = result
	return nil
}

type Config struct {
	Telegram  TelegramConfig  `json:"telegram"`
	Mirror    MirrorConfig    `json:"mirror"`
	Watch     WatchConfig     `json:"watch"`
	Database  DatabaseConfig  `json:"database"`
	Translate TranslateConfig `json:"translate"`
	AI        AIConfig        `json:"ai"`
	Video     VideoConfig     `json:"video"`
	Gateway   GatewayConfig   `json:"gateway"`
}

type TelegramConfig struct {
	Token     string              `env:"POSTWING_TELEGRAM_TOKEN"      json:"token"`
	Proxy     string              `env:"POSTWING_TELEGRAM_PROXY"      json:"proxy"`
	AllowFrom FlexibleStringSlice `env:"POSTWING_TELEGRAM_ALLOW_FROM" json:"allow_from"`
}

// MirrorConfig points at the two upstream mirrors: the scraping mirror
// serving post content and the RSS mirror serving feeds and account info.
type MirrorConfig struct {
	FxBaseURL     string `env:"POSTWING_MIRROR_FX_BASE_URL"     json:"fx_base_url"`
	NitterBaseURL string `env:"POSTWING_MIRROR_NITTER_BASE_URL" json:"nitter_base_url"`
}

type WatchConfig struct {
	Enabled  bool   `env:"POSTWING_WATCH_ENABLED"  json:"enabled"`
	Schedule string `env:"POSTWING_WATCH_SCHEDULE" json:"schedule"` // cron expression
	Limit    int    `env:"POSTWING_WATCH_LIMIT"    json:"limit"`    // posts per account per cycle
}

type DatabaseConfig struct {
	URL string `env:"POSTWING_DATABASE_URL" json:"url"` // empty means in-memory store
}

type TranslateConfig struct {
	Enabled bool   `env:"POSTWING_TRANSLATE_ENABLED"  json:"enabled"`
	BaseURL string `env:"POSTWING_TRANSLATE_BASE_URL" json:"base_url"`
}

type AIConfig struct {
	Enabled bool   `env:"POSTWING_AI_ENABLED"  json:"enabled"`
	APIKey  string `env:"POSTWING_AI_API_KEY"  json:"api_key"`
	APIBase string `env:"POSTWING_AI_API_BASE" json:"api_base"`
	Model   string `env:"POSTWING_AI_MODEL"    json:"model"`
}

type VideoConfig struct {
	Enabled        bool   `env:"POSTWING_VIDEO_ENABLED"         json:"enabled"`
	BinPath        string `env:"POSTWING_VIDEO_BIN_PATH"        json:"bin_path"`
	TimeoutMinutes int    `env:"POSTWING_VIDEO_TIMEOUT_MINUTES" json:"timeout_minutes"`
}

type GatewayConfig struct {
	Host string `env:"POSTWING_GATEWAY_HOST" json:"host"`
	Port int    `env:"POSTWING_GATEWAY_PORT" json:"port"`
}

func DefaultConfig() *Config {
	return &Config{
		Mirror: MirrorConfig{
			FxBaseURL:     "https://api.fxtwitter.com",
			NitterBaseURL: "https://nitter.net",
		},
		Watch: WatchConfig{
			Schedule: "*/5 * * * *",
			Limit:    5,
		},
		Translate: TranslateConfig{
			BaseURL: "https://translate.googleapis.com",
		},
		AI: AIConfig{
			Model: "gpt-4o-mini",
		},
		Video: VideoConfig{
			BinPath:        "yt-dlp",
			TimeoutMinutes: 5,
		},
		Gateway: GatewayConfig{
			Host: "0.0.0.0",
			Port: 18790,
		},
	}
}

// LoadConfig reads the JSON file at path on top of the defaults and then
// applies environment overrides. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := env.Parse(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// Validate checks the fields the gateway cannot start without.
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return errors.New("telegram token is required")
	}
	if c.Mirror.FxBaseURL == "" || c.Mirror.NitterBaseURL == "" {
		return errors.New("mirror base urls are required")
	}
	if c.Watch.Enabled && c.Watch.Schedule == "" {
		return errors.New("watch schedule is required when watch is enabled")
	}
	if c.AI.Enabled && c.AI.APIKey == "" {
		return errors.New("ai api key is required when ai is enabled")
	}
	return nil
}
