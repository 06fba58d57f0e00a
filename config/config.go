// Package config loads the bot configuration from a YAML file plus
// CONSULTA_-prefixed environment overrides.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the bot process.
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Server    ServerConfig    `mapstructure:"server"`
	Upstreams UpstreamsConfig `mapstructure:"upstreams"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Fetch     FetchConfig     `mapstructure:"fetch"`
	Health    HealthConfig    `mapstructure:"health"`
}

type GeneralConfig struct {
	Debug bool `mapstructure:"debug"`
}

// TelegramConfig selects polling or webhook mode. InlineLimit is the
// formatted-text length above which results are sent as a document
// instead of an inline message.
type TelegramConfig struct {
	Token       string        `mapstructure:"token"`
	Mode        string        `mapstructure:"mode"` // polling | webhook
	WebhookURL  string        `mapstructure:"webhook_url"`
	InlineLimit int           `mapstructure:"inline_limit"`
	SessionTTL  time.Duration `mapstructure:"session_ttl"`
}

type ServerConfig struct {
	Listen   string `mapstructure:"listen"`
	APIToken string `mapstructure:"api_token"`
}

type UpstreamsConfig struct {
	ApisBrasilBase   string `mapstructure:"apis_brasil_base"`
	FetchBrasilBase  string `mapstructure:"fetch_brasil_base"`
	FetchBrasilToken string `mapstructure:"fetch_brasil_token"`
}

type CacheConfig struct {
	Backend    string        `mapstructure:"backend"` // memory | redis
	TTL        time.Duration `mapstructure:"ttl"`
	MaxEntries int           `mapstructure:"max_entries"`
	Redis      RedisConfig   `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type FetchConfig struct {
	Timeout time.Duration   `mapstructure:"timeout"`
	Retries int             `mapstructure:"retries"`
	Backoff []time.Duration `mapstructure:"backoff"`
}

type HealthConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Interval     time.Duration `mapstructure:"interval"`
	ProbeTimeout time.Duration `mapstructure:"probe_timeout"`
	FastUnder    time.Duration `mapstructure:"fast_under"`
	DownOver     time.Duration `mapstructure:"down_over"`
}

func (c *Config) Validate() error {
	if c.Telegram.Mode != "polling" && c.Telegram.Mode != "webhook" {
		return fmt.Errorf("telegram.mode must be polling or webhook, got %q", c.Telegram.Mode)
	}
	if c.Telegram.Mode == "webhook" && c.Telegram.WebhookURL == "" {
		return fmt.Errorf("telegram.webhook_url required in webhook mode")
	}
	if c.Cache.Backend != "memory" && c.Cache.Backend != "redis" {
		return fmt.Errorf("cache.backend must be memory or redis, got %q", c.Cache.Backend)
	}
	if c.Cache.Backend == "redis" && c.Cache.Redis.Addr == "" {
		return fmt.Errorf("cache.redis.addr required for the redis backend")
	}
	return nil
}

// Load reads config.yaml from path (or the working directory when
// empty), applies defaults and environment overrides, and validates
// the result. A missing config file is fine; env vars and defaults
// carry it.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if path != "" {
		v.AddConfigPath(path)
	}
	v.AddConfigPath(".")

	v.SetEnvPrefix("CONSULTA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("general.debug", false)

	v.SetDefault("telegram.mode", "polling")
	v.SetDefault("telegram.inline_limit", 3500)
	v.SetDefault("telegram.session_ttl", 15*time.Minute)

	v.SetDefault("server.listen", ":8000")

	v.SetDefault("upstreams.apis_brasil_base", "https://apis-brasil.shop/apis/")
	v.SetDefault("upstreams.fetch_brasil_base", "https://api.fetchbrasil.com.br/")

	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.ttl", 10*time.Minute)
	v.SetDefault("cache.max_entries", 512)

	v.SetDefault("fetch.timeout", 40*time.Second)
	v.SetDefault("fetch.retries", 2)
	v.SetDefault("fetch.backoff", []time.Duration{1 * time.Second, 2 * time.Second, 5 * time.Second})

	v.SetDefault("health.enabled", true)
	v.SetDefault("health.interval", 5*time.Minute)
	v.SetDefault("health.probe_timeout", 8*time.Second)
	v.SetDefault("health.fast_under", 2*time.Second)
	v.SetDefault("health.down_over", 6*time.Second)
}
