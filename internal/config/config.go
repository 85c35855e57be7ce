package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// PublisherConfig holds settings for the upstream coupon endpoint.
type PublisherConfig struct {
	Endpoint       string `yaml:"endpoint"`        // Coupon redemption endpoint URL.
	GameCode       string `yaml:"game-code"`       // Fixed game code sent with every request.
	ChannelCode    int    `yaml:"channel-code"`    // Fixed channel code sent with every request.
	Language       string `yaml:"language"`        // Language code for publisher messages.
	Origin         string `yaml:"origin"`          // Origin header expected by the publisher.
	Referer        string `yaml:"referer"`         // Referer header expected by the publisher.
	UserAgent      string `yaml:"user-agent"`      // Browser-like user agent.
	TimeoutSeconds int    `yaml:"timeout-seconds"` // Request timeout in seconds.
}

// Config is the process configuration for the coupon relay.
type Config struct {
	Listen        string          `yaml:"listen"`         // HTTP listen address.
	DatabaseDSN   string          `yaml:"database-dsn"`   // GORM DSN (sqlite path or postgres URL).
	RedisAddr     string          `yaml:"redis-addr"`     // Redis address; empty disables the cache.
	RedisPassword string          `yaml:"redis-password"` // Redis password, if any.
	RedisDB       int             `yaml:"redis-db"`       // Redis logical database.
	LogLevel      string          `yaml:"log-level"`      // logrus level name.
	LogFile       string          `yaml:"log-file"`       // Rotating log file path; empty logs to stderr.
	HistoryPath   string          `yaml:"history-path"`   // Local redemption ledger file for the batch client.
	RelayURL      string          `yaml:"relay-url"`      // Base URL the batch client talks to.
	Publisher     PublisherConfig `yaml:"publisher"`
}

// Default returns the configuration used when no file or overrides exist.
func Default() Config {
	return Config{
		Listen:      ":8080",
		DatabaseDSN: "file:coupon-relay.db",
		RedisAddr:   "127.0.0.1:6379",
		LogLevel:    "info",
		HistoryPath: "coupon_history.json",
		RelayURL:    "http://127.0.0.1:8080",
		Publisher: PublisherConfig{
			Endpoint:       "https://coupon.netmarble.com/api/coupon",
			GameCode:       "tskgb",
			ChannelCode:    100,
			Language:       "en",
			Origin:         "https://coupon.netmarble.com",
			Referer:        "https://coupon.netmarble.com/tskgb",
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
			TimeoutSeconds: 20,
		},
	}
}

// Load reads the YAML config at path, falling back to defaults when the
// file does not exist, then applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if strings.TrimSpace(path) != "" {
		data, errRead := os.ReadFile(path)
		switch {
		case errRead == nil:
			if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, errUnmarshal)
			}
		case os.IsNotExist(errRead):
			// defaults apply
		default:
			return Config{}, fmt.Errorf("config: read %s: %w", path, errRead)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv overrides config fields from COUPON_RELAY_* environment variables.
func applyEnv(cfg *Config) {
	setString(&cfg.Listen, "COUPON_RELAY_LISTEN")
	setString(&cfg.DatabaseDSN, "COUPON_RELAY_DATABASE_DSN")
	setString(&cfg.RedisAddr, "COUPON_RELAY_REDIS_ADDR")
	setString(&cfg.RedisPassword, "COUPON_RELAY_REDIS_PASSWORD")
	setInt(&cfg.RedisDB, "COUPON_RELAY_REDIS_DB")
	setString(&cfg.LogLevel, "COUPON_RELAY_LOG_LEVEL")
	setString(&cfg.LogFile, "COUPON_RELAY_LOG_FILE")
	setString(&cfg.HistoryPath, "COUPON_RELAY_HISTORY_PATH")
	setString(&cfg.RelayURL, "COUPON_RELAY_URL")
	setString(&cfg.Publisher.Endpoint, "COUPON_RELAY_PUBLISHER_ENDPOINT")
	setString(&cfg.Publisher.Language, "COUPON_RELAY_PUBLISHER_LANGUAGE")
}

func setString(dst *string, key string) {
	if value, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(value)
		if trimmed != "" {
			*dst = trimmed
		}
	}
}

func setInt(dst *int, key string) {
	if value, ok := os.LookupEnv(key); ok {
		parsed, errParse := strconv.Atoi(strings.TrimSpace(value))
		if errParse == nil {
			*dst = parsed
		}
	}
}
