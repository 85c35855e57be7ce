package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen != ":8080" {
		t.Fatalf("listen = %q, want :8080", cfg.Listen)
	}
	if cfg.Publisher.GameCode != "tskgb" {
		t.Fatalf("game code = %q, want tskgb", cfg.Publisher.GameCode)
	}
	if cfg.Publisher.ChannelCode != 100 {
		t.Fatalf("channel code = %d, want 100", cfg.Publisher.ChannelCode)
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "relay.yaml")
	body := "listen: \":9090\"\npublisher:\n  language: ko\n"
	if errWrite := os.WriteFile(path, []byte(body), 0o600); errWrite != nil {
		t.Fatalf("write config: %v", errWrite)
	}

	t.Setenv("COUPON_RELAY_REDIS_ADDR", "redis.internal:6380")
	t.Setenv("COUPON_RELAY_REDIS_DB", "3")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Listen != ":9090" {
		t.Fatalf("listen = %q, want :9090", cfg.Listen)
	}
	if cfg.Publisher.Language != "ko" {
		t.Fatalf("language = %q, want ko", cfg.Publisher.Language)
	}
	if cfg.RedisAddr != "redis.internal:6380" {
		t.Fatalf("redis addr = %q", cfg.RedisAddr)
	}
	if cfg.RedisDB != 3 {
		t.Fatalf("redis db = %d, want 3", cfg.RedisDB)
	}
	// file did not touch the endpoint, default must survive
	if cfg.Publisher.Endpoint == "" {
		t.Fatalf("endpoint lost on partial config")
	}
}
