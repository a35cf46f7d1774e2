package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.Port != "8081" {
		t.Fatalf("default port = %q", cfg.Port)
	}
	if !strings.Contains(cfg.RatePrimaryDated, "{date}") || !strings.Contains(cfg.RatePrimaryDated, "{currency}") {
		t.Fatalf("dated template missing placeholders: %q", cfg.RatePrimaryDated)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("RATE_TIER_TIMEOUT", "2s")
	t.Setenv("RATE_CACHE_SIZE", "64")

	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("port = %q", cfg.Port)
	}
	if cfg.RateTierTimeout != 2*time.Second {
		t.Fatalf("tier timeout = %v", cfg.RateTierTimeout)
	}
	if cfg.RateCacheSize != 64 {
		t.Fatalf("cache size = %d", cfg.RateCacheSize)
	}
}

func TestValidateCollectsErrors(t *testing.T) {
	cfg := Load()
	cfg.Port = "notaport"
	cfg.SQLiteDBPath = ""
	cfg.RateMirrorLatest = "ftp://mirror/{currency}"
	cfg.RateCacheSize = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected error")
	}
	for _, want := range []string{"invalid port", "path cannot be empty", "RATE_MIRROR_LATEST_URL", "cache size"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error should mention %q, got:\n%v", want, err)
		}
	}
}

func TestValidateRequiresCurrencyPlaceholder(t *testing.T) {
	cfg := Load()
	cfg.RatePrimaryDated = "https://example.com/rates.json"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "{currency}") {
		t.Fatalf("got %v, want placeholder complaint", err)
	}
}
