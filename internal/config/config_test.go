package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("JWT_ACCESS_TTL", "not-a-duration")
	t.Setenv("DEMO_BALANCE", "abc")

	cfg := Load()
	if cfg.StoreDriver != StoreMemory {
		t.Fatalf("expected memory driver, got %q", cfg.StoreDriver)
	}
	if cfg.JWTAccessTTL != 24*time.Hour {
		t.Fatalf("expected fallback ttl 24h, got %s", cfg.JWTAccessTTL)
	}
	if cfg.DemoBalance != 1250 {
		t.Fatalf("expected fallback demo balance 1250, got %d", cfg.DemoBalance)
	}
	if cfg.DemoPackageID != "pkg-pro" {
		t.Fatalf("expected demo package pkg-pro, got %q", cfg.DemoPackageID)
	}
}

func TestParseStringSlice(t *testing.T) {
	got := parseStringSlice("http://a,,http://b")
	if len(got) != 2 || got[0] != "http://a" || got[1] != "http://b" {
		t.Fatalf("unexpected origins: %v", got)
	}
	if len(parseStringSlice("")) != 0 {
		t.Fatal("expected empty slice")
	}
}

func TestLocationFallsBackToUTC(t *testing.T) {
	cfg := &Config{QuotaTimezone: "Nowhere/Invalid"}
	if cfg.Location() != time.UTC {
		t.Fatalf("expected UTC fallback, got %s", cfg.Location())
	}
}
