package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Addr != ":3000" {
		t.Fatalf("expected :3000, got %s", cfg.HTTP.Addr)
	}
	if cfg.Dispatch.RadiusMiles != 15 || cfg.Dispatch.CandidateLimit != 1 {
		t.Fatalf("unexpected dispatch defaults: %+v", cfg.Dispatch)
	}
	if cfg.Dispatch.Timeout != 2*time.Second {
		t.Fatalf("expected 2s timeout, got %s", cfg.Dispatch.Timeout)
	}
	if cfg.Pricing.FlatFeeCents != 5000 {
		t.Fatalf("expected 5000 cents, got %d", cfg.Pricing.FlatFeeCents)
	}
	if cfg.Dispatch != DefaultDispatch() {
		t.Fatalf("env defaults drifted from DefaultDispatch: %+v", cfg.Dispatch)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SUPPORTCARR_DISPATCH_RADIUS_MILES", "7.5")
	t.Setenv("SUPPORTCARR_DISPATCH_LIMIT", "3")
	t.Setenv("SUPPORTCARR_DISPATCH_SKIP_BUSY", "true")
	t.Setenv("SUPPORTCARR_DISPATCH_KEY_PREFIX", "test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Dispatch.RadiusMiles != 7.5 || cfg.Dispatch.CandidateLimit != 3 {
		t.Fatalf("overrides not applied: %+v", cfg.Dispatch)
	}
	if !cfg.Dispatch.SkipBusyPilots || cfg.Dispatch.KeyPrefix != "test" {
		t.Fatalf("overrides not applied: %+v", cfg.Dispatch)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string][2]string{
		"zero radius":       {"SUPPORTCARR_DISPATCH_RADIUS_MILES", "0"},
		"negative limit":    {"SUPPORTCARR_DISPATCH_LIMIT", "-1"},
		"negative fee":      {"SUPPORTCARR_FLAT_FEE_CENTS", "-10"},
		"token without url": {"SUPPORTCARR_TWILIO_AUTH_TOKEN", "secret"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", kv[0], kv[1])
			}
		})
	}
}
