package config

import "testing"

func TestLoad_UsesDocumentedDefaultsWhenUnset(t *testing.T) {
	cfg := Load()

	if cfg.MaxSessions != 100 {
		t.Errorf("MaxSessions default = %d, want 100", cfg.MaxSessions)
	}
	if cfg.QueueDepth != 256 {
		t.Errorf("QueueDepth default = %d, want 256", cfg.QueueDepth)
	}
	if cfg.HeartbeatSeconds != 30 {
		t.Errorf("HeartbeatSeconds default = %d, want 30", cfg.HeartbeatSeconds)
	}
	if cfg.DropThreshold != 64 {
		t.Errorf("DropThreshold default = %d, want 64", cfg.DropThreshold)
	}
	if cfg.AggregatorGraceSeconds != 60 {
		t.Errorf("AggregatorGraceSeconds default = %d, want 60", cfg.AggregatorGraceSeconds)
	}
	if cfg.HistoricalTimeoutMs != 10000 {
		t.Errorf("HistoricalTimeoutMs default = %d, want 10000", cfg.HistoricalTimeoutMs)
	}
	if len(cfg.DefaultTimeframes) != 0 {
		t.Errorf("DefaultTimeframes default should be empty, got %v", cfg.DefaultTimeframes)
	}
}

func TestLoad_OverridesFromEnv(t *testing.T) {
	t.Setenv("MAX_SESSIONS", "5")
	t.Setenv("DEFAULT_TIMEFRAMES", "1m, 5m ,15m")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg := Load()

	if cfg.MaxSessions != 5 {
		t.Errorf("MaxSessions = %d, want 5", cfg.MaxSessions)
	}
	want := []string{"1m", "5m", "15m"}
	if len(cfg.DefaultTimeframes) != len(want) {
		t.Fatalf("DefaultTimeframes = %v, want %v", cfg.DefaultTimeframes, want)
	}
	for i, tf := range want {
		if cfg.DefaultTimeframes[i] != tf {
			t.Errorf("DefaultTimeframes[%d] = %q, want %q", i, cfg.DefaultTimeframes[i], tf)
		}
	}
	if len(cfg.CORSOrigins) != 2 {
		t.Errorf("CORSOrigins = %v, want 2 entries", cfg.CORSOrigins)
	}
}

func TestLoad_FallsBackOnInvalidInt(t *testing.T) {
	t.Setenv("MAX_SESSIONS", "not-a-number")

	cfg := Load()

	if cfg.MaxSessions != 100 {
		t.Errorf("MaxSessions = %d, want fallback 100 on invalid input", cfg.MaxSessions)
	}
}

func TestHistoricalTimeout_ConvertsMillisecondsToDuration(t *testing.T) {
	cfg := &Config{HistoricalTimeoutMs: 2500}
	if got := cfg.HistoricalTimeout(); got.Milliseconds() != 2500 {
		t.Errorf("HistoricalTimeout() = %v, want 2500ms", got)
	}
}
