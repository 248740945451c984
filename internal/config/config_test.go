package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsWhenNoFilePresent(t *testing.T) {
	l := NewLoader(t.TempDir())
	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("expected default logging level/format, got %+v", cfg.Logging)
	}
	if cfg.Scanner.MaxConcurrentScans != 100 {
		t.Errorf("expected default max_concurrent_scans 100, got %d", cfg.Scanner.MaxConcurrentScans)
	}
}

func TestLoadReadsYAMLFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
logging:
  level: debug
  format: json
scanner:
  initial_pps: 50
  min_pps: 10
  max_pps: 500
`
	if err := os.WriteFile(filepath.Join(dir, "scanforge.yaml"), []byte(yaml), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := NewLoader(dir).Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("expected overridden logging fields, got %+v", cfg.Logging)
	}
	if cfg.Scanner.InitialPps != 50 {
		t.Errorf("expected initial_pps 50, got %d", cfg.Scanner.InitialPps)
	}
}

func TestValidateRejectsInvertedThrottleThresholds(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.Throttling.SuccessThreshold = 0.3
	cfg.Throttling.FailureThreshold = 0.5
	if err := Validate(&cfg); err == nil {
		t.Error("expected an error when success_threshold <= failure_threshold")
	}
}

func TestValidateRejectsInitialPpsOutOfBand(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.Scanner.InitialPps = 5000
	if err := Validate(&cfg); err == nil {
		t.Error("expected an error when initial_pps exceeds max_pps")
	}
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	cfg := defaultTestConfig()
	cfg.Logging.Level = "verbose"
	if err := Validate(&cfg); err == nil {
		t.Error("expected an error for an unrecognized logging level")
	}
}

func defaultTestConfig() Config {
	l := NewLoader("")
	setDefaults(l.v)
	var cfg Config
	_ = l.v.Unmarshal(&cfg)
	return cfg
}
