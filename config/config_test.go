package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultAnalysisConfigIsValid(t *testing.T) {
	cfg := DefaultAnalysisConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.UpdateRate.PerSecond() != 8 {
		t.Errorf("default rate mismatch: expected 8, got %d", cfg.UpdateRate.PerSecond())
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AnalysisConfig)
	}{
		{"buffer too small", func(c *AnalysisConfig) { c.BufferSize = 1024 }},
		{"buffer too large", func(c *AnalysisConfig) { c.BufferSize = 32768 }},
		{"rate index", func(c *AnalysisConfig) { c.UpdateRate = 6 }},
		{"negative rate index", func(c *AnalysisConfig) { c.UpdateRate = -1 }},
		{"threshold", func(c *AnalysisConfig) { c.Threshold = 1.5 }},
		{"inverted range", func(c *AnalysisConfig) { c.MinFrequency, c.MaxFrequency = 500, 100 }},
		{"method", func(c *AnalysisConfig) { c.Method = "autocorr" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultAnalysisConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestUpdateRateLabels(t *testing.T) {
	want := []string{"2x/sec", "4x/sec", "8x/sec", "12x/sec", "20x/sec", "30x/sec"}
	rates := UpdateRates()
	if len(rates) != len(want) {
		t.Fatalf("rate count mismatch: expected %d, got %d", len(want), len(rates))
	}
	for i, r := range rates {
		if r.String() != want[i] {
			t.Errorf("label %d: expected %s, got %s", i, want[i], r.String())
		}
	}
	if UpdateRate(9).PerSecond() != 0 {
		t.Error("invalid index should report 0 updates per second")
	}
}

func TestClampingHelpers(t *testing.T) {
	cfg := DefaultAnalysisConfig()
	if got := cfg.WithBufferSize(100000).BufferSize; got != MaxBufferSize {
		t.Errorf("expected %d, got %d", MaxBufferSize, got)
	}
	if got := cfg.WithBufferSize(10).BufferSize; got != MinBufferSize {
		t.Errorf("expected %d, got %d", MinBufferSize, got)
	}
	if got := cfg.WithUpdateRate(Rate30PerSec + 1).UpdateRate; got != Rate30PerSec {
		t.Errorf("expected %v, got %v", Rate30PerSec, got)
	}
	if cfg.BufferSize != DefaultBufferSize {
		t.Error("helpers must not modify the receiver")
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuner.json")

	cfg := DefaultAnalysisConfig()
	cfg.BufferSize = 8192
	cfg.UpdateRate = Rate20PerSec
	cfg.Method = "yinfft"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded != cfg {
		t.Errorf("config mismatch: expected %+v, got %+v", cfg, loaded)
	}
}

func TestLoadPartialAndInvalid(t *testing.T) {
	dir := t.TempDir()

	partial := filepath.Join(dir, "partial.json")
	if err := os.WriteFile(partial, []byte(`{"buffer_size": 16384}`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(partial)
	if err != nil {
		t.Fatalf("Load partial: %v", err)
	}
	if cfg.BufferSize != 16384 || cfg.UpdateRate != DefaultUpdateRate {
		t.Errorf("partial load mismatch: got %+v", cfg)
	}

	invalid := filepath.Join(dir, "invalid.json")
	if err := os.WriteFile(invalid, []byte(`{"buffer_size": 12}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(invalid); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}

	if _, err := Load(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
