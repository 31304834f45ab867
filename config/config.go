package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid analysis config")

// Analysis buffer bounds, in samples.
const (
	MinBufferSize     = 2048
	MaxBufferSize     = 16384
	DefaultBufferSize = 4096
)

// UpdateRate indexes the fixed set of analysis rates a host can offer.
type UpdateRate int

const (
	Rate2PerSec UpdateRate = iota
	Rate4PerSec
	Rate8PerSec
	Rate12PerSec
	Rate20PerSec
	Rate30PerSec
)

// DefaultUpdateRate is 8 analyses per second.
const DefaultUpdateRate = Rate8PerSec

var updatesPerSecond = [...]int{2, 4, 8, 12, 20, 30}

// UpdateRates lists every choice in ascending order.
func UpdateRates() []UpdateRate {
	rates := make([]UpdateRate, len(updatesPerSecond))
	for i := range rates {
		rates[i] = UpdateRate(i)
	}
	return rates
}

// Valid reports whether r is one of the enumerated choices.
func (r UpdateRate) Valid() bool {
	return r >= 0 && int(r) < len(updatesPerSecond)
}

// PerSecond returns the number of analyses per second, or 0 for an invalid index.
func (r UpdateRate) PerSecond() int {
	if !r.Valid() {
		return 0
	}
	return updatesPerSecond[r]
}

// String returns the host-facing label, e.g. "8x/sec".
func (r UpdateRate) String() string {
	if !r.Valid() {
		return fmt.Sprintf("UpdateRate(%d)", int(r))
	}
	return fmt.Sprintf("%dx/sec", updatesPerSecond[r])
}

// AnalysisConfig holds the user-configurable analysis parameters. It is the
// only state persisted across restarts.
type AnalysisConfig struct {
	// Analysis window length in samples (2048-16384)
	BufferSize int `json:"buffer_size"`

	UpdateRate UpdateRate `json:"update_rate"`

	// YIN absolute threshold, (0, 1)
	Threshold float64 `json:"threshold"`

	// Search window (Hz)
	MinFrequency float64 `json:"min_frequency"`
	MaxFrequency float64 `json:"max_frequency"`

	Method string `json:"method"` // "yin", "yinfft"
}

// DefaultAnalysisConfig returns the stock tuner settings.
func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		BufferSize:   DefaultBufferSize,
		UpdateRate:   DefaultUpdateRate,
		Threshold:    0.15,
		MinFrequency: 70.0,
		MaxFrequency: 1200.0,
		Method:       "yin",
	}
}

// Validate checks every field; the returned error wraps ErrInvalidConfig.
func (c AnalysisConfig) Validate() error {
	if c.BufferSize < MinBufferSize || c.BufferSize > MaxBufferSize {
		return fmt.Errorf("%w: buffer size %d outside [%d, %d]", ErrInvalidConfig, c.BufferSize, MinBufferSize, MaxBufferSize)
	}
	if !c.UpdateRate.Valid() {
		return fmt.Errorf("%w: update rate index %d", ErrInvalidConfig, int(c.UpdateRate))
	}
	if c.Threshold <= 0 || c.Threshold >= 1 {
		return fmt.Errorf("%w: threshold %g outside (0, 1)", ErrInvalidConfig, c.Threshold)
	}
	if c.MinFrequency <= 0 || c.MaxFrequency <= c.MinFrequency {
		return fmt.Errorf("%w: frequency range %g-%g Hz", ErrInvalidConfig, c.MinFrequency, c.MaxFrequency)
	}
	switch c.Method {
	case "yin", "yinfft":
	default:
		return fmt.Errorf("%w: unknown method %q", ErrInvalidConfig, c.Method)
	}
	return nil
}

// WithBufferSize returns a copy with the buffer size clamped into range.
func (c AnalysisConfig) WithBufferSize(size int) AnalysisConfig {
	c.BufferSize = min(max(size, MinBufferSize), MaxBufferSize)
	return c
}

// WithUpdateRate returns a copy with the rate index clamped into range.
func (c AnalysisConfig) WithUpdateRate(rate UpdateRate) AnalysisConfig {
	c.UpdateRate = min(max(rate, Rate2PerSec), Rate30PerSec)
	return c
}

// Load reads a JSON config from path. Missing fields keep their defaults.
func Load(path string) (AnalysisConfig, error) {
	cfg := DefaultAnalysisConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Save writes cfg to path as indented JSON.
func Save(path string, cfg AnalysisConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
