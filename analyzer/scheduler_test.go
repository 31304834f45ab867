package analyzer

import "testing"

func TestSchedulerHopSize(t *testing.T) {
	tests := []struct {
		name       string
		sampleRate float64
		bufferSize int
		rate       int
		wantHop    int
		wantRate   int
	}{
		{"30 per second", 48000, 4096, 30, 1600, 30},
		{"8 per second at 44.1k", 44100, 4096, 8, 5513, 8},
		{"large buffer caps the rate", 48000, 16384, 30, 9600, 5},
		{"large buffer slow rate untouched", 48000, 16384, 2, 24000, 2},
		{"cap never drops below one", 8000, 16384, 30, 8000, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScheduler(tt.sampleRate, tt.bufferSize, tt.rate)
			if s.HopSize() != tt.wantHop {
				t.Errorf("hop mismatch: expected %d, got %d", tt.wantHop, s.HopSize())
			}
			if s.EffectiveRate() != tt.wantRate {
				t.Errorf("rate mismatch: expected %d, got %d", tt.wantRate, s.EffectiveRate())
			}
		})
	}
}

func TestSchedulerFiresOncePerHop(t *testing.T) {
	s := NewScheduler(48000, 4096, 30)

	// countdown starts at zero: the first ready block fires
	if !s.Advance(160, true) {
		t.Fatal("first ready block did not fire")
	}

	fired := 0
	for range 1600 / 160 {
		if s.Advance(160, true) {
			fired++
		}
	}
	if fired != 1 {
		t.Errorf("expected exactly one trigger per hop, got %d", fired)
	}
}

func TestSchedulerWaitsForReady(t *testing.T) {
	s := NewScheduler(48000, 4096, 30)

	for range 50 {
		if s.Advance(256, false) {
			t.Fatal("fired before the buffer was ready")
		}
	}
	if !s.Advance(256, true) {
		t.Error("overdue countdown should fire as soon as the buffer is ready")
	}
	if s.Countdown() != s.HopSize() {
		t.Errorf("countdown mismatch: expected %d, got %d", s.HopSize(), s.Countdown())
	}

	s.Reset()
	if s.Countdown() != 0 {
		t.Errorf("reset countdown: expected 0, got %d", s.Countdown())
	}
}
