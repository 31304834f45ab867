package main

import (
	"strings"
	"testing"

	"github.com/RyanBlaney/sonido-pitch/algorithms/tonal"
	"github.com/RyanBlaney/sonido-pitch/analyzer"
	"github.com/RyanBlaney/sonido-pitch/config"
)

func TestCentsBar(t *testing.T) {
	tests := []struct {
		cents   float32
		wantPos int
	}{
		{0, 20},
		{50, 40},
		{-50, 0},
		{200, 40},
		{25, 30},
		{-10, 16},
	}

	for _, tt := range tests {
		bar := centsBar(tt.cents, true)
		if len(bar) != barCells+2 {
			t.Fatalf("bar length mismatch: expected %d, got %d", barCells+2, len(bar))
		}
		if got := strings.IndexByte(bar, 'o') - 1; got != tt.wantPos {
			t.Errorf("cents %v: expected needle at %d, got %d", tt.cents, tt.wantPos, got)
		}
	}

	if strings.Contains(centsBar(12, false), "o") {
		t.Error("undetected bar should not draw a needle")
	}
}

func TestFormatCents(t *testing.T) {
	cases := map[float32]string{0: "0 cents", 12.4: "+12 cents", -3.6: "-4 cents", 0.4: "0 cents"}
	for cents, want := range cases {
		if got := formatCents(cents); got != want {
			t.Errorf("formatCents(%v): expected %q, got %q", cents, want, got)
		}
	}
}

func TestRenderStatus(t *testing.T) {
	view := statusView{
		Estimate:  analyzer.PitchEstimate{FrequencyHz: 440.5, CentsOffset: 2, NoteName: "A4", MIDINote: 69},
		Config:    config.DefaultAnalysisConfig(),
		HopSize:   6000,
		Recording: true,
		LogSize:   7,
	}
	line := renderStatus(view)
	for _, want := range []string{"A4", "440.50 Hz", "+2 cents", "in tune", "8x/sec", "N=4096", "REC 7"} {
		if !strings.Contains(line, want) {
			t.Errorf("status line missing %q: %q", want, line)
		}
	}

	view.Estimate = analyzer.PitchEstimate{NoteName: tonal.NoteUndetected, MIDINote: -1}
	view.Recording = false
	line = renderStatus(view)
	if !strings.HasPrefix(line, "---") || !strings.Contains(line, "log 7") {
		t.Errorf("undetected status mismatch: %q", line)
	}
}
