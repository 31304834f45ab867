package main

import (
	"fmt"
	"strings"

	"github.com/RyanBlaney/sonido-pitch/algorithms/tonal"
	"github.com/RyanBlaney/sonido-pitch/analyzer"
	"github.com/RyanBlaney/sonido-pitch/config"
	"github.com/RyanBlaney/sonido-pitch/logging"
)

const (
	barCells   = 41 // odd so the centre cell is exactly 0 cents
	centsRange = 50.0
)

// statusView is everything the status line shows.
type statusView struct {
	Estimate  analyzer.PitchEstimate
	Config    config.AnalysisConfig
	HopSize   int
	Recording bool
	LogSize   int
	Colors    bool
}

// centsBar draws the tuning needle over ±50 cents. An undetected estimate
// leaves only the centre mark.
func centsBar(cents float32, detected bool) string {
	cells := []byte(strings.Repeat("-", barCells))
	centre := barCells / 2
	cells[centre] = '|'

	if detected {
		clamped := min(max(float64(cents), -centsRange), centsRange)
		pos := centre + int(clamped/centsRange*float64(centre)+0.5*sign(clamped))
		cells[pos] = 'o'
	}
	return "[" + string(cells) + "]"
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// formatCents renders "+12 cents", "-3 cents" or "0 cents".
func formatCents(cents float32) string {
	rounded := int(cents + 0.5*float32(sign(float64(cents))))
	if rounded > 0 {
		return fmt.Sprintf("+%d cents", rounded)
	}
	return fmt.Sprintf("%d cents", rounded)
}

// renderStatus builds the single status line, without a trailing newline.
func renderStatus(v statusView) string {
	est := v.Estimate
	detected := est.Detected()

	var b strings.Builder
	fmt.Fprintf(&b, "%-12s", est.NoteName)
	if detected {
		fmt.Fprintf(&b, " %8.2f Hz ", est.FrequencyHz)
	} else {
		b.WriteString("        -- Hz ")
	}

	bar := centsBar(est.CentsOffset, detected)
	label := ""
	if detected {
		accuracy := tonal.ClassifyCents(float64(est.CentsOffset))
		label = fmt.Sprintf(" %-9s %-6s", formatCents(est.CentsOffset), accuracy)
		if v.Colors {
			bar = accuracyColor(accuracy) + bar + logging.ColorReset
		}
	} else {
		label = fmt.Sprintf(" %-9s %-6s", formatCents(0), "")
	}
	b.WriteString(bar)
	b.WriteString(label)

	fmt.Fprintf(&b, "  %s N=%d hop=%d", v.Config.UpdateRate, v.Config.BufferSize, v.HopSize)
	if v.Recording {
		fmt.Fprintf(&b, "  REC %d", v.LogSize)
	} else if v.LogSize > 0 {
		fmt.Fprintf(&b, "  log %d", v.LogSize)
	}
	return b.String()
}

func accuracyColor(a tonal.Accuracy) string {
	switch a {
	case tonal.InTune:
		return logging.ColorGreen
	case tonal.Close:
		return logging.ColorYellow
	default:
		return logging.ColorRed
	}
}

const helpText = "r record  s stop  c clear  +/- buffer size  [/] update rate  e export  q quit"
