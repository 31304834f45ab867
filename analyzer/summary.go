package analyzer

import (
	"github.com/RyanBlaney/sonido-pitch/algorithms/common"
)

// LogSummary describes a recorded pitch log.
type LogSummary struct {
	Events          int     `json:"events"`
	MeanFrequency   float64 `json:"mean_frequency"`
	FrequencyStdDev float64 `json:"frequency_std_dev"`
	MeanVelocity    float64 `json:"mean_velocity"`
	DistinctNotes   int     `json:"distinct_notes"`
	Duration        float64 `json:"duration"` // seconds from first to last event
	LowestNote      int32   `json:"lowest_note"`
	HighestNote     int32   `json:"highest_note"`
}

// SummarizeLog computes summary statistics over events.
func SummarizeLog(events []PitchEvent) LogSummary {
	summary := LogSummary{Events: len(events), LowestNote: -1, HighestNote: -1}
	if len(events) == 0 {
		return summary
	}

	frequencies := make([]float64, len(events))
	velocities := make([]float64, len(events))
	notes := make(map[int32]struct{})

	summary.LowestNote = events[0].MIDINote
	summary.HighestNote = events[0].MIDINote
	for i, e := range events {
		frequencies[i] = float64(e.FrequencyHz)
		velocities[i] = float64(e.Velocity)
		notes[e.MIDINote] = struct{}{}
		summary.LowestNote = min(summary.LowestNote, e.MIDINote)
		summary.HighestNote = max(summary.HighestNote, e.MIDINote)
	}

	summary.MeanFrequency = common.Mean(frequencies)
	summary.FrequencyStdDev = common.StandardDeviation(frequencies)
	summary.MeanVelocity = common.Mean(velocities)
	summary.DistinctNotes = len(notes)
	summary.Duration = events[len(events)-1].TimeSeconds - events[0].TimeSeconds

	return summary
}
