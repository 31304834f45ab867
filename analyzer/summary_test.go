package analyzer

import (
	"math"
	"testing"
)

func TestSummarizeLog(t *testing.T) {
	events := []PitchEvent{
		{TimeSeconds: 0.5, FrequencyHz: 440, MIDINote: 69, Velocity: 20},
		{TimeSeconds: 0.7, FrequencyHz: 440, MIDINote: 69, Velocity: 40},
		{TimeSeconds: 1.5, FrequencyHz: 660, MIDINote: 76, Velocity: 60},
	}

	s := SummarizeLog(events)
	if s.Events != 3 || s.DistinctNotes != 2 {
		t.Errorf("counts mismatch: got %d events, %d notes", s.Events, s.DistinctNotes)
	}
	if math.Abs(s.MeanFrequency-513.3333) > 1e-3 {
		t.Errorf("mean frequency mismatch: expected 513.333, got %f", s.MeanFrequency)
	}
	// sample std dev of {440, 440, 660}
	if math.Abs(s.FrequencyStdDev-127.0171) > 1e-3 {
		t.Errorf("std dev mismatch: expected 127.017, got %f", s.FrequencyStdDev)
	}
	if s.MeanVelocity != 40 {
		t.Errorf("mean velocity mismatch: expected 40, got %f", s.MeanVelocity)
	}
	if math.Abs(s.Duration-1.0) > 1e-9 {
		t.Errorf("duration mismatch: expected 1, got %f", s.Duration)
	}
	if s.LowestNote != 69 || s.HighestNote != 76 {
		t.Errorf("range mismatch: got %d-%d", s.LowestNote, s.HighestNote)
	}
}

func TestSummarizeEmptyLog(t *testing.T) {
	s := SummarizeLog(nil)
	if s.Events != 0 || s.MeanFrequency != 0 || s.LowestNote != -1 {
		t.Errorf("empty summary mismatch: %+v", s)
	}

	single := SummarizeLog([]PitchEvent{{FrequencyHz: 220, MIDINote: 57}})
	if single.FrequencyStdDev != 0 || single.Duration != 0 {
		t.Errorf("single event summary mismatch: %+v", single)
	}
}
