// Package export writes recorded pitch logs as JSON, CSV or Standard MIDI
// Files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/RyanBlaney/sonido-pitch/algorithms/tonal"
	"github.com/RyanBlaney/sonido-pitch/analyzer"
)

// Format selects an output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatMIDI Format = "midi"
)

// ParseFormat accepts json, csv, midi or mid.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "midi", "mid":
		return FormatMIDI, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", name)
	}
}

// Extension returns the conventional file extension including the dot.
func (f Format) Extension() string {
	switch f {
	case FormatMIDI:
		return ".mid"
	default:
		return "." + string(f)
	}
}

// Write encodes events in the given format.
func Write(w io.Writer, format Format, events []analyzer.PitchEvent) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, events)
	case FormatCSV:
		return WriteCSV(w, events)
	case FormatMIDI:
		return WriteMIDI(w, events, DefaultMIDIOptions())
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
}

// Recording is the JSON document written by WriteJSON.
type Recording struct {
	Summary analyzer.LogSummary   `json:"summary"`
	Events  []analyzer.PitchEvent `json:"events"`
}

// WriteJSON writes the events and their summary as indented JSON.
func WriteJSON(w io.Writer, events []analyzer.PitchEvent) error {
	if events == nil {
		events = []analyzer.PitchEvent{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Recording{Summary: analyzer.SummarizeLog(events), Events: events}); err != nil {
		return fmt.Errorf("failed to encode recording: %w", err)
	}
	return nil
}

// CSVHeader is the first row written by WriteCSV.
var CSVHeader = []string{"time_seconds", "frequency_hz", "midi_note", "note", "velocity"}

// WriteCSV writes one row per event under CSVHeader.
func WriteCSV(w io.Writer, events []analyzer.PitchEvent) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	row := make([]string, len(CSVHeader))
	for _, e := range events {
		row[0] = strconv.FormatFloat(e.TimeSeconds, 'f', 4, 64)
		row[1] = strconv.FormatFloat(float64(e.FrequencyHz), 'f', 2, 32)
		row[2] = strconv.Itoa(int(e.MIDINote))
		row[3] = tonal.NoteName(int(e.MIDINote))
		row[4] = strconv.FormatFloat(float64(e.Velocity), 'f', 1, 32)
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
