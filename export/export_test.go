package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"

	"github.com/RyanBlaney/sonido-pitch/analyzer"
)

func sampleEvents() []analyzer.PitchEvent {
	return []analyzer.PitchEvent{
		{TimeSeconds: 0, FrequencyHz: 440.12, MIDINote: 69, Velocity: 21.6},
		{TimeSeconds: 0.125, FrequencyHz: 440.3, MIDINote: 69, Velocity: 22},
		{TimeSeconds: 0.5, FrequencyHz: 659.1, MIDINote: 76, Velocity: 127},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleEvents()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading csv back: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("row count mismatch: expected 4, got %d", len(rows))
	}
	if rows[0][0] != "time_seconds" || rows[0][4] != "velocity" {
		t.Errorf("header mismatch: got %v", rows[0])
	}
	want := []string{"0.5000", "659.10", "76", "E5", "127.0"}
	for i := range want {
		if rows[3][i] != want[i] {
			t.Errorf("column %d mismatch: expected %s, got %s", i, want[i], rows[3][i])
		}
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleEvents()); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	var doc Recording
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("decoding json: %v", err)
	}
	if len(doc.Events) != 3 || doc.Summary.Events != 3 || doc.Summary.DistinctNotes != 2 {
		t.Errorf("document mismatch: %+v", doc)
	}
	if doc.Events[2].MIDINote != 76 {
		t.Errorf("event mismatch: expected 76, got %d", doc.Events[2].MIDINote)
	}

	buf.Reset()
	if err := WriteJSON(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"events": []`)) {
		t.Errorf("empty log should encode as an empty array: %s", buf.String())
	}
}

func TestWriteMIDI(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteMIDI(&buf, sampleEvents(), DefaultMIDIOptions()); err != nil {
		t.Fatalf("WriteMIDI: %v", err)
	}
	data := buf.Bytes()

	// MThd, length 6, format 1, 2 tracks, 960 ticks per quarter
	header := []byte{'M', 'T', 'h', 'd', 0, 0, 0, 6, 0, 1, 0, 2, 0x03, 0xC0}
	if !bytes.HasPrefix(data, header) {
		t.Fatalf("header mismatch: got % x", data[:min(len(data), len(header))])
	}
	if n := bytes.Count(data, []byte("MTrk")); n != 2 {
		t.Errorf("track count mismatch: expected 2, got %d", n)
	}
	// 120 BPM = 500000 µs per quarter
	if !bytes.Contains(data, []byte{0xFF, 0x51, 0x03, 0x07, 0xA1, 0x20}) {
		t.Error("tempo meta event missing")
	}
	// first note: delta 0, note on channel 1, A4
	if !bytes.Contains(data, []byte{0x00, 0x90, 69}) {
		t.Error("first note on missing")
	}
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{"json": FormatJSON, "csv": FormatCSV, "midi": FormatMIDI, "mid": FormatMIDI}
	for name, want := range cases {
		got, err := ParseFormat(name)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q): expected %s, got %s (%v)", name, want, got, err)
		}
	}
	if _, err := ParseFormat("wav"); err == nil {
		t.Error("expected error for unsupported format")
	}
	if FormatMIDI.Extension() != ".mid" || FormatCSV.Extension() != ".csv" {
		t.Error("extension mismatch")
	}

	var buf bytes.Buffer
	if err := Write(&buf, FormatCSV, sampleEvents()); err != nil || buf.Len() == 0 {
		t.Errorf("Write dispatch failed: %v", err)
	}
}
