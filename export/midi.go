package export

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/RyanBlaney/sonido-pitch/analyzer"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// DefaultNoteLength is how long the final event's note is held.
const DefaultNoteLength = 250 * time.Millisecond

// MIDIOptions control Standard MIDI File output.
type MIDIOptions struct {
	Tempo           float64       `json:"tempo"` // BPM
	TicksPerQuarter uint16        `json:"ticks_per_quarter"`
	Channel         uint8         `json:"channel"`
	NoteLength      time.Duration `json:"note_length"`
	TrackName       string        `json:"track_name"`
}

// DefaultMIDIOptions returns 120 BPM at 960 ticks per quarter on channel 1.
func DefaultMIDIOptions() MIDIOptions {
	return MIDIOptions{
		Tempo:           120,
		TicksPerQuarter: 960,
		Channel:         0,
		NoteLength:      DefaultNoteLength,
		TrackName:       "pitch log",
	}
}

// WriteMIDI writes events as a type 1 SMF: a tempo track and a note track.
// Each event sounds from its own time until the next event; the last one is
// held for NoteLength. Events outside the MIDI note range are skipped.
func WriteMIDI(w io.Writer, events []analyzer.PitchEvent, opts MIDIOptions) error {
	if opts.Tempo <= 0 {
		opts.Tempo = 120
	}
	if opts.TicksPerQuarter == 0 {
		opts.TicksPerQuarter = 960
	}
	if opts.NoteLength <= 0 {
		opts.NoteLength = DefaultNoteLength
	}
	ticksPerSecond := opts.Tempo / 60 * float64(opts.TicksPerQuarter)
	toTicks := func(seconds float64) uint32 {
		return uint32(math.Round(max(seconds, 0) * ticksPerSecond))
	}

	file := smf.New()
	file.TimeFormat = smf.MetricTicks(opts.TicksPerQuarter)

	var tempo smf.Track
	tempo.Add(0, smf.MetaTrackSequenceName(opts.TrackName))
	tempo.Add(0, smf.MetaTempo(opts.Tempo))
	tempo.Close(0)
	if err := file.Add(tempo); err != nil {
		return fmt.Errorf("failed to add tempo track: %w", err)
	}

	var notes smf.Track
	var cursor uint32 // absolute tick of the last written message
	for i, e := range events {
		if e.MIDINote < 0 || e.MIDINote > 127 {
			continue
		}

		on := max(toTicks(e.TimeSeconds), cursor)
		var off uint32
		if i+1 < len(events) {
			off = toTicks(events[i+1].TimeSeconds)
		} else {
			off = on + toTicks(opts.NoteLength.Seconds())
		}
		off = max(off, on+1)

		key := uint8(e.MIDINote)
		velocity := uint8(min(max(math.Round(float64(e.Velocity)), 1), 127))

		notes.Add(on-cursor, midi.NoteOn(opts.Channel, key, velocity))
		notes.Add(off-on, midi.NoteOff(opts.Channel, key))
		cursor = off
	}
	notes.Close(0)
	if err := file.Add(notes); err != nil {
		return fmt.Errorf("failed to add note track: %w", err)
	}

	if _, err := file.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write midi file: %w", err)
	}
	return nil
}
