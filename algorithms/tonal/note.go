package tonal

import (
	"fmt"
	"math"
)

// Note name sentinels published when there is no usable pitch.
const (
	NoteUndetected = "---"
	NoteOutOfRange = "Out of Range"
)

// ReferenceA4 is the concert pitch the note mapper tunes against.
const ReferenceA4 = 440.0

var pitchClassNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// noteNames holds every name for MIDI 0..143 so the audio path never
// formats strings. C4 = 60.
var noteNames = func() [144]string {
	var names [144]string
	for midi := range names {
		names[midi] = fmt.Sprintf("%s%d", pitchClassNames[midi%12], midi/12-1)
	}
	return names
}()

// Note is a frequency mapped onto the equal-tempered scale.
type Note struct {
	Name    string  `json:"name"`
	MIDI    int     `json:"midi"`
	Cents   float64 `json:"cents"`
	InRange bool    `json:"in_range"`
}

// FrequencyToMIDI returns the fractional MIDI note for frequency.
func FrequencyToMIDI(frequency float64) float64 {
	return 12*math.Log2(frequency/ReferenceA4) + 69
}

// MIDIToFrequency returns the equal-tempered frequency of a MIDI note.
func MIDIToFrequency(midi int) float64 {
	return ReferenceA4 * math.Pow(2, float64(midi-69)/12)
}

// NoteName returns the sharp spelling of a MIDI note, e.g. 69 -> "A4".
func NoteName(midi int) string {
	if midi < 0 || midi >= len(noteNames) {
		return NoteOutOfRange
	}
	return noteNames[midi]
}

// ToNote maps frequency to the nearest note and its signed offset in cents.
// Positive cents mean the input is sharp of the named note. Frequencies
// outside [MinValidFrequency, MaxValidFrequency] map to NoteOutOfRange with
// zero cents.
func ToNote(frequency float64) Note {
	if frequency < MinValidFrequency || frequency > MaxValidFrequency {
		return Note{Name: NoteOutOfRange, MIDI: -1}
	}

	midi := FrequencyToMIDI(frequency)
	nearest := int(math.Round(midi))
	return Note{
		Name:    NoteName(nearest),
		MIDI:    nearest,
		Cents:   (midi - float64(nearest)) * 100,
		InRange: true,
	}
}

// Accuracy buckets a cents offset the way a tuner needle is coloured.
type Accuracy int

const (
	InTune Accuracy = iota
	Close
	OffPitch
)

func (a Accuracy) String() string {
	switch a {
	case InTune:
		return "in tune"
	case Close:
		return "close"
	default:
		return "off"
	}
}

// ClassifyCents returns InTune under 5 cents, Close under 15, else OffPitch.
func ClassifyCents(cents float64) Accuracy {
	abs := math.Abs(cents)
	switch {
	case abs < 5:
		return InTune
	case abs < 15:
		return Close
	default:
		return OffPitch
	}
}
