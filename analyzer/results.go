package analyzer

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/RyanBlaney/sonido-pitch/algorithms/tonal"
)

// PitchEstimate is the outcome of one analysis pass.
type PitchEstimate struct {
	FrequencyHz float32 `json:"frequency_hz"` // 0 = undetected
	CentsOffset float32 `json:"cents_offset"`
	NoteName    string  `json:"note_name"`
	MIDINote    int32   `json:"midi_note"`  // -1 when undetected
	Confidence  float32 `json:"confidence"` // 1 - d'(tau) at the chosen lag
}

// Detected reports whether the estimate carries a pitch.
func (e PitchEstimate) Detected() bool {
	return e.FrequencyHz > 0
}

// ResultStore publishes the latest estimate from the audio goroutine to any
// number of readers. Numeric fields are single atomic words; the note name
// is a string header and sits behind a mutex held only for the copy.
type ResultStore struct {
	frequency atomic.Uint32 // float32 bits
	cents     atomic.Uint32 // float32 bits
	midi      atomic.Int32
	conf      atomic.Uint32 // float32 bits

	nameMu sync.Mutex
	name   string
}

// NewResultStore returns a store holding the undetected sentinel.
func NewResultStore() *ResultStore {
	s := &ResultStore{}
	s.Reset()
	return s
}

// Publish stores e. Readers may observe fields from two consecutive passes
// while a publish is in flight; each field on its own is always consistent.
func (s *ResultStore) Publish(e PitchEstimate) {
	s.frequency.Store(math.Float32bits(e.FrequencyHz))
	s.cents.Store(math.Float32bits(e.CentsOffset))
	s.midi.Store(e.MIDINote)
	s.conf.Store(math.Float32bits(e.Confidence))

	s.nameMu.Lock()
	s.name = e.NoteName
	s.nameMu.Unlock()
}

// Reset publishes the undetected sentinel.
func (s *ResultStore) Reset() {
	s.Publish(PitchEstimate{NoteName: tonal.NoteUndetected, MIDINote: -1})
}

// Frequency returns the latest frequency in Hz, 0 when undetected.
func (s *ResultStore) Frequency() float32 {
	return math.Float32frombits(s.frequency.Load())
}

// Cents returns the latest signed offset from the nearest note.
func (s *ResultStore) Cents() float32 {
	return math.Float32frombits(s.cents.Load())
}

// MIDINote returns the latest nearest MIDI note, -1 when undetected.
func (s *ResultStore) MIDINote() int32 {
	return s.midi.Load()
}

// Confidence returns the estimator's confidence in the latest pass, 0 when
// nothing was detected.
func (s *ResultStore) Confidence() float32 {
	return math.Float32frombits(s.conf.Load())
}

// NoteName returns the latest note name or one of the sentinels.
func (s *ResultStore) NoteName() string {
	s.nameMu.Lock()
	defer s.nameMu.Unlock()
	return s.name
}

// Snapshot assembles the latest published fields.
func (s *ResultStore) Snapshot() PitchEstimate {
	return PitchEstimate{
		FrequencyHz: s.Frequency(),
		CentsOffset: s.Cents(),
		NoteName:    s.NoteName(),
		MIDINote:    s.MIDINote(),
		Confidence:  s.Confidence(),
	}
}
