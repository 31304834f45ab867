package analyzer

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/RyanBlaney/sonido-pitch/config"
)

const (
	// DefaultLogCapacity events are reserved up front so appends on the
	// audio path do not allocate in typical sessions.
	DefaultLogCapacity = 4096

	// DebounceInterval is the minimum spacing, in seconds, between two
	// events for the same note.
	DebounceInterval = 0.1
)

// LogCapacityFor returns a reservation that holds a recording of seconds of
// audio under cfg without growing: the recorder logs at most one event per
// analysis pass. Unknown durations get DefaultLogCapacity.
func LogCapacityFor(seconds, sampleRate float64, cfg config.AnalysisConfig) int {
	if seconds <= 0 || sampleRate <= 0 {
		return DefaultLogCapacity
	}
	s := NewScheduler(sampleRate, cfg.BufferSize, cfg.UpdateRate.PerSecond())
	passes := int(math.Ceil(seconds*float64(s.EffectiveRate()))) + 1
	return max(passes, DefaultLogCapacity)
}

// PitchEvent is one entry of the recording timeline.
type PitchEvent struct {
	TimeSeconds float64 `json:"time_seconds"` // since recording start
	FrequencyHz float32 `json:"frequency_hz"`
	MIDINote    int32   `json:"midi_note"`
	Velocity    float32 `json:"velocity"` // 0-127
}

// Recorder is the append-only event log filled while recording is active.
// The audio goroutine appends under mu; observers copy the log under the
// same lock. The recording flag is atomic so idle passes never touch mu.
type Recorder struct {
	recording atomic.Bool

	mu        sync.Mutex
	events    []PitchEvent
	startTime float64
	lastNote  int32
	lastTime  float64
}

// NewRecorder reserves room for capacity events.
func NewRecorder(capacity int) *Recorder {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	return &Recorder{
		events:   make([]PitchEvent, 0, capacity),
		lastNote: -1,
	}
}

// Start clears the log and begins recording with now as time zero.
func (r *Recorder) Start(now float64) {
	r.mu.Lock()
	r.events = r.events[:0]
	r.startTime = now
	r.lastNote = -1
	r.lastTime = 0
	r.mu.Unlock()

	r.recording.Store(true)
}

// Stop ends recording and keeps the log.
func (r *Recorder) Stop() {
	r.recording.Store(false)
}

// Clear empties the log and resets the debounce state whether or not
// recording is active.
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = r.events[:0]
	r.lastNote = -1
	r.lastTime = 0
}

// IsRecording reports whether Observe currently appends.
func (r *Recorder) IsRecording() bool {
	return r.recording.Load()
}

// Observe offers a detected pitch at audio time now. It is appended when the
// note differs from the last logged one or DebounceInterval has passed since
// the last entry. Returns whether an event was appended.
func (r *Recorder) Observe(now float64, frequency float32, midiNote int32, velocity float32) bool {
	if !r.recording.Load() {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if midiNote == r.lastNote && now-r.lastTime < DebounceInterval {
		return false
	}

	r.events = append(r.events, PitchEvent{
		TimeSeconds: now - r.startTime,
		FrequencyHz: frequency,
		MIDINote:    midiNote,
		Velocity:    velocity,
	})
	r.lastNote = midiNote
	r.lastTime = now
	return true
}

// NoteLost forgets the last logged note after a silent pass, so a re-attack
// of the same note is logged straight away.
func (r *Recorder) NoteLost() {
	if !r.recording.Load() {
		return
	}
	r.mu.Lock()
	r.lastNote = -1
	r.mu.Unlock()
}

// Snapshot returns a copy of the log.
func (r *Recorder) Snapshot() []PitchEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]PitchEvent, len(r.events))
	copy(out, r.events)
	return out
}

// Len returns the number of logged events.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}
