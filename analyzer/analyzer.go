package analyzer

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/RyanBlaney/sonido-pitch/algorithms/common"
	"github.com/RyanBlaney/sonido-pitch/algorithms/filters"
	"github.com/RyanBlaney/sonido-pitch/algorithms/tonal"
	"github.com/RyanBlaney/sonido-pitch/algorithms/windowing"
	"github.com/RyanBlaney/sonido-pitch/config"
	"github.com/RyanBlaney/sonido-pitch/logging"
)

// Processor is the surface a host adapter drives from its audio callback.
type Processor interface {
	Prepare(sampleRate float64, maxBlockSize int) error
	Process(samples []float32, sampleRate float64)
	Configure(cfg config.AnalysisConfig) error
	NeedsPrepare() bool
}

// Observer is the read side polled by displays and exporters. Every method
// is safe to call from any goroutine while Process runs.
type Observer interface {
	DetectedFrequency() float32
	NoteName() string
	CentsOffset() float32
	Estimate() PitchEstimate
	IsRecording() bool
	PitchLog() []PitchEvent
	LogSize() int
}

// minBlockScratch is the smallest DC scratch block; larger host blocks are
// filtered in chunks.
const minBlockScratch = 256

// dcWarnGain is the DC blocker gain at MinFrequency below which Prepare warns
// that the lowest searchable notes are being attenuated.
const dcWarnGain = 0.5

// Option configures a PitchAnalyzer
type Option func(*PitchAnalyzer)

// WithLogger replaces the component logger.
func WithLogger(logger logging.Logger) Option {
	return func(a *PitchAnalyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithAnalysisHook registers fn to run on the audio goroutine after every
// analysis pass has been published. fn must not block.
func WithAnalysisHook(fn func(PitchEstimate)) Option {
	return func(a *PitchAnalyzer) {
		a.hook = fn
	}
}

// WithLogCapacity sets how many recording events are reserved up front.
func WithLogCapacity(events int) Option {
	return func(a *PitchAnalyzer) {
		a.recorder = NewRecorder(events)
	}
}

// PitchAnalyzer is the real-time pitch pipeline: DC blocker, ring buffer,
// Hann window, YIN and note mapping, publishing into a ResultStore and,
// while recording, a Recorder.
//
// Prepare and Process belong to the audio goroutine and must never run
// concurrently. Configure and every Observer method may be called from any
// goroutine.
type PitchAnalyzer struct {
	// audio goroutine state
	prepared   bool
	sampleRate float64
	cfg        config.AnalysisConfig
	dc         *filters.DCBlocker
	block      []float32 // DC-filtered input, filled in chunks
	ring       *common.RingBuffer
	window     *windowing.Hann
	frame      []float64
	yin        *tonal.YIN
	scheduler  Scheduler

	// shared state
	pending  atomic.Pointer[config.AnalysisConfig]
	active   atomic.Pointer[config.AnalysisConfig]
	clock    atomic.Uint64 // float64 bits, seconds of audio processed
	hopSize  atomic.Int64
	analyses atomic.Uint64

	results  *ResultStore
	recorder *Recorder

	hook   func(PitchEstimate)
	logger logging.Logger
}

// New validates cfg and returns an analyzer that becomes active on the
// first Prepare call.
func New(cfg config.AnalysisConfig, opts ...Option) (*PitchAnalyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	a := &PitchAnalyzer{
		dc:       filters.NewDCBlocker(),
		results:  NewResultStore(),
		recorder: NewRecorder(DefaultLogCapacity),
		logger: logging.WithFields(logging.Fields{
			"component": "pitch_analyzer",
		}),
	}
	for _, opt := range opts {
		opt(a)
	}

	active := cfg
	a.active.Store(&active)
	pending := cfg
	a.pending.Store(&pending)
	return a, nil
}

// Configure validates cfg and queues it for the next Prepare.
func (a *PitchAnalyzer) Configure(cfg config.AnalysisConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.pending.Store(&cfg)
	return nil
}

// NeedsPrepare reports whether a configuration is waiting for Prepare.
func (a *PitchAnalyzer) NeedsPrepare() bool {
	return a.pending.Load() != nil
}

// Prepare applies any pending configuration, reallocates buffer-shaped state
// when the shape changed and restarts collection: the DC blocker, scheduler
// and ring all reset, so analysis waits for one full buffer of new audio.
// The host must guarantee Process is not running.
func (a *PitchAnalyzer) Prepare(sampleRate float64, maxBlockSize int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("invalid sample rate: %g", sampleRate)
	}

	cfg := a.cfg
	next := a.pending.Swap(nil)
	if next != nil {
		cfg = *next
	}

	if err := a.allocate(cfg, sampleRate, maxBlockSize); err != nil {
		if next != nil {
			// keep the queued config unless a newer one arrived meanwhile
			a.pending.CompareAndSwap(nil, next)
		}
		return fmt.Errorf("prepare failed: %w", err)
	}

	a.cfg = cfg
	a.sampleRate = sampleRate
	a.dc.Reset()
	a.ring.Reset()
	a.scheduler.Configure(sampleRate, cfg.BufferSize, cfg.UpdateRate.PerSecond())
	assertHop(a.scheduler.HopSize())
	a.hopSize.Store(int64(a.scheduler.HopSize()))
	a.prepared = true

	active := cfg
	a.active.Store(&active)

	logger := a.logger.WithFields(logging.Fields{
		"sample_rate":    sampleRate,
		"buffer_size":    cfg.BufferSize,
		"update_rate":    cfg.UpdateRate.String(),
		"effective_rate": a.scheduler.EffectiveRate(),
		"hop_size":       a.scheduler.HopSize(),
		"method":         cfg.Method,
		"dc_pole":        a.dc.Pole(),
		"dc_cutoff_hz":   a.dc.CutoffFrequency(sampleRate),
	})
	logger.Info("analyzer prepared")
	if gain := a.dc.MagnitudeResponse(cfg.MinFrequency, sampleRate); gain < dcWarnGain {
		logger.Warn("dc blocker attenuates the lowest searched notes", logging.Fields{
			"min_frequency": cfg.MinFrequency,
			"dc_gain":       gain,
		})
	}
	if maxBlockSize > a.scheduler.HopSize() {
		logger.Warn("host block exceeds hop size, at most one pass runs per block", logging.Fields{
			"max_block_size": maxBlockSize,
		})
	}
	return nil
}

func (a *PitchAnalyzer) allocate(cfg config.AnalysisConfig, sampleRate float64, maxBlockSize int) error {
	method, err := tonal.ParseDifferenceMethod(cfg.Method)
	if err != nil {
		return err
	}

	params := tonal.DefaultYINParams(sampleRate, cfg.BufferSize)
	params.Threshold = cfg.Threshold
	params.MinFreq = cfg.MinFrequency
	params.MaxFreq = cfg.MaxFrequency
	params.Method = method

	// build the estimator first so a rejected config leaves the current
	// state untouched
	if a.yin == nil || a.yin.Params() != params {
		yin, err := tonal.NewYIN(params)
		if err != nil {
			return err
		}
		a.yin = yin
	}

	if a.ring == nil || a.ring.Len() != cfg.BufferSize {
		ring, err := common.NewRingBuffer(cfg.BufferSize)
		if err != nil {
			return err
		}
		window, err := windowing.NewHann(cfg.BufferSize)
		if err != nil {
			return err
		}
		a.ring = ring
		a.window = window
		a.frame = make([]float64, cfg.BufferSize)
	}

	if size := max(maxBlockSize, minBlockScratch); len(a.block) < size {
		a.block = make([]float32, size)
	}
	return nil
}

// Process consumes one block of mono input. samples is only read. A change
// of sampleRate is applied inline without allocating and forces a fresh
// buffer fill. Blocks before the first Prepare are ignored.
func (a *PitchAnalyzer) Process(samples []float32, sampleRate float64) {
	if !a.prepared || len(samples) == 0 {
		return
	}

	if sampleRate > 0 && sampleRate != a.sampleRate {
		a.sampleRate = sampleRate
		a.dc.Reset()
		a.ring.Reset()
		a.yin.SetSampleRate(sampleRate)
		a.scheduler.Configure(sampleRate, a.cfg.BufferSize, a.cfg.UpdateRate.PerSecond())
		a.hopSize.Store(int64(a.scheduler.HopSize()))
	}

	total := len(samples)
	now := math.Float64frombits(a.clock.Load()) + float64(total)/a.sampleRate
	a.clock.Store(math.Float64bits(now))

	for len(samples) > 0 {
		n := min(len(samples), len(a.block))
		a.dc.ProcessBlock(a.block[:n], samples[:n])
		a.ring.Write(a.block[:n])
		samples = samples[n:]
	}

	if a.scheduler.Advance(total, a.ring.IsFull()) {
		a.analyze(now)
	}
}

// analyze runs one pass over the ring's current contents.
func (a *PitchAnalyzer) analyze(now float64) {
	assertFrameShape(a.ring.Len(), a.window.Size(), len(a.frame))

	a.ring.CopyWindowed(a.frame, a.window.Coefficients())
	frequency := a.yin.Estimate(a.frame)

	estimate := PitchEstimate{NoteName: tonal.NoteUndetected, MIDINote: -1}
	if frequency > 0 {
		note := tonal.ToNote(frequency)
		estimate = PitchEstimate{
			FrequencyHz: float32(frequency),
			CentsOffset: float32(note.Cents),
			NoteName:    note.Name,
			MIDINote:    int32(note.MIDI),
			Confidence:  float32(a.yin.LastConfidence()),
		}
		if note.InRange {
			velocity := common.Clamp(common.StridedRMS(a.frame, 4)*1000, 0, 127)
			a.recorder.Observe(now, estimate.FrequencyHz, estimate.MIDINote, float32(velocity))
		}
	} else {
		a.recorder.NoteLost()
	}

	a.results.Publish(estimate)
	a.analyses.Add(1)

	if a.hook != nil {
		a.hook(estimate)
	}
}

// DetectedFrequency returns the latest frequency in Hz, 0 when undetected.
func (a *PitchAnalyzer) DetectedFrequency() float32 {
	return a.results.Frequency()
}

// NoteName returns the latest note name, "---" or "Out of Range".
func (a *PitchAnalyzer) NoteName() string {
	return a.results.NoteName()
}

// Confidence returns the estimator's confidence in the latest pass.
func (a *PitchAnalyzer) Confidence() float32 {
	return a.results.Confidence()
}

// CentsOffset returns the latest offset from the nearest note.
func (a *PitchAnalyzer) CentsOffset() float32 {
	return a.results.Cents()
}

// Estimate returns all latest published fields.
func (a *PitchAnalyzer) Estimate() PitchEstimate {
	return a.results.Snapshot()
}

// StartRecording clears the log and starts a new timeline at the current
// audio time.
func (a *PitchAnalyzer) StartRecording() {
	a.recorder.Start(a.Now())
	a.logger.Debug("recording started")
}

// StopRecording stops appending and keeps the log.
func (a *PitchAnalyzer) StopRecording() {
	a.recorder.Stop()
	a.logger.Debug("recording stopped", logging.Fields{"events": a.recorder.Len()})
}

// ClearRecording empties the log.
func (a *PitchAnalyzer) ClearRecording() {
	a.recorder.Clear()
}

// IsRecording reports whether detected pitches are being logged.
func (a *PitchAnalyzer) IsRecording() bool {
	return a.recorder.IsRecording()
}

// PitchLog returns a copy of the recorded events.
func (a *PitchAnalyzer) PitchLog() []PitchEvent {
	return a.recorder.Snapshot()
}

// LogSize returns the number of recorded events.
func (a *PitchAnalyzer) LogSize() int {
	return a.recorder.Len()
}

// Config returns the configuration applied by the last Prepare, or the
// constructor's configuration before that.
func (a *PitchAnalyzer) Config() config.AnalysisConfig {
	return *a.active.Load()
}

// HopSize returns the current samples between analysis passes, 0 before
// the first Prepare.
func (a *PitchAnalyzer) HopSize() int {
	return int(a.hopSize.Load())
}

// AnalysisCount returns how many passes have run.
func (a *PitchAnalyzer) AnalysisCount() uint64 {
	return a.analyses.Load()
}

// Now returns the seconds of audio processed so far.
func (a *PitchAnalyzer) Now() float64 {
	return math.Float64frombits(a.clock.Load())
}
