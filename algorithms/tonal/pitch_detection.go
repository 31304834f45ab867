package tonal

import (
	"fmt"

	"github.com/RyanBlaney/sonido-pitch/algorithms/common"
	"gonum.org/v1/gonum/floats"
)

// Absolute sanity bounds for a reported fundamental. Anything outside is
// treated as a divide-by-tiny-lag artefact or aliased garbage.
const (
	MinValidFrequency = 16.0
	MaxValidFrequency = 26000.0
)

// DifferenceMethod selects how the YIN difference function is computed.
// Both produce the same full-overlap d(tau); they differ only in cost.
type DifferenceMethod int

const (
	// DifferenceDirect evaluates every lag with a dot product, O(N²).
	DifferenceDirect DifferenceMethod = iota
	// DifferenceFFT derives all lags from one zero-padded autocorrelation, O(N log N).
	DifferenceFFT
)

func (m DifferenceMethod) String() string {
	switch m {
	case DifferenceDirect:
		return "yin"
	case DifferenceFFT:
		return "yinfft"
	default:
		return "unknown"
	}
}

// ParseDifferenceMethod maps "yin" / "yinfft" to a DifferenceMethod.
func ParseDifferenceMethod(name string) (DifferenceMethod, error) {
	switch name {
	case "", "yin":
		return DifferenceDirect, nil
	case "yinfft":
		return DifferenceFFT, nil
	default:
		return DifferenceDirect, fmt.Errorf("unknown difference method %q", name)
	}
}

// YINParams contains parameters for the YIN estimator
type YINParams struct {
	SampleRate float64 `json:"sample_rate"`
	FrameSize  int     `json:"frame_size"`

	// Absolute threshold on the normalized difference (0.1-0.5)
	Threshold float64 `json:"threshold"`

	// Search window (Hz)
	MinFreq float64 `json:"min_freq"`
	MaxFreq float64 `json:"max_freq"`

	// Frames whose stride-2 RMS is below this are reported as silence
	SilenceFloor float64 `json:"silence_floor"`

	Method DifferenceMethod `json:"method"`
}

// DefaultYINParams returns the parameters tuned for voice and most pitched
// instruments: 70 Hz (below guitar low E) up to 1200 Hz.
func DefaultYINParams(sampleRate float64, frameSize int) YINParams {
	return YINParams{
		SampleRate:   sampleRate,
		FrameSize:    frameSize,
		Threshold:    0.15,
		MinFreq:      70.0,
		MaxFreq:      1200.0,
		SilenceFloor: 0.01,
		Method:       DifferenceDirect,
	}
}

// YIN implements the YIN fundamental frequency estimator
//
// References:
// - de Cheveigné, A., Kawahara, H. (2002). "YIN, a fundamental frequency estimator for speech and music"
//
// All scratch space is allocated by NewYIN, so Estimate can run on
// the audio thread. A YIN value is not safe for concurrent use.
type YIN struct {
	params YINParams

	// d(tau) for tau in [0, N/2), normalized in place into d'(tau)
	diff []float64
	// energy[k] = Σ_{i<k} x[i]², len N+1
	energy []float64

	fft *fftDifference

	lastTau        int
	lastConfidence float64
}

// NewYIN creates an estimator for frames of params.FrameSize samples.
func NewYIN(params YINParams) (*YIN, error) {
	if err := validateYINParams(params); err != nil {
		return nil, err
	}
	y := &YIN{params: params}
	y.allocate()
	return y, nil
}

func validateYINParams(p YINParams) error {
	if p.SampleRate <= 0 {
		return fmt.Errorf("yin: sample rate must be positive, got %g", p.SampleRate)
	}
	if p.FrameSize < 16 {
		return fmt.Errorf("yin: frame size too small: %d", p.FrameSize)
	}
	if p.Threshold <= 0 || p.Threshold >= 1 {
		return fmt.Errorf("yin: threshold must be in (0, 1), got %g", p.Threshold)
	}
	if p.MinFreq <= 0 || p.MaxFreq <= p.MinFreq {
		return fmt.Errorf("yin: invalid search range %g-%g Hz", p.MinFreq, p.MaxFreq)
	}
	if p.MaxFreq >= p.SampleRate/2 {
		return fmt.Errorf("yin: max frequency %g Hz not below Nyquist at %g Hz", p.MaxFreq, p.SampleRate)
	}
	return nil
}

func (y *YIN) allocate() {
	n := y.params.FrameSize
	y.diff = make([]float64, n/2)
	y.energy = make([]float64, n+1)
	y.fft = nil
	if y.params.Method == DifferenceFFT {
		y.fft = newFFTDifference(n)
	}
}

// SetSampleRate changes the sample rate without touching buffers, so it is
// safe on the audio thread.
func (y *YIN) SetSampleRate(sampleRate float64) {
	if sampleRate > 0 {
		y.params.SampleRate = sampleRate
	}
}

// Params returns the current parameters.
func (y *YIN) Params() YINParams {
	return y.params
}

// LastConfidence returns 1 - d'(tau) at the lag chosen by the most recent
// Estimate call, or 0 when it returned no pitch.
func (y *YIN) LastConfidence() float64 {
	return y.lastConfidence
}

// SearchRange returns the lag window [minTau, maxTau) scanned for candidates.
func (y *YIN) SearchRange() (minTau, maxTau int) {
	halfN := y.params.FrameSize / 2
	minTau = max(4, int(y.params.SampleRate/y.params.MaxFreq))
	maxTau = min(halfN-2, int(y.params.SampleRate/y.params.MinFreq))
	return minTau, maxTau
}

// Estimate returns the fundamental frequency of frame in Hz, or 0 when the
// frame is silent, aperiodic, or the estimate falls outside the valid range.
// frame must be exactly FrameSize samples (already windowed by the caller).
func (y *YIN) Estimate(frame []float64) float64 {
	y.lastTau = 0
	y.lastConfidence = 0

	n := len(frame)
	if n != y.params.FrameSize {
		return 0
	}

	// Energy gate: skip silence and noise floor before the O(N²) work
	if common.StridedRMS(frame, 2) < y.params.SilenceFloor {
		return 0
	}

	halfN := n / 2
	d := y.diff

	y.difference(frame)

	// Cumulative mean normalized difference, in place
	d[0] = 1.0
	runningSum := 0.0
	for tau := 1; tau < halfN; tau++ {
		runningSum += d[tau]
		if runningSum > 0 {
			d[tau] *= float64(tau) / runningSum
		} else {
			d[tau] = 1.0
		}
	}

	minTau, maxTau := y.SearchRange()
	if minTau >= maxTau {
		return 0
	}

	// First local minimum under the absolute threshold. Taking the lowest lag
	// keeps harmonics at 2T, 3T from winning.
	bestTau := 0
	for tau := minTau; tau < maxTau; tau++ {
		if d[tau] < y.params.Threshold && d[tau] < d[tau-1] && d[tau] < d[tau+1] {
			bestTau = tau
			break
		}
	}

	// Fall back to the global minimum of the window
	if bestTau == 0 {
		minVal := 1.0
		for tau := minTau; tau < maxTau; tau++ {
			if d[tau] < minVal {
				minVal = d[tau]
				bestTau = tau
			}
		}
	}

	// Needs a neighbour on each side for interpolation
	if bestTau < 2 || bestTau >= halfN-1 {
		return 0
	}

	period := parabolicInterpolation(d, bestTau)
	frequency := y.params.SampleRate / period
	if frequency < MinValidFrequency || frequency > MaxValidFrequency {
		return 0
	}

	y.lastTau = bestTau
	y.lastConfidence = 1.0 - d[bestTau]
	return frequency
}

// difference fills y.diff with d(tau) = Σ_{i=0}^{N-tau-1} (x[i]-x[i+tau])².
// Every lag uses its full overlap; a fixed-length window would bias low lags.
func (y *YIN) difference(frame []float64) {
	n := len(frame)

	// prefix energies give both overlap energies in O(1) per lag
	y.energy[0] = 0
	for i, v := range frame {
		y.energy[i+1] = y.energy[i] + v*v
	}
	total := y.energy[n]

	if y.fft != nil {
		y.fft.autocorrelate(frame)
		for tau := range y.diff {
			d := y.energy[n-tau] + (total - y.energy[tau]) - 2*y.fft.acf[tau]
			y.diff[tau] = max(d, 0)
		}
		return
	}

	for tau := range y.diff {
		r := floats.Dot(frame[:n-tau], frame[tau:])
		d := y.energy[n-tau] + (total - y.energy[tau]) - 2*r
		y.diff[tau] = max(d, 0)
	}
}

// parabolicInterpolation refines an integer minimum at idx using its two
// neighbours. The offset is clamped to one sample and skipped when the
// three points are nearly collinear.
func parabolicInterpolation(data []float64, idx int) float64 {
	s0 := data[idx-1]
	s1 := data[idx]
	s2 := data[idx+1]

	refined := float64(idx)
	denom := s0 - 2*s1 + s2
	if denom > 1e-4 || denom < -1e-4 {
		offset := 0.5 * (s0 - s2) / denom
		refined += common.Clamp(offset, -1, 1)
	}
	return refined
}
