package filters

import (
	"math"
)

// DefaultDCPole is the pole location used ahead of pitch analysis. At 48 kHz
// it places the -3 dB point near 76 Hz, well below the lowest note the
// estimator searches for once windowing is taken into account.
const DefaultDCPole = 0.99

// DCBlocker implements a single-pole DC blocking filter (high-pass) that
// removes constant bias from incoming samples before they reach the
// analysis buffer.
//
// References:
//   - Julius O. Smith III, "Introduction to Digital Filters with Audio Applications"
//     https://ccrma.stanford.edu/~jos/filters/DC_Blocker.html
//
// The filter carries x[n-1] and y[n-1] across calls so block boundaries are
// seamless. It never allocates and is safe to call on the audio thread.
type DCBlocker struct {
	pole float32 // R parameter (0 < R < 1)

	// State variables
	x1 float32 // Previous input sample x[n-1]
	y1 float32 // Previous output sample y[n-1]
}

// NewDCBlocker creates a DC blocker with the default pole of 0.99.
func NewDCBlocker() *DCBlocker {
	return &DCBlocker{pole: DefaultDCPole}
}

// Process applies the difference equation
// y[n] = x[n] - x[n-1] + R * y[n-1]
// to a single sample.
func (dc *DCBlocker) Process(input float32) float32 {
	output := input - dc.x1 + dc.pole*dc.y1

	dc.x1 = input
	dc.y1 = output

	return output
}

// ProcessBlock filters src into dst. dst must be at least len(src) long; it
// may alias src.
func (dc *DCBlocker) ProcessBlock(dst, src []float32) {
	x1, y1, r := dc.x1, dc.y1, dc.pole
	for i, x := range src {
		y := x - x1 + r*y1
		x1, y1 = x, y
		dst[i] = y
	}
	dc.x1, dc.y1 = x1, y1
}

// Reset clears the filter's carried-over state. Called whenever the sample
// rate or buffer size is reconfigured so stale history cannot leak a
// transient into the refilled buffer.
func (dc *DCBlocker) Reset() {
	dc.x1 = 0
	dc.y1 = 0
}

// Pole returns the pole location.
func (dc *DCBlocker) Pole() float32 {
	return dc.pole
}

// CutoffFrequency returns the approximate -3dB cutoff for the given sample rate.
// fc ≈ (1-R)*fs/(2*pi)
func (dc *DCBlocker) CutoffFrequency(sampleRate float64) float64 {
	if sampleRate <= 0 {
		return 0.0
	}
	return (1.0 - float64(dc.pole)) * sampleRate / (2.0 * math.Pi)
}

// MagnitudeResponse computes |H(e^jw)| at the given frequency where
// H(e^jw) = (1 - e^-jw) / (1 - R*e^-jw).
func (dc *DCBlocker) MagnitudeResponse(frequency, sampleRate float64) float64 {
	w := 2.0 * math.Pi * frequency / sampleRate
	r := float64(dc.pole)

	numReal := 1.0 - math.Cos(w)
	numImag := math.Sin(w)
	denReal := 1.0 - r*math.Cos(w)
	denImag := r * math.Sin(w)

	return math.Sqrt((numReal*numReal + numImag*numImag) / (denReal*denReal + denImag*denImag))
}
