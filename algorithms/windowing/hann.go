package windowing

import (
	"fmt"

	"github.com/mjibson/go-dsp/window"
)

// Hann is a precomputed symmetric Hann window table,
// coeffs[i] = 0.5*(1-cos(2πi/(N-1))).
//
// The table is built once per analysis buffer size and is read-only
// afterwards, so the audio path can apply it without allocating.
type Hann struct {
	size         int
	coefficients []float32
}

// NewHann creates the window table for size samples.
func NewHann(size int) (*Hann, error) {
	if size < 2 {
		return nil, fmt.Errorf("hann window needs at least 2 points, got %d", size)
	}
	h := &Hann{size: size}
	h.generate()
	return h, nil
}

// generate fills the table from go-dsp's symmetric Hann definition.
func (h *Hann) generate() {
	coeffs := window.Hann(h.size)
	h.coefficients = make([]float32, h.size)
	for i, c := range coeffs {
		h.coefficients[i] = float32(c)
	}
}

// Coefficients returns the table itself. Callers must not modify it.
func (h *Hann) Coefficients() []float32 {
	return h.coefficients
}

// ApplyInPlace applies the window to a signal in-place
func (h *Hann) ApplyInPlace(signal []float64) error {
	if len(signal) != h.size {
		return fmt.Errorf("signal length (%d) doesn't match window size (%d)", len(signal), h.size)
	}

	for i := range signal {
		signal[i] *= float64(h.coefficients[i])
	}

	return nil
}

// Size returns the window size
func (h *Hann) Size() int {
	return h.size
}
