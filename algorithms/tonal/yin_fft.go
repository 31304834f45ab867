package tonal

import (
	"github.com/RyanBlaney/sonido-pitch/algorithms/common"
	"gonum.org/v1/gonum/dsp/fourier"
)

// fftDifference computes the linear autocorrelation r(tau) of a frame via a
// zero-padded real FFT. Padding to at least 1.5N keeps circular wrap out of
// the lags YIN reads (tau < N/2).
type fftDifference struct {
	frameSize int
	fft       *fourier.FFT

	padded []float64
	coeffs []complex128
	circ   []float64

	// acf[tau] = Σ_{i<N-tau} x[i]*x[i+tau] for tau in [0, N/2)
	acf []float64
}

func newFFTDifference(frameSize int) *fftDifference {
	size := common.NextPowerOfTwo(frameSize + frameSize/2)
	return &fftDifference{
		frameSize: frameSize,
		fft:       fourier.NewFFT(size),
		padded:    make([]float64, size),
		coeffs:    make([]complex128, size/2+1),
		circ:      make([]float64, size),
		acf:       make([]float64, frameSize/2),
	}
}

func (f *fftDifference) autocorrelate(frame []float64) {
	copy(f.padded, frame)
	clear(f.padded[len(frame):])

	f.fft.Coefficients(f.coeffs, f.padded)
	for i, c := range f.coeffs {
		f.coeffs[i] = complex(real(c)*real(c)+imag(c)*imag(c), 0)
	}
	f.fft.Sequence(f.circ, f.coeffs)

	// gonum leaves the inverse unnormalized
	scale := 1.0 / float64(len(f.padded))
	for tau := range f.acf {
		f.acf[tau] = f.circ[tau] * scale
	}
}
