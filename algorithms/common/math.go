package common

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Basic statistical functions used across algorithms using gonum for robustness

// Mean calculates the arithmetic mean of a slice using gonum
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// StandardDeviation calculates the sample standard deviation
func StandardDeviation(data []float64) float64 {
	if len(data) < 2 {
		return 0.0
	}
	return stat.StdDev(data, nil)
}

// RMS calculates root mean square
func RMS(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return floats.Norm(data, 2) / math.Sqrt(float64(len(data)))
}

// StridedRMS calculates the root mean square of every stride-th sample
// starting at index 0. The pitch path uses it for the silence gate (stride 2)
// and for velocity (stride 4) so the cost stays a fraction of a full pass.
func StridedRMS(data []float64, stride int) float64 {
	if stride < 1 {
		stride = 1
	}
	sumSquares := 0.0
	count := 0
	for i := 0; i < len(data); i += stride {
		sumSquares += data[i] * data[i]
		count++
	}
	if count == 0 {
		return 0.0
	}
	return math.Sqrt(sumSquares / float64(count))
}

// Clamp clamps value between min and max
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// IsPowerOfTwo checks if n is a power of two
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}

// NextPowerOfTwo returns the next power of two >= n
func NextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
