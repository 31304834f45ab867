package windowing

import (
	"math"
	"testing"
)

func TestHannCoefficients(t *testing.T) {
	for _, size := range []int{2048, 4096, 5000} {
		h, err := NewHann(size)
		if err != nil {
			t.Fatalf("NewHann(%d): %v", size, err)
		}
		coeffs := h.Coefficients()
		if len(coeffs) != size {
			t.Fatalf("length mismatch: expected %d, got %d", size, len(coeffs))
		}

		for _, i := range []int{0, 1, size / 3, size / 2, size - 1} {
			want := 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(size-1)))
			if math.Abs(float64(coeffs[i])-want) > 1e-6 {
				t.Errorf("size %d coeff[%d]: expected %f, got %f", size, i, want, coeffs[i])
			}
		}

		// symmetric: both ends are zero
		if coeffs[0] != 0 || math.Abs(float64(coeffs[size-1])) > 1e-7 {
			t.Errorf("size %d endpoints not zero: %g, %g", size, coeffs[0], coeffs[size-1])
		}
	}
}

func TestHannApplyInPlace(t *testing.T) {
	h, _ := NewHann(8)

	signal := []float64{1, 1, 1, 1, 1, 1, 1, 1}
	if err := h.ApplyInPlace(signal); err != nil {
		t.Fatalf("ApplyInPlace: %v", err)
	}
	for i, v := range signal {
		if math.Abs(v-float64(h.Coefficients()[i])) > 1e-9 {
			t.Errorf("sample %d: expected %f, got %f", i, h.Coefficients()[i], v)
		}
	}

	if err := h.ApplyInPlace(make([]float64, 7)); err == nil {
		t.Error("expected error for mismatched length")
	}
	if _, err := NewHann(1); err == nil {
		t.Error("expected error for size 1")
	}
}
