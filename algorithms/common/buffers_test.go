package common

import (
	"math"
	"testing"
)

func TestRingBufferFillsAndWraps(t *testing.T) {
	rb, err := NewRingBuffer(8)
	if err != nil {
		t.Fatalf("NewRingBuffer: %v", err)
	}

	for i := range 7 {
		rb.Push(float32(i))
		if rb.IsFull() {
			t.Fatalf("buffer reported full after %d pushes", i+1)
		}
	}

	rb.Push(7)
	if !rb.IsFull() {
		t.Error("buffer not full after exactly Len() pushes")
	}
	if rb.WritePos() != 0 {
		t.Errorf("writePos mismatch: expected 0, got %d", rb.WritePos())
	}

	got := make([]float32, 8)
	rb.CopyOrdered(got)
	for i, v := range got {
		if v != float32(i) {
			t.Errorf("ordered[%d]: expected %d, got %f", i, i, v)
		}
	}
}

func TestRingBufferOrderAcrossWrap(t *testing.T) {
	rb, _ := NewRingBuffer(5)

	// 13 samples: the last 5 are 8..12, oldest at writePos 3
	for i := range 13 {
		rb.Push(float32(i))
	}
	if rb.WritePos() != 3 {
		t.Fatalf("writePos mismatch: expected 3, got %d", rb.WritePos())
	}

	got := make([]float32, 5)
	if n := rb.CopyOrdered(got); n != 5 {
		t.Fatalf("copied %d samples, expected 5", n)
	}
	for i, v := range got {
		if want := float32(8 + i); v != want {
			t.Errorf("ordered[%d]: expected %f, got %f", i, want, v)
		}
	}

	window := []float32{1, 0.5, 2, 0, 1}
	frame := make([]float64, 5)
	rb.CopyWindowed(frame, window)
	want := []float64{8, 4.5, 20, 0, 12}
	for i := range want {
		if math.Abs(frame[i]-want[i]) > 1e-9 {
			t.Errorf("windowed[%d]: expected %f, got %f", i, want[i], frame[i])
		}
	}
}

func TestRingBufferStaysFull(t *testing.T) {
	rb, _ := NewRingBuffer(4)
	rb.Write([]float32{1, 2, 3, 4})
	for i := range 50 {
		rb.Push(float32(i))
		if !rb.IsFull() {
			t.Fatalf("full flag reverted after push %d", i)
		}
	}
}

func TestRingBufferReset(t *testing.T) {
	rb, _ := NewRingBuffer(4)
	rb.Write([]float32{1, 2, 3, 4, 5})
	rb.Reset()

	if rb.IsFull() || rb.WritePos() != 0 {
		t.Errorf("reset left full=%v writePos=%d", rb.IsFull(), rb.WritePos())
	}
	got := make([]float32, 4)
	rb.CopyOrdered(got)
	for i, v := range got {
		if v != 0 {
			t.Errorf("sample %d not zeroed: %f", i, v)
		}
	}
}

func TestRingBufferRejectsMismatchedDestinations(t *testing.T) {
	rb, _ := NewRingBuffer(4)
	if n := rb.CopyOrdered(make([]float32, 3)); n != 0 {
		t.Errorf("expected 0 for short dst, got %d", n)
	}
	if n := rb.CopyWindowed(make([]float64, 4), make([]float32, 5)); n != 0 {
		t.Errorf("expected 0 for mismatched window, got %d", n)
	}
	if _, err := NewRingBuffer(0); err == nil {
		t.Error("expected error for zero size")
	}
}

func TestStridedRMS(t *testing.T) {
	data := []float64{1, 100, -1, 100, 1, 100}
	if got := StridedRMS(data, 2); math.Abs(got-1) > 1e-12 {
		t.Errorf("stride 2: expected 1, got %f", got)
	}

	sine := make([]float64, 4800)
	for i := range sine {
		sine[i] = 0.5 * math.Sin(2*math.Pi*100*float64(i)/48000)
	}
	want := 0.5 / math.Sqrt2
	if got := RMS(sine); math.Abs(got-want) > 1e-3 {
		t.Errorf("RMS mismatch: expected %f, got %f", want, got)
	}
	if got := StridedRMS(sine, 4); math.Abs(got-want) > 1e-3 {
		t.Errorf("StridedRMS mismatch: expected %f, got %f", want, got)
	}
	if got := StridedRMS(nil, 2); got != 0 {
		t.Errorf("empty: expected 0, got %f", got)
	}
}

func TestPowerOfTwoHelpers(t *testing.T) {
	if !IsPowerOfTwo(4096) || IsPowerOfTwo(3000) {
		t.Error("IsPowerOfTwo misclassified")
	}
	if got := NextPowerOfTwo(6000); got != 8192 {
		t.Errorf("NextPowerOfTwo(6000): expected 8192, got %d", got)
	}
	if got := Clamp(200, 0, 127); got != 127 {
		t.Errorf("Clamp: expected 127, got %f", got)
	}
}
