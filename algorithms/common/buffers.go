package common

import (
	"fmt"
)

// RingBuffer is the circular analysis buffer. It absorbs every incoming
// sample at the audio callback's pace and, once it has wrapped for the first
// time, always holds the most recent Len() samples.
//
// writePos is the next write index and, once the buffer is full, also the
// index of the oldest sample. The full flag only goes back to false through
// Reset.
//
// RingBuffer is owned by the audio path; it is not safe for concurrent use.
type RingBuffer struct {
	samples  []float32
	writePos int
	full     bool
}

// NewRingBuffer creates a zeroed ring buffer of the given capacity.
func NewRingBuffer(size int) (*RingBuffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("ring buffer size must be positive, got %d", size)
	}
	return &RingBuffer{samples: make([]float32, size)}, nil
}

// Push writes one sample and advances the write position.
func (rb *RingBuffer) Push(sample float32) {
	rb.samples[rb.writePos] = sample
	rb.writePos++
	if rb.writePos == len(rb.samples) {
		rb.writePos = 0
		rb.full = true
	}
}

// Write pushes a block of samples.
func (rb *RingBuffer) Write(data []float32) {
	for _, s := range data {
		rb.Push(s)
	}
}

// IsFull reports whether the buffer has wrapped at least once since the last Reset.
func (rb *RingBuffer) IsFull() bool {
	return rb.full
}

// WritePos returns the next write index.
func (rb *RingBuffer) WritePos() int {
	return rb.writePos
}

// Len returns the capacity.
func (rb *RingBuffer) Len() int {
	return len(rb.samples)
}

// CopyOrdered copies the buffer into dst from oldest to newest, starting at
// writePos. dst must be exactly Len() long. Returns the number of samples copied.
func (rb *RingBuffer) CopyOrdered(dst []float32) int {
	if len(dst) != len(rb.samples) {
		return 0
	}
	n := copy(dst, rb.samples[rb.writePos:])
	n += copy(dst[n:], rb.samples[:rb.writePos])
	return n
}

// CopyWindowed writes the oldest-to-newest sequence multiplied by window into
// dst as float64, which is the frame the estimator consumes. window and dst
// must both be Len() long. It does not allocate.
func (rb *RingBuffer) CopyWindowed(dst []float64, window []float32) int {
	size := len(rb.samples)
	if len(dst) != size || len(window) != size {
		return 0
	}

	head := size - rb.writePos
	for i := 0; i < head; i++ {
		dst[i] = float64(rb.samples[rb.writePos+i] * window[i])
	}
	for i := 0; i < rb.writePos; i++ {
		dst[head+i] = float64(rb.samples[i] * window[head+i])
	}
	return size
}

// Reset zeroes the samples and requires a complete refill before IsFull
// reports true again.
func (rb *RingBuffer) Reset() {
	clear(rb.samples)
	rb.writePos = 0
	rb.full = false
}
