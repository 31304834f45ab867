package analyzer

import "math"

// Scheduler decides, per audio block, whether enough new samples have been
// collected to run another analysis pass. Collection happens every sample;
// analysis is rate limited to bound the cost of the estimator.
type Scheduler struct {
	hopSize       int
	countdown     int
	effectiveRate int
}

// NewScheduler computes the hop for the requested rate. When the buffer is
// more than four hops long the rate is capped so a hop covers at least half
// the buffer, otherwise consecutive passes would analyse nearly identical
// windows.
func NewScheduler(sampleRate float64, bufferSize, updatesPerSecond int) Scheduler {
	var s Scheduler
	s.Configure(sampleRate, bufferSize, updatesPerSecond)
	return s
}

// Configure recomputes the hop in place and restarts the countdown. It does
// not allocate, so the audio path may call it on a sample-rate change.
func (s *Scheduler) Configure(sampleRate float64, bufferSize, updatesPerSecond int) {
	rate := max(updatesPerSecond, 1)

	rawHop := int(math.Round(sampleRate / float64(rate)))
	if bufferSize > 4*rawHop {
		capped := max(1, int(2*sampleRate/float64(bufferSize)))
		rate = min(rate, capped)
	}

	s.effectiveRate = rate
	s.hopSize = max(1, int(math.Round(sampleRate/float64(rate))))
	s.countdown = 0
}

// Advance accounts for n newly collected samples and reports whether an
// analysis pass should run now. ready is the ring buffer's full flag; while
// it is false the countdown keeps running but nothing fires.
func (s *Scheduler) Advance(n int, ready bool) bool {
	s.countdown -= n
	if s.countdown <= 0 && ready {
		s.countdown = s.hopSize
		return true
	}
	return false
}

// Reset restarts the countdown so the next ready block fires immediately.
func (s *Scheduler) Reset() {
	s.countdown = 0
}

// HopSize returns the samples between passes.
func (s *Scheduler) HopSize() int {
	return s.hopSize
}

// EffectiveRate returns the analyses per second after capping.
func (s *Scheduler) EffectiveRate() int {
	return s.effectiveRate
}

// Countdown returns the samples left before the next pass is due.
func (s *Scheduler) Countdown() int {
	return s.countdown
}
