//go:build debug

package analyzer

import "fmt"

// assertFrameShape panics when the buffer-shaped state disagrees on length.
// Built only with -tags debug; release builds use the no-op in
// assert_nodebug.go.
func assertFrameShape(ring, window, frame int) {
	if ring != window || ring != frame {
		panic(fmt.Sprintf("analyzer: buffer shape mismatch: ring=%d window=%d frame=%d", ring, window, frame))
	}
}

// assertHop panics on a non-positive hop.
func assertHop(hop int) {
	if hop <= 0 {
		panic(fmt.Sprintf("analyzer: invalid hop size %d", hop))
	}
}
