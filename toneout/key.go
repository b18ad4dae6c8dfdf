package toneout

import "math"

// Key returns the MIDI note number closest to frequency (A4 = 440 Hz = 69),
// or -1 for frequencies <= 0.
func Key(frequency int) int {
	if frequency <= 0 {
		return -1
	}
	k := int(math.Round(69 + 12*math.Log2(float64(frequency)/440)))
	if k < 0 {
		return 0
	}
	if k > 127 {
		return 127
	}
	return k
}
