package music

import "time"

const (
	// TicksPerQuarter is the number of 32nd-note ticks in a quarter note.
	TicksPerQuarter = 8
	DefaultTempo    = 120
	MinTempo        = 20
	MaxTempo        = 400
)

// ClampTempo bounds a quarter-note tempo to [MinTempo, MaxTempo]. Values <= 0
// select DefaultTempo.
func ClampTempo(bpm int) int {
	switch {
	case bpm <= 0:
		return DefaultTempo
	case bpm < MinTempo:
		return MinTempo
	case bpm > MaxTempo:
		return MaxTempo
	}
	return bpm
}

// TickInterval is the wall-clock length of one tick at a quarter-note tempo.
func TickInterval(bpm int) time.Duration {
	bpm = ClampTempo(bpm)
	return time.Minute / time.Duration(bpm*TicksPerQuarter)
}

// Duration is the wall-clock length of the tune at bpm.
func (t Tune) Duration(bpm int) time.Duration {
	return time.Duration(t.Ticks()) * TickInterval(bpm)
}
