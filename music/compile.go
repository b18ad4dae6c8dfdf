package music

import (
	"errors"
	"fmt"
)

const (
	// MaxTuneLen is the number of notes a tune holds. Further tokens are
	// parsed but not stored.
	MaxTuneLen = 400
	// MaxDuration is the longest note in ticks; the reference board stores
	// lengths as 16-bit unsigned values.
	MaxDuration = 1<<16 - 1
	// MaxOctave is the highest octave the pitch table covers.
	MaxOctave = Octaves - 1
)

var (
	ErrInvalidNoteLetter = errors.New("invalid note letter")
	ErrInvalidOctave     = errors.New("invalid octave")
	ErrDurationOverflow  = errors.New("duration overflow")
	ErrTuneTooLong       = errors.New("tune too long")
)

// SyntaxError locates a strict-mode problem in the notation text.
type SyntaxError struct {
	Pos int
	Err error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("offset %d: %v", e.Pos, e.Err)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// Note is one scheduled tone. Duration is counted in 32nd-note ticks.
type Note struct {
	Frequency int
	Duration  uint
}

// IsRest reports whether the note is silent.
func (n Note) IsRest() bool { return n.Frequency == Rest }

// Tune is a compiled note sequence. Dropped counts tokens that were parsed
// after the sequence reached MaxTuneLen.
type Tune struct {
	Notes   []Note
	Dropped int
}

// Len returns the number of stored notes.
func (t Tune) Len() int { return len(t.Notes) }

// Ticks returns the total length of the tune in ticks.
func (t Tune) Ticks() uint64 {
	var n uint64
	for _, note := range t.Notes {
		n += uint64(note.Duration)
	}
	return n
}

// Compile converts comma separated notation such as "3a4,3b8,0r2" into a
// tune. Malformed tokens degrade to a best-effort note; there is no error
// path.
func Compile(notation string) Tune {
	t, _ := compile(notation, false)
	return t
}

// CompileStrict compiles like Compile and also reports every problem found
// as a *SyntaxError wrapping one of the Err* sentinels. The returned tune is
// the same best-effort result Compile produces.
func CompileStrict(notation string) (Tune, error) {
	return compile(notation, true)
}

func compile(notation string, strict bool) (Tune, error) {
	var (
		t    Tune
		errs []error
	)
	report := func(pos int, err error) {
		if strict {
			errs = append(errs, &SyntaxError{Pos: pos, Err: err})
		}
	}

	c := NewCursor(notation)
	for !c.Done() {
		start := c.Pos()
		oc := c.Peek()
		octave := int(oc) - '0'
		c = c.Next()
		if c.Done() {
			break
		}
		if oc < '0' || oc > '9' || octave > MaxOctave {
			report(start, ErrInvalidOctave)
		}

		if !isNoteLetter(c.Peek()) {
			report(c.Pos(), ErrInvalidNoteLetter)
		}
		var (
			semitone int
			rest     bool
		)
		semitone, rest, c = ParseNote(c)

		durPos := c.Pos()
		length, next := ParseInt(c)
		c = next
		if length > MaxDuration {
			report(durPos, ErrDurationOverflow)
			length = MaxDuration
		}

		note := Note{Frequency: Rest, Duration: uint(length)}
		if !rest {
			note.Frequency = Frequency(LinearIndex(octave, semitone))
		}

		if c.Peek() == ',' {
			c = c.Next()
		}

		if len(t.Notes) < MaxTuneLen {
			t.Notes = append(t.Notes, note)
			continue
		}
		if t.Dropped == 0 {
			report(start, ErrTuneTooLong)
		}
		t.Dropped++
	}
	return t, errors.Join(errs...)
}
