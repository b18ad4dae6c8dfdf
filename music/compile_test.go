package music

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestCompileBasic(t *testing.T) {
	tune := Compile("3a4,3b8,0r2")
	want := []Note{
		{Frequency: pitches[3*12+0], Duration: 4},
		{Frequency: pitches[3*12+2], Duration: 8},
		{Frequency: Rest, Duration: 2},
	}
	if tune.Len() != len(want) {
		t.Fatalf("got %d notes, want %d", tune.Len(), len(want))
	}
	for i := range want {
		if tune.Notes[i] != want[i] {
			t.Fatalf("note %d = %+v; want %+v", i, tune.Notes[i], want[i])
		}
	}
	if tune.Notes[0].Frequency != 440 || tune.Notes[1].Frequency != 493 {
		t.Fatalf("unexpected table frequencies %d %d", tune.Notes[0].Frequency, tune.Notes[1].Frequency)
	}
	if tune.Dropped != 0 {
		t.Fatalf("dropped = %d; want 0", tune.Dropped)
	}
}

func TestCompileIndexBounds(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"0a4", Rest},  // index 0
		{"0ab4", Rest}, // index -1
		{"0a#4", 58},   // index 1
		{"5g#1", 3322}, // index 71
		{"6a1", Rest},  // index 72
		{"9g1", Rest},
		// Rests never look up the table, unlike the board firmware which
		// plays pitches[octave*12-1] for "3r4". Deliberate.
		{"3r4", Rest},
		{"5r#1", Rest},
	}
	for _, tt := range tests {
		tune := Compile(tt.in)
		if tune.Len() != 1 {
			t.Fatalf("%q compiled to %d notes", tt.in, tune.Len())
		}
		if got := tune.Notes[0].Frequency; got != tt.want {
			t.Errorf("%q frequency = %d; want %d", tt.in, got, tt.want)
		}
	}
}

func TestFrequencyBounds(t *testing.T) {
	for i := -20; i < PitchCount+20; i++ {
		f := Frequency(i)
		if i >= 1 && i < PitchCount {
			if f != pitches[i] {
				t.Fatalf("Frequency(%d) = %d; want %d", i, f, pitches[i])
			}
			continue
		}
		if f != Rest {
			t.Fatalf("Frequency(%d) = %d; want Rest", i, f)
		}
	}
}

func TestCompilePermissive(t *testing.T) {
	tests := []struct {
		in   string
		want []Note
	}{
		{"", nil},
		{"3", nil},              // lone octave digit
		{"3a", []Note{{440, 0}}}, // missing duration
		{"3x4", []Note{{440, 4}}},
		{"3A4,3C4", []Note{{440, 4}, {523, 4}}},
		// A stray ',' is read as an octave, '3' as the letter and 'b' as a flat.
		{"3a4,,3b4", []Note{{440, 4}, {Rest, 4}}},
		{"3a4 3b4", []Note{{440, 4}, {Rest, 4}}},
	}
	for _, tt := range tests {
		got := Compile(tt.in).Notes
		if len(got) != len(tt.want) {
			t.Errorf("%q: got %d notes %+v, want %d", tt.in, len(got), got, len(tt.want))
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("%q note %d = %+v; want %+v", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}

func TestCompileTruncatesLongTunes(t *testing.T) {
	const extra = 25
	tokens := make([]string, MaxTuneLen+extra)
	for i := range tokens {
		tokens[i] = "3a1"
	}
	// The final token differs so we can tell it was consumed and not stored.
	tokens[len(tokens)-1] = "3b9"
	tune := Compile(strings.Join(tokens, ","))
	if tune.Len() != MaxTuneLen {
		t.Fatalf("stored %d notes; want %d", tune.Len(), MaxTuneLen)
	}
	if tune.Dropped != extra {
		t.Fatalf("dropped %d; want %d", tune.Dropped, extra)
	}
	for i, n := range tune.Notes {
		if n.Duration != 1 {
			t.Fatalf("note %d = %+v; truncated tail leaked in", i, n)
		}
	}
}

func syntaxErrors(err error) []*SyntaxError {
	var out []*SyntaxError
	j, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return out
	}
	for _, e := range j.Unwrap() {
		var se *SyntaxError
		if errors.As(e, &se) {
			out = append(out, se)
		}
	}
	return out
}

func TestCompileStrict(t *testing.T) {
	tune, err := CompileStrict("3a4,7c2,3x1,3a70000")
	if err == nil {
		t.Fatal("expected strict errors")
	}
	if tune.Len() != 4 {
		t.Fatalf("strict compile stored %d notes; want 4", tune.Len())
	}
	if tune.Notes[3].Duration != MaxDuration {
		t.Fatalf("overflowed duration = %d; want clamp to %d", tune.Notes[3].Duration, MaxDuration)
	}
	want := []struct {
		pos int
		err error
	}{
		{4, ErrInvalidOctave},
		{9, ErrInvalidNoteLetter},
		{14, ErrDurationOverflow},
	}
	got := syntaxErrors(err)
	if len(got) != len(want) {
		t.Fatalf("got %d errors (%v); want %d", len(got), err, len(want))
	}
	for i, w := range want {
		if got[i].Pos != w.pos || !errors.Is(got[i], w.err) {
			t.Errorf("error %d = %v; want %v at %d", i, got[i], w.err, w.pos)
		}
	}
	for _, w := range want {
		if !errors.Is(err, w.err) {
			t.Errorf("joined error does not match %v", w.err)
		}
	}
}

func TestCompileStrictCleanInput(t *testing.T) {
	tune, err := CompileStrict("3a4,3b8,0r2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tune.Len() != 3 {
		t.Fatalf("got %d notes; want 3", tune.Len())
	}
}

func TestCompileStrictTooLong(t *testing.T) {
	s := strings.Repeat("2c1,", MaxTuneLen+3)
	tune, err := CompileStrict(s)
	if !errors.Is(err, ErrTuneTooLong) {
		t.Fatalf("err = %v; want ErrTuneTooLong", err)
	}
	if len(syntaxErrors(err)) != 1 {
		t.Fatalf("too-long reported more than once: %v", err)
	}
	if tune.Len() != MaxTuneLen || tune.Dropped != 3 {
		t.Fatalf("len=%d dropped=%d", tune.Len(), tune.Dropped)
	}
}

func TestTuneTiming(t *testing.T) {
	tune := Compile("3a4,3b8,0r2")
	if tune.Ticks() != 14 {
		t.Fatalf("ticks = %d; want 14", tune.Ticks())
	}
	if got := TickInterval(120); got != 62500*time.Microsecond {
		t.Fatalf("TickInterval(120) = %v", got)
	}
	if got := tune.Duration(120); got != 875*time.Millisecond {
		t.Fatalf("Duration(120) = %v; want 875ms", got)
	}
	if ClampTempo(0) != DefaultTempo || ClampTempo(1) != MinTempo || ClampTempo(10000) != MaxTempo {
		t.Fatal("ClampTempo bounds")
	}
}
