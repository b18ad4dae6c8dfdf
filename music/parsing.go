package music

import "math"

// Cursor is a read position over an immutable notation string. Parse
// functions take a Cursor by value and return the advanced one, so a caller
// can always keep the position it started from.
type Cursor struct {
	text string
	pos  int
}

// NewCursor returns a cursor at the start of s.
func NewCursor(s string) Cursor {
	return Cursor{text: s}
}

// Pos is the byte offset of the cursor into the text.
func (c Cursor) Pos() int { return c.pos }

// Done reports whether the cursor is at the end of the text.
func (c Cursor) Done() bool { return c.pos >= len(c.text) }

// Peek returns the byte under the cursor, or 0 at the end of the text.
func (c Cursor) Peek() byte {
	if c.Done() {
		return 0
	}
	return c.text[c.pos]
}

// Next returns the cursor advanced by one byte. It does not move past the end.
func (c Cursor) Next() Cursor {
	if !c.Done() {
		c.pos++
	}
	return c
}

// Remaining returns the unread part of the text.
func (c Cursor) Remaining() string {
	if c.Done() {
		return ""
	}
	return c.text[c.pos:]
}

// semitones maps note letters to their offset from A.
//
//	a  a# b  c  c# d  d# e  f  f# g  g#
//	0  1  2  3  4  5  6  7  8  9  10 11
var semitones = map[byte]int{
	'a': 0,
	'b': 2,
	'c': 3,
	'd': 5,
	'e': 7,
	'f': 8,
	'g': 10,
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

// isNoteLetter reports whether b names a note or a rest.
func isNoteLetter(b byte) bool {
	l := lower(b)
	if l == 'r' {
		return true
	}
	_, ok := semitones[l]
	return ok
}

// ParseNote reads a note letter and its accidentals. It returns the semitone
// offset from A, whether the letter was a rest, and the cursor past the
// consumed text.
//
// One letter is always consumed, recognized or not, followed by at most one
// '#' (raise) and then at most one 'b' (lower). Unknown letters read as A
// natural and their accidentals are ignored. The semitone is in [-1, 12].
func ParseNote(c Cursor) (semitone int, rest bool, next Cursor) {
	if c.Done() {
		return 0, false, c
	}
	l := lower(c.Peek())
	base, known := semitones[l]
	if l == 'r' {
		rest, known = true, true
		base = -1
	}
	c = c.Next()
	if c.Peek() == '#' {
		base++
		c = c.Next()
	}
	if c.Peek() == 'b' {
		base--
		c = c.Next()
	}
	if !known {
		return 0, false, c
	}
	if rest {
		return -1, true, c
	}
	return base, false, c
}

// ParseInt reads a run of ASCII digits as a non-negative base-10 integer. A
// cursor at a non-digit yields 0 and is returned unchanged. Values past
// math.MaxInt saturate.
func ParseInt(c Cursor) (int, Cursor) {
	v := 0
	for b := c.Peek(); b >= '0' && b <= '9'; b = c.Peek() {
		d := int(b - '0')
		if v > (math.MaxInt-d)/10 {
			v = math.MaxInt
		} else {
			v = v*10 + d
		}
		c = c.Next()
	}
	return v, c
}
