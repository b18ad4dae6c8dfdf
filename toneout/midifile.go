package toneout

import (
	"io"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	// MIDIResolution is the file's ticks per quarter note.
	MIDIResolution = 960
	// midiTicksPerTick is one 32nd note in file ticks.
	midiTicksPerTick = MIDIResolution / 8
	midiChannel      = 0
	midiVelocity     = 100
)

// RecordedNote is one note captured by a MIDIRecorder, timed in file ticks.
type RecordedNote struct {
	Key    int
	Start  uint32
	Length uint32
}

// MIDIRecorder captures tone output as a Standard MIDI File. Playback time is
// virtual: call Advance once after every Player tick.
type MIDIRecorder struct {
	track   smf.Track
	notes   []RecordedNote
	now     uint32
	last    uint32
	key     int
	started uint32
}

// NewMIDIRecorder starts a single-track recording at a quarter-note tempo
// with the given General MIDI program.
func NewMIDIRecorder(bpm, program int) *MIDIRecorder {
	r := &MIDIRecorder{key: -1}
	r.track.Add(0, smf.MetaTempo(float64(bpm)))
	r.track.Add(0, midi.ProgramChange(midiChannel, uint8(program)))
	return r
}

func (r *MIDIRecorder) Start(frequency int) {
	r.release()
	key := Key(frequency)
	if key < 0 {
		return
	}
	r.track.Add(r.delta(), midi.NoteOn(midiChannel, uint8(key), midiVelocity))
	r.key = key
	r.started = r.now
}

func (r *MIDIRecorder) Stop() { r.release() }

func (r *MIDIRecorder) release() {
	if r.key < 0 {
		return
	}
	r.track.Add(r.delta(), midi.NoteOff(midiChannel, uint8(r.key)))
	r.notes = append(r.notes, RecordedNote{Key: r.key, Start: r.started, Length: r.now - r.started})
	r.key = -1
}

// delta returns the ticks since the previous event and marks now as the
// last event time.
func (r *MIDIRecorder) delta() uint32 {
	d := r.now - r.last
	r.last = r.now
	return d
}

// Advance moves the recording clock forward by one 32nd note.
func (r *MIDIRecorder) Advance() {
	r.now += midiTicksPerTick
}

// Notes returns the completed notes so far.
func (r *MIDIRecorder) Notes() []RecordedNote {
	return append([]RecordedNote(nil), r.notes...)
}

// WriteTo ends any sounding note and writes the recording as an SMF file.
func (r *MIDIRecorder) WriteTo(w io.Writer) (int64, error) {
	r.release()
	tr := append(smf.Track(nil), r.track...)
	tr.Close(r.now - r.last)

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(MIDIResolution)
	if err := s.Add(tr); err != nil {
		return 0, err
	}
	return s.WriteTo(w)
}
