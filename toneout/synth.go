package toneout

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sync"

	meltysynth "github.com/sinshu/go-meltysynth/meltysynth"
)

const (
	synthChannel  = 0
	synthVelocity = 110
	// block matches the synthesizer's internal processing size.
	block = 1024
)

// synthesizer is the subset of meltysynth.Synthesizer that Synth uses.
type synthesizer interface {
	ProcessMidiMessage(channel int32, command int32, data1, data2 int32)
	NoteOn(channel, key, vel int32)
	NoteOff(channel, key int32)
	Render(left, right []float32)
}

// newSynthesizer constructs a meltysynth synthesizer. Tests replace it with a
// mock.
var newSynthesizer = func(sf *meltysynth.SoundFont, settings *meltysynth.SynthesizerSettings) (synthesizer, error) {
	return meltysynth.NewSynthesizer(sf, settings)
}

// LoadSoundFont reads an .sf2 file.
func LoadSoundFont(path string) (*meltysynth.SoundFont, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sf, err := meltysynth.NewSoundFont(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse soundfont %s: %w", path, err)
	}
	return sf, nil
}

// Synth voices tones with a General MIDI program from a SoundFont. Each
// requested frequency is played as the nearest MIDI key.
type Synth struct {
	mu  sync.Mutex
	syn synthesizer
	key int
}

// NewSynth builds a synthesizer for sf at sampleRate and selects program.
func NewSynth(sf *meltysynth.SoundFont, sampleRate, program int) (*Synth, error) {
	if sf == nil {
		return nil, errors.New("nil soundfont")
	}
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	settings := meltysynth.NewSynthesizerSettings(int32(sampleRate))
	settings.BlockSize = block
	syn, err := newSynthesizer(sf, settings)
	if err != nil {
		return nil, err
	}
	syn.ProcessMidiMessage(synthChannel, 0xC0, int32(program), 0)
	return &Synth{syn: syn, key: -1}, nil
}

func (s *Synth) Start(frequency int) {
	key := Key(frequency)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.release()
	if key < 0 {
		return
	}
	s.syn.NoteOn(synthChannel, int32(key), synthVelocity)
	s.key = key
}

func (s *Synth) Stop() {
	s.mu.Lock()
	s.release()
	s.mu.Unlock()
}

func (s *Synth) release() {
	if s.key >= 0 {
		s.syn.NoteOff(synthChannel, int32(s.key))
		s.key = -1
	}
}

// Render fills left and right with the next samples.
func (s *Synth) Render(left, right []float32) {
	s.mu.Lock()
	s.syn.Render(left, right)
	s.mu.Unlock()
}

// Read fills p with whole 16-bit stereo frames.
func (s *Synth) Read(p []byte) (int, error) {
	frames := len(p) / 4
	left := make([]float32, frames)
	right := make([]float32, frames)
	s.Render(left, right)
	putStereo16(p, left, right)
	return frames * 4, nil
}
