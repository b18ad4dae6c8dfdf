// Package toneout holds the concrete tone outputs a music.Player can drive:
// a square-wave PCM generator for speakers and WAV files, a SoundFont
// synthesizer, and a Standard MIDI File recorder.
package toneout

import (
	"encoding/binary"
	"sync"
)

// DefaultSampleRate is used when a caller passes a rate <= 0.
const DefaultSampleRate = 44100

// Square generates a square wave at the last started frequency. It
// implements music.ToneOutput, and io.Reader yielding 16-bit little-endian
// stereo PCM so it can feed an audio player directly.
type Square struct {
	mu         sync.Mutex
	sampleRate int
	amplitude  float32
	freq       int
	phase      float64
}

// NewSquare returns a silent generator. volume is the wave amplitude in
// [0, 1].
func NewSquare(sampleRate int, volume float64) *Square {
	if sampleRate <= 0 {
		sampleRate = DefaultSampleRate
	}
	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}
	return &Square{sampleRate: sampleRate, amplitude: float32(volume)}
}

func (s *Square) Start(frequency int) {
	if frequency <= 0 {
		s.Stop()
		return
	}
	s.mu.Lock()
	s.freq = frequency
	s.mu.Unlock()
}

func (s *Square) Stop() {
	s.mu.Lock()
	s.freq = 0
	s.phase = 0
	s.mu.Unlock()
}

// Frequency returns the frequency being generated, 0 when silent.
func (s *Square) Frequency() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.freq
}

// Fill writes mono samples into buf. The phase carries over between calls so
// consecutive buffers join without clicks.
func (s *Square) Fill(buf []float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.freq <= 0 {
		for i := range buf {
			buf[i] = 0
		}
		return
	}
	step := float64(s.freq) / float64(s.sampleRate)
	for i := range buf {
		if s.phase < 0.5 {
			buf[i] = s.amplitude
		} else {
			buf[i] = -s.amplitude
		}
		s.phase += step
		if s.phase >= 1 {
			s.phase -= float64(int(s.phase))
		}
	}
}

// Read fills p with whole stereo frames.
func (s *Square) Read(p []byte) (int, error) {
	frames := len(p) / 4
	mono := make([]float32, frames)
	s.Fill(mono)
	putStereo16(p, mono, mono)
	return frames * 4, nil
}

// putStereo16 interleaves left and right as 16-bit little-endian PCM.
func putStereo16(p []byte, left, right []float32) {
	for i := range left {
		binary.LittleEndian.PutUint16(p[4*i:], uint16(toInt16(left[i])))
		binary.LittleEndian.PutUint16(p[4*i+2:], uint16(toInt16(right[i])))
	}
}

func toInt16(v float32) int16 {
	if v > 1 {
		v = 1
	}
	if v < -1 {
		v = -1
	}
	return int16(v * 32767)
}
