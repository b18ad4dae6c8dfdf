package toneout

import (
	"io"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

// speakerBuffer keeps the delay between a tick and the audible note change
// well under one 32nd note at normal tempos.
const speakerBuffer = 40 * time.Millisecond

// Speaker plays a live PCM source through the ebiten audio context. It
// forwards Start and Stop to the tone it was built from.
type Speaker struct {
	tone   Tone
	player *audio.Player
}

// Tone is a tone output that also yields 16-bit stereo PCM.
type Tone interface {
	Start(frequency int)
	Stop()
	io.Reader
}

// NewSpeaker starts streaming tone to ctx at the given volume.
func NewSpeaker(ctx *audio.Context, tone Tone, volume float64) (*Speaker, error) {
	p, err := ctx.NewPlayer(tone)
	if err != nil {
		return nil, err
	}
	p.SetBufferSize(speakerBuffer)
	p.SetVolume(volume)
	p.Play()
	return &Speaker{tone: tone, player: p}, nil
}

func (s *Speaker) Start(frequency int) { s.tone.Start(frequency) }

func (s *Speaker) Stop() { s.tone.Stop() }

// Close stops the stream and releases the audio player.
func (s *Speaker) Close() error {
	s.tone.Stop()
	return s.player.Close()
}
