package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
	"github.com/remeh/sizedwaitgroup"

	"hexatune/music"
	"hexatune/toneout"
)

// maxRender bounds offline renders; a full tune of maximum-length notes at
// the slowest tempo would otherwise produce gigabytes of PCM.
const maxRender = 10 * time.Minute

var (
	shortUnits, _ = durafmt.DefaultUnitsCoder.Decode("y:yrs,wk:wks,d:d,h:h,m:m,s:s,ms:ms,us:us")

	errRenderTooLong = errors.New("render too long")
)

// formatDuration prints d with at most two units, e.g. "1m 30s".
func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "0s"
	}
	return durafmt.Parse(d).LimitFirstN(2).Format(shortUnits)
}

// toneFactory builds a fresh PCM-producing tone at sampleRate.
type toneFactory func(sampleRate int) (toneout.Tone, error)

func squareTones(sampleRate int) (toneout.Tone, error) {
	return toneout.NewSquare(sampleRate, gs.Volume), nil
}

// soundFontTones returns a factory sharing one loaded soundfont.
func soundFontTones(path string, program int) (toneFactory, error) {
	sf, err := toneout.LoadSoundFont(path)
	if err != nil {
		return nil, fmt.Errorf("load soundfont: %w", err)
	}
	return func(sampleRate int) (toneout.Tone, error) {
		return toneout.NewSynth(sf, sampleRate, program)
	}, nil
}

// renderPCM plays t on tone in virtual time and returns the 16-bit stereo
// samples. Each tick covers exactly the frames between its start and the next
// tick's start so rounding never accumulates.
func renderPCM(t music.Tune, tone toneout.Tone, sampleRate, bpm int) ([]byte, error) {
	if t.Duration(bpm) > maxRender {
		return nil, fmt.Errorf("%w: %s exceeds %s", errRenderTooLong,
			formatDuration(t.Duration(bpm)), formatDuration(maxRender))
	}
	framesPerTick := float64(sampleRate) * music.TickInterval(bpm).Seconds()
	p := music.NewPlayer(tone)
	p.Load(t)

	var out bytes.Buffer
	var buf []byte
	var done int64
	for tick := int64(1); ; tick++ {
		p.Tick()
		if p.Done() && p.State() == music.Idle {
			break
		}
		end := int64(math.Round(float64(tick) * framesPerTick))
		n := int((end - done) * 4)
		done = end
		if cap(buf) < n {
			buf = make([]byte, n)
		}
		buf = buf[:n]
		if _, err := io.ReadFull(tone, buf); err != nil {
			return nil, fmt.Errorf("render: %w", err)
		}
		out.Write(buf)
	}
	return out.Bytes(), nil
}

// renderWAV renders t into a WAV file at path.
func renderWAV(path string, t music.Tune, newTone toneFactory, sampleRate, bpm int) (int, error) {
	tone, err := newTone(sampleRate)
	if err != nil {
		return 0, err
	}
	pcm, err := renderPCM(t, tone, sampleRate, bpm)
	if err != nil {
		return 0, err
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	if err := toneout.WriteWAV(f, pcm, sampleRate); err != nil {
		f.Close()
		return 0, fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return 0, err
	}
	return len(pcm) + 44, nil
}

// renderMIDI records t as a Standard MIDI File.
func renderMIDI(w io.Writer, t music.Tune, bpm, program int) (int64, error) {
	rec := toneout.NewMIDIRecorder(bpm, program)
	p := music.NewPlayer(rec)
	p.Load(t)
	for {
		p.Tick()
		if p.Done() && p.State() == music.Idle {
			break
		}
		rec.Advance()
	}
	return rec.WriteTo(w)
}

// renderMIDIFile writes the MIDI rendering of t to path.
func renderMIDIFile(path string, t music.Tune, bpm, program int) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	n, err := renderMIDI(f, t, bpm, program)
	if err != nil {
		f.Close()
		return n, fmt.Errorf("write %s: %w", path, err)
	}
	return n, f.Close()
}

// compileSource compiles notation honoring the strict setting. In strict
// mode a syntax error rejects the tune.
func compileSource(notation string, strict bool) (music.Tune, error) {
	if !strict {
		t := music.Compile(notation)
		if t.Dropped > 0 {
			logWarn("tune truncated: %d notes dropped", t.Dropped)
		}
		return t, nil
	}
	return music.CompileStrict(notation)
}

// renderBatch renders every *.tune file in dir to a WAV file beside it,
// several at a time. Failures are collected and returned together.
func renderBatch(dir string, newTone toneFactory, sampleRate, bpm int, strict bool) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.tune"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no .tune files in %s", dir)
	}

	var (
		mu    sync.Mutex
		errs  []error
		total uint64
	)
	wg := sizedwaitgroup.New(runtime.NumCPU())
	for _, path := range files {
		wg.Add()
		go func(path string) {
			defer wg.Done()
			n, err := renderTuneFile(path, newTone, sampleRate, bpm, strict)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", filepath.Base(path), err))
				return
			}
			total += uint64(n)
		}(path)
	}
	wg.Wait()

	logInfo("rendered %d of %d tunes (%s)", len(files)-len(errs), len(files), humanize.Bytes(total))
	return errors.Join(errs...)
}

func renderTuneFile(path string, newTone toneFactory, sampleRate, bpm int, strict bool) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	t, err := compileSource(strings.TrimSpace(string(data)), strict)
	if err != nil {
		return 0, err
	}
	out := strings.TrimSuffix(path, filepath.Ext(path)) + ".wav"
	n, err := renderWAV(out, t, newTone, sampleRate, bpm)
	if err != nil {
		return 0, err
	}
	logDebug("%s: %d notes, %s, %s", filepath.Base(out), t.Len(),
		formatDuration(t.Duration(bpm)), humanize.Bytes(uint64(n)))
	return n, nil
}
