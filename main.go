package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hajimehoshi/ebiten/v2/audio"
	clipboard "golang.design/x/clipboard"

	"hexatune/music"
	"hexatune/toneout"
)

var (
	doDebug bool

	tuneFlag     string
	fileFlag     string
	nameFlag     string
	clipFlag     bool
	pickFlag     bool
	openFlag     bool
	buzzFlag     string
	tempoFlag    int
	outFlag      string
	wavFlag      string
	midFlag      string
	batchFlag    string
	dumpTuneFlag bool
	serveFlag    bool
	serialFlag   string
	baudFlag     int
	strictFlag   bool
	listFlag     bool
)

func main() {
	flag.StringVar(&tuneFlag, "tune", "", "tune notation to play, e.g. 3c4,3e4,3g8")
	flag.StringVar(&fileFlag, "file", "", "read tune notation from a file")
	flag.StringVar(&nameFlag, "name", "", "play a tune from the library")
	flag.BoolVar(&clipFlag, "clipboard", false, "read tune notation from the clipboard")
	flag.BoolVar(&pickFlag, "pick", false, "choose a tune file with a file dialog")
	flag.StringVar(&buzzFlag, "buzz", "", "play a single tone, <freq>:<ticks>")
	flag.IntVar(&tempoFlag, "tempo", 0, "quarter-note tempo in BPM (default from settings)")
	flag.StringVar(&outFlag, "out", "", "tone output: speaker, soundfont, timer or null")
	flag.StringVar(&wavFlag, "wav", "", "render to a .wav file instead of playing")
	flag.StringVar(&midFlag, "mid", "", "render to a .mid file instead of playing")
	flag.BoolVar(&openFlag, "open", false, "open rendered files with the default application")
	flag.StringVar(&batchFlag, "batch", "", "render every .tune file in a directory to .wav")
	flag.BoolVar(&dumpTuneFlag, "dumpTune", false, "print the compiled notes and exit")
	flag.BoolVar(&serveFlag, "serve", false, "read commands from stdin")
	flag.StringVar(&serialFlag, "serial", "", "read commands from a serial device")
	flag.IntVar(&baudFlag, "baud", 0, "serial baud rate (default from settings)")
	flag.BoolVar(&strictFlag, "strict", false, "reject malformed notation")
	flag.BoolVar(&doDebug, "debug", false, "verbose/debug logging")
	flag.BoolVar(&listFlag, "list", false, "list the tune library and exit")
	flag.Parse()

	setupLogging(doDebug)
	if !loadSettings() {
		logDebug("using default settings")
		saveSettings()
	}
	applyFlags()

	loadStats()
	defer saveStats()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP)
	err := run(ctx)
	cancel()
	if err != nil {
		logError("%v", err)
		saveStats()
		os.Exit(1)
	}
}

// applyFlags overrides settings with the command line.
func applyFlags() {
	if tempoFlag != 0 {
		gs.Tempo = music.ClampTempo(tempoFlag)
	}
	if outFlag != "" {
		gs.Output = outFlag
	}
	if baudFlag > 0 {
		gs.Baud = baudFlag
	}
	if strictFlag {
		gs.Strict = true
	}
}

func run(ctx context.Context) error {
	switch {
	case listFlag:
		fmt.Print(formatLibrary(gs.Tunes))
		return nil
	case batchFlag != "":
		newTone, err := renderTones()
		if err != nil {
			return err
		}
		return renderBatch(batchFlag, newTone, gs.SampleRate, gs.Tempo, gs.Strict)
	case serveFlag || serialFlag != "":
		return runServer(ctx)
	}

	key, t, err := loadTune()
	if err != nil {
		return err
	}
	if dumpTuneFlag {
		dumpTune(os.Stdout, t, gs.Tempo)
		return nil
	}
	if wavFlag != "" || midFlag != "" {
		return renderFiles(t)
	}
	return playTune(ctx, key, t)
}

// loadTune compiles the tune named by the source flags. The key identifies
// the source in the play statistics.
func loadTune() (string, music.Tune, error) {
	if buzzFlag != "" {
		freq, ticks, err := parseBuzz(strings.Split(buzzFlag, ":"))
		if err != nil {
			return "", music.Tune{}, fmt.Errorf("-buzz: %w", err)
		}
		if freq <= 0 {
			freq = music.Rest
		}
		return "buzz", music.Tune{Notes: []music.Note{{Frequency: freq, Duration: ticks}}}, nil
	}

	if pickFlag {
		path, err := pickTuneFile()
		if err != nil {
			return "", music.Tune{}, err
		}
		fileFlag = path
	}

	var key, notation string
	switch {
	case tuneFlag != "":
		key, notation = "notation", tuneFlag
	case fileFlag != "":
		data, err := os.ReadFile(fileFlag)
		if err != nil {
			return "", music.Tune{}, fmt.Errorf("read tune: %w", err)
		}
		key, notation = filepath.Base(fileFlag), strings.TrimSpace(string(data))
	case nameFlag != "":
		name, n, ok := lookupTune(gs.Tunes, nameFlag)
		if !ok {
			return "", music.Tune{}, unknownTuneError(gs.Tunes, nameFlag)
		}
		key, notation = name, n
	case clipFlag:
		if err := clipboard.Init(); err != nil {
			return "", music.Tune{}, fmt.Errorf("clipboard init: %w", err)
		}
		key, notation = "clipboard", strings.TrimSpace(string(clipboard.Read(clipboard.FmtText)))
		if notation == "" {
			return "", music.Tune{}, errors.New("clipboard is empty")
		}
	default:
		flag.Usage()
		return "", music.Tune{}, errors.New("no tune given")
	}

	t, err := compileSource(notation, gs.Strict)
	if err != nil {
		return "", music.Tune{}, fmt.Errorf("compile %s: %w", key, err)
	}
	return key, t, nil
}

// dumpTune prints one line per note and a summary.
func dumpTune(w io.Writer, t music.Tune, bpm int) {
	tick := music.TickInterval(bpm)
	var at time.Duration
	for i, n := range t.Notes {
		pitch := "rest"
		if !n.IsRest() {
			pitch = strconv.Itoa(n.Frequency) + " Hz"
		}
		fmt.Fprintf(w, "%03d: %-8s %5d ticks  start=%6dms\n", i, pitch, n.Duration, at.Milliseconds())
		at += time.Duration(n.Duration) * tick
	}
	fmt.Fprintf(w, "%d notes, %d ticks, %s at %d bpm", t.Len(), t.Ticks(), formatDuration(t.Duration(bpm)), bpm)
	if t.Dropped > 0 {
		fmt.Fprintf(w, " (%d dropped)", t.Dropped)
	}
	fmt.Fprintln(w)
}

// renderTones picks the offline voice for the configured output.
func renderTones() (toneFactory, error) {
	if gs.Output == outputSoundFont {
		return soundFontTones(soundFontPath(), gs.Program)
	}
	return squareTones, nil
}

func soundFontPath() string {
	if filepath.IsAbs(gs.SoundFont) {
		return gs.SoundFont
	}
	return filepath.Join(dataDirPath, gs.SoundFont)
}

func renderFiles(t music.Tune) error {
	if wavFlag != "" {
		newTone, err := renderTones()
		if err != nil {
			return err
		}
		n, err := renderWAV(wavFlag, t, newTone, gs.SampleRate, gs.Tempo)
		if err != nil {
			return fmt.Errorf("render wav: %w", err)
		}
		logInfo("wrote %s (%s, %s)", wavFlag, humanize.Bytes(uint64(n)), formatDuration(t.Duration(gs.Tempo)))
		if openFlag {
			openRendered(wavFlag)
		}
	}
	if midFlag != "" {
		n, err := renderMIDIFile(midFlag, t, gs.Tempo, gs.Program)
		if err != nil {
			return fmt.Errorf("render midi: %w", err)
		}
		logInfo("wrote %s (%s)", midFlag, humanize.Bytes(uint64(n)))
		if openFlag {
			openRendered(midFlag)
		}
	}
	return nil
}

// nullTone discards tones; useful for timing tests and the command server.
type nullTone struct{}

func (nullTone) Start(frequency int) { logDebug("tone %d Hz", frequency) }
func (nullTone) Stop()               { logDebug("tone off") }

// openOutput builds the realtime tone output named by kind. The returned
// close function drains and releases it.
func openOutput(kind string) (music.ToneOutput, func(), error) {
	switch kind {
	case outputSpeaker, outputSoundFont:
		var tone toneout.Tone = toneout.NewSquare(gs.SampleRate, 1)
		if kind == outputSoundFont {
			newTone, err := soundFontTones(soundFontPath(), gs.Program)
			if err != nil {
				return nil, nil, err
			}
			if tone, err = newTone(gs.SampleRate); err != nil {
				return nil, nil, err
			}
		}
		sp, err := toneout.NewSpeaker(audio.NewContext(gs.SampleRate), tone, gs.Volume)
		if err != nil {
			return nil, nil, fmt.Errorf("open speaker: %w", err)
		}
		return sp, func() {
			// let the last buffer play out
			time.Sleep(100 * time.Millisecond)
			if err := sp.Close(); err != nil {
				logWarn("close speaker: %v", err)
			}
		}, nil
	case outputTimer:
		t := &music.TimerTone{Write: func(r music.TimerRegs) {
			logInfo("timer TCCRA=%08b TCCRB=%08b OCRA=%d DDR=%08b", r.TCCRA, r.TCCRB, r.OCRA, r.DDR)
		}}
		return t, func() { t.Stop() }, nil
	case outputNull:
		return nullTone{}, func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown output %q", kind)
}

// playTune plays t in real time and waits for it to finish.
func playTune(ctx context.Context, key string, t music.Tune) error {
	out, closeOut, err := openOutput(gs.Output)
	if err != nil {
		return err
	}
	defer closeOut()

	p := music.NewPlayer(out)
	p.OnFinish(tuneFinished(key))
	if key == "buzz" && t.Len() == 1 {
		p.Buzz(t.Notes[0].Frequency, t.Notes[0].Duration)
	} else {
		p.Load(t)
	}
	logInfo("playing %s: %d notes, %s", key, t.Len(), formatDuration(t.Duration(gs.Tempo)))

	if err := runTicks(ctx, p, music.TickInterval(gs.Tempo), true); err != nil {
		return err
	}
	if ctx.Err() != nil {
		p.Stop()
		return nil
	}
	recordPlay(key, t.Ticks())
	return nil
}

// runServer drives a Player from the command protocol until the input ends
// or the process is interrupted.
func runServer(ctx context.Context) error {
	out, closeOut, err := openOutput(gs.Output)
	if err != nil {
		return err
	}
	defer closeOut()

	p := music.NewPlayer(out)
	p.OnFinish(tuneFinished("command"))
	srv := newCommandServer(p, gs.Strict, gs.Tempo, gs.Tunes)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- runTicks(ctx, p, music.TickInterval(gs.Tempo), false) }()

	var r io.Reader = os.Stdin
	var w io.Writer = os.Stdout
	if serialFlag != "" {
		port, err := openSerial(serialFlag, gs.Baud)
		if err != nil {
			return err
		}
		go func() {
			<-ctx.Done()
			port.Close()
		}()
		r, w = port, port
	}

	err = srv.serve(ctx, r, w)
	p.Stop()
	cancel()
	if tickErr := <-done; err == nil {
		err = tickErr
	}
	return err
}
