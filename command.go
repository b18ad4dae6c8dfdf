package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.bug.st/serial"

	"hexatune/music"
)

// commandServer answers the line protocol spoken over stdin or a serial port.
// Every command line gets exactly one reply line starting with "ok" or "err".
type commandServer struct {
	player *music.Player
	strict bool
	tempo  int
	lib    map[string]string
	// played, when set, is told about every tune or tone started.
	played func(key string, ticks uint64)
}

func newCommandServer(p *music.Player, strict bool, tempo int, lib map[string]string) *commandServer {
	return &commandServer{player: p, strict: strict, tempo: tempo, lib: lib, played: recordPlay}
}

// serve reads commands from r until EOF or ctx is cancelled and writes the
// replies to w. Cancellation returns at once even while r is blocked; the
// reading goroutine ends with the next read.
func (s *commandServer) serve(ctx context.Context, r io.Reader, w io.Writer) error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- sc.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-readErr:
			return err
		case line := <-lines:
			if ctx.Err() != nil {
				return nil
			}
			reply := s.handle(line)
			if reply == "" {
				continue
			}
			logDebug("command %q: %s", line, reply)
			if _, err := io.WriteString(w, reply+"\n"); err != nil {
				return fmt.Errorf("reply: %w", err)
			}
		}
	}
}

// handle executes one command line. Blank lines and lines starting with '#'
// produce no reply.
func (s *commandServer) handle(line string) string {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return ""
	}
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(cmd) {
	case "play":
		if arg == "" {
			return "err usage: play <notation>"
		}
		return s.play("notation", arg)
	case "tune":
		name, notation, ok := lookupTune(s.lib, arg)
		if !ok {
			return "err " + unknownTuneError(s.lib, arg).Error()
		}
		return s.play(name, notation)
	case "buzz":
		freq, ticks, err := parseBuzz(strings.Fields(arg))
		if err != nil {
			return "err " + err.Error()
		}
		s.player.Buzz(freq, ticks)
		s.notePlayed("buzz", uint64(ticks))
		return fmt.Sprintf("ok buzz %d Hz %d ticks", freq, ticks)
	case "stop":
		s.player.Stop()
		return "ok stopped"
	case "status":
		idx, ticks, n := s.player.Position()
		return fmt.Sprintf("ok %s %d/%d +%d", s.player.State(), idx, n, ticks)
	case "list":
		return "ok " + strings.Join(tuneNames(s.lib), " ")
	}
	return fmt.Sprintf("err unknown command %q", cmd)
}

func (s *commandServer) play(key, notation string) string {
	t, err := compileSource(notation, s.strict)
	if err != nil {
		s.player.Stop()
		return "err " + strings.ReplaceAll(err.Error(), "\n", "; ")
	}
	s.player.Load(t)
	s.notePlayed(key, t.Ticks())
	return fmt.Sprintf("ok %d notes %s", t.Len(), formatDuration(t.Duration(s.tempo)))
}

func (s *commandServer) notePlayed(key string, ticks uint64) {
	if s.played != nil {
		s.played(key, ticks)
	}
}

// parseBuzz reads "<freq> <ticks>" arguments.
func parseBuzz(args []string) (int, uint, error) {
	if len(args) != 2 {
		return 0, 0, fmt.Errorf("usage: buzz <freq> <ticks>")
	}
	freq, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, 0, fmt.Errorf("bad frequency %q", args[0])
	}
	ticks, err := strconv.ParseUint(args[1], 10, 16)
	if err != nil {
		return 0, 0, fmt.Errorf("bad duration %q", args[1])
	}
	return freq, uint(ticks), nil
}

// openSerial opens a serial device for the command server.
func openSerial(name string, baud int) (serial.Port, error) {
	p, err := serial.Open(name, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", name, err)
	}
	logInfo("serial %s opened at %d baud", name, baud)
	return p, nil
}
