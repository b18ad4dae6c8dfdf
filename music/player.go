package music

import "sync"

// State is the scheduler state after the most recent tick.
type State int

const (
	Idle State = iota
	PlayingNote
	RestingNote
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case PlayingNote:
		return "playing"
	case RestingNote:
		return "resting"
	}
	return "unknown"
}

// Player schedules a compiled tune onto a ToneOutput, one tick per 32nd note.
// Tick never blocks. Play, Buzz and Stop may be called from other goroutines;
// a tick always sees either the old tune or the new one in full.
//
// The output is assumed silent when the Player is created.
type Player struct {
	out ToneOutput

	mu       sync.Mutex
	notes    []Note
	index    int
	ticks    uint
	state    State
	sounding bool
	finished bool
	onFinish func()
}

// NewPlayer returns an idle Player driving out.
func NewPlayer(out ToneOutput) *Player {
	return &Player{out: out, finished: true}
}

// OnFinish registers fn to run once each time a tune plays to its end. It is
// called from Tick, after the output has been stopped.
func (p *Player) OnFinish(fn func()) {
	p.mu.Lock()
	p.onFinish = fn
	p.mu.Unlock()
}

// Play compiles notation and replaces the current tune with it.
func (p *Player) Play(notation string) {
	p.Load(Compile(notation))
}

// PlayStrict compiles notation in strict mode. On error nothing is installed:
// the previous tune is discarded and the output silenced.
func (p *Player) PlayStrict(notation string) error {
	t, err := CompileStrict(notation)
	if err != nil {
		p.install(nil)
		return err
	}
	p.Load(t)
	return nil
}

// Buzz plays a single tone of the given frequency for duration ticks. A
// frequency <= 0 is a rest.
func (p *Player) Buzz(frequency int, duration uint) {
	if frequency <= 0 {
		frequency = Rest
	}
	p.install([]Note{{Frequency: frequency, Duration: duration}})
}

// Stop discards the current tune and silences the output.
func (p *Player) Stop() {
	p.install(nil)
}

// Load replaces the current tune and rewinds to its first note. Loading an
// empty tune silences the output right away.
func (p *Player) Load(t Tune) {
	notes := t.Notes
	if len(notes) > MaxTuneLen {
		notes = notes[:MaxTuneLen]
	}
	p.install(append([]Note(nil), notes...))
}

func (p *Player) install(notes []Note) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notes = notes
	p.index = 0
	p.ticks = 0
	p.finished = len(notes) == 0
	if len(notes) == 0 {
		p.silence()
		p.state = Idle
	}
}

// Tick advances playback by one 32nd note.
func (p *Player) Tick() {
	p.mu.Lock()
	if p.index >= len(p.notes) {
		p.silence()
		p.state = Idle
		var done func()
		if !p.finished {
			p.finished = true
			done = p.onFinish
		}
		p.mu.Unlock()
		if done != nil {
			done()
		}
		return
	}
	defer p.mu.Unlock()

	n := p.notes[p.index]
	if p.ticks == 0 {
		if n.Frequency == Rest {
			p.silence()
			p.state = RestingNote
		} else {
			p.out.Start(n.Frequency)
			p.sounding = n.Frequency > 0
			p.state = PlayingNote
			if !p.sounding {
				p.state = RestingNote
			}
		}
	}
	p.ticks++
	if p.ticks >= n.Duration {
		p.ticks = 0
		p.index++
	}
}

// silence stops the output unless it is already quiet. Callers hold p.mu.
func (p *Player) silence() {
	if p.sounding {
		p.out.Stop()
		p.sounding = false
	}
}

// State returns the scheduler state as of the last tick.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Position returns the current note index, the ticks spent in it and the
// number of notes in the tune.
func (p *Player) Position() (index int, ticks uint, length int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.index, p.ticks, len(p.notes)
}

// Done reports whether the current tune has no notes left to start.
func (p *Player) Done() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.index >= len(p.notes)
}
