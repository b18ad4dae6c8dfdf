package music

// ToneOutput emits a square wave. Start with a frequency <= 0 is the same as
// Stop. Only the Player that owns an output should call it.
type ToneOutput interface {
	Start(frequency int)
	Stop()
}

const (
	// TimerClock is the reference board's timer input: a 16 MHz CPU clock
	// divided by 8.
	TimerClock = 2_000_000

	timerCTCToggle = 0b01000000 // toggle OCnA on compare match
	timerCTCDiv8   = 0b00001010 // WGM mode 4 (CTC), clock/8
	timerPin       = 1 << 3
)

// TimerRegs mirrors the control registers of the 16-bit timer that drives the
// buzzer pin on the reference board.
type TimerRegs struct {
	TCCRA uint8
	TCCRB uint8
	OCRA  uint16
	DDR   uint8
}

// TimerTone is the hardware-timer Tone Output. It writes the register values
// the board needs for a clock-divided CTC square wave. Write, when set, is
// called after every register update.
type TimerTone struct {
	Regs  TimerRegs
	Write func(TimerRegs)
}

// TimerPeriod returns the compare value for a frequency, clamped to the
// 16-bit register.
func TimerPeriod(frequency int) uint16 {
	if frequency <= 0 {
		return 0
	}
	p := TimerClock / frequency
	if p > 0xFFFF {
		return 0xFFFF
	}
	return uint16(p)
}

func (t *TimerTone) Start(frequency int) {
	if frequency <= 0 {
		t.Stop()
		return
	}
	t.Regs.DDR |= timerPin
	t.Regs.TCCRA = timerCTCToggle
	t.Regs.TCCRB = timerCTCDiv8
	t.Regs.OCRA = TimerPeriod(frequency)
	t.flush()
}

func (t *TimerTone) Stop() {
	t.Regs.TCCRA = 0
	t.Regs.TCCRB = 0
	t.flush()
}

// Running reports whether the timer clock is enabled.
func (t *TimerTone) Running() bool { return t.Regs.TCCRB != 0 }

func (t *TimerTone) flush() {
	if t.Write != nil {
		t.Write(t.Regs)
	}
}
