package main

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"hexatune/music"
)

// tickPlayer is the part of music.Player the tick driver needs.
type tickPlayer interface {
	Tick()
	Done() bool
	State() music.State
}

// runTicks calls p.Tick once per interval until ctx is cancelled. With
// untilIdle set it also returns once the loaded tune has finished and the
// output has been stopped. Cancellation is not an error.
func runTicks(ctx context.Context, p tickPlayer, interval time.Duration, untilIdle bool) error {
	lim := rate.NewLimiter(rate.Every(interval), 1)
	var ticks uint64
	start := time.Now()
	for {
		if err := lim.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				logDebug("tick driver stopped after %d ticks", ticks)
				return nil
			}
			return err
		}
		p.Tick()
		ticks++
		if untilIdle && p.Done() && p.State() == music.Idle {
			logDebug("tune done: %d ticks in %v", ticks, time.Since(start).Round(time.Millisecond))
			return nil
		}
	}
}
