/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"time"

	"github.com/jonboulle/clockwork"
)

type CountdownState string

const (
	CountdownIdle    CountdownState = "idle"
	CountdownRunning CountdownState = "running"
	CountdownExpired CountdownState = "expired"
)

// AudioCue tells the host client what to do with the stress-cue sound.
type AudioCue string

const (
	CueNone  AudioCue = ""
	CuePlay  AudioCue = "play"  // rewind to the start, then play looped
	CuePause AudioCue = "pause" // pause, keeping the current position
	CueStop  AudioCue = "stop"  // pause and rewind
)

const (
	defaultCountdown    = 10
	defaultTickInterval = time.Second
)

// Countdown is the round timer. It is not safe for concurrent use; the
// owning session drives it from a single goroutine, reading C() and
// calling Tick for every value received.
type Countdown struct {
	clock    clockwork.Clock
	interval time.Duration
	duration int

	remaining int
	state     CountdownState
	ticker    clockwork.Ticker
}

func newCountdown(clock clockwork.Clock, duration int, interval time.Duration) *Countdown {
	if duration < 1 {
		duration = defaultCountdown
	}
	if interval <= 0 {
		interval = defaultTickInterval
	}

	return &Countdown{
		clock:     clock,
		interval:  interval,
		duration:  duration,
		remaining: duration,
		state:     CountdownIdle,
	}
}

func (c *Countdown) State() CountdownState {
	return c.state
}

func (c *Countdown) Remaining() int {
	return c.remaining
}

func (c *Countdown) Duration() int {
	return c.duration
}

// C returns the tick channel, or nil when the countdown is not running.
func (c *Countdown) C() <-chan time.Time {
	if c.ticker == nil {
		return nil
	}

	return c.ticker.Chan()
}

func (c *Countdown) Start() AudioCue {
	if c.state == CountdownRunning {
		return CueNone
	}

	if c.state == CountdownExpired || c.remaining <= 0 {
		c.remaining = c.duration
	}

	c.run()

	return CuePlay
}

func (c *Countdown) Pause() AudioCue {
	if c.state != CountdownRunning {
		return CueNone
	}

	c.halt()
	c.state = CountdownIdle

	return CuePause
}

func (c *Countdown) Restart() AudioCue {
	c.halt()
	c.remaining = c.duration
	c.run()

	return CuePlay
}

// Tick advances the countdown by one step. Ticks delivered outside the
// running state are ignored.
func (c *Countdown) Tick() AudioCue {
	if c.state != CountdownRunning {
		return CueNone
	}

	c.remaining--
	if c.remaining > 0 {
		return CueNone
	}

	c.remaining = 0
	c.halt()
	c.state = CountdownExpired

	return CueStop
}

// Close cancels the tick schedule without changing the displayed value.
func (c *Countdown) Close() {
	c.halt()
	if c.state == CountdownRunning {
		c.state = CountdownIdle
	}
}

func (c *Countdown) run() {
	c.ticker = c.clock.NewTicker(c.interval)
	c.state = CountdownRunning
}

func (c *Countdown) halt() {
	if c.ticker == nil {
		return
	}

	c.ticker.Stop()
	c.ticker = nil
}
