/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountdown_RunsDownToExpiry(t *testing.T) {
	c := newCountdown(clockwork.NewFakeClock(), 10, time.Second)

	require.Equal(t, CuePlay, c.Start())
	require.Equal(t, CountdownRunning, c.State())

	var seen []int
	for c.State() == CountdownRunning {
		cue := c.Tick()
		seen = append(seen, c.Remaining())
		if c.Remaining() > 0 {
			assert.Equal(t, CueNone, cue)
		} else {
			assert.Equal(t, CueStop, cue)
		}
	}

	assert.Equal(t, []int{9, 8, 7, 6, 5, 4, 3, 2, 1, 0}, seen)
	assert.Equal(t, CountdownExpired, c.State())
	assert.Nil(t, c.C(), "expiry must cancel the tick schedule")
}

func TestCountdown_TicksFromClock(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := newCountdown(clock, 10, time.Second)

	assert.Nil(t, c.C())
	c.Start()

	ticks := 0
	for c.State() == CountdownRunning {
		clock.Advance(time.Second)

		select {
		case <-c.C():
			c.Tick()
			ticks++
		case <-time.After(time.Second):
			t.Fatalf("no tick after %d", ticks)
		}
	}

	assert.Equal(t, 10, ticks)
	assert.Equal(t, 0, c.Remaining())
	assert.Equal(t, CountdownExpired, c.State())
}

func TestCountdown_PauseKeepsValue(t *testing.T) {
	c := newCountdown(clockwork.NewFakeClock(), 10, time.Second)
	c.Start()
	c.Tick()
	c.Tick()

	assert.Equal(t, CuePause, c.Pause())
	assert.Equal(t, CountdownIdle, c.State())
	assert.Equal(t, 8, c.Remaining())
	assert.Nil(t, c.C())

	assert.Equal(t, CueNone, c.Tick(), "ticks are ignored while idle")
	assert.Equal(t, 8, c.Remaining())

	c.Start()
	assert.Equal(t, 8, c.Remaining(), "start resumes from the paused value")
}

func TestCountdown_PauseWhileIdleIsNoop(t *testing.T) {
	c := newCountdown(clockwork.NewFakeClock(), 10, time.Second)

	assert.Equal(t, CueNone, c.Pause())
	assert.Equal(t, CountdownIdle, c.State())
	assert.Equal(t, 10, c.Remaining())
}

func TestCountdown_StartWhileRunningIsNoop(t *testing.T) {
	c := newCountdown(clockwork.NewFakeClock(), 10, time.Second)
	c.Start()
	c.Tick()
	ch := c.C()

	assert.Equal(t, CueNone, c.Start())
	assert.Equal(t, 9, c.Remaining())
	assert.Equal(t, ch, c.C(), "start must not replace a running schedule")
}

func TestCountdown_RestartFromAnyState(t *testing.T) {
	for _, setup := range []struct {
		name string
		fn   func(c *Countdown)
	}{
		{"idle", func(c *Countdown) {}},
		{"running", func(c *Countdown) { c.Start(); c.Tick(); c.Tick() }},
		{"paused", func(c *Countdown) { c.Start(); c.Tick(); c.Pause() }},
		{"expired", func(c *Countdown) {
			c.Start()
			for c.State() == CountdownRunning {
				c.Tick()
			}
		}},
	} {
		t.Run(setup.name, func(t *testing.T) {
			c := newCountdown(clockwork.NewFakeClock(), 10, time.Second)
			setup.fn(c)

			assert.Equal(t, CuePlay, c.Restart())
			assert.Equal(t, CountdownRunning, c.State())
			assert.Equal(t, 10, c.Remaining())
			assert.NotNil(t, c.C())
		})
	}
}

func TestCountdown_StartAfterExpiryRewinds(t *testing.T) {
	c := newCountdown(clockwork.NewFakeClock(), 3, time.Second)
	c.Start()
	c.Tick()
	c.Tick()
	c.Tick()
	require.Equal(t, CountdownExpired, c.State())

	assert.Equal(t, CuePlay, c.Start())
	assert.Equal(t, CountdownRunning, c.State())
	assert.Equal(t, 3, c.Remaining())
}

func TestCountdown_CloseCancelsSchedule(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c := newCountdown(clock, 10, time.Second)
	c.Start()
	ch := c.C()

	c.Close()
	assert.Nil(t, c.C())
	assert.Equal(t, CountdownIdle, c.State())

	clock.Advance(5 * time.Second)
	select {
	case <-ch:
		t.Fatal("stopped ticker still fired")
	default:
	}
}

func TestCountdown_Defaults(t *testing.T) {
	c := newCountdown(clockwork.NewFakeClock(), 0, 0)

	assert.Equal(t, defaultCountdown, c.Duration())
	assert.Equal(t, defaultCountdown, c.Remaining())
}
