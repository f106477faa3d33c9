/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"slices"
)

// pointValues are the only deltas the moderator can award.
var pointValues = []int{1, 2, -1, -2, 5, -5}

// TimerStage runs the countdown and keeps score for the current game.
type TimerStage struct {
	countdown *Countdown
	players   []Player
	selected  int
}

func newTimerStage(countdown *Countdown, h Handoff) *TimerStage {
	return &TimerStage{
		countdown: countdown,
		players:   h.Players,
	}
}

func (t *TimerStage) Players() []Player {
	out := make([]Player, len(t.players))
	copy(out, t.players)

	return out
}

func (t *TimerStage) Selected() int {
	return t.selected
}

func (t *TimerStage) Select(index int) error {
	if index < 0 || index >= len(t.players) {
		return fmt.Errorf("%w: %d", ErrInvalidPlayer, index)
	}

	t.selected = index

	return nil
}

// Award adds delta to the selected player's score, whatever the
// countdown is doing.
func (t *TimerStage) Award(delta int) error {
	if !slices.Contains(pointValues, delta) {
		return fmt.Errorf("%w: %d", ErrInvalidDelta, delta)
	}

	if len(t.players) == 0 {
		return ErrNoPlayers
	}

	t.players[t.selected].Points += delta

	return nil
}

// Finish stops the countdown for good and hands the scores on to the
// results stage.
func (t *TimerStage) Finish() Handoff {
	t.countdown.Close()

	return newHandoff(t.players)
}
