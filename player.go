/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import "errors"

const (
	minPlayers = 2
	maxPlayers = 4

	maxNameLength = 32 // runes
)

var (
	ErrRosterNotReady = errors.New("every player needs a name before the game can start")
	ErrInvalidPlayer  = errors.New("no such player")
	ErrInvalidDelta   = errors.New("unsupported point value")
	ErrNoPlayers      = errors.New("no players in this game")
)

// Player is a single scored participant. Players have no ID; a player is
// identified by its position in the session's player sequence.
type Player struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
}

// Handoff carries the player sequence from one stage to the next.
// The receiving stage owns the slice.
type Handoff struct {
	Players []Player
}

func newHandoff(players []Player) Handoff {
	out := make([]Player, len(players))
	copy(out, players)

	return Handoff{Players: out}
}
