/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"strings"
)

// Roster collects player names before a game begins.
type Roster struct {
	names []string
}

func newRoster() *Roster {
	return &Roster{
		names: make([]string, minPlayers),
	}
}

func (r *Roster) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)

	return out
}

func (r *Roster) Len() int {
	return len(r.names)
}

func (r *Roster) CanAdd() bool {
	return len(r.names) < maxPlayers
}

func (r *Roster) CanRemove() bool {
	return len(r.names) > minPlayers
}

// Add appends an empty name slot, unless the roster is already full.
func (r *Roster) Add() bool {
	if !r.CanAdd() {
		return false
	}

	r.names = append(r.names, "")

	return true
}

// Remove drops the last name slot, unless the roster is at its minimum size.
func (r *Roster) Remove() bool {
	if !r.CanRemove() {
		return false
	}

	r.names = r.names[:len(r.names)-1]

	return true
}

func (r *Roster) SetName(index int, name string) error {
	if index < 0 || index >= len(r.names) {
		return fmt.Errorf("%w: %d", ErrInvalidPlayer, index)
	}

	if runes := []rune(name); len(runes) > maxNameLength {
		name = string(runes[:maxNameLength])
	}

	r.names[index] = name

	return nil
}

// Ready reports whether every slot holds a name once whitespace is trimmed.
func (r *Roster) Ready() bool {
	if len(r.names) < minPlayers {
		return false
	}

	for _, name := range r.names {
		if strings.TrimSpace(name) == "" {
			return false
		}
	}

	return true
}

// Start turns the roster into zero-point players for the timer stage.
func (r *Roster) Start() (Handoff, error) {
	if !r.Ready() {
		return Handoff{}, ErrRosterNotReady
	}

	players := make([]Player, 0, len(r.names))
	for _, name := range r.names {
		players = append(players, Player{Name: strings.TrimSpace(name)})
	}

	return Handoff{Players: players}, nil
}
