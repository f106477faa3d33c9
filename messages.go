/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

type Stage string

const (
	StageRoster  Stage = "roster"
	StageTimer   Stage = "timer"
	StageResults Stage = "results"
)

// Messages coming from clients
type ClientMessage struct {
	Type  string `json:"type"`            // see the command constants below
	Index *int   `json:"index,omitempty"` // set_name / select_player
	Name  string `json:"name,omitempty"`  // set_name
	Delta int    `json:"delta,omitempty"` // award
	Error string `json:"error,omitempty"` // audio_error
}

const (
	cmdAddPlayer    = "add_player"
	cmdRemovePlayer = "remove_player"
	cmdSetName      = "set_name"
	cmdStartGame    = "start_game"
	cmdTimerStart   = "timer_start"
	cmdTimerPause   = "timer_pause"
	cmdTimerRestart = "timer_restart"
	cmdSelectPlayer = "select_player"
	cmdAward        = "award"
	cmdShowResults  = "show_results"
	cmdReplay       = "replay"
	cmdAudioError   = "audio_error"
)

// SessionInfoMessage is sent immediately on connect so the client knows
// whether it controls the game or is only watching.
type SessionInfoMessage struct {
	Type        string `json:"type"` // "session_info"
	GameID      string `json:"game_id"`
	IsModerator bool   `json:"is_moderator"`
}

// AudioMessage is sent only to the moderator, whose screen plays the sound.
type AudioMessage struct {
	Type   string   `json:"type"` // "audio"
	Action AudioCue `json:"action"`
}

// ErrorMessage is sent to a single client whose command was rejected.
type ErrorMessage struct {
	Type    string `json:"type"` // "error"
	Message string `json:"message"`
}

// StateMessage is a full snapshot of the session. Exactly one of the
// stage sections is populated, matching Stage.
type StateMessage struct {
	Type    string       `json:"type"` // "state"
	Stage   Stage        `json:"stage"`
	Roster  *RosterView  `json:"roster,omitempty"`
	Timer   *TimerView   `json:"timer,omitempty"`
	Results *ResultsView `json:"results,omitempty"`
}

type RosterView struct {
	Names     []string `json:"names"`
	CanAdd    bool     `json:"can_add"`
	CanRemove bool     `json:"can_remove"`
	Ready     bool     `json:"ready"`
}

type TimerView struct {
	State       CountdownState `json:"state"`
	Remaining   int            `json:"remaining"`
	Duration    int            `json:"duration"`
	Players     []Player       `json:"players"`
	Selected    int            `json:"selected"`
	PointValues []int          `json:"point_values"`
}

type ResultsView struct {
	Winner   *Ranking  `json:"winner,omitempty"`
	Rankings []Ranking `json:"rankings"`
}
