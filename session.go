/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Flip & Find
//
// A moderator enters two to four player names, runs a short countdown with a
// looping stress cue while the players hunt for matching cards, awards or
// deducts points as they go, then shows the final ranking.
//
// Features:
// - WebSockets per game ID: /path/:gameid and /path/:gameid/ws
// - First connection to a game becomes moderator; everyone else watches
// - Players identified by cookie (playerID), so a moderator can reconnect
// - All stage state lives in one goroutine per game; ticks, commands and
//   connections are serialized through it
// - The countdown pauses itself when nobody is connected
// - Games auto-reaped after configurable idle timeout
// - Random 8-char game IDs via crypto/rand, with server-side collision check
// - JSON snapshot at /path/:gameid/state for external scoreboards
// - In-browser QR button to share the current session, backed by go-qrcode

package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
)

var (
	errUnavailable   = errors.New("not available at this stage")
	errNotModerator  = errors.New("only the moderator can control the game")
	errSessionClosed = errors.New("game has ended")
)

type Client struct {
	conn     *websocket.Conn
	send     chan any
	playerID string
}

type command struct {
	client *Client
	msg    ClientMessage
}

type snapshotRequest struct {
	reply chan StateMessage
}

// Session is one running game. Everything below the mutex is owned by the
// run goroutine and must not be touched from anywhere else.
type Session struct {
	id    string
	cfg   *Config
	clock clockwork.Clock

	register  chan *Client
	unreg     chan *Client
	commands  chan command
	snapshots chan snapshotRequest
	quit      chan struct{}
	closeOnce sync.Once

	mu         sync.RWMutex
	createdAt  time.Time
	lastActive time.Time

	clients           map[*Client]bool
	moderatorPlayerID string

	stage   Stage
	roster  *Roster
	timer   *TimerStage
	results *ResultsStage
}

func newSession(cfg *Config, clock clockwork.Clock, gameID string) *Session {
	now := clock.Now()

	return &Session{
		id:         gameID,
		cfg:        cfg,
		clock:      clock,
		register:   make(chan *Client),
		unreg:      make(chan *Client),
		commands:   make(chan command),
		snapshots:  make(chan snapshotRequest),
		quit:       make(chan struct{}),
		createdAt:  now,
		lastActive: now,
		clients:    make(map[*Client]bool),
		stage:      StageRoster,
		roster:     newRoster(),
	}
}

func (s *Session) run() {
	defer s.teardown()

	for {
		select {
		case c := <-s.register:
			s.handleRegister(c)

		case c := <-s.unreg:
			s.handleUnregister(c)

		case cmd := <-s.commands:
			s.handleCommand(cmd)

		case req := <-s.snapshots:
			req.reply <- s.snapshot()

		case <-s.ticks():
			s.handleTick()

		case <-s.quit:
			return
		}
	}
}

// ticks is nil, and so never selected, unless a countdown is running.
func (s *Session) ticks() <-chan time.Time {
	if s.timer == nil {
		return nil
	}

	return s.timer.countdown.C()
}

func (s *Session) join(c *Client) error {
	select {
	case s.register <- c:
		return nil
	case <-s.quit:
		return errSessionClosed
	}
}

func (s *Session) leave(c *Client) {
	select {
	case s.unreg <- c:
	case <-s.quit:
	}
}

func (s *Session) submit(c *Client, msg ClientMessage) error {
	select {
	case s.commands <- command{client: c, msg: msg}:
		return nil
	case <-s.quit:
		return errSessionClosed
	}
}

// Snapshot asks the run goroutine for the current state.
func (s *Session) Snapshot(ctx context.Context) (StateMessage, error) {
	req := snapshotRequest{reply: make(chan StateMessage, 1)}

	select {
	case <-s.quit:
		return StateMessage{}, errSessionClosed
	default:
	}

	select {
	case s.snapshots <- req:
	case <-s.quit:
		return StateMessage{}, errSessionClosed
	case <-ctx.Done():
		return StateMessage{}, ctx.Err()
	}

	select {
	case state := <-req.reply:
		return state, nil
	case <-ctx.Done():
		return StateMessage{}, ctx.Err()
	}
}

func (s *Session) close() {
	s.closeOnce.Do(func() {
		close(s.quit)
	})
}

func (s *Session) idleSince() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lastActive
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActive = s.clock.Now()
	s.mu.Unlock()
}

func (s *Session) teardown() {
	if s.timer != nil {
		s.timer.countdown.Close()
	}

	for c := range s.clients {
		close(c.send)
		delete(s.clients, c)
	}

	logf(s.cfg, "GAMES: Ended %s after %s", s.id, s.clock.Since(s.createdAt).Round(time.Second))
}

func (s *Session) handleRegister(c *Client) {
	s.touch()

	// First connection becomes moderator
	if s.moderatorPlayerID == "" {
		s.moderatorPlayerID = c.playerID
	}

	s.clients[c] = true

	s.deliver(c, SessionInfoMessage{
		Type:        "session_info",
		GameID:      s.id,
		IsModerator: c.playerID == s.moderatorPlayerID,
	})
	s.deliver(c, s.snapshot())
}

func (s *Session) handleUnregister(c *Client) {
	s.touch()

	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}

	if len(s.clients) > 0 || s.timer == nil {
		return
	}

	if s.timer.countdown.Pause() != CueNone {
		logf(s.cfg, "GAMES: Paused countdown in %s, no clients connected", s.id)
	}
}

func (s *Session) handleCommand(cmd command) {
	s.touch()

	c, msg := cmd.client, cmd.msg

	// Playback failures never change state; they only get reported.
	if msg.Type == cmdAudioError {
		logf(s.cfg, "AUDIO: Playback failed for %s in %s: %s", c.playerID, s.id, msg.Error)
		return
	}

	if c.playerID != s.moderatorPlayerID {
		s.deliver(c, ErrorMessage{Type: "error", Message: errNotModerator.Error()})
		return
	}

	cue, err := s.apply(msg)
	if err != nil {
		logf(s.cfg, "GAMES: Rejected %q in %s: %v", msg.Type, s.id, err)
		s.deliver(c, ErrorMessage{Type: "error", Message: err.Error()})
		return
	}

	s.cue(cue)
	s.broadcastState()
}

func (s *Session) handleTick() {
	cue := s.timer.countdown.Tick()
	if cue == CueStop {
		logf(s.cfg, "GAMES: Countdown expired in %s", s.id)
	}

	s.cue(cue)
	s.broadcastState()
}

// apply runs a moderator command against the current stage.
func (s *Session) apply(msg ClientMessage) (AudioCue, error) {
	switch s.stage {
	case StageRoster:
		return CueNone, s.applyRoster(msg)
	case StageTimer:
		return s.applyTimer(msg)
	case StageResults:
		return CueNone, s.applyResults(msg)
	}

	return CueNone, fmt.Errorf("%w: %s", errUnavailable, msg.Type)
}

func (s *Session) applyRoster(msg ClientMessage) error {
	switch msg.Type {
	case cmdAddPlayer:
		s.roster.Add()
	case cmdRemovePlayer:
		s.roster.Remove()
	case cmdSetName:
		if msg.Index == nil {
			return ErrInvalidPlayer
		}
		return s.roster.SetName(*msg.Index, msg.Name)
	case cmdStartGame:
		h, err := s.roster.Start()
		if err != nil {
			return err
		}
		s.enterTimer(h)
	default:
		return fmt.Errorf("%w: %s", errUnavailable, msg.Type)
	}

	return nil
}

func (s *Session) applyTimer(msg ClientMessage) (AudioCue, error) {
	countdown := s.timer.countdown

	switch msg.Type {
	case cmdTimerStart:
		return countdown.Start(), nil
	case cmdTimerPause:
		return countdown.Pause(), nil
	case cmdTimerRestart:
		return countdown.Restart(), nil
	case cmdSelectPlayer:
		if msg.Index == nil {
			return CueNone, ErrInvalidPlayer
		}
		return CueNone, s.timer.Select(*msg.Index)
	case cmdAward:
		return CueNone, s.timer.Award(msg.Delta)
	case cmdShowResults:
		s.enterResults(s.timer.Finish())
		return CueStop, nil
	}

	return CueNone, fmt.Errorf("%w: %s", errUnavailable, msg.Type)
}

func (s *Session) applyResults(msg ClientMessage) error {
	if msg.Type != cmdReplay {
		return fmt.Errorf("%w: %s", errUnavailable, msg.Type)
	}

	s.results = nil
	s.roster = newRoster()
	s.stage = StageRoster

	logf(s.cfg, "GAMES: Replaying %s", s.id)

	return nil
}

func (s *Session) enterTimer(h Handoff) {
	countdown := newCountdown(s.clock, s.cfg.countdown, s.cfg.tickInterval)

	s.roster = nil
	s.timer = newTimerStage(countdown, h)
	s.stage = StageTimer

	logf(s.cfg, "GAMES: Started %s with %d players", s.id, len(h.Players))
}

func (s *Session) enterResults(h Handoff) {
	s.timer = nil
	s.results = newResultsStage(h)
	s.stage = StageResults

	if winner, ok := s.results.Winner(); ok {
		logf(s.cfg, "GAMES: %q won %s with %d points", winner.Name, s.id, winner.Points)
	} else {
		logf(s.cfg, "GAMES: Showing results for %s with no players", s.id)
	}
}

func (s *Session) snapshot() StateMessage {
	msg := StateMessage{
		Type:  "state",
		Stage: s.stage,
	}

	switch s.stage {
	case StageRoster:
		msg.Roster = &RosterView{
			Names:     s.roster.Names(),
			CanAdd:    s.roster.CanAdd(),
			CanRemove: s.roster.CanRemove(),
			Ready:     s.roster.Ready(),
		}
	case StageTimer:
		msg.Timer = &TimerView{
			State:       s.timer.countdown.State(),
			Remaining:   s.timer.countdown.Remaining(),
			Duration:    s.timer.countdown.Duration(),
			Players:     s.timer.Players(),
			Selected:    s.timer.Selected(),
			PointValues: pointValues,
		}
	case StageResults:
		view := &ResultsView{
			Rankings: s.results.Rankings(),
		}
		if winner, ok := s.results.Winner(); ok {
			view.Winner = &winner
		}
		msg.Results = view
	}

	return msg
}

// deliver queues msg for one client, dropping the client if it can't keep up.
func (s *Session) deliver(c *Client, msg any) {
	if !s.clients[c] {
		return
	}

	select {
	case c.send <- msg:
	default:
		delete(s.clients, c)
		close(c.send)
	}
}

func (s *Session) broadcastState() {
	msg := s.snapshot()

	for c := range s.clients {
		s.deliver(c, msg)
	}
}

// cue forwards audio instructions to the moderator's screen only.
func (s *Session) cue(cue AudioCue) {
	if cue == CueNone {
		return
	}

	for c := range s.clients {
		if c.playerID == s.moderatorPlayerID {
			s.deliver(c, AudioMessage{Type: "audio", Action: cue})
		}
	}
}

// GameManager holds a set of sessions keyed by game ID, so each
// $path/$gameid is its own isolated game.
type GameManager struct {
	mu          sync.Mutex
	sessions    map[string]*Session
	cfg         *Config
	clock       clockwork.Clock
	idleTimeout time.Duration
	done        chan struct{}
	stopOnce    sync.Once
}

func newGameManager(cfg *Config, clock clockwork.Clock) *GameManager {
	gm := &GameManager{
		sessions:    make(map[string]*Session),
		cfg:         cfg,
		clock:       clock,
		idleTimeout: cfg.sessionTimeout,
		done:        make(chan struct{}),
	}
	if gm.idleTimeout > 0 {
		go gm.reaperLoop(clock.NewTicker(gm.idleTimeout / 2))
	}

	return gm
}

func (gm *GameManager) getSession(gameID string) *Session {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if s, ok := gm.sessions[gameID]; ok {
		return s
	}

	s := newSession(gm.cfg, gm.clock, gameID)
	gm.sessions[gameID] = s
	go s.run()

	return s
}

func (gm *GameManager) lookup(gameID string) (*Session, bool) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	s, ok := gm.sessions[gameID]

	return s, ok
}

// newGameID generates a crypto-random game ID and ensures it doesn't
// collide with existing games.
func (gm *GameManager) newGameID() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	for {
		buf := make([]byte, 8)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		for i := range buf {
			buf[i] = letters[int(buf[i])%len(letters)]
		}
		id := string(buf)

		if _, exists := gm.lookup(id); !exists {
			return id
		}
	}
}

// reaperLoop periodically ends sessions that have been idle longer than idleTimeout.
func (gm *GameManager) reaperLoop(ticker clockwork.Ticker) {
	defer ticker.Stop()

	for {
		select {
		case <-ticker.Chan():
		case <-gm.done:
			return
		}

		cutoff := gm.clock.Now().Add(-gm.idleTimeout)

		gm.mu.Lock()
		for id, s := range gm.sessions {
			if s.idleSince().Before(cutoff) {
				delete(gm.sessions, id)
				s.close()
			}
		}
		gm.mu.Unlock()
	}
}

// shutdown ends every session and stops the reaper.
func (gm *GameManager) shutdown() {
	gm.stopOnce.Do(func() {
		close(gm.done)
	})

	gm.mu.Lock()
	defer gm.mu.Unlock()

	for id, s := range gm.sessions {
		delete(gm.sessions, id)
		s.close()
	}
}
