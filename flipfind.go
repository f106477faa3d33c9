/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"embed"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"
)

const (
	playerCookieName = "flipfind_id"
	maxMessageSize   = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

//go:embed flipfind/*
var flipfindAssets embed.FS

func getOrSetPlayerID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(playerCookieName); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}

	id := uuid.NewString()

	http.SetCookie(w, &http.Cookie{
		Name:     playerCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return id
}

// WebSocket handler that picks the session based on :gameid
func serveWS(cfg *Config, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		gameID := ps.ByName("gameid")
		if gameID == "" {
			http.Error(w, "missing game id", http.StatusBadRequest)
			return
		}

		playerID := getOrSetPlayerID(w, r)

		session := gm.getSession(gameID)

		conn, err := upgrader.Upgrade(w, r, w.Header())
		if err != nil {
			log.Warn().Err(err).Str("game", gameID).Msg("upgrade failed")
			return
		}

		client := &Client{
			conn:     conn,
			send:     make(chan any, 32),
			playerID: playerID,
		}

		if err := session.join(client); err != nil {
			_ = conn.Close()
			return
		}

		logf(cfg, "GAMES: %s connected to %s from %s", playerID, gameID, realIP(r))

		go client.writePump()
		client.readPump(session)
	}
}

func (c *Client) readPump(s *Session) {
	defer func() {
		s.leave(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		if err := s.submit(c, msg); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}

	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "game ended"),
		time.Now().Add(time.Second))
}

// serveState returns the current snapshot of an existing game as JSON.
func serveState(cfg *Config, gm *GameManager, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		session, ok := gm.lookup(ps.ByName("gameid"))
		if !ok {
			http.Error(w, "no such game", http.StatusNotFound)
			return
		}

		state, err := session.Snapshot(r.Context())
		if errors.Is(err, errSessionClosed) {
			http.Error(w, "no such game", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "unable to read game state", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(cfg, w)

		if err := json.NewEncoder(w).Encode(state); err != nil {
			errs <- err
		}
	}
}

// QR handler: generates a PNG QR code for the current game URL using go-qrcode.
func serveQR(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	gameID := ps.ByName("gameid")
	if gameID == "" {
		http.Error(w, "missing game id", http.StatusBadRequest)
		return
	}

	// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	// We are at /.../:gameid/qr; strip trailing "/qr" to get the game URL.
	url := scheme + "://" + r.Host + strings.TrimSuffix(r.URL.Path, "/qr")

	const qrSize = 320 // mobile-friendly size
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

func serveAsset(cfg *Config, contentType string, data []byte, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Cache-Control", "public, max-age=3600")
		w.Header().Set("Expires", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		w.Header().Set("Content-Length", strconv.Itoa(len(data)))
		securityHeaders(cfg, w)

		if _, err := w.Write(data); err != nil {
			errs <- err
		}
	}
}

func serveIndex(cfg *Config, page []byte, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-cache")
		securityHeaders(cfg, w)

		_ = getOrSetPlayerID(w, r)

		if _, err := w.Write(page); err != nil {
			errs <- err
		}
	}
}

// redirectNewGame handles GET /path by generating a new random game ID
// (with server-side collision detection) and redirecting to /path/:gameid.
func redirectNewGame(cfg *Config, path string, gm *GameManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		gameID := gm.newGameID()
		logf(cfg, "GAMES: Created game %s/%s", path, gameID)
		http.Redirect(w, r, cfg.prefix+path+"/"+gameID, http.StatusTemporaryRedirect)
	}
}

// registerFlipFindGame sets up routes so that:
//   - $path                  → redirects to new random game (8-char ID)
//   - $path/:gameid          → HTML client
//   - $path/:gameid/ws       → WebSocket for that game
//   - $path/:gameid/state    → JSON snapshot of that game
//   - $path/:gameid/qr       → PNG QR code for that game URL
func registerFlipFindGame(cfg *Config, clock clockwork.Clock, path string, mux *httprouter.Router, errs chan<- error) (*GameManager, error) {
	sound, err := loadSound(cfg)
	if err != nil {
		return nil, err
	}

	page, err := flipfindAssets.ReadFile("flipfind/index.html")
	if err != nil {
		return nil, err
	}

	assets := map[string]string{
		"app.css":  "text/css; charset=utf-8",
		"app.js":   "text/javascript; charset=utf-8",
		"logo.svg": "image/svg+xml",
	}
	for name, contentType := range assets {
		data, err := flipfindAssets.ReadFile("flipfind/" + name)
		if err != nil {
			return nil, err
		}
		mux.GET(cfg.prefix+"/assets/flipfind/"+name, serveAsset(cfg, contentType, data, errs))
	}

	mux.GET(cfg.prefix+"/assets/flipfind/sound", serveAsset(cfg, sound.ContentType, sound.Data, errs))

	gm := newGameManager(cfg, clock)

	mux.GET(cfg.prefix+path, redirectNewGame(cfg, path, gm))
	mux.GET(cfg.prefix+path+"/:gameid", serveIndex(cfg, page, errs))
	mux.GET(cfg.prefix+path+"/:gameid/ws", serveWS(cfg, gm))
	mux.GET(cfg.prefix+path+"/:gameid/state", serveState(cfg, gm, errs))
	mux.GET(cfg.prefix+path+"/:gameid/qr", serveQR)

	logf(cfg, "SERVE: Registered Flip & Find at %s%s (stress cue %s, %s)", cfg.prefix, path, sound.Name, humanReadableSize(len(sound.Data)))

	return gm, nil
}
