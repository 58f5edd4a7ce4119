package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"WaveDefence/internal/game"
)

const (
	outboxRate   = 100 * time.Millisecond
	writeTimeout = 5 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

var errNotConnected = errors.New("connect first")

type liveConn struct {
	conn     *websocket.Conn
	sendTick *time.Ticker

	wmu sync.Mutex

	mu     sync.Mutex
	player game.PlayerID
}

func (c *liveConn) writeJSON(v any) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.conn.WriteJSON(v)
}

func (c *liveConn) playerID() game.PlayerID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.player
}

func (c *liveConn) setPlayer(p game.PlayerID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.player = p
}

func serveWS(a *App, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("upgrade:", err)
		return
	}
	lc := &liveConn{
		conn:     conn,
		sendTick: time.NewTicker(outboxRate),
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go func() {
		defer cancel()
		for {
			msgType, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if msgType != websocket.TextMessage {
				continue
			}
			var inbound inboundMessage
			if err := json.Unmarshal(data, &inbound); err != nil {
				log.Printf("invalid JSON message: %v", err)
				_ = lc.writeJSON(frame{Type: "error", Error: "invalid JSON"})
				continue
			}
			if done := handleInbound(a, lc, inbound); done {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			lc.sendTick.Stop()
			if p := lc.playerID(); p != 0 {
				if pl, ok := a.Sandbox.Player(p); ok && pl.Online {
					_ = a.Sandbox.Disconnect(p)
				}
			}
			_ = conn.Close()
			return
		case <-lc.sendTick.C:
			p := lc.playerID()
			if p == 0 {
				continue
			}
			if msgs := a.Sandbox.Drain(p); len(msgs) > 0 {
				if err := lc.writeJSON(frame{Type: "messages", Messages: msgs}); err != nil {
					cancel()
				}
			}
		}
	}
}

// handleInbound applies one client command. It reports whether the
// connection should close.
func handleInbound(a *App, lc *liveConn, in inboundMessage) bool {
	p := lc.playerID()
	reply := func(f frame, err error) {
		if err != nil {
			f = frame{Type: "error", Error: err.Error()}
		}
		if werr := lc.writeJSON(f); werr != nil {
			log.Printf("ws write: %v", werr)
		}
	}

	if in.Type != "connect" && p == 0 {
		reply(frame{}, errNotConnected)
		return false
	}

	switch in.Type {
	case "connect":
		if p != 0 {
			reply(frame{}, errors.New("already connected"))
			return false
		}
		var payload connectDTO
		if err := decodePayload(in, &payload); err != nil {
			reply(frame{}, err)
			return false
		}
		name := strings.TrimSpace(payload.Name)
		if name == "" {
			name = "Anon"
		}
		id := a.Sandbox.Connect(name)
		lc.setPlayer(id)
		reply(frame{Type: "welcome", Player: id}, nil)
	case "launch":
		var payload launchDTO
		if err := decodePayload(in, &payload); err != nil {
			reply(frame{}, err)
			return false
		}
		ship, err := a.Sandbox.Launch(p, payload.Zone)
		reply(frame{Type: "launched", Ship: ship}, err)
	case "dock":
		reply(frame{Type: "docked"}, a.Sandbox.Dock(p))
	case "invite":
		var payload inviteDTO
		if err := decodePayload(in, &payload); err != nil {
			reply(frame{}, err)
			return false
		}
		g, err := a.Sandbox.Invite(p, payload.Player)
		reply(frame{Type: "group", Group: g}, err)
	case "destroy":
		var payload destroyDTO
		if err := decodePayload(in, &payload); err != nil {
			reply(frame{}, err)
			return false
		}
		reply(frame{Type: "destroyed"}, a.Sandbox.Destroy(payload.Entity, p))
	case "command":
		var payload commandDTO
		if err := decodePayload(in, &payload); err != nil {
			reply(frame{}, err)
			return false
		}
		if err := a.Sandbox.Command(p, payload.Line); err != nil {
			reply(frame{}, err)
		}
	case "disconnect":
		if err := a.Sandbox.Disconnect(p); err != nil {
			log.Printf("disconnect player %d: %v", p, err)
		}
		return true
	default:
		reply(frame{}, errors.New("unknown message type: "+in.Type))
	}
	return false
}

func decodePayload(in inboundMessage, v any) error {
	if len(in.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(in.Payload, v); err != nil {
		return errors.New("invalid " + in.Type + " payload")
	}
	return nil
}

func serveObserve(a *App, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("upgrade:", err)
		return
	}
	defer conn.Close()

	events, release := a.Observers.Subscribe()
	defer release()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(eventFrame{Type: "event", Event: e}); err != nil {
				return
			}
		}
	}
}
