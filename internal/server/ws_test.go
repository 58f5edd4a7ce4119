package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"WaveDefence/internal/config"
	"WaveDefence/internal/game"
	"WaveDefence/internal/host"
)

const testDocument = `
zones:
  - zone: li01
    position: {x: 500, y: 0, z: 500}
    waves:
      - hostiles: [li_n_grp_fighter_d1]
        reward: 250
bounty:
  ships:
    - ship_name: li_n_grp_fighter_d1
      bounty: 40
`

func newTestApp(t *testing.T) (*App, *httptest.Server) {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "wave_defence.yaml")
	if err := os.WriteFile(cfgPath, []byte(testDocument), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	app, err := NewApp(AppConfig{ConfigPath: cfgPath, DataDir: dir, Seed: 3})
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	srv := httptest.NewServer(app.Routes())
	t.Cleanup(func() {
		srv.Close()
		_ = app.Close()
	})
	return app, srv
}

func dial(t *testing.T, srv *httptest.Server, path string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + path
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", path, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload any) {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := conn.WriteJSON(inboundMessage{Type: typ, Payload: raw}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

// readUntil reads frames until match returns true.
func readUntil(t *testing.T, conn *websocket.Conn, match func(frame) bool) frame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			t.Fatalf("read: %v", err)
		}
		if match(f) {
			return f
		}
	}
}

func hasText(text string) func(frame) bool {
	return func(f frame) bool {
		for _, m := range f.Messages {
			if m.Text == text {
				return true
			}
		}
		return false
	}
}

func getJSON(t *testing.T, url string, v any) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
}

func TestWaveGameOverWebSocket(t *testing.T) {
	app, srv := newTestApp(t)
	conn := dial(t, srv, "/ws")

	send(t, conn, "connect", connectDTO{Name: "Juni"})
	welcome := readUntil(t, conn, func(f frame) bool { return f.Type == "welcome" })
	p := welcome.Player

	send(t, conn, "launch", launchDTO{Zone: "li01"})
	if f := readUntil(t, conn, func(f frame) bool { return f.Type == "launched" || f.Type == "error" }); f.Type != "launched" {
		t.Fatalf("launch failed: %s", f.Error)
	}

	send(t, conn, "command", commandDTO{Line: "/wave"})
	readUntil(t, conn, hasText("The game will start shortly."))

	app.Hub.OnSessionStartPoll()

	var live struct {
		Sessions []game.SessionView `json:"sessions"`
	}
	getJSON(t, srv.URL+"/api/sessions", &live)
	if len(live.Sessions) != 1 || !live.Sessions[0].Started || live.Sessions[0].Hostiles != 1 {
		t.Fatalf("unexpected live sessions %+v", live.Sessions)
	}

	var ents struct {
		Entities []host.EntityView `json:"entities"`
	}
	getJSON(t, srv.URL+"/api/entities?zone=li01", &ents)
	var target game.EntityID
	for _, e := range ents.Entities {
		if e.Kind == host.KindHostile.String() {
			target = e.ID
		}
	}
	if target == 0 {
		t.Fatalf("no hostile in %+v", ents.Entities)
	}

	send(t, conn, "destroy", destroyDTO{Entity: target})
	readUntil(t, conn, hasText("Bounty claimed: 40$"))

	if got := app.Sandbox.Credits(p); got != 290 {
		t.Fatalf("expected 290 credits, got %d", got)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.Index.Sync(ctx); err != nil {
		t.Fatalf("sync: %v", err)
	}
	var hist struct {
		Sessions []struct {
			State   string `json:"state"`
			Rewards int    `json:"rewards"`
		} `json:"sessions"`
	}
	getJSON(t, srv.URL+"/api/history", &hist)
	if len(hist.Sessions) != 1 || hist.Sessions[0].State != "won" || hist.Sessions[0].Rewards != 250 {
		t.Fatalf("unexpected history %+v", hist.Sessions)
	}
}

func TestCommandsRequireConnect(t *testing.T) {
	_, srv := newTestApp(t)
	conn := dial(t, srv, "/ws")

	send(t, conn, "launch", launchDTO{Zone: "li01"})
	f := readUntil(t, conn, func(f frame) bool { return f.Type == "error" })
	if f.Error != errNotConnected.Error() {
		t.Fatalf("unexpected error %q", f.Error)
	}

	send(t, conn, "connect", connectDTO{Name: "A"})
	readUntil(t, conn, func(f frame) bool { return f.Type == "welcome" })
	send(t, conn, "warp", nil)
	f = readUntil(t, conn, func(f frame) bool { return f.Type == "error" })
	if !strings.Contains(f.Error, "unknown message type") {
		t.Fatalf("unexpected error %q", f.Error)
	}
}

func TestClosingSocketDisconnectsPlayer(t *testing.T) {
	app, srv := newTestApp(t)
	conn := dial(t, srv, "/ws")
	send(t, conn, "connect", connectDTO{Name: "A"})
	p := readUntil(t, conn, func(f frame) bool { return f.Type == "welcome" }).Player
	_ = conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if pl, ok := app.Sandbox.Player(p); ok && !pl.Online {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("player %d still online after socket closed", p)
}

func TestObserveStreamsJournal(t *testing.T) {
	app, srv := newTestApp(t)
	obs := dial(t, srv, "/observe")

	deadline := time.Now().Add(5 * time.Second)
	for app.Observers.Count() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("observer never subscribed")
		}
		time.Sleep(10 * time.Millisecond)
	}

	p := app.Sandbox.Connect("Juni")
	if _, err := app.Sandbox.Launch(p, "li01"); err != nil {
		t.Fatalf("launch: %v", err)
	}
	if err := app.Hub.HandleWaveCommand(p); err != nil {
		t.Fatalf("wave: %v", err)
	}

	_ = obs.SetReadDeadline(time.Now().Add(5 * time.Second))
	var ef eventFrame
	if err := obs.ReadJSON(&ef); err != nil {
		t.Fatalf("read event: %v", err)
	}
	if ef.Event.Kind != game.EventSessionCreated || ef.Event.Zone != "li01" {
		t.Fatalf("unexpected event %+v", ef.Event)
	}
}

func TestHealthz(t *testing.T) {
	_, srv := newTestApp(t)
	var h healthDTO
	getJSON(t, srv.URL+"/healthz", &h)
	if h.Status != "ok" || h.Sessions != 0 {
		t.Fatalf("unexpected health %+v", h)
	}
}

func TestAppConfigFromEnvKeepsDefaults(t *testing.T) {
	cfg := AppConfigFromEnv(config.Env{})
	if cfg.ConfigPath != "configs/wave_defence.yaml" || cfg.PollInterval != game.DefaultPollInterval {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if got := cfg.dbPath(); got != filepath.Join("data", "index", "sessions.sqlite") {
		t.Fatalf("unexpected db path %s", got)
	}
}
