package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"WaveDefence/internal/game"
)

// ErrIndexClosed is returned by queries after Close.
var ErrIndexClosed = errors.New("session index closed")

// SQLiteIndex stores journal events and per-session summaries. Writes are
// queued and applied by a single goroutine.
type SQLiteIndex struct {
	db *sql.DB

	// mu guards sends on ch against Close.
	mu   sync.RWMutex
	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed  atomic.Bool
	dropped atomic.Int64
}

type req struct {
	event game.Event
	sync  chan struct{}
}

// SessionRecord is the stored summary of one session.
type SessionRecord struct {
	SessionID    string          `json:"session_id"`
	Zone         game.ZoneID     `json:"zone"`
	Leader       game.PlayerID   `json:"leader"`
	Members      []game.PlayerID `json:"members"`
	State        string          `json:"state"`
	WavesCleared int             `json:"waves_cleared"`
	Rewards      int             `json:"rewards"`
	CreatedAt    time.Time       `json:"created_at"`
	StartedAt    *time.Time      `json:"started_at,omitempty"`
	EndedAt      *time.Time      `json:"ended_at,omitempty"`
}

const (
	stateWaiting = "waiting"
	stateRunning = "running"
	stateWon     = "won"
	stateLost    = "lost"
)

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan req, 4096),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			zone TEXT NOT NULL,
			leader INTEGER NOT NULL,
			members TEXT NOT NULL,
			state TEXT NOT NULL,
			waves_cleared INTEGER NOT NULL DEFAULT 0,
			rewards INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			started_at TEXT,
			ended_at TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_created ON sessions(created_at);`,
		`CREATE TABLE IF NOT EXISTS events (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			zone TEXT NOT NULL,
			player INTEGER NOT NULL,
			wave INTEGER NOT NULL,
			amount INTEGER NOT NULL,
			at TEXT NOT NULL,
			raw_json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_session ON events(session_id, seq);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

var _ game.Journal = (*SQLiteIndex)(nil)

// Record queues e for the writer. It never blocks; events are dropped when
// the queue is full and the JSONL log remains the complete record.
func (s *SQLiteIndex) Record(e game.Event) error {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- req{event: e}:
	default:
		s.dropped.Add(1)
	}
	return nil
}

// Dropped reports how many events were discarded because the queue was full.
func (s *SQLiteIndex) Dropped() int64 { return s.dropped.Load() }

// Sync waits until every event queued before the call is committed.
func (s *SQLiteIndex) Sync(ctx context.Context) error {
	s.mu.RLock()
	if s.closed.Load() {
		s.mu.RUnlock()
		return ErrIndexClosed
	}
	done := make(chan struct{})
	select {
	case s.ch <- req{sync: done}:
	case <-ctx.Done():
		s.mu.RUnlock()
		return ctx.Err()
	}
	s.mu.RUnlock()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.mu.Lock()
		s.closed.Store(true)
		close(s.ch)
		s.mu.Unlock()
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// RecentSessions returns up to n sessions, newest first.
func (s *SQLiteIndex) RecentSessions(ctx context.Context, n int) ([]SessionRecord, error) {
	if s.closed.Load() {
		return nil, ErrIndexClosed
	}
	if n <= 0 {
		n = 20
	}
	rows, err := s.db.QueryContext(ctx, `SELECT session_id,zone,leader,members,state,waves_cleared,rewards,created_at,started_at,ended_at
		FROM sessions ORDER BY created_at DESC, rowid DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	out := make([]SessionRecord, 0, n)
	for rows.Next() {
		var (
			r                SessionRecord
			members, created string
			started, ended   sql.NullString
		)
		if err := rows.Scan(&r.SessionID, &r.Zone, &r.Leader, &members, &r.State, &r.WavesCleared, &r.Rewards, &created, &started, &ended); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if err := json.Unmarshal([]byte(members), &r.Members); err != nil {
			return nil, fmt.Errorf("session %s members: %w", r.SessionID, err)
		}
		r.CreatedAt = parseTime(created)
		r.StartedAt = parseNullTime(started)
		r.EndedAt = parseNullTime(ended)
		out = append(out, r)
	}
	return out, rows.Err()
}

// SessionEvents returns the stored events of one session in order.
func (s *SQLiteIndex) SessionEvents(ctx context.Context, sessionID string) ([]game.Event, error) {
	if s.closed.Load() {
		return nil, ErrIndexClosed
	}
	rows, err := s.db.QueryContext(ctx, `SELECT raw_json FROM events WHERE session_id=? ORDER BY seq`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var out []game.Event
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		var e game.Event
		if err := json.Unmarshal([]byte(raw), &e); err != nil {
			return nil, fmt.Errorf("decode event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	var tx *sql.Tx
	commit := func() {
		if tx == nil {
			return
		}
		if err := tx.Commit(); err != nil {
			log.Printf("session index: commit: %v", err)
		}
		tx = nil
	}

	for r := range s.ch {
		if r.sync != nil {
			commit()
			close(r.sync)
			continue
		}
		if tx == nil {
			txx, err := s.db.BeginTx(ctx, nil)
			if err != nil {
				log.Printf("session index: begin: %v", err)
				time.Sleep(50 * time.Millisecond)
				continue
			}
			tx = txx
		}
		if err := applyEvent(ctx, tx, r.event); err != nil {
			log.Printf("session index: %s %s: %v", r.event.Kind, r.event.SessionID, err)
			_ = tx.Rollback()
			tx = nil
			continue
		}
		// Commit once the burst has drained.
		if len(s.ch) == 0 {
			commit()
		}
	}
	commit()
}

func applyEvent(ctx context.Context, tx *sql.Tx, e game.Event) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	at := formatTime(e.At)
	if _, err := tx.ExecContext(ctx, `INSERT INTO events(session_id,kind,zone,player,wave,amount,at,raw_json) VALUES(?,?,?,?,?,?,?,?)`,
		e.SessionID, string(e.Kind), string(e.Zone), int64(e.Player), e.Wave, e.Amount, at, string(raw)); err != nil {
		return err
	}

	switch e.Kind {
	case game.EventSessionCreated:
		members, err := json.Marshal(e.Members)
		if err != nil {
			return err
		}
		leader := e.Player
		if len(e.Members) > 0 {
			leader = e.Members[0]
		}
		_, err = tx.ExecContext(ctx, `INSERT OR IGNORE INTO sessions(session_id,zone,leader,members,state,created_at) VALUES(?,?,?,?,?,?)`,
			e.SessionID, string(e.Zone), int64(leader), string(members), stateWaiting, at)
		return err
	case game.EventSessionStarted:
		_, err := tx.ExecContext(ctx, `UPDATE sessions SET state=?, started_at=? WHERE session_id=?`, stateRunning, at, e.SessionID)
		return err
	case game.EventWaveCleared:
		_, err := tx.ExecContext(ctx, `UPDATE sessions SET waves_cleared=waves_cleared+1, rewards=rewards+? WHERE session_id=?`, e.Amount, e.SessionID)
		return err
	case game.EventSessionEnded:
		state := stateLost
		if e.Success {
			state = stateWon
		}
		_, err := tx.ExecContext(ctx, `UPDATE sessions SET state=?, ended_at=? WHERE session_id=?`, state, at, e.SessionID)
		return err
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseNullTime(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t := parseTime(s.String)
	return &t
}
