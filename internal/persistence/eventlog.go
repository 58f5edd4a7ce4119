// Package persistence writes the wave defence session journal to disk: a
// compressed JSONL event log and a queryable SQLite index.
package persistence

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"WaveDefence/internal/game"
)

const hourLayout = "2006-01-02-15"

// EventLog appends journal events to hourly zstd-compressed JSONL files.
type EventLog struct {
	baseDir string
	prefix  string
	now     func() time.Time

	mu      sync.Mutex
	curHour string
	f       *os.File
	enc     *zstd.Encoder
	w       *bufio.Writer
}

func NewEventLog(baseDir string) *EventLog {
	return &EventLog{baseDir: baseDir, prefix: "sessions", now: time.Now}
}

var _ game.Journal = (*EventLog)(nil)

// Record writes e as a single line and flushes it through the encoder.
func (l *EventLog) Record(e game.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	hour := l.now().UTC().Format(hourLayout)
	if hour != l.curHour {
		if err := l.rotateLocked(hour); err != nil {
			return fmt.Errorf("event log rotate: %w", err)
		}
	}

	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if _, err := l.w.Write(b); err != nil {
		return err
	}
	if err := l.w.WriteByte('\n'); err != nil {
		return err
	}
	if err := l.w.Flush(); err != nil {
		return err
	}
	return l.enc.Flush()
}

func (l *EventLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closeLocked()
}

// Path returns the file events recorded at t are written to.
func (l *EventLog) Path(t time.Time) string {
	return l.pathForHour(t.UTC().Format(hourLayout))
}

func (l *EventLog) rotateLocked(hour string) error {
	if err := l.closeLocked(); err != nil {
		return err
	}
	if err := os.MkdirAll(l.baseDir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(l.pathForHour(hour), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	l.f = f
	l.enc = enc
	l.w = bufio.NewWriterSize(enc, 32*1024)
	l.curHour = hour
	return nil
}

func (l *EventLog) closeLocked() error {
	var err error
	if l.w != nil {
		_ = l.w.Flush()
	}
	if l.enc != nil {
		err = l.enc.Close()
		l.enc = nil
	}
	if l.f != nil {
		_ = l.f.Close()
		l.f = nil
	}
	l.w = nil
	l.curHour = ""
	return err
}

func (l *EventLog) pathForHour(hour string) string {
	return filepath.Join(l.baseDir, fmt.Sprintf("%s-%s.jsonl.zst", l.prefix, hour))
}

// ReadEvents decodes every event in a log file written by EventLog.
func ReadEvents(path string) ([]game.Event, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer dec.Close()

	var out []game.Event
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		if len(sc.Bytes()) == 0 {
			continue
		}
		var e game.Event
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return out, fmt.Errorf("decode event: %w", err)
		}
		out = append(out, e)
	}
	return out, sc.Err()
}
