package game

import (
	"errors"
	"time"
)

// EventKind names a session transition written to the journal.
type EventKind string

const (
	EventSessionCreated     EventKind = "session_created"
	EventSessionStarted     EventKind = "session_started"
	EventWaveStarted        EventKind = "wave_started"
	EventWaveCleared        EventKind = "wave_cleared"
	EventPlayerDisqualified EventKind = "player_disqualified"
	EventSessionEnded       EventKind = "session_ended"
)

// Event is one journal record. Wave is 1-based for wave events.
type Event struct {
	Kind       EventKind  `json:"kind"`
	SessionID  string     `json:"session_id"`
	Zone       ZoneID     `json:"zone"`
	Player     PlayerID   `json:"player,omitempty"`
	Members    []PlayerID `json:"members,omitempty"`
	Wave       int        `json:"wave,omitempty"`
	Amount     int        `json:"amount,omitempty"`
	Hostiles   int        `json:"hostiles,omitempty"`
	Structures int        `json:"structures,omitempty"`
	Success    bool       `json:"success,omitempty"`
	At         time.Time  `json:"at"`
}

// Journal receives session transitions. Record is called with the hub lock
// held and must not block or call back into the hub.
type Journal interface {
	Record(e Event) error
}

// MultiJournal fans an event out to several journals.
type MultiJournal []Journal

func (m MultiJournal) Record(e Event) error {
	var errs []error
	for _, j := range m {
		if j == nil {
			continue
		}
		if err := j.Record(e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
