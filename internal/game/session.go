package game

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// SpawnKind discriminates the entities a wave tracks.
type SpawnKind uint8

const (
	SpawnHostile SpawnKind = iota + 1
	SpawnStructure
)

func (k SpawnKind) String() string {
	switch k {
	case SpawnHostile:
		return "hostile"
	case SpawnStructure:
		return "structure"
	default:
		return "unknown"
	}
}

// Session is one running wave defence game in one zone.
type Session struct {
	ID         uuid.UUID
	Zone       ZoneTemplate
	Members    []PlayerID
	GroupID    GroupID
	WaveNumber int
	Started    bool
	CreatedAt  time.Time

	spawned map[EntityID]SpawnKind
}

func newSession(zone ZoneTemplate, members []PlayerID, group GroupID, now time.Time) *Session {
	return &Session{
		ID:        uuid.New(),
		Zone:      zone,
		Members:   append([]PlayerID(nil), members...),
		GroupID:   group,
		CreatedAt: now,
		spawned:   map[EntityID]SpawnKind{},
	}
}

// Leader is the first member; zero when the session has no members left.
func (s *Session) Leader() PlayerID {
	if len(s.Members) == 0 {
		return 0
	}
	return s.Members[0]
}

func (s *Session) HasMember(p PlayerID) bool {
	return containsPlayer(s.Members, p)
}

func (s *Session) removeMember(p PlayerID) bool {
	idx := indexOfPlayer(s.Members, p)
	if idx < 0 {
		return false
	}
	s.Members = append(s.Members[:idx], s.Members[idx+1:]...)
	return true
}

func (s *Session) track(id EntityID, kind SpawnKind) {
	if s.spawned == nil {
		s.spawned = map[EntityID]SpawnKind{}
	}
	s.spawned[id] = kind
}

func (s *Session) untrack(id EntityID) bool {
	if _, ok := s.spawned[id]; !ok {
		return false
	}
	delete(s.spawned, id)
	return true
}

// Remaining counts live tracked entities of kind.
func (s *Session) Remaining(kind SpawnKind) int {
	n := 0
	for _, k := range s.spawned {
		if k == kind {
			n++
		}
	}
	return n
}

// Cleared reports whether no hostile or structure of the current wave is alive.
func (s *Session) Cleared() bool {
	return len(s.spawned) == 0
}

// CurrentWave returns the template of the current (or next) wave.
func (s *Session) CurrentWave() (WaveTemplate, bool) {
	if s.WaveNumber < 0 || s.WaveNumber >= len(s.Zone.Waves) {
		return WaveTemplate{}, false
	}
	return s.Zone.Waves[s.WaveNumber], true
}

func (s *Session) trackedIDs() []EntityID {
	ids := make([]EntityID, 0, len(s.spawned))
	for id := range s.spawned {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// SessionView is a read-only snapshot of a session.
type SessionView struct {
	ID         string     `json:"id"`
	Zone       ZoneID     `json:"zone"`
	Members    []PlayerID `json:"members"`
	GroupID    GroupID    `json:"group_id,omitempty"`
	WaveNumber int        `json:"wave_number"`
	WaveCount  int        `json:"wave_count"`
	Started    bool       `json:"started"`
	Hostiles   int        `json:"hostiles"`
	Structures int        `json:"structures"`
	Tracked    []EntityID `json:"tracked,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (s *Session) View() SessionView {
	return SessionView{
		ID:         s.ID.String(),
		Zone:       s.Zone.Zone,
		Members:    append([]PlayerID(nil), s.Members...),
		GroupID:    s.GroupID,
		WaveNumber: s.WaveNumber,
		WaveCount:  len(s.Zone.Waves),
		Started:    s.Started,
		Hostiles:   s.Remaining(SpawnHostile),
		Structures: s.Remaining(SpawnStructure),
		Tracked:    s.trackedIDs(),
		CreatedAt:  s.CreatedAt,
	}
}
