package game

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	ErrNoLocation   = errors.New("player location unknown")
	ErrZoneOccupied = errors.New("zone already has a wave defence game")
	ErrNoGame       = errors.New("no wave defence game in zone")
	ErrBystanders   = errors.New("players outside the group are in the zone")
	ErrIneligible   = errors.New("player not eligible")
)

// Hub is the session registry. It owns every running session and is the
// single writer for all of them; each exported method takes the lock once
// and runs to completion.
type Hub struct {
	mu sync.Mutex

	catalog    *Catalog
	dir        Directory
	pres       Presenter
	rep        Reputation
	hostiles   HostileSpawner
	structures StructureSpawner
	journal    Journal
	now        func() time.Time
	printer    *message.Printer

	sessions map[ZoneID]*Session
	owners   map[EntityID]ZoneID
	pending  []ZoneID
}

// Option configures a Hub.
type Option func(*Hub)

func WithHostileSpawner(s HostileSpawner) Option {
	return func(h *Hub) { h.hostiles = s }
}

func WithStructureSpawner(s StructureSpawner) Option {
	return func(h *Hub) { h.structures = s }
}

func WithReputation(r Reputation) Option {
	return func(h *Hub) { h.rep = r }
}

func WithJournal(j Journal) Option {
	return func(h *Hub) { h.journal = j }
}

func WithClock(now func() time.Time) Option {
	return func(h *Hub) { h.now = now }
}

// NewHub builds an empty registry over the given template store and backends.
func NewHub(catalog *Catalog, dir Directory, pres Presenter, opts ...Option) *Hub {
	if catalog == nil {
		catalog = NewCatalog()
	}
	h := &Hub{
		catalog:  catalog,
		dir:      dir,
		pres:     pres,
		now:      time.Now,
		printer:  message.NewPrinter(language.English),
		sessions: map[ZoneID]*Session{},
		owners:   map[EntityID]ZoneID{},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HandleWaveCommand is the /wave player command: start a game in the
// requester's current zone.
func (h *Hub) HandleWaveCommand(requester PlayerID) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	zone, ok := h.dir.Zone(requester)
	if !ok {
		h.pres.SendText(requester, msgNoLocation)
		return fmt.Errorf("wave command from %d: %w", requester, ErrNoLocation)
	}
	return h.startSessionLocked(requester, zone)
}

// StartSession validates and registers a new session for zone. Spawning is
// deferred to the next session-start poll.
func (h *Hub) StartSession(requester PlayerID, zone ZoneID) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.startSessionLocked(requester, zone)
}

func (h *Hub) startSessionLocked(requester PlayerID, zone ZoneID) error {
	if _, exists := h.sessions[zone]; exists {
		h.pres.SendText(requester, msgZoneOccupied)
		return fmt.Errorf("%w: %s", ErrZoneOccupied, zone)
	}

	tmpl, err := h.catalog.GetZone(zone)
	if err != nil {
		h.pres.SendText(requester, msgNoGame)
		return fmt.Errorf("%w: %v", ErrNoGame, err)
	}

	var (
		group   GroupID
		members []PlayerID
	)
	if g, ok := h.dir.Group(requester); ok && g != 0 {
		members = append(members, h.dir.GroupMembers(g)...)
		group = g
	}
	if len(members) == 0 {
		members = []PlayerID{requester}
		group = 0
	}

	// The game takes over the whole zone.
	for _, p := range h.dir.OnlinePlayers() {
		if p == requester || containsPlayer(members, p) {
			continue
		}
		if z, ok := h.dir.Zone(p); ok && z == zone {
			h.pres.SendText(requester, msgBystanders)
			return fmt.Errorf("%w: %s", ErrBystanders, zone)
		}
	}

	for _, m := range members {
		if !h.checkEligibleLocked(requester, m, zone) {
			return fmt.Errorf("%w: player %d", ErrIneligible, m)
		}
	}

	s := newSession(*tmpl, members, group, h.now())
	h.sessions[zone] = s
	h.pres.SendText(s.Leader(), msgStartShortly)
	h.record(s, Event{Kind: EventSessionCreated, Player: requester, Members: append([]PlayerID(nil), s.Members...)})
	return nil
}

// checkEligibleLocked tells the requester why candidate cannot take part.
func (h *Hub) checkEligibleLocked(requester, candidate PlayerID, zone ZoneID) bool {
	name := h.dir.DisplayName(candidate)

	if z, ok := h.dir.Zone(candidate); !ok || z != zone {
		h.pres.SendText(requester, fmt.Sprintf(msgWrongZone, name))
		return false
	}
	if _, ok := h.dir.Ship(candidate); !ok {
		h.pres.SendText(requester, fmt.Sprintf(msgNotInSpace, name))
		return false
	}
	if h.sessionOfLocked(candidate) != nil {
		h.pres.SendText(requester, fmt.Sprintf(msgAlreadyInGame, name))
		return false
	}
	return true
}

func (h *Hub) sessionOfLocked(p PlayerID) *Session {
	for _, s := range h.sessions {
		if s.HasMember(p) {
			return s
		}
	}
	return nil
}

// Sessions returns a snapshot of every live session ordered by zone.
func (h *Hub) Sessions() []SessionView {
	h.mu.Lock()
	defer h.mu.Unlock()

	views := make([]SessionView, 0, len(h.sessions))
	for _, s := range h.sessions {
		views = append(views, s.View())
	}
	sort.Slice(views, func(i, j int) bool { return views[i].Zone < views[j].Zone })
	return views
}

// Session returns the snapshot of the session running in zone.
func (h *Hub) Session(zone ZoneID) (SessionView, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.sessions[zone]
	if !ok {
		return SessionView{}, false
	}
	return s.View(), true
}

// SessionOf returns the snapshot of the session p belongs to.
func (h *Hub) SessionOf(p PlayerID) (SessionView, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.sessionOfLocked(p)
	if s == nil {
		return SessionView{}, false
	}
	return s.View(), true
}

// Pending lists zones waiting for their next wave.
func (h *Hub) Pending() []ZoneID {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]ZoneID(nil), h.pending...)
}

func (h *Hub) markPendingLocked(zone ZoneID) {
	for _, z := range h.pending {
		if z == zone {
			return
		}
	}
	h.pending = append(h.pending, zone)
}

func (h *Hub) unmarkPendingLocked(zone ZoneID) {
	out := h.pending[:0]
	for _, z := range h.pending {
		if z != zone {
			out = append(out, z)
		}
	}
	h.pending = out
}

func (h *Hub) trackLocked(s *Session, id EntityID, kind SpawnKind) {
	s.track(id, kind)
	h.owners[id] = s.Zone.Zone
}

func (h *Hub) record(s *Session, e Event) {
	if h.journal == nil {
		return
	}
	e.SessionID = s.ID.String()
	e.Zone = s.Zone.Zone
	if e.At.IsZero() {
		e.At = h.now()
	}
	if err := h.journal.Record(e); err != nil {
		log.Printf("wave defence: journal %s: %v", e.Kind, err)
	}
}
