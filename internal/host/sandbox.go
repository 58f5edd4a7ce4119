// Package host is an in-memory universe that implements every backend the
// wave defence hub depends on. It is used for local play over the web
// socket and for integration tests.
package host

import (
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/go-gl/mathgl/mgl64"

	"WaveDefence/internal/bounty"
	"WaveDefence/internal/game"
)

const (
	// DefaultShipArch is the ship model given to launching players.
	DefaultShipArch = `ships\liberty\li_elite\li_elite.cmp`
	// VaryRadius bounds the random offset applied to varied spawns.
	VaryRadius = 250.0

	msgUnknownCommand = "Unknown command."
)

var (
	ErrUnknownPlayer = errors.New("host: unknown player")
	ErrUnknownEntity = errors.New("host: unknown entity")
	ErrOffline       = errors.New("host: player offline")
	ErrInSpace       = errors.New("host: player already in space")
	ErrDocked        = errors.New("host: player not in space")
)

// Listener receives world events. It is always called without the sandbox
// lock held, so it may call back into the sandbox.
type Listener interface {
	OnEntityDestroyed(id game.EntityID)
	OnPlayerDisconnected(p game.PlayerID)
	OnPlayerEnteredSafeZone(p game.PlayerID)
}

// KillListener is told about destroyed ships.
type KillListener interface {
	OnShipDestroyed(k bounty.KillReport) int
}

// CommandHandler handles a chat command line and reports whether it did.
type CommandHandler func(p game.PlayerID, line string) bool

// Player is the sandbox's record of a connected client.
type Player struct {
	ID      game.PlayerID `json:"id"`
	Name    string        `json:"name"`
	Zone    game.ZoneID   `json:"zone,omitempty"`
	Ship    game.EntityID `json:"ship,omitempty"`
	Group   game.GroupID  `json:"group,omitempty"`
	Credits int           `json:"credits"`
	Online  bool          `json:"online"`
}

// Message is one presentation item queued for a player.
type Message struct {
	Kind     string         `json:"kind"`
	Text     string         `json:"text,omitempty"`
	Track    string         `json:"track,omitempty"`
	Infocard uint32         `json:"infocard,omitempty"`
	Mission  string         `json:"mission,omitempty"`
	Ship     game.EntityID  `json:"ship,omitempty"`
	Voice    *game.VoiceCue `json:"voice,omitempty"`
	Pos      *[3]float64    `json:"pos,omitempty"`
}

// EntityView is a read-only snapshot of a world entity.
type EntityView struct {
	ID       game.EntityID `json:"id"`
	Kind     string        `json:"kind"`
	Template string        `json:"template"`
	Zone     game.ZoneID   `json:"zone"`
	Pos      [3]float64    `json:"pos"`
	Mission  bool          `json:"mission,omitempty"`
	Pilot    game.PlayerID `json:"pilot,omitempty"`
}

type attitudeKey struct {
	entity game.EntityID
	player game.PlayerID
}

type Sandbox struct {
	mu         sync.Mutex
	world      *World
	players    map[game.PlayerID]*Player
	nextPlayer game.PlayerID
	groups     map[game.GroupID][]game.PlayerID
	nextGroup  game.GroupID
	attitudes  map[attitudeKey]float32
	outbox     map[game.PlayerID][]Message
	universe   []string
	rng        *rand.Rand

	listeners []Listener
	kills     []KillListener
	commands  []CommandHandler
}

func NewSandbox(seed uint64) *Sandbox {
	return &Sandbox{
		world:     newWorld(),
		players:   make(map[game.PlayerID]*Player),
		groups:    make(map[game.GroupID][]game.PlayerID),
		attitudes: make(map[attitudeKey]float32),
		outbox:    make(map[game.PlayerID][]Message),
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Subscribe registers a listener. Not safe to call while events are flowing.
func (s *Sandbox) Subscribe(l Listener) { s.listeners = append(s.listeners, l) }

func (s *Sandbox) SubscribeKills(l KillListener) { s.kills = append(s.kills, l) }

func (s *Sandbox) HandleCommands(h CommandHandler) { s.commands = append(s.commands, h) }

/* ---------------------------- Host actions ---------------------------- */

// Connect adds an online, docked player.
func (s *Sandbox) Connect(name string) game.PlayerID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextPlayer++
	id := s.nextPlayer
	s.players[id] = &Player{ID: id, Name: name, Online: true}
	log.Printf("host: player %d (%s) connected", id, name)
	return id
}

// Launch puts the player's ship into space in zone.
func (s *Sandbox) Launch(p game.PlayerID, zone game.ZoneID) (game.EntityID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pl, err := s.onlineLocked(p)
	if err != nil {
		return 0, err
	}
	if pl.Ship != 0 {
		return 0, fmt.Errorf("%w: %d", ErrInSpace, p)
	}
	id := s.world.spawn(KindPlayerShip, DefaultShipArch, mgl64.Vec3{}, mgl64.Ident3(), zone, false)
	s.world.SetComponent(id, compPilot, &Pilot{Player: p})
	pl.Zone = zone
	pl.Ship = id
	return id, nil
}

// Dock removes the player's ship from space.
func (s *Sandbox) Dock(p game.PlayerID) error {
	s.mu.Lock()
	pl, err := s.onlineLocked(p)
	if err == nil && pl.Ship == 0 {
		err = fmt.Errorf("%w: %d", ErrDocked, p)
	}
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.world.RemoveEntity(pl.Ship)
	pl.Ship = 0
	listeners := s.listeners
	s.mu.Unlock()

	for _, l := range listeners {
		l.OnPlayerEnteredSafeZone(p)
	}
	return nil
}

// Disconnect takes the player offline and out of any group.
func (s *Sandbox) Disconnect(p game.PlayerID) error {
	s.mu.Lock()
	pl, err := s.onlineLocked(p)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	if pl.Ship != 0 {
		s.world.RemoveEntity(pl.Ship)
		pl.Ship = 0
	}
	if pl.Group != 0 {
		s.removeFromGroupLocked(pl.Group, p)
	}
	pl.Online = false
	delete(s.outbox, p)
	listeners := s.listeners
	s.mu.Unlock()

	log.Printf("host: player %d disconnected", p)
	for _, l := range listeners {
		l.OnPlayerDisconnected(p)
	}
	return nil
}

// Invite adds member to the leader's group, creating one if needed.
func (s *Sandbox) Invite(leader, member game.PlayerID) (game.GroupID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lp, err := s.onlineLocked(leader)
	if err != nil {
		return 0, err
	}
	mp, err := s.onlineLocked(member)
	if err != nil {
		return 0, err
	}
	if lp.Group == 0 {
		s.nextGroup++
		lp.Group = s.nextGroup
		s.groups[lp.Group] = []game.PlayerID{leader}
	}
	if mp.Group == lp.Group {
		return lp.Group, nil
	}
	if mp.Group != 0 {
		s.removeFromGroupLocked(mp.Group, member)
	}
	mp.Group = lp.Group
	s.groups[lp.Group] = append(s.groups[lp.Group], member)
	return lp.Group, nil
}

// Destroy removes an entity as if it had been shot down. killer is 0 when
// no player was responsible.
func (s *Sandbox) Destroy(id game.EntityID, killer game.PlayerID) error {
	s.mu.Lock()
	if !s.world.Exists(id) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrUnknownEntity, id)
	}
	var report *bounty.KillReport
	if arch := s.world.Archetype(id); arch != nil && arch.Kind != KindStructure {
		_, isPlayer := s.players[killer]
		report = &bounty.KillReport{
			Victim:         id,
			ShipArch:       arch.Template,
			Killer:         killer,
			KillerIsPlayer: isPlayer,
			Kill:           true,
		}
	}
	if pilot := s.world.Pilot(id); pilot != nil {
		if pl := s.players[pilot.Player]; pl != nil {
			pl.Ship = 0
		}
	}
	s.world.RemoveEntity(id)
	listeners, kills := s.listeners, s.kills
	s.mu.Unlock()

	for _, l := range listeners {
		l.OnEntityDestroyed(id)
	}
	if report != nil {
		for _, k := range kills {
			k.OnShipDestroyed(*report)
		}
	}

	s.mu.Lock()
	for key := range s.attitudes {
		if key.entity == id {
			delete(s.attitudes, key)
		}
	}
	s.mu.Unlock()
	return nil
}

// Command dispatches a chat command to the registered handlers.
func (s *Sandbox) Command(p game.PlayerID, line string) error {
	s.mu.Lock()
	_, err := s.onlineLocked(p)
	handlers := s.commands
	s.mu.Unlock()
	if err != nil {
		return err
	}
	for _, h := range handlers {
		if h(p, line) {
			return nil
		}
	}
	s.SendText(p, msgUnknownCommand)
	return nil
}

/* ------------------------------ Queries ------------------------------- */

// Drain returns and clears the player's queued messages.
func (s *Sandbox) Drain(p game.PlayerID) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.outbox[p]
	delete(s.outbox, p)
	return out
}

func (s *Sandbox) Player(p game.PlayerID) (Player, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pl, ok := s.players[p]
	if !ok {
		return Player{}, false
	}
	return *pl, true
}

func (s *Sandbox) Credits(p game.PlayerID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pl, ok := s.players[p]; ok {
		return pl.Credits
	}
	return 0
}

// Universe returns every broadcast sent so far.
func (s *Sandbox) Universe() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.universe...)
}

// Entities lists the entities in zone, or all entities when zone is empty.
func (s *Sandbox) Entities(zone game.ZoneID) []EntityView {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []EntityView
	s.world.ForEach([]ComponentKey{compArchetype, compPlacement, compTransform}, func(id game.EntityID) {
		pl := s.world.Placement(id)
		if zone != "" && pl.Zone != zone {
			return
		}
		arch := s.world.Archetype(id)
		tr := s.world.Transform(id)
		v := EntityView{
			ID:       id,
			Kind:     arch.Kind.String(),
			Template: arch.Template,
			Zone:     pl.Zone,
			Pos:      [3]float64{tr.Pos.X(), tr.Pos.Y(), tr.Pos.Z()},
			Mission:  pl.Mission,
		}
		if pilot := s.world.Pilot(id); pilot != nil {
			v.Pilot = pilot.Player
		}
		out = append(out, v)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Sandbox) onlineLocked(p game.PlayerID) (*Player, error) {
	pl, ok := s.players[p]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownPlayer, p)
	}
	if !pl.Online {
		return nil, fmt.Errorf("%w: %d", ErrOffline, p)
	}
	return pl, nil
}

func (s *Sandbox) pushLocked(p game.PlayerID, m Message) {
	if pl, ok := s.players[p]; !ok || !pl.Online {
		return
	}
	s.outbox[p] = append(s.outbox[p], m)
}
