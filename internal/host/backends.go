package host

import (
	"log"
	"sort"

	"github.com/go-gl/mathgl/mgl64"

	"WaveDefence/internal/game"
)

var (
	_ game.Directory        = (*Sandbox)(nil)
	_ game.Presenter        = (*Sandbox)(nil)
	_ game.HostileSpawner   = (*Sandbox)(nil)
	_ game.StructureSpawner = (*Sandbox)(nil)
	_ game.Reputation       = (*Sandbox)(nil)
)

/* ----------------------------- Directory ------------------------------ */

func (s *Sandbox) Zone(p game.PlayerID) (game.ZoneID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pl, ok := s.players[p]
	if !ok || !pl.Online || pl.Zone == "" {
		return "", false
	}
	return pl.Zone, true
}

func (s *Sandbox) Ship(p game.PlayerID) (game.EntityID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pl, ok := s.players[p]
	if !ok || !pl.Online || pl.Ship == 0 {
		return 0, false
	}
	return pl.Ship, true
}

func (s *Sandbox) ShipLocation(ship game.EntityID) (mgl64.Vec3, mgl64.Mat3, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tr := s.world.Transform(ship)
	if tr == nil {
		return mgl64.Vec3{}, mgl64.Mat3{}, false
	}
	return tr.Pos, tr.Rot, true
}

func (s *Sandbox) Group(p game.PlayerID) (game.GroupID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pl, ok := s.players[p]
	if !ok || pl.Group == 0 {
		return 0, false
	}
	return pl.Group, true
}

func (s *Sandbox) GroupMembers(g game.GroupID) []game.PlayerID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]game.PlayerID(nil), s.groups[g]...)
}

func (s *Sandbox) RemoveFromGroup(g game.GroupID, p game.PlayerID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeFromGroupLocked(g, p)
}

// removeFromGroupLocked drops p from g and dissolves groups of one.
func (s *Sandbox) removeFromGroupLocked(g game.GroupID, p game.PlayerID) {
	members := s.groups[g]
	for i, m := range members {
		if m == p {
			members = append(members[:i:i], members[i+1:]...)
			break
		}
	}
	if pl, ok := s.players[p]; ok && pl.Group == g {
		pl.Group = 0
	}
	if len(members) <= 1 {
		for _, m := range members {
			if pl, ok := s.players[m]; ok {
				pl.Group = 0
			}
		}
		delete(s.groups, g)
		return
	}
	s.groups[g] = members
}

// PayGroup splits amount evenly; the first member keeps the remainder.
func (s *Sandbox) PayGroup(g game.GroupID, amount int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	members := s.groups[g]
	if len(members) == 0 {
		log.Printf("host: reward of %d for empty group %d dropped", amount, g)
		return
	}
	share := amount / len(members)
	for i, m := range members {
		pay := share
		if i == 0 {
			pay += amount - share*len(members)
		}
		if pl, ok := s.players[m]; ok {
			pl.Credits += pay
		}
	}
}

func (s *Sandbox) Pay(p game.PlayerID, amount int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pl, ok := s.players[p]; ok {
		pl.Credits += amount
	}
}

func (s *Sandbox) DisplayName(p game.PlayerID) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if pl, ok := s.players[p]; ok {
		return pl.Name
	}
	return ""
}

func (s *Sandbox) OnlinePlayers() []game.PlayerID {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]game.PlayerID, 0, len(s.players))
	for id, pl := range s.players {
		if pl.Online {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

/* ----------------------------- Presenter ------------------------------ */

func (s *Sandbox) SendText(to game.PlayerID, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pushLocked(to, Message{Kind: "text", Text: text})
}

func (s *Sandbox) Broadcast(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.universe = append(s.universe, text)
	for id := range s.players {
		s.pushLocked(id, Message{Kind: "universe", Text: text})
	}
}

func (s *Sandbox) SendVoice(to game.PlayerID, ship game.EntityID, cue game.VoiceCue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pushLocked(to, Message{Kind: "voice", Ship: ship, Voice: &cue, Infocard: cue.Infocard})
}

func (s *Sandbox) SetMusic(to game.PlayerID, track string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pushLocked(to, Message{Kind: "music", Track: track})
}

func (s *Sandbox) ShowMission(to game.PlayerID, infocard uint32, kind game.MissionMessageKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pushLocked(to, Message{Kind: "mission", Infocard: infocard, Mission: kind.String()})
}

// Relocate moves the player's ship. Docked players stay where they are.
func (s *Sandbox) Relocate(p game.PlayerID, pos mgl64.Vec3, rot mgl64.Mat3) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pl, ok := s.players[p]
	if !ok || pl.Ship == 0 {
		return
	}
	if tr := s.world.Transform(pl.Ship); tr != nil {
		tr.Pos = pos
		tr.Rot = rot
	}
	s.pushLocked(p, Message{Kind: "relocate", Pos: &[3]float64{pos.X(), pos.Y(), pos.Z()}})
}

/* ------------------------------ Spawning ------------------------------ */

func (s *Sandbox) CreateHostile(template string, pos mgl64.Vec3, rot mgl64.Mat3, zone game.ZoneID, vary bool) game.EntityID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if vary {
		pos = s.varyLocked(pos)
	}
	return s.world.spawn(KindHostile, template, pos, rot, zone, false)
}

func (s *Sandbox) CreateStructure(template string, pos mgl64.Vec3, rot mgl64.Mat3, zone game.ZoneID, vary, mission bool) game.EntityID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if vary {
		pos = s.varyLocked(pos)
	}
	return s.world.spawn(KindStructure, template, pos, rot, zone, mission)
}

func (s *Sandbox) varyLocked(pos mgl64.Vec3) mgl64.Vec3 {
	offset := mgl64.Vec3{
		s.rng.Float64()*2 - 1,
		s.rng.Float64()*2 - 1,
		s.rng.Float64()*2 - 1,
	}
	return pos.Add(offset.Mul(VaryRadius))
}

/* ----------------------------- Reputation ----------------------------- */

func (s *Sandbox) SetAttitude(entity game.EntityID, p game.PlayerID, attitude float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attitudes[attitudeKey{entity, p}] = attitude
}

func (s *Sandbox) Feeling(p game.PlayerID, entity game.EntityID) float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attitudes[attitudeKey{entity, p}]
}
