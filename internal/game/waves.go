package game

import (
	"fmt"
	"log"

	"github.com/go-gl/mathgl/mgl64"
)

// startWaveLocked spawns the session's current wave at the zone anchor.
func (h *Hub) startWaveLocked(s *Session) {
	wave, ok := s.CurrentWave()
	if !ok {
		log.Printf("wave defence: %s has no wave %d, ending game", s.Zone.Zone, s.WaveNumber+1)
		h.endSessionLocked(s, false)
		return
	}

	if h.hostiles == nil || h.structures == nil {
		log.Printf("wave defence: cannot communicate with spawn backends, ending game in %s", s.Zone.Zone)
		h.pres.SendText(s.Leader(), msgPluginError)
		h.endSessionLocked(s, false)
		return
	}

	// Orientation follows the leader; position is always the anchor.
	rot := mgl64.Ident3()
	if ship, ok := h.dir.Ship(s.Leader()); ok {
		if _, r, ok := h.dir.ShipLocation(ship); ok {
			rot = r
		}
	}
	anchor := s.Zone.Anchor
	zone := s.Zone.Zone

	hostiles := make([]EntityID, 0, wave.HostileCount(h.catalog.HostileMultiplier))
	spawnHostile := func(template string) {
		id := h.hostiles.CreateHostile(template, anchor, rot, zone, true)
		h.trackLocked(s, id, SpawnHostile)
		hostiles = append(hostiles, id)
	}
	for _, t := range wave.Hostiles {
		spawnHostile(t)
	}
	for i := 0; i < h.catalog.HostileMultiplier; i++ {
		for _, t := range wave.VariableHostiles {
			spawnHostile(t)
		}
	}
	for _, t := range wave.Structures {
		id := h.structures.CreateStructure(t, anchor, rot, zone, true, true)
		h.trackLocked(s, id, SpawnStructure)
	}

	for _, m := range s.Members {
		h.pres.ShowMission(m, InfocardWaveStart, MissionText)
		if h.rep == nil {
			continue
		}
		for _, id := range hostiles {
			h.rep.SetAttitude(id, m, HostileAttitude)
		}
	}

	h.sendVoiceLineLocked(s.Members, wave.StartVoiceLine)
	h.record(s, Event{
		Kind:       EventWaveStarted,
		Wave:       s.WaveNumber + 1,
		Hostiles:   len(hostiles),
		Structures: len(wave.Structures),
	})
}

// endWaveLocked pays out the cleared wave and either ends the game or
// queues the next wave for the following advance poll.
func (h *Hub) endWaveLocked(s *Session) {
	wave, ok := s.CurrentWave()
	if !ok {
		return
	}

	if s.GroupID != 0 && len(h.dir.GroupMembers(s.GroupID)) > 0 {
		h.dir.PayGroup(s.GroupID, wave.Reward)
	} else {
		h.dir.Pay(s.Leader(), wave.Reward)
	}

	h.sendVoiceLineLocked(s.Members, wave.EndVoiceLine)

	// Incremented before messaging so players read "Wave 1", not "Wave 0".
	s.WaveNumber++
	text := h.printer.Sprintf(msgWaveComplete, s.WaveNumber, wave.Reward)
	for _, m := range s.Members {
		h.pres.SendText(m, text)
	}
	h.record(s, Event{Kind: EventWaveCleared, Wave: s.WaveNumber, Amount: wave.Reward})

	if s.WaveNumber >= len(s.Zone.Waves) {
		h.endSessionLocked(s, true)
		return
	}
	h.markPendingLocked(s.Zone.Zone)
}

// endSessionLocked removes s from the registry. Entities still alive are
// abandoned to the spawn backend.
func (h *Hub) endSessionLocked(s *Session, success bool) {
	if success && len(s.Members) > 0 {
		name := h.dir.DisplayName(s.Leader())
		h.pres.Broadcast(fmt.Sprintf(msgTeamComplete, name))
		for _, m := range s.Members {
			h.pres.ShowMission(m, InfocardVictory, MissionVictory)
			h.pres.SetMusic(m, h.catalog.VictoryMusic)
		}
	}

	zone := s.Zone.Zone
	if cur, ok := h.sessions[zone]; ok && cur == s {
		delete(h.sessions, zone)
	}
	for id := range s.spawned {
		if h.owners[id] == zone {
			delete(h.owners, id)
		}
	}
	h.unmarkPendingLocked(zone)
	h.record(s, Event{Kind: EventSessionEnded, Wave: s.WaveNumber, Success: success})
}

// sendVoiceLineLocked plays line to every member in space. An unknown
// character is an authoring mistake and is skipped silently.
func (h *Hub) sendVoiceLineLocked(members []PlayerID, line VoiceLine) {
	ch, ok := h.catalog.Character(line.Character)
	if !ok {
		return
	}
	cue := VoiceCue{
		Voice:    ch.Voice,
		Costume:  ch.Costume,
		Infocard: ch.Infocard,
		Line:     line.Line,
	}
	for _, m := range members {
		ship, ok := h.dir.Ship(m)
		if !ok {
			continue
		}
		h.pres.SendVoice(m, ship, cue)
	}
}
