package game

// OnEntityDestroyed removes id from the session that spawned it. Clearing
// the last entity of a wave ends that wave.
func (h *Hub) OnEntityDestroyed(id EntityID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	zone, ok := h.owners[id]
	if !ok {
		return
	}
	delete(h.owners, id)

	s, ok := h.sessions[zone]
	if !ok || !s.untrack(id) {
		return
	}
	if s.Cleared() {
		h.endWaveLocked(s)
	}
}

// OnPlayerDisconnected disqualifies p.
func (h *Hub) OnPlayerDisconnected(p PlayerID) {
	h.Disqualify(p)
}

// OnPlayerEnteredSafeZone disqualifies p when they dock.
func (h *Hub) OnPlayerEnteredSafeZone(p PlayerID) {
	h.Disqualify(p)
}

// Disqualify removes p from their session. It reports whether p was in one.
func (h *Hub) Disqualify(p PlayerID) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.disqualifyLocked(p)
}

func (h *Hub) disqualifyLocked(p PlayerID) bool {
	s := h.sessionOfLocked(p)
	if s == nil {
		return false
	}

	if s.GroupID != 0 {
		h.dir.RemoveFromGroup(s.GroupID, p)
		// The host dissolves groups that drop below two members.
		if len(h.dir.GroupMembers(s.GroupID)) == 0 {
			s.GroupID = 0
		}
	}
	s.removeMember(p)

	h.pres.ShowMission(p, InfocardFailure, MissionFailure)
	h.pres.SetMusic(p, h.catalog.FailureMusic)
	h.record(s, Event{Kind: EventPlayerDisqualified, Player: p, Wave: s.WaveNumber + 1})

	if len(s.Members) == 0 {
		h.endSessionLocked(s, false)
		return true
	}

	text := h.catalog.FleeingText(h.dir.DisplayName(p))
	for _, m := range s.Members {
		h.pres.SendText(m, text)
	}
	return true
}
