package game

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// OnSessionStartPoll beams the members of every waiting session to the
// zone anchor and spawns wave one.
func (h *Hub) OnSessionStartPoll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	waiting := make([]*Session, 0)
	for _, s := range h.sessions {
		if !s.Started {
			waiting = append(waiting, s)
		}
	}
	sort.Slice(waiting, func(i, j int) bool { return waiting[i].Zone.Zone < waiting[j].Zone.Zone })

	for _, s := range waiting {
		rot := mgl64.Ident3()
		for _, m := range s.Members {
			h.pres.Relocate(m, s.Zone.Anchor, rot)
		}
		s.Started = true
		h.record(s, Event{Kind: EventSessionStarted, Members: append([]PlayerID(nil), s.Members...)})
		h.startWaveLocked(s)
	}
}

// OnWaveAdvancePoll starts the next wave of every zone cleared since the
// previous poll. Waves never start inside the destruction handler.
func (h *Hub) OnWaveAdvancePoll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	pending := h.pending
	h.pending = nil
	for _, zone := range pending {
		s, ok := h.sessions[zone]
		if !ok || !s.Started {
			continue
		}
		h.startWaveLocked(s)
	}
}
