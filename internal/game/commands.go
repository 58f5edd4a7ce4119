package game

import (
	"errors"
	"log"
	"strings"
)

// WaveCommand is the chat command that starts a game in the caller's zone.
const WaveCommand = "/wave"

// HandleCommand runs /wave for p. It reports whether line was a /wave
// command; rejections have already been explained to the player.
func (h *Hub) HandleCommand(p PlayerID, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 || !strings.EqualFold(fields[0], WaveCommand) {
		return false
	}
	if err := h.HandleWaveCommand(p); err != nil && !errors.Is(err, ErrIneligible) {
		log.Printf("wave defence: %s by player %d rejected: %v", WaveCommand, p, err)
	}
	return true
}
