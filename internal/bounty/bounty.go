// Package bounty pays players for destroying hostile NPC ships listed in the
// bounty table.
package bounty

import (
	"fmt"
	"path"
	"strings"

	"WaveDefence/internal/game"
)

const (
	// MaxClientID bounds valid player ids; anything above is an NPC owner.
	MaxClientID = 9999999
	// ClaimThreshold is the highest feeling toward the victim that still counts as an enemy.
	ClaimThreshold = -0.75

	msgTooFriendly = "Target is too ally for claiming bounty."
	msgClaimed     = "Bounty claimed: %d$"
)

// KillReport describes a destroyed ship as delivered by the host.
type KillReport struct {
	Victim         game.EntityID
	ShipArch       string // archetype model path, e.g. `ships\liberty\li_elite\li_elite.cmp`
	Killer         game.PlayerID
	KillerIsPlayer bool
	Kill           bool // false for despawns and other non-combat removals
}

// Payer credits a single player.
type Payer interface {
	Pay(p game.PlayerID, amount int)
}

// Messenger shows text to a single player.
type Messenger interface {
	SendText(to game.PlayerID, text string)
}

// Hunter resolves kills against the bounty table.
type Hunter struct {
	Enabled bool
	table   map[string]int
	rep     game.Reputation
	payer   Payer
	msg     Messenger
}

func NewHunter(enabled bool, table map[string]int, rep game.Reputation, payer Payer, msg Messenger) *Hunter {
	t := make(map[string]int, len(table))
	for k, v := range table {
		t[strings.ToLower(k)] = v
	}
	return &Hunter{Enabled: enabled, table: t, rep: rep, payer: payer, msg: msg}
}

// Lookup returns the bounty for a ship archetype path.
func (h *Hunter) Lookup(shipArch string) (int, bool) {
	amount, ok := h.table[ShipName(shipArch)]
	return amount, ok
}

// OnShipDestroyed pays the killer when the victim is an enemy with a bounty.
// It returns the amount paid.
func (h *Hunter) OnShipDestroyed(k KillReport) int {
	if h == nil || !h.Enabled {
		return 0
	}
	if !k.Kill || !k.KillerIsPlayer || k.Killer == 0 || k.Killer > MaxClientID {
		return 0
	}

	if h.rep != nil && h.rep.Feeling(k.Killer, k.Victim) > ClaimThreshold {
		h.msg.SendText(k.Killer, msgTooFriendly)
		return 0
	}

	amount, ok := h.Lookup(k.ShipArch)
	if !ok {
		return 0
	}
	h.payer.Pay(k.Killer, amount)
	h.msg.SendText(k.Killer, fmt.Sprintf(msgClaimed, amount))
	return amount
}

// ShipName strips directories and the model extension from an archetype path.
func ShipName(shipArch string) string {
	name := path.Base(strings.ReplaceAll(shipArch, `\`, "/"))
	if idx := strings.Index(strings.ToLower(name), ".cmp"); idx >= 0 {
		name = name[:idx]
	}
	return strings.ToLower(name)
}
