// Package animation spawns one-off scenery structures on request, either
// programmatically or through the /testjos chat command.
package animation

import (
	"errors"
	"log"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"WaveDefence/internal/game"
)

const (
	CommandName = "/testjos"
	testSubcmd  = "generatesolartest"

	msgPluginError = "There has been an error with the anim plugin. Please contact an administrator."
	msgNoLocation  = "Unable to decipher player location."
	msgNoShip      = "You must be in space to use this command."
	msgUsage       = "Usage: /testjos generateSolarTest"
)

// ErrSpawnerUnavailable is returned when no structure backend is attached.
var ErrSpawnerUnavailable = errors.New("animation: structure spawner unavailable")

// Messenger shows text to a single player or to everyone.
type Messenger interface {
	SendText(to game.PlayerID, text string)
	Broadcast(text string)
}

// Player spawns structures that are not part of any mission.
type Player struct {
	spawner       game.StructureSpawner
	dir           game.Directory
	msg           Messenger
	testStructure string
}

func NewPlayer(spawner game.StructureSpawner, dir game.Directory, msg Messenger, testStructure string) *Player {
	return &Player{spawner: spawner, dir: dir, msg: msg, testStructure: testStructure}
}

// Generate creates a single structure at origin.
func (a *Player) Generate(origin mgl64.Vec3, template string, rot mgl64.Mat3, zone game.ZoneID) (game.EntityID, error) {
	if a.spawner == nil {
		log.Printf("animation: cannot spawn %s in %s: no structure spawner", template, zone)
		if a.msg != nil {
			a.msg.Broadcast(msgPluginError)
		}
		return 0, ErrSpawnerUnavailable
	}
	id := a.spawner.CreateStructure(template, origin, rot, zone, true, false)
	log.Printf("animation: spawned %s (%d) in %s", template, id, zone)
	return id, nil
}

// HandleCommand runs a chat command. It reports whether the command was
// recognised.
func (a *Player) HandleCommand(p game.PlayerID, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 || !strings.EqualFold(fields[0], CommandName) {
		return false
	}
	if len(fields) < 2 || strings.ToLower(fields[1]) != testSubcmd {
		a.msg.SendText(p, msgUsage)
		return true
	}

	zone, ok := a.dir.Zone(p)
	if !ok {
		a.msg.SendText(p, msgNoLocation)
		return true
	}
	ship, ok := a.dir.Ship(p)
	if !ok {
		a.msg.SendText(p, msgNoShip)
		return true
	}
	pos, rot, ok := a.dir.ShipLocation(ship)
	if !ok {
		a.msg.SendText(p, msgNoLocation)
		return true
	}
	if _, err := a.Generate(pos, a.testStructure, rot, zone); err != nil {
		log.Printf("animation: %s by player %d failed: %v", CommandName, p, err)
	}
	return true
}
