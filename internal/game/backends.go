package game

import "github.com/go-gl/mathgl/mgl64"

// HostileSpawner creates hostile ships. A nil spawner means the backend is
// not reachable and any wave start fails.
type HostileSpawner interface {
	CreateHostile(template string, pos mgl64.Vec3, rot mgl64.Mat3, zone ZoneID, varyPosition bool) EntityID
}

// StructureSpawner creates destructible structures (solars).
type StructureSpawner interface {
	CreateStructure(template string, pos mgl64.Vec3, rot mgl64.Mat3, zone ZoneID, varyPosition, mission bool) EntityID
}

// VoiceCue is a timed audio/animation comm sent to a player's ship.
type VoiceCue struct {
	Voice    string
	Costume  Costume
	Infocard uint32
	Line     string
}

// Presenter is the presentation backend.
type Presenter interface {
	SendText(to PlayerID, text string)
	Broadcast(text string)
	SendVoice(to PlayerID, ship EntityID, cue VoiceCue)
	SetMusic(to PlayerID, track string)
	ShowMission(to PlayerID, infocard uint32, kind MissionMessageKind)
	Relocate(p PlayerID, pos mgl64.Vec3, rot mgl64.Mat3)
}

// Directory resolves players, their ships and their groups.
type Directory interface {
	Zone(p PlayerID) (ZoneID, bool)
	Ship(p PlayerID) (EntityID, bool)
	ShipLocation(ship EntityID) (mgl64.Vec3, mgl64.Mat3, bool)
	Group(p PlayerID) (GroupID, bool)
	GroupMembers(g GroupID) []PlayerID
	RemoveFromGroup(g GroupID, p PlayerID)
	PayGroup(g GroupID, amount int)
	Pay(p PlayerID, amount int)
	DisplayName(p PlayerID) string
	OnlinePlayers() []PlayerID
}

// Reputation reads and writes standings between entities and players.
type Reputation interface {
	SetAttitude(entity EntityID, p PlayerID, attitude float32)
	Feeling(p PlayerID, entity EntityID) float32
}
