package game

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

type fakePlayer struct {
	name  string
	zone  ZoneID
	ship  EntityID
	group GroupID
}

type voiceCall struct {
	to   PlayerID
	ship EntityID
	cue  VoiceCue
}

type missionCall struct {
	to       PlayerID
	infocard uint32
	kind     MissionMessageKind
}

type spawnCall struct {
	template  string
	pos       mgl64.Vec3
	zone      ZoneID
	structure bool
	mission   bool
}

// fakeHost records every backend call made by the hub.
type fakeHost struct {
	players map[PlayerID]*fakePlayer
	order   []PlayerID
	groups  map[GroupID][]PlayerID
	rots    map[EntityID]mgl64.Mat3

	nextEntity EntityID
	spawns     []spawnCall
	spawnedIDs []EntityID

	texts      map[PlayerID][]string
	broadcasts []string
	voices     []voiceCall
	music      map[PlayerID][]string
	missions   []missionCall
	relocated  map[PlayerID]mgl64.Vec3
	attitudes  map[[2]uint32]float32

	paid      map[PlayerID]int
	groupPaid map[GroupID]int
	events    []Event
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		players:    map[PlayerID]*fakePlayer{},
		groups:     map[GroupID][]PlayerID{},
		rots:       map[EntityID]mgl64.Mat3{},
		nextEntity: 1000,
		texts:      map[PlayerID][]string{},
		music:      map[PlayerID][]string{},
		relocated:  map[PlayerID]mgl64.Vec3{},
		attitudes:  map[[2]uint32]float32{},
		paid:       map[PlayerID]int{},
		groupPaid:  map[GroupID]int{},
	}
}

func (f *fakeHost) addPlayer(id PlayerID, name string, zone ZoneID, inSpace bool) {
	p := &fakePlayer{name: name, zone: zone}
	if inSpace {
		p.ship = EntityID(id) + 500
	}
	f.players[id] = p
	f.order = append(f.order, id)
}

func (f *fakeHost) group(g GroupID, members ...PlayerID) {
	f.groups[g] = append([]PlayerID(nil), members...)
	for _, m := range members {
		f.players[m].group = g
	}
}

func (f *fakeHost) lastText(p PlayerID) string {
	msgs := f.texts[p]
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1]
}

// Directory

func (f *fakeHost) Zone(p PlayerID) (ZoneID, bool) {
	pl, ok := f.players[p]
	if !ok || pl.zone == "" {
		return "", false
	}
	return pl.zone, true
}

func (f *fakeHost) Ship(p PlayerID) (EntityID, bool) {
	pl, ok := f.players[p]
	if !ok || pl.ship == 0 {
		return 0, false
	}
	return pl.ship, true
}

func (f *fakeHost) ShipLocation(ship EntityID) (mgl64.Vec3, mgl64.Mat3, bool) {
	if rot, ok := f.rots[ship]; ok {
		return mgl64.Vec3{}, rot, true
	}
	return mgl64.Vec3{}, mgl64.Ident3(), true
}

func (f *fakeHost) Group(p PlayerID) (GroupID, bool) {
	pl, ok := f.players[p]
	if !ok || pl.group == 0 {
		return 0, false
	}
	return pl.group, true
}

func (f *fakeHost) GroupMembers(g GroupID) []PlayerID {
	return append([]PlayerID(nil), f.groups[g]...)
}

func (f *fakeHost) RemoveFromGroup(g GroupID, p PlayerID) {
	members := f.groups[g]
	if idx := indexOfPlayer(members, p); idx >= 0 {
		f.groups[g] = append(members[:idx], members[idx+1:]...)
	}
	if pl, ok := f.players[p]; ok {
		pl.group = 0
	}
	// Groups of one dissolve, as on the real host.
	if left := f.groups[g]; len(left) <= 1 {
		for _, m := range left {
			if pl, ok := f.players[m]; ok {
				pl.group = 0
			}
		}
		delete(f.groups, g)
	}
}

func (f *fakeHost) PayGroup(g GroupID, amount int) { f.groupPaid[g] += amount }
func (f *fakeHost) Pay(p PlayerID, amount int)      { f.paid[p] += amount }

func (f *fakeHost) DisplayName(p PlayerID) string {
	if pl, ok := f.players[p]; ok {
		return pl.name
	}
	return fmt.Sprintf("player-%d", p)
}

func (f *fakeHost) OnlinePlayers() []PlayerID {
	return append([]PlayerID(nil), f.order...)
}

// Presenter

func (f *fakeHost) SendText(to PlayerID, text string) { f.texts[to] = append(f.texts[to], text) }
func (f *fakeHost) Broadcast(text string)             { f.broadcasts = append(f.broadcasts, text) }
func (f *fakeHost) SendVoice(to PlayerID, ship EntityID, cue VoiceCue) {
	f.voices = append(f.voices, voiceCall{to: to, ship: ship, cue: cue})
}
func (f *fakeHost) SetMusic(to PlayerID, track string) { f.music[to] = append(f.music[to], track) }
func (f *fakeHost) ShowMission(to PlayerID, infocard uint32, kind MissionMessageKind) {
	f.missions = append(f.missions, missionCall{to: to, infocard: infocard, kind: kind})
}
func (f *fakeHost) Relocate(p PlayerID, pos mgl64.Vec3, rot mgl64.Mat3) { f.relocated[p] = pos }

// Spawners and reputation

func (f *fakeHost) CreateHostile(template string, pos mgl64.Vec3, rot mgl64.Mat3, zone ZoneID, vary bool) EntityID {
	f.nextEntity++
	f.spawns = append(f.spawns, spawnCall{template: template, pos: pos, zone: zone})
	f.spawnedIDs = append(f.spawnedIDs, f.nextEntity)
	return f.nextEntity
}

func (f *fakeHost) CreateStructure(template string, pos mgl64.Vec3, rot mgl64.Mat3, zone ZoneID, vary, mission bool) EntityID {
	f.nextEntity++
	f.spawns = append(f.spawns, spawnCall{template: template, pos: pos, zone: zone, structure: true, mission: mission})
	f.spawnedIDs = append(f.spawnedIDs, f.nextEntity)
	return f.nextEntity
}

func (f *fakeHost) SetAttitude(entity EntityID, p PlayerID, attitude float32) {
	f.attitudes[[2]uint32{uint32(entity), uint32(p)}] = attitude
}

func (f *fakeHost) Feeling(p PlayerID, entity EntityID) float32 {
	return f.attitudes[[2]uint32{uint32(entity), uint32(p)}]
}

// takeSpawned returns and forgets the ids spawned since the last call.
func (f *fakeHost) takeSpawned() []EntityID {
	ids := f.spawnedIDs
	f.spawnedIDs = nil
	return ids
}

func (f *fakeHost) Record(e Event) error {
	f.events = append(f.events, e)
	return nil
}

func (f *fakeHost) eventsOf(kind EventKind) []Event {
	var out []Event
	for _, e := range f.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func testCatalog() *Catalog {
	c := NewCatalog()
	c.VictoryMusic = "music_victory"
	c.FailureMusic = "music_failure"
	_ = c.AddCharacter(CharacterTemplate{
		Voice:    "pilot_f_leg_f01a",
		Infocard: 12345,
		Costume:  Costume{Head: "pl_female1_head", Body: "pl_female1_journeyman"},
	})
	_ = c.AddZone(ZoneTemplate{
		Zone:   "li01",
		Anchor: mgl64.Vec3{100, 0, -200},
		Waves: []WaveTemplate{
			{
				Hostiles:         []string{"fighter_a", "fighter_b"},
				VariableHostiles: []string{"gunboat"},
				Reward:           100,
				StartVoiceLine:   VoiceLine{Line: "dx_wave1_start", Character: "pilot_f_leg_f01a"},
				EndVoiceLine:     VoiceLine{Line: "dx_wave1_end", Character: "pilot_f_leg_f01a"},
				Structures:       []string{"outpost"},
			},
			{
				Hostiles:       []string{"cruiser"},
				Reward:         200,
				StartVoiceLine: VoiceLine{Line: "dx_wave2_start", Character: "nobody"},
			},
		},
	})
	return c
}

func newTestHub(f *fakeHost, opts ...Option) *Hub {
	base := []Option{
		WithHostileSpawner(f),
		WithStructureSpawner(f),
		WithReputation(f),
		WithJournal(f),
	}
	return NewHub(testCatalog(), f, f, append(base, opts...)...)
}
