package host

import (
	"github.com/go-gl/mathgl/mgl64"

	"WaveDefence/internal/game"
)

type ComponentKey string

// EntityKind separates player ships from spawned NPC content.
type EntityKind uint8

const (
	KindPlayerShip EntityKind = iota + 1
	KindHostile
	KindStructure
)

func (k EntityKind) String() string {
	switch k {
	case KindPlayerShip:
		return "player_ship"
	case KindHostile:
		return "hostile"
	case KindStructure:
		return "structure"
	default:
		return "unknown"
	}
}

type Transform struct {
	Pos mgl64.Vec3
	Rot mgl64.Mat3
}

type Placement struct {
	Zone    game.ZoneID
	Mission bool
}

type Archetype struct {
	Template string
	Kind     EntityKind
}

type Pilot struct {
	Player game.PlayerID
}

const (
	compTransform ComponentKey = "transform"
	compPlacement ComponentKey = "placement"
	compArchetype ComponentKey = "archetype"
	compPilot     ComponentKey = "pilot"
)

// World is a component store keyed by entity id.
type World struct {
	nextEntity game.EntityID
	components map[ComponentKey]map[game.EntityID]any
}

func newWorld() *World {
	return &World{
		nextEntity: 0,
		components: make(map[ComponentKey]map[game.EntityID]any),
	}
}

func (w *World) NewEntity() game.EntityID {
	w.nextEntity++
	return w.nextEntity
}

func (w *World) SetComponent(id game.EntityID, key ComponentKey, value any) {
	store, ok := w.components[key]
	if !ok {
		store = make(map[game.EntityID]any)
		w.components[key] = store
	}
	store[id] = value
}

func (w *World) RemoveComponent(id game.EntityID, key ComponentKey) {
	if store, ok := w.components[key]; ok {
		delete(store, id)
	}
}

func (w *World) GetComponent(id game.EntityID, key ComponentKey) (any, bool) {
	if store, ok := w.components[key]; ok {
		val, ok := store[id]
		return val, ok
	}
	return nil, false
}

func (w *World) RemoveEntity(id game.EntityID) {
	for _, store := range w.components {
		delete(store, id)
	}
}

func (w *World) ForEach(required []ComponentKey, fn func(game.EntityID)) {
	if len(required) == 0 {
		return
	}
	first := w.components[required[0]]
	if first == nil {
		return
	}
	for id := range first {
		match := true
		for _, key := range required[1:] {
			if store := w.components[key]; store == nil {
				match = false
				break
			} else if _, ok := store[id]; !ok {
				match = false
				break
			}
		}
		if match {
			fn(id)
		}
	}
}

func (w *World) Exists(id game.EntityID) bool {
	for _, store := range w.components {
		if _, ok := store[id]; ok {
			return true
		}
	}
	return false
}

func (w *World) Transform(id game.EntityID) *Transform {
	if v, ok := w.GetComponent(id, compTransform); ok {
		if t, ok := v.(*Transform); ok {
			return t
		}
	}
	return nil
}

func (w *World) Placement(id game.EntityID) *Placement {
	if v, ok := w.GetComponent(id, compPlacement); ok {
		if t, ok := v.(*Placement); ok {
			return t
		}
	}
	return nil
}

func (w *World) Archetype(id game.EntityID) *Archetype {
	if v, ok := w.GetComponent(id, compArchetype); ok {
		if t, ok := v.(*Archetype); ok {
			return t
		}
	}
	return nil
}

func (w *World) Pilot(id game.EntityID) *Pilot {
	if v, ok := w.GetComponent(id, compPilot); ok {
		if t, ok := v.(*Pilot); ok {
			return t
		}
	}
	return nil
}

// spawn creates an entity with the common components.
func (w *World) spawn(kind EntityKind, template string, pos mgl64.Vec3, rot mgl64.Mat3, zone game.ZoneID, mission bool) game.EntityID {
	id := w.NewEntity()
	w.SetComponent(id, compTransform, &Transform{Pos: pos, Rot: rot})
	w.SetComponent(id, compPlacement, &Placement{Zone: zone, Mission: mission})
	w.SetComponent(id, compArchetype, &Archetype{Template: template, Kind: kind})
	return id
}
