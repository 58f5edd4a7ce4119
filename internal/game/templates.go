package game

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// VoiceLine references a spoken line and the character who speaks it.
type VoiceLine struct {
	Line      string
	Character string
}

// WaveTemplate defines one stage of a wave defence game.
type WaveTemplate struct {
	Hostiles         []string
	VariableHostiles []string
	Reward           int
	StartVoiceLine   VoiceLine
	EndVoiceLine     VoiceLine
	Structures       []string
}

// HostileCount returns how many hostiles the wave spawns for the given multiplier.
func (w WaveTemplate) HostileCount(multiplier int) int {
	if multiplier < 0 {
		multiplier = 0
	}
	return len(w.Hostiles) + multiplier*len(w.VariableHostiles)
}

// SpawnCount returns the total number of tracked entities the wave spawns.
func (w WaveTemplate) SpawnCount(multiplier int) int {
	return w.HostileCount(multiplier) + len(w.Structures)
}

func (w WaveTemplate) clone() WaveTemplate {
	w.Hostiles = append([]string(nil), w.Hostiles...)
	w.VariableHostiles = append([]string(nil), w.VariableHostiles...)
	w.Structures = append([]string(nil), w.Structures...)
	return w
}

// ZoneTemplate binds a zone to its spawn anchor and ordered wave sequence.
type ZoneTemplate struct {
	Zone   ZoneID
	Anchor mgl64.Vec3
	Waves  []WaveTemplate
}

func (z ZoneTemplate) clone() ZoneTemplate {
	waves := make([]WaveTemplate, len(z.Waves))
	for i, w := range z.Waves {
		waves[i] = w.clone()
	}
	z.Waves = waves
	return z
}

// Costume describes the appearance of a speaking character.
type Costume struct {
	Head        string
	Body        string
	LeftHand    string
	RightHand   string
	Accessories []string
}

// CharacterTemplate is the speaker of voice lines, looked up by voice.
type CharacterTemplate struct {
	Voice    string
	Infocard uint32
	Costume  Costume
}

// Catalog is the read-only template store. It is built once at load time
// and never mutated while sessions are running.
type Catalog struct {
	Zones             map[ZoneID]ZoneTemplate
	Characters        map[string]CharacterTemplate
	HostileMultiplier int
	VictoryMusic      string
	FailureMusic      string
	FleeingMessage    string
}

// NewCatalog returns an empty catalog with default tuning.
func NewCatalog() *Catalog {
	return &Catalog{
		Zones:             map[ZoneID]ZoneTemplate{},
		Characters:        map[string]CharacterTemplate{},
		HostileMultiplier: DefaultHostileMultiplier,
		FleeingMessage:    DefaultFleeingMessage,
	}
}

// AddZone registers a zone template.
func (c *Catalog) AddZone(z ZoneTemplate) error {
	if z.Zone == "" {
		return fmt.Errorf("zone template: empty zone id")
	}
	if _, exists := c.Zones[z.Zone]; exists {
		return fmt.Errorf("zone template %s: duplicate", z.Zone)
	}
	c.Zones[z.Zone] = z.clone()
	return nil
}

// AddCharacter registers a speaking character.
func (c *Catalog) AddCharacter(ch CharacterTemplate) error {
	if ch.Voice == "" {
		return fmt.Errorf("character: empty voice")
	}
	if _, exists := c.Characters[ch.Voice]; exists {
		return fmt.Errorf("character %s: duplicate", ch.Voice)
	}
	if len(ch.Costume.Accessories) > MaxCostumeAccessories {
		return fmt.Errorf("character %s: %d accessories, at most %d", ch.Voice, len(ch.Costume.Accessories), MaxCostumeAccessories)
	}
	ch.Costume.Accessories = append([]string(nil), ch.Costume.Accessories...)
	c.Characters[ch.Voice] = ch
	return nil
}

// Zone returns a private copy of the template for id, so later edits
// never reach a running session.
func (c *Catalog) Zone(id ZoneID) (ZoneTemplate, bool) {
	if c == nil {
		return ZoneTemplate{}, false
	}
	z, ok := c.Zones[id]
	if !ok {
		return ZoneTemplate{}, false
	}
	return z.clone(), true
}

// GetZone retrieves a zone template by ID.
func (c *Catalog) GetZone(id ZoneID) (*ZoneTemplate, error) {
	if id == "" {
		return nil, fmt.Errorf("zone template not found: empty id")
	}
	z, ok := c.Zone(id)
	if !ok {
		return nil, fmt.Errorf("zone template not found: %s", id)
	}
	return &z, nil
}

// ZoneIDs lists configured zones in lexical order.
func (c *Catalog) ZoneIDs() []ZoneID {
	ids := make([]ZoneID, 0, len(c.Zones))
	for id := range c.Zones {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Character looks up a speaking character by voice.
func (c *Catalog) Character(voice string) (CharacterTemplate, bool) {
	if c == nil || voice == "" {
		return CharacterTemplate{}, false
	}
	ch, ok := c.Characters[voice]
	return ch, ok
}

// FleeingText renders the departure announcement for name.
func (c *Catalog) FleeingText(name string) string {
	tmpl := c.FleeingMessage
	if tmpl == "" {
		tmpl = DefaultFleeingMessage
	}
	return strings.ReplaceAll(tmpl, fleeingPlaceholder, name)
}

// Validate checks that every zone can actually be played to completion.
func (c *Catalog) Validate() error {
	if c == nil {
		return fmt.Errorf("catalog is nil")
	}
	if c.HostileMultiplier < 0 {
		return fmt.Errorf("hostile multiplier %d is negative", c.HostileMultiplier)
	}
	var errs []error
	for _, id := range c.ZoneIDs() {
		z := c.Zones[id]
		if len(z.Waves) == 0 {
			errs = append(errs, fmt.Errorf("zone %s: no waves", id))
			continue
		}
		for i, w := range z.Waves {
			if w.Reward < 0 {
				errs = append(errs, fmt.Errorf("zone %s wave %d: negative reward %d", id, i+1, w.Reward))
			}
			// A wave with nothing to destroy would never clear.
			if w.SpawnCount(c.HostileMultiplier) == 0 {
				errs = append(errs, fmt.Errorf("zone %s wave %d: spawns nothing", id, i+1))
			}
		}
	}
	return errors.Join(errs...)
}
