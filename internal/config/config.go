package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"WaveDefence/internal/game"
)

const DefaultTestStructure = "kus_proxysensor_nab"

type vectorConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

type voiceLineConfig struct {
	Line      string `yaml:"line"`
	Character string `yaml:"character"`
}

type waveConfig struct {
	Hostiles         []string        `yaml:"hostiles"`
	VariableHostiles []string        `yaml:"variable_hostiles"`
	Structures       []string        `yaml:"structures"`
	Reward           int             `yaml:"reward"`
	StartVoiceLine   voiceLineConfig `yaml:"start_voice_line"`
	EndVoiceLine     voiceLineConfig `yaml:"end_voice_line"`
}

type zoneConfig struct {
	Zone     string       `yaml:"zone"`
	Position vectorConfig `yaml:"position"`
	Waves    []waveConfig `yaml:"waves"`
}

type costumeConfig struct {
	Head        string   `yaml:"head"`
	Body        string   `yaml:"body"`
	LeftHand    string   `yaml:"left_hand"`
	RightHand   string   `yaml:"right_hand"`
	Accessories []string `yaml:"accessories"`
}

type characterConfig struct {
	Voice    string        `yaml:"voice"`
	Infocard uint32        `yaml:"infocard"`
	Costume  costumeConfig `yaml:"costume"`
}

type bountyShipConfig struct {
	ShipName string `yaml:"ship_name"`
	Bounty   int    `yaml:"bounty"`
}

type bountyConfig struct {
	Enabled *bool              `yaml:"enabled"`
	Ships   []bountyShipConfig `yaml:"ships"`
}

type animationConfig struct {
	TestStructure string `yaml:"test_structure"`
}

type document struct {
	HostileMultiplier *int              `yaml:"hostile_multiplier"`
	VictoryMusic      string            `yaml:"victory_music"`
	FailureMusic      string            `yaml:"failure_music"`
	FleeingMessage    string            `yaml:"fleeing_message"`
	Zones             []zoneConfig      `yaml:"zones"`
	Characters        []characterConfig `yaml:"characters"`
	Bounty            bountyConfig      `yaml:"bounty"`
	Animation         animationConfig   `yaml:"animation"`
}

// BountySettings configures the kill-reward lookup.
type BountySettings struct {
	Enabled bool
	Ships   map[string]int
}

// AnimationSettings configures the spawn helper command.
type AnimationSettings struct {
	TestStructure string
}

// Settings is the decoded game document.
type Settings struct {
	Catalog   *game.Catalog
	Bounty    BountySettings
	Animation AnimationSettings
}

// Default returns settings with no zones and every optional feature at its default.
func Default() Settings {
	return Settings{
		Catalog:   game.NewCatalog(),
		Bounty:    BountySettings{Enabled: true, Ships: map[string]int{}},
		Animation: AnimationSettings{TestStructure: DefaultTestStructure},
	}
}

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = jsonschema.CompileString("wave_defence.schema.json", documentSchema)
	})
	return schema, schemaErr
}

// Load reads and validates the game document at path. A missing file
// yields Default settings.
func Load(path string) (Settings, error) {
	if path == "" {
		return Default(), nil
	}
	cleanPath := filepath.Clean(path)
	raw, err := os.ReadFile(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("read game config %q: %w", cleanPath, err)
	}
	s, err := Parse(raw)
	if err != nil {
		return Default(), fmt.Errorf("game config %q: %w", cleanPath, err)
	}
	return s, nil
}

// Parse validates raw YAML against the document schema and builds the
// template store from it.
func Parse(raw []byte) (Settings, error) {
	if err := validate(raw); err != nil {
		return Settings{}, err
	}

	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return Settings{}, fmt.Errorf("decode: %w", err)
	}

	out := Default()
	c := out.Catalog
	if doc.HostileMultiplier != nil {
		c.HostileMultiplier = *doc.HostileMultiplier
	}
	c.VictoryMusic = doc.VictoryMusic
	c.FailureMusic = doc.FailureMusic
	if doc.FleeingMessage != "" {
		c.FleeingMessage = doc.FleeingMessage
	}

	for _, z := range doc.Zones {
		if err := c.AddZone(z.template()); err != nil {
			return Settings{}, err
		}
	}
	for _, ch := range doc.Characters {
		if err := c.AddCharacter(ch.template()); err != nil {
			return Settings{}, err
		}
	}
	if err := c.Validate(); err != nil {
		return Settings{}, err
	}

	if doc.Bounty.Enabled != nil {
		out.Bounty.Enabled = *doc.Bounty.Enabled
	}
	for _, ship := range doc.Bounty.Ships {
		out.Bounty.Ships[ship.ShipName] = ship.Bounty
	}
	if doc.Animation.TestStructure != "" {
		out.Animation.TestStructure = doc.Animation.TestStructure
	}
	return out, nil
}

// validate converts the YAML tree to plain JSON values and checks it
// against the schema.
func validate(raw []byte) error {
	var tree any
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	if tree == nil {
		tree = map[string]any{}
	}
	b, err := json.Marshal(tree)
	if err != nil {
		return fmt.Errorf("convert: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return fmt.Errorf("convert: %w", err)
	}

	s, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("schema: %w", err)
	}
	return nil
}

func (v voiceLineConfig) template() game.VoiceLine {
	return game.VoiceLine{Line: v.Line, Character: v.Character}
}

func (z zoneConfig) template() game.ZoneTemplate {
	waves := make([]game.WaveTemplate, 0, len(z.Waves))
	for _, w := range z.Waves {
		waves = append(waves, game.WaveTemplate{
			Hostiles:         w.Hostiles,
			VariableHostiles: w.VariableHostiles,
			Reward:           w.Reward,
			StartVoiceLine:   w.StartVoiceLine.template(),
			EndVoiceLine:     w.EndVoiceLine.template(),
			Structures:       w.Structures,
		})
	}
	return game.ZoneTemplate{
		Zone:   game.ZoneID(z.Zone),
		Anchor: mgl64.Vec3{z.Position.X, z.Position.Y, z.Position.Z},
		Waves:  waves,
	}
}

func (c characterConfig) template() game.CharacterTemplate {
	return game.CharacterTemplate{
		Voice:    c.Voice,
		Infocard: c.Infocard,
		Costume: game.Costume{
			Head:        c.Costume.Head,
			Body:        c.Costume.Body,
			LeftHand:    c.Costume.LeftHand,
			RightHand:   c.Costume.RightHand,
			Accessories: c.Costume.Accessories,
		},
	}
}
