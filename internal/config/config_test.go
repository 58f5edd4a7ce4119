package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

const sampleDocument = `
hostile_multiplier: 2
victory_music: music_victory
failure_music: music_failure
fleeing_message: "{name} abandoned the fight."
zones:
  - zone: li01
    position: {x: 1000, y: -50, z: 2500.5}
    waves:
      - hostiles: [li_n_grp_main_d2]
        variable_hostiles: [li_n_grp_fighter_d1]
        structures: [wd_outpost]
        reward: 5000
        start_voice_line: {line: dx_m01_start, character: pilot_juni}
        end_voice_line: {line: dx_m01_end, character: pilot_juni}
      - hostiles: [li_n_grp_cruiser_d4]
        reward: 12000
characters:
  - voice: pilot_juni
    infocard: 65538
    costume:
      head: pl_female1_head
      body: pl_female1_journeyman
      accessories: [prop_neuralnet_a]
bounty:
  enabled: true
  ships:
    - ship_name: li_elite
      bounty: 1500
animation:
  test_structure: anim_explosion
`

func TestParseSampleDocument(t *testing.T) {
	s, err := Parse([]byte(sampleDocument))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	c := s.Catalog
	if c.HostileMultiplier != 2 {
		t.Fatalf("expected multiplier 2, got %d", c.HostileMultiplier)
	}
	zone, ok := c.Zone("li01")
	if !ok {
		t.Fatalf("expected zone li01")
	}
	if zone.Anchor != (mgl64.Vec3{1000, -50, 2500.5}) {
		t.Fatalf("unexpected anchor %v", zone.Anchor)
	}
	if len(zone.Waves) != 2 || zone.Waves[0].Reward != 5000 || zone.Waves[1].Reward != 12000 {
		t.Fatalf("unexpected waves %+v", zone.Waves)
	}
	if zone.Waves[0].StartVoiceLine.Character != "pilot_juni" {
		t.Fatalf("unexpected voice line %+v", zone.Waves[0].StartVoiceLine)
	}
	ch, ok := c.Character("pilot_juni")
	if !ok || ch.Infocard != 65538 || ch.Costume.Head != "pl_female1_head" {
		t.Fatalf("unexpected character %+v", ch)
	}
	if got := c.FleeingText("Trent"); got != "Trent abandoned the fight." {
		t.Fatalf("unexpected fleeing text %q", got)
	}
	if !s.Bounty.Enabled || s.Bounty.Ships["li_elite"] != 1500 {
		t.Fatalf("unexpected bounty settings %+v", s.Bounty)
	}
	if s.Animation.TestStructure != "anim_explosion" {
		t.Fatalf("unexpected animation settings %+v", s.Animation)
	}
}

func TestParseRejectsSchemaViolations(t *testing.T) {
	cases := map[string]string{
		"unknown key":     "zones: []\nspeed: 3\n",
		"missing waves":   "zones:\n  - zone: li01\n",
		"negative reward": "zones:\n  - zone: li01\n    waves:\n      - hostiles: [a]\n        reward: -1\n",
		"bad multiplier":  "hostile_multiplier: lots\n",
	}
	for name, doc := range cases {
		if _, err := Parse([]byte(doc)); err == nil {
			t.Errorf("%s: expected error", name)
		} else if !strings.Contains(err.Error(), "schema") {
			t.Errorf("%s: expected schema error, got %v", name, err)
		}
	}
}

func TestParseRejectsUnplayableWave(t *testing.T) {
	doc := "hostile_multiplier: 0\nzones:\n  - zone: li01\n    waves:\n      - variable_hostiles: [a]\n"
	_, err := Parse([]byte(doc))
	if err == nil || !strings.Contains(err.Error(), "spawns nothing") {
		t.Fatalf("expected unplayable wave error, got %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("expected defaults, got %v", err)
	}
	if len(s.Catalog.Zones) != 0 || s.Animation.TestStructure != DefaultTestStructure || !s.Bounty.Enabled {
		t.Fatalf("unexpected defaults %+v", s)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wave_defence.yaml")
	if err := os.WriteFile(path, []byte(sampleDocument), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := s.Catalog.Zone("li01"); !ok {
		t.Fatalf("expected zone from file")
	}
}

func TestParseEnv(t *testing.T) {
	t.Setenv("WAVE_DEFENCE_ADDR", "127.0.0.1:9000")
	t.Setenv("WAVE_DEFENCE_POLL_INTERVAL", "2s")
	e, err := ParseEnv()
	if err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if e.Addr != "127.0.0.1:9000" || e.PollInterval != 2*time.Second {
		t.Fatalf("unexpected env %+v", e)
	}
	if e.ConfigPath != "configs/wave_defence.yaml" {
		t.Fatalf("expected default config path, got %q", e.ConfigPath)
	}

	t.Setenv("WAVE_DEFENCE_POLL_INTERVAL", "soon")
	if _, err := ParseEnv(); err == nil || !strings.Contains(err.Error(), "parse env:") {
		t.Fatalf("expected parse env error, got %v", err)
	}
}
