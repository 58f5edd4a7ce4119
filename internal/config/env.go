package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"WaveDefence/internal/game"
)

// Env is the process configuration read from the environment. Command-line
// flags take precedence over it.
type Env struct {
	Addr         string        `env:"WAVE_DEFENCE_ADDR" envDefault:":8080"`
	ConfigPath   string        `env:"WAVE_DEFENCE_CONFIG" envDefault:"configs/wave_defence.yaml"`
	PollInterval time.Duration `env:"WAVE_DEFENCE_POLL_INTERVAL" envDefault:"5s"`
	DataDir      string        `env:"WAVE_DEFENCE_DATA_DIR" envDefault:"data"`
	DBPath       string        `env:"WAVE_DEFENCE_DB_PATH"`
}

// ParseEnv loads Env from environment variables.
func ParseEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	if e.PollInterval <= 0 {
		e.PollInterval = game.DefaultPollInterval
	}
	return e, nil
}
