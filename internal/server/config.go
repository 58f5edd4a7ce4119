package server

import (
	"log"
	"path/filepath"
	"time"

	"WaveDefence/internal/config"
	"WaveDefence/internal/game"
)

type AppConfig struct {
	ConfigPath   string
	DataDir      string
	DBPath       string
	PollInterval time.Duration
	Seed         uint64
}

func DefaultAppConfig() AppConfig {
	return AppConfig{
		ConfigPath:   "configs/wave_defence.yaml",
		DataDir:      "data",
		PollInterval: game.DefaultPollInterval,
		Seed:         1,
	}
}

// AppConfigFromEnv layers environment settings over the defaults.
func AppConfigFromEnv(e config.Env) AppConfig {
	cfg := DefaultAppConfig()
	if e.ConfigPath != "" {
		cfg.ConfigPath = e.ConfigPath
	}
	if e.DataDir != "" {
		cfg.DataDir = e.DataDir
	}
	cfg.DBPath = e.DBPath
	if e.PollInterval > 0 {
		cfg.PollInterval = e.PollInterval
	}
	return cfg
}

func (c AppConfig) dbPath() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	return filepath.Join(c.DataDir, "index", "sessions.sqlite")
}

func (c AppConfig) journalDir() string {
	return filepath.Join(c.DataDir, "journal")
}

func resolveSettings(cfg AppConfig) config.Settings {
	settings, err := config.Load(cfg.ConfigPath)
	if err != nil {
		log.Printf("game config: %v (using defaults)", err)
	}
	return settings
}
