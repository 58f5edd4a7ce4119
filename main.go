package main

import (
	"flag"
	"log"
	"time"

	"WaveDefence/internal/config"
	"WaveDefence/internal/server"
)

func main() {
	env, err := config.ParseEnv()
	if err != nil {
		log.Fatalf("%v", err)
	}
	cfg := server.AppConfigFromEnv(env)

	addr := flag.String("addr", env.Addr, "address to listen on (e.g., 127.0.0.1:8080)")
	configPath := flag.String("config", cfg.ConfigPath, "path to the wave defence YAML document")
	dataDir := flag.String("data", cfg.DataDir, "directory for the session journal and index")
	dbPath := flag.String("db", cfg.DBPath, "override path of the SQLite session index")
	poll := flag.Duration("poll", cfg.PollInterval, "interval of the session start and wave advance polls")
	seed := flag.Uint64("seed", uint64(time.Now().UnixNano()), "seed for spawn position variation")
	flag.Parse()

	cfg.ConfigPath = *configPath
	cfg.DataDir = *dataDir
	cfg.DBPath = *dbPath
	cfg.PollInterval = *poll
	cfg.Seed = *seed

	server.StartApp(*addr, cfg)
}
