package server

import (
	"context"
	"errors"
	"log"
	"time"

	"WaveDefence/internal/animation"
	"WaveDefence/internal/bounty"
	"WaveDefence/internal/config"
	"WaveDefence/internal/game"
	"WaveDefence/internal/host"
	"WaveDefence/internal/persistence"
)

// App is the wired wave defence server: sandbox universe, hub and journal.
type App struct {
	cfg      AppConfig
	Settings config.Settings

	Sandbox   *host.Sandbox
	Hub       *game.Hub
	Hunter    *bounty.Hunter
	Animation *animation.Player
	Log       *persistence.EventLog
	Index     *persistence.SQLiteIndex
	Observers *Observers
}

func NewApp(cfg AppConfig) (*App, error) {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = game.DefaultPollInterval
	}
	settings := resolveSettings(cfg)

	idx, err := persistence.OpenSQLite(cfg.dbPath())
	if err != nil {
		return nil, err
	}
	a := &App{
		cfg:       cfg,
		Settings:  settings,
		Sandbox:   host.NewSandbox(cfg.Seed),
		Log:       persistence.NewEventLog(cfg.journalDir()),
		Index:     idx,
		Observers: NewObservers(),
	}

	sb := a.Sandbox
	a.Hub = game.NewHub(settings.Catalog, sb, sb,
		game.WithHostileSpawner(sb),
		game.WithStructureSpawner(sb),
		game.WithReputation(sb),
		game.WithJournal(game.MultiJournal{a.Log, a.Index, a.Observers}),
	)
	a.Hunter = bounty.NewHunter(settings.Bounty.Enabled, settings.Bounty.Ships, sb, sb, sb)
	a.Animation = animation.NewPlayer(sb, sb, sb, settings.Animation.TestStructure)

	sb.Subscribe(a.Hub)
	sb.SubscribeKills(a.Hunter)
	sb.HandleCommands(a.Hub.HandleCommand)
	sb.HandleCommands(a.Animation.HandleCommand)

	log.Printf("wave defence: %d zones, %d characters, hostile multiplier %d",
		len(settings.Catalog.Zones), len(settings.Catalog.Characters), settings.Catalog.HostileMultiplier)
	return a, nil
}

// RunPolls drives session start and wave advance until ctx is done.
func (a *App) RunPolls(ctx context.Context) {
	start := time.NewTicker(a.cfg.PollInterval)
	defer start.Stop()
	advance := time.NewTicker(a.cfg.PollInterval)
	defer advance.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-start.C:
			a.Hub.OnSessionStartPoll()
		case <-advance.C:
			a.Hub.OnWaveAdvancePoll()
		}
	}
}

func (a *App) Close() error {
	a.Observers.Close()
	return errors.Join(a.Log.Close(), a.Index.Close())
}

func StartApp(addr string, cfg AppConfig) {
	app, err := NewApp(cfg)
	if err != nil {
		log.Fatalf("failed to start wave defence: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	polls := make(chan struct{})
	go func() {
		defer close(polls)
		app.RunPolls(ctx)
	}()

	log.Printf("starting web server on %s (poll every %s, data in %s)", addr, app.cfg.PollInterval, app.cfg.DataDir)
	err = startServer(app, addr)
	cancel()
	<-polls
	if cerr := app.Close(); cerr != nil {
		log.Printf("shutdown: %v", cerr)
	}
	log.Fatal(err)
}
