package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pixil98/go-rpg/internal/activities"
	"github.com/pixil98/go-rpg/internal/game"
	"github.com/pixil98/go-rpg/internal/listener"
	"github.com/pixil98/go-rpg/internal/messaging"
	"github.com/pixil98/go-service"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	// Load the world and its rules
	catalog, err := cfg.Storage.loadCatalog()
	if err != nil {
		return nil, err
	}
	rules, err := cfg.loadRules()
	if err != nil {
		return nil, fmt.Errorf("loading rules: %w", err)
	}
	registry, err := activities.NewRegistry()
	if err != nil {
		return nil, fmt.Errorf("registering activities: %w", err)
	}

	// Setup the event loop and the session it drives
	loop, err := cfg.Loop.buildEventLoop()
	if err != nil {
		return nil, fmt.Errorf("creating event loop: %w", err)
	}
	persister, index, err := cfg.Storage.buildPersister()
	if err != nil {
		return nil, err
	}
	session, err := game.NewSession(loop, catalog, registry,
		game.WithRules(rules),
		game.WithDefaultActivity(activities.KindLocation),
		game.WithPersister(persister),
	)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	report, err := session.Load(context.Background())
	if err != nil {
		return nil, fmt.Errorf("loading saved state: %w", err)
	}
	for _, rejected := range report.Rejected() {
		slog.Warn("skipped saved state", "error", rejected)
	}

	loop.AddShutdownHook(func(ctx context.Context) {
		if err := session.Save(ctx); err != nil {
			slog.ErrorContext(ctx, "saving session on shutdown", "error", err)
		}
		if index != nil {
			if err := index.Close(); err != nil {
				slog.ErrorContext(ctx, "closing save index", "error", err)
			}
		}
	})
	autosave, err := cfg.Loop.autosaveInterval()
	if err != nil {
		return nil, fmt.Errorf("parsing autosave_interval: %w", err)
	}
	if autosave > 0 {
		loop.AddTicker(newAutosaver(session, autosave))
	}

	// Create the message bus and the frontends
	natsServer, err := cfg.Nats.buildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}
	session.AddFrontend(messaging.NewNatsFrontend(natsServer))

	workers := service.WorkerList{
		"loop": loop,
		"nats": natsServer,
	}

	if j := cfg.Journal.buildJournal(); j != nil {
		j.StopOn(loop)
		session.AddFrontend(j)
		workers["journal"] = j
	}
	if c := cfg.Console.buildConsole(session); c != nil {
		session.AddFrontend(c)
		workers["console"] = c
	}

	// Create Listeners
	pm := cfg.PlayerManager.buildPlayerManager(session, natsServer)
	cm := listener.NewConnectionManager(pm, listener.WithMaxConnections(cfg.PlayerManager.MaxConnections))

	listeners := make(service.WorkerList, len(cfg.Listeners))
	for i, l := range cfg.Listeners {
		w, err := l.buildListener(cm)
		if err != nil {
			return nil, fmt.Errorf("creating listener %d: %w", i, err)
		}
		listeners[fmt.Sprintf("listener-%d", i)] = w
	}
	workers["player_manager"] = pm
	workers["listeners"] = &listeners

	return workers, nil
}
