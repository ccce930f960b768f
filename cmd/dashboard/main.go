package main

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/spacesedan/ballotboard/config"
	"github.com/spacesedan/ballotboard/internal/clients"
	"github.com/spacesedan/ballotboard/internal/dashboard"
	"github.com/spacesedan/ballotboard/internal/logging"
	"github.com/spacesedan/ballotboard/internal/monitoring"
	"github.com/spacesedan/ballotboard/internal/server"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)

	cfg, err := config.Load()
	if err != nil {
		logging.InitLogger("info")
		slog.Error("[Main] Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logging.InitLogger(cfg.Log.Level)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	titles := make(map[string]string, len(cfg.Remote.Titles))
	for _, key := range cfg.SourceKeys() {
		titles[key] = cfg.Title(key)
	}
	routes := clients.NewRouteTable(config.GeneralSource, cfg.Remote.Entities, titles)
	ballot := clients.NewBallotClient(cfg.Remote.BaseURL, routes, cfg.Remote.Timeout)

	var guard dashboard.InFlightGuard = dashboard.NewLocalGuard()
	if cfg.Valkey.Address != "" {
		valkeyGuard, err := clients.NewValkeyGuard(clients.ValkeyOptions{
			Address:  cfg.Valkey.Address,
			Password: cfg.Valkey.Password,
			TLS:      cfg.Valkey.TLS,
		})
		if err != nil {
			slog.Warn("[Main] Valkey unavailable, using in-process analyzer guard",
				slog.String("error", err.Error()))
		} else {
			defer valkeyGuard.Close()
			guard = valkeyGuard
		}
	}

	sessions := dashboard.NewSessionStore(ballot, dashboard.StoreOptions{
		Resolver:          routes,
		DefaultSource:     config.GeneralSource,
		Left:              dashboard.Side{Key: cfg.Compare.Left, Title: cfg.Compare.LeftTitle},
		Right:             dashboard.Side{Key: cfg.Compare.Right, Title: cfg.Compare.RightTitle},
		Guard:             guard,
		IdleTimeout:       cfg.Session.IdleTimeout,
		NewSessionTimeout: cfg.Session.NewSessionTimeout,
	})
	defer sessions.CloseAll()
	go sessions.RunSweeper(ctx, cfg.Session.SweepInterval)

	remoteHealthy := &atomic.Bool{}
	remoteHealthy.Store(true)
	go monitoring.MonitorRemoteHealth(ctx, ballot, remoteHealthy, cfg.Remote.HealthCheckInterval)

	srv, err := server.New(server.Options{
		Server:    cfg.Server,
		Routes:    routes,
		Sessions:  sessions,
		Healthy:   remoteHealthy,
		FetchWait: cfg.Remote.Timeout + cfg.Remote.Timeout/10,
	})
	if err != nil {
		slog.Error("[Main] Failed to build server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		slog.Error("[Main] Server stopped", slog.String("error", err.Error()))
	}
}
