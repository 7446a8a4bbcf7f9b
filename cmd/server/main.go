package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/qacker/backend/app"
	"github.com/qacker/backend/conf"
	"github.com/qacker/backend/http"
	"github.com/qacker/backend/logger"
)

var version = "dev"

func main() {
	cfg, err := conf.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg)
	if err != nil {
		log.Error("failed to assemble application", "error", err)
		os.Exit(1)
	}

	jwtKey, err := a.JwtKey(ctx)
	if err != nil {
		log.Error("failed to resolve jwt key", "error", err)
		os.Exit(1)
	}

	srvcs := http.Services{
		Tasks:    a.TaskSrvc,
		Subms:    a.SubmSrvc,
		Scores:   a.ScoreSrvc,
		Users:    a.Users,
		History:  a.Ledger,
		Calendar: a.Calendar,
	}
	if a.Reports != nil {
		srvcs.Reports = a.Reports
	}

	httpServer := http.NewHttpServer(srvcs, jwtKey, http.Options{
		Env:            cfg.Env,
		Version:        version,
		LogLevel:       logger.ParseLevel(cfg.LogLevel),
		AllowedOrigins: cfg.AllowedOrigins,
		LeaderboardTTL: cfg.LeaderboardTTL(),
		RebuildRule:    a.RebuildRule(),
	})

	log.Info("starting server", "address", cfg.ListenAddr)
	if err := httpServer.Start(ctx, cfg.ListenAddr); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
