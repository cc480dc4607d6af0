package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/eduardokochhann/app.control360.pmo-sub000/adapters/db"
	"github.com/eduardokochhann/app.control360.pmo-sub000/adapters/macro"
	"github.com/eduardokochhann/app.control360.pmo-sub000/adapters/rest/handlers"
	"github.com/eduardokochhann/app.control360.pmo-sub000/config"
	"github.com/eduardokochhann/app.control360.pmo-sub000/core"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config.yaml", "planning server configuration file")
	flag.Parse()

	cfg := config.MustLoad(configPath)
	log := mustMakeLogger(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	log.Info("starting planning server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storage, err := db.New(log, cfg.DBAddress)
	if err != nil {
		return err
	}
	defer func(storage *db.DB) {
		if err := storage.Close(); err != nil {
			log.Error("failed to close db connection", "error", err)
		}
	}(storage)

	if err := storage.Migrate(); err != nil {
		return err
	}

	clock, err := core.NewSystemClock(cfg.Timezone)
	if err != nil {
		return err
	}

	// the project directory is optional: without it weekly views are
	// simply unfiltered
	var projects core.ProjectDirectory
	if cfg.Macro.Address != "" {
		projects = macro.NewClient(log, cfg.Macro.Address, cfg.Macro.Timeout, cfg.Macro.CacheTTL)
	}

	svc := core.NewService(log, storage, clock, core.BrazilHolidays{}, projects)

	mux := http.NewServeMux()
	handlers.Register(mux, log, svc, cfg.HTTP.Timeout)

	server := http.Server{
		Addr:              cfg.HTTP.Address,
		ReadHeaderTimeout: cfg.HTTP.Timeout,
		Handler:           mux,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("planning http server", "address", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown requested")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func mustMakeLogger(logLevel string) *slog.Logger {
	var level slog.Level
	switch logLevel {
	case "DEBUG":
		level = slog.LevelDebug
	case "INFO":
		level = slog.LevelInfo
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
