package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/GamblerIX/duanju/internal/api"
	"github.com/GamblerIX/duanju/internal/config"
	"github.com/GamblerIX/duanju/internal/fetch"
	"github.com/GamblerIX/duanju/internal/logger"
	"github.com/GamblerIX/duanju/internal/provider"
	"github.com/GamblerIX/duanju/internal/provider/cenguigui"
	"github.com/GamblerIX/duanju/internal/provider/kuoapp"
	"github.com/GamblerIX/duanju/internal/provider/uuuka"
	"github.com/GamblerIX/duanju/internal/scheduler"
	"github.com/GamblerIX/duanju/internal/scheduler/tasks"
)

func main() {
	// .env is optional; real deployments configure through the
	// environment or a config file.
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging)
	defer log.Close()

	log.Info().
		Str("address", cfg.Server.Address()).
		Int("providers", len(cfg.Providers)).
		Msg("Starting duanju")

	registry := provider.NewRegistry(log.Logger)
	governor := fetch.NewGovernor(log.Logger)
	if err := registerProviders(cfg, registry, governor, log.Logger); err != nil {
		log.Fatal().Err(err).Msg("Failed to register providers")
	}
	if registry.Len() == 0 {
		log.Fatal().Msg("No providers enabled")
	}

	cache := fetch.NewCache(cfg.Cache.MaxEntries, cfg.Cache.NegativeTTL, log.Logger)
	service := fetch.NewService(registry, cache, governor, cfg.Cache, log.Logger)
	dispatcher := fetch.NewDispatcher(log.Logger)

	sched, err := scheduler.New(log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create scheduler")
	}
	if err := tasks.RegisterCacheSweepTask(sched, service, cfg.Scheduler.SweepCron); err != nil {
		log.Fatal().Err(err).Msg("Failed to register cache sweep task")
	}
	if err := tasks.RegisterPrewarmTask(sched, service, cfg.Scheduler.PrewarmCron); err != nil {
		log.Fatal().Err(err).Msg("Failed to register prewarm task")
	}
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	server := api.NewServer(cfg, service, dispatcher, sched, log.Logger)
	go func() {
		if err := server.Start(cfg.Server.Address()); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := sched.Stop(); err != nil {
		log.Error().Err(err).Msg("Scheduler shutdown failed")
	}
	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("Shutdown complete")
}

// registerProviders builds every enabled adapter from its config record
// and installs its rate budget.
func registerProviders(cfg *config.Config, registry *provider.Registry, governor *fetch.Governor, log zerolog.Logger) error {
	for _, pc := range cfg.Providers {
		if !pc.Enabled {
			log.Info().Str("provider", pc.ID).Msg("Provider disabled, skipping")
			continue
		}

		var p provider.Provider
		switch pc.ID {
		case cenguigui.ID:
			p = cenguigui.NewClient(pc, log)
		case kuoapp.ID:
			p = kuoapp.NewClient(pc, log)
		case uuuka.ID:
			p = uuuka.NewClient(pc, log)
		default:
			log.Warn().Str("provider", pc.ID).Msg("Unknown provider id in config, skipping")
			continue
		}

		if err := registry.Register(p); err != nil {
			return err
		}
		governor.Register(pc.ID, pc.QPSBudget, pc.Burst, pc.MaxWaiters)
	}
	return nil
}
