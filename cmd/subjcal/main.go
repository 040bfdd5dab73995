package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"subjcal/internal/auth"
	"subjcal/internal/calendar"
	"subjcal/internal/config"
	"subjcal/internal/server"
	"subjcal/internal/storage"
	"subjcal/internal/storage/memory"
	mongostore "subjcal/internal/storage/mongo"
)

type flagConfig struct {
	configPath string
	listen     string
	purgeOnce  bool
}

func parseFlags() flagConfig {
	var flags flagConfig
	flag.StringVar(&flags.configPath, "config", "subjcal.yaml", "path to the YAML config file")
	flag.StringVar(&flags.listen, "listen", "", "listen address override")
	flag.BoolVar(&flags.purgeOnce, "purge-once", false, "run the old-event purge once and exit")
	flag.Parse()
	return flags
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	flags := parseFlags()

	// A .env file is optional; real environment variables win either way.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to load .env file", "error", err)
	}

	cfg, err := config.Load(flags.configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	cfg.ApplyEnv()
	if flags.listen != "" {
		cfg.Listen = flags.listen
	}
	if cfg.Auth.Username == "" || cfg.Auth.Password == "" {
		logger.Error("credentials must be set via config or " +
			config.EnvUsername + "/" + config.EnvPassword)
		os.Exit(1)
	}

	loc := time.Local
	if cfg.Timezone != "" {
		loc, err = time.LoadLocation(cfg.Timezone)
		if err != nil {
			logger.Error("invalid timezone", "error", err, "timezone", cfg.Timezone)
			os.Exit(1)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	var store storage.Store
	if cfg.Mongo.URI != "" {
		connectCtx, connectCancel := context.WithTimeout(ctx, 15*time.Second)
		ms, err := mongostore.New(connectCtx, cfg.Mongo.URI, cfg.Mongo.Database,
			mongostore.WithLogger(logger))
		connectCancel()
		if err != nil {
			logger.Error("failed to connect to mongodb", "error", err)
			os.Exit(1)
		}
		defer func() {
			closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer closeCancel()
			if err := ms.Close(closeCtx); err != nil {
				logger.Warn("failed to disconnect from mongodb", "error", err)
			}
		}()
		store = ms
		logger.Info("using mongodb store", "database", cfg.Mongo.Database)
	} else {
		store = memory.New()
		logger.Warn("no mongo uri configured, using in-memory store; data will not survive restarts")
	}

	svc := calendar.NewService(store, calendar.WithLocation(loc))

	if flags.purgeOnce {
		count, err := svc.PurgeOldEvents(ctx)
		if err != nil {
			logger.Error("purge failed", "error", err)
			os.Exit(1)
		}
		logger.Info("purge finished", "deleted", count)
		return
	}

	sessions := auth.New(cfg.Auth.Username, cfg.Auth.Password, auth.WithLogger(logger))
	router := server.NewRouter(svc, sessions, logger)

	if cfg.PurgeCron != "" {
		scheduler := cron.New()
		if _, err := scheduler.AddFunc(cfg.PurgeCron, func() {
			count, err := svc.PurgeOldEvents(context.Background())
			if err != nil {
				logger.Error("scheduled purge failed", "error", err)
				return
			}
			logger.Info("scheduled purge finished", "deleted", count)
		}); err != nil {
			logger.Error("invalid purge cron spec", "error", err, "spec", cfg.PurgeCron)
			os.Exit(1)
		}
		scheduler.Start()
		defer scheduler.Stop()
		logger.Info("purge scheduler started", "spec", cfg.PurgeCron)
	}

	srv := server.New(cfg.Listen, router, logger)
	if err := srv.Start(ctx); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}
