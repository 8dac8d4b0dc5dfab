package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ballotchain/vote-submission-service/cmd/vote-submission-service/cli"
	"github.com/ballotchain/vote-submission-service/cmd/vote-submission-service/scripts"
	"github.com/ballotchain/vote-submission-service/internal/api"
	"github.com/ballotchain/vote-submission-service/internal/clients"
	"github.com/ballotchain/vote-submission-service/internal/config"
	"github.com/ballotchain/vote-submission-service/internal/db"
	"github.com/ballotchain/vote-submission-service/internal/db/model"
	"github.com/ballotchain/vote-submission-service/internal/observability/healthcheck"
	"github.com/ballotchain/vote-submission-service/internal/observability/metrics"
	"github.com/ballotchain/vote-submission-service/internal/queue"
	"github.com/ballotchain/vote-submission-service/internal/services"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("failed to load .env file")
	}
}

// @title Vote Submission Service API
// @version 1.0
// @description Device-local API that verifies the voter, commits the vote on the ledger and books it with the backend.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// setup cli commands and flags
	if err := cli.Setup(); err != nil {
		log.Fatal().Err(err).Msg("error while setting up cli")
	}

	// load config
	cfgPath := cli.GetConfigPath()
	cfg, err := config.New(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg(fmt.Sprintf("error while loading config file: %s", cfgPath))
	}

	// initialize metrics with the metrics port from config
	metricsPort := cfg.Metrics.GetMetricsPort()
	metrics.Init(metricsPort)

	err = model.Setup(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("error while setting up vote submission db model")
	}
	dbClient, err := db.New(ctx, cfg.Db)
	if err != nil {
		log.Fatal().Err(err).Msg("error while creating db client")
	}
	defer func() {
		if err := dbClient.Disconnect(context.Background()); err != nil {
			log.Warn().Err(err).Msg("error while disconnecting db client")
		}
	}()

	c, err := clients.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("error while setting up clients")
	}

	queues, err := queue.New(cfg.Queue)
	if err != nil {
		log.Fatal().Err(err).Msg("error while setting up queues")
	}
	defer queues.Stop()

	services, err := services.New(ctx, cfg, c, dbClient, queues, nil)
	if err != nil {
		log.Fatal().Err(err).Msg("error while setting up vote submission services layer")
	}
	defer services.Stop()

	// Check if the replay flag is set
	if cli.GetReplayFlag() {
		log.Info().Msg("Replay flag is set. Starting replay of divergent submissions.")
		if err := scripts.ReplayDivergences(ctx, services); err != nil {
			log.Error().Err(err).Msg("error while replaying divergent submissions")
		}
		return
	}

	if err := healthcheck.StartHealthCheckCron(ctx, services, queues, cfg.Server.HealthCheckInterval); err != nil {
		log.Fatal().Err(err).Msg("error while starting health check cron")
	}

	apiServer, err := api.New(ctx, cfg, services)
	if err != nil {
		log.Fatal().Err(err).Msg("error while setting up vote submission api service")
	}
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- apiServer.Start()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("vote submission api service stopped")
		}
	case <-ctx.Done():
		log.Info().Msg("shutting down vote submission api service")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GetShutdownTimeout())
		defer cancel()
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("error while shutting down vote submission api service")
		}
	}
}
