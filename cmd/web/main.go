package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/saharsh4u/startupmanch/cmd/web/auth"
	"github.com/saharsh4u/startupmanch/cmd/web/internal/web"
	"github.com/saharsh4u/startupmanch/internal/application"
	"github.com/saharsh4u/startupmanch/internal/config"
	"github.com/saharsh4u/startupmanch/internal/db"
	"github.com/saharsh4u/startupmanch/internal/muxvideo"
	"github.com/saharsh4u/startupmanch/internal/pitchflow"
	"github.com/saharsh4u/startupmanch/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("Starting web service")

	conf, err := config.LoadConfig(ctx)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if conf.DatabaseRetries <= 0 {
		conf.DatabaseRetries = 10
	}

	pool, err := application.OpenDBPoolWithRetry(ctx, *conf)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	dbc, err := db.NewDatabaseConnection(ctx, pool)
	if err != nil {
		slog.Error("failed to create database connection", "error", err)
		os.Exit(1)
	}
	defer dbc.Close()

	capabilities := db.NewCapabilities()
	pitchStore := db.NewPitchStore(dbc, capabilities)

	transcoder := muxvideo.NewClient(conf.MuxTokenID, conf.MuxTokenSecret)
	signer := storage.NewSigner(conf.StorageBaseURL, conf.StorageSigningSecret)
	flow := pitchflow.NewService(pitchStore, transcoder, signer)

	sessionMgr := auth.NewSessionManager(conf.SessionSecret)

	e, err := web.NewWebserver(dbc, sessionMgr, pitchStore, flow, signer, conf.StorageMediaRoot, conf.MuxWebhookSecret)
	if err != nil {
		slog.Error("failed to create webserver", "error", err)
		os.Exit(1)
	}

	addr := ":" + strconv.Itoa(conf.WebServerPort)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = e.Shutdown(shutdownCtx)
	}()

	slog.Info("Listening", "addr", addr)
	if err := e.Start(addr); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		// Echo returns an error on Shutdown; treat it as normal if context is done.
		if ctx.Err() != nil {
			return
		}
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
