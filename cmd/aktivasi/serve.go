package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/aktivasi/internal/api"
	"github.com/MikeSquared-Agency/aktivasi/internal/bot"
	"github.com/MikeSquared-Agency/aktivasi/internal/config"
	"github.com/MikeSquared-Agency/aktivasi/internal/hermes"
	"github.com/MikeSquared-Agency/aktivasi/internal/period"
	"github.com/MikeSquared-Agency/aktivasi/internal/slack"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the chat bot and the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(parent context.Context) error {
	cfg := config.Load()
	setupLogging(cfg.LogLevel)
	loc := period.LoadLocation(cfg.Timezone)

	slog.Info("aktivasi starting", "port", cfg.Port)

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	// Database
	db, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open store", "error", err)
		return err
	}
	defer db.Close()
	slog.Info("database connected")

	// Writer lock
	locker, closeLocker, err := openLocker(ctx, cfg)
	if err != nil {
		slog.Error("failed to connect to redis", "error", err)
		return err
	}
	defer closeLocker()

	// NATS/Hermes
	hermesClient, err := hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
	if err != nil {
		slog.Error("failed to connect to NATS", "error", err)
		return err
	}
	defer hermesClient.Close()
	slog.Info("NATS connected", "url", cfg.NatsURL)

	// Slack replies
	if cfg.SlackBotToken == "" {
		slog.Warn("SLACK_BOT_TOKEN not set, replies will fail")
	}
	poster := slack.NewPoster(cfg.SlackBotToken, slog.Default())

	// Command router
	router := bot.New(db, poster, hermesClient, locker, bot.Options{
		ActivationTable: cfg.ActivationTable,
		UserTable:       cfg.UserTable,
		CommandTimeout:  cfg.CommandTimeout,
		Location:        loc,
	}, slog.Default())

	if err := hermesClient.Subscribe(cfg.ChatSubject, router.HandleChatMessage); err != nil {
		slog.Error("failed to subscribe to chat messages", "error", err)
		return err
	}

	// HTTP API
	if cfg.JWTSecret == "" {
		slog.Warn("JWT_SECRET not set, report and export endpoints will answer 401")
	}
	srv := api.NewServer(db, api.Options{
		Port:            cfg.Port,
		ActivationTable: cfg.ActivationTable,
		UserTable:       cfg.UserTable,
		JWTSecret:       cfg.JWTSecret,
		JWTIssuer:       cfg.JWTIssuer,
		Location:        loc,
	}, slog.Default())
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()

	// Announce registration
	if err := hermesClient.Publish("swarm.agent.aktivasi.registered", map[string]any{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"port":      cfg.Port,
		"subject":   cfg.ChatSubject,
	}); err != nil {
		slog.Warn("failed to publish registration", "error", err)
	}

	slog.Info("aktivasi ready", "port", cfg.Port, "subject", cfg.ChatSubject)

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}
	slog.Info("shutting down")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP shutdown error", "error", err)
	}
	// Stop deliveries before draining so no handler starts on a closing store.
	hermesClient.Unsubscribe()
	router.Stop()

	slog.Info("aktivasi stopped")
	return nil
}
