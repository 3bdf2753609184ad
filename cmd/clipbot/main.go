package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clipbot/clipbot/internal/api"
	"github.com/clipbot/clipbot/internal/bot"
	"github.com/clipbot/clipbot/internal/clip"
	"github.com/clipbot/clipbot/internal/config"
	"github.com/clipbot/clipbot/internal/history"
	"github.com/clipbot/clipbot/internal/logging"
	"github.com/clipbot/clipbot/internal/media"
	"github.com/clipbot/clipbot/internal/session"
	"github.com/clipbot/clipbot/internal/telegram"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func run() error {
	startTime := time.Now()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel)
	logger.Info("starting clipbot",
		"version", config.Version,
		"commit", config.GitCommit,
		"data_dir", cfg.DataDir,
		"token", logging.SanitizeToken(cfg.TelegramToken),
	)

	database, err := history.New(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	repo := history.NewRepository(database.Conn())

	downloader, err := media.NewDownloader(cfg.YtDlpPath, logger)
	if err != nil {
		return fmt.Errorf("yt-dlp not usable: %w", err)
	}
	trimmer, err := media.NewTrimmer(cfg.FFmpegPath, logger)
	if err != nil {
		return fmt.Errorf("ffmpeg not usable: %w", err)
	}

	runner, err := clip.NewRunner(downloader, trimmer, cfg.WorkDir(), logger)
	if err != nil {
		return fmt.Errorf("failed to prepare work dir: %w", err)
	}

	client := telegram.NewClient(telegram.DefaultBaseURL, cfg.TelegramToken, logging.WithComponent(logger, "telegram"))
	sessions := session.NewMemoryStore()
	handler := bot.NewHandler(client, sessions, runner, repo, logging.WithComponent(logger, "bot"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	apiServer := api.NewServer(api.ServerConfig{
		Port:      cfg.AdminPort,
		History:   repo,
		InFlight:  runner.InFlight,
		Sessions:  sessions.Len,
		Logger:    logging.WithComponent(logger, "api"),
		StartTime: startTime,
		Version:   config.Version,
		BuildTime: config.BuildTime,
		GitCommit: config.GitCommit,
	})

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	go func() {
		if err := handler.Run(ctx); err != nil {
			logger.Error("update loop error", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("received shutdown signal", "signal", sig)

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}
