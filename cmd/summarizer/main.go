package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ramsbaby/lessonledger/internal/calendar"
	"github.com/ramsbaby/lessonledger/internal/config"
	"github.com/ramsbaby/lessonledger/internal/fx"
	"github.com/ramsbaby/lessonledger/internal/job"
	"github.com/ramsbaby/lessonledger/internal/mailbox"
	"github.com/ramsbaby/lessonledger/internal/report"
	"github.com/ramsbaby/lessonledger/internal/server"
	"github.com/ramsbaby/lessonledger/internal/store"
	"github.com/ramsbaby/lessonledger/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/summarizer.local.yaml", "path to config file")
	once := flag.Bool("once", false, "run a single summary and exit")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting summarizer",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	tz, err := time.LoadLocation(cfg.Calendar.TimeZone)
	if err != nil {
		logger.Error("failed to load time zone", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"calendar_id", cfg.Calendar.CalendarID,
		"time_zone", cfg.Calendar.TimeZone,
		"look_back_days", cfg.Calendar.LookBackDays,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Mailbox source
	mail := mailbox.NewSource(
		fmt.Sprintf("%s:%d", cfg.Mail.IMAP.Host, cfg.Mail.IMAP.Port),
		cfg.Mail.User,
		cfg.Mail.Pass,
		mailbox.WithLogger(logger),
	)

	// Calendar client
	cal := calendar.NewClient(
		cfg.Calendar.BaseURL,
		cfg.Calendar.CalendarID,
		cfg.Calendar.APIKey,
		calendar.WithLogger(logger),
	)

	// FX chain and cache
	rates := fx.NewService(
		fx.DefaultChain(cfg.FX.ConnectTimeout, cfg.FX.RequestTimeout),
		fx.WithTTL(cfg.FX.TTL),
		fx.WithLogger(logger),
	)

	// Report mailer
	mailer := report.NewMailer(
		cfg.Mail.SMTP.Host,
		cfg.Mail.SMTP.Port,
		cfg.Mail.User,
		cfg.Mail.Pass,
		cfg.Mail.SMTP.From,
		cfg.Mail.SMTP.To,
		report.WithMailerLogger(logger),
	)

	// Optional run archive
	var archive job.RunArchive
	if cfg.Database.Enabled() {
		logger.Info("connecting to archive database",
			"host", cfg.Database.Host,
			"port", cfg.Database.Port,
			"database", cfg.Database.Name,
		)
		ar, err := store.Connect(ctx, cfg.Database, logger)
		if err != nil {
			logger.Error("failed to connect to archive database", "error", err)
			os.Exit(1)
		}
		defer ar.Close()
		if err := ar.EnsureSchema(ctx); err != nil {
			logger.Error("failed to ensure archive schema", "error", err)
			os.Exit(1)
		}
		archive = ar
		logger.Info("archive database connected")
	}

	j := job.New(job.Params{
		Mail:         mail,
		Calendar:     cal,
		FX:           rates,
		Sink:         mailer,
		Archive:      archive,
		TimeZone:     tz,
		LessonSuffix: cfg.Calendar.LessonSuffix,
		LookBackDays: cfg.Calendar.LookBackDays,
		Concurrency:  cfg.Run.ExtractConcurrency,
	}, job.WithLogger(logger))

	if *once {
		if err := j.Run(ctx); err != nil {
			logger.Error("summary run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	// HTTP trigger, health, and metrics
	srv := server.New(cfg.Server.Port, cfg.Server.MetricsPath, j, server.WithLogger(logger))
	srv.Start()

	if cfg.Run.Autorun {
		if err := j.Run(ctx); err != nil {
			logger.Error("autorun summary failed", "error", err)
		}
	}

	logger.Info("summarizer running",
		"trigger_url", fmt.Sprintf("http://localhost:%d/run", cfg.Server.Port),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
