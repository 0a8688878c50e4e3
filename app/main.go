package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Sveder/awesome-web-dev-baseline/app/api"
	"github.com/Sveder/awesome-web-dev-baseline/app/cfg"
	"github.com/Sveder/awesome-web-dev-baseline/app/classifier"
	"github.com/Sveder/awesome-web-dev-baseline/app/database"
	"github.com/Sveder/awesome-web-dev-baseline/app/feed"
	"github.com/Sveder/awesome-web-dev-baseline/app/pipeline"
	"github.com/Sveder/awesome-web-dev-baseline/app/profile"
	"github.com/Sveder/awesome-web-dev-baseline/app/tasks"
)

func main() {
	appCfg, err := cfg.Load(os.Args[1:])
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(2)
	}
	if appCfg == nil {
		return
	}

	setupLogger(appCfg.Debug)

	if err := run(appCfg); err != nil {
		slog.Error("Fatal error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func run(appCfg *cfg.Cfg) error {
	slog.Info("Starting Baseline Scout", "version", appCfg.Version, "document", appCfg.DocumentPath, "dry_run", appCfg.DryRun)

	if err := appCfg.Validate(); err != nil {
		return err
	}

	prof, err := profile.NewLoader(appCfg.ProfilePath).Load()
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}
	if appCfg.Model != "" {
		prof.Classifier.Model = appCfg.Model
	}

	var recorder pipeline.Recorder
	var runs database.RunStore
	if appCfg.DBPath != "" {
		db, err := database.NewConnection(appCfg.DBPath)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		version, dirty, err := database.RunMigrations(db)
		if err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		slog.Info("Database ready", "path", appCfg.DBPath, "version", version, "dirty", dirty)

		repo := database.NewRunRepository(db)
		recorder = repo
		runs = repo
	}

	httpClient := &http.Client{}
	completer := classifier.NewOpenAICompleter(appCfg.OpenAIKey, appCfg.OpenAIBaseURL, prof.Classifier.Model, prof.Classifier.GetTemperature())

	opts := []pipeline.Option{pipeline.WithDryRun(appCfg.DryRun)}
	if recorder != nil {
		opts = append(opts, pipeline.WithRecorder(recorder))
	}

	p := pipeline.NewPipeline(
		feed.NewReader(prof.Feed, httpClient, appCfg.UserAgent),
		feed.NewContentFetcher(prof.Content, httpClient, appCfg.UserAgent),
		completer,
		prof,
		appCfg.DocumentPath,
		opts...,
	)

	if appCfg.Serve {
		return serve(appCfg, p, runs)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := p.Run(ctx)
	summary.Report(os.Stdout)
	return err
}

func serve(appCfg *cfg.Cfg, runner tasks.Runner, runs database.RunStore) error {
	scheduler := tasks.NewScheduler(runner, appCfg.Schedule)
	if err := scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer scheduler.Stop()

	if appCfg.RunOnStart {
		if _, err := scheduler.Trigger(tasks.TriggerStartup); err != nil {
			slog.Warn("Failed to enqueue startup run", "error", err)
		}
	}

	handler := api.NewHandler(runs, scheduler, appCfg.DocumentPath)
	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      api.NewServer(handler, appCfg.APIAccessKey),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port, "schedule", appCfg.Schedule)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var serveErr error
	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case serveErr = <-serverErrChan:
	}

	slog.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	return serveErr
}
