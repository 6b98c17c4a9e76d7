package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rpggio/chromalabel/internal/config"
	"github.com/rpggio/chromalabel/internal/domain/activity"
	"github.com/rpggio/chromalabel/internal/domain/imagestore"
	"github.com/rpggio/chromalabel/internal/domain/palette"
	"github.com/rpggio/chromalabel/internal/domain/result"
	"github.com/rpggio/chromalabel/internal/domain/sequence"
	"github.com/rpggio/chromalabel/internal/domain/trial"
	"github.com/rpggio/chromalabel/internal/sqlite"
	"github.com/rpggio/chromalabel/internal/transport"
	"github.com/rpggio/chromalabel/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logWriter := io.Writer(os.Stdout)
	if logPath := os.Getenv("CHROMALABEL_LOG_PATH"); logPath != "" {
		fileWriter, file, err := newLogFileWriter(logPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		} else {
			defer file.Close()
			logWriter = fileWriter
		}
	}
	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		logger.Error("failed to prepare database path", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	pal, err := palette.New(cfg.Palette)
	if err != nil {
		logger.Error("invalid palette", "error", err)
		os.Exit(1)
	}
	pages, err := web.Templates()
	if err != nil {
		logger.Error("failed to parse pages", "error", err)
		os.Exit(1)
	}

	activityRepo := sqlite.NewActivityRepository(db)
	responseRepo := sqlite.NewResponseRepository(db)

	store := imagestore.New(cfg.Storage.ImageRoot)
	activitySvc := activity.NewService(activityRepo, logger)
	sequenceSvc := sequence.NewService(store, responseRepo, activitySvc, cfg.Experiment, logger)
	trialSvc := trial.NewService(store, activitySvc, logger)
	results := result.NewLog(cfg.Storage.ResultsDir, responseRepo, activitySvc, logger)

	router := transport.NewServer(transport.Config{
		Services: transport.Services{
			Sequences: sequenceSvc,
			Trials:    trialSvc,
			Results:   results,
			Uploads:   store,
			Activity:  activitySvc,
		},
		Palette:            pal,
		Pages:              pages,
		Logger:             logger,
		DefaultParticipant: cfg.Experiment.DefaultParticipant,
		UploadRGB:          cfg.Storage.UploadRGB,
		UploadSeg:          cfg.Storage.UploadSeg,
		MaxUploadSize:      cfg.Storage.MaxUploadSize,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening",
			"addr", addr,
			"image_root", cfg.Storage.ImageRoot,
			"results_dir", cfg.Storage.ResultsDir,
			"capped_trials", cfg.Experiment.TotalCap(),
		)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	waitForShutdown(logger, httpServer)
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func waitForShutdown(logger *slog.Logger, server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
