package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"showlog/api"
	"showlog/config"
	"showlog/handlers"
	"showlog/services/backend"
	"showlog/services/catalog"
	"showlog/services/session"
	"showlog/services/tracker"

	"github.com/joho/godotenv"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	portOverride := flag.Int("port", 0, "override server port from config")
	configPath := flag.String("config", "", "path to settings.json")
	flag.Parse()

	// .env is optional; absence is not an error.
	_ = godotenv.Load()

	path := strings.TrimSpace(*configPath)
	if path == "" {
		path = os.Getenv("SHOWLOG_CONFIG")
	}
	if path == "" {
		path = filepath.Join("cache", "settings.json")
	}

	cfgManager := config.NewManager(path)
	settings, err := cfgManager.Load()
	if err != nil {
		log.Fatalf("failed to load settings: %v", err)
	}

	if *portOverride > 0 {
		settings.Server.Port = *portOverride
	}

	logger := newLogger(settings.Log)
	slog.SetDefault(logger)

	// Remote API client; the token comes from whatever session is active.
	httpClient := &http.Client{Timeout: time.Duration(settings.Backend.TimeoutSeconds) * time.Second}
	var sessionSvc *session.Service
	apiClient := backend.NewClient(settings.Backend.BaseURL, func() string {
		if sessionSvc == nil {
			return ""
		}
		return sessionSvc.Token()
	}, httpClient)

	sessionSvc, err = session.NewService(settings.Storage.Directory, apiClient)
	if err != nil {
		log.Fatalf("failed to initialise session store: %v", err)
	}

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 15*time.Second)
	if err := sessionSvc.Load(startupCtx); err != nil {
		if errors.Is(err, session.ErrTokenExpired) {
			logger.Info("stored session token expired, sign in again")
		} else {
			logger.Warn("could not restore session", "error", err)
		}
	}
	cancelStartup()

	trackerSvc := tracker.NewService(apiClient, logger)
	catalogSvc := catalog.NewService(settings.Catalog.TMDBAPIKey, settings.Catalog.Language, nil)

	router := api.NewRouter(api.Handlers{
		Watchlist: handlers.NewWatchlistHandler(trackerSvc),
		Episodes:  handlers.NewEpisodesHandler(trackerSvc),
		Catalog:   handlers.NewCatalogHandler(catalogSvc),
		Session:   handlers.NewSessionHandler(sessionSvc),
		Reports:   handlers.NewReportsHandler(apiClient),
	}, logger)

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("showlog listening", "addr", addr, "backend", settings.Backend.BaseURL)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown incomplete", "error", err)
	}
}

// newLogger builds the slog logger, with file rotation when a log file is
// configured.
func newLogger(cfg config.LogSettings) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var out io.Writer = os.Stdout
	if cfg.File != "" {
		logDir := filepath.Dir(cfg.File)
		if err := os.MkdirAll(logDir, 0o755); err != nil {
			log.Printf("warning: could not create log directory %s: %v", logDir, err)
		} else {
			fileWriter := &lumberjack.Logger{
				Filename:   cfg.File,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   cfg.Compress,
			}
			out = io.MultiWriter(os.Stdout, fileWriter)
		}
	}

	return slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level}))
}
