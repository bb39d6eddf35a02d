package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alienxp03/warrant/internal/config"
	"github.com/alienxp03/warrant/internal/engine"
	"github.com/alienxp03/warrant/internal/notify"
	"github.com/alienxp03/warrant/internal/scenario"
	"github.com/alienxp03/warrant/internal/storage"
	"github.com/alienxp03/warrant/web/handlers"
)

func main() {
	cfgPath := flag.String("config", "", "Config file path (default: ~/.warrant/config.yaml)")
	port := flag.Int("port", 0, "Server port (overrides config)")
	dbPath := flag.String("db", "", "Database path (overrides config)")
	seed := flag.Bool("seed-scenarios", false, "Import the built-in scenarios on start")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	var (
		cfg *config.Config
		err error
	)
	if *cfgPath != "" {
		cfg, err = config.LoadFrom(*cfgPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	// Initialize slog
	opts := &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}
	if *debug {
		opts.Level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, opts))
	slog.SetDefault(logger)

	// Initialize storage
	path := *dbPath
	if path == "" {
		path = cfg.DBPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		slog.Error("Failed to create database directory", "error", err)
		os.Exit(1)
	}

	slog.Info("Initializing storage", "path", path)
	store, err := storage.NewSQLiteStorage(path)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.Initialize(); err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}

	engOpts, err := cfg.EngineOptions()
	if err != nil {
		slog.Error("Invalid engine options", "error", err)
		os.Exit(1)
	}
	bus := notify.NewBus(cfg.Server.EventBuffer)
	eng, err := engine.New(store, bus, engOpts)
	if err != nil {
		slog.Error("Failed to create engine", "error", err)
		os.Exit(1)
	}

	if *seed {
		created, err := eng.ImportScenarios(context.Background(), scenario.Builtin())
		if err != nil {
			slog.Error("Failed to import scenarios", "error", err)
			os.Exit(1)
		}
		slog.Info("Imported built-in scenarios", "count", len(created))
	}

	h := handlers.New(eng, bus, cfg.Server.AdminToken)
	if cfg.Server.AdminToken == "" {
		slog.Warn("No admin token configured, admin endpoints are open")
	}

	listen := cfg.Server.Port
	if *port != 0 {
		listen = *port
	}
	addr := fmt.Sprintf(":%d", listen)
	server := &http.Server{
		Addr:              addr,
		Handler:           h.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Handle shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		slog.Info("Shutting down...", "dropped_events", bus.Dropped())
		server.Close()
	}()

	slog.Info("Starting warrant server", "url", fmt.Sprintf("http://localhost%s", addr))
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}
}
