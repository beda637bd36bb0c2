package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/battlecast/battlecast/internal/audio"
	"github.com/battlecast/battlecast/internal/config"
	"github.com/battlecast/battlecast/internal/gamestate"
	"github.com/battlecast/battlecast/internal/logging"
	"github.com/battlecast/battlecast/internal/pipeline"
	"github.com/battlecast/battlecast/internal/pubsub"
	"github.com/battlecast/battlecast/internal/rules"
	"github.com/battlecast/battlecast/internal/rules/scripts"
	"github.com/battlecast/battlecast/internal/script"
	"github.com/battlecast/battlecast/internal/server"
	"github.com/battlecast/battlecast/internal/settings"
	"github.com/battlecast/battlecast/internal/stream"
	"github.com/battlecast/battlecast/internal/trigger"
)

// App wires the full tracker together: stream source, event pipeline,
// state store, trigger engine, audio player and control API.
type App struct {
	Cfg      *config.Config
	Store    *gamestate.Store
	Engine   *trigger.Engine
	Bridge   *pubsub.WatermillBridge
	Pipeline *pipeline.Pipeline
	Server   *server.Server

	player   *audio.Player
	registry *script.Registry
	source   pipeline.Source
	settings *settings.Store
}

// New builds the application from configuration. Construction registers
// the trigger catalog and applies persisted settings but does not touch
// the network.
func New(cfg *config.Config) (*App, error) {
	store := gamestate.New()
	engine := trigger.NewEngine()
	bridge := pubsub.NewWatermillBridge()

	scriptEngine := script.NewEngine(script.DefaultTimeout)
	registry := script.NewRegistry(cfg.ScriptsDir)
	for name, content := range scripts.All() {
		registry.AddEmbedded(name, content)
	}
	if err := registry.LoadExternal(); err != nil {
		return nil, fmt.Errorf("loading external scripts: %w", err)
	}

	if err := rules.RegisterAll(engine, rules.Catalog(store, scriptEngine, registry)); err != nil {
		return nil, fmt.Errorf("registering triggers: %w", err)
	}

	settingsStore := settings.NewStore(nil, cfg.SettingsPath)
	saved, err := settingsStore.Load()
	if err != nil {
		return nil, fmt.Errorf("loading trigger settings: %w", err)
	}
	engine.ImportSettings(saved)

	pipe := pipeline.New(store, engine, bridge, cfg.HistoryCapacity)
	player := audio.NewPlayer(nil, audio.DefaultSoundpack(), cfg.MasterVolume)
	srv := server.New(store, engine, pipe, settingsStore, player)

	var source pipeline.Source
	switch cfg.StreamTransport {
	case config.TransportWebsocket:
		source = stream.NewWSClient(cfg.StreamURL)
	default:
		source = stream.NewSSEClient(cfg.StreamURL, nil)
	}

	return &App{
		Cfg:      cfg,
		Store:    store,
		Engine:   engine,
		Bridge:   bridge,
		Pipeline: pipe,
		Server:   srv,
		player:   player,
		registry: registry,
		source:   source,
		settings: settingsStore,
	}, nil
}

// Run starts every component and blocks until the context is cancelled
// or an interrupt arrives, then shuts the application down in reverse
// order.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.player.Start(ctx, a.Bridge); err != nil {
		return fmt.Errorf("starting audio player: %w", err)
	}

	if a.Cfg.HotReloadScripts && a.Cfg.ScriptsDir != "" {
		go func() {
			if err := a.registry.Watch(ctx); err != nil {
				slog.Error("Script watcher stopped", "error", err)
			}
		}()
	}

	// Connect blocks for the life of the stream; run it beside the API.
	streamCh := make(chan error, 1)
	go func() {
		streamCh <- a.Pipeline.Connect(ctx, a.source)
	}()

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Control API listening", "addr", a.Cfg.HTTPAddr)
		errCh <- a.Server.Start(a.Cfg.HTTPAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case <-ctx.Done():
			return a.Shutdown()
		case sig := <-quit:
			slog.Info("Shutting down", "signal", sig.String())
			return a.Shutdown()
		case err := <-streamCh:
			// The stream ending is not fatal: keep serving the control API
			// so the operator can inspect state and reset the session.
			if err != nil {
				slog.Error("Event stream ended", "error", err)
			}
			streamCh = nil
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("control API: %w", err)
			}
			return a.Shutdown()
		}
	}
}

// Shutdown stops the stream, the control API, the trigger engine and
// the message bridge, persisting trigger settings on the way out.
func (a *App) Shutdown() error {
	if err := a.Pipeline.Disconnect(); err != nil {
		slog.Error("Failed to close stream source", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Failed to stop control API", "error", err)
	}

	if err := a.settings.Save(a.Engine.ExportSettings()); err != nil {
		slog.Error("Failed to persist trigger settings", "error", err)
	}

	a.Engine.Shutdown()
	return a.Bridge.Close()
}

// Main is the conventional entrypoint: configure logging, load config,
// build the app and run it until interrupted.
func Main() {
	logging.New()
	cfg := config.New()

	a, err := New(cfg)
	if err != nil {
		slog.Error("Failed to build application", "error", err)
		os.Exit(1)
	}
	if err := a.Run(context.Background()); err != nil {
		slog.Error("Application exited with error", "error", err)
		os.Exit(1)
	}
}
