package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Transport identifies which stream client the pipeline connects with.
type Transport string

const (
	TransportSSE       Transport = "sse"
	TransportWebsocket Transport = "websocket"
)

// Config holds all configuration for the application.
type Config struct {
	// StreamURL is the endpoint of the inbound telemetry stream.
	StreamURL string `validate:"required,url"`
	// StreamTransport selects the stream client: "sse" or "websocket".
	StreamTransport Transport `validate:"required,oneof=sse websocket"`
	// HTTPAddr is the listen address of the control API.
	HTTPAddr string `validate:"required"`
	// SettingsPath is where per-trigger {enabled, cooldown} settings persist.
	SettingsPath string `validate:"required"`
	// ScriptsDir holds external rule scripts; empty disables external scripts.
	ScriptsDir string
	// HistoryCapacity bounds the pipeline's in-memory event history ring.
	HistoryCapacity int `validate:"gt=0"`
	// MasterVolume scales audio cue playback, 0..100.
	MasterVolume int `validate:"gte=0,lte=100"`
	// HotReloadScripts enables fsnotify-based reload of external scripts.
	HotReloadScripts bool
}

// New loads configuration from environment variables, applying defaults
// where the variable is unset. It terminates the process when a required
// value is missing or invalid, since nothing useful can run without one.
func New() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		StreamURL:        os.Getenv("STREAM_URL"),
		StreamTransport:  Transport(envOr("STREAM_TRANSPORT", string(TransportSSE))),
		HTTPAddr:         envOr("HTTP_ADDR", ":8090"),
		SettingsPath:     envOr("SETTINGS_PATH", "trigger-settings.json"),
		ScriptsDir:       os.Getenv("SCRIPTS_DIR"),
		HistoryCapacity:  envIntOr("HISTORY_CAPACITY", 10000),
		MasterVolume:     envIntOr("MASTER_VOLUME", 80),
		HotReloadScripts: os.Getenv("HOT_RELOAD_SCRIPTS") != "false",
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	return cfg
}

// Validate checks the struct tags against the loaded values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("ignoring non-numeric %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}
