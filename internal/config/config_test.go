package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv("STREAM_URL", "http://127.0.0.1:8080/events")

	cfg := New()
	assert.Equal(t, TransportSSE, cfg.StreamTransport)
	assert.Equal(t, ":8090", cfg.HTTPAddr)
	assert.Equal(t, "trigger-settings.json", cfg.SettingsPath)
	assert.Equal(t, 10000, cfg.HistoryCapacity)
	assert.Equal(t, 80, cfg.MasterVolume)
	assert.True(t, cfg.HotReloadScripts)
}

func TestNew_EnvOverrides(t *testing.T) {
	t.Setenv("STREAM_URL", "ws://127.0.0.1:9000/feed")
	t.Setenv("STREAM_TRANSPORT", "websocket")
	t.Setenv("HTTP_ADDR", ":7070")
	t.Setenv("HISTORY_CAPACITY", "500")
	t.Setenv("MASTER_VOLUME", "35")
	t.Setenv("HOT_RELOAD_SCRIPTS", "false")

	cfg := New()
	assert.Equal(t, TransportWebsocket, cfg.StreamTransport)
	assert.Equal(t, ":7070", cfg.HTTPAddr)
	assert.Equal(t, 500, cfg.HistoryCapacity)
	assert.Equal(t, 35, cfg.MasterVolume)
	assert.False(t, cfg.HotReloadScripts)
}

func TestNew_NonNumericIntFallsBack(t *testing.T) {
	t.Setenv("STREAM_URL", "http://127.0.0.1:8080/events")
	t.Setenv("HISTORY_CAPACITY", "lots")

	cfg := New()
	assert.Equal(t, 10000, cfg.HistoryCapacity)
}

func TestValidate(t *testing.T) {
	valid := &Config{
		StreamURL:       "http://127.0.0.1:8080/events",
		StreamTransport: TransportSSE,
		HTTPAddr:        ":8090",
		SettingsPath:    "triggers.json",
		HistoryCapacity: 100,
		MasterVolume:    80,
	}
	require.NoError(t, valid.Validate())

	missingURL := *valid
	missingURL.StreamURL = ""
	assert.Error(t, missingURL.Validate())

	badTransport := *valid
	badTransport.StreamTransport = "carrier-pigeon"
	assert.Error(t, badTransport.Validate())

	badVolume := *valid
	badVolume.MasterVolume = 150
	assert.Error(t, badVolume.Validate())

	badCapacity := *valid
	badCapacity.HistoryCapacity = 0
	assert.Error(t, badCapacity.Validate())
}
