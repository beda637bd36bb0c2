package trigger

import (
	"log/slog"
	"time"
)

// Setting is the user-adjustable slice of one trigger's definition.
// Conditions and actions are code, not data, so they are never exported.
type Setting struct {
	Enabled    bool  `json:"enabled"`
	CooldownMS int64 `json:"cooldownMs"`
}

// Settings is the flat serializable object the persistence collaborator
// loads and saves, keyed by trigger id.
type Settings map[string]Setting

// ExportSettings snapshots every trigger's {enabled, cooldown} pair.
func (e *Engine) ExportSettings() Settings {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make(Settings, len(e.defs))
	for id, def := range e.defs {
		out[id] = Setting{
			Enabled:    def.Enabled,
			CooldownMS: def.Cooldown.Milliseconds(),
		}
	}
	return out
}

// ImportSettings applies persisted settings to the registered triggers.
// Ids with no matching registration are skipped: settings may outlive a
// trigger removed from configuration.
func (e *Engine) ImportSettings(settings Settings) {
	e.mu.Lock()
	defer e.mu.Unlock()

	applied := 0
	for id, setting := range settings {
		def, ok := e.defs[id]
		if !ok {
			slog.Debug("Skipping settings for unregistered trigger", "trigger", id)
			continue
		}
		def.Enabled = setting.Enabled
		if setting.CooldownMS > 0 {
			def.Cooldown = time.Duration(setting.CooldownMS) * time.Millisecond
		}
		applied++
	}
	slog.Info("Trigger settings imported", "applied", applied, "total", len(settings))
}
