package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/battlecast/battlecast/internal/trigger"
)

type enabledRequest struct {
	Enabled bool `json:"enabled"`
}

type cooldownRequest struct {
	CooldownMS int64 `json:"cooldownMs" validate:"required,gt=0"`
}

type volumeRequest struct {
	Volume int `json:"volume" validate:"gte=0,lte=100"`
}

type statusResponse struct {
	Connected   bool    `json:"connected"`
	Initialized bool    `json:"initialized"`
	GameStarted bool    `json:"gameStarted"`
	GameTime    float64 `json:"gameTime"`
	Volume      int     `json:"volume"`
}

// ListTriggers returns fire stats for every registered trigger.
func (s *Server) ListTriggers(c echo.Context) error {
	return c.JSON(http.StatusOK, s.engine.AllStats())
}

// GetTrigger returns fire stats for a single trigger.
func (s *Server) GetTrigger(c echo.Context) error {
	stats, ok := s.engine.Stats(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown trigger")
	}
	return c.JSON(http.StatusOK, stats)
}

// SetEnabled toggles one trigger on or off and persists the change.
func (s *Server) SetEnabled(c echo.Context) error {
	var req enabledRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := s.engine.SetEnabled(c.Param("id"), req.Enabled); err != nil {
		if errors.Is(err, trigger.ErrUnknownTrigger) {
			return echo.NewHTTPError(http.StatusNotFound, "unknown trigger")
		}
		return err
	}
	s.persistSettings()
	return c.NoContent(http.StatusNoContent)
}

// SetAllEnabled toggles every trigger at once (mute / unmute).
func (s *Server) SetAllEnabled(c echo.Context) error {
	var req enabledRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	s.engine.SetAllEnabled(req.Enabled)
	s.persistSettings()
	return c.NoContent(http.StatusNoContent)
}

// SetCooldown adjusts one trigger's cooldown and persists the change.
func (s *Server) SetCooldown(c echo.Context) error {
	var req cooldownRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	cooldown := time.Duration(req.CooldownMS) * time.Millisecond
	if err := s.engine.SetCooldown(c.Param("id"), cooldown); err != nil {
		if errors.Is(err, trigger.ErrUnknownTrigger) {
			return echo.NewHTTPError(http.StatusNotFound, "unknown trigger")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	s.persistSettings()
	return c.NoContent(http.StatusNoContent)
}

// GetSettings exports the current per-trigger settings.
func (s *Server) GetSettings(c echo.Context) error {
	return c.JSON(http.StatusOK, s.engine.ExportSettings())
}

// PutSettings applies a settings document and persists it. Unknown
// trigger ids are ignored so stale documents stay importable.
func (s *Server) PutSettings(c echo.Context) error {
	var doc trigger.Settings
	if err := c.Bind(&doc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	s.engine.ImportSettings(doc)
	s.persistSettings()
	return c.NoContent(http.StatusNoContent)
}

// GetStatus reports stream connectivity and session state.
func (s *Server) GetStatus(c echo.Context) error {
	game := s.store.Game()
	return c.JSON(http.StatusOK, statusResponse{
		Connected:   s.pipe.Connected(),
		Initialized: s.pipe.Initialized(),
		GameStarted: game.GameStarted,
		GameTime:    game.GameTime,
		Volume:      s.player.MasterVolume(),
	})
}

// GetSummary returns the aggregate game summary.
func (s *Server) GetSummary(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.Summary())
}

// GetHistory returns processed events, oldest first. An optional limit
// query parameter caps the result to the most recent N events.
func (s *Server) GetHistory(c echo.Context) error {
	events := s.pipe.History().Snapshot()
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
		if limit < len(events) {
			events = events[len(events)-limit:]
		}
	}
	return c.JSON(http.StatusOK, events)
}

// SetVolume adjusts the master playback volume.
func (s *Server) SetVolume(c echo.Context) error {
	var req volumeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	s.player.SetMasterVolume(req.Volume)
	return c.NoContent(http.StatusNoContent)
}

// ResetSession clears game state ahead of a new match.
func (s *Server) ResetSession(c echo.Context) error {
	s.pipe.ResetSession()
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) persistSettings() {
	if s.settings == nil {
		return
	}
	if err := s.settings.Save(s.engine.ExportSettings()); err != nil {
		slog.Error("Failed to persist trigger settings", "error", err)
	}
}
