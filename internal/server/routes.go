package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all the control API routes.
func (s *Server) RegisterRoutes() {
	api := s.E.Group("/api")

	api.GET("/triggers", s.ListTriggers)
	api.PUT("/triggers/enabled", s.SetAllEnabled)
	api.GET("/triggers/:id", s.GetTrigger)
	api.PUT("/triggers/:id/enabled", s.SetEnabled)
	api.PUT("/triggers/:id/cooldown", s.SetCooldown)

	api.GET("/settings", s.GetSettings)
	api.PUT("/settings", s.PutSettings)

	api.GET("/status", s.GetStatus)
	api.GET("/summary", s.GetSummary)
	api.GET("/history", s.GetHistory)

	api.PUT("/volume", s.SetVolume)
	api.POST("/session/reset", s.ResetSession)

	s.E.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
}
