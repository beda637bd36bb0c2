package server

import (
	"context"
	"net/http"
)

// Start runs the control API on addr. It returns once the listener
// stops; callers run it in a goroutine and drive shutdown via Shutdown.
func (s *Server) Start(addr string) error {
	if err := s.E.Start(addr); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the control API.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.E.Shutdown(ctx)
}
