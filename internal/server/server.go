package server

import (
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/battlecast/battlecast/internal/audio"
	"github.com/battlecast/battlecast/internal/gamestate"
	"github.com/battlecast/battlecast/internal/pipeline"
	"github.com/battlecast/battlecast/internal/settings"
	"github.com/battlecast/battlecast/internal/trigger"
)

// Server holds the dependencies for the control API.
type Server struct {
	E        *echo.Echo
	store    *gamestate.Store
	engine   *trigger.Engine
	pipe     *pipeline.Pipeline
	settings *settings.Store
	player   *audio.Player
}

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// New creates a new Server instance wired to the given collaborators.
func New(store *gamestate.Store, engine *trigger.Engine, pipe *pipeline.Pipeline, st *settings.Store, player *audio.Player) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Validator = &requestValidator{validate: validator.New()}

	s := &Server{
		E:        e,
		store:    store,
		engine:   engine,
		pipe:     pipe,
		settings: st,
		player:   player,
	}
	s.RegisterRoutes()
	return s
}
