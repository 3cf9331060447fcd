package server

import (
	"context"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/chamroeunchet-blip/OneDeviceLoginProject/internal/config"
	"github.com/chamroeunchet-blip/OneDeviceLoginProject/internal/session"
	"github.com/chamroeunchet-blip/OneDeviceLoginProject/internal/store"
)

type Server struct {
	echo      *echo.Echo
	config    *config.Config
	sessions  *session.Service
	store     *store.Store
	startTime time.Time
}

func NewServer(cfg *config.Config, sessions *session.Service, st *store.Store) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware. CORS is wide open: clients are static pages served from
	// arbitrary origins that talk to this API directly.
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(correlationMiddleware)
	e.Use(errorHandlingMiddleware)

	srv := &Server{
		echo:      e,
		config:    cfg,
		sessions:  sessions,
		store:     st,
		startTime: time.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
