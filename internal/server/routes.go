package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints (no auth required)
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Session protocol
	s.echo.POST("/login", s.handleLogin)
	s.echo.POST("/check-requests", s.handleCheckRequests)
	s.echo.POST("/approve", s.handleApprove)
	s.echo.POST("/decline", s.handleDecline)
	s.echo.POST("/check-decline", s.handleCheckDecline)
	s.echo.POST("/logout", s.handleLogout)
	s.echo.POST("/validate", s.handleValidate)

	// Debug endpoints, kept for client parity
	s.echo.GET("/_status", s.handleStatus)
	s.echo.GET("/_users", s.handleUsers)
}
