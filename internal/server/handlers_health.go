package server

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/chamroeunchet-blip/OneDeviceLoginProject/internal/domain"
	"github.com/chamroeunchet-blip/OneDeviceLoginProject/internal/store"
	"github.com/chamroeunchet-blip/OneDeviceLoginProject/internal/version"
)

func (s *Server) handleLiveness(c echo.Context) error {
	uptime := time.Since(s.startTime).Seconds()
	return c.JSON(200, map[string]any{
		"status": "ok",
		"uptime": uptime,
	})
}

func (s *Server) handleReadiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		return c.JSON(503, map[string]any{
			"status":       "unhealthy",
			"failed_check": "store",
			"error":        err.Error(),
		})
	}

	return c.JSON(200, map[string]string{"status": "ready"})
}

func (s *Server) handleStatus(c echo.Context) error {
	return c.JSON(200, map[string]any{
		"ok":      true,
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": version.Get(),
	})
}

// accountView is the debug representation of an account. Passwords and
// session tokens never leave the process.
type accountView struct {
	OwnerDevice      string        `json:"ownerDevice,omitempty"`
	Status           domain.Status `json:"status"`
	PendingDevice    string        `json:"pendingDevice,omitempty"`
	PendingRequestID string        `json:"pendingRequestId,omitempty"`
	HasDecline       bool          `json:"hasDecline"`
	LastActiveAt     time.Time     `json:"lastActiveAt"`
}

func (s *Server) handleUsers(c echo.Context) error {
	views := make(map[string]accountView)
	err := s.store.View(c.Request().Context(), func(tx *store.Tx) error {
		tx.Each(func(username string, acct *domain.Account) {
			views[username] = accountView{
				OwnerDevice:      acct.OwnerDevice,
				Status:           acct.Status,
				PendingDevice:    acct.PendingDevice,
				PendingRequestID: acct.PendingRequestID,
				HasDecline:       acct.DeclineMessage != "",
				LastActiveAt:     acct.LastActiveAt,
			}
		})
		return nil
	})
	if err != nil {
		return err
	}

	return c.JSON(200, views)
}
