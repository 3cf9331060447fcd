package server

import (
	"errors"
	"fmt"

	"github.com/labstack/echo/v4"

	"github.com/chamroeunchet-blip/OneDeviceLoginProject/internal/domain"
	apperrors "github.com/chamroeunchet-blip/OneDeviceLoginProject/internal/errors"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	DeviceID string `json:"deviceId"`
}

type usernameRequest struct {
	Username string `json:"username"`
}

type approveRequest struct {
	Username  string `json:"username"`
	RequestID string `json:"requestId"`
}

type logoutRequest struct {
	Token string `json:"token"`
}

type validateRequest struct {
	Username string `json:"username"`
	Token    string `json:"token"`
}

func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid JSON body")
	}

	result, err := s.sessions.Login(c.Request().Context(), req.Username, req.Password, req.DeviceID)
	if err != nil {
		return mapLoginError(err)
	}

	switch {
	case result.Declined:
		return jsonOK(c, map[string]any{
			"success":  false,
			"declined": true,
			"message":  result.Message,
		})
	case result.RequiresApproval:
		return jsonOK(c, map[string]any{
			"success":          false,
			"requiresApproval": true,
			"requestId":        result.RequestID,
			"message":          "Someone is trying to login to your account.",
		})
	default:
		resp := map[string]any{
			"success": true,
			"token":   result.Token,
		}
		if result.RedirectURL != "" {
			resp["url"] = result.RedirectURL
		}
		return jsonOK(c, resp)
	}
}

func (s *Server) handleCheckRequests(c echo.Context) error {
	var req usernameRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid JSON body")
	}

	status, err := s.sessions.CheckPending(c.Request().Context(), req.Username)
	if err != nil {
		return mapSessionError(err)
	}

	resp := map[string]any{"hasRequest": status.HasRequest}
	if status.HasRequest {
		resp["requestId"] = status.RequestID
	}
	return jsonOK(c, resp)
}

func (s *Server) handleApprove(c echo.Context) error {
	var req approveRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid JSON body")
	}

	result, err := s.sessions.Approve(c.Request().Context(), req.Username, req.RequestID)
	if err != nil {
		return mapSessionError(err)
	}

	return jsonOK(c, map[string]any{
		"success": true,
		"token":   result.Token,
		"message": "Approved",
	})
}

func (s *Server) handleDecline(c echo.Context) error {
	var req usernameRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid JSON body")
	}

	if err := s.sessions.Decline(c.Request().Context(), req.Username); err != nil {
		return mapSessionError(err)
	}

	return jsonOK(c, map[string]any{
		"success": true,
		"message": "Declined",
	})
}

func (s *Server) handleCheckDecline(c echo.Context) error {
	var req usernameRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid JSON body")
	}

	status, err := s.sessions.CheckDecline(c.Request().Context(), req.Username)
	if err != nil {
		return mapSessionError(err)
	}

	resp := map[string]any{"hasDecline": status.HasDecline}
	if status.HasDecline {
		resp["message"] = status.Message
	}
	return jsonOK(c, resp)
}

func (s *Server) handleLogout(c echo.Context) error {
	var req logoutRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid JSON body")
	}

	if err := s.sessions.Logout(c.Request().Context(), req.Token); err != nil {
		return mapSessionError(err)
	}

	return jsonOK(c, map[string]any{"success": true})
}

func (s *Server) handleValidate(c echo.Context) error {
	var req validateRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.ValidationError("invalid JSON body")
	}

	status, err := s.sessions.Validate(c.Request().Context(), req.Username, req.Token)
	if err != nil {
		return mapSessionError(err)
	}

	resp := map[string]any{
		"valid":      status.Valid,
		"hasRequest": status.Pending.HasRequest,
	}
	if status.Reason != "" {
		resp["reason"] = string(status.Reason)
	}
	if status.Pending.HasRequest {
		resp["requestId"] = status.Pending.RequestID
	}
	return jsonOK(c, resp)
}

// mapLoginError translates state machine errors into the HTTP error taxonomy.
// Login treats an unknown username as an auth failure rather than a 404;
// credentials are checked as a unit.
func mapLoginError(err error) error {
	switch {
	case errors.Is(err, domain.ErrMissingFields):
		return apperrors.ValidationError("username, password and deviceId are required")
	case errors.Is(err, domain.ErrUnknownAccount):
		return apperrors.AuthError("Invalid username")
	case errors.Is(err, domain.ErrWrongPassword):
		return apperrors.AuthError("Wrong password")
	default:
		return apperrors.InternalError("login failed", err)
	}
}

func mapSessionError(err error) error {
	switch {
	case errors.Is(err, domain.ErrMissingFields):
		return apperrors.ValidationError("missing required fields")
	case errors.Is(err, domain.ErrUnknownAccount):
		return apperrors.NotFoundError("unknown account")
	case errors.Is(err, domain.ErrRequestMismatch):
		return apperrors.ConflictError("Request mismatch")
	case errors.Is(err, domain.ErrTokenNotFound):
		return apperrors.NotFoundError("Token not found")
	default:
		return apperrors.InternalError("operation failed", err)
	}
}

func jsonOK(c echo.Context, body any) error {
	if err := c.JSON(200, body); err != nil {
		return fmt.Errorf("failed to send JSON response: %w", err)
	}
	return nil
}
