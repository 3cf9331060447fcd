package server

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/labstack/echo/v4"

	apperrors "github.com/chamroeunchet-blip/OneDeviceLoginProject/internal/errors"
	"github.com/chamroeunchet-blip/OneDeviceLoginProject/internal/platform/correlation"
)

// correlationMiddleware attaches a fresh correlation ID to every request
// context and echoes it back in a response header.
func correlationMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := correlation.NewID()
		ctx := correlation.WithID(c.Request().Context(), id)
		c.SetRequest(c.Request().WithContext(ctx))
		c.Response().Header().Set("X-Correlation-ID", id)
		return next(c)
	}
}

// errorHandlingMiddleware is the boundary where handler errors become
// structured JSON responses. Echo's own HTTP errors pass through untouched.
func errorHandlingMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		err := next(c)
		if err == nil {
			return nil
		}

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			return err
		}

		structuredErr := apperrors.AsStructuredError(err)
		logError(c, structuredErr)

		if err := c.JSON(structuredErr.HTTPStatus(), structuredErr.ToResponse()); err != nil {
			return fmt.Errorf("failed to write error response: %w", err)
		}
		return nil
	}
}

func logError(c echo.Context, err *apperrors.Error) {
	attrs := []any{
		"error_type", err.Type,
		"message", err.Message,
		"path", c.Request().URL.Path,
		"method", c.Request().Method,
		"status", err.HTTPStatus(),
	}

	for k, v := range err.Context {
		attrs = append(attrs, k, v)
	}

	if err.Cause != nil {
		attrs = append(attrs, "cause", err.Cause.Error())
	}

	ctx := c.Request().Context()
	switch err.Type {
	case apperrors.TypeInternal:
		slog.ErrorContext(ctx, "Request failed", attrs...)
	case apperrors.TypeValidation, apperrors.TypeAuth, apperrors.TypeNotFound, apperrors.TypeConflict:
		slog.WarnContext(ctx, "Request rejected", attrs...)
	default:
		slog.ErrorContext(ctx, "Unknown error type", attrs...)
	}
}
