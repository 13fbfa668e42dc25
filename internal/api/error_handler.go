package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/projectx/accounts/internal/api/metrics"
	"github.com/projectx/accounts/internal/core/domain"
)

// errorResponse is the uniform envelope rendered for every API error.
type errorResponse struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"status_code"`
	Error      string `json:"error"`
	Detail     string `json:"detail"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps domain errors to their HTTP status codes, distinguishing missing
//     credentials (401) from denied permissions (403).
//   - Renders field validation failures as 'field' message details.
//   - Logs unexpected errors internally and returns a generic 500 detail.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, detail := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{
			Success:    false,
			StatusCode: code,
			Error:      http.StatusText(code),
			Detail:     detail,
		})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from the router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	var fieldErrs domain.FieldErrors
	if errors.As(err, &fieldErrs) {
		field := fieldErrs[0].Field
		if field == "" {
			field = "non_field"
		}
		metrics.ValidationFailuresTotal.WithLabelValues(field).Inc()
		return http.StatusBadRequest, fieldErrs.Detail()
	}

	switch {
	case errors.Is(err, domain.ErrAuthRequired):
		metrics.AuthzDenialsTotal.WithLabelValues("unauthenticated").Inc()
		return http.StatusUnauthorized, "Authentication credentials were not provided."
	case errors.Is(err, domain.ErrForbidden):
		metrics.AuthzDenialsTotal.WithLabelValues("forbidden").Inc()
		return http.StatusForbidden, "You do not have permission to perform this action."
	case errors.Is(err, domain.ErrAccountNotFound):
		return http.StatusNotFound, "Not found."
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "No active account found with the given credentials"
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusUnauthorized, "Token is invalid or expired"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
