package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/projectx/accounts/internal/api/metrics"
	"github.com/projectx/accounts/internal/core/ports"
)

// TokenHandler issues and rotates bearer token pairs.
type TokenHandler struct {
	tokens ports.TokenService
}

func NewTokenHandler(tokens ports.TokenService) *TokenHandler {
	return &TokenHandler{tokens: tokens}
}

// Obtain exchanges username+password for an access/refresh pair.
//
// @Summary      Obtain a token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      tokenRequest  true  "Credentials"
// @Success      200   {object}  tokenPairResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/token [post]
func (h *TokenHandler) Obtain(c echo.Context) error {
	var req tokenRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	pair, err := h.tokens.ObtainPair(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	metrics.TokensIssuedTotal.WithLabelValues("password").Inc()
	return c.JSON(http.StatusOK, tokenPairResponse{Access: pair.Access, Refresh: pair.Refresh})
}

// Refresh rotates a refresh token into a new pair. The presented refresh
// token is single-use.
//
// @Summary      Refresh a token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      tokenRefreshRequest  true  "Refresh token"
// @Success      200   {object}  tokenPairResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/token/refresh [post]
func (h *TokenHandler) Refresh(c echo.Context) error {
	var req tokenRefreshRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	pair, err := h.tokens.Refresh(c.Request().Context(), req.Refresh)
	if err != nil {
		return err
	}

	metrics.TokensIssuedTotal.WithLabelValues("refresh").Inc()
	return c.JSON(http.StatusOK, tokenPairResponse{Access: pair.Access, Refresh: pair.Refresh})
}
