package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/projectx/accounts/internal/api/middleware"
)

// PingHandler answers the public ping probe. Unlike the health endpoints it
// also reports whether the caller presented a valid credential.
type PingHandler struct{}

func NewPingHandler() *PingHandler {
	return &PingHandler{}
}

type pingResponse struct {
	Status          string `json:"status"`
	IsAuthenticated bool   `json:"is_authenticated"`
	Timestamp       string `json:"timestamp"`
}

func (h *PingHandler) Ping(c echo.Context) error {
	actor := middleware.ActorFrom(c)

	return c.JSON(http.StatusOK, pingResponse{
		Status:          "ok",
		IsAuthenticated: actor.Authenticated,
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
	})
}
