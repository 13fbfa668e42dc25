package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/projectx/accounts/internal/core/domain"
)

// actorKey is the echo context key under which the resolved actor is stored.
const actorKey = "actor"

// ActorResolver verifies an access token and returns the actor it identifies.
// Kept as a small interface so tests can fake it easily.
type ActorResolver interface {
	VerifyAccess(token string) (domain.Actor, error)
}

// Auth resolves the request actor from the Authorization header and stores it
// in the echo context. It never rejects: a missing, malformed, or invalid
// bearer token yields the anonymous actor, and whether anonymous access is
// acceptable is decided per action by the authorization engine downstream.
func Auth(tokens ActorResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(actorKey, resolveActor(c, tokens))
			return next(c)
		}
	}
}

func resolveActor(c echo.Context, tokens ActorResolver) domain.Actor {
	header := c.Request().Header.Get("Authorization")
	if header == "" {
		return domain.Anonymous
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return domain.Anonymous
	}

	actor, err := tokens.VerifyAccess(strings.TrimSpace(parts[1]))
	if err != nil {
		return domain.Anonymous
	}
	return actor
}

// ActorFrom returns the actor resolved by Auth, or the anonymous actor when
// the middleware did not run.
func ActorFrom(c echo.Context) domain.Actor {
	actor, _ := c.Get(actorKey).(domain.Actor)
	return actor
}
