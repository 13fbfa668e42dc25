package ports

import (
	"context"
	"time"

	"github.com/projectx/accounts/internal/core/domain"
)

// TokenPair is an access + refresh token set bound to one account.
type TokenPair struct {
	Access  string
	Refresh string
}

type TokenService interface {
	// ObtainPair authenticates username+password and issues a fresh pair.
	ObtainPair(ctx context.Context, username, password string) (*TokenPair, error)
	// Refresh exchanges a valid, unused refresh token for a new pair.
	// The presented refresh token is consumed and cannot be replayed.
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	// VerifyAccess resolves the actor identity carried by an access token.
	VerifyAccess(token string) (domain.Actor, error)
}

// RefreshTokenGuard tracks consumed refresh token ids so each refresh token
// can be exchanged at most once.
type RefreshTokenGuard interface {
	// Consume atomically marks jti as exchanged and reports whether it had
	// already been consumed. Exactly one of any set of concurrent callers
	// observes alreadyUsed == false. The ttl bounds how long the mark is
	// retained; the token's own exp claim rejects it after that.
	Consume(ctx context.Context, jti string, ttl time.Duration) (alreadyUsed bool, err error)
}
