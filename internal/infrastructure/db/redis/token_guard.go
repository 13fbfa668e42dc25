package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RefreshTokenGuard records consumed refresh token ids in Redis so each
// refresh token can be exchanged at most once.
// Key format: refresh:used:<jti>
type RefreshTokenGuard struct {
	client *redis.Client
}

// NewRefreshTokenGuard creates a RefreshTokenGuard wrapping the given client.
func NewRefreshTokenGuard(client *redis.Client) *RefreshTokenGuard {
	return &RefreshTokenGuard{client: client}
}

// Consume marks the token exchanged via SET NX, so of any concurrent
// exchanges of the same jti exactly one wins the write and the rest see
// alreadyUsed. The ttl should cover the remaining token lifetime; after
// expiry the token is rejected by its exp claim anyway.
func (g *RefreshTokenGuard) Consume(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	set, err := g.client.SetNX(ctx, g.key(jti), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("refresh guard consume: %w", err)
	}
	return !set, nil
}

func (g *RefreshTokenGuard) key(jti string) string {
	return "refresh:used:" + jti
}
