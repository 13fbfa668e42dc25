package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/projectx/accounts/internal/core/domain"
	"github.com/projectx/accounts/internal/core/ports"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 24 * time.Hour
)

type tokenClaims struct {
	Username  string `json:"username"`
	IsAdmin   bool   `json:"is_admin"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

// TokenService issues and verifies HS256 access/refresh token pairs bound to
// an account identity. Refresh tokens are single-use: exchanging one marks
// its jti as consumed for the remainder of its lifetime.
type TokenService struct {
	repo       ports.AccountRepository
	guard      ports.RefreshTokenGuard
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewTokenService(repo ports.AccountRepository, guard ports.RefreshTokenGuard, secret string, accessTTL, refreshTTL time.Duration) *TokenService {
	if accessTTL <= 0 {
		accessTTL = defaultAccessTTL
	}
	if refreshTTL <= 0 {
		refreshTTL = defaultRefreshTTL
	}
	return &TokenService{
		repo:       repo,
		guard:      guard,
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// ObtainPair verifies username+password and issues a fresh token pair.
func (s *TokenService) ObtainPair(ctx context.Context, username, password string) (*ports.TokenPair, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	account, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	return s.issuePair(account)
}

// Refresh exchanges a refresh token for a new pair. The presented token is
// consumed; replaying it yields domain.ErrInvalidToken.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (*ports.TokenPair, error) {
	claims, err := s.parse(refreshToken, tokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	// Re-read the account so role changes and deletions take effect on the
	// next access token rather than persisting until refresh expiry.
	account, err := s.repo.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			return nil, domain.ErrInvalidToken
		}
		return nil, err
	}

	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining <= 0 {
		return nil, domain.ErrInvalidToken
	}

	// Atomic consume: of any concurrent exchanges of the same token, exactly
	// one proceeds to issue a new pair.
	alreadyUsed, err := s.guard.Consume(ctx, claims.ID, remaining)
	if err != nil {
		return nil, err
	}
	if alreadyUsed {
		return nil, domain.ErrInvalidToken
	}

	return s.issuePair(account)
}

// VerifyAccess resolves the actor identity carried by an access token.
func (s *TokenService) VerifyAccess(token string) (domain.Actor, error) {
	claims, err := s.parse(token, tokenTypeAccess)
	if err != nil {
		return domain.Anonymous, err
	}

	return domain.Actor{
		ID:            claims.Subject,
		Username:      claims.Username,
		IsAdmin:       claims.IsAdmin,
		Authenticated: true,
	}, nil
}

func (s *TokenService) issuePair(account *domain.Account) (*ports.TokenPair, error) {
	access, err := s.sign(account, tokenTypeAccess, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.sign(account, tokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &ports.TokenPair{Access: access, Refresh: refresh}, nil
}

func (s *TokenService) sign(account *domain.Account, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := tokenClaims{
		Username:  account.Username,
		IsAdmin:   account.IsAdmin,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *TokenService) parse(token, wantType string) (*tokenClaims, error) {
	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, domain.ErrInvalidToken
	}
	if claims.TokenType != wantType || claims.Subject == "" || claims.ID == "" || claims.ExpiresAt == nil {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}
