package token

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"smartstock/internal/shared/config"
	"smartstock/internal/users"
)

// ErrInvalidToken is the single failure every verification problem
// collapses to. Expired, malformed, wrong signature and revoked tokens
// are deliberately indistinguishable to callers so clients get no oracle
// on why a token was rejected.
var ErrInvalidToken = errors.New("invalid token")

const issuer = "smartstock"

// Identity is the claim set embedded into an access token at issue time.
type Identity struct {
	ID       string
	Username string
	Email    string
	Role     users.Role
}

// Claims represents JWT token claims
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
	Type     string `json:"type"` // "access" or "refresh"
	jwt.RegisteredClaims
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Service issues and verifies the signed tokens shared by every service.
// Verification is stateless apart from the optional revocation store:
// callers that need freshness (refresh, profile fetch) must re-load the
// user record themselves.
type Service interface {
	Issue(identity Identity) (*TokenPair, error)
	VerifyAccess(ctx context.Context, tokenString string) (*Claims, error)
	VerifyRefresh(ctx context.Context, tokenString string) (*Claims, error)
	RevokeAccess(ctx context.Context, tokenString string) error
	RevokeRefresh(ctx context.Context, tokenString string) error
}

type service struct {
	cfg     config.JWTConfig
	revoked RevocationStore // nil disables revocation checks
}

// NewService creates a token service. revoked may be nil, in which case
// logout falls back to natural expiry.
func NewService(cfg config.JWTConfig, revoked RevocationStore) Service {
	return &service{
		cfg:     cfg,
		revoked: revoked,
	}
}

func (s *service) Issue(identity Identity) (*TokenPair, error) {
	now := time.Now()

	// Access token carries the full identity claim.
	accessClaims := Claims{
		UserID:   identity.ID,
		Username: identity.Username,
		Email:    identity.Email,
		Role:     string(identity.Role),
		Type:     "access",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.ExpiresIn)),
			Issuer:    issuer,
			Subject:   identity.ID,
		},
	}

	accessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims)
	accessTokenString, err := accessToken.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, err
	}

	// Refresh token is intentionally minimal: id only. Callers must
	// re-load the user record before reissuing.
	refreshClaims := Claims{
		UserID: identity.ID,
		Type:   "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.RefreshExpiresIn)),
			Issuer:    issuer,
			Subject:   identity.ID,
		},
	}

	refreshToken := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims)
	refreshTokenString, err := refreshToken.SignedString([]byte(s.cfg.RefreshSecret))
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessTokenString,
		RefreshToken: refreshTokenString,
		ExpiresIn:    int64(s.cfg.ExpiresIn.Seconds()),
	}, nil
}

func (s *service) VerifyAccess(ctx context.Context, tokenString string) (*Claims, error) {
	return s.verify(ctx, tokenString, "access", s.cfg.Secret)
}

func (s *service) VerifyRefresh(ctx context.Context, tokenString string) (*Claims, error) {
	return s.verify(ctx, tokenString, "refresh", s.cfg.RefreshSecret)
}

func (s *service) RevokeAccess(ctx context.Context, tokenString string) error {
	return s.revoke(ctx, tokenString, "access", s.cfg.Secret)
}

func (s *service) RevokeRefresh(ctx context.Context, tokenString string) error {
	return s.revoke(ctx, tokenString, "refresh", s.cfg.RefreshSecret)
}

func (s *service) verify(ctx context.Context, tokenString, tokenType, secret string) (*Claims, error) {
	claims, err := s.parse(tokenString, tokenType, secret)
	if err != nil {
		return nil, err
	}

	if s.revoked != nil {
		revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, ErrInvalidToken
		}
	}

	return claims, nil
}

func (s *service) parse(tokenString, tokenType, secret string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != tokenType {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (s *service) revoke(ctx context.Context, tokenString, tokenType, secret string) error {
	if s.revoked == nil {
		return nil
	}

	claims, err := s.parse(tokenString, tokenType, secret)
	if err != nil {
		// Already invalid, nothing to deny.
		return nil
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}

	return s.revoked.Revoke(ctx, claims.ID, ttl)
}
