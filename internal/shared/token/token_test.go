package token

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"smartstock/internal/shared/config"
	"smartstock/internal/users"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:           "test-access-secret",
		RefreshSecret:    "test-refresh-secret",
		ExpiresIn:        time.Hour,
		RefreshExpiresIn: 7 * 24 * time.Hour,
	}
}

func testIdentity() Identity {
	return Identity{
		ID:       "8f14e45f-ea8f-4c7d-9a6f-3b2d1c0e9a11",
		Username: "jdoe",
		Email:    "jdoe@example.com",
		Role:     users.RoleInventoryManager,
	}
}

// memoryRevocationStore is an in-memory RevocationStore for tests.
type memoryRevocationStore struct {
	mu      sync.Mutex
	revoked map[string]struct{}
}

func newMemoryRevocationStore() *memoryRevocationStore {
	return &memoryRevocationStore{revoked: make(map[string]struct{})}
}

func (m *memoryRevocationStore) Revoke(_ context.Context, jti string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[jti] = struct{}{}
	return nil
}

func (m *memoryRevocationStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[jti]
	return ok, nil
}

func TestIssueAndVerifyAccess(t *testing.T) {
	t.Parallel()

	t.Run("round-trip returns the embedded identity unchanged", func(t *testing.T) {
		t.Parallel()

		svc := NewService(testJWTConfig(), nil)
		identity := testIdentity()

		pair, err := svc.Issue(identity)
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}
		if pair.AccessToken == "" || pair.RefreshToken == "" {
			t.Fatal("Issue() returned an empty token")
		}
		if pair.ExpiresIn != int64(time.Hour.Seconds()) {
			t.Errorf("ExpiresIn = %d, want %d", pair.ExpiresIn, int64(time.Hour.Seconds()))
		}

		claims, err := svc.VerifyAccess(context.Background(), pair.AccessToken)
		if err != nil {
			t.Fatalf("VerifyAccess() error = %v", err)
		}
		if claims.UserID != identity.ID {
			t.Errorf("UserID = %q, want %q", claims.UserID, identity.ID)
		}
		if claims.Username != identity.Username {
			t.Errorf("Username = %q, want %q", claims.Username, identity.Username)
		}
		if claims.Email != identity.Email {
			t.Errorf("Email = %q, want %q", claims.Email, identity.Email)
		}
		if claims.Role != string(identity.Role) {
			t.Errorf("Role = %q, want %q", claims.Role, identity.Role)
		}
		if claims.Type != "access" {
			t.Errorf("Type = %q, want %q", claims.Type, "access")
		}
		if claims.ID == "" {
			t.Error("jti is empty")
		}
	})

	t.Run("refresh token carries only the user id", func(t *testing.T) {
		t.Parallel()

		svc := NewService(testJWTConfig(), nil)
		pair, err := svc.Issue(testIdentity())
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}

		claims, err := svc.VerifyRefresh(context.Background(), pair.RefreshToken)
		if err != nil {
			t.Fatalf("VerifyRefresh() error = %v", err)
		}
		if claims.UserID != testIdentity().ID {
			t.Errorf("UserID = %q, want %q", claims.UserID, testIdentity().ID)
		}
		if claims.Username != "" || claims.Email != "" || claims.Role != "" {
			t.Errorf("refresh claims carry extra identity fields: %+v", claims)
		}
	})
}

func TestVerifyAccessFailures(t *testing.T) {
	t.Parallel()

	t.Run("token signed with a different secret is rejected", func(t *testing.T) {
		t.Parallel()

		other := testJWTConfig()
		other.Secret = "some-other-secret"
		pair, err := NewService(other, nil).Issue(testIdentity())
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}

		svc := NewService(testJWTConfig(), nil)
		if _, err := svc.VerifyAccess(context.Background(), pair.AccessToken); err != ErrInvalidToken {
			t.Errorf("VerifyAccess() error = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("tampered payload is rejected", func(t *testing.T) {
		t.Parallel()

		svc := NewService(testJWTConfig(), nil)
		pair, err := svc.Issue(testIdentity())
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}

		parts := strings.Split(pair.AccessToken, ".")
		if len(parts) != 3 {
			t.Fatalf("unexpected token shape: %d segments", len(parts))
		}
		tampered := parts[0] + "." + parts[1][:len(parts[1])-2] + "xx" + "." + parts[2]

		if _, err := svc.VerifyAccess(context.Background(), tampered); err != ErrInvalidToken {
			t.Errorf("VerifyAccess() error = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("expired token is rejected even with a valid signature", func(t *testing.T) {
		t.Parallel()

		cfg := testJWTConfig()
		now := time.Now()
		claims := Claims{
			UserID: testIdentity().ID,
			Type:   "access",
			RegisteredClaims: jwt.RegisteredClaims{
				ID:        "expired-jti",
				IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
				ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
				Issuer:    issuer,
			},
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.Secret))
		if err != nil {
			t.Fatalf("signing test token: %v", err)
		}

		svc := NewService(cfg, nil)
		if _, err := svc.VerifyAccess(context.Background(), signed); err != ErrInvalidToken {
			t.Errorf("VerifyAccess() error = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("refresh token is not accepted as an access token", func(t *testing.T) {
		t.Parallel()

		svc := NewService(testJWTConfig(), nil)
		pair, err := svc.Issue(testIdentity())
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}

		if _, err := svc.VerifyAccess(context.Background(), pair.RefreshToken); err != ErrInvalidToken {
			t.Errorf("VerifyAccess(refresh token) error = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("malformed token is rejected", func(t *testing.T) {
		t.Parallel()

		svc := NewService(testJWTConfig(), nil)
		if _, err := svc.VerifyAccess(context.Background(), "not-a-jwt"); err != ErrInvalidToken {
			t.Errorf("VerifyAccess() error = %v, want ErrInvalidToken", err)
		}
	})
}

func TestRevocation(t *testing.T) {
	t.Parallel()

	t.Run("revoked access token fails verification", func(t *testing.T) {
		t.Parallel()

		store := newMemoryRevocationStore()
		svc := NewService(testJWTConfig(), store)
		pair, err := svc.Issue(testIdentity())
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}

		if _, err := svc.VerifyAccess(context.Background(), pair.AccessToken); err != nil {
			t.Fatalf("VerifyAccess() before revoke error = %v", err)
		}

		if err := svc.RevokeAccess(context.Background(), pair.AccessToken); err != nil {
			t.Fatalf("RevokeAccess() error = %v", err)
		}

		if _, err := svc.VerifyAccess(context.Background(), pair.AccessToken); err != ErrInvalidToken {
			t.Errorf("VerifyAccess() after revoke error = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("revoking a refresh token leaves the access token valid", func(t *testing.T) {
		t.Parallel()

		store := newMemoryRevocationStore()
		svc := NewService(testJWTConfig(), store)
		pair, err := svc.Issue(testIdentity())
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}

		if err := svc.RevokeRefresh(context.Background(), pair.RefreshToken); err != nil {
			t.Fatalf("RevokeRefresh() error = %v", err)
		}

		if _, err := svc.VerifyRefresh(context.Background(), pair.RefreshToken); err != ErrInvalidToken {
			t.Errorf("VerifyRefresh() after revoke error = %v, want ErrInvalidToken", err)
		}
		if _, err := svc.VerifyAccess(context.Background(), pair.AccessToken); err != nil {
			t.Errorf("VerifyAccess() error = %v, want nil", err)
		}
	})

	t.Run("without a store verification stays stateless", func(t *testing.T) {
		t.Parallel()

		svc := NewService(testJWTConfig(), nil)
		pair, err := svc.Issue(testIdentity())
		if err != nil {
			t.Fatalf("Issue() error = %v", err)
		}

		if err := svc.RevokeAccess(context.Background(), pair.AccessToken); err != nil {
			t.Fatalf("RevokeAccess() error = %v", err)
		}
		if _, err := svc.VerifyAccess(context.Background(), pair.AccessToken); err != nil {
			t.Errorf("VerifyAccess() error = %v, want nil", err)
		}
	})
}
