package service

import (
	"testing"
	"time"

	"visadesk_backend/platform/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type testAuthConfig struct {
	secret string
	ttl    time.Duration
}

func (c testAuthConfig) GetJWTSecret() string             { return c.secret }
func (c testAuthConfig) GetAccessTokenTTL() time.Duration { return c.ttl }

func TestSignJWTClaims(t *testing.T) {
	cfg := testAuthConfig{secret: "test-secret", ttl: 15 * time.Minute}
	svc := New(nil, cfg, logger.New("test"))

	userID := uuid.New()
	signed, err := svc.signJWT(userID, []string{"admin", "caseworker"}, cfg.ttl)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	parsed, err := jwt.Parse(signed, func(token *jwt.Token) (any, error) {
		return []byte(cfg.secret), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("expected valid token, got %v", err)
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		t.Fatal("expected map claims")
	}
	if sub, _ := claims["sub"].(string); sub != userID.String() {
		t.Fatalf("expected sub %s, got %s", userID, sub)
	}
	if tokenType, _ := claims["type"].(string); tokenType != "access" {
		t.Fatalf("expected access token type, got %q", tokenType)
	}

	roles, ok := claims["roles"].([]any)
	if !ok || len(roles) != 2 {
		t.Fatalf("expected 2 roles, got %v", claims["roles"])
	}

	exp, _ := claims["exp"].(float64)
	remaining := time.Until(time.Unix(int64(exp), 0))
	if remaining <= 0 || remaining > cfg.ttl {
		t.Fatalf("expected expiry within %v, got %v", cfg.ttl, remaining)
	}
}
