package out_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	sessionadapter "airpulse/internal/modules/session/adapter/out"
)

func TestJWTInspector(t *testing.T) {
	t.Parallel()
	issued := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		IssuedAt:  jwt.NewNumericDate(issued),
		ExpiresAt: jwt.NewNumericDate(issued.Add(24 * time.Hour)),
	}).SignedString([]byte("some-server-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	inspector := sessionadapter.NewJWTInspector()
	claims, ok := inspector.Inspect(token)
	if !ok {
		t.Fatalf("expected jwt to be inspectable")
	}
	if claims.Subject != "user-1" || !claims.IssuedAt.Equal(issued) || !claims.ExpiresAt.Equal(issued.Add(24*time.Hour)) {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if _, ok := inspector.Inspect("opaque-session-token"); ok {
		t.Fatalf("opaque tokens have no claims")
	}
}
