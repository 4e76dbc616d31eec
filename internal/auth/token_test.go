package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestTokenServices(t *testing.T) {
	pasetoSvc, err := NewPasetoService(testKey)
	if err != nil {
		t.Fatalf("NewPasetoService() error = %v", err)
	}
	otherPaseto, err := NewPasetoService([]byte(strings.Repeat("o", 32)))
	if err != nil {
		t.Fatalf("NewPasetoService() error = %v", err)
	}
	jwtSvc, err := NewJWTService(testKey)
	if err != nil {
		t.Fatalf("NewJWTService() error = %v", err)
	}
	otherJWT, err := NewJWTService([]byte(strings.Repeat("o", 32)))
	if err != nil {
		t.Fatalf("NewJWTService() error = %v", err)
	}

	services := []struct {
		name  string
		svc   TokenService
		other TokenService
	}{
		{"paseto", pasetoSvc, otherPaseto},
		{"jwt", jwtSvc, otherJWT},
	}

	for _, tc := range services {
		t.Run(tc.name, func(t *testing.T) {
			userID := uuid.New()

			t.Run("round trip", func(t *testing.T) {
				before := time.Now().Add(-time.Second)
				token, exp, err := tc.svc.CreateToken(userID, "a@x.com", 7*24*time.Hour)
				if err != nil {
					t.Fatalf("CreateToken() error = %v", err)
				}

				claims, err := tc.svc.VerifyToken(token)
				if err != nil {
					t.Fatalf("VerifyToken() error = %v", err)
				}
				if claims.UserID != userID {
					t.Errorf("UserID = %v, want %v", claims.UserID, userID)
				}
				if claims.Email != "a@x.com" {
					t.Errorf("Email = %q", claims.Email)
				}
				if claims.IssuedAt.Before(before) {
					t.Errorf("IssuedAt = %v, before %v", claims.IssuedAt, before)
				}
				if got := claims.ExpiresAt.Sub(claims.IssuedAt); got != 7*24*time.Hour {
					t.Errorf("lifetime = %v, want 7 days", got)
				}
				if !claims.ExpiresAt.Equal(exp) {
					t.Errorf("signed expiry = %v, CreateToken reported %v", claims.ExpiresAt, exp)
				}
			})

			t.Run("expired", func(t *testing.T) {
				token, _, err := tc.svc.CreateToken(userID, "a@x.com", -time.Hour)
				if err != nil {
					t.Fatalf("CreateToken() error = %v", err)
				}
				if _, err := tc.svc.VerifyToken(token); !errors.Is(err, ErrExpiredToken) {
					t.Errorf("VerifyToken() error = %v, want ErrExpiredToken", err)
				}
			})

			t.Run("issued by another key", func(t *testing.T) {
				token, _, err := tc.other.CreateToken(userID, "a@x.com", time.Hour)
				if err != nil {
					t.Fatalf("CreateToken() error = %v", err)
				}
				if _, err := tc.svc.VerifyToken(token); !errors.Is(err, ErrInvalidToken) {
					t.Errorf("VerifyToken() error = %v, want ErrInvalidToken", err)
				}
			})

			t.Run("malformed", func(t *testing.T) {
				if _, err := tc.svc.VerifyToken("not-a-token"); !errors.Is(err, ErrInvalidToken) {
					t.Errorf("VerifyToken() error = %v, want ErrInvalidToken", err)
				}
			})

			t.Run("empty", func(t *testing.T) {
				if _, err := tc.svc.VerifyToken(""); !errors.Is(err, ErrMissingToken) {
					t.Errorf("VerifyToken() error = %v, want ErrMissingToken", err)
				}
			})
		})
	}
}

func TestTokenServiceKeyLength(t *testing.T) {
	if _, err := NewPasetoService([]byte("short")); err == nil {
		t.Error("NewPasetoService accepted a short key")
	}
	if _, err := NewJWTService([]byte("short")); err == nil {
		t.Error("NewJWTService accepted a short key")
	}
}
