package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/go-todo-api/internal/user"
)

// TokenService defines the interface for token creation and validation.
// Implementations include PasetoService (PASETO v4.local) and JWTService (HS256).
// CreateToken returns the expiry exactly as encoded in the token.
type TokenService interface {
	CreateToken(userID uuid.UUID, email string, duration time.Duration) (string, time.Time, error)
	VerifyToken(tokenStr string) (*TokenClaims, error)
}

// UserRepository is the credential store used by the service.
type UserRepository interface {
	Create(ctx context.Context, email, passwordHash string) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
}

// RateLimiter throttles anonymous auth endpoints per client.
type RateLimiter interface {
	Allow(ctx context.Context, purpose, subject string) (bool, error)
}

// TokenClaims represents the claims carried by a session token
type TokenClaims struct {
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}
