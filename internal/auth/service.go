package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/go-todo-api/internal/apperr"
	"github.com/redmonkez12/go-todo-api/internal/logging"
	"github.com/redmonkez12/go-todo-api/internal/user"
)

var (
	ErrCredentialsRequired = apperr.Validation("email and password are required")
	ErrInvalidEmailFormat  = apperr.Validation("invalid email address")
	ErrEmailTaken          = apperr.Conflict("email already registered")
	// Unknown account and wrong password share this error so callers cannot
	// probe which emails are registered.
	ErrInvalidCredentials = apperr.Auth("invalid email or password")
	ErrMissingToken       = apperr.Auth("authentication required")
	ErrInvalidToken       = apperr.Auth("invalid token")
	ErrExpiredToken       = apperr.Auth("token has expired")
)

// LoginResult is returned to the client after a successful login.
type LoginResult struct {
	Token     string    `json:"token"`
	UserID    uuid.UUID `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Service handles authentication business logic
type Service struct {
	users         UserRepository
	tokens        TokenService
	hasher        *PasswordHasher
	logger        *logging.Logger
	tokenDuration time.Duration

	dummyOnce sync.Once
	dummyHash string
}

func NewService(
	users UserRepository,
	tokens TokenService,
	hasher *PasswordHasher,
	logger *logging.Logger,
	tokenDuration time.Duration,
) *Service {
	return &Service{
		users:         users,
		tokens:        tokens,
		hasher:        hasher,
		logger:        logger,
		tokenDuration: tokenDuration,
	}
}

// NormalizeEmail trims and lowercases an email so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new user account. It does not log the user in.
func (s *Service) Register(ctx context.Context, email, password string) (*user.User, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrCredentialsRequired
	}
	if !strings.Contains(email, "@") {
		return nil, ErrInvalidEmailFormat
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	newUser, err := s.users.Create(ctx, email, passwordHash)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return newUser, nil
}

// Login verifies credentials and issues a session token.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrCredentialsRequired
	}

	existingUser, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// Spend the same hashing time as a real check
			s.hasher.Verify(s.unknownUserHash(), password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !s.hasher.Verify(existingUser.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.CreateToken(existingUser.ID, existingUser.Email, s.tokenDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to create token: %w", err)
	}

	return &LoginResult{
		Token:     token,
		UserID:    existingUser.ID,
		ExpiresAt: expiresAt,
	}, nil
}

// VerifyToken validates a session token and returns its claims.
func (s *Service) VerifyToken(token string) (*TokenClaims, error) {
	if token == "" {
		return nil, ErrMissingToken
	}
	return s.tokens.VerifyToken(token)
}

func (s *Service) unknownUserHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(uuid.NewString())
		if err != nil {
			s.logger.Warn("failed to prepare dummy password hash", "error", err)
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}
