package auth

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/go-todo-api/internal/logging"
	"github.com/redmonkez12/go-todo-api/internal/user"
)

// testArgon2Params keeps hashing fast in tests.
var testArgon2Params = Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

var testKey = []byte(strings.Repeat("k", 32))

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	mu      sync.Mutex
	byEmail map[string]*user.User
	err     error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: make(map[string]*user.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, email, passwordHash string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	if _, ok := f.byEmail[email]; ok {
		return nil, user.ErrDuplicateEmail
	}

	u := &user.User{ID: uuid.New(), Email: email, PasswordHash: passwordHash, CreatedAt: time.Now().UTC()}
	f.byEmail[email] = u
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, user.ErrNotFound
	}
	return u, nil
}

func newTestService(t *testing.T) (*Service, *fakeUserRepo, *PasetoService) {
	t.Helper()

	tokens, err := NewPasetoService(testKey)
	if err != nil {
		t.Fatalf("NewPasetoService() error = %v", err)
	}

	repo := newFakeUserRepo()
	svc := NewService(repo, tokens, NewPasswordHasher(testArgon2Params), logging.NewDiscard(), 7*24*time.Hour)
	return svc, repo, tokens
}
