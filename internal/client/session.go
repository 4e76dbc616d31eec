package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const credFileName = "credentials.json"

// Session is what a successful login leaves on disk.
type Session struct {
	Token     string    `json:"token"`
	UserID    uuid.UUID `json:"user_id"`
	Email     string    `json:"email"`
	Source    string    `json:"source"`     // "env" | "file"
	CreatedAt time.Time `json:"created_at"` // when it was saved
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionStore keeps the session token in <dir>/credentials.json. A
// non-empty envToken takes precedence over the file.
type SessionStore struct {
	dir      string
	envToken string
}

func NewSessionStore(dir, envToken string) *SessionStore {
	return &SessionStore{dir: dir, envToken: stripBearer(strings.TrimSpace(envToken))}
}

func (s *SessionStore) path() string {
	return filepath.Join(s.dir, credFileName)
}

// Load returns the current session, or nil when not logged in.
func (s *SessionStore) Load() (*Session, error) {
	if s.envToken != "" {
		return &Session{Token: s.envToken, Source: "env"}, nil
	}

	b, err := os.ReadFile(s.path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(b, &sess); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	sess.Token = stripBearer(sess.Token)
	if sess.Token == "" {
		return nil, nil
	}
	return &sess, nil
}

// Save writes sess with owner-only permissions.
func (s *SessionStore) Save(sess *Session) error {
	if strings.TrimSpace(sess.Token) == "" {
		return fmt.Errorf("empty token")
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	saved := *sess
	saved.Source = "file"
	if saved.CreatedAt.IsZero() {
		saved.CreatedAt = time.Now()
	}

	b, err := json.MarshalIndent(saved, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	if err := os.WriteFile(s.path(), b, 0o600); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// Clear removes the saved session. The env override, if any, is dropped
// for the rest of the process.
func (s *SessionStore) Clear() error {
	s.envToken = ""
	if err := os.Remove(s.path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

func stripBearer(s string) string {
	if strings.HasPrefix(strings.ToLower(s), "bearer ") {
		return strings.TrimSpace(s[7:])
	}
	return s
}
