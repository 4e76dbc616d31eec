package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type stubLimiter struct {
	allow bool
	err   error
	calls []string
}

func (s *stubLimiter) Allow(ctx context.Context, purpose, subject string) (bool, error) {
	s.calls = append(s.calls, purpose+":"+subject)
	return s.allow, s.err
}

func doJSON(t *testing.T, h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.RemoteAddr = "203.0.113.7:5555"
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestHandlerRegisterAndLogin(t *testing.T) {
	svc, _, _ := newTestService(t)
	h := NewHandler(svc, nil)

	rec := doJSON(t, h.Register, `{"email":"a@x.com","password":"pw123456"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("register status = %d, body = %s", rec.Code, rec.Body)
	}
	var msg map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&msg); err != nil || msg["message"] == "" {
		t.Errorf("register body = %v (%v)", msg, err)
	}

	rec = doJSON(t, h.Register, `{"email":"A@x.com","password":"pw123456"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("duplicate register status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, h.Register, `{"email":"nope","password":"pw123456"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid email status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, h.Register, `{bad json`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad body status = %d, want 400", rec.Code)
	}

	rec = doJSON(t, h.Login, `{"email":"a@x.com","password":"pw123456"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", rec.Code, rec.Body)
	}
	var login struct {
		Token  string `json:"token"`
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&login); err != nil {
		t.Fatalf("decode login: %v", err)
	}
	if login.Token == "" || login.UserID == "" {
		t.Errorf("login body = %+v", login)
	}

	rec = doJSON(t, h.Login, `{"email":"a@x.com","password":"bad"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad login status = %d, want 401", rec.Code)
	}

	rec = doJSON(t, h.Login, `{"email":"","password":""}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty login status = %d, want 400", rec.Code)
	}
}

func TestHandlerRateLimit(t *testing.T) {
	svc, _, _ := newTestService(t)

	t.Run("blocked", func(t *testing.T) {
		limiter := &stubLimiter{allow: false}
		h := NewHandler(svc, limiter)

		rec := doJSON(t, h.Login, `{"email":"a@x.com","password":"pw123456"}`)
		if rec.Code != http.StatusTooManyRequests {
			t.Errorf("status = %d, want 429", rec.Code)
		}
		if len(limiter.calls) != 1 || limiter.calls[0] != "login:203.0.113.7" {
			t.Errorf("limiter calls = %v", limiter.calls)
		}
	})

	t.Run("limiter failure lets request through", func(t *testing.T) {
		h := NewHandler(svc, &stubLimiter{err: errors.New("redis down")})

		rec := doJSON(t, h.Register, `{"email":"z@x.com","password":"pw123456"}`)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})
}
