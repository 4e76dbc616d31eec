// Package client talks to the todo API on behalf of the CLI and TUI and
// keeps the session token on disk.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/redmonkez12/go-todo-api/internal/auth"
	"github.com/redmonkez12/go-todo-api/internal/httputil"
	"github.com/redmonkez12/go-todo-api/internal/todo"
)

var (
	ErrNotLoggedIn    = errors.New("not logged in, run `todo login` first")
	ErrSessionExpired = errors.New("session expired, please log in again")
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%d)", e.Message, e.Status)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// Client is a todo API client bound to one session store.
type Client struct {
	baseURL  string
	http     *http.Client
	sessions *SessionStore
}

func New(cfg *Config) *Client {
	return &Client{
		baseURL:  cfg.APIURL,
		http:     &http.Client{Timeout: cfg.Timeout},
		sessions: NewSessionStore(cfg.ConfigDir, cfg.Token),
	}
}

// Session returns the current session, or nil when logged out.
func (c *Client) Session() (*Session, error) {
	return c.sessions.Load()
}

// Register creates an account. It does not log in.
func (c *Client) Register(ctx context.Context, email, password string) error {
	body := auth.CredentialsRequest{Email: email, Password: password}
	return c.do(ctx, http.MethodPost, "/api/auth/register", "", body, nil)
}

// Login exchanges credentials for a token and saves it.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var res auth.LoginResult
	body := auth.CredentialsRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", body, &res); err != nil {
		return nil, err
	}

	sess := &Session{
		Token:     res.Token,
		UserID:    res.UserID,
		Email:     auth.NormalizeEmail(email),
		ExpiresAt: res.ExpiresAt,
	}
	if err := c.sessions.Save(sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return sess, nil
}

// Logout forgets the local session. Tokens are stateless, so the server is
// not contacted.
func (c *Client) Logout() error {
	return c.sessions.Clear()
}

func (c *Client) ListTodos(ctx context.Context) ([]todo.Todo, error) {
	var todos []todo.Todo
	if err := c.authed(ctx, http.MethodGet, "/api/todos", nil, &todos); err != nil {
		return nil, err
	}
	return todos, nil
}

func (c *Client) GetTodo(ctx context.Context, id string) (*todo.Todo, error) {
	var t todo.Todo
	if err := c.authed(ctx, http.MethodGet, todoPath(id), nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) CreateTodo(ctx context.Context, title, description string) (*todo.Todo, error) {
	var t todo.Todo
	body := todo.CreateRequest{Title: title, Description: description}
	if err := c.authed(ctx, http.MethodPost, "/api/todos", body, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) UpdateTodo(ctx context.Context, id string, patch todo.Patch) (*todo.Todo, error) {
	var t todo.Todo
	if err := c.authed(ctx, http.MethodPut, todoPath(id), patch, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *Client) DeleteTodo(ctx context.Context, id string) error {
	return c.authed(ctx, http.MethodDelete, todoPath(id), nil, nil)
}

func todoPath(id string) string {
	return "/api/todos/" + url.PathEscape(id)
}

// authed performs a request that needs the session token. A 401 or 403
// clears the session and yields ErrSessionExpired.
func (c *Client) authed(ctx context.Context, method, path string, body, out any) error {
	sess, err := c.sessions.Load()
	if err != nil {
		return err
	}
	if sess == nil {
		return ErrNotLoggedIn
	}

	err = c.do(ctx, method, path, sess.Token, body, out)

	var apiErr *APIError
	if errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden) {
		if clearErr := c.sessions.Clear(); clearErr != nil {
			return errors.Join(ErrSessionExpired, clearErr)
		}
		return ErrSessionExpired
	}
	return err
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var body httputil.ErrorResponse
	msg := ""
	if json.Unmarshal(data, &body) == nil {
		msg = body.Error
	}
	if msg == "" {
		msg = strings.TrimSpace(string(data))
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	return &APIError{Status: resp.StatusCode, Message: msg}
}
