package todo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/go-todo-api/internal/apperr"
)

var (
	ErrNotFound        = apperr.NotFound("todo not found")
	ErrTitleRequired   = apperr.Validation("title is required")
	ErrUnauthenticated = apperr.Auth("authentication required")
)

// Service implements todo operations on top of a Store.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// For binds every operation to owner. It is the single place where the
// caller's identity enters the todo domain.
func (s *Service) For(owner uuid.UUID) *OwnerScope {
	return &OwnerScope{svc: s, owner: owner}
}

// OwnerScope exposes the todo operations of one user.
type OwnerScope struct {
	svc   *Service
	owner uuid.UUID
}

func (o *OwnerScope) check() error {
	if o.owner == uuid.Nil {
		return ErrUnauthenticated
	}
	return nil
}

// List returns the owner's todos ordered by creation time, newest first.
func (o *OwnerScope) List(ctx context.Context) ([]Todo, error) {
	if err := o.check(); err != nil {
		return nil, err
	}
	return o.svc.store.List(ctx, o.owner)
}

// Create adds an incomplete todo with a trimmed, non-empty title.
func (o *OwnerScope) Create(ctx context.Context, title, description string) (*Todo, error) {
	if err := o.check(); err != nil {
		return nil, err
	}

	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	t := &Todo{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Completed:   false,
		OwnerID:     o.owner,
		CreatedAt:   o.svc.now().UTC().Truncate(time.Microsecond),
	}

	if err := o.svc.store.Create(ctx, t); err != nil {
		return nil, err
	}

	return t, nil
}

// Get returns one of the owner's todos. Malformed ids are not found.
func (o *OwnerScope) Get(ctx context.Context, id string) (*Todo, error) {
	if err := o.check(); err != nil {
		return nil, err
	}

	todoID, err := parseID(id)
	if err != nil {
		return nil, err
	}

	return o.svc.store.Get(ctx, o.owner, todoID)
}

// Update applies the present fields of patch and returns the stored result.
func (o *OwnerScope) Update(ctx context.Context, id string, patch Patch) (*Todo, error) {
	if patch.Title != nil {
		trimmed := strings.TrimSpace(*patch.Title)
		if trimmed == "" {
			return nil, ErrTitleRequired
		}
		patch.Title = &trimmed
	}

	t, err := o.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	patch.apply(t)

	if err := o.svc.store.Update(ctx, o.owner, t); err != nil {
		return nil, err
	}

	return t, nil
}

// Delete removes one of the owner's todos.
func (o *OwnerScope) Delete(ctx context.Context, id string) error {
	if err := o.check(); err != nil {
		return err
	}

	todoID, err := parseID(id)
	if err != nil {
		return err
	}

	return o.svc.store.Delete(ctx, o.owner, todoID)
}

func parseID(id string) (uuid.UUID, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return uuid.Nil, ErrNotFound
	}
	return parsed, nil
}
