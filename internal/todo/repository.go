package todo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/redmonkez12/go-todo-api/internal/database"
)

// Store persists todos. Every read and write is filtered by owner; a todo
// owned by someone else is reported as ErrNotFound.
type Store interface {
	List(ctx context.Context, owner uuid.UUID) ([]Todo, error)
	Create(ctx context.Context, t *Todo) error
	Get(ctx context.Context, owner, id uuid.UUID) (*Todo, error)
	Update(ctx context.Context, owner uuid.UUID, t *Todo) error
	Delete(ctx context.Context, owner, id uuid.UUID) error
}

const ownerFilter = "owner_id = ?"

// Repository is the bun-backed Store.
type Repository struct {
	db *bun.DB
}

var _ Store = (*Repository)(nil)

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// List returns the owner's todos, newest first.
func (r *Repository) List(ctx context.Context, owner uuid.UUID) ([]Todo, error) {
	var rows []database.Todo
	err := r.db.NewSelect().
		Model(&rows).
		Where(ownerFilter, owner).
		Order("created_at DESC", "id DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}

	todos := make([]Todo, 0, len(rows))
	for i := range rows {
		todos = append(todos, *mapDBTodoToModel(&rows[i]))
	}

	return todos, nil
}

// Create inserts t. ID, OwnerID and CreatedAt must already be set.
func (r *Repository) Create(ctx context.Context, t *Todo) error {
	if _, err := r.db.NewInsert().Model(mapModelToDBTodo(t)).Exec(ctx); err != nil {
		return fmt.Errorf("failed to create todo: %w", err)
	}
	return nil
}

// Get retrieves a todo by ID within the owner's items
func (r *Repository) Get(ctx context.Context, owner, id uuid.UUID) (*Todo, error) {
	row := new(database.Todo)
	err := r.db.NewSelect().
		Model(row).
		Where("id = ?", id).
		Where(ownerFilter, owner).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get todo: %w", err)
	}

	return mapDBTodoToModel(row), nil
}

// Update writes the mutable fields of t.
func (r *Repository) Update(ctx context.Context, owner uuid.UUID, t *Todo) error {
	result, err := r.db.NewUpdate().
		Model(mapModelToDBTodo(t)).
		Column("title", "description", "completed").
		Where("id = ?", t.ID).
		Where(ownerFilter, owner).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update todo: %w", err)
	}

	return expectOneRow(result)
}

// Delete removes a todo owned by owner
func (r *Repository) Delete(ctx context.Context, owner, id uuid.UUID) error {
	result, err := r.db.NewDelete().
		Model((*database.Todo)(nil)).
		Where("id = ?", id).
		Where(ownerFilter, owner).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}

	return expectOneRow(result)
}

func expectOneRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func mapDBTodoToModel(row *database.Todo) *Todo {
	return &Todo{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		Completed:   row.Completed,
		OwnerID:     row.OwnerID,
		CreatedAt:   row.CreatedAt,
	}
}

func mapModelToDBTodo(t *Todo) *database.Todo {
	return &database.Todo{
		ID:          t.ID,
		OwnerID:     t.OwnerID,
		Title:       t.Title,
		Description: t.Description,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
	}
}
