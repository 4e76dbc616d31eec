package todo

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/redmonkez12/go-todo-api/internal/database"
)

func setupRepository(t *testing.T) (*Repository, uuid.UUID, uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	db, err := database.OpenSQLite(ctx, filepath.Join(t.TempDir(), "todos.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(ctx, db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	owners := make([]uuid.UUID, 2)
	for i, email := range []string{"a@x.com", "b@x.com"} {
		u := &database.User{ID: uuid.New(), Email: email, PasswordHash: "h", CreatedAt: time.Now().UTC()}
		if _, err := db.NewInsert().Model(u).Exec(ctx); err != nil {
			t.Fatalf("failed to insert user: %v", err)
		}
		owners[i] = u.ID
	}

	return NewRepository(db), owners[0], owners[1]
}

func TestRepository(t *testing.T) {
	repo, alice, bob := setupRepository(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	var aliceIDs []uuid.UUID
	for i, title := range []string{"oldest", "middle", "newest"} {
		td := &Todo{
			ID:        uuid.New(),
			Title:     title,
			OwnerID:   alice,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		if err := repo.Create(ctx, td); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		aliceIDs = append(aliceIDs, td.ID)
	}

	bobTodo := &Todo{ID: uuid.New(), Title: "bob", Description: "private", OwnerID: bob, CreatedAt: base}
	if err := repo.Create(ctx, bobTodo); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	t.Run("List is owner scoped and newest first", func(t *testing.T) {
		todos, err := repo.List(ctx, alice)
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		want := []string{"newest", "middle", "oldest"}
		if len(todos) != len(want) {
			t.Fatalf("got %d todos, want %d", len(todos), len(want))
		}
		for i := range want {
			if todos[i].Title != want[i] {
				t.Errorf("todos[%d].Title = %q, want %q", i, todos[i].Title, want[i])
			}
			if todos[i].OwnerID != alice {
				t.Errorf("todos[%d] belongs to %v", i, todos[i].OwnerID)
			}
		}
	})

	t.Run("Get respects ownership", func(t *testing.T) {
		got, err := repo.Get(ctx, bob, bobTodo.ID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if got.Description != "private" || !got.CreatedAt.Equal(base) {
			t.Errorf("got %+v", got)
		}

		if _, err := repo.Get(ctx, alice, bobTodo.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get by other owner error = %v, want ErrNotFound", err)
		}
	})

	t.Run("Update changes mutable fields only for owner", func(t *testing.T) {
		changed := *bobTodo
		changed.Completed = true
		changed.Title = "bob done"

		if err := repo.Update(ctx, alice, &changed); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Update by other owner error = %v, want ErrNotFound", err)
		}
		if err := repo.Update(ctx, bob, &changed); err != nil {
			t.Fatalf("Update failed: %v", err)
		}

		got, err := repo.Get(ctx, bob, bobTodo.ID)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !got.Completed || got.Title != "bob done" || got.Description != "private" {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("Delete respects ownership", func(t *testing.T) {
		if err := repo.Delete(ctx, bob, aliceIDs[0]); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Delete by other owner error = %v, want ErrNotFound", err)
		}
		if err := repo.Delete(ctx, alice, aliceIDs[0]); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, err := repo.Get(ctx, alice, aliceIDs[0]); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get after delete error = %v, want ErrNotFound", err)
		}
		if err := repo.Delete(ctx, alice, aliceIDs[0]); !errors.Is(err, ErrNotFound) {
			t.Errorf("second Delete error = %v, want ErrNotFound", err)
		}
	})

	t.Run("Service over repository", func(t *testing.T) {
		svc := NewService(repo)
		created, err := svc.For(bob).Create(ctx, " Buy milk ", "")
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		updated, err := svc.For(bob).Update(ctx, created.ID.String(), Patch{Completed: boolPtr(true)})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		if updated.Title != "Buy milk" || !updated.Completed {
			t.Errorf("updated = %+v", updated)
		}
	})

	t.Run("createdAt from Create matches stored value", func(t *testing.T) {
		svc := NewService(repo)
		svc.now = func() time.Time { return time.Date(2024, 3, 2, 9, 0, 0, 123456789, time.UTC) }

		created, err := svc.For(bob).Create(ctx, "Call mom", "")
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		updated, err := svc.For(bob).Update(ctx, created.ID.String(), Patch{Completed: boolPtr(true)})
		if err != nil {
			t.Fatalf("Update failed: %v", err)
		}
		got, err := svc.For(bob).Get(ctx, created.ID.String())
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}

		if !updated.CreatedAt.Equal(created.CreatedAt) {
			t.Errorf("updated createdAt = %v, created %v", updated.CreatedAt, created.CreatedAt)
		}
		if !got.CreatedAt.Equal(created.CreatedAt) {
			t.Errorf("stored createdAt = %v, created %v", got.CreatedAt, created.CreatedAt)
		}
	})
}
