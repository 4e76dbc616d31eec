package client

import (
	"strings"

	"github.com/google/uuid"

	"github.com/redmonkez12/go-todo-api/internal/todo"
)

// State is the client's local copy of the list. It only ever changes in
// response to a successful server call.
type State struct {
	Todos   []todo.Todo
	Loading bool
	Err     string
}

// Replace installs a full refresh.
func (s *State) Replace(todos []todo.Todo) {
	s.Todos = append([]todo.Todo(nil), todos...)
	s.Err = ""
}

// Created prepends the item returned by the server.
func (s *State) Created(t todo.Todo) {
	s.Todos = append([]todo.Todo{t}, s.Todos...)
}

// Updated swaps in the server's copy of t.
func (s *State) Updated(t todo.Todo) {
	for i := range s.Todos {
		if s.Todos[i].ID == t.ID {
			s.Todos[i] = t
			return
		}
	}
}

// Removed drops id after the server confirmed the delete.
func (s *State) Removed(id uuid.UUID) {
	out := s.Todos[:0]
	for _, t := range s.Todos {
		if t.ID != id {
			out = append(out, t)
		}
	}
	s.Todos = out
}

// Resolve finds the single todo whose id starts with prefix, so users can
// type the short ids printed by `todo list`.
func (s *State) Resolve(prefix string) (*todo.Todo, bool) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return nil, false
	}

	var found *todo.Todo
	for i := range s.Todos {
		if strings.HasPrefix(s.Todos[i].ID.String(), prefix) {
			if found != nil {
				return nil, false
			}
			found = &s.Todos[i]
		}
	}
	return found, found != nil
}
