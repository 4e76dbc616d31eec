package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/redmonkez12/go-todo-api/internal/client"
	"github.com/redmonkez12/go-todo-api/internal/todo"
)

// fakeAPI answers like the server would and records calls.
type fakeAPI struct {
	todos   []todo.Todo
	err     error
	updates []todo.Patch
	deleted []string
}

func (f *fakeAPI) ListTodos(ctx context.Context) ([]todo.Todo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]todo.Todo(nil), f.todos...), nil
}

func (f *fakeAPI) CreateTodo(ctx context.Context, title, description string) (*todo.Todo, error) {
	if f.err != nil {
		return nil, f.err
	}
	t := todo.Todo{ID: uuid.New(), Title: title, Description: description, CreatedAt: time.Now()}
	f.todos = append([]todo.Todo{t}, f.todos...)
	return &t, nil
}

func (f *fakeAPI) UpdateTodo(ctx context.Context, id string, patch todo.Patch) (*todo.Todo, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.updates = append(f.updates, patch)
	for i := range f.todos {
		if f.todos[i].ID.String() == id {
			if patch.Title != nil {
				f.todos[i].Title = *patch.Title
			}
			if patch.Completed != nil {
				f.todos[i].Completed = *patch.Completed
			}
			t := f.todos[i]
			return &t, nil
		}
	}
	return nil, &client.APIError{Status: 404, Message: "todo not found"}
}

func (f *fakeAPI) DeleteTodo(ctx context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

// collect runs cmd and flattens batches into their messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// send delivers msg and then every API result it triggered.
func send(t *testing.T, m Model, msg tea.Msg) (Model, []tea.Msg) {
	t.Helper()

	next, cmd := m.Update(msg)
	m = next.(Model)

	var rest []tea.Msg
	for _, out := range collect(cmd) {
		switch out.(type) {
		case loadedMsg, createdMsg, updatedMsg, deletedMsg, errMsg:
			next, _ = m.Update(out)
			m = next.(Model)
		default:
			rest = append(rest, out)
		}
	}
	return m, rest
}

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loaded(t *testing.T, api *fakeAPI) Model {
	t.Helper()
	m := New(api)
	m, _ = send(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	m, _ = send(t, m, m.load()())
	return m
}

func TestInitialLoad(t *testing.T) {
	api := &fakeAPI{todos: []todo.Todo{{ID: uuid.New(), Title: "first"}, {ID: uuid.New(), Title: "second"}}}

	m := New(api)
	if !m.state.Loading {
		t.Error("model should start loading")
	}

	m = loaded(t, api)
	if m.state.Loading {
		t.Error("still loading after list arrived")
	}
	if len(m.list.Items()) != 2 {
		t.Fatalf("list has %d items, want 2", len(m.list.Items()))
	}
	if !strings.Contains(m.View(), "first") {
		t.Error("view does not show todos")
	}
}

func TestAddPrependsServerItem(t *testing.T) {
	api := &fakeAPI{todos: []todo.Todo{{ID: uuid.New(), Title: "existing"}}}
	m := loaded(t, api)

	m, _ = send(t, m, keys("a"))
	if m.mode != modeAdd {
		t.Fatal("a did not open the add input")
	}
	m, _ = send(t, m, keys("Buy milk"))
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.mode != modeBrowse {
		t.Error("input still open after enter")
	}
	if len(m.state.Todos) != 2 || m.state.Todos[0].Title != "Buy milk" {
		t.Fatalf("state = %+v", m.state.Todos)
	}
}

func TestAddRejectsBlankTitle(t *testing.T) {
	api := &fakeAPI{}
	m := loaded(t, api)

	m, _ = send(t, m, keys("a"))
	m, _ = send(t, m, keys("   "))
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if m.state.Err == "" || len(api.todos) != 0 {
		t.Errorf("blank title accepted: err=%q todos=%d", m.state.Err, len(api.todos))
	}

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.mode != modeBrowse {
		t.Error("esc did not close the input")
	}
}

func TestToggleAndDelete(t *testing.T) {
	id := uuid.New()
	api := &fakeAPI{todos: []todo.Todo{{ID: id, Title: "only"}}}
	m := loaded(t, api)

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeySpace})
	if len(api.updates) != 1 || api.updates[0].Completed == nil || !*api.updates[0].Completed || api.updates[0].Title != nil {
		t.Fatalf("toggle sent %+v", api.updates)
	}
	if !m.state.Todos[0].Completed {
		t.Error("state not updated from server response")
	}

	m, _ = send(t, m, keys("d"))
	m, _ = send(t, m, keys("y"))
	if len(api.deleted) != 1 || api.deleted[0] != id.String() {
		t.Fatalf("deleted = %v", api.deleted)
	}
	if len(m.state.Todos) != 0 || len(m.list.Items()) != 0 {
		t.Errorf("todo still listed after delete")
	}
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	api := &fakeAPI{todos: []todo.Todo{{ID: uuid.New(), Title: "keep me"}}}
	m := loaded(t, api)

	m, _ = send(t, m, keys("d"))
	if m.mode != modeConfirmDelete {
		t.Fatal("d did not ask for confirmation")
	}
	if !strings.Contains(m.View(), `Delete "keep me"? (y/n)`) {
		t.Error("view does not show the confirmation prompt")
	}

	for _, answer := range []tea.KeyMsg{keys("n"), {Type: tea.KeyEsc}} {
		m, _ = send(t, m, keys("d"))
		m, _ = send(t, m, answer)
		if m.mode != modeBrowse {
			t.Errorf("%q did not close the prompt", answer.String())
		}
	}

	m, _ = send(t, m, keys("d"))
	m, _ = send(t, m, keys("x"))
	if m.mode != modeConfirmDelete {
		t.Error("unrelated key dismissed the prompt")
	}

	if len(api.deleted) != 0 || len(m.state.Todos) != 1 {
		t.Errorf("deleted without confirmation: %v", api.deleted)
	}
}

func TestServerErrorKeepsState(t *testing.T) {
	api := &fakeAPI{todos: []todo.Todo{{ID: uuid.New(), Title: "only"}}}
	m := loaded(t, api)

	api.err = errors.New("connection refused")
	m, _ = send(t, m, keys("d"))
	m, _ = send(t, m, keys("y"))

	if len(m.state.Todos) != 1 {
		t.Error("todo removed although the server call failed")
	}
	if !strings.Contains(m.state.Err, "connection refused") {
		t.Errorf("Err = %q", m.state.Err)
	}
	if m.LoggedOut {
		t.Error("generic error logged the user out")
	}
}

func TestExpiredSessionQuits(t *testing.T) {
	api := &fakeAPI{}
	m := loaded(t, api)

	api.err = client.ErrSessionExpired
	m, rest := send(t, m, keys("r"))

	if !m.LoggedOut {
		t.Fatal("LoggedOut not set")
	}

	next, cmd := m.Update(errMsg{client.ErrSessionExpired})
	_ = next
	quit := false
	for _, msg := range append(rest, collect(cmd)...) {
		if _, ok := msg.(tea.QuitMsg); ok {
			quit = true
		}
	}
	if !quit {
		t.Error("program did not quit on expired session")
	}
}
