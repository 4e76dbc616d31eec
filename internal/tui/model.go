// Package tui is the interactive todo list. Every change goes to the server
// first and the list only reflects what the server answered.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/redmonkez12/go-todo-api/internal/client"
	"github.com/redmonkez12/go-todo-api/internal/todo"
)

const requestTimeout = 15 * time.Second

// API is the subset of client.Client the TUI needs.
type API interface {
	ListTodos(ctx context.Context) ([]todo.Todo, error)
	CreateTodo(ctx context.Context, title, description string) (*todo.Todo, error)
	UpdateTodo(ctx context.Context, id string, patch todo.Patch) (*todo.Todo, error)
	DeleteTodo(ctx context.Context, id string) error
}

type (
	loadedMsg  []todo.Todo
	createdMsg todo.Todo
	updatedMsg todo.Todo
	deletedMsg uuid.UUID
	errMsg     struct{ err error }
)

// listItem adapts a todo to bubbles/list.
type listItem struct{ todo todo.Todo }

func (i listItem) Title() string       { return i.todo.Title }
func (i listItem) Description() string { return i.todo.Description }
func (i listItem) FilterValue() string { return i.todo.Title }

type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(listItem)
	if !ok {
		return
	}

	box, text := mutedStyle.Render(boxUnchecked), it.todo.Title
	if it.todo.Completed {
		box, text = successStyle.Render(boxChecked), doneStyle.Render(text)
	}
	if it.todo.Description != "" {
		text += " " + mutedStyle.Render(it.todo.Description)
	}

	prefix := "  "
	if index == m.Index() {
		prefix = selectedStyle.Render("> ")
	}
	fmt.Fprintf(w, "%s%s %s", prefix, box, text)
}

type mode int

const (
	modeBrowse mode = iota
	modeAdd
	modeEdit
	modeConfirmDelete
)

// Model is the bubbletea model of the todo screen.
type Model struct {
	api     API
	state   client.State
	list    list.Model
	input   textinput.Model
	spinner spinner.Model
	mode    mode
	editID  string
	pending todo.Todo

	// LoggedOut is set when the server rejected the session.
	LoggedOut bool
}

var (
	addKey     = key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	editKey    = key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit"))
	toggleKey  = key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle"))
	deleteKey  = key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete"))
	refreshKey = key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh"))
)

func New(api API) Model {
	l := list.New(nil, itemDelegate{}, 0, 0)
	l.Title = "Todos"
	l.Styles.Title = titleStyle
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetStatusBarItemName("todo", "todos")
	extra := func() []key.Binding { return []key.Binding{addKey, editKey, toggleKey, deleteKey, refreshKey} }
	l.AdditionalShortHelpKeys = extra
	l.AdditionalFullHelpKeys = extra

	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 200

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = pendingStyle

	m := Model{api: api, list: l, input: ti, spinner: sp}
	m.state.Loading = true
	return m
}

// Run starts the program and reports whether the session was revoked.
func Run(api API) (loggedOut bool, err error) {
	final, err := tea.NewProgram(New(api), tea.WithAltScreen()).Run()
	if err != nil {
		return false, err
	}
	if m, ok := final.(Model); ok {
		return m.LoggedOut, nil
	}
	return false, nil
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.load())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width-4, msg.Height-6)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loadedMsg:
		m.state.Loading = false
		m.state.Replace(msg)
		return m, m.sync()

	case createdMsg:
		m.state.Loading = false
		m.state.Created(todo.Todo(msg))
		return m, m.sync()

	case updatedMsg:
		m.state.Loading = false
		m.state.Updated(todo.Todo(msg))
		return m, m.sync()

	case deletedMsg:
		m.state.Loading = false
		m.state.Removed(uuid.UUID(msg))
		return m, m.sync()

	case errMsg:
		m.state.Loading = false
		if errors.Is(msg.err, client.ErrSessionExpired) || errors.Is(msg.err, client.ErrNotLoggedIn) {
			m.LoggedOut = true
			return m, tea.Quit
		}
		m.state.Err = msg.err.Error()
		return m, nil

	case tea.KeyMsg:
		if m.mode == modeConfirmDelete {
			return m.updateConfirm(msg)
		}
		if m.mode != modeBrowse {
			return m.updateInput(msg)
		}
		if m.list.FilterState() == list.Filtering {
			break
		}
		return m.updateBrowse(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		return m.busy(m.load())
	case "a":
		m.mode = modeAdd
		m.input.SetValue("")
		m.input.Placeholder = "New todo title..."
		m.input.Focus()
		return m, textinput.Blink
	case "e":
		if t, ok := m.selected(); ok {
			m.mode = modeEdit
			m.editID = t.ID.String()
			m.input.SetValue(t.Title)
			m.input.CursorEnd()
			m.input.Placeholder = "Edit title..."
			m.input.Focus()
			return m, textinput.Blink
		}
		return m, nil
	case " ":
		if t, ok := m.selected(); ok {
			completed := !t.Completed
			return m.busy(m.update(t.ID.String(), todo.Patch{Completed: &completed}))
		}
		return m, nil
	case "d":
		if t, ok := m.selected(); ok {
			m.mode = modeConfirmDelete
			m.pending = t
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// updateConfirm waits for y or n before deleting the pending todo.
func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "y", "Y":
		id := m.pending.ID
		m.mode, m.pending = modeBrowse, todo.Todo{}
		return m.busy(m.remove(id))
	case "n", "N", "esc":
		m.mode, m.pending = modeBrowse, todo.Todo{}
	}
	return m, nil
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil
	case "enter":
		title := strings.TrimSpace(m.input.Value())
		if title == "" {
			m.state.Err = "title cannot be empty"
			return m, nil
		}
		m.state.Err = ""
		var cmd tea.Cmd
		if m.mode == modeAdd {
			cmd = m.create(title)
		} else {
			cmd = m.update(m.editID, todo.Patch{Title: &title})
		}
		m.mode = modeBrowse
		m.input.Blur()
		return m.busy(cmd)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) busy(cmd tea.Cmd) (tea.Model, tea.Cmd) {
	m.state.Loading = true
	return m, tea.Batch(cmd, m.spinner.Tick)
}

func (m Model) selected() (todo.Todo, bool) {
	it, ok := m.list.SelectedItem().(listItem)
	return it.todo, ok
}

// sync pushes state into the list widget.
func (m *Model) sync() tea.Cmd {
	items := make([]list.Item, len(m.state.Todos))
	for i, t := range m.state.Todos {
		items[i] = listItem{todo: t}
	}
	return m.list.SetItems(items)
}

func (m Model) load() tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		todos, err := api.ListTodos(ctx)
		if err != nil {
			return errMsg{err}
		}
		return loadedMsg(todos)
	}
}

func (m Model) create(title string) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		t, err := api.CreateTodo(ctx, title, "")
		if err != nil {
			return errMsg{err}
		}
		return createdMsg(*t)
	}
}

func (m Model) update(id string, patch todo.Patch) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		t, err := api.UpdateTodo(ctx, id, patch)
		if err != nil {
			return errMsg{err}
		}
		return updatedMsg(*t)
	}
}

func (m Model) remove(id uuid.UUID) tea.Cmd {
	api := m.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if err := api.DeleteTodo(ctx, id.String()); err != nil {
			return errMsg{err}
		}
		return deletedMsg(id)
	}
}

func (m Model) View() string {
	var b strings.Builder

	done := 0
	for _, t := range m.state.Todos {
		if t.Completed {
			done++
		}
	}
	fmt.Fprintf(&b, "%s %d  %s %d\n",
		successStyle.Render("✔"), done,
		pendingStyle.Render("•"), len(m.state.Todos)-done)

	if m.state.Loading {
		b.WriteString(m.spinner.View() + " loading...\n")
	}

	b.WriteString(m.list.View())

	switch m.mode {
	case modeConfirmDelete:
		b.WriteString("\n" + panelStyle.Render(fmt.Sprintf("Delete %q? (y/n)", m.pending.Title)))
	case modeAdd, modeEdit:
		title := "Add todo"
		if m.mode == modeEdit {
			title = "Edit todo"
		}
		b.WriteString("\n" + panelStyle.Render(title+"\n"+m.input.View()))
	}

	if m.state.Err != "" {
		b.WriteString("\n" + errorStyle.Render("✖ "+m.state.Err))
	}

	return panelStyle.Render(b.String())
}
