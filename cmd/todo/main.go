package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/redmonkez12/go-todo-api/internal/client"
	"github.com/redmonkez12/go-todo-api/internal/todo"
	"github.com/redmonkez12/go-todo-api/internal/tui"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		printError(errorMessage(err))
		os.Exit(1)
	}
}

// errorMessage turns a command error into what the user should read.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, client.ErrSessionExpired):
		return "Your session has expired. Run `todo login` to sign in again."
	case errors.Is(err, client.ErrNotLoggedIn):
		return "You are not logged in. Run `todo login` first."
	case client.IsNotFound(err):
		return "No such todo. Run `todo list` to see your todos."
	default:
		return err.Error()
	}
}

type app struct {
	api *client.Client
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "todo",
		Short:         "Manage your todo list from the terminal",
		Long:          "Command line client for the Todo API. Set TODO_API_URL to point it at a server.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := client.LoadConfig()
			if err != nil {
				return err
			}
			a.api = client.New(cfg)
			return nil
		},
	}

	registerCmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE:  a.runRegister,
	}
	loginCmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and save the session token",
		Args:  cobra.NoArgs,
		RunE:  a.runLogin,
	}
	for _, c := range []*cobra.Command{registerCmd, loginCmd} {
		c.Flags().String("email", "", "Account email")
		c.Flags().String("password", "", "Account password (prompted when omitted)")
	}

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE:  a.runLogout,
	}

	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List your todos, newest first",
		Args:    cobra.NoArgs,
		RunE:    a.runList,
	}

	addCmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a todo",
		Args:  cobra.MinimumNArgs(1),
		RunE:  a.runAdd,
	}
	addCmd.Flags().StringP("description", "d", "", "Optional description")

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one todo",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runShow,
	}

	editCmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the title or description of a todo",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runEdit,
	}
	editCmd.Flags().String("title", "", "New title")
	editCmd.Flags().StringP("description", "d", "", "New description")

	doneCmd := &cobra.Command{
		Use:   "done <id>",
		Short: "Mark a todo as completed",
		Args:  cobra.ExactArgs(1),
		RunE:  a.setCompleted(true),
	}
	undoCmd := &cobra.Command{
		Use:   "undo <id>",
		Short: "Mark a todo as not completed",
		Args:  cobra.ExactArgs(1),
		RunE:  a.setCompleted(false),
	}

	rmCmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a todo",
		Args:    cobra.ExactArgs(1),
		RunE:    a.runRemove,
	}
	rmCmd.Flags().BoolP("yes", "y", false, "Skip confirmation prompt")

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive list",
		Args:  cobra.NoArgs,
		RunE:  a.runTUI,
	}

	rootCmd.AddCommand(registerCmd, loginCmd, logoutCmd, listCmd, addCmd, showCmd, editCmd, doneCmd, undoCmd, rmCmd, tuiCmd)

	// Running without a subcommand opens the TUI
	rootCmd.RunE = tuiCmd.RunE

	return rootCmd
}

func (a *app) credentials(cmd *cobra.Command) (string, string, error) {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")

	if err := credentialsForm(&email, &password); err != nil {
		return "", "", fmt.Errorf("form cancelled: %w", err)
	}
	return email, password, nil
}

func (a *app) runRegister(cmd *cobra.Command, args []string) error {
	email, password, err := a.credentials(cmd)
	if err != nil {
		return err
	}

	if err := a.api.Register(cmd.Context(), email, password); err != nil {
		return err
	}

	printSuccess("Account created. Run `todo login` to sign in.")
	return nil
}

func (a *app) runLogin(cmd *cobra.Command, args []string) error {
	email, password, err := a.credentials(cmd)
	if err != nil {
		return err
	}

	sess, err := a.api.Login(cmd.Context(), email, password)
	if err != nil {
		return err
	}

	printSuccess(fmt.Sprintf("Logged in as %s (session valid until %s)",
		sess.Email, sess.ExpiresAt.Local().Format("2006-01-02 15:04")))
	return nil
}

func (a *app) runLogout(cmd *cobra.Command, args []string) error {
	if err := a.api.Logout(); err != nil {
		return err
	}
	printSuccess("Logged out")
	return nil
}

func (a *app) runList(cmd *cobra.Command, args []string) error {
	todos, err := a.api.ListTodos(cmd.Context())
	if err != nil {
		return err
	}
	printList(todos)
	return nil
}

func (a *app) runAdd(cmd *cobra.Command, args []string) error {
	description, _ := cmd.Flags().GetString("description")

	t, err := a.api.CreateTodo(cmd.Context(), strings.Join(args, " "), description)
	if err != nil {
		return err
	}

	printSuccess(fmt.Sprintf("Added %s %s", shortID(*t), t.Title))
	return nil
}

func (a *app) runShow(cmd *cobra.Command, args []string) error {
	t, err := a.resolve(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	printTodo(t)
	return nil
}

func (a *app) runEdit(cmd *cobra.Command, args []string) error {
	t, err := a.resolve(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	var patch todo.Patch
	if cmd.Flags().Changed("title") {
		title, _ := cmd.Flags().GetString("title")
		patch.Title = &title
	}
	if cmd.Flags().Changed("description") {
		description, _ := cmd.Flags().GetString("description")
		patch.Description = &description
	}

	// No flags: edit interactively, starting from the current values
	if patch.Title == nil && patch.Description == nil {
		title, description := t.Title, t.Description
		if err := editForm(&title, &description); err != nil {
			return fmt.Errorf("form cancelled: %w", err)
		}
		patch.Title, patch.Description = &title, &description
	}

	updated, err := a.api.UpdateTodo(cmd.Context(), t.ID.String(), patch)
	if err != nil {
		return err
	}

	printSuccess("Updated " + shortID(*updated))
	return nil
}

func (a *app) setCompleted(completed bool) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		t, err := a.resolve(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		updated, err := a.api.UpdateTodo(cmd.Context(), t.ID.String(), todo.Patch{Completed: &completed})
		if err != nil {
			return err
		}

		if updated.Completed {
			printSuccess("Completed " + updated.Title)
		} else {
			printSuccess("Reopened " + updated.Title)
		}
		return nil
	}
}

func (a *app) runRemove(cmd *cobra.Command, args []string) error {
	yes, _ := cmd.Flags().GetBool("yes")

	t, err := a.resolve(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if !yes {
		ok, err := confirm(fmt.Sprintf("Delete %q?", t.Title))
		if err != nil {
			return fmt.Errorf("form cancelled: %w", err)
		}
		if !ok {
			fmt.Println("Aborted.")
			return nil
		}
	}

	if err := a.api.DeleteTodo(cmd.Context(), t.ID.String()); err != nil {
		return err
	}

	printSuccess("Deleted " + t.Title)
	return nil
}

func (a *app) runTUI(cmd *cobra.Command, args []string) error {
	sess, err := a.api.Session()
	if err != nil {
		return err
	}
	if sess == nil {
		return client.ErrNotLoggedIn
	}

	loggedOut, err := tui.Run(a.api)
	if err != nil {
		return err
	}
	if loggedOut {
		return client.ErrSessionExpired
	}
	return nil
}

// resolve accepts a full id or the short prefix printed by `todo list`.
func (a *app) resolve(ctx context.Context, ref string) (*todo.Todo, error) {
	ref = strings.TrimSpace(ref)
	if len(ref) == 36 {
		return a.api.GetTodo(ctx, ref)
	}

	todos, err := a.api.ListTodos(ctx)
	if err != nil {
		return nil, err
	}

	var state client.State
	state.Replace(todos)
	t, ok := state.Resolve(ref)
	if !ok {
		return nil, fmt.Errorf("no single todo matches %q", ref)
	}
	return t, nil
}
