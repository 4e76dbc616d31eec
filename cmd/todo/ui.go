package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/redmonkez12/go-todo-api/internal/todo"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")).
			MarginBottom(1)

	successStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196"))

	doneStyle = lipgloss.NewStyle().Faint(true).Strikethrough(true)
)

func printSuccess(msg string) {
	fmt.Println(successStyle.Render("✔ " + msg))
}

func printError(msg string) {
	fmt.Fprintln(os.Stderr, errorStyle.Render("✖ "+msg))
}

func shortID(t todo.Todo) string {
	return t.ID.String()[:8]
}

func printList(todos []todo.Todo) {
	if len(todos) == 0 {
		fmt.Println(subtleStyle.Render("No todos yet. Add one with `todo add <title>`."))
		return
	}

	done := 0
	for _, t := range todos {
		if t.Completed {
			done++
		}
	}
	fmt.Println(titleStyle.Render(fmt.Sprintf("Todos (%d done, %d pending)", done, len(todos)-done)))

	for _, t := range todos {
		box, title := "☐", t.Title
		if t.Completed {
			box, title = successStyle.Render("☑"), doneStyle.Render(title)
		}
		line := fmt.Sprintf("%s %s %s", subtleStyle.Render(shortID(t)), box, title)
		if t.Description != "" {
			line += " " + subtleStyle.Render("- "+t.Description)
		}
		fmt.Println(line)
	}
}

func printTodo(t *todo.Todo) {
	status := "pending"
	if t.Completed {
		status = "done"
	}
	fmt.Println(titleStyle.Render(t.Title))
	fmt.Printf("  ID:          %s\n", t.ID)
	fmt.Printf("  Status:      %s\n", status)
	if t.Description != "" {
		fmt.Printf("  Description: %s\n", t.Description)
	}
	fmt.Printf("  Created:     %s\n", t.CreatedAt.Local().Format("2006-01-02 15:04"))
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}

// credentialsForm asks for whichever of email and password is still empty.
func credentialsForm(email, password *string) error {
	var fields []huh.Field
	if *email == "" {
		fields = append(fields, huh.NewInput().
			Title("Email").
			Placeholder("you@example.com").
			Value(email).
			Validate(required("email")))
	}
	if *password == "" {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(password).
			Validate(required("password")))
	}
	if len(fields) == 0 {
		return nil
	}
	return huh.NewForm(huh.NewGroup(fields...)).WithTheme(huh.ThemeCatppuccin()).Run()
}

func editForm(title, description *string) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Value(title).
				Validate(required("title")),
			huh.NewText().
				Title("Description").
				Value(description),
		),
	).WithTheme(huh.ThemeCatppuccin()).Run()
}

func confirm(question string) (bool, error) {
	var ok bool
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(question).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	).WithTheme(huh.ThemeCatppuccin()).Run()
	return ok, err
}
