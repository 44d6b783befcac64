package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jrsteele09/go-task-client/tasks"
	"github.com/jrsteele09/go-task-client/users"
)

var (
	colorMuted = lipgloss.Color("#6c757d")

	statusStyles = map[tasks.Status]lipgloss.Style{
		tasks.StatusPending:    lipgloss.NewStyle().Foreground(lipgloss.Color("#d16d7a")).Bold(true),
		tasks.StatusInProgress: lipgloss.NewStyle().Foreground(lipgloss.Color("#f39c12")).Bold(true),
		tasks.StatusDone:       lipgloss.NewStyle().Foreground(lipgloss.Color("#5f9fb0")).Bold(true),
	}
	idStyle          = lipgloss.NewStyle().Foreground(colorMuted)
	titleStyle       = lipgloss.NewStyle().Bold(true)
	doneTitleStyle   = lipgloss.NewStyle().Foreground(colorMuted).Strikethrough(true)
	descriptionStyle = lipgloss.NewStyle().Foreground(colorMuted).PaddingLeft(2)
	headingStyle     = lipgloss.NewStyle().Bold(true).Underline(true)
	successStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#2ecc71"))
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#e74c3c")).Bold(true)
)

// statusWidth fits the longest status label.
const statusWidth = len("in-progress")

func renderTask(t tasks.Task) string {
	style, ok := statusStyles[t.Status]
	if !ok {
		style = lipgloss.NewStyle()
	}
	badge := style.Width(statusWidth).Render(string(t.Status))

	title := titleStyle.Render(t.Title)
	if t.Status == tasks.StatusDone {
		title = doneTitleStyle.Render(t.Title)
	}

	line := fmt.Sprintf("%s  %s  %s", badge, title, idStyle.Render(t.ID))
	if strings.TrimSpace(t.Description) != "" {
		line += "\n" + descriptionStyle.Render(t.Description)
	}
	return line
}

func renderTaskList(w io.Writer, list []tasks.Task) {
	if len(list) == 0 {
		fmt.Fprintln(w, idStyle.Render("No tasks yet. Add one with `tasks add <title>`."))
		return
	}
	counts := map[tasks.Status]int{}
	for _, t := range list {
		counts[t.Status]++
	}
	fmt.Fprintln(w, headingStyle.Render(fmt.Sprintf("%d tasks", len(list))))
	for _, t := range list {
		fmt.Fprintln(w, renderTask(t))
	}

	var summary []string
	for _, status := range tasks.Statuses() {
		summary = append(summary, fmt.Sprintf("%s %d", status, counts[status]))
	}
	fmt.Fprintln(w, idStyle.Render(strings.Join(summary, " · ")))
}

func renderUser(u *users.User) string {
	if u == nil {
		return "anonymous"
	}
	if u.Email != "" && u.Name != "" {
		return fmt.Sprintf("%s <%s>", titleStyle.Render(u.Name), u.Email)
	}
	return titleStyle.Render(u.DisplayName())
}

func success(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, successStyle.Render(fmt.Sprintf(format, args...)))
}

// writeJSON writes v wrapped in a {"data": ...} envelope.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{"data": v})
}
