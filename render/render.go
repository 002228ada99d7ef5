// Package render draws the task list and comment threads for the terminal.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Rajangupta9/tasktracker/client"
)

const shortIDLen = 8

var (
	accent  = lipgloss.Color("#2a9d7a")
	danger  = lipgloss.Color("#FF5252")
	subText = lipgloss.AdaptiveColor{Light: "#64748B", Dark: "#777777"}

	titleStyle  = lipgloss.NewStyle().Bold(true)
	statsStyle  = lipgloss.NewStyle().Foreground(accent)
	doneStyle   = lipgloss.NewStyle().Strikethrough(true).Foreground(subText)
	mutedStyle  = lipgloss.NewStyle().Foreground(subText)
	emptyStyle  = lipgloss.NewStyle().Foreground(subText).Italic(true)
	errorStyle  = lipgloss.NewStyle().Foreground(danger).Bold(true)
	commentPill = lipgloss.NewStyle().Foreground(accent)

	priorityStyles = map[string]lipgloss.Style{
		"High":   lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5252")),
		"Medium": lipgloss.NewStyle().Foreground(lipgloss.Color("#FFC107")),
		"Low":    lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50")),
	}
)

func priorityTag(p string) string {
	style, ok := priorityStyles[p]
	if !ok {
		style = mutedStyle
	}
	return style.Render(fmt.Sprintf("%-6s", p))
}

// ShortID keeps the tail of an id for display; session.Resolve accepts it back.
func ShortID(id client.ID) string {
	s := string(id)
	if len(s) > shortIDLen {
		return s[len(s)-shortIDLen:]
	}
	return s
}

// TaskList renders the header with completion stats and one line per task.
func TaskList(user string, tasks []client.Task) string {
	var b strings.Builder

	done := 0
	for _, t := range tasks {
		if t.Completed {
			done++
		}
	}
	b.WriteString(titleStyle.Render(fmt.Sprintf("Todo List · %s", user)))
	b.WriteString("\n")
	b.WriteString(statsStyle.Render(fmt.Sprintf("Completed: %d / %d", done, len(tasks))))
	b.WriteString("\n\n")

	if len(tasks) == 0 {
		b.WriteString(emptyStyle.Render("No tasks yet"))
		b.WriteString("\n")
		return b.String()
	}

	width := len(fmt.Sprint(len(tasks)))
	for i, t := range tasks {
		check := "[ ]"
		title := t.Title
		if t.Completed {
			check = statsStyle.Render("[x]")
			title = doneStyle.Render(title)
		}
		fmt.Fprintf(&b, "%*d. %s %s %s", width, i+1, check, priorityTag(t.Priority), title)
		if n := len(t.Comments); n > 0 {
			b.WriteString(" ")
			b.WriteString(commentPill.Render(fmt.Sprintf("(%d comments)", n)))
		}
		b.WriteString(" ")
		b.WriteString(mutedStyle.Render(ShortID(t.ID)))
		b.WriteString("\n")
	}
	return b.String()
}

// Comments renders the discussion under a task.
func Comments(task client.Task) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Comments"))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(task.Title))
	b.WriteString("\n\n")

	if len(task.Comments) == 0 {
		b.WriteString(emptyStyle.Render("No comments yet"))
		b.WriteString("\n")
		return b.String()
	}
	for i, c := range task.Comments {
		when := ""
		if !c.CreatedAt.IsZero() {
			when = c.CreatedAt.Local().Format("Jan 2 15:04")
		}
		fmt.Fprintf(&b, "%d. %s %s %s\n", i+1, c.Text, mutedStyle.Render(when), mutedStyle.Render(ShortID(c.ID)))
	}
	return b.String()
}

func Error(err error) string {
	return errorStyle.Render("Error: ") + err.Error()
}
