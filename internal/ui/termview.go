package ui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"console-sync/internal/notify"
)

var (
	badgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("1")).
			Padding(0, 1).
			Bold(true)

	titleStyle       = lipgloss.NewStyle().Bold(true)
	messageStyle     = lipgloss.NewStyle().Faint(true)
	timeStyle        = lipgloss.NewStyle().Faint(true)
	placeholderStyle = lipgloss.NewStyle().Faint(true).Italic(true)

	severityStyles = map[notify.Severity]lipgloss.Style{
		notify.SeverityError:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		notify.SeveritySuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		notify.SeverityWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		notify.SeverityInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
	}
)

func severityIcon(sev notify.Severity) string {
	switch sev {
	case notify.SeverityError:
		return "✖"
	case notify.SeveritySuccess:
		return "✔"
	case notify.SeverityWarning:
		return "▲"
	default:
		return "ℹ"
	}
}

// TermView renders the notification dropdown as styled terminal output.
// It is the console binary's stand-in for the navigation-bar dropdown.
type TermView struct {
	mu  sync.Mutex
	out io.Writer
}

// NewTermView creates a TermView writing to out.
func NewTermView(out io.Writer) *TermView {
	return &TermView{out: out}
}

// RenderDropdown writes the badge and the notification list, newest first.
// An empty list renders the placeholder with no badge.
func (v *TermView) RenderDropdown(records []notify.Record) {
	v.mu.Lock()
	defer v.mu.Unlock()

	var b strings.Builder
	if len(records) == 0 {
		b.WriteString(placeholderStyle.Render("No notifications"))
		b.WriteString("\n")
		fmt.Fprint(v.out, b.String())
		return
	}

	b.WriteString(badgeStyle.Render(fmt.Sprintf("%d", len(records))))
	b.WriteString(" notifications\n")
	for _, rec := range records {
		style, ok := severityStyles[rec.Severity]
		if !ok {
			style = severityStyles[notify.SeverityInfo]
		}
		b.WriteString(fmt.Sprintf("  %s %s  %s  %s\n",
			style.Render(severityIcon(rec.Severity)),
			titleStyle.Render(rec.Title),
			messageStyle.Render(rec.Message),
			timeStyle.Render(rec.DisplayTime()),
		))
	}
	fmt.Fprint(v.out, b.String())
}
