package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Makepad-fr/fxlist/internal/ui"
)

// styles derives the list look from the CLI theme.
type styles struct {
	title, muted, accent, success, errs, pending lipgloss.Style
	selected, active                             lipgloss.Style
	frame, inputBox                              lipgloss.Style
	symActive, symIdle, symWarn, cursor          string
}

func newStyles(t ui.Theme) styles {
	return styles{
		title:    t.Title,
		muted:    t.Muted,
		accent:   t.Accent,
		success:  t.Success,
		errs:     t.Error,
		pending:  t.Pending,
		selected: t.Selected,
		active:   t.Active,
		frame: lipgloss.NewStyle().
			Border(t.Border).
			BorderForeground(t.BorderColor).
			Padding(0, 1),
		inputBox: lipgloss.NewStyle().
			Border(t.Border).
			BorderForeground(t.BorderColor).
			Padding(0, 1),
		symActive: t.SymActive,
		symIdle:   t.SymIdle,
		symWarn:   t.SymWarn,
		cursor:    t.Cursor,
	}
}
