package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// PanelString frames lines with the current theme's border.
func PanelString(lines []string) string {
	return lipgloss.NewStyle().
		Border(current.Border).
		BorderForeground(current.BorderColor).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

// Panel draws a framed box using the current theme.
func Panel(lines []string) { fmt.Fprintln(stdout, PanelString(lines)) }

// Table renders rows under headers. Columns listed in right are right-aligned.
func Table(headers []string, rows [][]string, right ...int) string {
	align := make(map[int]bool, len(right))
	for _, c := range right {
		align[c] = true
	}
	return table.New().
		Border(current.Border).
		BorderStyle(lipgloss.NewStyle().Foreground(current.BorderColor)).
		BorderRow(false).
		BorderColumn(false).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			s := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				s = s.Inherit(current.Title)
			}
			if align[col] {
				s = s.Align(lipgloss.Right)
			}
			return s
		}).
		String()
}
