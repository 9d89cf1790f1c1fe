package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Makepad-fr/fxlist/internal/currencylist"
)

// rowItem adapts a currency row to bubbles/list.Item
type rowItem struct {
	currencylist.Row

	// entry is the raw input text, only set on the active row while typing
	entry   string
	editing bool
}

func (i rowItem) Title() string       { return i.ISOCode }
func (i rowItem) Description() string { return i.FullName() }
func (i rowItem) FilterValue() string { return i.ISOCode + " " + i.FullName() }

// value is what the right-hand column shows.
func (i rowItem) value() string {
	if i.Active() && i.editing {
		return i.entry
	}
	return i.DisplayText()
}

const nameWidth = 26

// Custom delegate to control how rows render (single line)
type rowDelegate struct {
	st *styles
}

func (d rowDelegate) Height() int                         { return 1 }
func (d rowDelegate) Spacing() int                        { return 0 }
func (d rowDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }
func (d rowDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(rowItem)
	if !ok {
		return
	}

	marker := d.st.muted.Render(d.st.symIdle)
	code := it.ISOCode
	val := it.value()
	if it.Active() {
		marker = d.st.active.Render(d.st.symActive)
		code = d.st.active.Render(code)
		if it.editing {
			val += d.st.cursor
		}
		val = d.st.active.Render(val)
	}

	name := it.FullName()
	if r := []rune(name); len(r) > nameWidth {
		name = string(r[:nameWidth-1]) + "…"
	}
	name = d.st.muted.Render(name + strings.Repeat(" ", nameWidth-lipgloss.Width(name)))

	width := m.Width() - 4 - lipgloss.Width(code) - nameWidth - 4
	if width < 12 {
		width = 12
	}
	val = lipgloss.NewStyle().Width(width).Align(lipgloss.Right).Render(val)

	prefix := "  "
	if index == m.Index() {
		prefix = d.st.selected.Render(">") + " "
	}
	fmt.Fprintf(w, "%s%s %s  %s %s", prefix, marker, code, name, val)
}
