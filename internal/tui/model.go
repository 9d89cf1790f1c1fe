package tui

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Makepad-fr/fxlist/internal/currencylist"
	"github.com/Makepad-fr/fxlist/internal/model"
	"github.com/Makepad-fr/fxlist/internal/orchestrator"
	"github.com/Makepad-fr/fxlist/internal/rates"
	"github.com/Makepad-fr/fxlist/internal/ui"
)

// settleFrame is how long the list takes to show a promoted row at the top.
const settleFrame = 60 * time.Millisecond

// resultMsg carries one orchestrator emission into the update loop.
type resultMsg struct{ res orchestrator.Result }

// moveSettledMsg tells the store the promoted row is in place.
type moveSettledMsg struct{}

// refreshDoneMsg ends a manual refresh.
type refreshDoneMsg struct{}

type keyMap struct {
	Promote, Refresh, Done, Quit key.Binding
}

var keys = keyMap{
	Promote: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "convert from")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Done:    key.NewBinding(key.WithKeys("esc", "enter"), key.WithHelp("esc", "stop typing")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// status is what the bottom line reports.
type status struct {
	state   orchestrator.State
	err     error
	stale   bool // showing cached rates after a failure
	updated time.Time
	seen    bool // at least one terminal result arrived
}

// Model is the interactive currency list.
// All store mutations happen in Update so they never race the view.
type Model struct {
	store   *currencylist.Store
	refresh func()
	now     func() time.Time

	list  list.Model
	input textinput.Model
	st    *styles

	editing bool
	status  status

	width, height int
}

// New builds the model. refresh, when set, runs one refresh cycle; it is
// called off the update loop.
func New(store *currencylist.Store, refresh func()) Model {
	st := newStyles(ui.Current())

	l := list.New(nil, rowDelegate{st: &st}, 80, 20)
	l.Title = st.title.Render("fxlist") + "  " + st.muted.Render("base "+model.BaseISOCode)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(false)
	// list positions must match the store's
	l.SetFilteringEnabled(false)
	l.Styles.Title = st.title
	l.Styles.HelpStyle = st.muted
	l.Styles.PaginationStyle = st.muted
	l.AdditionalShortHelpKeys = func() []key.Binding { return []key.Binding{keys.Promote, keys.Refresh} }
	l.AdditionalFullHelpKeys = func() []key.Binding { return []key.Binding{keys.Promote, keys.Refresh, keys.Done} }
	l.KeyMap.Quit = keys.Quit

	ti := textinput.New()
	ti.Prompt = "amount > "
	ti.Placeholder = "0"
	ti.CharLimit = 24

	m := Model{
		store:   store,
		refresh: refresh,
		now:     time.Now,
		list:    l,
		input:   ti,
		st:      &st,
		width:   80,
		height:  24,
	}
	m.syncAll()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case resultMsg:
		m.onResult(msg.res)
		return m, nil

	case moveSettledMsg:
		m.store.MoveSettled()
		return m, nil

	case refreshDoneMsg:
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) && (msg.String() == "ctrl+c" || !m.editing) {
			return m, tea.Quit
		}
		if m.editing {
			return m.updateInput(msg)
		}
		switch {
		case key.Matches(msg, keys.Promote):
			return m.promote()
		case key.Matches(msg, keys.Refresh):
			return m, m.refreshCmd()
		}
	}

	if m.editing {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) promote() (tea.Model, tea.Cmd) {
	sel, ok := m.list.SelectedItem().(rowItem)
	if !ok {
		return m, nil
	}
	ch := m.store.SelectAndPromote(sel.ISOCode)
	m.apply(ch)
	m.list.Select(0)

	entered := ""
	if active, ok := m.store.Active(); ok && active.EnteredValue != 0 {
		entered = strconv.FormatFloat(active.EnteredValue, 'f', -1, 64)
	}
	m.editing = true
	m.input.SetValue(entered)
	m.input.CursorEnd()
	focus := m.input.Focus()
	m.syncActive()
	m.resize()

	settle := tea.Tick(settleFrame, func(time.Time) tea.Msg { return moveSettledMsg{} })
	return m, tea.Batch(focus, settle)
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Done) {
		m.editing = false
		m.input.Blur()
		m.syncActive()
		m.resize()
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if after := m.input.Value(); after != before {
		m.apply(m.store.EditActiveValue(after))
		m.syncActive()
	}
	return m, cmd
}

func (m Model) refreshCmd() tea.Cmd {
	if m.refresh == nil {
		return nil
	}
	refresh := m.refresh
	return func() tea.Msg {
		refresh()
		return refreshDoneMsg{}
	}
}

func (m *Model) onResult(res orchestrator.Result) {
	m.status.state = res.State
	if res.State == orchestrator.Loading {
		return
	}
	m.status.seen = true
	m.status.err = res.Err
	m.status.stale = res.State == orchestrator.Failure && res.HasData()
	if res.State == orchestrator.Success {
		m.status.updated = m.now()
	}
	if res.HasData() {
		m.apply(m.store.Apply(res.Data))
	}
}

// apply mirrors a store change into the list: structure first, then values.
func (m *Model) apply(ch currencylist.Change) {
	if ch.Dropped || ch.Empty() {
		return
	}
	if ch.Reset {
		m.syncAll()
		return
	}

	if ch.Moved() && ch.MovedFrom < len(m.list.Items()) {
		it := m.list.Items()[ch.MovedFrom]
		m.list.RemoveItem(ch.MovedFrom)
		m.list.InsertItem(ch.MovedTo, it)
	}

	snap := m.store.Snapshot()
	for _, code := range ch.Appended {
		for _, r := range snap {
			if r.ISOCode == code {
				m.list.InsertItem(len(m.list.Items()), m.item(r))
				break
			}
		}
	}

	// Values: changed codes plus any row whose active flag flipped.
	items := m.list.Items()
	for i, r := range snap {
		if i >= len(items) {
			break
		}
		old, ok := items[i].(rowItem)
		if !ok || old.Row != r {
			m.list.SetItem(i, m.item(r))
		}
	}
}

func (m *Model) syncAll() {
	snap := m.store.Snapshot()
	items := make([]list.Item, 0, len(snap))
	for _, r := range snap {
		items = append(items, m.item(r))
	}
	m.list.SetItems(items)
}

// syncActive refreshes the input echo on the top row.
func (m *Model) syncActive() {
	if active, ok := m.store.Active(); ok && len(m.list.Items()) > 0 {
		m.list.SetItem(0, m.item(active))
	}
}

func (m *Model) item(r currencylist.Row) rowItem {
	it := rowItem{Row: r}
	if r.Active() {
		it.editing = m.editing
		it.entry = m.input.Value()
	}
	return it
}

func (m *Model) resize() {
	h := m.height - 4
	if m.editing {
		h -= 3
	}
	if h < 3 {
		h = 3
	}
	w := m.width - 4
	if w < 20 {
		w = 20
	}
	m.list.SetSize(w, h)
}

func (m Model) View() string {
	content := m.list.View()
	if m.editing {
		title := m.st.accent.Render("Convert from")
		if active, ok := m.store.Active(); ok {
			title += " " + m.st.active.Render(active.ISOCode)
		}
		content += "\n" + m.st.inputBox.Render(title+"\n"+m.input.View())
	}
	content += "\n" + m.statusLine()
	return m.st.frame.Render(content)
}

func (m Model) statusLine() string {
	s := m.status
	switch {
	case s.state == orchestrator.Loading:
		return m.st.pending.Render("refreshing…")
	case s.err != nil && s.stale:
		return m.st.errs.Render(m.st.symWarn+" offline, showing cached rates") + " " + m.st.muted.Render(s.err.Error())
	case s.err != nil && m.store.Len() > 0:
		return m.st.errs.Render(m.st.symWarn+" refresh failed") + " " + m.st.muted.Render(s.err.Error())
	case s.err != nil:
		return m.st.errs.Render(m.st.symWarn+" no rates available") + " " + m.st.muted.Render(s.err.Error())
	case !s.updated.IsZero():
		return m.st.success.Render("updated "+s.updated.Format("15:04:05")) +
			m.st.muted.Render(fmt.Sprintf("  %d currencies", m.store.Len()))
	}
	return m.st.muted.Render("waiting for rates…")
}

// Entered returns the active row's parsed input, mostly for tests.
func (m Model) Entered() float64 { return rates.ParseAmount(m.input.Value()) }
