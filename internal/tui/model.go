// Package tui is the interactive catalog browser: a paged grid or list of
// models with incremental search, filter cycling, and a detail inspector.
package tui

import (
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"modbrowse/internal/catalog"
	"modbrowse/internal/config"
	"modbrowse/internal/filter"
	"modbrowse/internal/hardware"
	"modbrowse/internal/store"
)

type Theme struct {
	border      lipgloss.Style
	title       lipgloss.Style
	label       lipgloss.Style
	head        lipgloss.Style
	row         lipgloss.Style
	rowCursor   lipgloss.Style
	rowSelected lipgloss.Style
	cell        lipgloss.Style
	cellCursor  lipgloss.Style
	footer      lipgloss.Style
}

func defaultTheme() Theme {
	b := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	return Theme{
		border:      b.BorderForeground(lipgloss.Color("63")),
		title:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81")),
		label:       lipgloss.NewStyle().Faint(true),
		head:        lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Bold(true),
		row:         lipgloss.NewStyle(),
		rowCursor:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("219")),
		rowSelected: lipgloss.NewStyle().Foreground(lipgloss.Color("120")),
		cell:        lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1),
		cellCursor:  lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1).BorderForeground(lipgloss.Color("219")),
		footer:      lipgloss.NewStyle().Faint(true),
	}
}

type tickMsg time.Time

const (
	inputNone = iota
	inputSearch
	inputRangeMin
	inputRangeMax
)

type Model struct {
	cfg  *config.Config
	st   *store.Store
	ctrl *filter.Controller
	hw   *hardware.Calculator
	th   Theme
	w, h int

	inputMode int
	input     textinput.Model
	rangeMin  string

	cursor     int // index within the current page
	showDetail bool
	showHelp   bool
}

func New(cfg *config.Config, st *store.Store) tea.Model {
	in := textinput.New()
	in.CharLimit = 128
	m := &Model{
		cfg:   cfg,
		st:    st,
		ctrl:  filter.Attach(st),
		hw:    hardware.New(cfg.Hardware),
		th:    defaultTheme(),
		input: in,
	}
	return m
}

func (m *Model) Init() tea.Cmd {
	return tea.Tick(m.tickInterval(), func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) tickInterval() time.Duration {
	hz := m.cfg.UI.RefreshHz
	if hz <= 0 {
		hz = 2
	}
	if hz > 10 {
		hz = 10
	}
	return time.Second / time.Duration(hz)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.w, m.h = msg.Width, msg.Height
		return m, nil
	case tea.KeyMsg:
		if m.inputMode != inputNone {
			return m, m.updateInput(msg)
		}
		return m.updateNormal(msg)
	case tickMsg:
		m.clampCursor()
		return m, tea.Tick(m.tickInterval(), func(t time.Time) tea.Msg { return tickMsg(t) })
	}
	return m, nil
}

func (m *Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.ctrl.Detach()
		return m, tea.Quit
	case "?":
		m.showHelp = !m.showHelp
	case "/":
		m.inputMode = inputSearch
		m.input.Placeholder = "search models"
		m.input.SetValue(m.st.Snapshot().SearchQuery)
		m.input.Focus()
	case "e":
		m.inputMode = inputRangeMin
		m.input.Placeholder = "min likes (empty = 0)"
		m.input.SetValue("")
		m.input.Focus()
	case "E":
		m.st.ClearEngagementFilter()
	case "f":
		m.cycleFilter(func(rec catalog.Model) string { return rec.QuantFormat },
			func(snap store.State) string { return snap.Filters.QuantFormat },
			func(v string) store.FilterPatch { return store.FilterPatch{QuantFormat: &v} })
	case "t":
		m.cycleFilter(func(rec catalog.Model) string { return rec.ModelType },
			func(snap store.State) string { return snap.Filters.ModelType },
			func(v string) store.FilterPatch { return store.FilterPatch{ModelType: &v} })
	case "l":
		m.cycleFilter(func(rec catalog.Model) string { return rec.License },
			func(snap store.State) string { return snap.Filters.License },
			func(v string) store.FilterPatch { return store.FilterPatch{License: &v} })
	case "s":
		m.cycleSortField()
	case "r":
		snap := m.st.Snapshot()
		dir := store.Ascending
		if snap.Sorting.Direction == store.Ascending {
			dir = store.Descending
		}
		m.st.SetSorting(snap.Sorting.Field, dir)
	case "n", "right":
		snap := m.st.Snapshot()
		m.st.SetCurrentPage(snap.Pagination.CurrentPage + 1)
		m.cursor = 0
	case "p", "left":
		snap := m.st.Snapshot()
		m.st.SetCurrentPage(snap.Pagination.CurrentPage - 1)
		m.cursor = 0
	case "j", "down":
		m.cursor++
		m.clampCursor()
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "v":
		if m.st.Snapshot().ViewMode == store.ViewGrid {
			m.st.SetViewMode(store.ViewList)
		} else {
			m.st.SetViewMode(store.ViewGrid)
		}
	case " ":
		if rec, ok := m.cursorModel(); ok {
			m.st.ToggleSelected(rec.ID)
		}
	case "x":
		m.st.ClearSelection()
	case "c":
		m.st.ClearFilters()
		m.cursor = 0
	case "enter":
		m.showDetail = !m.showDetail
	case "esc":
		m.showDetail = false
		m.showHelp = false
	}
	return m, nil
}

func (m *Model) updateInput(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEsc:
		if m.inputMode == inputSearch {
			m.st.SetSearchQuery("")
		}
		m.closeInput()
		return nil
	case tea.KeyEnter:
		switch m.inputMode {
		case inputSearch:
			m.st.SetSearchQuery(m.input.Value())
			m.closeInput()
		case inputRangeMin:
			m.rangeMin = m.input.Value()
			m.inputMode = inputRangeMax
			m.input.Placeholder = "max likes (empty = no limit)"
			m.input.SetValue("")
		case inputRangeMax:
			m.st.SetEngagementFilter(m.rangeMin, m.input.Value())
			m.closeInput()
		}
		return nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	// Search narrows as the user types.
	if m.inputMode == inputSearch {
		m.st.SetSearchQuery(m.input.Value())
	}
	return cmd
}

func (m *Model) closeInput() {
	m.inputMode = inputNone
	m.rangeMin = ""
	m.input.Blur()
	m.input.SetValue("")
	m.cursor = 0
}

// cycleFilter advances one categorical filter dimension through "all" plus
// the distinct values present in the catalog.
func (m *Model) cycleFilter(value func(catalog.Model) string, current func(store.State) string, patch func(string) store.FilterPatch) {
	snap := m.st.Snapshot()
	options := distinctValues(snap.Records, value)
	if len(options) == 0 {
		return
	}
	cur := current(snap)
	next := options[0]
	for i, opt := range options {
		if strings.EqualFold(opt, cur) {
			next = options[(i+1)%len(options)]
			break
		}
	}
	m.st.UpdateFilters(patch(next))
	m.cursor = 0
}

func distinctValues(records []catalog.Model, value func(catalog.Model) string) []string {
	seen := map[string]string{}
	for _, r := range records {
		v := value(r)
		if v == "" {
			continue
		}
		seen[strings.ToLower(v)] = v
	}
	out := make([]string, 0, len(seen)+1)
	for _, v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return append([]string{store.FilterAll}, out...)
}

var sortCycle = []string{
	store.SortByDownloads,
	store.SortByLikes,
	store.SortByName,
	store.SortByFileSize,
	store.SortByLastModified,
}

func (m *Model) cycleSortField() {
	snap := m.st.Snapshot()
	next := sortCycle[0]
	for i, f := range sortCycle {
		if f == snap.Sorting.Field {
			next = sortCycle[(i+1)%len(sortCycle)]
			break
		}
	}
	m.st.SetSorting(next, snap.Sorting.Direction)
}

func (m *Model) cursorModel() (catalog.Model, bool) {
	page := m.st.CurrentPageModels()
	if m.cursor < 0 || m.cursor >= len(page) {
		return catalog.Model{}, false
	}
	return page[m.cursor], true
}

func (m *Model) clampCursor() {
	n := len(m.st.CurrentPageModels())
	if n == 0 {
		m.cursor = 0
		return
	}
	if m.cursor >= n {
		m.cursor = n - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}
