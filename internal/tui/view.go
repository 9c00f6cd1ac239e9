package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"modbrowse/internal/catalog"
	"modbrowse/internal/format"
	"modbrowse/internal/store"
)

var fmts format.Humanize

func (m *Model) View() string {
	if m.w == 0 {
		m.w = 120
	}
	if m.h == 0 {
		m.h = 30
	}
	snap := m.st.Snapshot()

	header := m.th.border.Width(m.w - 2).Render(m.renderHeader(snap))
	main := m.renderMain(snap)
	if m.showDetail {
		detailW := 44
		mainW := m.w - detailW - 4
		if mainW < 30 {
			mainW = 30
		}
		main = lipgloss.JoinHorizontal(lipgloss.Top,
			m.th.border.Width(mainW).Render(main),
			m.th.border.Width(detailW).Render(m.renderDetail()),
		)
	} else {
		main = m.th.border.Width(m.w - 2).Render(main)
	}
	footer := m.th.border.Width(m.w - 2).Render(m.renderFooter(snap))
	return lipgloss.JoinVertical(lipgloss.Left, header, main, footer)
}

func (m *Model) renderHeader(snap store.State) string {
	title := m.th.title.Render("modbrowse")
	stats := fmt.Sprintf("%d of %d models • page %d/%d • sort %s %s",
		snap.Pagination.TotalItems, len(snap.Records),
		snap.Pagination.CurrentPage, max(snap.Pagination.TotalPages, 1),
		snap.Sorting.Field, snap.Sorting.Direction)
	if len(snap.SelectedRecords) > 0 {
		stats += fmt.Sprintf(" • %d selected", len(snap.SelectedRecords))
	}
	if snap.LastUpdateTime != "" {
		stats += " • updated " + fmts.FormatRelativeTime(snap.LastUpdateTime)
	}
	lines := []string{title + "  " + m.th.label.Render(stats)}
	if snap.Error != "" {
		lines = append(lines, m.th.head.Render("error: ")+snap.Error)
	}
	if snap.IsLoading {
		lines = append(lines, m.th.label.Render("loading catalog..."))
	}
	if len(snap.ActiveFilters) > 0 {
		lines = append(lines, m.th.label.Render(strings.Join(snap.ActiveFilters, " | ")))
	}
	if m.inputMode != inputNone {
		lines = append(lines, m.input.View())
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderMain(snap store.State) string {
	if m.showHelp {
		return m.renderHelp()
	}
	page := m.st.CurrentPageModels()
	if len(page) == 0 {
		if snap.IsLoading {
			return m.th.label.Render("(loading)")
		}
		return m.th.label.Render("(no models match)")
	}
	if snap.ViewMode == store.ViewList {
		return m.renderList(page, snap)
	}
	return m.renderGrid(page, snap)
}

func (m *Model) renderList(page []catalog.Model, snap store.State) string {
	var sb strings.Builder
	sb.WriteString(m.th.head.Render(fmt.Sprintf("  %-42s %-8s %10s %10s %8s  %s",
		"NAME", "QUANT", "SIZE", "DOWNLOADS", "LIKES", "MODIFIED")))
	sb.WriteString("\n")
	maxRows := m.h - 10
	if maxRows < 3 {
		maxRows = len(page)
	}
	for i, rec := range page {
		mark := " "
		if snap.SelectedRecords.Has(rec.ID) {
			mark = "*"
		}
		line := fmt.Sprintf("%s %-42s %-8s %10s %10s %8s  %s",
			mark,
			truncate(rec.Name(), 42),
			rec.QuantFormat,
			fmts.FormatFileSize(rec.FileSize),
			fmts.FormatDownloadCount(rec.Downloads),
			fmts.FormatEngagementNumber(rec.Likes),
			fmts.FormatRelativeTime(rec.LastModified))
		switch {
		case i == m.cursor:
			line = m.th.rowCursor.Render(line)
		case mark == "*":
			line = m.th.rowSelected.Render(line)
		default:
			line = m.th.row.Render(line)
		}
		sb.WriteString(line)
		sb.WriteString("\n")
		if i+1 >= maxRows {
			break
		}
	}
	return sb.String()
}

func (m *Model) renderGrid(page []catalog.Model, snap store.State) string {
	cols := (m.w - 4) / 30
	if cols < 1 {
		cols = 1
	}
	maxRows := (m.h - 10) / 5
	if maxRows < 1 {
		maxRows = 1
	}
	var rows []string
	for start := 0; start < len(page) && len(rows) < maxRows; start += cols {
		end := start + cols
		if end > len(page) {
			end = len(page)
		}
		cells := make([]string, 0, cols)
		for i := start; i < end; i++ {
			cells = append(cells, m.renderCell(page[i], i, snap))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) renderCell(rec catalog.Model, idx int, snap store.State) string {
	name := truncate(rec.Name(), 24)
	if snap.SelectedRecords.Has(rec.ID) {
		name = "* " + truncate(rec.Name(), 22)
	}
	body := fmt.Sprintf("%s\n%s  %s\n%s dl  %s likes",
		name,
		rec.QuantFormat, fmts.FormatFileSize(rec.FileSize),
		fmts.FormatDownloadCount(rec.Downloads), fmts.FormatEngagementNumber(rec.Likes))
	style := m.th.cell
	if idx == m.cursor {
		style = m.th.cellCursor
	}
	return style.Width(26).Render(body)
}

func (m *Model) renderDetail() string {
	rec, ok := m.cursorModel()
	if !ok {
		return m.th.label.Render("No selection")
	}
	req := m.hw.Estimate(rec)
	var sb strings.Builder
	sb.WriteString(m.th.head.Render(rec.Name()))
	sb.WriteString("\n\n")
	field := func(label, value string) {
		sb.WriteString(m.th.label.Render(label + ": "))
		sb.WriteString(value)
		sb.WriteString("\n")
	}
	field("ID", rec.ID)
	field("Uploader", rec.Uploader())
	field("Quant", rec.QuantFormat)
	field("Type", rec.ModelType)
	field("License", rec.License)
	field("Size", fmts.FormatFileSize(rec.FileSize))
	field("Downloads", fmts.FormatEngagementNumber(rec.Downloads))
	field("Likes", fmts.FormatEngagementNumber(rec.Likes))
	field("Modified", fmts.FormatRelativeTime(rec.LastModified))
	if len(rec.Tags) > 0 {
		field("Tags", truncate(strings.Join(rec.Tags, ", "), 38))
	}
	sb.WriteString("\n")
	sb.WriteString(m.th.head.Render("Hardware"))
	sb.WriteString("\n")
	if req.EstimatedParams > 0 {
		field("Params", fmt.Sprintf("~%.1fB", float64(req.EstimatedParams)/1e9))
	}
	field("Min RAM", fmt.Sprintf("%d GB", req.MinRAMGB))
	field("Min CPU", fmt.Sprintf("%d cores", req.MinCPUCores))
	gpu := "optional"
	if req.GPURequired {
		gpu = "required"
	}
	field("GPU", gpu)
	field("Tier", string(req.Tier))
	return sb.String()
}

func (m *Model) renderHelp() string {
	lines := []string{
		m.th.head.Render("Keys"),
		"/        search (live, esc clears)",
		"e / E    likes range filter / clear it",
		"f t l    cycle quant, type, license filters",
		"s / r    cycle sort field / reverse direction",
		"n p      next / previous page",
		"j k      move cursor",
		"v        toggle grid or list",
		"space    select model under cursor",
		"x        clear selection",
		"c        clear all filters",
		"enter    toggle detail pane",
		"q        quit",
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderFooter(snap store.State) string {
	eng := ""
	if !snap.Filters.Likes.IsDefault() {
		stats := m.st.EngagementFilterStats()
		if stats.IsFiltered {
			eng = fmt.Sprintf(" • %d in range", stats.FilteredCount)
		}
	}
	return m.th.footer.Render("/ search • f/t/l filters • e likes • s sort • n/p page • v view • enter detail • ? help • q quit" + eng)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
