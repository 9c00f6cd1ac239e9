package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"modbrowse/internal/catalog"
	"modbrowse/internal/config"
	"modbrowse/internal/format"
	"modbrowse/internal/store"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	st := store.New(format.Humanize{})
	m := New(config.Defaults(), st).(*Model)
	st.SetModels([]catalog.Model{
		{ID: "TheBloke/Llama-2-7B-GGUF", QuantFormat: "Q4_K_M", ModelType: "LLM", FileSize: 4 << 30, Downloads: 50000, Likes: 120},
		{ID: "org/mistral-7b-Q8_0", QuantFormat: "Q8_0", ModelType: "LLM", FileSize: 8 << 30, Downloads: 9000, Likes: 40},
		{ID: "org/embedder-small", QuantFormat: "F16", ModelType: "Embedding", FileSize: 1 << 30, Downloads: 300, Likes: 2},
	}, "")
	return m
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSearchInputNarrowsLive(t *testing.T) {
	m := newTestModel(t)
	m.updateNormal(key("/"))
	if m.inputMode != inputSearch {
		t.Fatalf("search input should open")
	}
	m.updateInput(key("embedder"))
	snap := m.st.Snapshot()
	if snap.SearchQuery != "embedder" {
		t.Fatalf("query: %q", snap.SearchQuery)
	}
	if len(snap.FilteredRecords) != 1 || snap.FilteredRecords[0].ID != "org/embedder-small" {
		t.Fatalf("filtered: %+v", snap.FilteredRecords)
	}
}

func TestSearchEscClearsQuery(t *testing.T) {
	m := newTestModel(t)
	m.updateNormal(key("/"))
	m.updateInput(key("llama"))
	m.updateInput(tea.KeyMsg{Type: tea.KeyEsc})
	if m.inputMode != inputNone {
		t.Fatalf("input should close on esc")
	}
	snap := m.st.Snapshot()
	if snap.SearchQuery != "" || len(snap.FilteredRecords) != 3 {
		t.Fatalf("esc should clear the query: %q (%d records)", snap.SearchQuery, len(snap.FilteredRecords))
	}
}

func TestEngagementRangeTwoStepInput(t *testing.T) {
	m := newTestModel(t)
	m.updateNormal(key("e"))
	m.updateInput(key("10"))
	m.updateInput(tea.KeyMsg{Type: tea.KeyEnter})
	if m.inputMode != inputRangeMax {
		t.Fatalf("should move to max step")
	}
	m.updateInput(tea.KeyMsg{Type: tea.KeyEnter}) // empty max: unbounded
	snap := m.st.Snapshot()
	if snap.Filters.Likes.Min != 10 || !snap.Filters.Likes.Max.IsUnbounded() {
		t.Fatalf("likes range: %+v", snap.Filters.Likes)
	}
	if len(snap.FilteredRecords) != 2 {
		t.Fatalf("expected 2 models with >=10 likes, got %d", len(snap.FilteredRecords))
	}
}

func TestFilterCycling(t *testing.T) {
	m := newTestModel(t)
	// Options are "all" then sorted distinct types: Embedding, LLM.
	m.updateNormal(key("t"))
	if got := m.st.Snapshot().Filters.ModelType; got != "Embedding" {
		t.Fatalf("first cycle: %q", got)
	}
	m.updateNormal(key("t"))
	if got := m.st.Snapshot().Filters.ModelType; got != "LLM" {
		t.Fatalf("second cycle: %q", got)
	}
	m.updateNormal(key("t"))
	if got := m.st.Snapshot().Filters.ModelType; got != store.FilterAll {
		t.Fatalf("cycle should wrap to all: %q", got)
	}
}

func TestSelectionAndViewToggle(t *testing.T) {
	m := newTestModel(t)
	m.updateNormal(key(" "))
	snap := m.st.Snapshot()
	if len(snap.SelectedRecords) != 1 {
		t.Fatalf("selection: %+v", snap.SelectedRecords)
	}
	m.updateNormal(key("v"))
	if m.st.Snapshot().ViewMode != store.ViewList {
		t.Fatalf("view mode should toggle to list")
	}
	out := m.View()
	if !strings.Contains(out, "DOWNLOADS") {
		t.Fatalf("list view header missing:\n%s", out)
	}
}

func TestDetailPaneShowsHardware(t *testing.T) {
	m := newTestModel(t)
	m.updateNormal(key("v")) // deterministic list ordering for the cursor
	m.showDetail = true
	out := m.renderDetail()
	if !strings.Contains(out, "Min RAM") || !strings.Contains(out, "GB") {
		t.Fatalf("detail should include hardware estimates:\n%s", out)
	}
}
