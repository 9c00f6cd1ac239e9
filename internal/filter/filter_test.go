package filter

import (
	"testing"

	"modbrowse/internal/catalog"
	"modbrowse/internal/store"
)

func sampleModels() []catalog.Model {
	return []catalog.Model{
		{ID: "TheBloke/Llama-2-7B-GGUF", QuantFormat: "Q4_K_M", ModelType: "LLM", License: "llama2", FileSize: 4 << 30, Downloads: 50000, Likes: 120},
		{ID: "TheBloke/Mistral-7B-GGUF", QuantFormat: "Q5_K_S", ModelType: "LLM", License: "apache-2.0", FileSize: 5 << 30, Downloads: 80000, Likes: 300},
		{ID: "org/tiny-embedder", QuantFormat: "F16", ModelType: "Embedding", License: "mit", FileSize: 100 << 20, Downloads: 900, Likes: 0, Tags: []string{"sentence-similarity"}},
	}
}

func TestApplyCategoricalFilters(t *testing.T) {
	f := store.DefaultFilters()
	f.QuantFormat = "Q4_K_M"
	got := Apply(sampleModels(), "", f, store.Sorting{})
	if len(got) != 1 || got[0].ID != "TheBloke/Llama-2-7B-GGUF" {
		t.Fatalf("quant filter: %v", got)
	}

	f = store.DefaultFilters()
	f.License = "MIT" // case-insensitive
	got = Apply(sampleModels(), "", f, store.Sorting{})
	if len(got) != 1 || got[0].ModelType != "Embedding" {
		t.Fatalf("license filter: %v", got)
	}
}

func TestApplyNumericRanges(t *testing.T) {
	f := store.DefaultFilters()
	f.Likes = store.Range{Min: 100, Max: store.Bounded(200)}
	got := Apply(sampleModels(), "", f, store.Sorting{})
	if len(got) != 1 || got[0].Likes != 120 {
		t.Fatalf("like range: %v", got)
	}

	f = store.DefaultFilters()
	f.FileSize = store.Range{Min: 1 << 30, Max: store.Unbounded()}
	got = Apply(sampleModels(), "", f, store.Sorting{})
	if len(got) != 2 {
		t.Fatalf("size range matched %d", len(got))
	}
}

func TestApplySearch(t *testing.T) {
	got := Apply(sampleModels(), "mistral", store.DefaultFilters(), store.Sorting{})
	if len(got) != 1 || got[0].ID != "TheBloke/Mistral-7B-GGUF" {
		t.Fatalf("substring search: %v", got)
	}

	// Tag substring.
	got = Apply(sampleModels(), "sentence", store.DefaultFilters(), store.Sorting{})
	if len(got) != 1 || got[0].ID != "org/tiny-embedder" {
		t.Fatalf("tag search: %v", got)
	}

	// Fuzzy: characters in order across the ID.
	got = Apply(sampleModels(), "lama7b", store.DefaultFilters(), store.Sorting{})
	if len(got) == 0 {
		t.Fatalf("fuzzy search found nothing")
	}
}

func TestApplySorting(t *testing.T) {
	s := store.Sorting{Field: store.SortByDownloads, Direction: store.Descending}
	got := Apply(sampleModels(), "", store.DefaultFilters(), s)
	if got[0].Downloads != 80000 || got[2].Downloads != 900 {
		t.Fatalf("downloads desc: %v", got)
	}

	s = store.Sorting{Field: store.SortByName, Direction: store.Ascending}
	got = Apply(sampleModels(), "", store.DefaultFilters(), s)
	if got[0].Name() != "Llama-2-7B-GGUF" {
		t.Fatalf("name asc: %v", got[0].ID)
	}
}

func TestControllerKeepsFilteredInSync(t *testing.T) {
	st := store.New(nil)
	c := Attach(st)
	defer c.Detach()

	st.SetModels(sampleModels(), "")
	snap := st.Snapshot()
	if len(snap.FilteredRecords) != 3 {
		t.Fatalf("initial filtered count = %d", len(snap.FilteredRecords))
	}
	if snap.Pagination.TotalItems != 3 {
		t.Fatalf("pagination not derived from filtered set: %+v", snap.Pagination)
	}

	q := "Q5_K_S"
	st.UpdateFilters(store.FilterPatch{QuantFormat: &q})
	snap = st.Snapshot()
	if len(snap.FilteredRecords) != 1 || snap.FilteredRecords[0].QuantFormat != "Q5_K_S" {
		t.Fatalf("filtered not refreshed: %v", snap.FilteredRecords)
	}

	// A pure page turn must not re-filter (watch keys exclude pagination);
	// the filtered set is simply preserved.
	st.SetCurrentPage(1)
	if got := len(st.Snapshot().FilteredRecords); got != 1 {
		t.Fatalf("page turn disturbed filtered set: %d", got)
	}

	st.ClearFilters()
	if got := len(st.Snapshot().FilteredRecords); got != 3 {
		t.Fatalf("clear did not restore: %d", got)
	}
}
