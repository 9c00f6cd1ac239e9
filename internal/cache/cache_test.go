package cache

import (
	"reflect"
	"testing"

	"modbrowse/internal/catalog"
	"modbrowse/internal/config"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	cfg := config.Defaults()
	cfg.General.DataRoot = t.TempDir()
	db, err := Open(cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = db.SQL.Close() })
	return db
}

func TestUpsertAndList(t *testing.T) {
	db := openTestDB(t)
	m := catalog.Model{
		ID:          "TheBloke/Llama-2-7B-GGUF",
		QuantFormat: "Q4_K_M",
		ModelType:   "LLM",
		License:     "llama2",
		FileSize:    4 << 30,
		Downloads:   50000,
		Likes:       120,
		Tags:        []string{"llama", "gguf"},
	}
	if err := db.UpsertModel(m); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	// Second upsert updates in place.
	m.Likes = 150
	if err := db.UpsertModel(m); err != nil {
		t.Fatalf("upsert again: %v", err)
	}

	got, _, err := db.ListModels()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 row, got %d", len(got))
	}
	if got[0].Likes != 150 || !reflect.DeepEqual(got[0].Tags, m.Tags) {
		t.Fatalf("row mismatch: %+v", got[0])
	}
}

func TestReplaceAll(t *testing.T) {
	db := openTestDB(t)
	if err := db.UpsertModel(catalog.Model{ID: "old/model"}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	models := []catalog.Model{
		{ID: "a/one", Likes: 5},
		{ID: "b/two", Likes: 9},
	}
	if err := db.ReplaceAll(models, "2025-06-01T00:00:00Z"); err != nil {
		t.Fatalf("replace: %v", err)
	}

	got, lastUpdated, err := db.ListModels()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != "b/two" {
		t.Fatalf("replace result wrong: %+v", got)
	}
	if lastUpdated != "2025-06-01T00:00:00Z" {
		t.Fatalf("last updated: %q", lastUpdated)
	}

	n, err := db.Count()
	if err != nil || n != 2 {
		t.Fatalf("count = %d, err %v", n, err)
	}
}

func TestUpsertRequiresID(t *testing.T) {
	db := openTestDB(t)
	if err := db.UpsertModel(catalog.Model{}); err == nil {
		t.Fatalf("expected error for empty id")
	}
}
