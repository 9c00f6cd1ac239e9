package quality

import (
	"testing"

	"modbrowse/internal/catalog"
	"modbrowse/internal/config"
)

func testConfig() config.QualityConfig {
	return config.QualityConfig{
		Enabled:           true,
		MinSizeBytes:      1 << 20,
		MinDownloads:      100,
		SizeDropThreshold: 0.05,
		TrustedUploaders:  []string{"TheBloke"},
	}
}

func TestRemovesUndersizedModels(t *testing.T) {
	f := New(testConfig())
	models := []catalog.Model{
		{ID: "a/big-Q8_0", FileSize: 4 << 30, Downloads: 500},
		{ID: "a/tiny-Q8_0", FileSize: 100},
	}
	kept, report := f.FilterModels(models)
	if len(kept) != 1 || kept[0].ID != "a/big-Q8_0" {
		t.Fatalf("kept: %v", kept)
	}
	if report.RemovedSmall != 1 {
		t.Fatalf("report: %+v", report)
	}
}

func TestVariantSelectionKeepsLargestAlways(t *testing.T) {
	f := New(testConfig())
	models := []catalog.Model{
		{ID: "org/llama-7b-Q8_0", QuantFormat: "Q8_0", FileSize: 8 << 30, Downloads: 10},
		{ID: "org/llama-7b-Q4_K_M", QuantFormat: "Q4_K_M", FileSize: 4 << 30, Downloads: 5},
	}
	kept, _ := f.FilterModels(models)
	if len(kept) != 1 || kept[0].QuantFormat != "Q8_0" {
		t.Fatalf("expected only the largest variant, got %v", kept)
	}
}

func TestVariantKeptOnSizeDropWithDownloads(t *testing.T) {
	f := New(testConfig())
	models := []catalog.Model{
		{ID: "org/llama-7b-Q8_0", QuantFormat: "Q8_0", FileSize: 8 << 30, Downloads: 10},
		{ID: "org/llama-7b-Q4_K_M", QuantFormat: "Q4_K_M", FileSize: 4 << 30, Downloads: 5000},
	}
	kept, _ := f.FilterModels(models)
	if len(kept) != 2 {
		t.Fatalf("expected both variants, got %v", kept)
	}
}

func TestTrustedUploaderRelaxedThreshold(t *testing.T) {
	f := New(testConfig())
	models := []catalog.Model{
		{ID: "TheBloke/llama-7b-Q8_0", QuantFormat: "Q8_0", FileSize: 8 << 30, Downloads: 60},
		{ID: "TheBloke/llama-7b-Q4_K_M", QuantFormat: "Q4_K_M", FileSize: 7900 << 20, Downloads: 60},
	}
	// The Q4 variant's size drop is under threshold and its downloads are
	// under the general floor, but the uploader is trusted.
	kept, _ := f.FilterModels(models)
	if len(kept) != 2 {
		t.Fatalf("trusted variant dropped: %v", kept)
	}
}

func TestUploaderCap(t *testing.T) {
	cfg := testConfig()
	cfg.MaxModelsPerUploader = 2
	f := New(cfg)
	models := []catalog.Model{
		{ID: "spam/a", FileSize: 2 << 30, Likes: 1, Downloads: 500},
		{ID: "spam/b", FileSize: 2 << 30, Likes: 9, Downloads: 500},
		{ID: "spam/c", FileSize: 2 << 30, Likes: 5, Downloads: 500},
	}
	kept, report := f.FilterModels(models)
	if len(kept) != 2 || report.RemovedCapped != 1 {
		t.Fatalf("cap failed: kept=%v report=%+v", kept, report)
	}
	for _, m := range kept {
		if m.Likes == 1 {
			t.Fatalf("cap should drop the least-liked entry")
		}
	}
}

func TestDisabledPassesThrough(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	f := New(cfg)
	models := []catalog.Model{{ID: "a/tiny", FileSize: 1}}
	kept, report := f.FilterModels(models)
	if len(kept) != 1 || report.Kept != 1 {
		t.Fatalf("disabled filter should pass through: %v %+v", kept, report)
	}
}
