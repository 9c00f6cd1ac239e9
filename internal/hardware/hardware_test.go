package hardware

import (
	"testing"

	"modbrowse/internal/catalog"
	"modbrowse/internal/config"
)

func TestEstimateParamsFromName(t *testing.T) {
	cases := []struct {
		name string
		want int64
	}{
		{"Llama-2-7B-GGUF", 7e9},
		{"Mistral-7B-Instruct-v0.2", 7e9},
		{"tinyllama-1.1b-chat", 1100000000},
		{"falcon_40B_instruct", 40e9},
		{"no-size-here", 0},
	}
	for _, tc := range cases {
		got := EstimateParams(catalog.Model{ModelName: tc.name})
		if got != tc.want {
			t.Errorf("EstimateParams(%q) = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestEstimateParamsFallsBackToFileSize(t *testing.T) {
	m := catalog.Model{ModelName: "mystery-model", FileSize: 3 << 30}
	if got := EstimateParams(m); got != 2e9 {
		t.Fatalf("size fallback: got %d, want %d", got, int64(2e9))
	}
	tiny := catalog.Model{ModelName: "mystery-model", FileSize: 100 << 20}
	if got := EstimateParams(tiny); got != 0 {
		t.Fatalf("tiny file should give no estimate, got %d", got)
	}
}

func TestEstimateSmallQuantizedModel(t *testing.T) {
	c := New(config.Defaults().Hardware)
	m := catalog.Model{
		ModelName:   "Llama-2-7B-GGUF",
		QuantFormat: "Q4_K_M",
		FileSize:    4 << 30,
	}
	req := c.Estimate(m)
	if req.MinRAMGB != 8 {
		t.Errorf("ram = %d, want 8", req.MinRAMGB)
	}
	if req.MinCPUCores != 6 {
		t.Errorf("cores = %d, want 6", req.MinCPUCores)
	}
	if req.GPURequired {
		t.Errorf("small 4-bit model should not require a GPU")
	}
	if req.Tier != TierEntry {
		t.Errorf("tier = %q, want %q", req.Tier, TierEntry)
	}
}

func TestEstimateLargeModel(t *testing.T) {
	c := New(config.Defaults().Hardware)
	m := catalog.Model{
		ModelName:   "Llama-2-70B-GGUF",
		QuantFormat: "Q5_K_M",
		FileSize:    45 << 30,
	}
	req := c.Estimate(m)
	if req.MinRAMGB != 64 {
		t.Errorf("ram = %d, want 64", req.MinRAMGB)
	}
	if req.MinCPUCores != 12 {
		t.Errorf("cores = %d, want 12", req.MinCPUCores)
	}
	if !req.GPURequired {
		t.Errorf("70B model should require a GPU")
	}
	if req.Tier != TierWorkstation {
		t.Errorf("tier = %q, want %q", req.Tier, TierWorkstation)
	}
}

func TestRecommendQuant(t *testing.T) {
	c := New(config.Defaults().Hardware)

	quant, ok := c.RecommendQuant(7e9, 8)
	if !ok || quant != "Q6_K" {
		t.Fatalf("7B in 8GB: got %q %v, want Q6_K", quant, ok)
	}

	quant, ok = c.RecommendQuant(7e9, 32)
	if !ok || quant != "F16" {
		t.Fatalf("7B in 32GB: got %q %v, want F16", quant, ok)
	}

	if _, ok := c.RecommendQuant(70e9, 8); ok {
		t.Fatalf("70B should not fit in 8GB at any quantization")
	}

	if _, ok := c.RecommendQuant(0, 16); ok {
		t.Fatalf("unknown parameter count should not recommend")
	}
}
