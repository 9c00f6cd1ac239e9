// Package hardware estimates what a machine needs to run a GGUF model
// locally, from its file size, quantization format, and the parameter count
// implied by the model name.
package hardware

import (
	"regexp"
	"strconv"
	"strings"

	"modbrowse/internal/catalog"
	"modbrowse/internal/config"
)

const gib = 1 << 30

// paramPattern picks the parameter count out of names like "Llama-2-7B-GGUF"
// or "tinyllama-1.1b-chat".
var paramPattern = regexp.MustCompile(`(?i)(?:^|[-_ .(])(\d+(?:\.\d+)?)b(?:$|[-_ .)])`)

// Tier buckets a RAM requirement into a class of machine.
type Tier string

const (
	TierEntry       Tier = "entry"       // 8 GB laptops
	TierMainstream  Tier = "mainstream"  // 16 GB desktops
	TierWorkstation Tier = "workstation" // 32-64 GB
	TierServer      Tier = "server"      // 128 GB and up
)

// Requirements is the minimum machine for local inference. RAM and core
// counts snap to common retail configurations.
type Requirements struct {
	MinRAMGB        int
	MinCPUCores     int
	GPURequired     bool
	EstimatedParams int64 // total parameter count, 0 when unknown
	Tier            Tier
}

type Calculator struct {
	cfg config.HardwareConfig
}

func New(cfg config.HardwareConfig) *Calculator {
	return &Calculator{cfg: cfg}
}

func (c *Calculator) overhead() float64 {
	if c.cfg.RAMOverheadFactor <= 0 {
		return 1.2
	}
	return c.cfg.RAMOverheadFactor
}

// Estimate computes requirements for one model.
func (c *Calculator) Estimate(m catalog.Model) Requirements {
	params := EstimateParams(m)
	ram := c.ramGB(m.FileSize)
	return Requirements{
		MinRAMGB:        ram,
		MinCPUCores:     cpuCores(params, m.FileSize),
		GPURequired:     gpuRequired(params, m.FileSize, m.QuantFormat),
		EstimatedParams: params,
		Tier:            tierFor(ram),
	}
}

// EstimateParams returns the model's total parameter count, from the name
// when it carries a size token, otherwise roughly from the file size.
// Returns 0 when neither source gives a usable estimate.
func EstimateParams(m catalog.Model) int64 {
	if match := paramPattern.FindStringSubmatch(m.Name()); match != nil {
		if billions, err := strconv.ParseFloat(match[1], 64); err == nil {
			return int64(billions * 1e9)
		}
	}
	// Quantized GGUF files run around 1.5 GB per billion parameters.
	if m.FileSize > 0 {
		billions := float64(m.FileSize) / (1.5 * gib)
		if billions > 0.5 {
			return int64(billions * 1e9)
		}
	}
	return 0
}

func (c *Calculator) ramGB(fileSize int64) int {
	if fileSize <= 0 {
		return 8
	}
	base := float64(fileSize) / gib * c.overhead()
	switch {
	case base <= 8:
		return 8
	case base <= 16:
		return 16
	case base <= 32:
		return 32
	case base <= 64:
		return 64
	default:
		return 128
	}
}

func cpuCores(params, fileSize int64) int {
	if params > 0 {
		switch {
		case params <= 2e9:
			return 4
		case params <= 8e9:
			return 6
		case params <= 30e9:
			return 8
		case params <= 70e9:
			return 12
		default:
			return 16
		}
	}
	fileGB := float64(fileSize) / gib
	switch {
	case fileGB <= 2:
		return 4
	case fileGB <= 6:
		return 6
	case fileGB <= 15:
		return 8
	case fileGB <= 40:
		return 12
	default:
		return 16
	}
}

func gpuRequired(params, fileSize int64, quantFormat string) bool {
	if params >= 30e9 {
		return true
	}
	fileGB := float64(fileSize) / gib
	if fileGB >= 8 {
		return true
	}
	if isEfficientQuant(quantFormat) && fileGB <= 4 {
		return false
	}
	return true
}

func tierFor(ramGB int) Tier {
	switch {
	case ramGB <= 8:
		return TierEntry
	case ramGB <= 16:
		return TierMainstream
	case ramGB <= 64:
		return TierWorkstation
	default:
		return TierServer
	}
}

// isEfficientQuant reports whether the format is 4-bit or lower, where CPU
// inference stays viable for small models.
func isEfficientQuant(format string) bool {
	upper := strings.ToUpper(format)
	for _, prefix := range []string{"Q4_", "Q3_", "Q2_", "IQ4_", "IQ3_", "IQ2_"} {
		if strings.HasPrefix(upper, prefix) {
			return true
		}
	}
	return false
}

// quantLadder orders common GGUF quantizations from highest fidelity down,
// with approximate bytes per parameter for each.
var quantLadder = []struct {
	Name          string
	BytesPerParam float64
}{
	{"F16", 2.00},
	{"Q8_0", 1.06},
	{"Q6_K", 0.82},
	{"Q5_K_M", 0.71},
	{"Q4_K_M", 0.60},
	{"Q3_K_M", 0.49},
	{"Q2_K", 0.35},
}

// RecommendQuant picks the highest-fidelity quantization of a model with the
// given parameter count that fits in ramBudgetGB. The second return is false
// when even the smallest quantization does not fit or params is unknown.
func (c *Calculator) RecommendQuant(params int64, ramBudgetGB int) (string, bool) {
	if params <= 0 || ramBudgetGB <= 0 {
		return "", false
	}
	budget := float64(ramBudgetGB)
	for _, q := range quantLadder {
		estGB := float64(params) * q.BytesPerParam / gib * c.overhead()
		if estGB <= budget {
			return q.Name, true
		}
	}
	return "", false
}
