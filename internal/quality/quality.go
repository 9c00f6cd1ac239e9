// Package quality prunes low-value catalog entries before they reach the
// browser: undersized files, redundant quantized variants, and mass uploads
// from a single namespace.
package quality

import (
	"regexp"
	"sort"
	"strings"

	"modbrowse/internal/catalog"
	"modbrowse/internal/config"
)

// trustedDownloadFloor is the relaxed download threshold for variants from
// trusted uploaders.
const trustedDownloadFloor = 50

var quantToken = regexp.MustCompile(`(?i)[-_.](I?Q[0-9]+(_[A-Z0-9]+)*|F16|F32|BF16)\b`)

// Report summarizes one filtering pass.
type Report struct {
	Original        int
	Kept            int
	RemovedSmall    int
	RemovedVariants int
	RemovedCapped   int
}

// Filter applies the configured pruning rules.
type Filter struct {
	cfg     config.QualityConfig
	trusted map[string]struct{}
}

func New(cfg config.QualityConfig) *Filter {
	trusted := make(map[string]struct{}, len(cfg.TrustedUploaders))
	for _, u := range cfg.TrustedUploaders {
		trusted[strings.ToLower(u)] = struct{}{}
	}
	return &Filter{cfg: cfg, trusted: trusted}
}

// IsTrusted reports whether the uploader namespace is on the trusted list.
func (f *Filter) IsTrusted(uploader string) bool {
	_, ok := f.trusted[strings.ToLower(uploader)]
	return ok
}

// FilterModels returns the kept subset, preserving no particular order beyond
// group-local size ordering, plus a report of what was removed.
func (f *Filter) FilterModels(models []catalog.Model) ([]catalog.Model, Report) {
	report := Report{Original: len(models)}
	if !f.cfg.Enabled {
		report.Kept = len(models)
		return models, report
	}

	sized := make([]catalog.Model, 0, len(models))
	for _, m := range models {
		if m.FileSize < f.cfg.MinSizeBytes {
			report.RemovedSmall++
			continue
		}
		sized = append(sized, m)
	}

	groups := groupByBase(sized)
	kept := make([]catalog.Model, 0, len(sized))
	for _, group := range groups {
		selected := f.selectVariants(group)
		report.RemovedVariants += len(group) - len(selected)
		kept = append(kept, selected...)
	}

	kept, capped := f.capPerUploader(kept)
	report.RemovedCapped = capped
	report.Kept = len(kept)
	return kept, report
}

// groupByBase buckets models by their ID with the quantization token removed,
// so "org/llama-7b-Q4_K_M" and "org/llama-7b-Q8_0" land together.
func groupByBase(models []catalog.Model) map[string][]catalog.Model {
	groups := make(map[string][]catalog.Model)
	for _, m := range models {
		key := strings.ToLower(quantToken.ReplaceAllString(m.ID, ""))
		groups[key] = append(groups[key], m)
	}
	return groups
}

// selectVariants keeps the largest variant unconditionally, then keeps a
// smaller one only when it represents a meaningful size drop with enough
// downloads, or comes from a trusted uploader clearing the relaxed floor.
func (f *Filter) selectVariants(group []catalog.Model) []catalog.Model {
	if len(group) <= 1 {
		return group
	}
	sorted := append([]catalog.Model(nil), group...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].FileSize > sorted[j].FileSize })

	kept := sorted[:1]
	for _, v := range sorted[1:] {
		if f.keepVariant(v, kept[len(kept)-1]) {
			kept = append(kept, v)
		}
	}
	return kept
}

func (f *Filter) keepVariant(v, lastKept catalog.Model) bool {
	if f.IsTrusted(v.Uploader()) && v.Downloads >= trustedDownloadFloor {
		return true
	}
	if v.Downloads < f.cfg.MinDownloads {
		return false
	}
	return significantDrop(v.FileSize, lastKept.FileSize, f.cfg.SizeDropThreshold)
}

func significantDrop(size, prev int64, threshold float64) bool {
	if prev <= 0 {
		return true
	}
	drop := float64(prev-size) / float64(prev)
	return drop >= threshold
}

// capPerUploader drops the least-liked entries of any namespace exceeding the
// configured ceiling. Zero means no cap.
func (f *Filter) capPerUploader(models []catalog.Model) ([]catalog.Model, int) {
	if f.cfg.MaxModelsPerUploader <= 0 {
		return models, 0
	}
	byUploader := make(map[string][]catalog.Model)
	for _, m := range models {
		u := strings.ToLower(m.Uploader())
		byUploader[u] = append(byUploader[u], m)
	}
	removed := 0
	out := make([]catalog.Model, 0, len(models))
	for _, group := range byUploader {
		if len(group) > f.cfg.MaxModelsPerUploader {
			sort.SliceStable(group, func(i, j int) bool { return group[i].Likes > group[j].Likes })
			removed += len(group) - f.cfg.MaxModelsPerUploader
			group = group[:f.cfg.MaxModelsPerUploader]
		}
		out = append(out, group...)
	}
	return out, removed
}
