package store

import (
	"fmt"
	"strconv"
)

// buildActiveFilters produces the human-readable summary list, one entry per
// dimension deviating from its default, in fixed order: search, quantization,
// type, license, file size, downloads, likes.
func (s *Store) buildActiveFilters(st *State) []string {
	out := []string{}
	if st.SearchQuery != "" {
		out = append(out, fmt.Sprintf("Search: %q", st.SearchQuery))
	}
	f := st.Filters
	if f.QuantFormat != FilterAll && f.QuantFormat != "" {
		out = append(out, "Quantization: "+f.QuantFormat)
	}
	if f.ModelType != FilterAll && f.ModelType != "" {
		out = append(out, "Type: "+f.ModelType)
	}
	if f.License != FilterAll && f.License != "" {
		out = append(out, "License: "+f.License)
	}
	if !f.FileSize.IsDefault() {
		out = append(out, "Size: "+describeRange(f.FileSize, s.formatFileSize))
	}
	if !f.Downloads.IsDefault() {
		out = append(out, "Downloads: "+describeRange(f.Downloads, s.formatDownloadCount))
	}
	if !f.Likes.IsDefault() {
		out = append(out, "Likes: "+describeRange(f.Likes, s.formatEngagement))
	}
	return out
}

func describeRange(r Range, format func(int64) string) string {
	max, finite := r.Max.Value()
	switch {
	case !finite:
		return "at least " + format(r.Min)
	case r.Min == 0:
		return "up to " + format(max)
	default:
		return format(r.Min) + " to " + format(max)
	}
}

// Formatter fallbacks: raw values when no formatter collaborator is injected.

func (s *Store) formatFileSize(v int64) string {
	if s.fmts != nil {
		return s.fmts.FormatFileSize(v)
	}
	return strconv.FormatInt(v, 10)
}

func (s *Store) formatDownloadCount(v int64) string {
	if s.fmts != nil {
		return s.fmts.FormatDownloadCount(v)
	}
	return strconv.FormatInt(v, 10)
}

func (s *Store) formatEngagement(v int64) string {
	if s.fmts != nil {
		return s.fmts.FormatEngagementNumber(v)
	}
	return strconv.FormatInt(v, 10)
}
