package store

import (
	"math"
	"strconv"
	"strings"
	"time"

	"modbrowse/internal/catalog"
)

// Convenience operations. Each is sugar over Apply; none of them can produce
// a recompute failure because they never touch items-per-page, so the error
// from apply is discarded.

// SetLoading flips the load lifecycle. errMsg is empty for none.
func (s *Store) SetLoading(loading bool, errMsg string) {
	_ = s.Apply(Update{IsLoading: &loading, Error: &errMsg})
}

// SetModels replaces the record list wholesale and stamps the update time
// (current time when lastUpdate is empty). Loading and error state is cleared:
// arrival of records ends the load lifecycle either way.
func (s *Store) SetModels(records []catalog.Model, lastUpdate string) {
	if lastUpdate == "" {
		lastUpdate = time.Now().Format(time.RFC3339)
	}
	loading := false
	errMsg := ""
	_ = s.Apply(Update{
		Records:        &records,
		LastUpdateTime: &lastUpdate,
		IsLoading:      &loading,
		Error:          &errMsg,
	})
}

// SetSearchQuery sets the query and returns to the first page.
func (s *Store) SetSearchQuery(query string) {
	page := 1
	_ = s.Apply(Update{
		SearchQuery: &query,
		Pagination:  &PaginationPatch{CurrentPage: &page},
	})
}

// UpdateFilters shallow-merges the patch into the filter set and returns to
// the first page. Unpatched dimensions keep their prior values.
func (s *Store) UpdateFilters(patch FilterPatch) {
	page := 1
	_ = s.Apply(Update{
		Filters:    &patch,
		Pagination: &PaginationPatch{CurrentPage: &page},
	})
}

// SetSorting replaces the sort wholesale and returns to the first page.
func (s *Store) SetSorting(field string, dir Direction) {
	page := 1
	sorting := Sorting{Field: field, Direction: dir}
	_ = s.Apply(Update{
		Sorting:    &sorting,
		Pagination: &PaginationPatch{CurrentPage: &page},
	})
}

// SetCurrentPage stores the page clamped into [1, totalPages] using the
// current total, so no request can leave the page pointer out of range.
func (s *Store) SetCurrentPage(page int) {
	s.mu.Lock()
	page = clampPage(page, s.state.Pagination.TotalPages)
	s.mu.Unlock()
	_ = s.Apply(Update{Pagination: &PaginationPatch{CurrentPage: &page}})
}

// ClearFilters resets the search query and every filter dimension to the
// defaults and returns to the first page. Sorting, view mode, and the
// selection are left alone.
func (s *Store) ClearFilters() {
	query := ""
	page := 1
	defaults := DefaultFilters()
	_ = s.Apply(Update{
		SearchQuery: &query,
		Filters: &FilterPatch{
			QuantFormat: &defaults.QuantFormat,
			ModelType:   &defaults.ModelType,
			License:     &defaults.License,
			FileSize:    &defaults.FileSize,
			Downloads:   &defaults.Downloads,
			Likes:       &defaults.Likes,
		},
		Pagination: &PaginationPatch{CurrentPage: &page},
	})
}

// SetEngagementFilter sets the like-count range from raw user input. Input is
// never rejected: an unparseable or negative minimum degrades to 0 and an
// unparseable, negative, or empty maximum degrades to no upper bound.
func (s *Store) SetEngagementFilter(minInput, maxInput string) {
	r := Range{
		Min: coerceMin(minInput),
		Max: coerceMax(maxInput),
	}
	s.UpdateFilters(FilterPatch{Likes: &r})
}

// ClearEngagementFilter resets only the like-count range.
func (s *Store) ClearEngagementFilter() {
	r := Range{}
	s.UpdateFilters(FilterPatch{Likes: &r})
}

func coerceMin(input string) int64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil || math.IsNaN(v) || v < 0 {
		return 0
	}
	// Values past int64 would wrap negative on conversion and exclude
	// everything; cap instead.
	if v >= math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(v)
}

func coerceMax(input string) Bound {
	v, err := strconv.ParseFloat(strings.TrimSpace(input), 64)
	if err != nil || math.IsNaN(v) || v < 0 {
		return Unbounded()
	}
	// A maximum too large to represent is no maximum at all.
	if v >= math.MaxInt64 {
		return Unbounded()
	}
	return Bounded(int64(v))
}

// SetViewMode switches between grid and list layout.
func (s *Store) SetViewMode(mode ViewMode) {
	_ = s.Apply(Update{ViewMode: &mode})
}

// ToggleSelected flips one record in the selection set.
func (s *Store) ToggleSelected(id string) {
	s.mu.Lock()
	sel := s.state.SelectedRecords.Clone()
	s.mu.Unlock()
	if sel == nil {
		sel = Selection{}
	}
	if sel.Has(id) {
		delete(sel, id)
	} else {
		sel[id] = struct{}{}
	}
	_ = s.Apply(Update{SelectedRecords: &sel})
}

// ClearSelection empties the selection set.
func (s *Store) ClearSelection() {
	sel := Selection{}
	_ = s.Apply(Update{SelectedRecords: &sel})
}

// CurrentPageModels returns the slice of filtered records for the current
// page (offset/limit windowing, no wraparound). An out-of-range page yields
// an empty slice. The returned records are copies.
func (s *Store) CurrentPageModels() []catalog.Model {
	s.mu.Lock()
	defer s.mu.Unlock()
	pg := s.state.Pagination
	start := (pg.CurrentPage - 1) * pg.ItemsPerPage
	if start < 0 || start >= len(s.state.FilteredRecords) {
		return []catalog.Model{}
	}
	end := start + pg.ItemsPerPage
	if end > len(s.state.FilteredRecords) {
		end = len(s.state.FilteredRecords)
	}
	return cloneModels(s.state.FilteredRecords[start:end])
}

// ActiveFilters returns the human-readable summary of every filter dimension
// currently deviating from its default.
func (s *Store) ActiveFilters() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.state.ActiveFilters...)
}

// EngagementStats summarizes like-count engagement across the catalog plus
// the state of the like filter.
type EngagementStats struct {
	TotalLikes      int64
	AvgLikes        float64
	MaxLikes        int64
	ModelsWithLikes int
	IsFiltered      bool
	FilteredCount   int
	Min             int64
	Max             Bound
}

// EngagementFilterStats is computed on demand from the records and the like
// filter; nothing here is cached in state. An empty catalog yields zeroes.
func (s *Store) EngagementFilterStats() EngagementStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats EngagementStats
	if len(s.state.Records) == 0 {
		stats.Max = Unbounded()
		return stats
	}
	for _, m := range s.state.Records {
		stats.TotalLikes += m.Likes
		if m.Likes > stats.MaxLikes {
			stats.MaxLikes = m.Likes
		}
		if m.Likes > 0 {
			stats.ModelsWithLikes++
		}
	}
	stats.AvgLikes = float64(stats.TotalLikes) / float64(len(s.state.Records))

	likes := s.state.Filters.Likes
	stats.Min = likes.Min
	stats.Max = likes.Max
	if !likes.IsDefault() {
		stats.IsFiltered = true
		for _, m := range s.state.Records {
			if likes.Contains(m.Likes) {
				stats.FilteredCount++
			}
		}
	}
	return stats
}
