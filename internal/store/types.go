package store

import (
	"strconv"

	"modbrowse/internal/catalog"
)

// Bound is the upper limit of a numeric filter range. The zero value is
// unbounded ("no upper limit"). It is deliberately not a float sentinel such
// as +Inf: cloning and comparison stay total, and nothing here ever round-trips
// through JSON where an infinity would silently corrupt.
type Bound struct {
	finite bool
	value  int64
}

// Bounded returns a finite upper bound.
func Bounded(v int64) Bound { return Bound{finite: true, value: v} }

// Unbounded returns the no-upper-limit sentinel.
func Unbounded() Bound { return Bound{} }

// IsUnbounded reports whether the bound is the unbounded sentinel.
func (b Bound) IsUnbounded() bool { return !b.finite }

// Value returns the finite limit and whether one is set.
func (b Bound) Value() (int64, bool) { return b.value, b.finite }

// Allows reports whether v is at or under the bound.
func (b Bound) Allows(v int64) bool { return !b.finite || v <= b.value }

func (b Bound) String() string {
	if !b.finite {
		return "unbounded"
	}
	return strconv.FormatInt(b.value, 10)
}

// Range is a numeric filter window. The zero value (min 0, unbounded max)
// matches everything and is the inactive default.
type Range struct {
	Min int64
	Max Bound
}

// Contains reports whether v falls inside the range.
func (r Range) Contains(v int64) bool { return v >= r.Min && r.Max.Allows(v) }

// IsDefault reports whether the range is the inactive zero-min/unbounded form.
func (r Range) IsDefault() bool { return r.Min == 0 && r.Max.IsUnbounded() }

// FilterAll marks a categorical filter as inactive.
const FilterAll = "all"

// Filters holds every filter dimension the browser exposes.
type Filters struct {
	QuantFormat string
	ModelType   string
	License     string
	FileSize    Range
	Downloads   Range
	Likes       Range
}

// DefaultFilters returns the inactive filter set.
func DefaultFilters() Filters {
	return Filters{
		QuantFormat: FilterAll,
		ModelType:   FilterAll,
		License:     FilterAll,
	}
}

// FilterPatch is a partial filter update. Nil fields are left untouched, so a
// caller can patch one dimension without restating the rest.
type FilterPatch struct {
	QuantFormat *string
	ModelType   *string
	License     *string
	FileSize    *Range
	Downloads   *Range
	Likes       *Range
}

func (p *FilterPatch) applyTo(f *Filters) {
	if p.QuantFormat != nil {
		f.QuantFormat = *p.QuantFormat
	}
	if p.ModelType != nil {
		f.ModelType = *p.ModelType
	}
	if p.License != nil {
		f.License = *p.License
	}
	if p.FileSize != nil {
		f.FileSize = *p.FileSize
	}
	if p.Downloads != nil {
		f.Downloads = *p.Downloads
	}
	if p.Likes != nil {
		f.Likes = *p.Likes
	}
}

// Direction orders a sort.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Sort fields understood by the filtering collaborator.
const (
	SortByName         = "name"
	SortByFileSize     = "fileSize"
	SortByDownloads    = "downloads"
	SortByLikes        = "likes"
	SortByLastModified = "lastModified"
)

// Sorting is always replaced wholesale, never merged field-by-field.
type Sorting struct {
	Field     string
	Direction Direction
}

// Pagination windowing. TotalItems and TotalPages are derived from the
// filtered record count and are never set directly by callers.
type Pagination struct {
	CurrentPage  int
	ItemsPerPage int
	TotalItems   int
	TotalPages   int
}

// PaginationPatch exposes only the caller-settable pagination fields.
type PaginationPatch struct {
	CurrentPage  *int
	ItemsPerPage *int
}

func (p *PaginationPatch) applyTo(pg *Pagination) {
	if p.CurrentPage != nil {
		pg.CurrentPage = *p.CurrentPage
	}
	if p.ItemsPerPage != nil {
		pg.ItemsPerPage = *p.ItemsPerPage
	}
}

// ViewMode selects the browser layout.
type ViewMode string

const (
	ViewGrid ViewMode = "grid"
	ViewList ViewMode = "list"
)

// Selection is the set of selected record IDs.
type Selection map[string]struct{}

func (s Selection) Has(id string) bool {
	_, ok := s[id]
	return ok
}

func (s Selection) Clone() Selection {
	if s == nil {
		return nil
	}
	dup := make(Selection, len(s))
	for id := range s {
		dup[id] = struct{}{}
	}
	return dup
}

// State is the single source of truth for the browser. It is owned by the
// Store; callers only ever see independent copies via Snapshot.
type State struct {
	Records         []catalog.Model
	FilteredRecords []catalog.Model
	LastUpdateTime  string
	IsLoading       bool
	Error           string
	SearchQuery     string
	Filters         Filters
	Sorting         Sorting
	Pagination      Pagination
	ActiveFilters   []string
	SelectedRecords Selection
	ViewMode        ViewMode
}

// Clone returns a deep copy. Slices are duplicated element-wise (including
// per-record tag slices) and the selection set is rebuilt, so mutating the
// copy never reaches back into the store.
func (s State) Clone() State {
	dup := s
	dup.Records = cloneModels(s.Records)
	dup.FilteredRecords = cloneModels(s.FilteredRecords)
	if s.ActiveFilters != nil {
		dup.ActiveFilters = append([]string(nil), s.ActiveFilters...)
	}
	dup.SelectedRecords = s.SelectedRecords.Clone()
	return dup
}

func cloneModels(in []catalog.Model) []catalog.Model {
	if in == nil {
		return nil
	}
	out := make([]catalog.Model, len(in))
	copy(out, in)
	for i := range out {
		if out[i].Tags != nil {
			out[i].Tags = append([]string(nil), out[i].Tags...)
		}
	}
	return out
}

// Key names a top-level state field for selective subscriptions.
type Key string

const (
	KeyRecords         Key = "records"
	KeyFilteredRecords Key = "filteredRecords"
	KeyLastUpdateTime  Key = "lastUpdateTime"
	KeyIsLoading       Key = "isLoading"
	KeyError           Key = "error"
	KeySearchQuery     Key = "searchQuery"
	KeyFilters         Key = "filters"
	KeySorting         Key = "sorting"
	KeyPagination      Key = "pagination"
	KeyActiveFilters   Key = "activeFilters"
	KeySelectedRecords Key = "selectedRecords"
	KeyViewMode        Key = "viewMode"
)

func (s *State) field(k Key) any {
	switch k {
	case KeyRecords:
		return s.Records
	case KeyFilteredRecords:
		return s.FilteredRecords
	case KeyLastUpdateTime:
		return s.LastUpdateTime
	case KeyIsLoading:
		return s.IsLoading
	case KeyError:
		return s.Error
	case KeySearchQuery:
		return s.SearchQuery
	case KeyFilters:
		return s.Filters
	case KeySorting:
		return s.Sorting
	case KeyPagination:
		return s.Pagination
	case KeyActiveFilters:
		return s.ActiveFilters
	case KeySelectedRecords:
		return s.SelectedRecords
	case KeyViewMode:
		return s.ViewMode
	}
	return nil
}

// Update is a partial state update. Nil fields are untouched. Fields whose
// values are sequences or sets replace the existing value wholesale; the
// Filters and Pagination sub-structs merge field-by-field via their patch
// types. The merge strategy is fixed per field here rather than inferred from
// value shapes at runtime.
type Update struct {
	Records         *[]catalog.Model
	FilteredRecords *[]catalog.Model
	LastUpdateTime  *string
	IsLoading       *bool
	Error           *string
	SearchQuery     *string
	Filters         *FilterPatch
	Sorting         *Sorting
	Pagination      *PaginationPatch
	SelectedRecords *Selection
	ViewMode        *ViewMode
}

// applyTo merges the update into st. Incoming slices and sets are copied so
// the store never aliases caller-owned memory.
func (u *Update) applyTo(st *State) {
	if u.Records != nil {
		st.Records = cloneModels(*u.Records)
	}
	if u.FilteredRecords != nil {
		st.FilteredRecords = cloneModels(*u.FilteredRecords)
	}
	if u.LastUpdateTime != nil {
		st.LastUpdateTime = *u.LastUpdateTime
	}
	if u.IsLoading != nil {
		st.IsLoading = *u.IsLoading
	}
	if u.Error != nil {
		st.Error = *u.Error
	}
	if u.SearchQuery != nil {
		st.SearchQuery = *u.SearchQuery
	}
	if u.Filters != nil {
		u.Filters.applyTo(&st.Filters)
	}
	if u.Sorting != nil {
		st.Sorting = *u.Sorting
	}
	if u.Pagination != nil {
		u.Pagination.applyTo(&st.Pagination)
	}
	if u.SelectedRecords != nil {
		st.SelectedRecords = u.SelectedRecords.Clone()
	}
	if u.ViewMode != nil {
		st.ViewMode = *u.ViewMode
	}
}
