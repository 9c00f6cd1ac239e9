package store

import (
	"fmt"
	"reflect"
	"sync"

	"modbrowse/internal/catalog"
)

// Formatters is the optional display collaborator. When nil the store falls
// back to raw numeric values in filter summaries.
type Formatters interface {
	FormatFileSize(bytes int64) string
	FormatDownloadCount(n int64) string
	FormatEngagementNumber(n int64) string
}

// DefaultItemsPerPage matches the catalog site's page size.
const DefaultItemsPerPage = 60

// Callback receives the post-update and pre-update snapshots. Both are
// independent copies; a callback may freely call back into the store.
type Callback func(newState, oldState State)

// Subscription is an opaque handle returned by Subscribe.
type Subscription int

type subscriber struct {
	fn    Callback
	watch []Key
}

// Store holds the canonical browser state, applies partial updates, recomputes
// derived fields, and notifies subscribers. All operations are synchronous:
// an update is fully merged and recomputed before any subscriber runs, so no
// partial state is ever observable.
type Store struct {
	mu     sync.Mutex
	state  State
	fmts   Formatters
	subs   map[Subscription]subscriber
	nextID Subscription
}

// New builds a store with the default state. fmts may be nil.
func New(fmts Formatters) *Store {
	return &Store{
		state: defaultState(),
		fmts:  fmts,
		subs:  make(map[Subscription]subscriber),
	}
}

func defaultState() State {
	return State{
		Records:         []catalog.Model{},
		FilteredRecords: []catalog.Model{},
		Filters:         DefaultFilters(),
		Sorting:         Sorting{Field: SortByDownloads, Direction: Descending},
		Pagination:      Pagination{CurrentPage: 1, ItemsPerPage: DefaultItemsPerPage},
		ActiveFilters:   []string{},
		SelectedRecords: Selection{},
		ViewMode:        ViewGrid,
	}
}

// Snapshot returns a deep, independent copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Apply merges a partial update, recomputes derived fields, and notifies
// subscribers. When recomputation cannot proceed (for example a non-positive
// items-per-page injected through the pagination patch) the update is
// discarded and the error returned; the committed state never holds
// inconsistent derived fields.
func (s *Store) Apply(u Update) error { return s.apply(u, false) }

// ApplySilent is Apply without subscriber notification.
func (s *Store) ApplySilent(u Update) error { return s.apply(u, true) }

func (s *Store) apply(u Update, silent bool) error {
	s.mu.Lock()
	prev := s.state.Clone()
	next := s.state.Clone()
	u.applyTo(&next)
	if err := s.recompute(&next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = next
	var pending []subscriber
	if !silent {
		pending = make([]subscriber, 0, len(s.subs))
		for _, sub := range s.subs {
			pending = append(pending, sub)
		}
	}
	curr := s.state.Clone()
	s.mu.Unlock()

	// Dispatch outside the lock over a snapshot of the registry: callbacks may
	// re-enter the store or unsubscribe without corrupting this pass.
	for _, sub := range pending {
		if len(sub.watch) > 0 && !anyKeyChanged(&prev, &curr, sub.watch) {
			continue
		}
		sub.fn(curr.Clone(), prev.Clone())
	}
	return nil
}

func anyKeyChanged(prev, next *State, keys []Key) bool {
	for _, k := range keys {
		if !reflect.DeepEqual(prev.field(k), next.field(k)) {
			return true
		}
	}
	return false
}

// Subscribe registers a callback. With watch keys the callback only fires when
// at least one named top-level field differs (by deep equality) between the
// old and new snapshots; without keys it fires on every non-silent update.
func (s *Store) Subscribe(fn Callback, watchKeys ...Key) Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.subs[id] = subscriber{fn: fn, watch: append([]Key(nil), watchKeys...)}
	return id
}

// Unsubscribe removes a subscription. Unknown handles are ignored.
func (s *Store) Unsubscribe(id Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}

// recompute refreshes the derived fields: pagination totals, page clamp, and
// the active-filter summary. Runs on every merge so the invariants hold after
// every committed update.
func (s *Store) recompute(st *State) error {
	pp := st.Pagination.ItemsPerPage
	if pp < 1 {
		return fmt.Errorf("pagination: items per page must be at least 1, got %d", pp)
	}
	st.Pagination.TotalItems = len(st.FilteredRecords)
	st.Pagination.TotalPages = (st.Pagination.TotalItems + pp - 1) / pp
	st.Pagination.CurrentPage = clampPage(st.Pagination.CurrentPage, st.Pagination.TotalPages)
	st.ActiveFilters = s.buildActiveFilters(st)
	return nil
}

func clampPage(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}
