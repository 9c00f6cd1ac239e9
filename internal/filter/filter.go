// Package filter owns the filtered+sorted view of the catalog. The store
// holds filteredRecords but never computes them; this package does, either as
// a pure function (Apply) or wired to a store through a Controller.
package filter

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"modbrowse/internal/catalog"
	"modbrowse/internal/store"
)

// Apply returns the records matching the query and filters, ordered by the
// given sorting. The input slice is not modified.
func Apply(records []catalog.Model, query string, f store.Filters, s store.Sorting) []catalog.Model {
	out := make([]catalog.Model, 0, len(records))
	query = strings.TrimSpace(query)
	for _, m := range records {
		if !matches(m, query, f) {
			continue
		}
		out = append(out, m)
	}
	sortModels(out, s)
	return out
}

func matches(m catalog.Model, query string, f store.Filters) bool {
	if query != "" && !matchesQuery(m, query) {
		return false
	}
	if !categoryOK(f.QuantFormat, m.QuantFormat) {
		return false
	}
	if !categoryOK(f.ModelType, m.ModelType) {
		return false
	}
	if !categoryOK(f.License, m.License) {
		return false
	}
	return f.FileSize.Contains(m.FileSize) &&
		f.Downloads.Contains(m.Downloads) &&
		f.Likes.Contains(m.Likes)
}

func categoryOK(want, got string) bool {
	return want == "" || want == store.FilterAll || strings.EqualFold(want, got)
}

// matchesQuery accepts a record when the query is a substring of the ID or
// name, or fuzzy-matches either. Tags match on substring only; fuzzy matching
// across short tags produces too much noise.
func matchesQuery(m catalog.Model, query string) bool {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(m.ID), q) {
		return true
	}
	if strings.Contains(strings.ToLower(m.Name()), q) {
		return true
	}
	if fuzzy.MatchNormalizedFold(query, m.ID) || fuzzy.MatchNormalizedFold(query, m.Name()) {
		return true
	}
	for _, tag := range m.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

func sortModels(models []catalog.Model, s store.Sorting) {
	less := lessFunc(s.Field)
	if less == nil {
		return
	}
	if s.Direction == store.Descending {
		orig := less
		less = func(a, b catalog.Model) bool { return orig(b, a) }
	}
	sort.SliceStable(models, func(i, j int) bool { return less(models[i], models[j]) })
}

func lessFunc(field string) func(a, b catalog.Model) bool {
	switch field {
	case store.SortByName:
		return func(a, b catalog.Model) bool {
			return strings.ToLower(a.Name()) < strings.ToLower(b.Name())
		}
	case store.SortByFileSize:
		return func(a, b catalog.Model) bool { return a.FileSize < b.FileSize }
	case store.SortByDownloads:
		return func(a, b catalog.Model) bool { return a.Downloads < b.Downloads }
	case store.SortByLikes:
		return func(a, b catalog.Model) bool { return a.Likes < b.Likes }
	case store.SortByLastModified:
		// ISO-8601 timestamps order lexically.
		return func(a, b catalog.Model) bool { return a.LastModified < b.LastModified }
	}
	return nil
}

// Controller keeps a store's filteredRecords in sync with its records, search
// query, filters, and sorting. It subscribes selectively, so page turns and
// view-mode flips never trigger a re-filter.
type Controller struct {
	st  *store.Store
	sub store.Subscription
}

// Attach wires a controller to the store and performs an initial pass.
func Attach(st *store.Store) *Controller {
	c := &Controller{st: st}
	c.sub = st.Subscribe(c.onChange,
		store.KeyRecords, store.KeySearchQuery, store.KeyFilters, store.KeySorting)
	c.Refresh()
	return c
}

// Detach removes the subscription.
func (c *Controller) Detach() {
	c.st.Unsubscribe(c.sub)
}

// Refresh recomputes filteredRecords from the current state.
func (c *Controller) Refresh() {
	c.write(c.st.Snapshot())
}

func (c *Controller) onChange(newState, _ store.State) {
	c.write(newState)
}

func (c *Controller) write(snap store.State) {
	filtered := Apply(snap.Records, snap.SearchQuery, snap.Filters, snap.Sorting)
	// Writing filteredRecords re-enters the store from inside a notification
	// pass; the store dispatches outside its lock so this is safe, and the
	// controller's own watch keys are untouched by the write.
	_ = c.st.Apply(store.Update{FilteredRecords: &filtered})
}
