package client

import (
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"
)

// DebounceDelay is how long a debounced field must stay unchanged before it
// commits.
const DebounceDelay = 500 * time.Millisecond

// debouncedFields settle through the delay window; every other field commits
// immediately and resets pagination.
var debouncedFields = map[string]bool{
	"search":   true,
	"city":     true,
	"state":    true,
	"minPrice": true,
	"maxPrice": true,
}

// Query is one committed filter snapshot ready to be sent to the service.
type Query struct {
	Filters   map[string]string
	Amenities []string
	Page      int
	SortBy    string
	SortOrder string
}

// Values encodes the query as URL values.
func (q Query) Values() url.Values {
	v := url.Values{}
	for k, val := range q.Filters {
		if val != "" {
			v.Set(k, val)
		}
	}
	if len(q.Amenities) > 0 {
		v.Set("amenities", strings.Join(q.Amenities, ","))
	}
	if q.Page > 1 {
		v.Set("page", itoa(q.Page))
	}
	if q.SortBy != "" {
		v.Set("sortBy", q.SortBy)
	}
	if q.SortOrder != "" {
		v.Set("sortOrder", q.SortOrder)
	}
	return v
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var b [12]byte
	i := len(b)
	for n > 0 {
		i--
		b[i] = byte('0' + n%10)
		n /= 10
	}
	return string(b[i:])
}

// QueryComposer collects filter input, debounces the free-text fields and
// emits committed query snapshots. Text fields (search, city, state, price
// bounds) settle after DebounceDelay; everything else commits immediately.
// Any user-driven commit resets pagination to page 1; only Restore, the
// mount-time path, keeps a page carried in from the URL. The lock is held
// through the onChange callback so snapshots are delivered in commit order:
// last committed wins.
type QueryComposer struct {
	mu sync.Mutex

	filters   map[string]string
	pending   map[string]string
	amenities map[string]bool
	page      int
	sortBy    string
	sortOrder string

	timers map[string]*time.Timer
	delay  time.Duration

	onChange func(Query)
}

// NewQueryComposer builds a composer that invokes onChange with each
// committed query snapshot.
func NewQueryComposer(onChange func(Query)) *QueryComposer {
	return &QueryComposer{
		filters:   make(map[string]string),
		pending:   make(map[string]string),
		amenities: make(map[string]bool),
		page:      1,
		timers:    make(map[string]*time.Timer),
		delay:     DebounceDelay,
		onChange:  onChange,
	}
}

// SetFilter records a filter value. Debounced fields update visible state
// immediately but only commit after the delay window; other fields commit at
// once and reset pagination.
func (qc *QueryComposer) SetFilter(key, value string) {
	qc.mu.Lock()

	if !debouncedFields[key] {
		qc.filters[key] = value
		qc.page = 1
		qc.commitLocked()
		return
	}

	// Visible state tracks every keystroke; commit waits for quiet.
	qc.pending[key] = value
	if t, ok := qc.timers[key]; ok {
		t.Stop()
	}
	qc.timers[key] = time.AfterFunc(qc.delay, func() {
		qc.settle(key, value)
	})
	qc.mu.Unlock()
}

// settle commits a debounced field once its delay has elapsed without
// another keystroke.
func (qc *QueryComposer) settle(key, value string) {
	qc.mu.Lock()
	if qc.pending[key] != value {
		// A newer keystroke re-armed the timer.
		qc.mu.Unlock()
		return
	}
	delete(qc.pending, key)
	delete(qc.timers, key)
	qc.filters[key] = value
	qc.page = 1
	qc.commitLocked()
}

// Restore installs state captured from the URL on mount and emits the
// initial query. Unlike every user-driven commit it keeps the restored page.
func (qc *QueryComposer) Restore(q Query) {
	qc.mu.Lock()
	qc.filters = make(map[string]string, len(q.Filters))
	for k, v := range q.Filters {
		qc.filters[k] = v
	}
	qc.amenities = make(map[string]bool, len(q.Amenities))
	for _, a := range q.Amenities {
		qc.amenities[a] = true
	}
	if q.Page >= 1 {
		qc.page = q.Page
	}
	qc.sortBy = q.SortBy
	qc.sortOrder = q.SortOrder
	qc.commitLocked()
}

// ToggleAmenity adds or removes an amenity and resets pagination. Never
// debounced.
func (qc *QueryComposer) ToggleAmenity(name string) {
	qc.mu.Lock()
	if qc.amenities[name] {
		delete(qc.amenities, name)
	} else {
		qc.amenities[name] = true
	}
	qc.page = 1
	qc.commitLocked()
}

// SetPage moves to a page without touching filters.
func (qc *QueryComposer) SetPage(page int) {
	qc.mu.Lock()
	if page < 1 {
		page = 1
	}
	qc.page = page
	qc.commitLocked()
}

// SetSort sets the sort field and order and resets pagination.
func (qc *QueryComposer) SetSort(field, order string) {
	qc.mu.Lock()
	qc.sortBy = field
	qc.sortOrder = order
	qc.page = 1
	qc.commitLocked()
}

// ClearFilters resets every filter, amenity and the page in one atomic
// update, cancelling pending debounce timers so no stale value lands later.
func (qc *QueryComposer) ClearFilters() {
	qc.mu.Lock()
	for k, t := range qc.timers {
		t.Stop()
		delete(qc.timers, k)
	}
	qc.filters = make(map[string]string)
	qc.pending = make(map[string]string)
	qc.amenities = make(map[string]bool)
	qc.page = 1
	qc.commitLocked()
}

// Snapshot returns the current committed query without emitting a change.
func (qc *QueryComposer) Snapshot() Query {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	return qc.snapshotLocked()
}

func (qc *QueryComposer) snapshotLocked() Query {
	filters := make(map[string]string, len(qc.filters))
	for k, v := range qc.filters {
		filters[k] = v
	}
	amenities := make([]string, 0, len(qc.amenities))
	for a := range qc.amenities {
		amenities = append(amenities, a)
	}
	sort.Strings(amenities)
	return Query{
		Filters:   filters,
		Amenities: amenities,
		Page:      qc.page,
		SortBy:    qc.sortBy,
		SortOrder: qc.sortOrder,
	}
}

// commitLocked emits the current snapshot and releases the lock. Keeping the
// lock across the callback means a late-firing debounce timer can never
// deliver its snapshot after a newer commit's.
func (qc *QueryComposer) commitLocked() {
	snapshot := qc.snapshotLocked()
	if qc.onChange != nil {
		qc.onChange(snapshot)
	}
	qc.mu.Unlock()
}
