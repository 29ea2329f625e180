package client

import (
	"reflect"
	"sync"
	"testing"
	"time"
)

// recorder collects committed query snapshots.
type recorder struct {
	mu      sync.Mutex
	queries []Query
}

func (r *recorder) record(q Query) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, q)
}

func (r *recorder) all() []Query {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Query, len(r.queries))
	copy(out, r.queries)
	return out
}

func newFastComposer(rec *recorder) *QueryComposer {
	qc := NewQueryComposer(rec.record)
	qc.delay = 30 * time.Millisecond
	return qc
}

func waitForCommits(t *testing.T, rec *recorder, n int) []Query {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if got := rec.all(); len(got) >= n {
			return got
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %d commits, got %d", n, len(rec.all()))
	return nil
}

func TestRapidTypingCommitsOnce(t *testing.T) {
	rec := &recorder{}
	qc := newFastComposer(rec)

	qc.SetFilter("search", "a")
	qc.SetFilter("search", "ab")
	qc.SetFilter("search", "abc")

	got := waitForCommits(t, rec, 1)
	// Allow the window plus slack; no second commit may arrive.
	time.Sleep(100 * time.Millisecond)
	got = rec.all()

	if len(got) != 1 {
		t.Fatalf("Expected exactly one commit, got %d", len(got))
	}
	if got[0].Filters["search"] != "abc" {
		t.Errorf("Expected final keystroke to win, got %q", got[0].Filters["search"])
	}
}

func TestImmediateFieldsCommitAndResetPage(t *testing.T) {
	rec := &recorder{}
	qc := newFastComposer(rec)

	qc.SetPage(3)
	qc.SetFilter("bedrooms", "2")

	got := waitForCommits(t, rec, 2)
	last := got[len(got)-1]
	if last.Filters["bedrooms"] != "2" {
		t.Errorf("Expected bedrooms committed immediately, got %v", last.Filters)
	}
	if last.Page != 1 {
		t.Errorf("Expected page reset to 1, got %d", last.Page)
	}
}

func TestRestoreKeepsPageFromURL(t *testing.T) {
	rec := &recorder{}
	qc := newFastComposer(rec)

	// Opening a shared URL: page 4 with a search term already applied.
	qc.Restore(Query{
		Filters: map[string]string{"search": "loft"},
		Page:    4,
	})

	got := waitForCommits(t, rec, 1)
	if got[0].Page != 4 || got[0].Filters["search"] != "loft" {
		t.Errorf("Restore must emit the URL state unchanged, got %+v", got[0])
	}

	// The first edit after mount behaves like any other: settle resets paging.
	qc.SetFilter("search", "lofts")
	got = waitForCommits(t, rec, 2)
	if got[1].Page != 1 {
		t.Errorf("Settles after restore must reset the page, got %d", got[1].Page)
	}
}

func TestDebouncedSettleResetsPage(t *testing.T) {
	rec := &recorder{}
	qc := newFastComposer(rec)

	for _, field := range []string{"search", "city", "minPrice"} {
		qc.SetPage(3)
		before := len(rec.all())
		qc.SetFilter(field, "x")
		got := waitForCommits(t, rec, before+1)
		last := got[len(got)-1]
		if last.Page != 1 {
			t.Errorf("Settling %s must reset page 3 to 1, got %d", field, last.Page)
		}
	}
}

func TestLastRecordedCommitMatchesFinalState(t *testing.T) {
	rec := &recorder{}
	qc := newFastComposer(rec)

	// A debounce timer fires in the middle of a burst of immediate commits;
	// its snapshot must never be delivered after a newer commit's.
	qc.SetFilter("search", "austin")
	for i := 0; i < 20; i++ {
		qc.ToggleAmenity("Pool")
		time.Sleep(3 * time.Millisecond)
	}
	time.Sleep(100 * time.Millisecond) // let any armed timer fire

	got := rec.all()
	last := got[len(got)-1]
	if snap := qc.Snapshot(); !reflect.DeepEqual(last, snap) {
		t.Errorf("Last delivered commit %+v does not match final state %+v", last, snap)
	}
}

func TestToggleAmenity(t *testing.T) {
	rec := &recorder{}
	qc := newFastComposer(rec)

	qc.ToggleAmenity("Pool")
	qc.ToggleAmenity("Garage")
	qc.ToggleAmenity("Pool")

	got := waitForCommits(t, rec, 3)
	last := got[len(got)-1]
	if len(last.Amenities) != 1 || last.Amenities[0] != "Garage" {
		t.Errorf("Expected [Garage], got %v", last.Amenities)
	}
}

func TestClearFiltersCancelsPendingDebounce(t *testing.T) {
	rec := &recorder{}
	qc := newFastComposer(rec)

	qc.SetFilter("city", "Aus")
	qc.ClearFilters()

	// Wait out the debounce window; the pending "Aus" must never land.
	time.Sleep(120 * time.Millisecond)
	got := rec.all()
	if len(got) != 1 {
		t.Fatalf("Expected only the clear commit, got %d commits", len(got))
	}
	if len(got[0].Filters) != 0 || got[0].Page != 1 {
		t.Errorf("Expected empty filters on page 1, got %+v", got[0])
	}

	if snap := qc.Snapshot(); snap.Filters["city"] != "" {
		t.Errorf("Stale debounced value leaked into state: %v", snap.Filters)
	}
}

func TestQueryValuesEncoding(t *testing.T) {
	q := Query{
		Filters:   map[string]string{"search": "loft", "city": "", "bedrooms": "2"},
		Amenities: []string{"Garage", "Pool"},
		Page:      3,
		SortBy:    "price",
		SortOrder: "asc",
	}
	v := q.Values()
	if v.Get("search") != "loft" || v.Get("bedrooms") != "2" {
		t.Errorf("Filter values missing: %v", v)
	}
	if _, present := v["city"]; present {
		t.Error("Empty filter values must be omitted")
	}
	if v.Get("amenities") != "Garage,Pool" {
		t.Errorf("Expected comma-joined amenities, got %q", v.Get("amenities"))
	}
	if v.Get("page") != "3" || v.Get("sortBy") != "price" || v.Get("sortOrder") != "asc" {
		t.Errorf("Paging and sort values wrong: %v", v)
	}
}
