package listing

import (
	"context"
	"testing"

	"github.com/estatery/listings/internal/models"
)

func seedSuggestStore(t *testing.T) *MemoryStore {
	t.Helper()
	store := NewMemoryStore()
	ctx := context.Background()

	a := testListing("p1", "Modern Family Home", "Austin", 450000)
	a.Views = 12
	b := testListing("p2", "Modern Loft", "Dallas", 350000)
	b.Views = 7
	c := testListing("p3", "Cozy Cottage", "Modesto", 250000)

	for _, l := range []models.Listing{a, b, c} {
		cp := l
		if err := store.Create(ctx, &cp); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	return store
}

func TestSuggestionsOrderAndTypes(t *testing.T) {
	store := seedSuggestStore(t)
	s := NewSuggester(store, Amenities)

	got, err := s.Suggest(context.Background(), "Mode", 10)
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}

	var properties []Suggestion
	lastProperty := -1
	for i, sg := range got {
		if sg.Type == "property" {
			properties = append(properties, sg)
			lastProperty = i
		}
	}
	if len(properties) != 2 {
		t.Fatalf("Expected both Modern listings as property suggestions, got %+v", got)
	}
	for i, sg := range got {
		if sg.Type != "property" && i < lastProperty {
			t.Errorf("Non-property suggestion %q at %d before property at %d", sg.Value, i, lastProperty)
		}
	}

	seen := make(map[string]bool)
	for _, sg := range got {
		if seen[sg.Value] {
			t.Errorf("Duplicate suggestion value %q", sg.Value)
		}
		seen[sg.Value] = true
	}
}

func TestSuggestionsCarryViewCounts(t *testing.T) {
	store := seedSuggestStore(t)
	s := NewSuggester(store, Amenities)

	got, err := s.Suggest(context.Background(), "Modern Family", 10)
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	if len(got) == 0 {
		t.Fatal("Expected at least one suggestion")
	}
	if got[0].Type != "property" || got[0].Count != 12 {
		t.Errorf("Expected property suggestion with Count=12, got %+v", got[0])
	}
}

func TestSuggestionsShortQuery(t *testing.T) {
	store := seedSuggestStore(t)
	s := NewSuggester(store, Amenities)

	// "é" is one rune in two bytes; the minimum counts runes, not bytes.
	for _, q := range []string{"M", "é"} {
		got, err := s.Suggest(context.Background(), q, 10)
		if err != nil {
			t.Fatalf("Suggest(%q) failed: %v", q, err)
		}
		if len(got) != 0 {
			t.Errorf("Query %q is below the minimum length, got %+v", q, got)
		}
	}
}

func TestSuggestionsSkipInactiveListings(t *testing.T) {
	store := seedSuggestStore(t)
	ctx := context.Background()

	hidden := testListing("p4", "Modern Hideaway", "Austin", 400000)
	hidden.IsActive = false
	if err := store.Create(ctx, &hidden); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	s := NewSuggester(store, Amenities)
	got, err := s.Suggest(ctx, "Modern Hide", 10)
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}
	for _, sg := range got {
		if sg.Value == "Modern Hideaway" {
			t.Error("Inactive listing surfaced as a suggestion")
		}
	}
}

func TestSuggestionsLocationAndAmenityCaps(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	cities := []string{"Springfield", "Spring Hill", "Spring Valley", "Springdale", "Cold Spring"}
	for i, city := range cities {
		l := testListing(string(rune('a'+i)), "Plain House", city, 200000)
		if err := store.Create(ctx, &l); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	s := NewSuggester(store, []string{"Spring-Fed Pool"})
	got, err := s.Suggest(ctx, "Spring", 20)
	if err != nil {
		t.Fatalf("Suggest failed: %v", err)
	}

	locations := 0
	for _, sg := range got {
		if sg.Type == "location" {
			locations++
		}
	}
	if locations > DefaultCategoryCap {
		t.Errorf("Location suggestions exceed the per-category cap: %d", locations)
	}
}

func TestSimilarSelection(t *testing.T) {
	seed := testListing("s", "Seed Home", "Austin", 500000)

	sameType := testListing("a", "Other House", "Dallas", 900000)
	sameCity := testListing("b", "Austin Condo", "Austin", 900000)
	sameCity.Type = "Condo"
	closePrice := testListing("c", "Cheap Condo", "Dallas", 520000)
	closePrice.Type = "Condo"
	unrelated := testListing("d", "Far Condo", "Dallas", 2000000)
	unrelated.Type = "Condo"
	inactive := testListing("e", "Inactive House", "Austin", 500000)
	inactive.IsActive = false

	pool := []models.Listing{seed, sameType, sameCity, closePrice, unrelated, inactive}
	got := Similar(&seed, pool, 4)

	ids := make(map[string]bool)
	for _, l := range got {
		ids[l.ID] = true
	}
	if ids["s"] {
		t.Error("Similar must exclude the seed listing itself")
	}
	if ids["d"] {
		t.Error("Similar must exclude listings with nothing in common")
	}
	if ids["e"] {
		t.Error("Similar must exclude inactive listings")
	}
	if !ids["a"] || !ids["b"] || !ids["c"] {
		t.Errorf("Expected a, b, c in similar set, got %v", ids)
	}
}
