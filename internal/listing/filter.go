package listing

import (
	"sort"
	"strconv"
	"strings"

	"github.com/estatery/listings/internal/models"
	"github.com/estatery/listings/internal/types"
)

// FilterSet is the typed, validated filter input for a search. Absent bounds
// impose no constraint. Both code paths (persistent store and in-memory
// generator) run the same predicate over this struct.
type FilterSet struct {
	Search    string
	Types     []string
	Statuses  []string
	MinPrice  *int
	MaxPrice  *int
	MinBeds   *int
	MaxBeds   *int
	MinBaths  *int
	MaxBaths  *int
	MinSqft   *int
	MaxSqft   *int
	City      string
	State     string
	Amenities []string
	SortBy    string
	SortOrder string
}

// Sortable fields; anything else falls back to createdAt.
var sortFields = map[string]bool{
	"createdAt": true,
	"updatedAt": true,
	"price":     true,
	"sqft":      true,
	"bedrooms":  true,
	"bathrooms": true,
	"views":     true,
	"favorites": true,
	"title":     true,
	"location":  true,
	"yearBuilt": true,
}

// ParseFilters builds a FilterSet from raw query values, or returns a
// ValidationError naming every offending field. Bad numeric input is never
// silently swallowed.
func ParseFilters(query map[string][]string) (FilterSet, error) {
	verr := &types.ValidationError{}
	f := FilterSet{
		Search:    first(query, "search"),
		Types:     multi(query, "type"),
		Statuses:  multi(query, "status"),
		City:      first(query, "city"),
		State:     first(query, "state"),
		Amenities: multi(query, "amenities"),
		SortBy:    first(query, "sortBy"),
		SortOrder: strings.ToLower(first(query, "sortOrder")),
	}

	f.MinPrice = parseIntField(query, "minPrice", verr)
	f.MaxPrice = parseIntField(query, "maxPrice", verr)
	f.MinBeds = parseIntField(query, "minBedrooms", verr)
	f.MaxBeds = parseIntField(query, "maxBedrooms", verr)
	f.MinBaths = parseIntField(query, "minBathrooms", verr)
	f.MaxBaths = parseIntField(query, "maxBathrooms", verr)
	f.MinSqft = parseIntField(query, "minSqft", verr)
	f.MaxSqft = parseIntField(query, "maxSqft", verr)

	if f.SortBy == "" || !sortFields[f.SortBy] {
		f.SortBy = "createdAt"
	}
	if f.SortOrder != "asc" {
		f.SortOrder = "desc"
	}

	if verr.Any() {
		return FilterSet{}, verr
	}
	return f, nil
}

// first returns the first value for key, or "".
func first(query map[string][]string, key string) string {
	if vals := query[key]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

// multi collects values for a key, supporting both repeated keys and
// comma-separated values, deduplicated in first-seen order.
func multi(query map[string][]string, key string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, raw := range query[key] {
		for _, v := range strings.Split(raw, ",") {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

func parseIntField(query map[string][]string, key string, verr *types.ValidationError) *int {
	raw := first(query, key)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		verr.Add(key, "must be a number")
		return nil
	}
	return &n
}

// Matches runs the full filter predicate against one listing. Inactive
// listings never match regardless of filters.
func (f FilterSet) Matches(l *models.Listing) bool {
	if !l.IsActive {
		return false
	}

	if f.Search != "" {
		term := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(l.Title), term) &&
			!strings.Contains(strings.ToLower(l.Description), term) &&
			!strings.Contains(strings.ToLower(l.Location.Address), term) &&
			!strings.Contains(strings.ToLower(l.Location.City), term) &&
			!strings.Contains(strings.ToLower(l.Location.State), term) {
			return false
		}
	}

	if len(f.Types) > 0 && !contains(f.Types, l.Type) {
		return false
	}
	if len(f.Statuses) > 0 && !contains(f.Statuses, l.Status) {
		return false
	}

	if !inRange(l.Price, f.MinPrice, f.MaxPrice) {
		return false
	}
	if !inRange(l.Bedrooms, f.MinBeds, f.MaxBeds) {
		return false
	}
	if !inRange(l.Bathrooms, f.MinBaths, f.MaxBaths) {
		return false
	}
	if !inRange(l.Sqft, f.MinSqft, f.MaxSqft) {
		return false
	}

	if f.City != "" && !strings.Contains(strings.ToLower(l.Location.City), strings.ToLower(f.City)) {
		return false
	}
	if f.State != "" && !strings.Contains(strings.ToLower(l.Location.State), strings.ToLower(f.State)) {
		return false
	}

	// Subset semantics: the listing must carry every requested amenity.
	if len(f.Amenities) > 0 && !l.Amenities.ContainsAll(f.Amenities) {
		return false
	}

	return true
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// inRange checks inclusive bounds; a nil bound imposes no constraint.
func inRange(v int, min, max *int) bool {
	if min != nil && v < *min {
		return false
	}
	if max != nil && v > *max {
		return false
	}
	return true
}

// Sort orders listings by the filter's sort field and direction, in place.
// String fields compare case-insensitively; ties break on ID so pagination
// is stable across pages.
func (f FilterSet) Sort(items []models.Listing) {
	asc := f.SortOrder == "asc"
	sort.SliceStable(items, func(i, j int) bool {
		a, b := &items[i], &items[j]
		var less, eq bool
		switch f.SortBy {
		case "price":
			less, eq = a.Price < b.Price, a.Price == b.Price
		case "sqft":
			less, eq = a.Sqft < b.Sqft, a.Sqft == b.Sqft
		case "bedrooms":
			less, eq = a.Bedrooms < b.Bedrooms, a.Bedrooms == b.Bedrooms
		case "bathrooms":
			less, eq = a.Bathrooms < b.Bathrooms, a.Bathrooms == b.Bathrooms
		case "views":
			less, eq = a.Views < b.Views, a.Views == b.Views
		case "favorites":
			less, eq = a.Favorites < b.Favorites, a.Favorites == b.Favorites
		case "yearBuilt":
			less, eq = a.YearBuilt < b.YearBuilt, a.YearBuilt == b.YearBuilt
		case "title":
			at, bt := strings.ToLower(a.Title), strings.ToLower(b.Title)
			less, eq = at < bt, at == bt
		case "location":
			ac, bc := strings.ToLower(a.Location.City), strings.ToLower(b.Location.City)
			less, eq = ac < bc, ac == bc
		case "updatedAt":
			less, eq = a.UpdatedAt.Before(b.UpdatedAt), a.UpdatedAt.Equal(b.UpdatedAt)
		default: // createdAt
			less, eq = a.CreatedAt.Before(b.CreatedAt), a.CreatedAt.Equal(b.CreatedAt)
		}
		if eq {
			return a.ID < b.ID
		}
		if asc {
			return less
		}
		return !less
	})
}

// Paginate slices one 1-indexed page out of items and returns the page plus
// totalPages. A page beyond the end yields an empty slice, not an error.
func Paginate(items []models.Listing, page, limit int) ([]models.Listing, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	totalPages := (len(items) + limit - 1) / limit
	start := (page - 1) * limit
	if start >= len(items) {
		return []models.Listing{}, totalPages
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], totalPages
}
