package listing

import (
	"context"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/estatery/listings/internal/models"
)

// Suggestion is one typed search suggestion.
type Suggestion struct {
	Type  string `json:"type"` // property, location, amenity
	Value string `json:"value"`
	Label string `json:"label"`
	Count int    `json:"count,omitempty"`
}

// MinQueryLength is the shortest query that produces suggestions.
const MinQueryLength = 2

// DefaultCategoryCap bounds locations and amenities before merging.
const DefaultCategoryCap = 3

// Suggester builds ranked, deduplicated suggestions over a Repository and a
// static amenity list.
type Suggester struct {
	Repo        Repository
	AmenityList []string
	CategoryCap int
}

// NewSuggester returns a Suggester with the default per-category cap.
func NewSuggester(repo Repository, amenityList []string) *Suggester {
	return &Suggester{Repo: repo, AmenityList: amenityList, CategoryCap: DefaultCategoryCap}
}

// Suggest returns at most limit suggestions for the partial query. Ranking is
// positional, not scored: properties first, then locations, then amenities,
// each in source order. Duplicate values collapse to the first occurrence.
// Queries shorter than MinQueryLength yield an empty list, not an error.
func (s *Suggester) Suggest(ctx context.Context, query string, limit int) ([]Suggestion, error) {
	if utf8.RuneCountInString(query) < MinQueryLength {
		return []Suggestion{}, nil
	}
	if limit <= 0 {
		limit = 10
	}
	term := strings.ToLower(query)

	active, err := s.Repo.Active(ctx)
	if err != nil {
		return nil, err
	}
	// Stable source order for generated/in-memory data.
	sort.SliceStable(active, func(i, j int) bool {
		return active[i].ID < active[j].ID
	})

	var suggestions []Suggestion
	for i := range active {
		if matchesSuggestion(&active[i], term) {
			suggestions = append(suggestions, Suggestion{
				Type:  "property",
				Value: active[i].Title,
				Label: active[i].Title,
				Count: active[i].Views,
			})
			if len(suggestions) >= limit {
				break
			}
		}
	}

	cities, err := s.Repo.DistinctCities(ctx, query)
	if err != nil {
		return nil, err
	}
	catCap := s.CategoryCap
	if catCap <= 0 {
		catCap = DefaultCategoryCap
	}
	if len(cities) > catCap {
		cities = cities[:catCap]
	}
	for _, city := range cities {
		suggestions = append(suggestions, Suggestion{Type: "location", Value: city, Label: city})
	}

	matched := 0
	for _, amenity := range s.AmenityList {
		if strings.Contains(strings.ToLower(amenity), term) {
			suggestions = append(suggestions, Suggestion{Type: "amenity", Value: amenity, Label: amenity})
			matched++
			if matched >= catCap {
				break
			}
		}
	}

	// Collapse duplicate values to the first occurrence, then apply the cap.
	seen := make(map[string]struct{}, len(suggestions))
	deduped := suggestions[:0]
	for _, sg := range suggestions {
		if _, dup := seen[sg.Value]; dup {
			continue
		}
		seen[sg.Value] = struct{}{}
		deduped = append(deduped, sg)
		if len(deduped) >= limit {
			break
		}
	}
	if deduped == nil {
		deduped = []Suggestion{}
	}
	return deduped, nil
}

func matchesSuggestion(l *models.Listing, term string) bool {
	return strings.Contains(strings.ToLower(l.Title), term) ||
		strings.Contains(strings.ToLower(l.Description), term) ||
		strings.Contains(strings.ToLower(l.Location.City), term) ||
		strings.Contains(strings.ToLower(l.Location.State), term) ||
		strings.Contains(strings.ToLower(l.Location.Address), term)
}
