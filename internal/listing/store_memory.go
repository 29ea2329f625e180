package listing

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/estatery/listings/internal/models"
)

// MemoryStore is the transient Repository backend used by the rental surface
// and by demo mode. Listings live in a process-local map behind a mutex; the
// filter/sort/paginate pipeline is the exact one the persistent store runs.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]*models.Listing
}

// NewMemoryStore returns an empty in-memory Repository.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]*models.Listing)}
}

// snapshot copies all listings out of the map, active-only when activeOnly.
func (s *MemoryStore) snapshot(activeOnly bool) []models.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Listing, 0, len(s.items))
	for _, l := range s.items {
		if activeOnly && !l.IsActive {
			continue
		}
		cp := *l
		cp.ComputeDerived()
		out = append(out, cp)
	}
	return out
}

func (s *MemoryStore) Search(ctx context.Context, f FilterSet, page, limit int) (SearchResult, error) {
	all := s.snapshot(false)
	matched := all[:0]
	for i := range all {
		if f.Matches(&all[i]) {
			matched = append(matched, all[i])
		}
	}
	f.Sort(matched)
	pageItems, totalPages := Paginate(matched, page, limit)
	return SearchResult{Items: pageItems, Total: len(matched), TotalPages: totalPages, Page: page}, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*models.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.items[id]
	if !ok || !l.IsActive {
		return nil, ErrNotFound
	}
	cp := *l
	cp.ComputeDerived()
	return &cp, nil
}

func (s *MemoryStore) Active(ctx context.Context) ([]models.Listing, error) {
	return s.snapshot(true), nil
}

func (s *MemoryStore) Featured(ctx context.Context, limit int) ([]models.Listing, error) {
	items := s.snapshot(true)
	sort.SliceStable(items, func(i, j int) bool {
		return featuredLess(&items[i], &items[j])
	})
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items, nil
}

func (s *MemoryStore) Create(ctx context.Context, l *models.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.UpdatedAt = now
	cp := *l
	s.items[l.ID] = &cp
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, l *models.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[l.ID]; !ok {
		return ErrNotFound
	}
	l.UpdatedAt = time.Now()
	cp := *l
	s.items[l.ID] = &cp
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *MemoryStore) IncrementViews(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.items[id]; ok {
		l.Views++
		l.UpdatedAt = time.Now()
	}
	return nil
}

func (s *MemoryStore) AdjustFavorites(ctx context.Context, id string, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.items[id]
	if !ok {
		return 0, ErrNotFound
	}
	l.Favorites += delta
	if l.Favorites < 0 {
		l.Favorites = 0
	}
	l.UpdatedAt = time.Now()
	return l.Favorites, nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items), nil
}

func (s *MemoryStore) Seed(ctx context.Context, items []models.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]*models.Listing, len(items))
	for i := range items {
		cp := items[i]
		s.items[cp.ID] = &cp
	}
	return nil
}

func (s *MemoryStore) DistinctCities(ctx context.Context, substr string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	term := strings.ToLower(substr)
	seen := make(map[string]struct{})
	var cities []string
	for _, l := range s.items {
		if !l.IsActive {
			continue
		}
		city := l.Location.City
		if !strings.Contains(strings.ToLower(city), term) {
			continue
		}
		if _, dup := seen[city]; dup {
			continue
		}
		seen[city] = struct{}{}
		cities = append(cities, city)
	}
	sort.Strings(cities)
	return cities, nil
}
