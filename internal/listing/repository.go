package listing

import (
	"context"
	"errors"

	"github.com/estatery/listings/internal/models"
)

// ErrNotFound indicates no active listing with the requested id.
var ErrNotFound = errors.New("listing not found")

// SearchResult is one page of matching active listings plus pagination math.
type SearchResult struct {
	Items      []models.Listing
	Total      int
	TotalPages int
	Page       int
}

// Repository is the single listing access contract shared by the persistent
// store and the in-memory generator store. Both must behave identically from
// the caller's point of view: same filter semantics, same pagination math.
type Repository interface {
	// Search returns one page of active listings matching the filter set.
	Search(ctx context.Context, f FilterSet, page, limit int) (SearchResult, error)
	// Get returns a listing by id, ErrNotFound when absent or inactive.
	Get(ctx context.Context, id string) (*models.Listing, error)
	// Active returns every active listing (suggestions, stats, similar).
	Active(ctx context.Context) ([]models.Listing, error)
	// Featured returns the top listings by views then favorites.
	Featured(ctx context.Context, limit int) ([]models.Listing, error)

	Create(ctx context.Context, l *models.Listing) error
	Update(ctx context.Context, l *models.Listing) error
	Delete(ctx context.Context, id string) error

	// IncrementViews bumps the view counter; the persistent backend uses the
	// store's atomic increment so concurrent fetches don't lose updates.
	IncrementViews(ctx context.Context, id string) error
	// AdjustFavorites applies +1/-1 (floored at zero) and returns the new count.
	AdjustFavorites(ctx context.Context, id string, delta int) (int, error)

	// Count returns the number of stored listings, active or not.
	Count(ctx context.Context) (int, error)
	// Seed replaces all stored listings with the given generated set.
	Seed(ctx context.Context, items []models.Listing) error
	// DistinctCities returns distinct active-listing cities whose name
	// contains the (case-insensitive) substring.
	DistinctCities(ctx context.Context, substr string) ([]string, error)
}

// Featured ordering shared by both backends: views desc, favorites desc.
func featuredLess(a, b *models.Listing) bool {
	if a.Views != b.Views {
		return a.Views > b.Views
	}
	if a.Favorites != b.Favorites {
		return a.Favorites > b.Favorites
	}
	return a.ID < b.ID
}
