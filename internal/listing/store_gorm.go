package listing

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/estatery/listings/internal/models"
	"gorm.io/gorm"
)

// GormStore is the persistent Repository backend.
//
// SQL narrows the candidate set with the cheaply expressible constraints
// (active flag, ranges, type/status membership, city/state substring); the
// remaining predicates plus sort and pagination run through the same shared
// pipeline the in-memory store uses, so the two backends cannot drift apart
// on filter semantics or page math.
type GormStore struct {
	DB *gorm.DB
}

// NewGormStore wraps a GORM connection as a listing Repository.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{DB: db}
}

func (s *GormStore) Search(ctx context.Context, f FilterSet, page, limit int) (SearchResult, error) {
	q := s.DB.WithContext(ctx).Where("is_active = ?", true)

	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	if f.MinBeds != nil {
		q = q.Where("bedrooms >= ?", *f.MinBeds)
	}
	if f.MaxBeds != nil {
		q = q.Where("bedrooms <= ?", *f.MaxBeds)
	}
	if f.MinBaths != nil {
		q = q.Where("bathrooms >= ?", *f.MinBaths)
	}
	if f.MaxBaths != nil {
		q = q.Where("bathrooms <= ?", *f.MaxBaths)
	}
	if f.MinSqft != nil {
		q = q.Where("sqft >= ?", *f.MinSqft)
	}
	if f.MaxSqft != nil {
		q = q.Where("sqft <= ?", *f.MaxSqft)
	}
	if len(f.Types) > 0 {
		q = q.Where("type IN ?", f.Types)
	}
	if len(f.Statuses) > 0 {
		q = q.Where("status IN ?", f.Statuses)
	}
	if f.City != "" {
		q = q.Where("LOWER(location_city) LIKE ?", "%"+strings.ToLower(f.City)+"%")
	}
	if f.State != "" {
		q = q.Where("LOWER(location_state) LIKE ?", "%"+strings.ToLower(f.State)+"%")
	}

	var candidates []models.Listing
	if err := q.Find(&candidates).Error; err != nil {
		return SearchResult{}, err
	}

	// Text search and amenity-subset matching are not portable across the
	// supported dialects; the shared predicate settles them.
	matched := candidates[:0]
	for i := range candidates {
		if f.Matches(&candidates[i]) {
			matched = append(matched, candidates[i])
		}
	}

	f.Sort(matched)
	pageItems, totalPages := Paginate(matched, page, limit)
	return SearchResult{Items: pageItems, Total: len(matched), TotalPages: totalPages, Page: page}, nil
}

func (s *GormStore) Get(ctx context.Context, id string) (*models.Listing, error) {
	var l models.Listing
	err := s.DB.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&l).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (s *GormStore) Active(ctx context.Context) ([]models.Listing, error) {
	var items []models.Listing
	if err := s.DB.WithContext(ctx).Where("is_active = ?", true).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *GormStore) Featured(ctx context.Context, limit int) ([]models.Listing, error) {
	var items []models.Listing
	err := s.DB.WithContext(ctx).
		Where("is_active = ?", true).
		Order("views DESC").Order("favorites DESC").Order("id ASC").
		Limit(limit).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *GormStore) Create(ctx context.Context, l *models.Listing) error {
	return s.DB.WithContext(ctx).Create(l).Error
}

func (s *GormStore) Update(ctx context.Context, l *models.Listing) error {
	return s.DB.WithContext(ctx).Save(l).Error
}

func (s *GormStore) Delete(ctx context.Context, id string) error {
	res := s.DB.WithContext(ctx).Delete(&models.Listing{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IncrementViews uses the store's atomic increment, avoiding the lost-update
// race of read-modify-write under concurrent detail fetches.
func (s *GormStore) IncrementViews(ctx context.Context, id string) error {
	return s.DB.WithContext(ctx).Model(&models.Listing{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
}

func (s *GormStore) AdjustFavorites(ctx context.Context, id string, delta int) (int, error) {
	if delta >= 0 {
		err := s.DB.WithContext(ctx).Model(&models.Listing{}).
			Where("id = ?", id).
			UpdateColumn("favorites", gorm.Expr("favorites + ?", delta)).Error
		if err != nil {
			return 0, err
		}
	} else {
		// Floor at zero in the store itself.
		err := s.DB.WithContext(ctx).Model(&models.Listing{}).
			Where("id = ? AND favorites > 0", id).
			UpdateColumn("favorites", gorm.Expr("favorites - ?", -delta)).Error
		if err != nil {
			return 0, err
		}
	}
	var l models.Listing
	if err := s.DB.WithContext(ctx).Select("favorites").Where("id = ?", id).First(&l).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return l.Favorites, nil
}

func (s *GormStore) Count(ctx context.Context) (int, error) {
	var n int64
	if err := s.DB.WithContext(ctx).Model(&models.Listing{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *GormStore) Seed(ctx context.Context, items []models.Listing) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.Listing{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.CreateInBatches(items, 50).Error
	})
}

func (s *GormStore) DistinctCities(ctx context.Context, substr string) ([]string, error) {
	var cities []string
	err := s.DB.WithContext(ctx).Model(&models.Listing{}).
		Where("is_active = ?", true).
		Where("LOWER(location_city) LIKE ?", "%"+strings.ToLower(substr)+"%").
		Distinct().
		Pluck("location_city", &cities).Error
	if err != nil {
		return nil, err
	}
	sort.Strings(cities)
	return cities, nil
}
