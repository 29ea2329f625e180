package listing

import (
	"sort"

	"github.com/estatery/listings/internal/models"
)

// Range is a min/max pair for a stats block.
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Stats summarizes a set of listings by status plus numeric averages/ranges.
type Stats struct {
	Total            int   `json:"total"`
	ForSale          int   `json:"forSale"`
	ForRent          int   `json:"forRent"`
	Sold             int   `json:"sold"`
	Pending          int   `json:"pending"`
	AveragePrice     int   `json:"averagePrice"`
	AverageSqft      int   `json:"averageSqft"`
	AverageBedrooms  int   `json:"averageBedrooms"`
	AverageBathrooms int   `json:"averageBathrooms"`
	PriceRange       Range `json:"priceRange"`
	SqftRange        Range `json:"sqftRange"`
}

// ComputeStats builds summary statistics over items.
func ComputeStats(items []models.Listing) Stats {
	s := Stats{Total: len(items)}
	if len(items) == 0 {
		return s
	}

	var sumPrice, sumSqft, sumBeds, sumBaths int
	s.PriceRange = Range{Min: items[0].Price, Max: items[0].Price}
	s.SqftRange = Range{Min: items[0].Sqft, Max: items[0].Sqft}

	for i := range items {
		l := &items[i]
		switch l.Status {
		case models.StatusForSale:
			s.ForSale++
		case models.StatusForRent:
			s.ForRent++
		case models.StatusSold:
			s.Sold++
		case models.StatusPending:
			s.Pending++
		}
		sumPrice += l.Price
		sumSqft += l.Sqft
		sumBeds += l.Bedrooms
		sumBaths += l.Bathrooms
		if l.Price < s.PriceRange.Min {
			s.PriceRange.Min = l.Price
		}
		if l.Price > s.PriceRange.Max {
			s.PriceRange.Max = l.Price
		}
		if l.Sqft < s.SqftRange.Min {
			s.SqftRange.Min = l.Sqft
		}
		if l.Sqft > s.SqftRange.Max {
			s.SqftRange.Max = l.Sqft
		}
	}

	n := len(items)
	s.AveragePrice = (sumPrice + n/2) / n
	s.AverageSqft = (sumSqft + n/2) / n
	s.AverageBedrooms = (sumBeds + n/2) / n
	s.AverageBathrooms = (sumBaths + n/2) / n
	return s
}

// MarketStats is the rental market summary: per-city table plus national
// aggregates.
type MarketStats struct {
	Cities          map[string]MarketInfo `json:"cities"`
	NationalAverage int                   `json:"nationalAverageRent"`
	NationalMedian  int                   `json:"nationalMedianRent"`
	RisingMarkets   []string              `json:"risingMarkets"`
}

// ComputeMarketStats summarizes the static rental market table.
func ComputeMarketStats() MarketStats {
	ms := MarketStats{Cities: MarketData}
	var sumAvg, sumMed int
	for city, info := range MarketData {
		sumAvg += info.AverageRent
		sumMed += info.MedianRent
		if info.MarketTrend == "rising" {
			ms.RisingMarkets = append(ms.RisingMarkets, city)
		}
	}
	n := len(MarketData)
	ms.NationalAverage = sumAvg / n
	ms.NationalMedian = sumMed / n
	sort.Strings(ms.RisingMarkets)
	return ms
}

// Similar selects up to limit listings sharing the seed listing's type or
// city, or priced within ±30% of it, excluding the seed itself.
func Similar(seed *models.Listing, pool []models.Listing, limit int) []models.Listing {
	if limit <= 0 {
		limit = 4
	}
	out := make([]models.Listing, 0, limit)
	for i := range pool {
		p := &pool[i]
		if p.ID == seed.ID || !p.IsActive {
			continue
		}
		priceDelta := p.Price - seed.Price
		if priceDelta < 0 {
			priceDelta = -priceDelta
		}
		if p.Type == seed.Type ||
			p.Location.City == seed.Location.City ||
			float64(priceDelta) < float64(seed.Price)*0.3 {
			out = append(out, *p)
			if len(out) >= limit {
				break
			}
		}
	}
	return out
}
