package listing

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/estatery/listings/internal/models"
	"github.com/google/uuid"
)

// Mock listing generation, used to seed the property store and to back the
// rental surface. Prices follow a per-city, per-type base table with ±20%
// variation; rentals follow the per-city market table with ±30%.

var basePrices = map[string]map[string]int{
	"New York":      {"House": 800000, "Apartment": 600000, "Condo": 700000, "Townhouse": 750000, "Studio": 400000, "Loft": 650000},
	"Los Angeles":   {"House": 700000, "Apartment": 500000, "Condo": 600000, "Townhouse": 650000, "Studio": 350000, "Loft": 550000},
	"San Francisco": {"House": 1200000, "Apartment": 800000, "Condo": 900000, "Townhouse": 1000000, "Studio": 600000, "Loft": 850000},
	"Seattle":       {"House": 600000, "Apartment": 450000, "Condo": 500000, "Townhouse": 550000, "Studio": 300000, "Loft": 450000},
	"Chicago":       {"House": 400000, "Apartment": 300000, "Condo": 350000, "Townhouse": 375000, "Studio": 200000, "Loft": 325000},
	"Houston":       {"House": 350000, "Apartment": 250000, "Condo": 300000, "Townhouse": 325000, "Studio": 180000, "Loft": 275000},
	"Austin":        {"House": 450000, "Apartment": 350000, "Condo": 400000, "Townhouse": 425000, "Studio": 250000, "Loft": 375000},
	"Denver":        {"House": 500000, "Apartment": 400000, "Condo": 450000, "Townhouse": 475000, "Studio": 280000, "Loft": 425000},
}

var sqftRanges = map[string][2]int{
	"House":     {1200, 4000},
	"Apartment": {600, 2000},
	"Condo":     {800, 2500},
	"Townhouse": {1000, 3000},
	"Studio":    {300, 800},
	"Loft":      {600, 2000},
}

var bedroomRanges = map[string][2]int{
	"House":     {2, 5},
	"Apartment": {1, 3},
	"Condo":     {1, 3},
	"Townhouse": {2, 4},
	"Studio":    {0, 1},
	"Loft":      {1, 2},
}

var (
	heatingOptions = []string{"Central Air", "Forced Air", "Radiant", "Heat Pump"}
	coolingOptions = []string{"Central Air", "Window Units", "None"}
	parkingOptions = []string{"Garage", "Street", "Driveway", "None"}

	agentNames     = []string{"John Smith", "Sarah Johnson", "Mike Davis", "Lisa Wilson", "David Brown", "Emily Taylor"}
	agentCompanies = []string{"Century 21", "RE/MAX", "Coldwell Banker", "Keller Williams", "Sotheby's", "Compass"}
	ownerNames     = []string{"Property Owner", "Real Estate LLC", "Investment Group"}

	streetNumbers = []int{100, 200, 300, 400, 500, 600, 700, 800, 900, 1000}
	streetNames   = []string{"Main St", "Oak Ave", "Pine St", "Maple Dr", "Cedar Ln", "Elm St", "First Ave", "Second St", "Park Ave", "Broadway"}

	leaseLengths = []string{"6 months", "12 months", "18 months", "24 months", "Month-to-month"}
	petPolicies  = []string{"Allowed", "Cats Only", "Dogs Only", "Not Allowed"}
	utilityTerms = []string{"Included", "Partially Included", "Not Included"}
)

// Generator produces mock listings from a seeded random source.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a generator over the given random seed.
func NewGenerator(seed int64) *Generator {
	return &Generator{rng: rand.New(rand.NewSource(seed))}
}

func (g *Generator) pick(options []string) string {
	return options[g.rng.Intn(len(options))]
}

func (g *Generator) between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + g.rng.Intn(hi-lo+1)
}

func (g *Generator) sample(pool []string, n int) models.StringList {
	idx := g.rng.Perm(len(pool))
	if n > len(pool) {
		n = len(pool)
	}
	out := make(models.StringList, 0, n)
	for _, i := range idx[:n] {
		out = append(out, pool[i])
	}
	return out
}

func (g *Generator) images(propertyType string, count int) models.StringList {
	out := make(models.StringList, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, fmt.Sprintf(
			"https://images.unsplash.com/photo-%d?auto=format&fit=crop&w=1000&q=80",
			1500000000000+g.rng.Int63n(1000000000)))
	}
	return out
}

func (g *Generator) address() string {
	return fmt.Sprintf("%d %s",
		streetNumbers[g.rng.Intn(len(streetNumbers))],
		streetNames[g.rng.Intn(len(streetNames))])
}

func (g *Generator) agent() models.Agent {
	return models.Agent{
		Name:    g.pick(agentNames),
		Email:   fmt.Sprintf("agent%d@realestate.com", g.rng.Intn(1000)),
		Phone:   fmt.Sprintf("(%d) %d-%d", g.between(100, 999), g.between(100, 999), g.between(1000, 9999)),
		Company: g.pick(agentCompanies),
	}
}

// Property generates one sale-market listing.
func (g *Generator) Property() models.Listing {
	city := Cities[g.rng.Intn(len(Cities))]
	propertyType := g.pick(RentalTypes) // House..Loft; Land/Commercial are not generated
	status := g.pick(PropertyStatuses)

	cityPrices, ok := basePrices[city.Name]
	if !ok {
		cityPrices = basePrices["Chicago"]
	}
	base, ok := cityPrices[propertyType]
	if !ok {
		base = cityPrices["House"]
	}
	price := int(float64(base) * (0.8 + g.rng.Float64()*0.4))

	sr := sqftRanges[propertyType]
	sqft := g.between(sr[0], sr[1])
	br := bedroomRanges[propertyType]
	bedrooms := g.between(br[0], br[1])
	bathrooms := bedrooms / 2
	if bathrooms < 1 {
		bathrooms = 1
	}

	mls := fmt.Sprintf("MLS%d", g.between(100000, 999999))
	propertyTax := int(float64(price) * 0.01 * (0.5 + g.rng.Float64()))

	l := models.Listing{
		ID:    uuid.NewString(),
		Title: fmt.Sprintf("%d Bedroom %s in %s", bedrooms, propertyType, city.Name),
		Description: fmt.Sprintf(
			"Beautiful %s located in the heart of %s. This property features %d bedrooms and %d bathrooms. "+
				"The property includes modern amenities and is conveniently located near shopping, dining, and transportation.",
			propertyType, city.Name, bedrooms, bathrooms),
		Type:      propertyType,
		Status:    status,
		Price:     price,
		Sqft:      sqft,
		Bedrooms:  bedrooms,
		Bathrooms: bathrooms,
		YearBuilt: g.between(1950, 2024),
		Images:    g.images(propertyType, 5),
		Location: models.Location{
			Address: g.address(),
			City:    city.Name,
			State:   city.State,
			ZipCode: city.Zip,
			Coordinates: models.Coordinates{
				Lat: 40.7128 + (g.rng.Float64()-0.5)*0.1,
				Lng: -74.0060 + (g.rng.Float64()-0.5)*0.1,
			},
		},
		Amenities: g.sample(Amenities, g.between(3, 10)),
		Features:  g.sample(Features, g.between(2, 7)),
		PropertyDetails: models.PropertyDetails{
			Heating:     g.pick(heatingOptions),
			Cooling:     g.pick(coolingOptions),
			Parking:     g.pick(parkingOptions),
			PropertyTax: &propertyTax,
			MLSNumber:   &mls,
		},
		Agent: g.agent(),
		Owner: models.Owner{
			ID:   uuid.NewString(),
			Name: g.pick(ownerNames),
		},
		Views:     g.rng.Intn(1000),
		Favorites: g.rng.Intn(100),
		IsActive:  true,
		CreatedAt: time.Now().Add(-time.Duration(g.rng.Int63n(int64(365 * 24 * time.Hour)))),
		UpdatedAt: time.Now(),
	}

	if propertyType == "House" {
		lot := g.between(5000, 20000)
		l.LotSize = &lot
	}
	if propertyType == "Condo" || propertyType == "Townhouse" {
		hoa := g.between(100, 500)
		l.PropertyDetails.HOA = &hoa
	}

	l.ComputeDerived()
	return l
}

// Properties generates n sale-market listings.
func (g *Generator) Properties(n int) []models.Listing {
	out := make([]models.Listing, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, g.Property())
	}
	return out
}

// Rental generates one rental listing priced off the city market table.
func (g *Generator) Rental() models.Listing {
	l := g.Property()
	l.Type = g.pick(RentalTypes)
	l.Status = models.StatusForRent

	market, ok := MarketData[l.Location.City]
	if !ok {
		market = MarketData["Chicago"]
	}
	l.Price = int(float64(market.MedianRent) * (0.7 + g.rng.Float64()*0.6))
	l.Amenities = g.sample(RentalAmenities, g.between(3, 10))

	deposit := l.Price * g.between(1, 2)
	l.RentalDetails = &models.RentalDetails{
		AvailableDate:  time.Now().Add(time.Duration(g.rng.Int63n(int64(60 * 24 * time.Hour)))),
		LeaseLength:    g.pick(leaseLengths),
		Deposit:        deposit,
		PetPolicy:      g.pick(petPolicies),
		Utilities:      g.pick(utilityTerms),
		Furnished:      g.rng.Intn(2) == 0,
		SmokingAllowed: g.rng.Intn(10) == 0,
	}

	l.Title = fmt.Sprintf("%d Bedroom %s for Rent in %s", l.Bedrooms, l.Type, l.Location.City)
	l.ComputeDerived()
	return l
}

// Rentals generates n rental listings.
func (g *Generator) Rentals(n int) []models.Listing {
	out := make([]models.Listing, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, g.Rental())
	}
	return out
}
