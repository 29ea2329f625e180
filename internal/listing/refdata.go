package listing

// Static reference lists used to populate filter UI. These are facet
// metadata, independent of any current result set.

// PropertyTypes enumerates listing types accepted on create/update.
var PropertyTypes = []string{
	"House", "Apartment", "Condo", "Townhouse", "Studio", "Loft", "Land", "Commercial",
}

// PropertyStatuses enumerates listing statuses.
var PropertyStatuses = []string{
	"For Sale", "For Rent", "Sold", "Pending",
}

// RentalStatuses is the status facet for the rentals surface.
var RentalStatuses = []string{"For Rent"}

// RentalTypes is the type facet for the rentals surface (no Land/Commercial).
var RentalTypes = []string{
	"Apartment", "House", "Condo", "Townhouse", "Studio", "Loft",
}

// Amenities is the canonical amenity list for properties.
var Amenities = []string{
	"Swimming Pool", "Gym", "Parking", "Balcony", "Garden", "Fireplace",
	"Air Conditioning", "Heating", "Dishwasher", "Washer/Dryer", "Pet Friendly",
	"Furnished", "Hardwood Floors", "Granite Countertops", "Walk-in Closet",
	"High Ceilings", "City View", "Mountain View", "Ocean View", "Rooftop Access",
}

// RentalAmenities extends Amenities with rental-building extras.
var RentalAmenities = append(append([]string{}, Amenities...),
	"Concierge", "Doorman", "Elevator", "Laundry Room", "Storage",
)

// Features is the canonical feature list.
var Features = []string{
	"Open Floor Plan", "Modern Kitchen", "Updated Bathroom", "New Appliances",
	"Energy Efficient", "Smart Home", "Security System", "Cable Ready",
	"High-Speed Internet", "Laundry Room", "Storage Space", "Patio",
	"Deck", "Garage", "Basement", "Attic", "Central Air", "Forced Air Heating",
}

// City is a seed city with its state and a representative zip code.
type City struct {
	Name  string
	State string
	Zip   string
}

// Cities is the seed-city table used by the generators and the city facet.
var Cities = []City{
	{"New York", "NY", "10001"},
	{"Los Angeles", "CA", "90210"},
	{"Chicago", "IL", "60601"},
	{"Houston", "TX", "77001"},
	{"Phoenix", "AZ", "85001"},
	{"Philadelphia", "PA", "19101"},
	{"San Antonio", "TX", "78201"},
	{"San Diego", "CA", "92101"},
	{"Dallas", "TX", "75201"},
	{"San Jose", "CA", "95101"},
	{"Austin", "TX", "73301"},
	{"Jacksonville", "FL", "32201"},
	{"Fort Worth", "TX", "76101"},
	{"Columbus", "OH", "43201"},
	{"Charlotte", "NC", "28201"},
	{"San Francisco", "CA", "94101"},
	{"Indianapolis", "IN", "46201"},
	{"Seattle", "WA", "98101"},
	{"Denver", "CO", "80201"},
	{"Washington", "DC", "20001"},
}

// CityNames returns the facet list of seed city names.
func CityNames() []string {
	names := make([]string, len(Cities))
	for i, c := range Cities {
		names[i] = c.Name
	}
	return names
}

// Facets is the facet metadata block attached to search responses.
type Facets struct {
	AvailableTypes     []string `json:"availableTypes"`
	AvailableStatuses  []string `json:"availableStatuses"`
	AvailableAmenities []string `json:"availableAmenities"`
	AvailableFeatures  []string `json:"availableFeatures"`
	AvailableCities    []string `json:"availableCities"`
}

// PropertyFacets returns the static facet block for the properties surface.
func PropertyFacets() Facets {
	return Facets{
		AvailableTypes:     PropertyTypes,
		AvailableStatuses:  PropertyStatuses,
		AvailableAmenities: Amenities,
		AvailableFeatures:  Features,
		AvailableCities:    CityNames(),
	}
}

// RentalFacets returns the static facet block for the rentals surface.
func RentalFacets() Facets {
	return Facets{
		AvailableTypes:     RentalTypes,
		AvailableStatuses:  RentalStatuses,
		AvailableAmenities: RentalAmenities,
		AvailableFeatures:  Features,
		AvailableCities:    CityNames(),
	}
}

// MarketInfo is per-city rental market reference data.
type MarketInfo struct {
	AverageRent  int     `json:"averageRent"`
	MedianRent   int     `json:"medianRent"`
	PricePerSqft float64 `json:"pricePerSqft"`
	MarketTrend  string  `json:"marketTrend"`
}

// MarketData is the rental market table keyed by city name.
var MarketData = map[string]MarketInfo{
	"New York":      {3500, 3200, 4.5, "stable"},
	"Los Angeles":   {2800, 2600, 3.2, "rising"},
	"Chicago":       {2200, 2000, 2.1, "stable"},
	"Houston":       {1800, 1650, 1.8, "rising"},
	"Phoenix":       {1900, 1750, 1.9, "rising"},
	"Philadelphia":  {2000, 1850, 2.0, "stable"},
	"San Antonio":   {1600, 1500, 1.6, "rising"},
	"San Diego":     {3000, 2800, 3.5, "rising"},
	"Dallas":        {1900, 1750, 1.9, "rising"},
	"San Jose":      {3800, 3500, 4.2, "stable"},
	"Austin":        {2200, 2000, 2.3, "rising"},
	"Jacksonville":  {1500, 1400, 1.5, "stable"},
	"Fort Worth":    {1700, 1600, 1.7, "rising"},
	"Columbus":      {1400, 1300, 1.4, "stable"},
	"Charlotte":     {1600, 1500, 1.6, "rising"},
	"San Francisco": {4200, 3800, 5.2, "stable"},
	"Indianapolis":  {1300, 1200, 1.3, "stable"},
	"Seattle":       {2800, 2600, 3.1, "rising"},
	"Denver":        {2400, 2200, 2.4, "rising"},
	"Washington":    {3200, 3000, 3.8, "stable"},
}
