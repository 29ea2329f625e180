package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Property type and status enumerations (wire values).
const (
	StatusForSale = "For Sale"
	StatusForRent = "For Rent"
	StatusSold    = "Sold"
	StatusPending = "Pending"
)

// Coordinates is a lat/lng pair, stored flattened under the location prefix.
type Coordinates struct {
	Lat float64 `gorm:"column:lat" json:"lat"`
	Lng float64 `gorm:"column:lng" json:"lng"`
}

// Location is the required address unit of a listing.
type Location struct {
	Address     string      `gorm:"size:255;not null" json:"address"`
	City        string      `gorm:"size:100;not null;index" json:"city"`
	State       string      `gorm:"size:50;not null;index" json:"state"`
	ZipCode     string      `gorm:"size:20;not null" json:"zipCode"`
	Coordinates Coordinates `gorm:"embedded" json:"coordinates"`
}

// PropertyDetails holds the nested detail block of a listing.
type PropertyDetails struct {
	Heating     string   `gorm:"size:50" json:"heating,omitempty"`
	Cooling     string   `gorm:"size:50" json:"cooling,omitempty"`
	Parking     string   `gorm:"size:50" json:"parking,omitempty"`
	HOA         *int     `json:"hoa,omitempty"`
	PropertyTax *int     `json:"propertyTax,omitempty"`
	MLSNumber   *string  `gorm:"size:50" json:"mlsNumber,omitempty"`
}

// Agent is the denormalized listing agent record, not a foreign entity.
type Agent struct {
	Name    string `gorm:"size:100" json:"name"`
	Email   string `gorm:"size:255" json:"email"`
	Phone   string `gorm:"size:50" json:"phone"`
	Company string `gorm:"size:100" json:"company"`
}

// Owner is a denormalized owner reference with no cascading constraints.
type Owner struct {
	ID   string `gorm:"column:owner_id;size:36" json:"id"`
	Name string `gorm:"column:owner_name;size:100" json:"name"`
}

// RentalDetails extends a listing with rental-specific fields. Stored as a
// JSON column; nil means the listing is not a rental.
type RentalDetails struct {
	AvailableDate  time.Time `json:"availableDate"`
	LeaseLength    string    `json:"leaseLength"`
	Deposit        int       `json:"deposit"`
	PetPolicy      string    `json:"petPolicy"`
	Utilities      string    `json:"utilities"`
	Furnished      bool      `json:"furnished"`
	SmokingAllowed bool      `json:"smokingAllowed"`
}

// Value implements driver.Valuer.
func (r *RentalDetails) Value() (driver.Value, error) {
	if r == nil {
		return nil, nil
	}
	b, err := json.Marshal(r)
	return string(b), err
}

// Scan implements sql.Scanner.
func (r *RentalDetails) Scan(value interface{}) error {
	return scanJSON(value, r)
}

// GormDBDataType ensures the correct data type is used for each database driver.
func (*RentalDetails) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	return jsonDBDataType(db)
}

// Listing is the core searchable entity: a property or rental record.
// The status field discriminates sale vs. rental inventory.
type Listing struct {
	ID          string `gorm:"type:char(36);primaryKey" json:"id"`
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Type        string `gorm:"size:50;not null;index" json:"type"`
	Status      string `gorm:"size:50;not null;index;default:'For Sale'" json:"status"`

	Price     int  `gorm:"not null;index" json:"price"`
	Sqft      int  `gorm:"index" json:"sqft"`
	Bedrooms  int  `gorm:"index" json:"bedrooms"`
	Bathrooms int  `json:"bathrooms"`
	YearBuilt int  `json:"yearBuilt,omitempty"`
	LotSize   *int `json:"lotSize,omitempty"`

	Images   StringList `json:"images"`
	Location Location   `gorm:"embedded;embeddedPrefix:location_" json:"location"`

	Amenities StringList `json:"amenities"`
	Features  StringList `json:"features"`

	PropertyDetails PropertyDetails `gorm:"embedded;embeddedPrefix:details_" json:"propertyDetails"`
	Agent           Agent           `gorm:"embedded;embeddedPrefix:agent_" json:"agent"`
	Owner           Owner           `gorm:"embedded" json:"owner"`

	RentalDetails *RentalDetails `json:"rentalDetails,omitempty"`

	Views     int  `gorm:"default:0" json:"views"`
	Favorites int  `gorm:"default:0" json:"favorites"`
	IsActive  bool `gorm:"default:true;index" json:"isActive"`

	// Derived, never stored: price / sqft, absent when sqft is 0.
	PricePerSqft *int `gorm:"-" json:"pricePerSqft,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName overrides the table name for Listing
func (Listing) TableName() string {
	return "listings"
}

// AfterFind populates derived fields on every load.
func (l *Listing) AfterFind(tx *gorm.DB) error {
	l.ComputeDerived()
	return nil
}

// ComputeDerived fills PricePerSqft from price and sqft.
func (l *Listing) ComputeDerived() {
	if l.Sqft > 0 {
		pps := int(float64(l.Price)/float64(l.Sqft) + 0.5)
		l.PricePerSqft = &pps
	} else {
		l.PricePerSqft = nil
	}
}

// FullAddress renders the single-line postal address.
func (l *Listing) FullAddress() string {
	loc := l.Location
	return loc.Address + ", " + loc.City + ", " + loc.State + " " + loc.ZipCode
}
