package handlers

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/estatery/listings/internal/listing"
	"github.com/estatery/listings/internal/middleware"
	"github.com/estatery/listings/internal/models"
	"github.com/estatery/listings/internal/types"
	"github.com/estatery/listings/internal/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// PropertiesHandler serves the /api/properties routes.
type PropertiesHandler struct {
	Repo      listing.Repository
	Suggester *listing.Suggester
	PageSize  int
	SeedCount int

	seedMu sync.Mutex
}

// NewPropertiesHandler wires the property routes over a listing repository.
func NewPropertiesHandler(repo listing.Repository, pageSize, seedCount int) *PropertiesHandler {
	return &PropertiesHandler{
		Repo:      repo,
		Suggester: listing.NewSuggester(repo, listing.Amenities),
		PageSize:  pageSize,
		SeedCount: seedCount,
	}
}

// ensureSeeded populates an empty store with generated listings so the first
// browse request never returns an empty catalog.
func (h *PropertiesHandler) ensureSeeded(c *fiber.Ctx) error {
	h.seedMu.Lock()
	defer h.seedMu.Unlock()
	n, err := h.Repo.Count(c.Context())
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	gen := listing.NewGenerator(time.Now().UnixNano())
	return h.Repo.Seed(c.Context(), gen.Properties(h.SeedCount))
}

// List handles GET /api/properties
// @Summary Search property listings
// @Description Filter, sort and paginate active property listings
// @Tags Properties
// @Produce json
// @Param search query string false "Free-text search"
// @Param type query string false "Property type (repeatable or comma-separated)"
// @Param status query string false "Listing status"
// @Param minPrice query int false "Minimum price"
// @Param maxPrice query int false "Maximum price"
// @Param city query string false "City substring"
// @Param state query string false "State substring"
// @Param amenities query string false "Required amenities (subset match)"
// @Param page query int false "Page number (1-based)"
// @Param sortBy query string false "Sort field"
// @Param sortOrder query string false "asc or desc"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /properties [get]
func (h *PropertiesHandler) List(c *fiber.Ctx) error {
	if err := h.ensureSeeded(c); err != nil {
		return err
	}

	f, err := listing.ParseFilters(queryValues(c))
	if err != nil {
		return err
	}
	page, limit := parsePage(c, h.PageSize)

	res, err := h.Repo.Search(c.Context(), f, page, limit)
	if err != nil {
		return err
	}

	return utils.SuccessResponse(c, fiber.Map{
		"properties":  res.Items,
		"totalPages":  res.TotalPages,
		"currentPage": res.Page,
		"total":       res.Total,
		"filters":     listing.PropertyFacets(),
	}, fiber.StatusOK)
}

// Featured handles GET /api/properties/featured
// @Summary Featured property listings
// @Tags Properties
// @Produce json
// @Param limit query int false "Max results"
// @Success 200 {object} map[string]interface{}
// @Router /properties/featured [get]
func (h *PropertiesHandler) Featured(c *fiber.Ctx) error {
	if err := h.ensureSeeded(c); err != nil {
		return err
	}
	limit := parseLimit(c, 6, 50)
	items, err := h.Repo.Featured(c.Context(), limit)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.Map{"properties": items}, fiber.StatusOK)
}

// Stats handles GET /api/properties/stats
// @Summary Aggregate listing statistics
// @Tags Properties
// @Produce json
// @Success 200 {object} listing.Stats
// @Router /properties/stats [get]
func (h *PropertiesHandler) Stats(c *fiber.Ctx) error {
	items, err := h.Repo.Active(c.Context())
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, listing.ComputeStats(items), fiber.StatusOK)
}

// Suggestions handles GET /api/properties/suggestions
// @Summary Typed search suggestions
// @Description Property, location and amenity suggestions for a partial query
// @Tags Properties
// @Produce json
// @Param q query string true "Partial query (min 2 chars)"
// @Param limit query int false "Overall cap"
// @Success 200 {object} map[string]interface{}
// @Router /properties/suggestions [get]
func (h *PropertiesHandler) Suggestions(c *fiber.Ctx) error {
	limit := parseLimit(c, 10, 25)
	suggestions, err := h.Suggester.Suggest(c.Context(), c.Query("q"), limit)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.Map{"suggestions": suggestions}, fiber.StatusOK)
}

// Filters handles GET /api/properties/filters
// @Summary Static facet reference lists
// @Tags Properties
// @Produce json
// @Success 200 {object} listing.Facets
// @Router /properties/filters [get]
func (h *PropertiesHandler) Filters(c *fiber.Ctx) error {
	return utils.SuccessResponse(c, listing.PropertyFacets(), fiber.StatusOK)
}

// GetByID handles GET /api/properties/:id
// @Summary Listing detail
// @Description Returns the listing and similar listings; bumps the view count
// @Tags Properties
// @Produce json
// @Param id path string true "Listing id"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /properties/{id} [get]
func (h *PropertiesHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	item, err := h.Repo.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, listing.ErrNotFound) {
			return utils.NotFoundResponse(c, "Property not found")
		}
		return err
	}

	// Every detail fetch counts as a view, repeated fetches included.
	if err := h.Repo.IncrementViews(c.Context(), id); err != nil {
		return err
	}
	item.Views++

	pool, err := h.Repo.Active(c.Context())
	if err != nil {
		return err
	}

	return utils.SuccessResponse(c, fiber.Map{
		"property":          item,
		"similarProperties": listing.Similar(item, pool, 4),
	}, fiber.StatusOK)
}

// favoriteRequest is the POST /:id/favorite body.
type favoriteRequest struct {
	Action string `json:"action"`
}

// Favorite handles POST /api/properties/:id/favorite
// @Summary Add or remove a favorite
// @Tags Properties
// @Accept json
// @Produce json
// @Param id path string true "Listing id"
// @Param body body favoriteRequest true "add or remove"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /properties/{id}/favorite [post]
func (h *PropertiesHandler) Favorite(c *fiber.Ctx) error {
	var req favoriteRequest
	if err := c.BodyParser(&req); err != nil {
		return (&types.ValidationError{}).Add("body", "invalid JSON")
	}

	var delta int
	switch req.Action {
	case "add":
		delta = 1
	case "remove":
		delta = -1
	default:
		return (&types.ValidationError{}).Add("action", "must be \"add\" or \"remove\"")
	}

	count, err := h.Repo.AdjustFavorites(c.Context(), c.Params("id"), delta)
	if err != nil {
		if errors.Is(err, listing.ErrNotFound) {
			return utils.NotFoundResponse(c, "Property not found")
		}
		return err
	}

	msg := "Property added to favorites"
	if delta < 0 {
		msg = "Property removed from favorites"
	}
	return utils.SuccessResponse(c, fiber.Map{
		"message":   msg,
		"favorites": count,
	}, fiber.StatusOK)
}

// validateListing checks required fields and numeric bounds on incoming
// listing payloads.
func validateListing(l *models.Listing) *types.ValidationError {
	verr := &types.ValidationError{}
	if l.Title == "" {
		verr.Add("title", "is required")
	}
	if l.Price <= 0 {
		verr.Add("price", "must be a positive number")
	}
	if l.Type == "" {
		verr.Add("type", "is required")
	} else if !contains(listing.PropertyTypes, l.Type) && !contains(listing.RentalTypes, l.Type) {
		verr.Add("type", fmt.Sprintf("unknown property type %q", l.Type))
	}
	if l.Status != "" && !contains(listing.PropertyStatuses, l.Status) {
		verr.Add("status", fmt.Sprintf("unknown status %q", l.Status))
	}
	if l.Location.City == "" {
		verr.Add("location.city", "is required")
	}
	if l.Location.State == "" {
		verr.Add("location.state", "is required")
	}
	for _, f := range []struct {
		name  string
		value int
	}{
		{"sqft", l.Sqft},
		{"bedrooms", l.Bedrooms},
		{"bathrooms", l.Bathrooms},
		{"yearBuilt", l.YearBuilt},
	} {
		if f.value < 0 {
			verr.Add(f.name, "must not be negative")
		}
	}
	if l.LotSize != nil && *l.LotSize < 0 {
		verr.Add("lotSize", "must not be negative")
	}
	if verr.Any() {
		return verr
	}
	return nil
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// Create handles POST /api/properties
// @Summary Create a listing
// @Tags Properties
// @Accept json
// @Produce json
// @Param body body models.Listing true "Listing"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Security BearerAuth
// @Router /properties [post]
func (h *PropertiesHandler) Create(c *fiber.Ctx) error {
	var l models.Listing
	if err := c.BodyParser(&l); err != nil {
		return (&types.ValidationError{}).Add("body", "invalid JSON")
	}
	if verr := validateListing(&l); verr != nil {
		return verr
	}

	p := middleware.Principal(c)
	l.ID = uuid.NewString()
	l.Owner = models.Owner{ID: p.ID, Name: p.FirstName + " " + p.LastName}
	if l.Status == "" {
		l.Status = models.StatusForSale
	}
	l.Views = 0
	l.Favorites = 0
	l.IsActive = true

	if err := h.Repo.Create(c.Context(), &l); err != nil {
		return err
	}
	l.ComputeDerived()

	return utils.SuccessResponse(c, fiber.Map{
		"message":  "Property created successfully",
		"property": l,
	}, fiber.StatusCreated)
}

// listingUpdate carries the mutable fields of a listing; nil means unchanged.
type listingUpdate struct {
	Title           *string                 `json:"title"`
	Description     *string                 `json:"description"`
	Type            *string                 `json:"type"`
	Status          *string                 `json:"status"`
	Price           *int                    `json:"price"`
	Sqft            *int                    `json:"sqft"`
	Bedrooms        *int                    `json:"bedrooms"`
	Bathrooms       *int                    `json:"bathrooms"`
	YearBuilt       *int                    `json:"yearBuilt"`
	Images          *models.StringList      `json:"images"`
	Location        *models.Location        `json:"location"`
	Amenities       *models.StringList      `json:"amenities"`
	Features        *models.StringList      `json:"features"`
	PropertyDetails *models.PropertyDetails `json:"propertyDetails"`
	Agent           *models.Agent           `json:"agent"`
	RentalDetails   *models.RentalDetails   `json:"rentalDetails"`
	IsActive        *bool                   `json:"isActive"`
}

func (u *listingUpdate) apply(l *models.Listing) {
	if u.Title != nil {
		l.Title = *u.Title
	}
	if u.Description != nil {
		l.Description = *u.Description
	}
	if u.Type != nil {
		l.Type = *u.Type
	}
	if u.Status != nil {
		l.Status = *u.Status
	}
	if u.Price != nil {
		l.Price = *u.Price
	}
	if u.Sqft != nil {
		l.Sqft = *u.Sqft
	}
	if u.Bedrooms != nil {
		l.Bedrooms = *u.Bedrooms
	}
	if u.Bathrooms != nil {
		l.Bathrooms = *u.Bathrooms
	}
	if u.YearBuilt != nil {
		l.YearBuilt = *u.YearBuilt
	}
	if u.Images != nil {
		l.Images = *u.Images
	}
	if u.Location != nil {
		l.Location = *u.Location
	}
	if u.Amenities != nil {
		l.Amenities = *u.Amenities
	}
	if u.Features != nil {
		l.Features = *u.Features
	}
	if u.PropertyDetails != nil {
		l.PropertyDetails = *u.PropertyDetails
	}
	if u.Agent != nil {
		l.Agent = *u.Agent
	}
	if u.RentalDetails != nil {
		l.RentalDetails = u.RentalDetails
	}
	if u.IsActive != nil {
		l.IsActive = *u.IsActive
	}
}

// canModify allows the owner or an admin.
func canModify(c *fiber.Ctx, l *models.Listing) bool {
	p := middleware.Principal(c)
	if p == nil {
		return false
	}
	return p.Role == models.RoleAdmin || l.Owner.ID == p.ID
}

// Update handles PUT /api/properties/:id
// @Summary Update a listing
// @Description Owner or admin only
// @Tags Properties
// @Accept json
// @Produce json
// @Param id path string true "Listing id"
// @Param body body listingUpdate true "Fields to change"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /properties/{id} [put]
func (h *PropertiesHandler) Update(c *fiber.Ctx) error {
	item, err := h.Repo.Get(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, listing.ErrNotFound) {
			return utils.NotFoundResponse(c, "Property not found")
		}
		return err
	}
	if !canModify(c, item) {
		return &types.APIError{
			Status:  fiber.StatusForbidden,
			Message: "You can only modify your own listings.",
			Code:    "INSUFFICIENT_PERMISSIONS",
		}
	}

	var upd listingUpdate
	if err := c.BodyParser(&upd); err != nil {
		return (&types.ValidationError{}).Add("body", "invalid JSON")
	}
	upd.apply(item)
	if verr := validateListing(item); verr != nil {
		return verr
	}

	if err := h.Repo.Update(c.Context(), item); err != nil {
		return err
	}
	item.ComputeDerived()

	return utils.SuccessResponse(c, fiber.Map{
		"message":  "Property updated successfully",
		"property": item,
	}, fiber.StatusOK)
}

// Delete handles DELETE /api/properties/:id
// @Summary Delete a listing
// @Description Owner or admin only
// @Tags Properties
// @Produce json
// @Param id path string true "Listing id"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Security BearerAuth
// @Router /properties/{id} [delete]
func (h *PropertiesHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	item, err := h.Repo.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, listing.ErrNotFound) {
			return utils.NotFoundResponse(c, "Property not found")
		}
		return err
	}
	if !canModify(c, item) {
		return &types.APIError{
			Status:  fiber.StatusForbidden,
			Message: "You can only delete your own listings.",
			Code:    "INSUFFICIENT_PERMISSIONS",
		}
	}

	if err := h.Repo.Delete(c.Context(), id); err != nil {
		return err
	}
	return utils.MessageResponse(c, "Property deleted successfully")
}

// Seed handles POST /api/properties/seed
// @Summary Regenerate the listing catalog
// @Description Admin only; replaces all listings with freshly generated data
// @Tags Properties
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /properties/seed [post]
func (h *PropertiesHandler) Seed(c *fiber.Ctx) error {
	gen := listing.NewGenerator(time.Now().UnixNano())
	items := gen.Properties(h.SeedCount)
	if err := h.Repo.Seed(c.Context(), items); err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.Map{
		"message": "Properties seeded successfully",
		"count":   len(items),
	}, fiber.StatusOK)
}
