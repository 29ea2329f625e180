package handlers

import (
	"errors"
	"time"

	"github.com/estatery/listings/internal/listing"
	"github.com/estatery/listings/internal/utils"
	"github.com/gofiber/fiber/v2"
)

// rentalSources is the provenance list surfaced with rental search results.
var rentalSources = []string{"Estatery", "Partner MLS", "Direct Owner"}

// RentalsHandler serves the /api/rentals routes over the in-memory rental
// pool. The pool mirrors the property search semantics exactly; the only
// additions are the sources list and per-city market data.
type RentalsHandler struct {
	Repo      listing.Repository
	Suggester *listing.Suggester
	PageSize  int
	SeedCount int
}

// NewRentalsHandler seeds the rental pool and wires the rental routes.
func NewRentalsHandler(repo listing.Repository, pageSize, seedCount int) *RentalsHandler {
	return &RentalsHandler{
		Repo:      repo,
		Suggester: listing.NewSuggester(repo, listing.RentalAmenities),
		PageSize:  pageSize,
		SeedCount: seedCount,
	}
}

// List handles GET /api/rentals
// @Summary Search rental listings
// @Description Same filter grammar as /properties, plus sources and market data
// @Tags Rentals
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /rentals [get]
func (h *RentalsHandler) List(c *fiber.Ctx) error {
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
		"filters":     listing.RentalFacets(),
		"sources":     rentalSources,
		"marketData":  listing.MarketData,
	}, fiber.StatusOK)
}

// Featured handles GET /api/rentals/featured
// @Summary Featured rental listings
// @Tags Rentals
// @Produce json
// @Param limit query int false "Max results"
// @Success 200 {object} map[string]interface{}
// @Router /rentals/featured [get]
func (h *RentalsHandler) Featured(c *fiber.Ctx) error {
	limit := parseLimit(c, 6, 50)
	items, err := h.Repo.Featured(c.Context(), limit)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.Map{"properties": items}, fiber.StatusOK)
}

// Stats handles GET /api/rentals/stats
// @Summary Rental market statistics
// @Description Per-city rent averages plus national aggregates
// @Tags Rentals
// @Produce json
// @Success 200 {object} listing.MarketStats
// @Router /rentals/stats [get]
func (h *RentalsHandler) Stats(c *fiber.Ctx) error {
	return utils.SuccessResponse(c, listing.ComputeMarketStats(), fiber.StatusOK)
}

// Suggestions handles GET /api/rentals/suggestions
// @Summary Typed rental search suggestions
// @Tags Rentals
// @Produce json
// @Param q query string true "Partial query (min 2 chars)"
// @Param limit query int false "Overall cap"
// @Success 200 {object} map[string]interface{}
// @Router /rentals/suggestions [get]
func (h *RentalsHandler) Suggestions(c *fiber.Ctx) error {
	limit := parseLimit(c, 10, 25)
	suggestions, err := h.Suggester.Suggest(c.Context(), c.Query("q"), limit)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.Map{"suggestions": suggestions}, fiber.StatusOK)
}

// Filters handles GET /api/rentals/filters
// @Summary Static rental facet reference lists
// @Tags Rentals
// @Produce json
// @Success 200 {object} listing.Facets
// @Router /rentals/filters [get]
func (h *RentalsHandler) Filters(c *fiber.Ctx) error {
	return utils.SuccessResponse(c, listing.RentalFacets(), fiber.StatusOK)
}

// GetByID handles GET /api/rentals/:id
// @Summary Rental detail
// @Description Returns the rental and similar rentals; bumps the view count
// @Tags Rentals
// @Produce json
// @Param id path string true "Listing id"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /rentals/{id} [get]
func (h *RentalsHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	item, err := h.Repo.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, listing.ErrNotFound) {
			return utils.NotFoundResponse(c, "Rental not found")
		}
		return err
	}

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

// Seed handles POST /api/rentals/seed
// @Summary Regenerate the rental pool
// @Description Admin only
// @Tags Rentals
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /rentals/seed [post]
func (h *RentalsHandler) Seed(c *fiber.Ctx) error {
	gen := listing.NewGenerator(time.Now().UnixNano())
	items := gen.Rentals(h.SeedCount)
	if err := h.Repo.Seed(c.Context(), items); err != nil {
		return err
	}
	return utils.SuccessResponse(c, fiber.Map{
		"message": "Rentals seeded successfully",
		"count":   len(items),
	}, fiber.StatusOK)
}
