package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/estatery/listings/internal/auth"
	"github.com/estatery/listings/internal/config"
	"github.com/estatery/listings/internal/handlers"
	"github.com/estatery/listings/internal/listing"
	"github.com/estatery/listings/internal/middleware"
	"github.com/estatery/listings/internal/models"
	"github.com/gofiber/fiber/v2"
)

func demoTestConfig() *config.Config {
	return &config.Config{
		DBType:           "none",
		JWTSecret:        "test-secret",
		JWTRefreshSecret: "test-refresh-secret",
		AccessTokenTTL:   15 * time.Minute,
		RefreshTokenTTL:  7 * 24 * time.Hour,
		MaxLoginAttempts: 5,
		LockDuration:     2 * time.Hour,
		PageSize:         12,
		SeedCount:        20,
	}
}

// newTestApp wires the full route table over in-memory stores.
func newTestApp(propsRepo listing.Repository) (*fiber.App, *auth.Service) {
	cfg := demoTestConfig()
	svc := auth.NewService(cfg, auth.NewMemoryUserStore(), auth.NewMemorySessionStore())

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler(cfg)})
	api := app.Group("/api")
	api.Use(middleware.VersionMiddleware())

	props := handlers.NewPropertiesHandler(propsRepo, cfg.PageSize, cfg.SeedCount)
	rentals := handlers.NewRentalsHandler(listing.NewMemoryStore(), cfg.PageSize, cfg.SeedCount)
	users := handlers.NewUsersHandler(svc)
	handlers.RegisterRoutes(api, props, rentals, users, svc)
	return app, svc
}

func seedListings(t *testing.T, store *listing.MemoryStore, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		l := models.Listing{
			ID:        fmt.Sprintf("prop-%02d", i),
			Title:     fmt.Sprintf("Listing %d", i),
			Type:      "House",
			Status:    models.StatusForSale,
			Price:     200000 + i*10000,
			Sqft:      1500 + i*50,
			Bedrooms:  2 + i%3,
			Bathrooms: 2,
			Location: models.Location{
				Address: fmt.Sprintf("%d Main St", 100+i),
				City:    "Austin",
				State:   "TX",
				ZipCode: "78701",
			},
			Amenities: models.StringList{"Pool", "Garage"},
			IsActive:  true,
		}
		if err := store.Create(t.Context(), &l); err != nil {
			t.Fatalf("Seed listing %d failed: %v", i, err)
		}
	}
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read response body: %v", err)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(data, &body); err != nil {
		t.Fatalf("Failed to decode response %q: %v", data, err)
	}
	return body
}

// registerUser creates an account via the API and returns its access token.
func registerUser(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	payload := fmt.Sprintf(`{"firstName":"A","lastName":"B","email":%q,"password":"secret1"}`, email)
	req := httptest.NewRequest("POST", "/api/users/register", bytes.NewReader([]byte(payload)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Register request failed: %v", err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("Register: expected 201, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	tokens := body["tokens"].(map[string]interface{})
	return tokens["accessToken"].(string)
}

func TestListPropertiesResponseShape(t *testing.T) {
	store := listing.NewMemoryStore()
	seedListings(t, store, 25)
	app, _ := newTestApp(store)

	req := httptest.NewRequest("GET", "/api/properties?sortBy=price&sortOrder=asc", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	body := decodeBody(t, resp)
	if body["total"].(float64) != 25 {
		t.Errorf("Expected total 25, got %v", body["total"])
	}
	if body["totalPages"].(float64) != 3 {
		t.Errorf("Expected 3 pages of 12, got %v", body["totalPages"])
	}
	if body["currentPage"].(float64) != 1 {
		t.Errorf("Expected currentPage 1, got %v", body["currentPage"])
	}
	items := body["properties"].([]interface{})
	if len(items) != 12 {
		t.Errorf("Expected 12 items on page 1, got %d", len(items))
	}
	filters := body["filters"].(map[string]interface{})
	for _, key := range []string{"availableTypes", "availableStatuses", "availableAmenities", "availableFeatures", "availableCities"} {
		if filters[key] == nil {
			t.Errorf("Missing facet list %q", key)
		}
	}
}

func TestListPropertiesBadNumericFilter(t *testing.T) {
	store := listing.NewMemoryStore()
	seedListings(t, store, 3)
	app, _ := newTestApp(store)

	req := httptest.NewRequest("GET", "/api/properties?minPrice=cheap", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("Expected 400 for non-numeric minPrice, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["code"] != "VALIDATION_ERROR" {
		t.Errorf("Expected VALIDATION_ERROR code, got %v", body["code"])
	}
}

func TestAutoSeedOnFirstList(t *testing.T) {
	store := listing.NewMemoryStore()
	app, _ := newTestApp(store)

	req := httptest.NewRequest("GET", "/api/properties", nil)
	resp, err := app.Test(req, 10000)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	body := decodeBody(t, resp)
	if body["total"].(float64) != 20 {
		t.Errorf("Empty store should self-seed 20 listings, got %v", body["total"])
	}
}

func TestCreateAndFetchRoundTrip(t *testing.T) {
	store := listing.NewMemoryStore()
	seedListings(t, store, 1)
	app, _ := newTestApp(store)
	token := registerUser(t, app, "owner@x.com")

	payload := `{
		"title": "Canal View Loft",
		"description": "Bright corner unit",
		"type": "Condo",
		"status": "For Sale",
		"price": 725000,
		"sqft": 1400,
		"bedrooms": 2,
		"bathrooms": 2,
		"location": {"address": "12 Canal St", "city": "Chicago", "state": "IL", "zipCode": "60601"},
		"amenities": ["Pool", "Gym"],
		"features": "Hardwood Floors"
	}`
	req := httptest.NewRequest("POST", "/api/properties", bytes.NewReader([]byte(payload)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("Expected 201, got %d: %v", resp.StatusCode, decodeBody(t, resp))
	}
	created := decodeBody(t, resp)["property"].(map[string]interface{})
	id := created["id"].(string)

	req = httptest.NewRequest("GET", "/api/properties/"+id, nil)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	got := body["property"].(map[string]interface{})

	if got["title"] != "Canal View Loft" || got["price"].(float64) != 725000 {
		t.Errorf("Round trip lost fields: %+v", got)
	}
	loc := got["location"].(map[string]interface{})
	if loc["city"] != "Chicago" {
		t.Errorf("Round trip lost location: %+v", loc)
	}
	// A lone string for an array field is accepted and wrapped.
	features := got["features"].([]interface{})
	if len(features) != 1 || features[0] != "Hardwood Floors" {
		t.Errorf("Expected single-element features list, got %v", features)
	}
	if got["views"].(float64) != 1 {
		t.Errorf("Detail fetch should count one view, got %v", got["views"])
	}
	if body["similarProperties"] == nil {
		t.Error("Detail response missing similarProperties")
	}
}

func TestCreateRejectsNegativeNumbers(t *testing.T) {
	store := listing.NewMemoryStore()
	app, _ := newTestApp(store)
	token := registerUser(t, app, "owner@x.com")

	payload := `{
		"title": "Upside Down House",
		"type": "House",
		"price": 300000,
		"sqft": -1500,
		"bedrooms": -3,
		"bathrooms": -2,
		"yearBuilt": -1990,
		"lotSize": -100,
		"location": {"city": "Austin", "state": "TX"}
	}`
	req := httptest.NewRequest("POST", "/api/properties", bytes.NewReader([]byte(payload)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("Expected 400 for negative numeric fields, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["code"] != "VALIDATION_ERROR" {
		t.Errorf("Expected VALIDATION_ERROR code, got %v", body["code"])
	}
	seen := map[string]bool{}
	for _, e := range body["errors"].([]interface{}) {
		seen[e.(map[string]interface{})["field"].(string)] = true
	}
	for _, f := range []string{"sqft", "bedrooms", "bathrooms", "yearBuilt", "lotSize"} {
		if !seen[f] {
			t.Errorf("Missing validation error for %s, got %v", f, seen)
		}
	}
}

func TestCreateRequiresAuth(t *testing.T) {
	store := listing.NewMemoryStore()
	app, _ := newTestApp(store)

	req := httptest.NewRequest("POST", "/api/properties", bytes.NewReader([]byte(`{"title":"x"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != 401 {
		t.Fatalf("Expected 401 without a token, got %d", resp.StatusCode)
	}
	if code := decodeBody(t, resp)["code"]; code != "NO_TOKEN" {
		t.Errorf("Expected NO_TOKEN code, got %v", code)
	}
}

func TestUpdateForbiddenForNonOwner(t *testing.T) {
	store := listing.NewMemoryStore()
	seedListings(t, store, 1) // owned by nobody
	app, _ := newTestApp(store)
	token := registerUser(t, app, "stranger@x.com")

	req := httptest.NewRequest("PUT", "/api/properties/prop-00", bytes.NewReader([]byte(`{"price":1}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != 403 {
		t.Fatalf("Expected 403 for non-owner update, got %d", resp.StatusCode)
	}
}

func TestFavoriteAddRemove(t *testing.T) {
	store := listing.NewMemoryStore()
	seedListings(t, store, 1)
	app, _ := newTestApp(store)
	token := registerUser(t, app, "fan@x.com")

	do := func(action string) map[string]interface{} {
		payload := fmt.Sprintf(`{"action":%q}`, action)
		req := httptest.NewRequest("POST", "/api/properties/prop-00/favorite", bytes.NewReader([]byte(payload)))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("Favorite %s failed: %v", action, err)
		}
		if resp.StatusCode != 200 {
			t.Fatalf("Favorite %s: expected 200, got %d", action, resp.StatusCode)
		}
		return decodeBody(t, resp)
	}

	if got := do("add")["favorites"].(float64); got != 1 {
		t.Errorf("Expected 1 favorite after add, got %v", got)
	}
	if got := do("remove")["favorites"].(float64); got != 0 {
		t.Errorf("Expected 0 favorites after remove, got %v", got)
	}
	// Remove below zero floors at zero.
	if got := do("remove")["favorites"].(float64); got != 0 {
		t.Errorf("Favorites must not go negative, got %v", got)
	}
}

func TestSeedRequiresAdmin(t *testing.T) {
	store := listing.NewMemoryStore()
	seedListings(t, store, 1)
	app, _ := newTestApp(store)
	token := registerUser(t, app, "buyer@x.com")

	req := httptest.NewRequest("POST", "/api/properties/seed", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != 403 {
		t.Fatalf("Expected 403 for non-admin seed, got %d", resp.StatusCode)
	}
	if code := decodeBody(t, resp)["code"]; code != "INSUFFICIENT_PERMISSIONS" {
		t.Errorf("Expected INSUFFICIENT_PERMISSIONS, got %v", code)
	}
}

func TestRentalsMirrorShapeWithMarketData(t *testing.T) {
	store := listing.NewMemoryStore()
	app, _ := newTestApp(store)

	req := httptest.NewRequest("GET", "/api/rentals", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	for _, key := range []string{"properties", "totalPages", "currentPage", "total", "filters", "sources", "marketData"} {
		if _, ok := body[key]; !ok {
			t.Errorf("Rentals response missing %q", key)
		}
	}
}

func TestSuggestionsEndpoint(t *testing.T) {
	store := listing.NewMemoryStore()
	for i, title := range []string{"Modern Family Home", "Modern Loft"} {
		l := models.Listing{
			ID: fmt.Sprintf("m-%d", i), Title: title, Type: "House",
			Status: models.StatusForSale, Price: 300000,
			Location: models.Location{Address: "1 St", City: "Austin", State: "TX", ZipCode: "78701"},
			IsActive: true,
		}
		if err := store.Create(t.Context(), &l); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	app, _ := newTestApp(store)

	req := httptest.NewRequest("GET", "/api/properties/suggestions?q=Mode&limit=10", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	body := decodeBody(t, resp)
	suggestions := body["suggestions"].([]interface{})
	if len(suggestions) < 2 {
		t.Fatalf("Expected both Modern listings suggested, got %v", suggestions)
	}
	for i, raw := range suggestions[:2] {
		sg := raw.(map[string]interface{})
		if sg["type"] != "property" {
			t.Errorf("Suggestion %d: expected type property first, got %v", i, sg["type"])
		}
	}
}

func TestVersionHeaderEcho(t *testing.T) {
	store := listing.NewMemoryStore()
	seedListings(t, store, 1)
	app, _ := newTestApp(store)

	req := httptest.NewRequest("GET", "/api/properties/filters", nil)
	req.Header.Set("X-Estatery-Version", "1.0")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if got := resp.Header.Get("X-Estatery-Version"); got != "1.0.0" {
		t.Errorf("Expected version alias 1.0 echoed as 1.0.0, got %q", got)
	}
}
