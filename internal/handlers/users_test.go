package handlers_test

import (
	"bytes"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/estatery/listings/internal/auth"
	"github.com/estatery/listings/internal/handlers"
	"github.com/estatery/listings/internal/listing"
	"github.com/estatery/listings/internal/middleware"
	"github.com/estatery/listings/internal/models"
	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newDBTestApp wires the routes over an in-memory SQLite database so account
// flows run through the GORM user store.
func newDBTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	if err := db.AutoMigrate(&models.Listing{}, &models.User{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	cfg := demoTestConfig()
	cfg.DBType = "sqlite"
	cfg.DBDatabase = ":memory:"
	svc := auth.NewService(cfg, auth.NewGormUserStore(db), auth.NewMemorySessionStore())

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler(cfg)})
	api := app.Group("/api")
	api.Use(middleware.VersionMiddleware())

	props := handlers.NewPropertiesHandler(listing.NewGormStore(db), cfg.PageSize, cfg.SeedCount)
	rentals := handlers.NewRentalsHandler(listing.NewMemoryStore(), cfg.PageSize, cfg.SeedCount)
	users := handlers.NewUsersHandler(svc)
	handlers.RegisterRoutes(api, props, rentals, users, svc)
	return app, db
}

func postJSON(t *testing.T, app *fiber.App, path, token, payload string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest("POST", path, bytes.NewReader([]byte(payload)))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	return resp.StatusCode, decodeBody(t, resp)
}

func TestRegisterLoginFlow(t *testing.T) {
	app, _ := newDBTestApp(t)

	status, body := postJSON(t, app, "/api/users/register", "",
		`{"firstName":"A","lastName":"B","email":"a@x.com","password":"secret1"}`)
	if status != 201 {
		t.Fatalf("Register: expected 201, got %d: %v", status, body)
	}
	user := body["user"].(map[string]interface{})
	if user["role"] != "buyer" {
		t.Errorf("Expected role defaulted to buyer, got %v", user["role"])
	}
	if _, leaked := user["password"]; leaked {
		t.Error("Password hash leaked in register response")
	}
	regAccess := body["tokens"].(map[string]interface{})["accessToken"].(string)

	status, body = postJSON(t, app, "/api/users/login", "",
		`{"email":"a@x.com","password":"secret1"}`)
	if status != 200 {
		t.Fatalf("Login: expected 200, got %d: %v", status, body)
	}
	loginAccess := body["tokens"].(map[string]interface{})["accessToken"].(string)
	if loginAccess == regAccess {
		t.Error("Login must issue a fresh access token")
	}

	// Both tokens open protected routes.
	for _, token := range []string{regAccess, loginAccess} {
		req := httptest.NewRequest("GET", "/api/users/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("GET /me failed: %v", err)
		}
		if resp.StatusCode != 200 {
			t.Errorf("Expected 200 from /me, got %d", resp.StatusCode)
		}
	}
}

func TestRegisterValidation(t *testing.T) {
	app, _ := newDBTestApp(t)

	status, body := postJSON(t, app, "/api/users/register", "",
		`{"firstName":"","lastName":"B","email":"nope","password":"123"}`)
	if status != 400 {
		t.Fatalf("Expected 400, got %d", status)
	}
	fields := body["errors"].([]interface{})
	if len(fields) != 3 {
		t.Errorf("Expected 3 field errors (firstName, email, password), got %v", fields)
	}
}

func TestRegisterDuplicateEmailHTTP(t *testing.T) {
	app, _ := newDBTestApp(t)

	payload := `{"firstName":"A","lastName":"B","email":"a@x.com","password":"secret1"}`
	if status, _ := postJSON(t, app, "/api/users/register", "", payload); status != 201 {
		t.Fatalf("First register failed: %d", status)
	}
	status, body := postJSON(t, app, "/api/users/register", "", payload)
	if status != 400 {
		t.Fatalf("Expected 400 for duplicate email, got %d", status)
	}
	if body["code"] != "USER_EXISTS" {
		t.Errorf("Expected USER_EXISTS, got %v", body["code"])
	}
}

func TestRefreshTokenFlow(t *testing.T) {
	app, _ := newDBTestApp(t)

	_, body := postJSON(t, app, "/api/users/register", "",
		`{"firstName":"A","lastName":"B","email":"a@x.com","password":"secret1"}`)
	tokens := body["tokens"].(map[string]interface{})
	refresh := tokens["refreshToken"].(string)

	status, body := postJSON(t, app, "/api/users/refresh-token", "",
		fmt.Sprintf(`{"refreshToken":%q}`, refresh))
	if status != 200 {
		t.Fatalf("Refresh: expected 200, got %d: %v", status, body)
	}
	newAccess := body["tokens"].(map[string]interface{})["accessToken"].(string)
	if newAccess == tokens["accessToken"] {
		t.Error("Refresh must mint a new access token")
	}

	status, body = postJSON(t, app, "/api/users/refresh-token", "",
		`{"refreshToken":"garbage"}`)
	if status != 401 {
		t.Fatalf("Expected 401 for bad refresh token, got %d", status)
	}
	if body["code"] != "INVALID_REFRESH_TOKEN" {
		t.Errorf("Expected INVALID_REFRESH_TOKEN, got %v", body["code"])
	}
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	app, _ := newDBTestApp(t)

	_, body := postJSON(t, app, "/api/users/register", "",
		`{"firstName":"A","lastName":"B","email":"a@x.com","password":"secret1"}`)
	tokens := body["tokens"].(map[string]interface{})
	access := tokens["accessToken"].(string)
	refresh := tokens["refreshToken"].(string)

	logoutPayload := fmt.Sprintf(`{"refreshToken":%q}`, refresh)
	if status, _ := postJSON(t, app, "/api/users/logout", access, logoutPayload); status != 200 {
		t.Fatalf("Logout failed: %d", status)
	}
	// Idempotent: same token again is still a 200.
	if status, _ := postJSON(t, app, "/api/users/logout", access, logoutPayload); status != 200 {
		t.Fatalf("Second logout should be a no-op 200, got %d", status)
	}

	status, _ := postJSON(t, app, "/api/users/refresh-token", "", logoutPayload)
	if status != 401 {
		t.Errorf("Revoked refresh token must be rejected, got %d", status)
	}
}

func TestChangePasswordHTTP(t *testing.T) {
	app, _ := newDBTestApp(t)

	_, body := postJSON(t, app, "/api/users/register", "",
		`{"firstName":"A","lastName":"B","email":"a@x.com","password":"secret1"}`)
	access := body["tokens"].(map[string]interface{})["accessToken"].(string)

	req := httptest.NewRequest("PUT", "/api/users/change-password",
		bytes.NewReader([]byte(`{"currentPassword":"secret1","newPassword":"secret2"}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+access)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Change password failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("Expected 200, got %d: %v", resp.StatusCode, decodeBody(t, resp))
	}

	if status, _ := postJSON(t, app, "/api/users/login", "", `{"email":"a@x.com","password":"secret1"}`); status != 401 {
		t.Errorf("Old password must stop working, got %d", status)
	}
	if status, _ := postJSON(t, app, "/api/users/login", "", `{"email":"a@x.com","password":"secret2"}`); status != 200 {
		t.Errorf("New password must work, got %d", status)
	}
}

func TestForgotPasswordNeutralResponse(t *testing.T) {
	app, _ := newDBTestApp(t)
	postJSON(t, app, "/api/users/register", "",
		`{"firstName":"A","lastName":"B","email":"a@x.com","password":"secret1"}`)

	_, known := postJSON(t, app, "/api/users/forgot-password", "", `{"email":"a@x.com"}`)
	_, unknown := postJSON(t, app, "/api/users/forgot-password", "", `{"email":"ghost@x.com"}`)
	if known["message"] != unknown["message"] {
		t.Errorf("Forgot-password must not reveal account existence: %v vs %v",
			known["message"], unknown["message"])
	}
}

func TestAdminUserManagement(t *testing.T) {
	app, db := newDBTestApp(t)

	_, body := postJSON(t, app, "/api/users/register", "",
		`{"firstName":"A","lastName":"B","email":"admin@x.com","password":"secret1"}`)
	adminAccess := body["tokens"].(map[string]interface{})["accessToken"].(string)
	adminID := body["user"].(map[string]interface{})["id"].(string)

	// Buyers cannot list accounts.
	req := httptest.NewRequest("GET", "/api/users", nil)
	req.Header.Set("Authorization", "Bearer "+adminAccess)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != 403 {
		t.Fatalf("Expected 403 before promotion, got %d", resp.StatusCode)
	}

	// Promote directly in the store; role changes apply on the next token use.
	if err := db.Model(&models.User{}).Where("id = ?", adminID).Update("role", models.RoleAdmin).Error; err != nil {
		t.Fatalf("Failed to promote user: %v", err)
	}

	postJSON(t, app, "/api/users/register", "",
		`{"firstName":"C","lastName":"D","email":"c@x.com","password":"secret1"}`)

	req = httptest.NewRequest("GET", "/api/users?limit=10", nil)
	req.Header.Set("Authorization", "Bearer "+adminAccess)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("Expected 200 after promotion, got %d", resp.StatusCode)
	}
	listBody := decodeBody(t, resp)
	if listBody["total"].(float64) != 2 {
		t.Errorf("Expected 2 users, got %v", listBody["total"])
	}

	// Deactivate the second user.
	var other models.User
	if err := db.Where("email = ?", "c@x.com").First(&other).Error; err != nil {
		t.Fatalf("Failed to load user: %v", err)
	}
	req = httptest.NewRequest("PUT", "/api/users/"+other.ID,
		bytes.NewReader([]byte(`{"isActive":false}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+adminAccess)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("Expected 200 updating user, got %d", resp.StatusCode)
	}

	status, body := postJSON(t, app, "/api/users/login", "", `{"email":"c@x.com","password":"secret1"}`)
	if status != 401 || body["code"] != "ACCOUNT_DEACTIVATED" {
		t.Errorf("Expected ACCOUNT_DEACTIVATED login failure, got %d %v", status, body["code"])
	}
}

func TestAccountLockoutHTTP(t *testing.T) {
	app, _ := newDBTestApp(t)
	postJSON(t, app, "/api/users/register", "",
		`{"firstName":"A","lastName":"B","email":"a@x.com","password":"secret1"}`)

	for i := 0; i < 5; i++ {
		status, _ := postJSON(t, app, "/api/users/login", "", `{"email":"a@x.com","password":"wrong"}`)
		if status != 401 {
			t.Fatalf("Attempt %d: expected 401, got %d", i+1, status)
		}
	}

	status, body := postJSON(t, app, "/api/users/login", "", `{"email":"a@x.com","password":"secret1"}`)
	if status != 423 {
		t.Fatalf("Expected 423 Locked, got %d", status)
	}
	if body["code"] != "ACCOUNT_LOCKED" {
		t.Errorf("Expected ACCOUNT_LOCKED, got %v", body["code"])
	}
}
