package handlers

import (
	"github.com/estatery/listings/internal/auth"
	"github.com/estatery/listings/internal/middleware"
	"github.com/estatery/listings/internal/models"
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts every API route under /api on the app.
func RegisterRoutes(api fiber.Router, props *PropertiesHandler, rentals *RentalsHandler, users *UsersHandler, authSvc *auth.Service) {
	requireAuth := middleware.RequireAuth(authSvc)
	requireAdmin := middleware.RequireRoles(authSvc, models.RoleAdmin)
	optionalAuth := middleware.OptionalAuth(authSvc)

	// Property routes. Static paths register before /:id so the router does
	// not swallow them as ids.
	p := api.Group("/properties")
	p.Get("/", optionalAuth, props.List)
	p.Get("/featured", props.Featured)
	p.Get("/stats", props.Stats)
	p.Get("/suggestions", props.Suggestions)
	p.Get("/filters", props.Filters)
	p.Post("/seed", requireAuth, requireAdmin, props.Seed)
	p.Get("/:id", optionalAuth, props.GetByID)
	p.Post("/:id/favorite", requireAuth, props.Favorite)
	p.Post("/", requireAuth, props.Create)
	p.Put("/:id", requireAuth, props.Update)
	p.Delete("/:id", requireAuth, props.Delete)

	// Rental routes mirror the property routes.
	r := api.Group("/rentals")
	r.Get("/", optionalAuth, rentals.List)
	r.Get("/featured", rentals.Featured)
	r.Get("/stats", rentals.Stats)
	r.Get("/suggestions", rentals.Suggestions)
	r.Get("/filters", rentals.Filters)
	r.Post("/seed", requireAuth, requireAdmin, rentals.Seed)
	r.Get("/:id", optionalAuth, rentals.GetByID)

	// Account routes.
	u := api.Group("/users")
	u.Post("/register", users.Register)
	u.Post("/login", users.Login)
	u.Post("/refresh-token", users.Refresh)
	u.Post("/forgot-password", users.ForgotPassword)
	u.Post("/logout", requireAuth, users.Logout)
	u.Post("/logout-all", requireAuth, users.LogoutAll)
	u.Get("/me", requireAuth, users.Me)
	u.Put("/change-password", requireAuth, users.ChangePassword)
	u.Get("/", requireAuth, requireAdmin, users.List)
	u.Get("/:id", requireAuth, requireAdmin, users.GetByID)
	u.Put("/:id", requireAuth, requireAdmin, users.Update)
	u.Delete("/:id", requireAuth, requireAdmin, users.Delete)
}
