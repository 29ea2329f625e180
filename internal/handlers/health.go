package handlers

import (
	"fmt"
	"log"

	"github.com/estatery/listings/internal/config"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// HealthResult represents the result of a health check
type HealthResult struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	Mode         string            `json:"mode"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

// HealthCheck probes the configured backends. db is nil in demo mode.
func HealthCheck(cfg *config.Config, db *gorm.DB) HealthResult {
	result := HealthResult{
		Status:  "healthy",
		Mode:    "persistent",
		Details: make(map[string]string),
	}

	if cfg.DemoMode() {
		result.Mode = "demo"
		result.Database = "none"
		return result
	}

	sqlDB, err := db.DB()
	if err != nil {
		result.Status = "unhealthy"
		result.Database = "error"
		result.ErrorMessage = fmt.Sprintf("Database connection error: %v", err)
		log.Printf("Health check failed - database connection: %v", err)
		return result
	}
	if err := sqlDB.Ping(); err != nil {
		result.Status = "unhealthy"
		result.Database = "unreachable"
		result.ErrorMessage = fmt.Sprintf("Database ping failed: %v", err)
		log.Printf("Health check failed - database ping: %v", err)
		return result
	}

	result.Database = "ok"
	result.Details["database_type"] = cfg.DBType
	result.Details["database_name"] = cfg.DBDatabase
	return result
}

// HealthHandler serves GET /api/health
// @Summary Service health
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResult
// @Failure 503 {object} HealthResult
// @Router /health [get]
func HealthHandler(cfg *config.Config, db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		result := HealthCheck(cfg, db)
		status := fiber.StatusOK
		if result.Status != "healthy" {
			status = fiber.StatusServiceUnavailable
		}
		return c.Status(status).JSON(result)
	}
}
