package handlers

import (
	"errors"
	"log"

	"github.com/estatery/listings/internal/config"
	"github.com/estatery/listings/internal/types"
	"github.com/gofiber/fiber/v2"
)

// ErrorHandler renders every error as the {message, code} envelope. Internal
// error detail is masked in production.
func ErrorHandler(cfg *config.Config) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var apiErr *types.APIError
		if errors.As(err, &apiErr) {
			body := fiber.Map{"message": apiErr.Message}
			if apiErr.Code != "" {
				body["code"] = apiErr.Code
			}
			return c.Status(apiErr.Status).JSON(body)
		}

		var verr *types.ValidationError
		if errors.As(err, &verr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Validation failed",
				"code":    "VALIDATION_ERROR",
				"errors":  verr.Fields,
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{
				"message": fiberErr.Message,
			})
		}

		log.Printf("Unhandled error on %s %s: %v", c.Method(), c.OriginalURL(), err)
		body := fiber.Map{"message": "Internal server error", "code": "INTERNAL_ERROR"}
		if !cfg.Production() {
			body["error"] = err.Error()
		}
		return c.Status(fiber.StatusInternalServerError).JSON(body)
	}
}
