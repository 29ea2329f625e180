package utils

import (
	"github.com/gofiber/fiber/v2"
)

// SuccessResponse sends a standard success response
func SuccessResponse(c *fiber.Ctx, data interface{}, status int) error {
	return c.Status(status).JSON(data)
}

// MessageResponse sends a success envelope with a human-readable message
func MessageResponse(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": message,
	})
}

// ErrorResponse sends the standard error envelope. code is a stable
// machine-readable identifier; pass "" to omit it.
func ErrorResponse(c *fiber.Ctx, message string, status int, code string) error {
	body := fiber.Map{
		"message": message,
	}
	if code != "" {
		body["code"] = code
	}
	return c.Status(status).JSON(body)
}

// ValidationErrorResponse sends a 400 with per-field messages
func ValidationErrorResponse(c *fiber.Ctx, fields interface{}) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"code":    "VALIDATION_ERROR",
		"errors":  fields,
	})
}

// NotFoundResponse sends a 404 not found response
func NotFoundResponse(c *fiber.Ctx, message string) error {
	return ErrorResponse(c, message, fiber.StatusNotFound, "NOT_FOUND")
}
