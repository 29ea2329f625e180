package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// queryValues flattens the request query string into a multi-value map,
// preserving repeated keys.
func queryValues(c *fiber.Ctx) map[string][]string {
	out := make(map[string][]string)
	args := c.Context().QueryArgs()
	args.VisitAll(func(key, value []byte) {
		k := string(key)
		out[k] = append(out[k], string(value))
	})
	return out
}

// parsePage reads page/limit query params, clamping to sane bounds.
// defaultLimit applies when limit is absent or invalid.
func parsePage(c *fiber.Ctx, defaultLimit int) (page, limit int) {
	page = 1
	limit = defaultLimit

	if v := strings.TrimSpace(c.Query("page")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	if v := strings.TrimSpace(c.Query("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

// parseLimit reads a bare limit param with a default and a hard cap.
func parseLimit(c *fiber.Ctx, def, max int) int {
	v := strings.TrimSpace(c.Query("limit"))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	if n > max {
		return max
	}
	return n
}
