// utils/http.go - JSON response helpers for Fiber
package utils

import (
	"github.com/gofiber/fiber/v2"
)

// JSON sends a JSON response with status.
func JSON(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(data)
}

// JSONError sends a JSON error response
func JSONError(c *fiber.Ctx, status int, message string) error {
	return JSON(c, status, fiber.Map{
		"success": false,
		"error":   message,
	})
}

// JSONSuccess sends a JSON success response. Map data is merged into the
// body, anything else is sent as "data".
func JSONSuccess(c *fiber.Ctx, data interface{}) error {
	response := fiber.Map{
		"success": true,
	}

	switch d := data.(type) {
	case nil:
	case fiber.Map:
		for k, v := range d {
			response[k] = v
		}
	case map[string]interface{}:
		for k, v := range d {
			response[k] = v
		}
	default:
		response["data"] = data
	}

	return JSON(c, fiber.StatusOK, response)
}

// ParseJSON parses the JSON request body into v.
func ParseJSON(c *fiber.Ctx, v interface{}) error {
	if err := c.BodyParser(v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return nil
}

// QueryInt returns an integer query parameter or def.
func QueryInt(c *fiber.Ctx, key string, def int) int {
	return c.QueryInt(key, def)
}
