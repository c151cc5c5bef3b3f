// handlers/level.go - Level routes
package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"smartbeans/level"
	"smartbeans/middleware"
)

// GetLevelData returns the user's level and skill progress
// GET /api/level_data
func GetLevelData(c *fiber.Ctx) error {
	id, err := middleware.GetIdentity(c)
	if err != nil {
		return err
	}

	ctx := c.UserContext()
	solved, err := progress.SolvedTaskIDs(ctx, id.Token)
	if err != nil {
		logger.Error("loading solved tasks failed", slog.String("user", id.Username), slog.Any("error", err))
		return fiber.NewError(fiber.StatusBadGateway, "Grading service unavailable")
	}

	user, err := skillService.UserPoints(ctx, id.Username, solved)
	if err != nil {
		return err
	}
	max, err := skillService.MaxPoints(ctx)
	if err != nil {
		return err
	}
	return c.JSON(level.Summarize(user, max))
}
