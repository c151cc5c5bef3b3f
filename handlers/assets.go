// handlers/assets.go - Character asset routes
package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"smartbeans/achievements"
	"smartbeans/middleware"
)

// GetAssets returns the ids of the assets the user has unlocked
// GET /api/assets
func GetAssets(c *fiber.Ctx) error {
	id, err := middleware.GetIdentity(c)
	if err != nil {
		return err
	}

	unlocked, err := unlockedAssets(c, id)
	if err != nil {
		return err
	}
	return c.JSON(unlocked)
}

// unlockedAssets reads the user's progress and applies the asset
// preconditions to it.
func unlockedAssets(c *fiber.Ctx, id achievements.Identity) ([]string, error) {
	ctx := c.UserContext()

	solved, err := progress.SolvedTaskIDs(ctx, id.Token)
	if err != nil {
		logger.Error("loading solved tasks failed", slog.String("user", id.Username), slog.Any("error", err))
		return nil, fiber.NewError(fiber.StatusBadGateway, "Grading service unavailable")
	}
	completed, err := unlocks.CompletedIDs(ctx, id.Username)
	if err != nil {
		logger.Error("loading achievements failed", slog.String("user", id.Username), slog.Any("error", err))
		return nil, fiber.NewError(fiber.StatusServiceUnavailable, "Achievements unavailable")
	}
	return assetCatalog.Unlocked(solved, completed), nil
}
