// handlers/leaderboard.go - Leaderboard by total skill points
package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"smartbeans/level"
	"smartbeans/utils"
)

type leaderboardEntry struct {
	Rank     int    `json:"rank"`
	Username string `json:"username"`
	CharName string `json:"charname"`
	Points   int    `json:"points"`
	Level    int    `json:"level"`
}

// GetLeaderboard returns the users with the most skill points
// GET /api/leaderboard?limit=100
func GetLeaderboard(c *fiber.Ctx) error {
	limit := utils.QueryInt(c, "limit", 100)

	users, err := userService.Leaderboard(c.UserContext(), limit)
	if err != nil {
		logger.Error("loading leaderboard failed", slog.Any("error", err))
		return fiber.NewError(fiber.StatusServiceUnavailable, "Failed to fetch leaderboard")
	}

	entries := make([]leaderboardEntry, 0, len(users))
	for i, u := range users {
		entries = append(entries, leaderboardEntry{
			Rank:     i + 1,
			Username: u.Username,
			CharName: u.CharName,
			Points:   u.TotalScore,
			Level:    level.PointsToLevel(u.TotalScore),
		})
	}
	return utils.JSONSuccess(c, fiber.Map{"users": entries})
}
