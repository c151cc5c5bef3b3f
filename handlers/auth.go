// handlers/auth.go - Session routes
package handlers

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"smartbeans/achievements"
	"smartbeans/middleware"
	"smartbeans/utils"
)

// PostLogin is called by the frontend after the user signed in. The user
// row was created by the auth middleware; this raises the login trigger.
// POST /api/login
func PostLogin(c *fiber.Ctx) error {
	username, err := middleware.GetUsername(c)
	if err != nil {
		return err
	}

	user, err := userService.Get(c.UserContext(), username)
	if err != nil {
		logger.Error("loading user failed", slog.String("user", username), slog.Any("error", err))
		return fiber.NewError(fiber.StatusServiceUnavailable, "User store unavailable")
	}

	notify(c, achievements.TriggerLogin)

	return utils.JSONSuccess(c, fiber.Map{
		"username":   user.Username,
		"charname":   user.CharName,
		"last_login": user.LastLogin.Format(time.RFC3339),
	})
}

// GetUsername returns the authenticated username
// GET /api/username
func GetUsername(c *fiber.Ctx) error {
	username, err := middleware.GetUsername(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"username": username})
}
