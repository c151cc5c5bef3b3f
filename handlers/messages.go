// handlers/messages.go - System message routes
package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"smartbeans/middleware"
	"smartbeans/utils"
)

// GetSystemMessages returns the user's system messages newer than ?since=
// (unix seconds)
// GET /api/system_messages
func GetSystemMessages(c *fiber.Ctx) error {
	username, err := middleware.GetUsername(c)
	if err != nil {
		return err
	}

	since := utils.QueryInt(c, "since", 0)
	msgs, err := messageService.Messages(c.UserContext(), username, int64(since))
	if err != nil {
		logger.Error("loading system messages failed", slog.String("user", username), slog.Any("error", err))
		return fiber.NewError(fiber.StatusServiceUnavailable, "Messages unavailable")
	}
	return c.JSON(msgs)
}
