// handlers/achievements.go - Achievement routes
package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"smartbeans/achievements"
	"smartbeans/middleware"
	"smartbeans/utils"
)

// Triggers a client may send through the generic trigger route. The other
// triggers are raised by the routes that cause them.
var clientTriggers = map[string]bool{
	achievements.TriggerSubmission: true,
	achievements.TriggerAll:        true,
}

// GetAchievements returns every achievement with the user's progress
// GET /api/achievements
func GetAchievements(c *fiber.Ctx) error {
	username, err := middleware.GetUsername(c)
	if err != nil {
		return err
	}

	list, err := engine.PublicAchievements(c.UserContext(), username)
	if err != nil {
		logger.Error("listing achievements failed", slog.String("user", username), slog.Any("error", err))
		return fiber.NewError(fiber.StatusServiceUnavailable, "Achievements unavailable")
	}
	return c.JSON(list)
}

// PostNotFound is called by the frontend when the user hits a missing page
// POST /api/achievements/404
func PostNotFound(c *fiber.Ctx) error {
	id, err := middleware.GetIdentity(c)
	if err != nil {
		return err
	}
	if _, err := submit(c, id, achievements.TriggerNotFound); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusOK)
}

// PostTrigger evaluates the achievements of a client-side event
// POST /api/achievements/trigger {"trigger": "submission"}
func PostTrigger(c *fiber.Ctx) error {
	id, err := middleware.GetIdentity(c)
	if err != nil {
		return err
	}

	var body struct {
		Trigger string `json:"trigger"`
	}
	if err := utils.ParseJSON(c, &body); err != nil {
		return err
	}
	if !clientTriggers[body.Trigger] {
		return fiber.NewError(fiber.StatusBadRequest, "Unknown trigger")
	}

	admitted, err := submit(c, id, body.Trigger)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"success": true,
		"queued":  !admitted,
	})
}

// submit hands a trigger to the engine. It never waits for the evaluation.
func submit(c *fiber.Ctx, id achievements.Identity, trigger string) (bool, error) {
	admitted, err := engine.Submit(c.UserContext(), id, trigger)
	if err != nil {
		logger.Error("submitting trigger failed",
			slog.String("user", id.Username),
			slog.String("trigger", trigger),
			slog.Any("error", err))
		if errors.Is(err, achievements.ErrPoolClosed) {
			return false, fiber.NewError(fiber.StatusServiceUnavailable, "Server is shutting down")
		}
		return false, fiber.NewError(fiber.StatusInternalServerError, "Could not evaluate achievements")
	}
	return admitted, nil
}

// notify submits a trigger as a side effect of another request. Failures
// are logged and do not fail the request.
func notify(c *fiber.Ctx, trigger string) {
	id, err := middleware.GetIdentity(c)
	if err != nil {
		return
	}
	_, _ = submit(c, id, trigger)
}
