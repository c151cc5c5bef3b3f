// handlers/character.go - Character routes
package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"smartbeans/achievements"
	"smartbeans/assets"
	"smartbeans/middleware"
	"smartbeans/models"
	"smartbeans/services"
	"smartbeans/utils"
)

// GetCharacter returns the user's character. Unset slots are null.
// GET /api/character
func GetCharacter(c *fiber.Ctx) error {
	username, err := middleware.GetUsername(c)
	if err != nil {
		return err
	}

	ch, err := characterService.Character(c.UserContext(), username)
	if err != nil {
		logger.Error("loading character failed", slog.String("user", username), slog.Any("error", err))
		return fiber.NewError(fiber.StatusServiceUnavailable, "Character unavailable")
	}
	if ch == nil {
		ch = &models.Character{Username: username}
	}
	return c.JSON(ch)
}

// PostCharacter replaces the user's character and counts the change.
// Wearing a locked asset is rejected with 403.
// POST /api/character
func PostCharacter(c *fiber.Ctx) error {
	id, err := middleware.GetIdentity(c)
	if err != nil {
		return err
	}
	username := id.Username

	var ch models.Character
	if err := utils.ParseJSON(c, &ch); err != nil {
		return err
	}
	ch.Username = username

	ctx := c.UserContext()
	unlocked, err := unlockedAssets(c, id)
	if err != nil {
		return err
	}
	slots := map[string]*string{
		assets.SlotHat:   ch.HatID,
		assets.SlotFace:  ch.FaceID,
		assets.SlotShirt: ch.ShirtID,
		assets.SlotPants: ch.PantsID,
	}
	for slot, asset := range slots {
		if asset != nil && !assetCatalog.Wearable(*asset, slot, unlocked) {
			return fiber.NewError(fiber.StatusForbidden, "Asset locked: "+*asset)
		}
	}

	if err := characterService.Save(ctx, &ch); err != nil {
		logger.Error("saving character failed", slog.String("user", username), slog.Any("error", err))
		return fiber.NewError(fiber.StatusServiceUnavailable, "Could not save character")
	}
	if err := userService.IncrementCharChanged(ctx, username); err != nil {
		logger.Warn("counting character change failed", slog.String("user", username), slog.Any("error", err))
	}

	notify(c, achievements.TriggerCharChanged)
	return c.SendStatus(fiber.StatusOK)
}

// GetCharName returns the character's nickname
// GET /api/charname
func GetCharName(c *fiber.Ctx) error {
	username, err := middleware.GetUsername(c)
	if err != nil {
		return err
	}

	user, err := userService.Get(c.UserContext(), username)
	if err != nil {
		logger.Error("loading charname failed", slog.String("user", username), slog.Any("error", err))
		return fiber.NewError(fiber.StatusServiceUnavailable, "User store unavailable")
	}
	return c.JSON(fiber.Map{"charname": user.CharName})
}

// PostCharName sets the character's nickname
// POST /api/charname {"charname": "..."}
func PostCharName(c *fiber.Ctx) error {
	username, err := middleware.GetUsername(c)
	if err != nil {
		return err
	}

	var body struct {
		CharName string `json:"charname"`
	}
	if err := utils.ParseJSON(c, &body); err != nil {
		return err
	}

	err = userService.SetCharName(c.UserContext(), username, body.CharName)
	switch {
	case errors.Is(err, services.ErrInvalidCharName):
		return fiber.NewError(fiber.StatusBadRequest, "Invalid character name")
	case err != nil:
		logger.Error("saving charname failed", slog.String("user", username), slog.Any("error", err))
		return fiber.NewError(fiber.StatusServiceUnavailable, "Could not save character name")
	}

	notify(c, achievements.TriggerNicknameChanged)
	return c.SendStatus(fiber.StatusOK)
}
