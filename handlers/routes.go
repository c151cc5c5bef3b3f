// handlers/routes.go - Route table
package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// SetupRoutes registers the API routes. auth authenticates a request,
// wsAuth a websocket upgrade, and triggerLimit throttles trigger routes.
func SetupRoutes(app *fiber.App, auth, wsAuth, triggerLimit fiber.Handler) {
	api := app.Group("/api")

	// Public routes
	api.Get("/leaderboard", GetLeaderboard)

	// Session
	api.Post("/login", auth, PostLogin)
	api.Get("/username", auth, GetUsername)

	// Achievement routes
	api.Get("/achievements", auth, GetAchievements)
	api.Post("/achievements/404", auth, triggerLimit, PostNotFound)
	api.Post("/achievements/trigger", auth, triggerLimit, PostTrigger)

	// Character routes
	api.Get("/character", auth, GetCharacter)
	api.Post("/character", auth, triggerLimit, PostCharacter)
	api.Get("/charname", auth, GetCharName)
	api.Post("/charname", auth, triggerLimit, PostCharName)
	api.Get("/assets", auth, GetAssets)

	// Progress routes
	api.Get("/level_data", auth, GetLevelData)
	api.Get("/system_messages", auth, GetSystemMessages)

	// Live notifications
	app.Get("/ws", RequireWebSocket, wsAuth, WebSocketHandler)
}
