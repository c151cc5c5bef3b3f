// handlers/deps.go - Handler dependencies
package handlers

import (
	"context"
	"log/slog"

	"smartbeans/achievements"
	"smartbeans/assets"
	"smartbeans/services"
)

// AchievementEngine accepts triggers and lists a user's achievements.
type AchievementEngine interface {
	Submit(ctx context.Context, id achievements.Identity, trigger string) (bool, error)
	PublicAchievements(ctx context.Context, username string) ([]achievements.PublicAchievement, error)
}

// SolvedSource returns the task ids a user has solved.
type SolvedSource interface {
	SolvedTaskIDs(ctx context.Context, token string) ([]int, error)
}

// CompletedSource returns the ids of a user's completed achievements.
type CompletedSource interface {
	CompletedIDs(ctx context.Context, username string) (map[int]bool, error)
}

// Deps are the services the handlers use.
type Deps struct {
	Engine     AchievementEngine
	Users      *services.UserService
	Characters *services.CharacterService
	Skills     *services.SkillService
	Messages   *services.NotificationService
	Hub        *services.Hub
	Progress   SolvedSource
	Unlocks    CompletedSource
	Assets     *assets.Catalog
	Logger     *slog.Logger
}

var (
	engine           AchievementEngine
	userService      *services.UserService
	characterService *services.CharacterService
	skillService     *services.SkillService
	messageService   *services.NotificationService
	hub              *services.Hub
	progress         SolvedSource
	unlocks          CompletedSource
	assetCatalog     *assets.Catalog
	logger           = slog.Default()
)

// Init wires the handlers. It must be called before the routes are served.
func Init(d Deps) {
	if d.Engine == nil || d.Users == nil {
		panic("handlers: engine and user service are required")
	}
	engine = d.Engine
	userService = d.Users
	characterService = d.Characters
	skillService = d.Skills
	messageService = d.Messages
	hub = d.Hub
	progress = d.Progress
	unlocks = d.Unlocks
	assetCatalog = d.Assets
	if d.Logger != nil {
		logger = d.Logger
	}
}
