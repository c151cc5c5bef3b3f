// main.go - smartbeans backend
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"smartbeans/achievements"
	"smartbeans/assets"
	"smartbeans/config"
	"smartbeans/database"
	"smartbeans/grader"
	"smartbeans/handlers"
	"smartbeans/level"
	"smartbeans/middleware"
	"smartbeans/services"
)

func main() {
	// Load environment variables
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: invalid configuration: %v", err)
	}
	slogger := config.NewLogger(cfg)

	// Initialize database
	db := database.InitDB(cfg.DatabaseURL, !cfg.IsProduction())
	defer database.CloseDB()

	// Static data
	catalog, err := achievements.DefaultCatalog()
	if err != nil {
		log.Fatalf("❌ Failed to load achievement catalog: %v", err)
	}
	rules, err := achievements.BuildRegistry(catalog)
	if err != nil {
		log.Fatalf("❌ Failed to build achievement rules: %v", err)
	}
	assetCatalog, err := assets.DefaultCatalog()
	if err != nil {
		log.Fatalf("❌ Failed to load asset catalog: %v", err)
	}
	for _, id := range assetCatalog.AchievementIDs() {
		if _, ok := catalog.Get(id); !ok {
			log.Fatalf("❌ Asset precondition references unknown achievement %d", id)
		}
	}
	calc, err := level.NewDefaultCalculator()
	if err != nil {
		log.Fatalf("❌ Failed to load task statistics: %v", err)
	}

	// Services
	users := services.NewUserService(db)
	unlocks := services.NewUnlockService(db)
	characters := services.NewCharacterService(db)
	skills := services.NewSkillService(calc, users, slogger)
	hub := services.NewHub(slogger)
	notifications := services.NewNotificationService(db, hub, slogger)
	graderClient := grader.New(cfg.GraderURL, cfg.GraderTimeout, slogger)
	defer graderClient.Close()

	engine, err := achievements.NewEngine(achievements.Config{
		Catalog: catalog,
		Rules:   rules,
		Snapshots: &achievements.SnapshotProvider{
			Unlocks:    unlocks,
			Progress:   graderClient,
			Skills:     skills,
			Characters: characters,
			Counters:   users,
		},
		Unlocks:    unlocks,
		Notifier:   notifications,
		Statistics: achievements.NewStatistics(unlocks, cfg.FrequencyTTL),
		Workers:    cfg.AchievementWorkers,
		QueueSize:  cfg.AchievementQueue,
		Logger:     slogger,
	})
	if err != nil {
		log.Fatalf("❌ Failed to start achievement engine: %v", err)
	}

	handlers.Init(handlers.Deps{
		Engine:     engine,
		Users:      users,
		Characters: characters,
		Skills:     skills,
		Messages:   notifications,
		Hub:        hub,
		Progress:   graderClient,
		Unlocks:    unlocks,
		Assets:     assetCatalog,
		Logger:     slogger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	triggerLimiter := middleware.NewRateLimiter(cfg.TriggerRateLimit, cfg.TriggerRateWindow)
	triggerLimiter.StartCleanup(ctx, 10*time.Minute)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler(cfg),
		BodyLimit:    1 * 1024 * 1024, // 1MB
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			path := c.Path()
			return path == "/health" || path == "/metrics" || path == "/ws"
		},
	}))

	handlers.SetupRoutes(app,
		middleware.AuthMiddleware(cfg.JWTSecret, users, slogger),
		middleware.WebSocketAuthMiddleware(cfg.JWTSecret),
		middleware.UserRateLimitMiddleware(triggerLimiter),
	)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":       "healthy",
			"timestamp":    time.Now().Unix(),
			"achievements": catalog.Len(),
		})
	})

	go func() {
		log.Printf("🚀 HTTP server starting on port %s", cfg.Port)
		log.Printf("📊 Environment: %s", cfg.AppEnv)
		log.Printf("🏆 Achievements loaded: %d (%d rule kinds)", catalog.Len(), len(achievements.RuleKinds()))
		log.Printf("⚙️  Achievement workers: %d, queue: %d", cfg.AchievementWorkers, cfg.AchievementQueue)
		log.Printf("🎓 Grading service: %s", cfg.GraderURL)
		log.Printf("🌐 WebSocket available at ws://localhost:%s/ws", cfg.Port)

		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("HTTP server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("🛑 Shutting down...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Error during HTTP shutdown: %v", err)
	}

	// Finish queued achievement runs before the database goes away
	engine.Close()
	log.Println("✅ Achievement engine stopped")
}

func customErrorHandler(cfg *config.Config) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
			message = e.Message
		}

		// Don't expose internal errors in production
		if cfg.IsProduction() && code == 500 {
			message = "An error occurred. Please try again later."
		}

		return c.Status(code).JSON(fiber.Map{
			"success": false,
			"error":   message,
		})
	}
}
