// database/migrate.go - Database Migration Runner
package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"smartbeans/models"
)

// RunMigrations migrates the connection opened by InitDB.
func RunMigrations() {
	log.Println("🔄 Running database migrations...")

	if err := Migrate(GetDB()); err != nil {
		log.Fatalf("❌ Failed to run migrations: %v", err)
	}

	log.Println("✅ All migrations completed successfully")
}

// Migrate creates the tables and indexes on db.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.AchievementUnlock{},
		&models.Character{},
		&models.SystemMessage{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return createIndexes(db)
}

// createIndexes adds the indexes AutoMigrate cannot express.
func createIndexes(db *gorm.DB) error {
	stmts := []string{
		// Unlock lookups per user
		"CREATE INDEX IF NOT EXISTS idx_achievements_username ON achievements(username)",
		// Polling of system messages
		"CREATE INDEX IF NOT EXISTS idx_system_messages_user_time ON system_messages(username, sent_at)",
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}
