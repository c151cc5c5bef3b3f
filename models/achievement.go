// models/achievement.go
package models

// AchievementUnlock records that a user completed an achievement. Rows are
// append-only; the unique index makes a second insert for the same pair a
// no-op.
type AchievementUnlock struct {
	ID             uint   `gorm:"primaryKey" json:"-"`
	Username       string `gorm:"not null;uniqueIndex:idx_unlock_user_achievement" json:"username"`
	AchievementID  int    `gorm:"not null;uniqueIndex:idx_unlock_user_achievement;index" json:"achievement_id"`
	CompletionTime int64  `gorm:"not null" json:"completion_time"`
}

func (AchievementUnlock) TableName() string {
	return "achievements"
}
