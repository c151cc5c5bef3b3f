// services/unlock_service.go - Achievement unlock persistence
package services

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"smartbeans/models"
)

// UnlockService stores achievement unlocks.
type UnlockService struct {
	db *gorm.DB
}

func NewUnlockService(db *gorm.DB) *UnlockService {
	return &UnlockService{db: db}
}

// CompletedIDs returns the ids of the achievements the user has unlocked.
func (s *UnlockService) CompletedIDs(ctx context.Context, username string) (map[int]bool, error) {
	var ids []int
	if err := s.db.WithContext(ctx).
		Model(&models.AchievementUnlock{}).
		Where("username = ?", username).
		Pluck("achievement_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("load unlocks of %s: %w", username, err)
	}

	completed := make(map[int]bool, len(ids))
	for _, id := range ids {
		completed[id] = true
	}
	return completed, nil
}

// RecordUnlock inserts an unlock. A second insert for the same user and
// achievement is ignored by the unique index.
func (s *UnlockService) RecordUnlock(ctx context.Context, username string, id int, at time.Time) error {
	unlock := &models.AchievementUnlock{
		Username:       username,
		AchievementID:  id,
		CompletionTime: at.Unix(),
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "username"}, {Name: "achievement_id"}},
			DoNothing: true,
		}).
		Create(unlock).Error
	if err != nil {
		return fmt.Errorf("record unlock %d for %s: %w", id, username, err)
	}
	return nil
}

// CountByAchievement returns the number of unlocks per achievement id.
func (s *UnlockService) CountByAchievement(ctx context.Context) (map[int]int64, error) {
	var rows []struct {
		AchievementID int
		Count         int64
	}
	if err := s.db.WithContext(ctx).
		Model(&models.AchievementUnlock{}).
		Select("achievement_id, COUNT(*) AS count").
		Group("achievement_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count unlocks: %w", err)
	}

	counts := make(map[int]int64, len(rows))
	for _, r := range rows {
		counts[r.AchievementID] = r.Count
	}
	return counts, nil
}

// CountUsers returns the number of registered users.
func (s *UnlockService) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}
