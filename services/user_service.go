// services/user_service.go - User rows and persisted counters
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"smartbeans/models"
)

// CounterCharChanged counts how often a user saved their character.
const CounterCharChanged = "char_changed"

// MaxCharNameLength bounds the character nickname.
const MaxCharNameLength = 32

var (
	ErrUnknownCounter  = errors.New("unknown counter")
	ErrInvalidCharName = errors.New("invalid character name")
	ErrUserNotFound    = errors.New("user not found")
)

// UserService manages user rows.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// EnsureUser creates the user on first sight and refreshes the last login.
// A new user's character is named after the username.
func (s *UserService) EnsureUser(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).
		Where(models.User{Username: username}).
		Attrs(models.User{DisplayName: username, CharName: username}).
		FirstOrCreate(&user).Error; err != nil {
		return nil, fmt.Errorf("ensure user %s: %w", username, err)
	}

	now := time.Now().UTC()
	if err := s.db.WithContext(ctx).Model(&user).Update("last_login", now).Error; err != nil {
		return nil, fmt.Errorf("touch user %s: %w", username, err)
	}
	user.LastLogin = now
	return &user, nil
}

// Get returns the user row.
func (s *UserService) Get(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", username, err)
	}
	return &user, nil
}

// Counter returns a persisted counter of the user. A missing user has all
// counters at zero.
func (s *UserService) Counter(ctx context.Context, username, name string) (int, error) {
	if name != CounterCharChanged {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCounter, name)
	}

	user, err := s.Get(ctx, username)
	if errors.Is(err, ErrUserNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return user.CharChanged, nil
}

// IncrementCharChanged adds one to the character change counter.
func (s *UserService) IncrementCharChanged(ctx context.Context, username string) error {
	res := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("username = ?", username).
		UpdateColumn("char_changed", gorm.Expr("char_changed + 1"))
	if res.Error != nil {
		return fmt.Errorf("increment char_changed of %s: %w", username, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetCharName stores the character nickname.
func (s *UserService) SetCharName(ctx context.Context, username, name string) error {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > MaxCharNameLength {
		return ErrInvalidCharName
	}

	res := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("username = ?", username).
		Update("char_name", name)
	if res.Error != nil {
		return fmt.Errorf("set charname of %s: %w", username, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetTotalScore stores the user's total skill points for the leaderboard.
func (s *UserService) SetTotalScore(ctx context.Context, username string, score int) error {
	if err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("username = ?", username).
		Update("total_score", score).Error; err != nil {
		return fmt.Errorf("set total score of %s: %w", username, err)
	}
	return nil
}

// Leaderboard returns the users with the highest total score.
func (s *UserService) Leaderboard(ctx context.Context, limit int) ([]models.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	var users []models.User
	if err := s.db.WithContext(ctx).
		Order("total_score DESC, username ASC").
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}
	return users, nil
}
