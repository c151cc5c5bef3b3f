// services/character_service.go - Character persistence
package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"smartbeans/models"
)

// CharacterService stores user characters.
type CharacterService struct {
	db *gorm.DB
}

func NewCharacterService(db *gorm.DB) *CharacterService {
	return &CharacterService{db: db}
}

// Character returns the user's character, or nil if none was saved yet.
func (s *CharacterService) Character(ctx context.Context, username string) (*models.Character, error) {
	var ch models.Character
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&ch).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load character of %s: %w", username, err)
	}
	return &ch, nil
}

// Save replaces every slot of the user's character.
func (s *CharacterService) Save(ctx context.Context, ch *models.Character) error {
	if ch.Username == "" {
		return errors.New("character without username")
	}
	if err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "username"}},
			UpdateAll: true,
		}).
		Create(ch).Error; err != nil {
		return fmt.Errorf("save character of %s: %w", ch.Username, err)
	}
	return nil
}
