// models/user.go
package models

import (
	"time"
)

// User is created on the first authenticated request. The row count is the
// denominator of the achievement unlock frequency.
type User struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Username    string `gorm:"uniqueIndex;not null" json:"username"`
	DisplayName string `json:"display_name"`
	CharName    string `json:"charname"`

	// Counters
	CharChanged int `gorm:"default:0" json:"char_changed"`
	TotalScore  int `gorm:"default:0;index" json:"total_score"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	LastLogin time.Time `json:"last_login"`
}
