// models/system_message.go
package models

// Message types
const (
	MessageAchievementUnlocked = "achievement_unlocked"
)

// SystemMessage is a notification for one user, polled by the frontend or
// pushed over the websocket.
type SystemMessage struct {
	ID      string `gorm:"primaryKey;size:36" json:"id"`
	User    string `gorm:"column:username;not null;index" json:"-"`
	Type    string `gorm:"column:message_type;not null;size:50" json:"type"`
	Content string `gorm:"type:text" json:"content"`
	Time    int64  `gorm:"column:sent_at;not null;index" json:"timestamp"`
}

func (SystemMessage) TableName() string {
	return "system_messages"
}
