// services/notification_service.go - System messages
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"smartbeans/models"
)

// Message is a system message as delivered to clients. Content is raw JSON.
type Message struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Content   json.RawMessage `json:"content"`
	Timestamp int64           `json:"timestamp"`
}

// NotificationService persists system messages and pushes them to open
// websocket connections.
type NotificationService struct {
	db     *gorm.DB
	hub    *Hub
	logger *slog.Logger
	now    func() time.Time
}

func NewNotificationService(db *gorm.DB, hub *Hub, logger *slog.Logger) *NotificationService {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationService{db: db, hub: hub, logger: logger, now: time.Now}
}

// Notify stores a message for username and pushes it live. Failures are
// logged; delivery is best effort.
func (s *NotificationService) Notify(ctx context.Context, username, kind string, payload any) {
	msg, err := s.Send(ctx, username, kind, payload)
	if err != nil {
		s.logger.Error("sending system message failed",
			slog.String("user", username),
			slog.String("type", kind),
			slog.Any("error", err))
		return
	}
	s.logger.Debug("system message sent", slog.String("user", username), slog.String("id", msg.ID))
}

// Send stores and pushes a message and returns it.
func (s *NotificationService) Send(ctx context.Context, username, kind string, payload any) (*Message, error) {
	content, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s message: %w", kind, err)
	}

	row := models.SystemMessage{
		ID:      uuid.NewString(),
		User:    username,
		Type:    kind,
		Content: string(content),
		Time:    s.now().Unix(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("store %s message: %w", kind, err)
	}

	msg := toMessage(row)
	if s.hub != nil {
		s.hub.Send(username, msg)
	}
	return &msg, nil
}

// Messages returns the user's messages newer than since, oldest first.
func (s *NotificationService) Messages(ctx context.Context, username string, since int64) ([]Message, error) {
	var rows []models.SystemMessage
	if err := s.db.WithContext(ctx).
		Where("username = ? AND sent_at > ?", username, since).
		Order("sent_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load messages of %s: %w", username, err)
	}

	out := make([]Message, 0, len(rows))
	for _, r := range rows {
		out = append(out, toMessage(r))
	}
	return out, nil
}

func toMessage(r models.SystemMessage) Message {
	content := json.RawMessage(r.Content)
	if !json.Valid(content) {
		content, _ = json.Marshal(r.Content)
	}
	return Message{ID: r.ID, Type: r.Type, Content: content, Timestamp: r.Time}
}
