// Package notifications records and serves the activity bell.
package notifications

import (
	"context"
	"fmt"

	"github.com/lefthq/left-backend/internal/logger"
	"github.com/lefthq/left-backend/internal/metrics"
	"github.com/lefthq/left-backend/internal/models"
	"github.com/lefthq/left-backend/internal/realtime"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ListLimit caps the bell dropdown at the most recent entries.
const ListLimit = 20

// Service writes and reads notification rows and pushes realtime
// events to the recipient.
type Service struct {
	db  *gorm.DB
	bus realtime.Bus
}

func NewService(db *gorm.DB, bus realtime.Bus) *Service {
	if bus == nil {
		bus = realtime.NopBus{}
	}
	return &Service{db: db, bus: bus}
}

// Notify records that actor did something the recipient should see.
// Self-actions are dropped; nobody needs a bell for liking their own
// post. Notification failures are logged, never propagated, so the
// triggering write still succeeds.
func (s *Service) Notify(ctx context.Context, n *models.Notification) {
	if n.UserID == n.ActorID {
		return
	}

	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		logger.Log.Warn("failed to create notification",
			zap.String("type", string(n.Type)),
			zap.Error(err))
		return
	}

	metrics.Get().NotificationsCreated.WithLabelValues(string(n.Type)).Inc()

	s.bus.Publish(n.UserID, realtime.InsertEvent{
		Table:   "notifications",
		Key:     n.ID,
		Payload: n,
	})
}

// List returns the recipient's newest notifications with actor
// profiles attached.
func (s *Service) List(ctx context.Context, userID string) ([]models.Notification, error) {
	var rows []models.Notification
	err := s.db.WithContext(ctx).
		Preload("Actor").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(ListLimit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load notifications: %w", err)
	}
	return rows, nil
}

// UnreadCount returns how many unread notifications the user has.
func (s *Service) UnreadCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count notifications: %w", err)
	}
	return count, nil
}

// MarkRead marks a single notification read. Scoped to the owner so
// users cannot touch each other's rows.
func (s *Service) MarkRead(ctx context.Context, userID, notificationID string) error {
	result := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", true)
	if result.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", result.Error)
	}
	return nil
}

// MarkAllRead marks every unread notification for the user read.
func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	err := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true).Error
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}
