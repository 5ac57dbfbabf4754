package models

import (
	"time"

	"gorm.io/gorm"
)

// NotificationType identifies what triggered a notification.
type NotificationType string

const (
	NotificationLike    NotificationType = "like"
	NotificationComment NotificationType = "comment"
	NotificationFollow  NotificationType = "follow"
	NotificationMessage NotificationType = "message"
)

// Notification records that an actor did something the recipient should
// see. The optional references point at the triggering row.
type Notification struct {
	ID      string           `gorm:"primaryKey;type:uuid" json:"id"`
	UserID  string           `gorm:"not null;index" json:"user_id"` // recipient
	ActorID string           `gorm:"not null;index" json:"actor_id"`
	Actor   Profile          `gorm:"foreignKey:ActorID;references:UserID" json:"actor,omitempty"`
	Type    NotificationType `gorm:"not null" json:"type"`

	PostID    *string `json:"post_id"`
	CommentID *string `json:"comment_id"`
	MessageID *string `json:"message_id"`

	Read bool `gorm:"default:false;index" json:"read"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = generateUUID()
	}
	return nil
}
