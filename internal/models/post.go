package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is a text and/or image post. A flagged post is hidden from public
// feeds and other users' profile views but stays visible to its author and
// to admins.
type Post struct {
	ID     string  `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string  `gorm:"not null;index" json:"user_id"`
	Author Profile `gorm:"foreignKey:UserID;references:UserID" json:"author,omitempty"`

	Content  *string `gorm:"type:text" json:"content"`
	ImageURL *string `json:"image_url"`

	// Moderation
	IsFlagged  bool       `gorm:"default:false;index" json:"is_flagged"`
	FlagReason *string    `gorm:"type:text" json:"flag_reason,omitempty"`
	FlaggedBy  *string    `json:"flagged_by,omitempty"`
	FlaggedAt  *time.Time `json:"flagged_at,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Like marks that a user liked a post, unique per (post, user) pair.
type Like struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	PostID string `gorm:"not null;index;uniqueIndex:idx_likes_post_user" json:"post_id"`
	UserID string `gorm:"not null;index;uniqueIndex:idx_likes_post_user" json:"user_id"`

	CreatedAt time.Time `json:"created_at"`
}

// Comment is a flat (non-threaded) comment on a post.
type Comment struct {
	ID     string  `gorm:"primaryKey;type:uuid" json:"id"`
	PostID string  `gorm:"not null;index" json:"post_id"`
	UserID string  `gorm:"not null;index" json:"user_id"`
	Author Profile `gorm:"foreignKey:UserID;references:UserID" json:"author,omitempty"`

	Content string `gorm:"type:text;not null" json:"content"`

	CreatedAt time.Time `json:"created_at"`
}

// Follow is a directed edge: follower follows following.
type Follow struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	FollowerID  string `gorm:"not null;index;uniqueIndex:idx_follows_pair" json:"follower_id"`
	FollowingID string `gorm:"not null;index;uniqueIndex:idx_follows_pair" json:"following_id"`

	CreatedAt time.Time `json:"created_at"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = generateUUID()
	}
	return nil
}

func (l *Like) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = generateUUID()
	}
	return nil
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = generateUUID()
	}
	return nil
}

func (f *Follow) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = generateUUID()
	}
	return nil
}
