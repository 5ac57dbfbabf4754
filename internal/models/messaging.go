package models

import (
	"time"

	"gorm.io/gorm"
)

// Conversation is a direct-message thread. Participants are attached
// separately; a direct conversation holds at most two participant rows,
// possibly attached at different times (the second participant is added
// when the first message is sent).
type Conversation struct {
	ID string `gorm:"primaryKey;type:uuid" json:"id"`

	Participants []ConversationParticipant `gorm:"foreignKey:ConversationID" json:"participants,omitempty"`
	Messages     []Message                 `gorm:"foreignKey:ConversationID" json:"messages,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// ConversationParticipant attaches a user to a conversation.
//
// There is deliberately no unique constraint on (user pair): two concurrent
// conversation lookups can each create a conversation before either has its
// second participant, leaving duplicates. Matches upstream behavior.
type ConversationParticipant struct {
	ID             string  `gorm:"primaryKey;type:uuid" json:"id"`
	ConversationID string  `gorm:"not null;index" json:"conversation_id"`
	UserID         string  `gorm:"not null;index" json:"user_id"`
	Profile        Profile `gorm:"foreignKey:UserID;references:UserID" json:"profile,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Message is a single direct message inside a conversation.
type Message struct {
	ID             string  `gorm:"primaryKey;type:uuid" json:"id"`
	ConversationID string  `gorm:"not null;index" json:"conversation_id"`
	SenderID       string  `gorm:"not null;index" json:"sender_id"`
	Sender         Profile `gorm:"foreignKey:SenderID;references:UserID" json:"sender,omitempty"`

	Content string `gorm:"type:text;not null" json:"content"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = generateUUID()
	}
	return nil
}

func (p *ConversationParticipant) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = generateUUID()
	}
	return nil
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = generateUUID()
	}
	return nil
}
