// Package messaging implements direct conversations between two users.
package messaging

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/lefthq/left-backend/internal/errors"
	"github.com/lefthq/left-backend/internal/logger"
	"github.com/lefthq/left-backend/internal/metrics"
	"github.com/lefthq/left-backend/internal/models"
	"github.com/lefthq/left-backend/internal/notifications"
	"github.com/lefthq/left-backend/internal/realtime"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service resolves conversations and moves messages through them.
type Service struct {
	db       *gorm.DB
	bus      realtime.Bus
	notifier *notifications.Service
}

func NewService(db *gorm.DB, bus realtime.Bus, notifier *notifications.Service) *Service {
	if bus == nil {
		bus = realtime.NopBus{}
	}
	return &Service{db: db, bus: bus, notifier: notifier}
}

// Resolve finds the direct conversation between viewer and target, or
// provisions one. A new conversation gets only the viewer attached;
// the target joins when the first message is sent.
//
// The scan walks the viewer's conversations one by one. Two concurrent
// Resolve calls for the same pair can each miss the other's
// single-participant conversation and create duplicates. That race is
// accepted; the orphan is harmless and invisible to the target until a
// message arrives.
func (s *Service) Resolve(ctx context.Context, viewerID, targetID string) (conversationID string, found bool, err error) {
	if viewerID == "" || targetID == "" {
		return "", false, errors.BadRequest("both participants are required")
	}
	if viewerID == targetID {
		return "", false, errors.BadRequest("cannot start a conversation with yourself")
	}

	var mine []models.ConversationParticipant
	err = s.db.WithContext(ctx).
		Where("user_id = ?", viewerID).
		Find(&mine).Error
	if err != nil {
		return "", false, fmt.Errorf("failed to list conversations: %w", err)
	}

	for _, participant := range mine {
		var count int64
		err = s.db.WithContext(ctx).
			Model(&models.ConversationParticipant{}).
			Where("conversation_id = ? AND user_id = ?", participant.ConversationID, targetID).
			Count(&count).Error
		if err != nil {
			return "", false, fmt.Errorf("failed to check participants: %w", err)
		}
		if count > 0 {
			return participant.ConversationID, true, nil
		}
	}

	conversation := &models.Conversation{}
	if err = s.db.WithContext(ctx).Create(conversation).Error; err != nil {
		return "", false, fmt.Errorf("failed to create conversation: %w", err)
	}

	viewer := &models.ConversationParticipant{
		ConversationID: conversation.ID,
		UserID:         viewerID,
	}
	if err = s.db.WithContext(ctx).Create(viewer).Error; err != nil {
		// The empty conversation stays behind; nobody can see it
		return "", false, fmt.Errorf("failed to attach participant: %w", err)
	}

	metrics.Get().ConversationsCreated.Inc()
	logger.Log.Debug("conversation created",
		logger.WithConversationID(conversation.ID),
		logger.WithUserID(viewerID),
	)

	return conversation.ID, false, nil
}

// ConversationPreview is one row of the inbox list.
type ConversationPreview struct {
	Conversation models.Conversation `json:"conversation"`
	Other        *models.Profile     `json:"other,omitempty"`
	LastMessage  *models.Message     `json:"last_message,omitempty"`
}

// ListConversations returns the viewer's conversations with the other
// participant's profile and the latest message, newest activity first.
func (s *Service) ListConversations(ctx context.Context, viewerID string) ([]ConversationPreview, error) {
	var mine []models.ConversationParticipant
	err := s.db.WithContext(ctx).
		Where("user_id = ?", viewerID).
		Find(&mine).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	previews := make([]ConversationPreview, 0, len(mine))
	for _, participant := range mine {
		var conversation models.Conversation
		err = s.db.WithContext(ctx).
			Preload("Participants.Profile").
			Where("id = ?", participant.ConversationID).
			First(&conversation).Error
		if err != nil {
			return nil, fmt.Errorf("failed to load conversation: %w", err)
		}

		preview := ConversationPreview{Conversation: conversation}

		for i := range conversation.Participants {
			if conversation.Participants[i].UserID != viewerID {
				preview.Other = &conversation.Participants[i].Profile
				break
			}
		}

		var last models.Message
		err = s.db.WithContext(ctx).
			Where("conversation_id = ?", conversation.ID).
			Order("created_at DESC").
			First(&last).Error
		if err == nil {
			preview.LastMessage = &last
		} else if err != gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("failed to load last message: %w", err)
		}

		previews = append(previews, preview)
	}

	// Newest activity first; conversations without messages sort by
	// creation time
	sortPreviews(previews)
	return previews, nil
}

func sortPreviews(previews []ConversationPreview) {
	at := func(p ConversationPreview) int64 {
		if p.LastMessage != nil {
			return p.LastMessage.CreatedAt.UnixNano()
		}
		return p.Conversation.CreatedAt.UnixNano()
	}
	sort.SliceStable(previews, func(i, j int) bool {
		return at(previews[i]) > at(previews[j])
	})
}

// GetMessages returns a conversation's messages oldest first. The
// viewer must be a participant.
func (s *Service) GetMessages(ctx context.Context, viewerID, conversationID string) ([]models.Message, error) {
	if err := s.requireParticipant(ctx, viewerID, conversationID); err != nil {
		return nil, err
	}

	var rows []models.Message
	err := s.db.WithContext(ctx).
		Preload("Sender").
		Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	return rows, nil
}

// SendMessage appends a message. If the recipient is not yet attached
// to the conversation, this is the moment they join (lazy second
// participant). recipientID identifies who the viewer is talking to.
func (s *Service) SendMessage(ctx context.Context, viewerID, conversationID, recipientID, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.ValidationError("content", "message content is required")
	}

	if err := s.requireParticipant(ctx, viewerID, conversationID); err != nil {
		return nil, err
	}

	// Attach the recipient if this is the first message
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, recipientID).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check participants: %w", err)
	}
	if count == 0 {
		attach := &models.ConversationParticipant{
			ConversationID: conversationID,
			UserID:         recipientID,
		}
		if err := s.db.WithContext(ctx).Create(attach).Error; err != nil {
			return nil, fmt.Errorf("failed to attach recipient: %w", err)
		}
		logger.Log.Debug("second participant attached",
			logger.WithConversationID(conversationID),
			logger.WithUserID(recipientID),
		)
	}

	message := &models.Message{
		ConversationID: conversationID,
		SenderID:       viewerID,
		Content:        content,
	}
	if err := s.db.WithContext(ctx).Create(message).Error; err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	s.db.WithContext(ctx).Preload("Sender").First(message, "id = ?", message.ID)

	metrics.Get().MessagesSentTotal.Inc()

	s.bus.Publish(recipientID, realtime.InsertEvent{
		Table:   "messages",
		Key:     message.ID,
		Payload: message,
	})

	if s.notifier != nil {
		s.notifier.Notify(ctx, &models.Notification{
			UserID:    recipientID,
			ActorID:   viewerID,
			Type:      models.NotificationMessage,
			MessageID: &message.ID,
		})
	}

	return message, nil
}

func (s *Service) requireParticipant(ctx context.Context, viewerID, conversationID string) error {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.ConversationParticipant{}).
		Where("conversation_id = ? AND user_id = ?", conversationID, viewerID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("failed to check participants: %w", err)
	}
	if count == 0 {
		logger.Log.Warn("non-participant tried to access conversation",
			logger.WithConversationID(conversationID),
			zap.String("viewer_id", viewerID),
		)
		return errors.Forbidden("not a participant in this conversation")
	}
	return nil
}
