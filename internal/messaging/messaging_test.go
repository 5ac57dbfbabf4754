package messaging

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/lefthq/left-backend/internal/logger"
	"github.com/lefthq/left-backend/internal/models"
	"github.com/lefthq/left-backend/internal/notifications"
	"github.com/lefthq/left-backend/internal/realtime"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// recordingBus captures published events for assertions.
type recordingBus struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	userID string
	event  realtime.InsertEvent
}

func (b *recordingBus) Publish(userID string, event realtime.InsertEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, publishedEvent{userID: userID, event: event})
}

func (b *recordingBus) PublishAll(event realtime.InsertEvent) {
	b.Publish("", event)
}

func (b *recordingBus) forUser(userID string) []publishedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []publishedEvent
	for _, e := range b.events {
		if e.userID == userID {
			out = append(out, e)
		}
	}
	return out
}

type MessagingTestSuite struct {
	suite.Suite
	db  *gorm.DB
	bus *recordingBus
	svc *Service

	alice models.User
	bob   models.User
}

func (suite *MessagingTestSuite) SetupSuite() {
	require.NoError(suite.T(), logger.Initialize("error", filepath.Join(suite.T().TempDir(), "test.log")))

	db, err := gorm.Open(sqlite.Open("file:msgtest?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(suite.T(), err)

	sqlDB, err := db.DB()
	require.NoError(suite.T(), err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(suite.T(), db.AutoMigrate(
		&models.User{}, &models.Profile{},
		&models.Conversation{}, &models.ConversationParticipant{}, &models.Message{},
		&models.Notification{},
	))

	suite.db = db
}

func (suite *MessagingTestSuite) SetupTest() {
	for _, table := range []string{
		"notifications", "messages", "conversation_participants", "conversations", "profiles", "users",
	} {
		suite.db.Exec("DELETE FROM " + table)
	}

	suite.bus = &recordingBus{}
	notifier := notifications.NewService(suite.db, suite.bus)
	suite.svc = NewService(suite.db, suite.bus, notifier)

	suite.alice = suite.createUser("alice")
	suite.bob = suite.createUser("bob")
}

func (suite *MessagingTestSuite) createUser(username string) models.User {
	user := models.User{Email: username + "@test.com"}
	require.NoError(suite.T(), suite.db.Create(&user).Error)
	profile := models.Profile{UserID: user.ID, Username: username}
	require.NoError(suite.T(), suite.db.Create(&profile).Error)
	return user
}

func (suite *MessagingTestSuite) TestResolveCreatesWithSingleParticipant() {
	conversationID, found, err := suite.svc.Resolve(context.Background(), suite.alice.ID, suite.bob.ID)
	suite.Require().NoError(err)
	suite.False(found)
	suite.NotEmpty(conversationID)

	var participants []models.ConversationParticipant
	require.NoError(suite.T(), suite.db.Where("conversation_id = ?", conversationID).Find(&participants).Error)
	suite.Require().Len(participants, 1)
	suite.Equal(suite.alice.ID, participants[0].UserID)
}

func (suite *MessagingTestSuite) TestResolveFindsExistingConversation() {
	conversationID, _, err := suite.svc.Resolve(context.Background(), suite.alice.ID, suite.bob.ID)
	suite.Require().NoError(err)

	// Attach bob so the conversation is discoverable from both sides
	_, err = suite.svc.SendMessage(context.Background(), suite.alice.ID, conversationID, suite.bob.ID, "hi")
	suite.Require().NoError(err)

	again, found, err := suite.svc.Resolve(context.Background(), suite.alice.ID, suite.bob.ID)
	suite.Require().NoError(err)
	suite.True(found)
	suite.Equal(conversationID, again)

	fromBob, found, err := suite.svc.Resolve(context.Background(), suite.bob.ID, suite.alice.ID)
	suite.Require().NoError(err)
	suite.True(found)
	suite.Equal(conversationID, fromBob)
}

func (suite *MessagingTestSuite) TestResolveRaceLeavesDuplicates() {
	// Neither resolve can see the other's conversation while it has a
	// single participant, so both create one. The duplicate is the
	// documented cost of the lazy second-participant design.
	first, found, err := suite.svc.Resolve(context.Background(), suite.alice.ID, suite.bob.ID)
	suite.Require().NoError(err)
	suite.False(found)

	second, found, err := suite.svc.Resolve(context.Background(), suite.bob.ID, suite.alice.ID)
	suite.Require().NoError(err)
	suite.False(found)
	suite.NotEqual(first, second)

	var count int64
	suite.db.Model(&models.Conversation{}).Count(&count)
	suite.Equal(int64(2), count)
}

func (suite *MessagingTestSuite) TestResolveRejectsSelfAndEmpty() {
	_, _, err := suite.svc.Resolve(context.Background(), suite.alice.ID, suite.alice.ID)
	suite.Error(err)

	_, _, err = suite.svc.Resolve(context.Background(), suite.alice.ID, "")
	suite.Error(err)
}

func (suite *MessagingTestSuite) TestSendMessageAttachesRecipientLazily() {
	conversationID, _, err := suite.svc.Resolve(context.Background(), suite.alice.ID, suite.bob.ID)
	suite.Require().NoError(err)

	message, err := suite.svc.SendMessage(context.Background(), suite.alice.ID, conversationID, suite.bob.ID, "first message")
	suite.Require().NoError(err)
	suite.Equal("first message", message.Content)

	var participants []models.ConversationParticipant
	require.NoError(suite.T(), suite.db.Where("conversation_id = ?", conversationID).Find(&participants).Error)
	suite.Len(participants, 2)

	// A second message does not attach a third row
	_, err = suite.svc.SendMessage(context.Background(), suite.alice.ID, conversationID, suite.bob.ID, "second")
	suite.Require().NoError(err)
	require.NoError(suite.T(), suite.db.Where("conversation_id = ?", conversationID).Find(&participants).Error)
	suite.Len(participants, 2)
}

func (suite *MessagingTestSuite) TestSendMessageNotifiesRecipient() {
	conversationID, _, err := suite.svc.Resolve(context.Background(), suite.alice.ID, suite.bob.ID)
	suite.Require().NoError(err)

	_, err = suite.svc.SendMessage(context.Background(), suite.alice.ID, conversationID, suite.bob.ID, "hello bob")
	suite.Require().NoError(err)

	var rows []models.Notification
	require.NoError(suite.T(), suite.db.Where("user_id = ?", suite.bob.ID).Find(&rows).Error)
	suite.Require().Len(rows, 1)
	suite.Equal(models.NotificationMessage, rows[0].Type)
	suite.Equal(suite.alice.ID, rows[0].ActorID)

	// Bob gets both the message event and the notification event
	events := suite.bus.forUser(suite.bob.ID)
	suite.Require().Len(events, 2)
	tables := []string{events[0].event.Table, events[1].event.Table}
	suite.Contains(tables, "messages")
	suite.Contains(tables, "notifications")
}

func (suite *MessagingTestSuite) TestSendMessageRequiresParticipant() {
	conversationID, _, err := suite.svc.Resolve(context.Background(), suite.alice.ID, suite.bob.ID)
	suite.Require().NoError(err)

	carol := suite.createUser("carol")
	_, err = suite.svc.SendMessage(context.Background(), carol.ID, conversationID, suite.alice.ID, "intruding")
	suite.Error(err)
}

func (suite *MessagingTestSuite) TestSendMessageRejectsEmptyContent() {
	conversationID, _, err := suite.svc.Resolve(context.Background(), suite.alice.ID, suite.bob.ID)
	suite.Require().NoError(err)

	_, err = suite.svc.SendMessage(context.Background(), suite.alice.ID, conversationID, suite.bob.ID, "   ")
	suite.Error(err)
}

func (suite *MessagingTestSuite) TestGetMessagesOldestFirst() {
	conversationID, _, err := suite.svc.Resolve(context.Background(), suite.alice.ID, suite.bob.ID)
	suite.Require().NoError(err)

	for _, text := range []string{"one", "two", "three"} {
		_, err = suite.svc.SendMessage(context.Background(), suite.alice.ID, conversationID, suite.bob.ID, text)
		suite.Require().NoError(err)
	}

	messages, err := suite.svc.GetMessages(context.Background(), suite.bob.ID, conversationID)
	suite.Require().NoError(err)
	suite.Require().Len(messages, 3)
	suite.Equal("one", messages[0].Content)
	suite.Equal("three", messages[2].Content)

	// Outsiders cannot read the thread
	carol := suite.createUser("carol")
	_, err = suite.svc.GetMessages(context.Background(), carol.ID, conversationID)
	suite.Error(err)
}

func (suite *MessagingTestSuite) TestListConversations() {
	conversationID, _, err := suite.svc.Resolve(context.Background(), suite.alice.ID, suite.bob.ID)
	suite.Require().NoError(err)
	_, err = suite.svc.SendMessage(context.Background(), suite.alice.ID, conversationID, suite.bob.ID, "latest")
	suite.Require().NoError(err)

	previews, err := suite.svc.ListConversations(context.Background(), suite.alice.ID)
	suite.Require().NoError(err)
	suite.Require().Len(previews, 1)

	suite.Require().NotNil(previews[0].Other)
	suite.Equal("bob", previews[0].Other.Username)
	suite.Require().NotNil(previews[0].LastMessage)
	suite.Equal("latest", previews[0].LastMessage.Content)
}

func TestMessagingTestSuite(t *testing.T) {
	suite.Run(t, new(MessagingTestSuite))
}
