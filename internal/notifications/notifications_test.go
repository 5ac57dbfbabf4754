package notifications

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/lefthq/left-backend/internal/logger"
	"github.com/lefthq/left-backend/internal/models"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type NotificationsTestSuite struct {
	suite.Suite
	db  *gorm.DB
	svc *Service

	alice models.User
	bob   models.User
}

func (suite *NotificationsTestSuite) SetupSuite() {
	require.NoError(suite.T(), logger.Initialize("error", filepath.Join(suite.T().TempDir(), "test.log")))

	db, err := gorm.Open(sqlite.Open("file:notiftest?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(suite.T(), err)

	sqlDB, err := db.DB()
	require.NoError(suite.T(), err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(suite.T(), db.AutoMigrate(
		&models.User{}, &models.Profile{}, &models.Notification{},
	))

	suite.db = db
	suite.svc = NewService(db, nil)
}

func (suite *NotificationsTestSuite) SetupTest() {
	for _, table := range []string{"notifications", "profiles", "users"} {
		suite.db.Exec("DELETE FROM " + table)
	}

	suite.alice = suite.createUser("alice")
	suite.bob = suite.createUser("bob")
}

func (suite *NotificationsTestSuite) createUser(username string) models.User {
	user := models.User{Email: username + "@test.com"}
	require.NoError(suite.T(), suite.db.Create(&user).Error)
	profile := models.Profile{UserID: user.ID, Username: username}
	require.NoError(suite.T(), suite.db.Create(&profile).Error)
	return user
}

func (suite *NotificationsTestSuite) TestNotifyAndList() {
	suite.svc.Notify(context.Background(), &models.Notification{
		UserID:  suite.alice.ID,
		ActorID: suite.bob.ID,
		Type:    models.NotificationFollow,
	})

	rows, err := suite.svc.List(context.Background(), suite.alice.ID)
	suite.Require().NoError(err)
	suite.Require().Len(rows, 1)
	suite.Equal(models.NotificationFollow, rows[0].Type)
	suite.Equal("bob", rows[0].Actor.Username)
	suite.False(rows[0].Read)
}

func (suite *NotificationsTestSuite) TestNotifySkipsSelfActions() {
	suite.svc.Notify(context.Background(), &models.Notification{
		UserID:  suite.alice.ID,
		ActorID: suite.alice.ID,
		Type:    models.NotificationLike,
	})

	rows, err := suite.svc.List(context.Background(), suite.alice.ID)
	suite.Require().NoError(err)
	suite.Empty(rows)
}

func (suite *NotificationsTestSuite) TestListCapsAtTwenty() {
	for i := 0; i < 25; i++ {
		n := models.Notification{
			UserID:    suite.alice.ID,
			ActorID:   suite.bob.ID,
			Type:      models.NotificationLike,
			CreatedAt: time.Now().Add(-time.Duration(i) * time.Minute),
		}
		require.NoError(suite.T(), suite.db.Create(&n).Error)
	}

	rows, err := suite.svc.List(context.Background(), suite.alice.ID)
	suite.Require().NoError(err)
	suite.Len(rows, ListLimit)

	// Newest first
	for i := 1; i < len(rows); i++ {
		suite.False(rows[i].CreatedAt.After(rows[i-1].CreatedAt))
	}
}

func (suite *NotificationsTestSuite) TestUnreadCountAndMarkRead() {
	var ids []string
	for i := 0; i < 3; i++ {
		n := models.Notification{
			UserID:  suite.alice.ID,
			ActorID: suite.bob.ID,
			Type:    models.NotificationComment,
		}
		require.NoError(suite.T(), suite.db.Create(&n).Error)
		ids = append(ids, n.ID)
	}

	count, err := suite.svc.UnreadCount(context.Background(), suite.alice.ID)
	suite.Require().NoError(err)
	suite.Equal(int64(3), count)

	require.NoError(suite.T(), suite.svc.MarkRead(context.Background(), suite.alice.ID, ids[0]))
	count, err = suite.svc.UnreadCount(context.Background(), suite.alice.ID)
	suite.Require().NoError(err)
	suite.Equal(int64(2), count)

	require.NoError(suite.T(), suite.svc.MarkAllRead(context.Background(), suite.alice.ID))
	count, err = suite.svc.UnreadCount(context.Background(), suite.alice.ID)
	suite.Require().NoError(err)
	suite.Equal(int64(0), count)
}

func (suite *NotificationsTestSuite) TestMarkReadScopedToOwner() {
	n := models.Notification{
		UserID:  suite.alice.ID,
		ActorID: suite.bob.ID,
		Type:    models.NotificationLike,
	}
	require.NoError(suite.T(), suite.db.Create(&n).Error)

	// Bob cannot mark alice's notification read
	require.NoError(suite.T(), suite.svc.MarkRead(context.Background(), suite.bob.ID, n.ID))

	count, err := suite.svc.UnreadCount(context.Background(), suite.alice.ID)
	suite.Require().NoError(err)
	suite.Equal(int64(1), count)
}

func (suite *NotificationsTestSuite) TestNotifyNeverPropagatesErrors() {
	// Notify swallows insert errors so the triggering write still
	// succeeds; this must not panic even for a recipient that does not
	// exist
	suite.svc.Notify(context.Background(), &models.Notification{
		UserID:  fmt.Sprintf("%s-unknown", suite.alice.ID),
		ActorID: suite.bob.ID,
		Type:    models.NotificationLike,
	})
}

func TestNotificationsTestSuite(t *testing.T) {
	suite.Run(t, new(NotificationsTestSuite))
}
