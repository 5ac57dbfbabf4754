package feed

import (
	"context"
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

type FeedTestSuite struct {
	suite.Suite
	db  *gorm.DB
	svc *Service

	alice models.User
	bob   models.User
	carol models.User
}

func (suite *FeedTestSuite) SetupSuite() {
	require.NoError(suite.T(), logger.Initialize("error", filepath.Join(suite.T().TempDir(), "test.log")))

	db, err := gorm.Open(sqlite.Open("file:feedtest?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(suite.T(), err)

	// Serialize access so the concurrent count lookups queue instead of
	// fighting over the in-memory database
	sqlDB, err := db.DB()
	require.NoError(suite.T(), err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(suite.T(), db.AutoMigrate(
		&models.User{}, &models.Profile{}, &models.Post{},
		&models.Like{}, &models.Comment{}, &models.Follow{},
	))

	suite.db = db
	suite.svc = NewService(db, nil, 50, 0)
}

func (suite *FeedTestSuite) SetupTest() {
	for _, table := range []string{"likes", "comments", "follows", "posts", "profiles", "users"} {
		suite.db.Exec("DELETE FROM " + table)
	}

	suite.alice = suite.createUser("alice")
	suite.bob = suite.createUser("bob")
	suite.carol = suite.createUser("carol")
}

func (suite *FeedTestSuite) createUser(username string) models.User {
	user := models.User{Email: username + "@test.com"}
	require.NoError(suite.T(), suite.db.Create(&user).Error)
	profile := models.Profile{UserID: user.ID, Username: username}
	require.NoError(suite.T(), suite.db.Create(&profile).Error)
	return user
}

func (suite *FeedTestSuite) createPost(author models.User, content string, createdAt time.Time) models.Post {
	post := models.Post{UserID: author.ID, Content: &content, CreatedAt: createdAt}
	require.NoError(suite.T(), suite.db.Create(&post).Error)
	return post
}

func (suite *FeedTestSuite) like(post models.Post, user models.User) {
	require.NoError(suite.T(), suite.db.Create(&models.Like{PostID: post.ID, UserID: user.ID}).Error)
}

func (suite *FeedTestSuite) comment(post models.Post, user models.User) {
	require.NoError(suite.T(), suite.db.Create(&models.Comment{
		PostID: post.ID, UserID: user.ID, Content: "nice",
	}).Error)
}

func (suite *FeedTestSuite) TestForYouRankedByScore() {
	now := time.Now()
	quiet := suite.createPost(suite.alice, "quiet", now)
	popular := suite.createPost(suite.bob, "popular", now.Add(-2*time.Hour))
	middling := suite.createPost(suite.carol, "middling", now.Add(-time.Hour))

	// popular: 2 likes + 1 comment = 7, middling: 1 like = 2, quiet: 0
	suite.like(popular, suite.alice)
	suite.like(popular, suite.carol)
	suite.comment(popular, suite.alice)
	suite.like(middling, suite.bob)

	items, err := suite.svc.FetchForYou(context.Background(), "")
	suite.Require().NoError(err)
	suite.Require().Len(items, 3)

	suite.Equal(popular.ID, items[0].ID)
	suite.Equal(middling.ID, items[1].ID)
	suite.Equal(quiet.ID, items[2].ID)

	suite.Equal(int64(2), items[0].LikeCount)
	suite.Equal(int64(1), items[0].CommentCount)
}

func (suite *FeedTestSuite) TestForYouTiebreakNewestFirst() {
	now := time.Now()
	older := suite.createPost(suite.alice, "older", now.Add(-time.Hour))
	newer := suite.createPost(suite.bob, "newer", now)

	// Equal scores
	suite.like(older, suite.carol)
	suite.like(newer, suite.carol)

	items, err := suite.svc.FetchForYou(context.Background(), "")
	suite.Require().NoError(err)
	suite.Require().Len(items, 2)
	suite.Equal(newer.ID, items[0].ID)
	suite.Equal(older.ID, items[1].ID)
}

func (suite *FeedTestSuite) TestForYouExcludesFlaggedPosts() {
	now := time.Now()
	visible := suite.createPost(suite.alice, "visible", now)
	flagged := suite.createPost(suite.bob, "flagged", now)
	require.NoError(suite.T(), suite.db.Model(&flagged).Update("is_flagged", true).Error)

	items, err := suite.svc.FetchForYou(context.Background(), "")
	suite.Require().NoError(err)
	suite.Require().Len(items, 1)
	suite.Equal(visible.ID, items[0].ID)
}

func (suite *FeedTestSuite) TestForYouLikedByMe() {
	post := suite.createPost(suite.alice, "post", time.Now())
	suite.like(post, suite.bob)

	items, err := suite.svc.FetchForYou(context.Background(), suite.bob.ID)
	suite.Require().NoError(err)
	suite.Require().Len(items, 1)
	suite.True(items[0].LikedByMe)

	items, err = suite.svc.FetchForYou(context.Background(), suite.carol.ID)
	suite.Require().NoError(err)
	suite.False(items[0].LikedByMe)
}

func (suite *FeedTestSuite) TestFollowingFiltersToFolloweesAndSelf() {
	now := time.Now()
	own := suite.createPost(suite.alice, "own", now)
	followed := suite.createPost(suite.bob, "followed", now.Add(-time.Minute))
	stranger := suite.createPost(suite.carol, "stranger", now.Add(-2*time.Minute))

	require.NoError(suite.T(), suite.db.Create(&models.Follow{
		FollowerID: suite.alice.ID, FollowingID: suite.bob.ID,
	}).Error)

	items, err := suite.svc.FetchFollowing(context.Background(), suite.alice.ID)
	suite.Require().NoError(err)
	suite.Require().Len(items, 2)

	// Chronological, not re-ranked
	suite.Equal(own.ID, items[0].ID)
	suite.Equal(followed.ID, items[1].ID)
	for _, it := range items {
		suite.NotEqual(stranger.ID, it.ID)
	}
}

func (suite *FeedTestSuite) TestFollowingEmptyForLonelyViewer() {
	// Others have posts, but the viewer follows nobody and wrote nothing
	suite.createPost(suite.bob, "unrelated", time.Now())

	items, err := suite.svc.FetchFollowing(context.Background(), suite.alice.ID)
	suite.Require().NoError(err)
	suite.Empty(items)
}

func (suite *FeedTestSuite) TestFollowingChronologicalDespiteEngagement() {
	now := time.Now()
	older := suite.createPost(suite.bob, "older-popular", now.Add(-time.Hour))
	newer := suite.createPost(suite.bob, "newer-quiet", now)

	suite.like(older, suite.alice)
	suite.like(older, suite.carol)
	suite.comment(older, suite.carol)

	require.NoError(suite.T(), suite.db.Create(&models.Follow{
		FollowerID: suite.alice.ID, FollowingID: suite.bob.ID,
	}).Error)

	items, err := suite.svc.FetchFollowing(context.Background(), suite.alice.ID)
	suite.Require().NoError(err)
	suite.Require().Len(items, 2)
	suite.Equal(newer.ID, items[0].ID)
	suite.Equal(older.ID, items[1].ID)
}

func TestFeedTestSuite(t *testing.T) {
	suite.Run(t, new(FeedTestSuite))
}
