package auth

import (
	"path/filepath"
	"testing"

	"github.com/lefthq/left-backend/internal/logger"
	"github.com/lefthq/left-backend/internal/models"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type AuthTestSuite struct {
	suite.Suite
	db  *gorm.DB
	svc *Service
}

func (suite *AuthTestSuite) SetupSuite() {
	require.NoError(suite.T(), logger.Initialize("error", filepath.Join(suite.T().TempDir(), "test.log")))

	db, err := gorm.Open(sqlite.Open("file:authtest?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(suite.T(), err)

	sqlDB, err := db.DB()
	require.NoError(suite.T(), err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(suite.T(), db.AutoMigrate(
		&models.User{}, &models.Profile{}, &models.UserRole{},
	))

	suite.db = db
	suite.svc = NewService(db, []byte("test-secret"))
}

func (suite *AuthTestSuite) SetupTest() {
	for _, table := range []string{"user_roles", "profiles", "users"} {
		suite.db.Exec("DELETE FROM " + table)
	}
}

func (suite *AuthTestSuite) register(email, username string) *AuthResponse {
	resp, err := suite.svc.Register(RegisterRequest{
		Email:    email,
		Username: username,
		Password: "hunter2hunter2",
	})
	suite.Require().NoError(err)
	return resp
}

func (suite *AuthTestSuite) TestRegisterCreatesUserAndProfile() {
	resp := suite.register("Alice@Test.com", "Alice")

	suite.NotEmpty(resp.Token)
	suite.Equal("alice@test.com", resp.User.Email)
	suite.Equal("alice", resp.Profile.Username)
	suite.Equal(resp.User.ID, resp.Profile.UserID)
	suite.NotEqual("hunter2hunter2", resp.User.PasswordHash)
}

func (suite *AuthTestSuite) TestRegisterRejectsDuplicates() {
	suite.register("alice@test.com", "alice")

	_, err := suite.svc.Register(RegisterRequest{
		Email: "alice@test.com", Username: "other", Password: "hunter2hunter2",
	})
	suite.Error(err)

	_, err = suite.svc.Register(RegisterRequest{
		Email: "fresh@test.com", Username: "alice", Password: "hunter2hunter2",
	})
	suite.Error(err)
}

func (suite *AuthTestSuite) TestLogin() {
	suite.register("alice@test.com", "alice")

	resp, err := suite.svc.Login(LoginRequest{Email: "alice@test.com", Password: "hunter2hunter2"})
	suite.Require().NoError(err)
	suite.NotEmpty(resp.Token)
	suite.Equal("alice", resp.Profile.Username)

	_, err = suite.svc.Login(LoginRequest{Email: "alice@test.com", Password: "wrong"})
	suite.Error(err)

	_, err = suite.svc.Login(LoginRequest{Email: "nobody@test.com", Password: "hunter2hunter2"})
	suite.Error(err)
}

func (suite *AuthTestSuite) TestValidateToken() {
	resp := suite.register("alice@test.com", "alice")

	user, err := suite.svc.ValidateToken(resp.Token)
	suite.Require().NoError(err)
	suite.Equal(resp.User.ID, user.ID)

	_, err = suite.svc.ValidateToken("not-a-token")
	suite.Error(err)

	other := NewService(suite.db, []byte("different-secret"))
	_, err = other.ValidateToken(resp.Token)
	suite.Error(err)
}

func (suite *AuthTestSuite) TestEffectiveRole() {
	resp := suite.register("alice@test.com", "alice")
	userID := resp.User.ID

	suite.Equal(models.RoleUser, suite.svc.EffectiveRole(userID))

	require.NoError(suite.T(), suite.db.Create(&models.UserRole{
		UserID: userID, Role: models.RoleModerator,
	}).Error)
	suite.Equal(models.RoleModerator, suite.svc.EffectiveRole(userID))

	// Admin wins over moderator
	require.NoError(suite.T(), suite.db.Create(&models.UserRole{
		UserID: userID, Role: models.RoleAdmin,
	}).Error)
	suite.Equal(models.RoleAdmin, suite.svc.EffectiveRole(userID))
}

func TestAuthTestSuite(t *testing.T) {
	suite.Run(t, new(AuthTestSuite))
}
