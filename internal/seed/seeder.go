// Package seed fills a development database with realistic data.
package seed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/lefthq/left-backend/internal/logger"
	"github.com/lefthq/left-backend/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	_ = gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{db: db}
}

// SeedDev creates users, posts, likes, comments, follows, and a few
// conversations. The password for every seeded account is "password123".
func (s *Seeder) SeedDev() error {
	logger.Log.Info("creating users")
	users, err := s.seedUsers(40)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	logger.Log.Info("creating posts")
	posts, err := s.seedPosts(users, 200)
	if err != nil {
		return fmt.Errorf("failed to seed posts: %w", err)
	}

	logger.Log.Info("creating engagement")
	if err := s.seedEngagement(users, posts); err != nil {
		return fmt.Errorf("failed to seed engagement: %w", err)
	}

	logger.Log.Info("creating follows")
	if err := s.seedFollows(users); err != nil {
		return fmt.Errorf("failed to seed follows: %w", err)
	}

	logger.Log.Info("creating conversations")
	if err := s.seedConversations(users); err != nil {
		return fmt.Errorf("failed to seed conversations: %w", err)
	}

	logger.Log.Info("seeding complete",
		zap.Int("users", len(users)),
		zap.Int("posts", len(posts)),
	)
	return nil
}

// Clean removes every seeded row. Order respects foreign keys.
func (s *Seeder) Clean() error {
	tables := []interface{}{
		&models.Notification{},
		&models.Message{},
		&models.ConversationParticipant{},
		&models.Conversation{},
		&models.Like{},
		&models.Comment{},
		&models.Follow{},
		&models.Post{},
		&models.UserRole{},
		&models.Profile{},
		&models.User{},
	}
	for _, table := range tables {
		if err := s.db.Where("1 = 1").Delete(table).Error; err != nil {
			return fmt.Errorf("failed to clean table: %w", err)
		}
	}
	return nil
}

func (s *Seeder) seedUsers(n int) ([]models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, n)
	for i := 0; i < n; i++ {
		username := strings.ToLower(gofakeit.Username())
		if len(username) > 24 {
			username = username[:24]
		}
		username = fmt.Sprintf("%s%d", username, i)

		user := models.User{
			Email:        fmt.Sprintf("%s@example.com", username),
			PasswordHash: string(hash),
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, err
		}

		displayName := gofakeit.Name()
		bio := gofakeit.Sentence(10)
		profile := models.Profile{
			UserID:      user.ID,
			Username:    username,
			DisplayName: &displayName,
			Bio:         &bio,
		}
		if err := s.db.Create(&profile).Error; err != nil {
			return nil, err
		}

		users = append(users, user)
	}

	// First user doubles as the admin account
	if len(users) > 0 {
		role := models.UserRole{UserID: users[0].ID, Role: models.RoleAdmin}
		if err := s.db.Create(&role).Error; err != nil {
			return nil, err
		}
	}

	return users, nil
}

func (s *Seeder) seedPosts(users []models.User, n int) ([]models.Post, error) {
	posts := make([]models.Post, 0, n)
	for i := 0; i < n; i++ {
		author := users[rand.Intn(len(users))]
		content := gofakeit.Sentence(gofakeit.Number(5, 25))

		post := models.Post{
			UserID:    author.ID,
			Content:   &content,
			CreatedAt: gofakeit.DateRange(time.Now().AddDate(0, -3, 0), time.Now()),
		}

		// A sliver of flagged content so the moderation console has
		// something to page through
		if gofakeit.Number(1, 20) == 1 {
			reason := gofakeit.RandomString([]string{"spam", "harassment", "off-topic"})
			now := time.Now().UTC()
			post.IsFlagged = true
			post.FlagReason = &reason
			post.FlaggedBy = &users[0].ID
			post.FlaggedAt = &now
		}

		if err := s.db.Create(&post).Error; err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func (s *Seeder) seedEngagement(users []models.User, posts []models.Post) error {
	for _, post := range posts {
		for _, user := range users {
			if gofakeit.Number(1, 4) == 1 {
				like := models.Like{PostID: post.ID, UserID: user.ID}
				if err := s.db.Create(&like).Error; err != nil {
					return err
				}
			}
			if gofakeit.Number(1, 10) == 1 {
				comment := models.Comment{
					PostID:  post.ID,
					UserID:  user.ID,
					Content: gofakeit.Sentence(gofakeit.Number(3, 15)),
				}
				if err := s.db.Create(&comment).Error; err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (s *Seeder) seedFollows(users []models.User) error {
	for _, follower := range users {
		for _, followee := range users {
			if follower.ID == followee.ID {
				continue
			}
			if gofakeit.Number(1, 5) == 1 {
				follow := models.Follow{FollowerID: follower.ID, FollowingID: followee.ID}
				if err := s.db.Create(&follow).Error; err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (s *Seeder) seedConversations(users []models.User) error {
	pairs := len(users) / 4
	for i := 0; i < pairs; i++ {
		a := users[rand.Intn(len(users))]
		b := users[rand.Intn(len(users))]
		if a.ID == b.ID {
			continue
		}

		conversation := models.Conversation{}
		if err := s.db.Create(&conversation).Error; err != nil {
			return err
		}
		for _, userID := range []string{a.ID, b.ID} {
			p := models.ConversationParticipant{ConversationID: conversation.ID, UserID: userID}
			if err := s.db.Create(&p).Error; err != nil {
				return err
			}
		}

		for m := gofakeit.Number(2, 12); m > 0; m-- {
			sender := a.ID
			if gofakeit.Bool() {
				sender = b.ID
			}
			msg := models.Message{
				ConversationID: conversation.ID,
				SenderID:       sender,
				Content:        gofakeit.Sentence(gofakeit.Number(2, 12)),
			}
			if err := s.db.Create(&msg).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
