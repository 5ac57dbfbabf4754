package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lefthq/left-backend/internal/errors"
	"github.com/lefthq/left-backend/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Service handles registration, login, and token validation.
type Service struct {
	db        *gorm.DB
	jwtSecret []byte
}

func NewService(db *gorm.DB, jwtSecret []byte) *Service {
	return &Service{db: db, jwtSecret: jwtSecret}
}

// RegisterRequest is the signup payload.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=3,max=30"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse carries the issued token plus the user's profile.
type AuthResponse struct {
	Token   string          `json:"token"`
	User    *models.User    `json:"user"`
	Profile *models.Profile `json:"profile"`
}

// Register creates a user, its profile, and issues a token. Email and
// username are stored lowercased.
func (s *Service) Register(req RegisterRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.ToLower(strings.TrimSpace(req.Username))

	var count int64
	s.db.Model(&models.User{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		return nil, errors.AlreadyExists("email")
	}
	s.db.Model(&models.Profile{}).Where("username = ?", username).Count(&count)
	if count > 0 {
		return nil, errors.AlreadyExists("username")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{Email: email, PasswordHash: string(hash)}
	profile := &models.Profile{Username: username}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		profile.UserID = user.ID
		return tx.Create(profile).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Token: token, User: user, Profile: profile}, nil
}

// Login verifies credentials and issues a token.
func (s *Service) Login(req LoginRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, errors.Unauthorized("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.Unauthorized("invalid email or password")
	}

	var profile models.Profile
	s.db.Where("user_id = ?", user.ID).First(&profile)

	token, err := s.generateToken(&user)
	if err != nil {
		return nil, err
	}

	return &AuthResponse{Token: token, User: &user, Profile: &profile}, nil
}

// ValidateToken parses a JWT and loads the user it names.
func (s *Service) ValidateToken(tokenString string) (*models.User, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.Unauthorized("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.Unauthorized("invalid token claims")
	}

	userID, _ := claims["sub"].(string)
	if userID == "" {
		return nil, errors.Unauthorized("invalid token subject")
	}

	var user models.User
	if err := s.db.Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, errors.Unauthorized("user not found")
	}

	return &user, nil
}

// EffectiveRole resolves a user's highest role. Absence of role rows
// means a regular user.
func (s *Service) EffectiveRole(userID string) models.AppRole {
	var roles []models.UserRole
	if err := s.db.Where("user_id = ?", userID).Find(&roles).Error; err != nil {
		return models.RoleUser
	}

	effective := models.RoleUser
	for _, r := range roles {
		switch r.Role {
		case models.RoleAdmin:
			return models.RoleAdmin
		case models.RoleModerator:
			effective = models.RoleModerator
		}
	}
	return effective
}

func (s *Service) generateToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"iat":   time.Now().Unix(),
		"exp":   time.Now().Add(7 * 24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
