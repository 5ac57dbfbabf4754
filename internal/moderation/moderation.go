package moderation

import (
	"context"
	"fmt"
	"time"

	"github.com/lefthq/left-backend/internal/errors"
	"github.com/lefthq/left-backend/internal/logger"
	"github.com/lefthq/left-backend/internal/metrics"
	"github.com/lefthq/left-backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service backs the admin moderation console.
type Service struct {
	db      *gorm.DB
	perPage int
}

// NewService creates a moderation service. perPage <= 0 falls back to
// PostsPerPage.
func NewService(db *gorm.DB, perPage int) *Service {
	if perPage <= 0 {
		perPage = PostsPerPage
	}
	return &Service{db: db, perPage: perPage}
}

// Page is one rendered page of the moderation table.
type Page struct {
	Posts       []models.Post `json:"posts"`
	TotalCount  int64         `json:"total_count"`
	TotalPages  int           `json:"total_pages"`
	CurrentPage int           `json:"current_page"`
	Window      []int         `json:"window"`
	FlaggedOnly bool          `json:"flagged_only"`
}

// ListPosts returns one page of posts for the console, newest first,
// optionally restricted to flagged ones. The count and row queries run
// concurrently; the page renders only when both have completed.
func (s *Service) ListPosts(ctx context.Context, flaggedOnly bool, page int) (*Page, error) {
	if page < 1 {
		page = 1
	}

	countChan := make(chan error, 1)
	rowsChan := make(chan error, 1)

	var totalCount int64
	go func() {
		q := s.db.WithContext(ctx).Model(&models.Post{})
		if flaggedOnly {
			q = q.Where("is_flagged = ?", true)
		}
		countChan <- q.Count(&totalCount).Error
	}()

	var posts []models.Post
	go func() {
		q := s.db.WithContext(ctx).Preload("Author")
		if flaggedOnly {
			q = q.Where("is_flagged = ?", true)
		}
		rowsChan <- q.Order("created_at DESC").
			Limit(s.perPage).
			Offset((page - 1) * s.perPage).
			Find(&posts).Error
	}()

	if err := <-countChan; err != nil {
		<-rowsChan
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}
	if err := <-rowsChan; err != nil {
		return nil, fmt.Errorf("failed to load posts: %w", err)
	}

	totalPages := TotalPages(totalCount, s.perPage)
	if page > totalPages {
		page = totalPages
	}

	return &Page{
		Posts:       posts,
		TotalCount:  totalCount,
		TotalPages:  totalPages,
		CurrentPage: page,
		Window:      PageWindow(totalPages, page),
		FlaggedOnly: flaggedOnly,
	}, nil
}

// FlagPost hides a post from public feeds and records who flagged it
// and why.
func (s *Service) FlagPost(ctx context.Context, postID, moderatorID, reason string) (*models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).Where("id = ?", postID).First(&post).Error; err != nil {
		return nil, errors.NotFound("post")
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"is_flagged":  true,
		"flag_reason": reason,
		"flagged_by":  moderatorID,
		"flagged_at":  now,
	}
	if err := s.db.WithContext(ctx).Model(&post).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to flag post: %w", err)
	}

	post.IsFlagged = true
	post.FlagReason = &reason
	post.FlaggedBy = &moderatorID
	post.FlaggedAt = &now

	label := reason
	if label == "" {
		label = "unspecified"
	}
	metrics.Get().PostsFlaggedTotal.WithLabelValues(label).Inc()
	logger.Log.Info("post flagged",
		logger.WithPostID(postID),
		zap.String("moderator_id", moderatorID),
	)

	return &post, nil
}

// UnflagPost restores a post to public visibility and clears the flag
// metadata.
func (s *Service) UnflagPost(ctx context.Context, postID string) (*models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).Where("id = ?", postID).First(&post).Error; err != nil {
		return nil, errors.NotFound("post")
	}

	updates := map[string]interface{}{
		"is_flagged":  false,
		"flag_reason": nil,
		"flagged_by":  nil,
		"flagged_at":  nil,
	}
	if err := s.db.WithContext(ctx).Model(&post).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to unflag post: %w", err)
	}

	post.IsFlagged = false
	post.FlagReason = nil
	post.FlaggedBy = nil
	post.FlaggedAt = nil

	metrics.Get().PostsUnflaggedTotal.Inc()
	logger.Log.Info("post restored", logger.WithPostID(postID))

	return &post, nil
}
