package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lefthq/left-backend/internal/logger"
	"github.com/lefthq/left-backend/internal/metrics"
	"github.com/lefthq/left-backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Cache is the slice of the Redis client the feed uses.
// cache.RedisClient satisfies it; tests substitute a recording fake.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	SetEx(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DelPattern(ctx context.Context, pattern string) error
}

// Item is a post enriched with the counts the feed needs to render and
// rank it.
type Item struct {
	models.Post
	LikeCount    int64 `json:"like_count"`
	CommentCount int64 `json:"comment_count"`
	LikedByMe    bool  `json:"liked_by_me"`
}

// Service assembles the home feeds.
type Service struct {
	db       *gorm.DB
	cache    Cache
	pageSize int
	cacheTTL time.Duration
}

// NewService creates a feed service. cache may be nil; caching is then
// skipped entirely.
func NewService(db *gorm.DB, cache Cache, pageSize int, cacheTTL time.Duration) *Service {
	if pageSize <= 0 {
		pageSize = 50
	}
	return &Service{db: db, cache: cache, pageSize: pageSize, cacheTTL: cacheTTL}
}

// FetchForYou returns the most recent non-flagged posts re-ranked by
// engagement score, ties broken newest first. viewerID may be empty for
// anonymous browsing. On failure the feed degrades to empty rather than
// erroring the whole page.
func (s *Service) FetchForYou(ctx context.Context, viewerID string) ([]Item, error) {
	start := time.Now()
	defer func() {
		metrics.Get().FeedGenerationTime.WithLabelValues("for_you").Observe(time.Since(start).Seconds())
	}()

	if items, ok := s.cachedFeed(ctx, "for_you", viewerID); ok {
		return items, nil
	}

	items, err := s.candidates(ctx, viewerID)
	if err != nil {
		logger.Log.Error("for-you feed failed", zap.Error(err))
		return []Item{}, err
	}

	ranked := make([]RankedPost, len(items))
	for i := range items {
		ranked[i] = RankedPost{Item: &items[i], Likes: items[i].LikeCount, Comments: items[i].CommentCount}
	}
	rankByEngagement(ranked)

	out := make([]Item, len(ranked))
	for i, r := range ranked {
		out[i] = *r.Item
	}

	s.storeFeed(ctx, "for_you", viewerID, out)
	metrics.Get().FeedPostsReturned.WithLabelValues("for_you").Observe(float64(len(out)))
	return out, nil
}

// FetchFollowing filters the same candidate batch down to posts whose
// author is the viewer or someone the viewer follows, preserving
// chronological order. A viewer who follows nobody and has no posts of
// their own gets an empty feed, never a fallback to the global one.
func (s *Service) FetchFollowing(ctx context.Context, viewerID string) ([]Item, error) {
	start := time.Now()
	defer func() {
		metrics.Get().FeedGenerationTime.WithLabelValues("following").Observe(time.Since(start).Seconds())
	}()

	if viewerID == "" {
		return []Item{}, nil
	}

	var followedIDs []string
	err := s.db.WithContext(ctx).
		Model(&models.Follow{}).
		Where("follower_id = ?", viewerID).
		Pluck("following_id", &followedIDs).Error
	if err != nil {
		logger.Log.Error("following feed follow lookup failed", zap.Error(err))
		return []Item{}, fmt.Errorf("failed to load follows: %w", err)
	}

	allowed := make(map[string]bool, len(followedIDs)+1)
	allowed[viewerID] = true
	for _, id := range followedIDs {
		allowed[id] = true
	}

	items, err := s.candidates(ctx, viewerID)
	if err != nil {
		logger.Log.Error("following feed failed", zap.Error(err))
		return []Item{}, err
	}

	out := make([]Item, 0, len(items))
	for _, it := range items {
		if allowed[it.UserID] {
			out = append(out, it)
		}
	}

	metrics.Get().FeedPostsReturned.WithLabelValues("following").Observe(float64(len(out)))
	return out, nil
}

// candidates loads the newest non-flagged posts and annotates them.
// The count and liked-by-me sub-queries run only after the primary
// batch succeeds.
func (s *Service) candidates(ctx context.Context, viewerID string) ([]Item, error) {
	var posts []models.Post
	err := s.db.WithContext(ctx).
		Preload("Author").
		Where("is_flagged = ?", false).
		Order("created_at DESC").
		Limit(s.pageSize).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load posts: %w", err)
	}

	return s.enrich(ctx, posts, viewerID)
}

// enrich attaches like counts, comment counts, and the viewer's liked
// flag. The three lookups run concurrently; any failure fails the feed.
func (s *Service) enrich(ctx context.Context, posts []models.Post, viewerID string) ([]Item, error) {
	items := make([]Item, len(posts))
	for i, p := range posts {
		items[i] = Item{Post: p}
	}
	if len(items) == 0 {
		return items, nil
	}

	postIDs := make([]string, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	type countRow struct {
		PostID string
		N      int64
	}

	type lookupResult struct {
		name  string
		rows  []countRow
		liked []string
		err   error
	}

	resultsChan := make(chan lookupResult, 3)
	lookups := 2

	go func() {
		var rows []countRow
		err := s.db.WithContext(ctx).
			Model(&models.Like{}).
			Select("post_id, COUNT(*) AS n").
			Where("post_id IN ?", postIDs).
			Group("post_id").
			Scan(&rows).Error
		resultsChan <- lookupResult{name: "likes", rows: rows, err: err}
	}()

	go func() {
		var rows []countRow
		err := s.db.WithContext(ctx).
			Model(&models.Comment{}).
			Select("post_id, COUNT(*) AS n").
			Where("post_id IN ?", postIDs).
			Group("post_id").
			Scan(&rows).Error
		resultsChan <- lookupResult{name: "comments", rows: rows, err: err}
	}()

	// Anonymous viewers skip the liked-by-me lookup
	if viewerID != "" {
		lookups++
		go func() {
			var liked []string
			err := s.db.WithContext(ctx).
				Model(&models.Like{}).
				Where("post_id IN ? AND user_id = ?", postIDs, viewerID).
				Pluck("post_id", &liked).Error
			resultsChan <- lookupResult{name: "viewer_likes", liked: liked, err: err}
		}()
	}

	index := make(map[string]*Item, len(items))
	for i := range items {
		index[items[i].ID] = &items[i]
	}

	for i := 0; i < lookups; i++ {
		result := <-resultsChan
		if result.err != nil {
			return nil, fmt.Errorf("%s lookup failed: %w", result.name, result.err)
		}
		switch result.name {
		case "likes":
			for _, row := range result.rows {
				if it, ok := index[row.PostID]; ok {
					it.LikeCount = row.N
				}
			}
		case "comments":
			for _, row := range result.rows {
				if it, ok := index[row.PostID]; ok {
					it.CommentCount = row.N
				}
			}
		case "viewer_likes":
			for _, id := range result.liked {
				if it, ok := index[id]; ok {
					it.LikedByMe = true
				}
			}
		}
	}

	return items, nil
}

func (s *Service) feedCacheKey(feed, viewerID string) string {
	if viewerID == "" {
		viewerID = "anon"
	}
	return fmt.Sprintf("feed:%s:%s", feed, viewerID)
}

func (s *Service) cachedFeed(ctx context.Context, feed, viewerID string) ([]Item, bool) {
	if s.cache == nil {
		return nil, false
	}

	raw, err := s.cache.Get(ctx, s.feedCacheKey(feed, viewerID))
	if err != nil {
		metrics.Get().CacheMissesTotal.WithLabelValues("feed").Inc()
		return nil, false
	}

	var items []Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		logger.Log.Warn("feed cache entry corrupt", zap.Error(err))
		return nil, false
	}

	metrics.Get().CacheHitsTotal.WithLabelValues("feed").Inc()
	return items, true
}

func (s *Service) storeFeed(ctx context.Context, feed, viewerID string, items []Item) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	payload, err := json.Marshal(items)
	if err != nil {
		return
	}
	if err := s.cache.SetEx(ctx, s.feedCacheKey(feed, viewerID), payload, s.cacheTTL); err != nil {
		logger.Log.Warn("feed cache write failed", zap.Error(err))
	}
}

// InvalidateFeeds drops cached feed pages after a write that changes
// feed contents or ranking (post create/delete, like, comment, flag
// state).
func (s *Service) InvalidateFeeds(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DelPattern(ctx, "feed:*"); err != nil {
		logger.Log.Warn("feed cache invalidation failed", zap.Error(err))
	}
}
