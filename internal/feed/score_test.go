package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEngagementScore(t *testing.T) {
	testCases := []struct {
		name     string
		likes    int64
		comments int64
		expected int64
	}{
		{"zero engagement", 0, 0, 0},
		{"likes only", 5, 0, 10},
		{"comments only", 0, 4, 12},
		{"mixed", 3, 2, 12},
		{"comments outweigh likes", 3, 0, 6},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, EngagementScore(tc.likes, tc.comments))
		})
	}
}

func TestEngagementScoreMonotonic(t *testing.T) {
	for l := int64(0); l < 10; l++ {
		for c := int64(0); c < 10; c++ {
			base := EngagementScore(l, c)
			assert.GreaterOrEqual(t, EngagementScore(l+1, c), base)
			assert.GreaterOrEqual(t, EngagementScore(l, c+1), base)
		}
	}
}

func TestRankByEngagement(t *testing.T) {
	now := time.Now()
	mk := func(id string, createdAt time.Time, likes, comments int64) RankedPost {
		item := &Item{}
		item.ID = id
		item.CreatedAt = createdAt
		return RankedPost{Item: item, Likes: likes, Comments: comments}
	}

	// Scores: low=2, high=13, mid=6
	posts := []RankedPost{
		mk("low", now, 1, 0),
		mk("high", now.Add(-time.Hour), 2, 3),
		mk("mid", now.Add(-2*time.Hour), 0, 2),
	}
	rankByEngagement(posts)

	assert.Equal(t, "high", posts[0].Item.ID)
	assert.Equal(t, "mid", posts[1].Item.ID)
	assert.Equal(t, "low", posts[2].Item.ID)
}

func TestRankByEngagementTiebreakNewestFirst(t *testing.T) {
	now := time.Now()
	mk := func(id string, createdAt time.Time) RankedPost {
		item := &Item{}
		item.ID = id
		item.CreatedAt = createdAt
		return RankedPost{Item: item, Likes: 3, Comments: 2}
	}

	posts := []RankedPost{
		mk("oldest", now.Add(-3*time.Hour)),
		mk("newest", now),
		mk("middle", now.Add(-time.Hour)),
	}
	rankByEngagement(posts)

	assert.Equal(t, "newest", posts[0].Item.ID)
	assert.Equal(t, "middle", posts[1].Item.ID)
	assert.Equal(t, "oldest", posts[2].Item.ID)
}
