package feed

import "sort"

// Engagement weights. Comments signal more effort than likes.
const (
	likeWeight    = 2
	commentWeight = 3
)

// EngagementScore ranks a post by weighted interaction counts.
func EngagementScore(likes, comments int64) int64 {
	return likes*likeWeight + comments*commentWeight
}

// RankedPost pairs a post ID with the counts that drive its rank.
type RankedPost struct {
	Item     *Item
	Likes    int64
	Comments int64
}

// Score returns the engagement score for this entry.
func (r RankedPost) Score() int64 {
	return EngagementScore(r.Likes, r.Comments)
}

// rankByEngagement sorts posts by engagement score descending; equal
// scores fall back to newest first. The sort is stable so equal posts
// with equal timestamps keep their fetch order.
func rankByEngagement(posts []RankedPost) {
	sort.SliceStable(posts, func(i, j int) bool {
		si, sj := posts[i].Score(), posts[j].Score()
		if si != sj {
			return si > sj
		}
		return posts[i].Item.CreatedAt.After(posts[j].Item.CreatedAt)
	})
}
