package analytics

import (
	"fmt"

	"github.com/ZetoOfficial/engagement-analytics/internal/models"
)

// Weights are the activity score multipliers.
type Weights struct {
	Posts    int `yaml:"posts"`
	Likes    int `yaml:"likes"`
	Comments int `yaml:"comments"`
}

var (
	// EqualWeights counts every action once.
	EqualWeights = Weights{Posts: 1, Likes: 1, Comments: 1}

	// AdvocateWeights favours content creation over passive likes.
	AdvocateWeights = Weights{Posts: 3, Likes: 1, Comments: 2}
)

// Validate rejects negative multipliers.
func (w Weights) Validate() error {
	if w.Posts < 0 || w.Likes < 0 || w.Comments < 0 {
		return fmt.Errorf("%w: %d/%d/%d", ErrInvalidWeights, w.Posts, w.Likes, w.Comments)
	}
	return nil
}

// ActivityScore is posts*w.Posts + likes_given*w.Likes + comments_given*w.Comments.
func ActivityScore(t *Table, id int, w Weights) int {
	return t.Get(PostsCreated, id)*w.Posts +
		t.Get(LikesGiven, id)*w.Likes +
		t.Get(CommentsGiven, id)*w.Comments
}

// EngagementScore is likes + comments + tags received.
func EngagementScore(t *Table, id int) int {
	return t.Get(LikesReceived, id) + t.Get(CommentsReceived, id) + t.Get(TagsReceived, id)
}

// AvgEngagementPerPost is (likes + comments received) / posts, rounded to
// two places. Users without posts score 0.
func AvgEngagementPerPost(t *Table, id int) float64 {
	return Ratio(t.Get(LikesReceived, id)+t.Get(CommentsReceived, id), t.Get(PostsCreated, id))
}

// Ratio divides two non-negative counts and rounds half-up to two decimal
// places using integer arithmetic. A zero denominator yields 0.
func Ratio(num, den int) float64 {
	if den <= 0 || num <= 0 {
		return 0
	}
	cents := (200*int64(num) + int64(den)) / (2 * int64(den))
	return float64(cents) / 100
}

// TagStats are the per-tag engagement figures.
type TagStats struct {
	TagID            int
	Name             string
	PostsUsingTag    int
	LikesReceived    int
	CommentsReceived int
}

// EngagementRate is (likes + comments) / posts using the tag, two places.
func (s TagStats) EngagementRate() float64 {
	return Ratio(s.LikesReceived+s.CommentsReceived, s.PostsUsingTag)
}

// TagEngagement computes TagStats for every tag. Likes and comments are first
// tallied per photo in separate passes and then attributed to each tag of the
// photo, so the two relations never multiply each other.
func TagEngagement(f *Facts) []TagStats {
	likesPerPhoto := Tally(f.Likes, func(l models.Like) (int, bool) { return l.PhotoID, true })
	commentsPerPhoto := Tally(f.Comments, func(c models.Comment) (int, bool) { return c.PhotoID, true })
	postsPerTag := Tally(f.PhotoTags, func(pt models.PhotoTag) (int, bool) { return pt.TagID, true })

	likesPerTag := make(Counts)
	commentsPerTag := make(Counts)
	for _, pt := range f.PhotoTags {
		likesPerTag[pt.TagID] += likesPerPhoto[pt.PhotoID]
		commentsPerTag[pt.TagID] += commentsPerPhoto[pt.PhotoID]
	}

	seen := make(map[int]struct{}, len(f.Tags))
	stats := make([]TagStats, 0, len(f.Tags))
	for _, tag := range f.Tags {
		if _, ok := seen[tag.ID]; ok {
			continue
		}
		seen[tag.ID] = struct{}{}
		stats = append(stats, TagStats{
			TagID:            tag.ID,
			Name:             tag.Name,
			PostsUsingTag:    postsPerTag[tag.ID],
			LikesReceived:    likesPerTag[tag.ID],
			CommentsReceived: commentsPerTag[tag.ID],
		})
	}
	return stats
}
