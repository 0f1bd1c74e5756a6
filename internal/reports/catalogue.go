package reports

import (
	"context"
	"sort"

	"github.com/ZetoOfficial/engagement-analytics/internal/analytics"
	"github.com/ZetoOfficial/engagement-analytics/internal/models"
)

// Report is one named analytic question.
type Report struct {
	Name        string
	Description string
	// Ranked reports are cut to Options.Limit after ranking.
	Ranked bool
	// Windowed reports only see facts inside Options.Window.
	Windowed   bool
	Thresholds string
	Weights    analytics.Weights

	run func(rc *runContext) ([]Record, error)
}

// runContext carries everything a report needs. It is built once per run.
type runContext struct {
	ctx        context.Context
	facts      *analytics.Facts
	opts       Options
	thresholds analytics.ThresholdSet
	aggregator *analytics.Aggregator
	names      map[int]string
}

func (rc *runContext) aggregate(metrics ...analytics.Metric) (*analytics.Table, error) {
	return rc.aggregator.Compute(rc.ctx, rc.facts, metrics...)
}

func (rc *runContext) userKey(id int) []Column {
	return []Column{{"user_id", id}, {"username", rc.names[id]}}
}

var catalogue = map[string]*Report{}

func register(r *Report) {
	catalogue[r.Name] = r
}

// Lookup returns a report by name.
func Lookup(name string) (*Report, bool) {
	r, ok := catalogue[name]
	return r, ok
}

// Names lists the catalogue in lexical order.
func Names() []string {
	names := make([]string, 0, len(catalogue))
	for n := range catalogue {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func init() {
	register(&Report{
		Name:        "user_activity_segments",
		Description: "activity score and activity bucket per user",
		Thresholds:  analytics.StandardThresholds,
		Weights:     analytics.EqualWeights,
		run:         activitySegments,
	})
	register(&Report{
		Name:        "user_engagement_segments",
		Description: "engagement received and engagement bucket per user",
		Thresholds:  analytics.StandardThresholds,
		Weights:     analytics.EqualWeights,
		run:         engagementSegments,
	})
	register(&Report{
		Name:        "loyalty_segments",
		Description: "engagement buckets with the loyalty thresholds",
		Thresholds:  analytics.LoyaltyThresholds,
		Weights:     analytics.EqualWeights,
		run:         engagementSegments,
	})
	register(&Report{
		Name:        "top_influencers",
		Description: "most followed users, ties broken by engagement received",
		Ranked:      true,
		Thresholds:  analytics.StandardThresholds,
		Weights:     analytics.EqualWeights,
		run:         topInfluencers,
	})
	register(&Report{
		Name:        "top_posters_by_engagement",
		Description: "users with the best average engagement per post",
		Ranked:      true,
		Thresholds:  analytics.StandardThresholds,
		Weights:     analytics.EqualWeights,
		run:         topPostersByEngagement,
	})
	register(&Report{
		Name:        "top_advocates",
		Description: "weighted activity inside the window",
		Ranked:      true,
		Windowed:    true,
		Thresholds:  analytics.StandardThresholds,
		Weights:     analytics.AdvocateWeights,
		run:         topAdvocates,
	})
	register(&Report{
		Name:        "recently_active_users",
		Description: "users with any activity inside the window",
		Ranked:      true,
		Windowed:    true,
		Thresholds:  analytics.StandardThresholds,
		Weights:     analytics.EqualWeights,
		run:         recentlyActiveUsers,
	})
	register(&Report{
		Name:        "top_tags",
		Description: "tags with the best engagement rate per post",
		Ranked:      true,
		Thresholds:  analytics.StandardThresholds,
		Weights:     analytics.EqualWeights,
		run:         topTags,
	})
	register(&Report{
		Name:        "most_used_tags",
		Description: "tags attached to the most posts",
		Ranked:      true,
		Thresholds:  analytics.StandardThresholds,
		Weights:     analytics.EqualWeights,
		run:         mostUsedTags,
	})
	register(&Report{
		Name:        "inactive_users",
		Description: "users who never posted",
		Thresholds:  analytics.StandardThresholds,
		Weights:     analytics.EqualWeights,
		run:         inactiveUsers,
	})
	register(&Report{
		Name:        "bot_suspects",
		Description: "users who liked every photo",
		Thresholds:  analytics.StandardThresholds,
		Weights:     analytics.EqualWeights,
		run:         botSuspects,
	})
	register(&Report{
		Name:        "follow_backs",
		Description: "users who followed back someone who followed them first",
		Thresholds:  analytics.StandardThresholds,
		Weights:     analytics.EqualWeights,
		run:         followBacks,
	})
}

func activitySegments(rc *runContext) ([]Record, error) {
	t, err := rc.aggregate(analytics.PostsCreated, analytics.LikesGiven, analytics.CommentsGiven)
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(t.IDs()))
	for _, id := range t.IDs() {
		score := analytics.ActivityScore(t, id, *rc.opts.Weights)
		records = append(records, Record{
			Key: rc.userKey(id),
			Metrics: []Column{
				{"posts_created", t.Get(analytics.PostsCreated, id)},
				{"likes_given", t.Get(analytics.LikesGiven, id)},
				{"comments_given", t.Get(analytics.CommentsGiven, id)},
				{"activity_score", score},
			},
			Segment: rc.thresholds.Activity.Classify(score),
		})
	}
	return records, nil
}

func engagementSegments(rc *runContext) ([]Record, error) {
	t, err := rc.aggregate(analytics.LikesReceived, analytics.CommentsReceived, analytics.TagsReceived)
	if err != nil {
		return nil, err
	}
	records := make([]Record, 0, len(t.IDs()))
	for _, id := range t.IDs() {
		score := analytics.EngagementScore(t, id)
		records = append(records, Record{
			Key: rc.userKey(id),
			Metrics: []Column{
				{"likes_received", t.Get(analytics.LikesReceived, id)},
				{"comments_received", t.Get(analytics.CommentsReceived, id)},
				{"tags_received", t.Get(analytics.TagsReceived, id)},
				{"engagement_score", score},
			},
			Segment: rc.thresholds.Engagement.Classify(score),
		})
	}
	return records, nil
}

func topInfluencers(rc *runContext) ([]Record, error) {
	t, err := rc.aggregate(
		analytics.FollowerCount, analytics.FollowingCount,
		analytics.LikesReceived, analytics.CommentsReceived, analytics.TagsReceived,
	)
	if err != nil {
		return nil, err
	}
	ranked := analytics.Rank(t.IDs(), []analytics.SortKey[int]{
		analytics.Desc("follower_count", func(id int) int { return t.Get(analytics.FollowerCount, id) }),
		analytics.Desc("engagement_score", func(id int) int { return analytics.EngagementScore(t, id) }),
		analytics.Asc("user_id", func(id int) int { return id }),
	}, analytics.Gapped)

	records := make([]Record, 0, len(ranked))
	for _, r := range ranked {
		id := r.Item
		records = append(records, Record{
			Key: rc.userKey(id),
			Metrics: []Column{
				{"follower_count", t.Get(analytics.FollowerCount, id)},
				{"following_count", t.Get(analytics.FollowingCount, id)},
				{"engagement_score", analytics.EngagementScore(t, id)},
			},
			Rank: r.Rank,
		})
	}
	return records, nil
}

func topPostersByEngagement(rc *runContext) ([]Record, error) {
	t, err := rc.aggregate(analytics.PostsCreated, analytics.LikesReceived, analytics.CommentsReceived)
	if err != nil {
		return nil, err
	}
	var posters []int
	for _, id := range t.IDs() {
		if t.Get(analytics.PostsCreated, id) > 0 {
			posters = append(posters, id)
		}
	}
	ranked := analytics.Rank(posters, []analytics.SortKey[int]{
		analytics.Desc("avg_engagement_per_post", func(id int) float64 { return analytics.AvgEngagementPerPost(t, id) }),
		analytics.Desc("likes_received", func(id int) int { return t.Get(analytics.LikesReceived, id) }),
		analytics.Asc("user_id", func(id int) int { return id }),
	}, analytics.Dense)

	records := make([]Record, 0, len(ranked))
	for _, r := range ranked {
		id := r.Item
		records = append(records, Record{
			Key: rc.userKey(id),
			Metrics: []Column{
				{"posts_created", t.Get(analytics.PostsCreated, id)},
				{"likes_received", t.Get(analytics.LikesReceived, id)},
				{"comments_received", t.Get(analytics.CommentsReceived, id)},
				{"avg_engagement_per_post", analytics.AvgEngagementPerPost(t, id)},
			},
			Rank: r.Rank,
		})
	}
	return records, nil
}

// activityRanking ranks users by weighted activity inside the window.
func activityRanking(rc *runContext, secondary analytics.Metric, d analytics.Discipline, activeOnly bool) ([]Record, error) {
	t, err := rc.aggregate(analytics.PostsCreated, analytics.LikesGiven, analytics.CommentsGiven)
	if err != nil {
		return nil, err
	}
	w := *rc.opts.Weights
	candidates := make([]int, 0, len(t.IDs()))
	for _, id := range t.IDs() {
		if activeOnly && analytics.ActivityScore(t, id, analytics.EqualWeights) == 0 {
			continue
		}
		candidates = append(candidates, id)
	}
	ranked := analytics.Rank(candidates, []analytics.SortKey[int]{
		analytics.Desc("activity_score", func(id int) int { return analytics.ActivityScore(t, id, w) }),
		analytics.Desc(string(secondary), func(id int) int { return t.Get(secondary, id) }),
		analytics.Asc("user_id", func(id int) int { return id }),
	}, d)

	records := make([]Record, 0, len(ranked))
	for _, r := range ranked {
		id := r.Item
		score := analytics.ActivityScore(t, id, w)
		records = append(records, Record{
			Key: rc.userKey(id),
			Metrics: []Column{
				{"posts_created", t.Get(analytics.PostsCreated, id)},
				{"likes_given", t.Get(analytics.LikesGiven, id)},
				{"comments_given", t.Get(analytics.CommentsGiven, id)},
				{"activity_score", score},
			},
			Segment: rc.thresholds.Activity.Classify(score),
			Rank:    r.Rank,
		})
	}
	return records, nil
}

func topAdvocates(rc *runContext) ([]Record, error) {
	return activityRanking(rc, analytics.CommentsGiven, analytics.Dense, false)
}

func recentlyActiveUsers(rc *runContext) ([]Record, error) {
	return activityRanking(rc, analytics.PostsCreated, analytics.Gapped, true)
}

func usedTags(rc *runContext) []analytics.TagStats {
	var used []analytics.TagStats
	for _, s := range analytics.TagEngagement(rc.facts) {
		if s.PostsUsingTag > 0 {
			used = append(used, s)
		}
	}
	return used
}

func tagKey(s analytics.TagStats) []Column {
	return []Column{{"tag_id", s.TagID}, {"tag_name", s.Name}}
}

func topTags(rc *runContext) ([]Record, error) {
	ranked := analytics.Rank(usedTags(rc), []analytics.SortKey[analytics.TagStats]{
		analytics.Desc("engagement_rate", func(s analytics.TagStats) float64 { return s.EngagementRate() }),
		analytics.Desc("posts_using_tag", func(s analytics.TagStats) int { return s.PostsUsingTag }),
		analytics.Asc("tag_name", func(s analytics.TagStats) string { return s.Name }),
	}, analytics.Dense)

	records := make([]Record, 0, len(ranked))
	for _, r := range ranked {
		s := r.Item
		records = append(records, Record{
			Key: tagKey(s),
			Metrics: []Column{
				{"posts_using_tag", s.PostsUsingTag},
				{"likes_received", s.LikesReceived},
				{"comments_received", s.CommentsReceived},
				{"engagement_rate", s.EngagementRate()},
			},
			Rank: r.Rank,
		})
	}
	return records, nil
}

func mostUsedTags(rc *runContext) ([]Record, error) {
	ranked := analytics.Rank(usedTags(rc), []analytics.SortKey[analytics.TagStats]{
		analytics.Desc("posts_using_tag", func(s analytics.TagStats) int { return s.PostsUsingTag }),
		analytics.Asc("tag_name", func(s analytics.TagStats) string { return s.Name }),
	}, analytics.Gapped)

	records := make([]Record, 0, len(ranked))
	for _, r := range ranked {
		records = append(records, Record{
			Key:     tagKey(r.Item),
			Metrics: []Column{{"posts_using_tag", r.Item.PostsUsingTag}},
			Rank:    r.Rank,
		})
	}
	return records, nil
}

func inactiveUsers(rc *runContext) ([]Record, error) {
	t, err := rc.aggregate(analytics.PostsCreated)
	if err != nil {
		return nil, err
	}
	var records []Record
	for _, id := range t.IDs() {
		if t.Get(analytics.PostsCreated, id) == 0 {
			records = append(records, Record{
				Key:     rc.userKey(id),
				Metrics: []Column{{"posts_created", 0}},
			})
		}
	}
	return records, nil
}

func botSuspects(rc *runContext) ([]Record, error) {
	t, err := rc.aggregate(analytics.LikesGiven)
	if err != nil {
		return nil, err
	}

	photos := make(map[int]struct{}, len(rc.facts.Photos))
	for _, p := range rc.facts.Photos {
		photos[p.ID] = struct{}{}
	}
	if len(photos) == 0 {
		return nil, nil
	}

	type like struct{ user, photo int }
	seen := make(map[like]struct{}, len(rc.facts.Likes))
	distinct := analytics.Tally(rc.facts.Likes, func(l models.Like) (int, bool) {
		k := like{l.UserID, l.PhotoID}
		if _, dup := seen[k]; dup {
			return 0, false
		}
		if _, ok := photos[l.PhotoID]; !ok {
			return 0, false
		}
		seen[k] = struct{}{}
		return l.UserID, true
	})

	var records []Record
	for _, id := range t.IDs() {
		if distinct[id] != len(photos) {
			continue
		}
		records = append(records, Record{
			Key: rc.userKey(id),
			Metrics: []Column{
				{"likes_given", t.Get(analytics.LikesGiven, id)},
				{"photos_liked", distinct[id]},
				{"total_photos", len(photos)},
			},
		})
	}
	return records, nil
}

func followBacks(rc *runContext) ([]Record, error) {
	pairs := analytics.FollowBacks(rc.facts.Follows, rc.facts.Users)
	records := make([]Record, 0, len(pairs))
	for _, p := range pairs {
		records = append(records, Record{
			Key: []Column{
				{"user_id", p.UserID},
				{"username", p.Username},
				{"follower_id", p.FollowerID},
				{"follower_name", p.FollowerName},
			},
			Metrics: []Column{
				{"followed_by_at", p.FollowedAt},
				{"followed_back_at", p.FollowedBackAt},
			},
		})
	}
	return records, nil
}
