package reports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ZetoOfficial/engagement-analytics/internal/analytics"
	"github.com/ZetoOfficial/engagement-analytics/internal/models"
	"github.com/ZetoOfficial/engagement-analytics/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reference = time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)

func fixtureEngine(t *testing.T) *Engine {
	t.Helper()
	store, err := storage.NewFixtureStorage("../storage/testdata/fixture.yaml")
	require.NoError(t, err)
	e := NewEngine(store)
	e.Clock = func() time.Time { return reference }
	return e
}

func run(t *testing.T, name string, opts Options) *Result {
	t.Helper()
	res, err := fixtureEngine(t).Run(context.Background(), name, opts)
	require.NoError(t, err)
	return res
}

func userIDs(records []Record) []int {
	out := make([]int, len(records))
	for i, r := range records {
		out[i] = r.Int("user_id")
	}
	return out
}

func recordRanks(records []Record) []int {
	out := make([]int, len(records))
	for i, r := range records {
		out[i] = r.Rank
	}
	return out
}

func TestEngine_ActivitySegments(t *testing.T) {
	res := run(t, "user_activity_segments", Options{})
	require.Len(t, res.Records, 5)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, userIDs(res.Records))

	alice := res.Records[0]
	assert.Equal(t, "alice", alice.Text("username"))
	assert.Equal(t, 2, alice.Int("posts_created"))
	assert.Equal(t, 3, alice.Int("activity_score"))
	assert.Equal(t, "Low Activity", alice.Segment)
	assert.Equal(t, "Inactive", res.Records[4].Segment)
	assert.Zero(t, alice.Rank)

	weighted := run(t, "user_activity_segments", Options{Weights: &analytics.AdvocateWeights})
	assert.Equal(t, 8, weighted.Records[0].Int("activity_score"))
	assert.Equal(t, "Moderate Activity", weighted.Records[0].Segment)
}

func TestEngine_EngagementSegments(t *testing.T) {
	res := run(t, "user_engagement_segments", Options{})
	alice := res.Records[0]
	assert.Equal(t, 5, alice.Int("likes_received"))
	assert.Equal(t, 2, alice.Int("comments_received"))
	assert.Equal(t, 2, alice.Int("tags_received"))
	assert.Equal(t, 9, alice.Int("engagement_score"))
	assert.Equal(t, "Low Engagement", alice.Segment)
	assert.Equal(t, "No Engagement", res.Records[1].Segment)
	assert.Equal(t, analytics.StandardThresholds, res.Options.ThresholdSet)

	loyalty := run(t, "loyalty_segments", Options{})
	assert.Equal(t, analytics.LoyaltyThresholds, loyalty.Options.ThresholdSet)
	assert.Equal(t, "Low Engagement", loyalty.Records[0].Segment)
}

func TestEngine_TopInfluencers(t *testing.T) {
	res := run(t, "top_influencers", Options{})
	assert.Equal(t, []int{1, 3, 2, 4, 5}, userIDs(res.Records))
	assert.Equal(t, []int{1, 2, 2, 2, 5}, recordRanks(res.Records))
	assert.Equal(t, 3, res.Records[0].Int("follower_count"))

	limited := run(t, "top_influencers", Options{Limit: 2})
	assert.Len(t, limited.Records, 2)
}

func TestEngine_TopPostersByEngagement(t *testing.T) {
	res := run(t, "top_posters_by_engagement", Options{})
	require.Len(t, res.Records, 2)
	assert.Equal(t, []int{1, 3}, userIDs(res.Records))
	assert.Equal(t, 3.5, res.Records[0].Float("avg_engagement_per_post"))
	assert.Equal(t, 3.0, res.Records[1].Float("avg_engagement_per_post"))
	assert.Equal(t, []int{1, 2}, recordRanks(res.Records))
}

func TestEngine_Windowed(t *testing.T) {
	advocates := run(t, "top_advocates", Options{})
	assert.Equal(t, []int{3, 1, 4, 2, 5}, userIDs(advocates.Records))
	assert.Equal(t, []int{1, 2, 3, 4, 5}, recordRanks(advocates.Records))
	assert.Equal(t, 6, advocates.Records[0].Int("activity_score"))

	recent := run(t, "recently_active_users", Options{})
	assert.Equal(t, []int{3, 4, 1, 2}, userIDs(recent.Records))
	assert.Equal(t, []int{1, 1, 3, 3}, recordRanks(recent.Records))

	wide := run(t, "recently_active_users", Options{Window: 365 * 24 * time.Hour})
	assert.Equal(t, 4, wide.Records[0].Int("activity_score"))
	assert.Equal(t, reference, wide.Reference)
}

func TestEngine_Tags(t *testing.T) {
	top := run(t, "top_tags", Options{})
	require.Len(t, top.Records, 2)
	assert.Equal(t, "sunset", top.Records[0].Text("tag_name"))
	assert.Equal(t, 3.5, top.Records[0].Float("engagement_rate"))
	assert.Equal(t, 3.0, top.Records[1].Float("engagement_rate"))

	used := run(t, "most_used_tags", Options{})
	require.Len(t, used.Records, 2)
	assert.Equal(t, 2, used.Records[0].Int("posts_using_tag"))
}

func TestEngine_Listings(t *testing.T) {
	inactive := run(t, "inactive_users", Options{})
	assert.Equal(t, []int{2, 4, 5}, userIDs(inactive.Records))

	bots := run(t, "bot_suspects", Options{})
	assert.Equal(t, []int{2, 4}, userIDs(bots.Records))
	assert.Equal(t, 3, bots.Records[0].Int("total_photos"))
}

func TestEngine_FollowBacks(t *testing.T) {
	res := run(t, "follow_backs", Options{})
	require.Len(t, res.Records, 1)
	r := res.Records[0]
	assert.Equal(t, 1, r.Int("user_id"))
	assert.Equal(t, 2, r.Int("follower_id"))
	assert.Equal(t, "bob", r.Text("follower_name"))
	at, _ := r.Get("followed_back_at")
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), at.(time.Time).UTC())
}

func TestEngine_Diagnostics(t *testing.T) {
	res := run(t, "inactive_users", Options{Strict: true})
	assert.Equal(t, map[analytics.FindingKind]int{
		analytics.DuplicateUsername: 1,
		analytics.SelfFollow:        1,
	}, res.Diagnostics.Counts())
	assert.NotEmpty(t, res.RunID)
}

func TestEngine_Errors(t *testing.T) {
	e := fixtureEngine(t)
	ctx := context.Background()

	_, err := e.Run(ctx, "nope", Options{})
	assert.ErrorIs(t, err, ErrUnknownReport)

	_, err = e.Run(ctx, "top_tags", Options{Limit: -1})
	assert.ErrorIs(t, err, ErrInvalidOptions)

	_, err = e.Run(ctx, "top_tags", Options{Window: -time.Hour})
	assert.ErrorIs(t, err, ErrInvalidOptions)

	_, err = e.Run(ctx, "loyalty_segments", Options{ThresholdSet: "gold"})
	assert.ErrorIs(t, err, analytics.ErrUnknownThresholdSet)

	_, err = e.Run(ctx, "top_advocates", Options{Weights: &analytics.Weights{Likes: -2}})
	assert.ErrorIs(t, err, analytics.ErrInvalidWeights)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	res, err := e.Run(cancelled, "top_influencers", Options{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res)
}

func TestEngine_StrictDangling(t *testing.T) {
	snapshot := &models.Snapshot{
		Users:  []models.User{{ID: 1, Username: "a"}},
		Photos: []models.Photo{{ID: 1, UserID: 1}},
		Likes:  []models.Like{{UserID: 1, PhotoID: 2}},
	}
	e := NewEngine(storage.NewMemoryStorage(snapshot))

	res, err := e.Run(context.Background(), "user_engagement_segments", Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Diagnostics.Counts()[analytics.DanglingReference])
	assert.Equal(t, 0, res.Records[0].Int("likes_received"))

	_, err = e.Run(context.Background(), "user_engagement_segments", Options{Strict: true})
	var serr *analytics.StructuralError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "likes", serr.Relation)
	assert.Equal(t, "photo_id", serr.Column)
}

func TestCatalogue(t *testing.T) {
	names := Names()
	assert.Len(t, names, 12)
	for _, n := range names {
		r, ok := Lookup(n)
		require.True(t, ok)
		assert.NotEmpty(t, r.Description)
		assert.NotNil(t, r.run)
	}
	_, ok := Lookup("missing")
	assert.False(t, ok)
}
