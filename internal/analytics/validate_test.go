package analytics

import (
	"errors"
	"testing"

	"github.com/ZetoOfficial/engagement-analytics/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_Clean(t *testing.T) {
	d, err := Validator{Strict: true}.Validate(fanOutSnapshot())
	require.NoError(t, err)
	assert.True(t, d.Empty())
}

func TestValidator_Findings(t *testing.T) {
	s := fanOutSnapshot()
	s.Users = append(s.Users,
		models.User{ID: 5, Username: "owner"},
		models.User{ID: 5, Username: ""},
	)
	s.Likes = append(s.Likes, s.Likes[0])
	s.Follows = append(s.Follows,
		models.Follow{FollowerID: 2, FolloweeID: 1, CreatedAt: at(3)},
		models.Follow{FollowerID: 4, FolloweeID: 4, CreatedAt: at(3)},
		models.Follow{FollowerID: 42, FolloweeID: 1, CreatedAt: at(3)},
	)
	s.PhotoTags = append(s.PhotoTags, models.PhotoTag{PhotoID: 100, TagID: 7})

	d, err := Validator{}.Validate(s)
	require.NoError(t, err)

	assert.Equal(t, map[FindingKind]int{
		DuplicateUsername: 1,
		DuplicateUserID:   1,
		NullUsername:      1,
		DuplicateLike:     1,
		DuplicateFollow:   1,
		SelfFollow:        1,
		DanglingReference: 1,
		DuplicatePhotoTag: 1,
	}, d.Counts())
	assert.Equal(t, DanglingReference, d.Kinds()[0])
}

func TestValidator_StrictDangling(t *testing.T) {
	s := scenarioSnapshot()
	s.Comments = append(s.Comments, models.Comment{ID: 1, UserID: 2, PhotoID: 999, CreatedAt: at(5)})

	d, err := Validator{}.Validate(s)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Counts()[DanglingReference])

	_, err = Validator{Strict: true}.Validate(s)
	var serr *StructuralError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, "comments", serr.Relation)
	assert.Equal(t, "photo_id", serr.Column)
	assert.Contains(t, err.Error(), "comments.photo_id")
}

func TestValidator_NullCreatedAt(t *testing.T) {
	s := fanOutSnapshot()
	s.Photos = append(s.Photos, models.Photo{ID: 101, UserID: 1})
	s.Likes = append(s.Likes, models.Like{UserID: 2, PhotoID: 101})
	s.Comments = append(s.Comments, models.Comment{ID: 3, UserID: 4, PhotoID: 100})
	s.Follows = append(s.Follows, models.Follow{FollowerID: 4, FolloweeID: 1})

	d, err := Validator{Strict: true}.Validate(s)
	require.NoError(t, err)
	assert.Equal(t, map[FindingKind]int{NullCreatedAt: 4}, d.Counts())

	relations := make([]string, 0, len(d.Findings))
	for _, f := range d.Findings {
		assert.Equal(t, "created_at", f.Column)
		relations = append(relations, f.Relation)
	}
	assert.Equal(t, []string{"photos", "likes", "comments", "follows"}, relations)

	// The rows are still counted outside a window.
	likes := NewFacts(s).Likes
	assert.Len(t, likes, 4)
}
