package analytics

import (
	"time"

	"github.com/ZetoOfficial/engagement-analytics/internal/models"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func at(day int) time.Time {
	return epoch.AddDate(0, 0, day)
}

// scenarioSnapshot: A has two posts, B none, C none. B likes both of A's
// posts, C likes the first one.
func scenarioSnapshot() *models.Snapshot {
	return &models.Snapshot{
		Users: []models.User{
			{ID: 1, Username: "alice"},
			{ID: 2, Username: "bob"},
			{ID: 3, Username: "carol"},
		},
		Photos: []models.Photo{
			{ID: 10, UserID: 1, CreatedAt: at(1)},
			{ID: 11, UserID: 1, CreatedAt: at(2)},
		},
		Likes: []models.Like{
			{UserID: 2, PhotoID: 10, CreatedAt: at(3)},
			{UserID: 2, PhotoID: 11, CreatedAt: at(3)},
			{UserID: 3, PhotoID: 10, CreatedAt: at(4)},
		},
	}
}

// fanOutSnapshot: one photo with 3 likes and 2 comments.
func fanOutSnapshot() *models.Snapshot {
	return &models.Snapshot{
		Users: []models.User{
			{ID: 1, Username: "owner"},
			{ID: 2, Username: "fan1"},
			{ID: 3, Username: "fan2"},
			{ID: 4, Username: "fan3"},
		},
		Photos: []models.Photo{{ID: 100, UserID: 1, CreatedAt: at(0)}},
		Likes: []models.Like{
			{UserID: 2, PhotoID: 100, CreatedAt: at(1)},
			{UserID: 3, PhotoID: 100, CreatedAt: at(1)},
			{UserID: 4, PhotoID: 100, CreatedAt: at(1)},
		},
		Comments: []models.Comment{
			{ID: 1, UserID: 2, PhotoID: 100, CreatedAt: at(2)},
			{ID: 2, UserID: 3, PhotoID: 100, CreatedAt: at(2)},
		},
		Tags:      []models.Tag{{ID: 7, Name: "sunset"}, {ID: 8, Name: "beach"}},
		PhotoTags: []models.PhotoTag{{PhotoID: 100, TagID: 7}, {PhotoID: 100, TagID: 8}},
		Follows: []models.Follow{
			{FollowerID: 2, FolloweeID: 1, CreatedAt: at(0)},
			{FollowerID: 3, FolloweeID: 1, CreatedAt: at(0)},
		},
	}
}
