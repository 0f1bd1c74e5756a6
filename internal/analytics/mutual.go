package analytics

import (
	"sort"
	"time"

	"github.com/ZetoOfficial/engagement-analytics/internal/models"
)

// FollowBack is a reciprocal pair where UserID was followed by FollowerID at
// FollowedAt and followed back at FollowedBackAt, strictly later.
type FollowBack struct {
	UserID         int
	Username       string
	FollowerID     int
	FollowerName   string
	FollowedAt     time.Time
	FollowedBackAt time.Time
}

type edge struct {
	from, to int
}

// FollowBacks pairs every edge A->B with each earlier edge B->A. Edges with
// identical timestamps are not a follow-back. Duplicate edges pair once per
// occurrence. Output is ordered by user, follower, then both timestamps.
func FollowBacks(follows []models.Follow, users []models.User) []FollowBack {
	names := make(map[int]string, len(users))
	for _, u := range users {
		if _, ok := names[u.ID]; !ok {
			names[u.ID] = u.Username
		}
	}

	byEdge := make(map[edge][]time.Time, len(follows))
	for _, f := range follows {
		if f.FollowerID == f.FolloweeID {
			continue
		}
		k := edge{f.FollowerID, f.FolloweeID}
		byEdge[k] = append(byEdge[k], f.CreatedAt)
	}

	var out []FollowBack
	for _, back := range follows {
		a, b := back.FollowerID, back.FolloweeID
		if a == b {
			continue
		}
		for _, t1 := range byEdge[edge{b, a}] {
			if !back.CreatedAt.After(t1) {
				continue
			}
			out = append(out, FollowBack{
				UserID:         a,
				Username:       names[a],
				FollowerID:     b,
				FollowerName:   names[b],
				FollowedAt:     t1,
				FollowedBackAt: back.CreatedAt,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		x, y := out[i], out[j]
		if x.UserID != y.UserID {
			return x.UserID < y.UserID
		}
		if x.FollowerID != y.FollowerID {
			return x.FollowerID < y.FollowerID
		}
		if !x.FollowedAt.Equal(y.FollowedAt) {
			return x.FollowedAt.Before(y.FollowedAt)
		}
		return x.FollowedBackAt.Before(y.FollowedBackAt)
	})
	return out
}
