package analytics

import (
	"sort"
	"time"

	"github.com/ZetoOfficial/engagement-analytics/internal/models"
)

// Facts is a read-only view over a snapshot used by the aggregation passes.
//
// The photo ownership index is built from the full Photo relation and is kept
// when the view is narrowed by a time window, so likes on an old photo still
// resolve to the photo's owner.
type Facts struct {
	Users     []models.User
	Photos    []models.Photo
	Likes     []models.Like
	Comments  []models.Comment
	Follows   []models.Follow
	Tags      []models.Tag
	PhotoTags []models.PhotoTag

	owner   map[int]int
	userIDs []int
}

// NewFacts builds a view over the snapshot. The snapshot is not copied.
func NewFacts(s *models.Snapshot) *Facts {
	f := &Facts{
		Users:     s.Users,
		Photos:    s.Photos,
		Likes:     s.Likes,
		Comments:  s.Comments,
		Follows:   s.Follows,
		Tags:      s.Tags,
		PhotoTags: s.PhotoTags,
		owner:     make(map[int]int, len(s.Photos)),
	}
	for _, p := range s.Photos {
		if _, seen := f.owner[p.ID]; !seen {
			f.owner[p.ID] = p.UserID
		}
	}

	seen := make(map[int]struct{}, len(s.Users))
	for _, u := range s.Users {
		if _, ok := seen[u.ID]; ok {
			continue
		}
		seen[u.ID] = struct{}{}
		f.userIDs = append(f.userIDs, u.ID)
	}
	sort.Ints(f.userIDs)
	return f
}

// UserIDs returns the distinct user ids in ascending order.
func (f *Facts) UserIDs() []int {
	return f.userIDs
}

// OwnerOf returns the owner of a photo.
func (f *Facts) OwnerOf(photoID int) (int, bool) {
	id, ok := f.owner[photoID]
	return id, ok
}

// Window returns a view whose fact relations only hold rows inside w.
// Users, tags and photo-tag links carry no timestamp and are kept as is.
func (f *Facts) Window(w Window) *Facts {
	return &Facts{
		Users:     f.Users,
		Photos:    Since(f.Photos, w, func(p models.Photo) time.Time { return p.CreatedAt }),
		Likes:     Since(f.Likes, w, func(l models.Like) time.Time { return l.CreatedAt }),
		Comments:  Since(f.Comments, w, func(c models.Comment) time.Time { return c.CreatedAt }),
		Follows:   Since(f.Follows, w, func(fl models.Follow) time.Time { return fl.CreatedAt }),
		Tags:      f.Tags,
		PhotoTags: f.PhotoTags,
		owner:     f.owner,
		userIDs:   f.userIDs,
	}
}
