package analytics

import (
	"sort"
	"strings"

	"github.com/ZetoOfficial/engagement-analytics/internal/models"
)

// FindingKind names a data-quality finding.
type FindingKind string

const (
	DuplicateUserID    FindingKind = "duplicate_user_id"
	DuplicateUsername  FindingKind = "duplicate_username"
	NullUsername       FindingKind = "null_username"
	DuplicatePhotoID   FindingKind = "duplicate_photo_id"
	DuplicateCommentID FindingKind = "duplicate_comment_id"
	DuplicateTagID     FindingKind = "duplicate_tag_id"
	DuplicateLike      FindingKind = "duplicate_like"
	DuplicateFollow    FindingKind = "duplicate_follow"
	DuplicatePhotoTag  FindingKind = "duplicate_photo_tag"
	SelfFollow         FindingKind = "self_follow"
	DanglingReference  FindingKind = "dangling_reference"
	// NullCreatedAt marks a fact row without a timestamp. Such rows still
	// count in all-time reports but never fall inside a window.
	NullCreatedAt      FindingKind = "null_created_at"
)

// Finding is one data-quality observation.
type Finding struct {
	Kind     FindingKind
	Relation string
	Column   string
	Detail   string
}

// Diagnostics collects the findings of a validation pass. Findings never
// change report figures: duplicates are still counted as raw occurrences.
type Diagnostics struct {
	Findings []Finding
}

func (d *Diagnostics) add(kind FindingKind, relation, column, detail string) {
	d.Findings = append(d.Findings, Finding{Kind: kind, Relation: relation, Column: column, Detail: detail})
}

// Counts returns the number of findings per kind.
func (d *Diagnostics) Counts() map[FindingKind]int {
	out := make(map[FindingKind]int)
	for _, f := range d.Findings {
		out[f.Kind]++
	}
	return out
}

// Kinds returns the kinds present, sorted.
func (d *Diagnostics) Kinds() []FindingKind {
	counts := d.Counts()
	kinds := make([]FindingKind, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Empty reports whether no finding was recorded.
func (d *Diagnostics) Empty() bool {
	return len(d.Findings) == 0
}

// Validator runs the pre-aggregation data-quality pass.
type Validator struct {
	// Strict turns dangling foreign keys into a StructuralError.
	Strict bool
}

// Validate inspects the snapshot. In strict mode the first dangling
// reference aborts with a *StructuralError; otherwise every finding is
// returned as a diagnostic.
func (v Validator) Validate(s *models.Snapshot) (*Diagnostics, error) {
	d := &Diagnostics{}

	users := make(map[int]struct{}, len(s.Users))
	usernames := make(map[string]int, len(s.Users))
	for _, u := range s.Users {
		if _, ok := users[u.ID]; ok {
			d.add(DuplicateUserID, "users", "id", itoa(u.ID))
		}
		users[u.ID] = struct{}{}
		name := strings.TrimSpace(u.Username)
		if name == "" {
			d.add(NullUsername, "users", "username", "user "+itoa(u.ID))
			continue
		}
		usernames[name]++
		if usernames[name] == 2 {
			d.add(DuplicateUsername, "users", "username", name)
		}
	}

	photos := make(map[int]struct{}, len(s.Photos))
	for _, p := range s.Photos {
		if _, ok := photos[p.ID]; ok {
			d.add(DuplicatePhotoID, "photos", "id", itoa(p.ID))
		}
		photos[p.ID] = struct{}{}
		if p.CreatedAt.IsZero() {
			d.add(NullCreatedAt, "photos", "created_at", "photo "+itoa(p.ID))
		}
		if _, ok := users[p.UserID]; !ok {
			if err := v.dangling(d, "photos", "user_id", p.UserID); err != nil {
				return nil, err
			}
		}
	}

	type pair struct{ a, b int }

	likes := make(map[pair]int, len(s.Likes))
	for _, l := range s.Likes {
		k := pair{l.UserID, l.PhotoID}
		likes[k]++
		if likes[k] == 2 {
			d.add(DuplicateLike, "likes", "user_id,photo_id", itoa(l.UserID)+","+itoa(l.PhotoID))
		}
		if l.CreatedAt.IsZero() {
			d.add(NullCreatedAt, "likes", "created_at", itoa(l.UserID)+","+itoa(l.PhotoID))
		}
		if err := v.reference(d, users, "likes", "user_id", l.UserID); err != nil {
			return nil, err
		}
		if err := v.reference(d, photos, "likes", "photo_id", l.PhotoID); err != nil {
			return nil, err
		}
	}

	comments := make(map[int]struct{}, len(s.Comments))
	for _, c := range s.Comments {
		if _, ok := comments[c.ID]; ok {
			d.add(DuplicateCommentID, "comments", "id", itoa(c.ID))
		}
		comments[c.ID] = struct{}{}
		if c.CreatedAt.IsZero() {
			d.add(NullCreatedAt, "comments", "created_at", "comment "+itoa(c.ID))
		}
		if err := v.reference(d, users, "comments", "user_id", c.UserID); err != nil {
			return nil, err
		}
		if err := v.reference(d, photos, "comments", "photo_id", c.PhotoID); err != nil {
			return nil, err
		}
	}

	follows := make(map[pair]int, len(s.Follows))
	for _, f := range s.Follows {
		if f.FollowerID == f.FolloweeID {
			d.add(SelfFollow, "follows", "follower_id,followee_id", itoa(f.FollowerID))
		}
		k := pair{f.FollowerID, f.FolloweeID}
		follows[k]++
		if follows[k] == 2 {
			d.add(DuplicateFollow, "follows", "follower_id,followee_id", itoa(f.FollowerID)+","+itoa(f.FolloweeID))
		}
		if f.CreatedAt.IsZero() {
			d.add(NullCreatedAt, "follows", "created_at", itoa(f.FollowerID)+","+itoa(f.FolloweeID))
		}
		if err := v.reference(d, users, "follows", "follower_id", f.FollowerID); err != nil {
			return nil, err
		}
		if err := v.reference(d, users, "follows", "followee_id", f.FolloweeID); err != nil {
			return nil, err
		}
	}

	tags := make(map[int]struct{}, len(s.Tags))
	for _, t := range s.Tags {
		if _, ok := tags[t.ID]; ok {
			d.add(DuplicateTagID, "tags", "id", itoa(t.ID))
		}
		tags[t.ID] = struct{}{}
	}

	photoTags := make(map[pair]int, len(s.PhotoTags))
	for _, pt := range s.PhotoTags {
		k := pair{pt.PhotoID, pt.TagID}
		photoTags[k]++
		if photoTags[k] == 2 {
			d.add(DuplicatePhotoTag, "photo_tags", "photo_id,tag_id", itoa(pt.PhotoID)+","+itoa(pt.TagID))
		}
		if err := v.reference(d, photos, "photo_tags", "photo_id", pt.PhotoID); err != nil {
			return nil, err
		}
		if err := v.reference(d, tags, "photo_tags", "tag_id", pt.TagID); err != nil {
			return nil, err
		}
	}

	return d, nil
}

func (v Validator) reference(d *Diagnostics, keys map[int]struct{}, relation, column string, id int) error {
	if _, ok := keys[id]; ok {
		return nil
	}
	return v.dangling(d, relation, column, id)
}

func (v Validator) dangling(d *Diagnostics, relation, column string, id int) error {
	if v.Strict {
		return &StructuralError{
			Relation: relation,
			Column:   column,
			Reason:   "references missing row " + itoa(id),
		}
	}
	d.add(DanglingReference, relation, column, itoa(id))
	return nil
}
