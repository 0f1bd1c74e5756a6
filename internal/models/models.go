package models

import "time"

// User is an account of the social network. Username may be empty when the
// source row carries NULL.
type User struct {
	ID        int       `yaml:"id" json:"id"`
	Username  string    `yaml:"username" json:"username"`
	CreatedAt time.Time `yaml:"created_at" json:"created_at"`
}

// Photo is a post owned by a user.
type Photo struct {
	ID        int       `yaml:"id" json:"id"`
	UserID    int       `yaml:"user_id" json:"user_id"`
	ImageURL  string    `yaml:"image_url,omitempty" json:"image_url,omitempty"`
	CreatedAt time.Time `yaml:"created_at" json:"created_at"`
}

// Like is a like event of a user on a photo.
type Like struct {
	UserID    int       `yaml:"user_id" json:"user_id"`
	PhotoID   int       `yaml:"photo_id" json:"photo_id"`
	CreatedAt time.Time `yaml:"created_at" json:"created_at"`
}

// Comment is a comment left by a user on a photo.
type Comment struct {
	ID        int       `yaml:"id" json:"id"`
	Text      string    `yaml:"text,omitempty" json:"text,omitempty"`
	UserID    int       `yaml:"user_id" json:"user_id"`
	PhotoID   int       `yaml:"photo_id" json:"photo_id"`
	CreatedAt time.Time `yaml:"created_at" json:"created_at"`
}

// Follow is a directed edge FollowerID -> FolloweeID.
type Follow struct {
	FollowerID int       `yaml:"follower_id" json:"follower_id"`
	FolloweeID int       `yaml:"followee_id" json:"followee_id"`
	CreatedAt  time.Time `yaml:"created_at" json:"created_at"`
}

// Tag is a hashtag.
type Tag struct {
	ID   int    `yaml:"id" json:"id"`
	Name string `yaml:"name" json:"name"`
}

// PhotoTag links a photo to a tag.
type PhotoTag struct {
	PhotoID int `yaml:"photo_id" json:"photo_id"`
	TagID   int `yaml:"tag_id" json:"tag_id"`
}

// Snapshot is one consistent read of every relation of the entity store.
// It is treated as immutable once loaded.
type Snapshot struct {
	Users     []User     `yaml:"users"`
	Photos    []Photo    `yaml:"photos"`
	Likes     []Like     `yaml:"likes"`
	Comments  []Comment  `yaml:"comments"`
	Follows   []Follow   `yaml:"follows"`
	Tags      []Tag      `yaml:"tags"`
	PhotoTags []PhotoTag `yaml:"photo_tags"`
}

// Rows returns the row count per relation name.
func (s *Snapshot) Rows() map[string]int {
	return map[string]int{
		"users":      len(s.Users),
		"photos":     len(s.Photos),
		"likes":      len(s.Likes),
		"comments":   len(s.Comments),
		"follows":    len(s.Follows),
		"tags":       len(s.Tags),
		"photo_tags": len(s.PhotoTags),
	}
}
