// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Like records a single user's endorsement of a post. Existence of an entry
// in Post.Likes means that user currently likes the post; Post.Likes holds
// at most one entry per user.
type Like struct {
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment is a user-authored sub-item attached to a post. AuthorName and
// AuthorAvatar are snapshots taken when the comment was created; they are
// not updated if the author later changes their profile. That staleness is
// a product decision (comments show how the author appeared at the time),
// not something to "fix" with a live join.
type Comment struct {
	ID           uuid.UUID `json:"id"`
	AuthorID     uuid.UUID `json:"author_id"`
	AuthorName   string    `json:"author_name"`
	AuthorAvatar string    `json:"author_avatar"`
	Text         string    `json:"text"`
	CreatedAt    time.Time `json:"created_at"`
}

// Post represents a user-authored text item with likes and comments.
// Likes and Comments are embedded newest-first and never outlive the post.
// Version drives optimistic concurrency in the store: every successful save
// increments it, and a save against a stale version fails so concurrent
// mutations are never silently lost.
type Post struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AuthorID     uuid.UUID `gorm:"type:uuid;not null;index" json:"author_id"`
	AuthorName   string    `json:"author_name"`
	AuthorAvatar string    `json:"author_avatar"`
	Text         string    `gorm:"type:text;not null" json:"text"`
	Likes        []Like    `gorm:"serializer:json;type:jsonb" json:"likes"`
	Comments     []Comment `gorm:"serializer:json;type:jsonb" json:"comments"`
	Version      int64     `gorm:"not null;default:0" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LikedBy reports whether userID has an entry in Likes.
func (p *Post) LikedBy(userID uuid.UUID) bool {
	for _, l := range p.Likes {
		if l.UserID == userID {
			return true
		}
	}
	return false
}

// FindComment returns the comment with the given id, or nil if absent.
func (p *Post) FindComment(commentID uuid.UUID) *Comment {
	for i := range p.Comments {
		if p.Comments[i].ID == commentID {
			return &p.Comments[i]
		}
	}
	return nil
}

// Clone returns a deep copy of the post. Stores hand out clones so callers
// never mutate shared state outside a save.
func (p *Post) Clone() *Post {
	cp := *p
	cp.Likes = make([]Like, len(p.Likes))
	copy(cp.Likes, p.Likes)
	cp.Comments = make([]Comment, len(p.Comments))
	copy(cp.Comments, p.Comments)
	return &cp
}
