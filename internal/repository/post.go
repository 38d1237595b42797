// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"
	"time"

	"ripple/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sentinel errors shared by every store implementation. Services translate
// these into the API error taxonomy.
var (
	// ErrNotFound is returned when the requested document does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned by Save when the document changed since it
	// was loaded (version mismatch).
	ErrConflict = errors.New("concurrent modification")
)

// PostRepository defines the interface for post document operations.
// GetByID returns a fresh copy on every call; Save persists the whole
// document with a compare-and-swap on Version.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	List(ctx context.Context) ([]*models.Post, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*models.Post, error)
	Save(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uuid.UUID) error
	Ping(ctx context.Context) error
}

// postRepository implements PostRepository on gorm. The post is persisted as
// a single row with likes and comments serialized into JSON columns, so a
// save is one atomic document write.
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new gorm-backed post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).First(&post, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Find(&posts).Error
	return posts, err
}

// Save writes the full document back, guarded by the version the caller
// loaded. Zero rows affected means either a concurrent writer got there
// first or the post is gone; a follow-up existence check tells them apart.
func (r *postRepository) Save(ctx context.Context, post *models.Post) error {
	next := post.Clone()
	next.Version = post.Version + 1
	next.UpdatedAt = time.Now().UTC()

	res := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ? AND version = ?", post.ID, post.Version).
		Select("text", "likes", "comments", "version", "updated_at").
		Updates(next)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&models.Post{}).
			Where("id = ?", post.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return ErrConflict
	}

	post.Version = next.Version
	post.UpdatedAt = next.UpdatedAt
	return nil
}

// Delete removes the post row. Likes and comments live inside the document,
// so the cascade is implicit and no orphan sub-entities can remain.
func (r *postRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&models.Post{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *postRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
