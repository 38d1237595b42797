package service

import (
	"context"
	"errors"

	"ripple/internal/cache"
	"ripple/internal/featureflags"
	"ripple/internal/models"
	"ripple/internal/repository"
	"ripple/internal/validation"

	"github.com/google/uuid"
)

// PostService owns the post lifecycle: creation, listing, lookup and
// deletion. Likes and comments are embedded in the document, so deleting a
// post removes them with it and no orphan sub-entities can remain.
type PostService struct {
	postRepo repository.PostRepository
	userRepo repository.UserRepository
	flags    *featureflags.Manager
}

type CreatePostInput struct {
	AuthorID uuid.UUID
	Text     string
}

type DeletePostInput struct {
	PostID       uuid.UUID
	ActingUserID uuid.UUID
}

// NewPostService creates a new post service. flags may be nil, which turns
// the list cache off.
func NewPostService(postRepo repository.PostRepository, userRepo repository.UserRepository, flags *featureflags.Manager) *PostService {
	return &PostService{postRepo: postRepo, userRepo: userRepo, flags: flags}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	if err := validation.PostText(in.Text); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	author, err := s.userRepo.GetByID(ctx, in.AuthorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, models.NewNotFoundError("User", in.AuthorID)
		}
		return nil, models.NewStoreError(err)
	}

	post := &models.Post{
		ID:           uuid.New(),
		AuthorID:     author.ID,
		AuthorName:   author.Name,
		AuthorAvatar: author.AvatarURL,
		Text:         in.Text,
		Likes:        []models.Like{},
		Comments:     []models.Comment{},
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, models.NewStoreError(err)
	}
	cache.Invalidate(ctx, cache.PostsListKey())

	return post, nil
}

// ListPosts returns all posts newest-first. When the post_list_cache flag
// is on, the read goes through the cache-aside helper; every write path
// invalidates the key, and the interaction core itself never caches a post.
func (s *PostService) ListPosts(ctx context.Context) ([]*models.Post, error) {
	if !s.flags.Enabled("post_list_cache", uuid.Nil) {
		posts, err := s.postRepo.List(ctx)
		if err != nil {
			return nil, models.NewStoreError(err)
		}
		return posts, nil
	}

	var posts []*models.Post
	err := cache.Aside(ctx, cache.PostsListKey(), &posts, cache.ListTTL, func() error {
		var fetchErr error
		posts, fetchErr = s.postRepo.List(ctx)
		return fetchErr
	})
	if err != nil {
		return nil, models.NewStoreError(err)
	}
	return posts, nil
}

func (s *PostService) GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, models.NewStoreError(err)
	}
	return post, nil
}

func (s *PostService) GetUserPosts(ctx context.Context, authorID uuid.UUID) ([]*models.Post, error) {
	posts, err := s.postRepo.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, models.NewStoreError(err)
	}
	return posts, nil
}

// DeletePost removes the post permanently. Only the author may delete it;
// a denied attempt leaves the post exactly as it was.
func (s *PostService) DeletePost(ctx context.Context, in DeletePostInput) error {
	post, err := s.postRepo.GetByID(ctx, in.PostID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.NewNotFoundError("Post", in.PostID)
		}
		return models.NewStoreError(err)
	}

	if post.AuthorID != in.ActingUserID {
		return models.NewNotAuthorizedError("You can only delete your own posts")
	}

	if err := s.postRepo.Delete(ctx, in.PostID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return models.NewNotFoundError("Post", in.PostID)
		}
		return models.NewStoreError(err)
	}
	cache.Invalidate(ctx, cache.PostsListKey())
	return nil
}
