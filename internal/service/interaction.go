package service

import (
	"context"
	"errors"
	"time"

	"ripple/internal/cache"
	"ripple/internal/models"
	"ripple/internal/observability"
	"ripple/internal/repository"
	"ripple/internal/validation"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// maxSaveAttempts bounds the optimistic-retry loop. Retrying forever would
// keep request latency unbounded under heavy contention, so after this many
// version conflicts the operation fails with CONFLICT and the caller may
// resubmit.
const maxSaveAttempts = 3

// InteractionService applies like, unlike, add-comment and remove-comment
// mutations to a post. It is the only component that touches Post.Likes or
// Post.Comments. Every operation loads a fresh copy of the post, applies
// the mutation in memory, and persists the whole document through the
// store's compare-and-swap; on a version conflict it reloads and reapplies.
// Nothing is cached between requests, and a failed operation leaves the
// stored post untouched.
type InteractionService struct {
	postRepo repository.PostRepository
}

// AddCommentInput carries everything needed to attach a comment. AuthorName
// and AuthorAvatar are the denormalized snapshot captured by the caller at
// comment time.
type AddCommentInput struct {
	PostID       uuid.UUID
	AuthorID     uuid.UUID
	AuthorName   string
	AuthorAvatar string
	Text         string
}

// NewInteractionService creates a new interaction service.
func NewInteractionService(postRepo repository.PostRepository) *InteractionService {
	return &InteractionService{postRepo: postRepo}
}

// Like records userID's like on the post, newest first.
// Fails with ALREADY_LIKED if an entry for the user already exists.
func (s *InteractionService) Like(ctx context.Context, postID, userID uuid.UUID) ([]models.Like, error) {
	var likes []models.Like
	err := s.mutate(ctx, "like", postID, func(post *models.Post) error {
		if post.LikedBy(userID) {
			return models.NewAlreadyLikedError()
		}
		post.Likes = append([]models.Like{{UserID: userID, CreatedAt: time.Now().UTC()}}, post.Likes...)
		likes = post.Likes
		return nil
	})
	if err != nil {
		return nil, err
	}
	return likes, nil
}

// Unlike removes userID's like. Fails with NOT_LIKED if no entry exists.
// Should the post ever hold duplicate entries for one user (a state this
// service never produces), only the first match in scan order is removed.
func (s *InteractionService) Unlike(ctx context.Context, postID, userID uuid.UUID) ([]models.Like, error) {
	var likes []models.Like
	err := s.mutate(ctx, "unlike", postID, func(post *models.Post) error {
		idx := -1
		for i, l := range post.Likes {
			if l.UserID == userID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return models.NewNotLikedError()
		}
		post.Likes = append(post.Likes[:idx:idx], post.Likes[idx+1:]...)
		likes = post.Likes
		return nil
	})
	if err != nil {
		return nil, err
	}
	return likes, nil
}

// AddComment attaches a new comment to the post, newest first. The comment
// id is freshly generated and never reused, even after deletion.
func (s *InteractionService) AddComment(ctx context.Context, in AddCommentInput) ([]models.Comment, error) {
	if err := validation.CommentText(in.Text); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	var comments []models.Comment
	err := s.mutate(ctx, "add_comment", in.PostID, func(post *models.Post) error {
		comment := models.Comment{
			ID:           uuid.New(),
			AuthorID:     in.AuthorID,
			AuthorName:   in.AuthorName,
			AuthorAvatar: in.AuthorAvatar,
			Text:         in.Text,
			CreatedAt:    time.Now().UTC(),
		}
		post.Comments = append([]models.Comment{comment}, post.Comments...)
		comments = post.Comments
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// DeleteComment removes the comment with commentID. Only that comment's
// author may remove it. The removal target is located strictly by comment
// id; authorization compares the acting user against that specific
// comment's author. Matching on the author to find the removal index would
// delete the wrong comment when a user has commented more than once.
func (s *InteractionService) DeleteComment(ctx context.Context, postID, commentID, actingUserID uuid.UUID) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.mutate(ctx, "delete_comment", postID, func(post *models.Post) error {
		target := post.FindComment(commentID)
		if target == nil {
			return models.NewNotFoundError("Comment", commentID)
		}
		if target.AuthorID != actingUserID {
			return models.NewNotAuthorizedError("You can only delete your own comments")
		}
		kept := make([]models.Comment, 0, len(post.Comments)-1)
		for _, cm := range post.Comments {
			if cm.ID != commentID {
				kept = append(kept, cm)
			}
		}
		post.Comments = kept
		comments = kept
		return nil
	})
	if err != nil {
		return nil, err
	}
	return comments, nil
}

// mutate runs one read-modify-write cycle against the post, retrying on
// version conflicts up to maxSaveAttempts. The mutation callback must be
// pure with respect to the passed post: it either returns an error (no save
// happens) or leaves the post in the exact state to persist.
func (s *InteractionService) mutate(ctx context.Context, op string, postID uuid.UUID, apply func(*models.Post) error) error {
	ctx, span := observability.Tracer.Start(ctx, "interaction."+op)
	defer span.End()
	span.SetAttributes(attribute.String("post_id", postID.String()))

	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		post, err := s.postRepo.GetByID(ctx, postID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				observability.InteractionOps.WithLabelValues(op, "not_found").Inc()
				return models.NewNotFoundError("Post", postID)
			}
			return models.NewStoreError(err)
		}

		if err := apply(post); err != nil {
			observability.InteractionOps.WithLabelValues(op, "rejected").Inc()
			return err
		}

		err = s.postRepo.Save(ctx, post)
		if err == nil {
			if attempt > 0 {
				observability.SaveConflicts.WithLabelValues("retried").Inc()
			}
			observability.InteractionOps.WithLabelValues(op, "ok").Inc()
			// The saved post is part of the cached list, so the stale
			// entry has to go.
			cache.Invalidate(ctx, cache.PostsListKey())
			return nil
		}
		if errors.Is(err, repository.ErrNotFound) {
			// Post deleted between load and save.
			observability.InteractionOps.WithLabelValues(op, "not_found").Inc()
			return models.NewNotFoundError("Post", postID)
		}
		if !errors.Is(err, repository.ErrConflict) {
			return models.NewStoreError(err)
		}
		// Version conflict: loop reloads a fresh copy and reapplies.
	}

	observability.SaveConflicts.WithLabelValues("exhausted").Inc()
	observability.InteractionOps.WithLabelValues(op, "conflict").Inc()
	return models.NewConflictError("Post was modified concurrently, please retry")
}
