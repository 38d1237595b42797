package server

import (
	"errors"
	"strings"

	"ripple/internal/models"
	"ripple/internal/repository"
	"ripple/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createCommentRequest struct {
	Text string `json:"text"`
}

// CreateComment adds a comment to a post and returns the updated comments
// list, newest first.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return nil
	}
	postID, ok := parseUUIDParam(c, "id")
	if !ok {
		return nil
	}

	var req createCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	// Comments carry a snapshot of the author's name and avatar. A token
	// whose user no longer exists is an auth failure; anything else is the
	// store misbehaving.
	author, err := s.userRepo.GetByID(c.UserContext(), userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondError(c, models.NewUnauthenticatedError("Authorization required"))
		}
		return respondError(c, models.NewStoreError(err))
	}

	comments, err := s.interactions.AddComment(c.UserContext(), service.AddCommentInput{
		PostID:       postID,
		AuthorID:     author.ID,
		AuthorName:   author.Name,
		AuthorAvatar: author.AvatarURL,
		Text:         strings.TrimSpace(req.Text),
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(comments)
}

// DeleteComment removes a comment from a post. Only the comment's author may
// delete it. Returns the updated comments list.
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return nil
	}
	postID, ok := parseUUIDParam(c, "id")
	if !ok {
		return nil
	}
	commentID, ok := parseUUIDParam(c, "commentId")
	if !ok {
		return nil
	}

	comments, err := s.interactions.DeleteComment(c.UserContext(), postID, commentID, userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(comments)
}
