package server

import (
	"strings"

	"ripple/internal/models"
	"ripple/internal/service"

	"github.com/gofiber/fiber/v2"
)

type createPostRequest struct {
	Text string `json:"text"`
}

// CreatePost creates a new post authored by the authenticated user.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return nil
	}

	var req createPostRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, models.NewValidationError("Invalid request body"))
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		AuthorID: userID,
		Text:     strings.TrimSpace(req.Text),
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

// GetPosts returns all posts, newest first.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	posts, err := s.postService.ListPosts(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(posts)
}

// GetPost returns a single post by id.
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, ok := parseUUIDParam(c, "id")
	if !ok {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), postID)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

// GetUserPosts returns all posts authored by the given user, newest first.
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	authorID, ok := parseUUIDParam(c, "id")
	if !ok {
		return nil
	}

	posts, err := s.postService.GetUserPosts(c.UserContext(), authorID)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(posts)
}

// DeletePost removes a post. Only the author may delete their own post.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return nil
	}
	postID, ok := parseUUIDParam(c, "id")
	if !ok {
		return nil
	}

	if err := s.postService.DeletePost(c.UserContext(), service.DeletePostInput{
		PostID:       postID,
		ActingUserID: userID,
	}); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": "Post removed"})
}

// LikePost records a like from the authenticated user and returns the
// updated likes list.
func (s *Server) LikePost(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return nil
	}
	postID, ok := parseUUIDParam(c, "id")
	if !ok {
		return nil
	}

	likes, err := s.interactions.Like(c.UserContext(), postID, userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(likes)
}

// UnlikePost removes the authenticated user's like and returns the updated
// likes list.
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return nil
	}
	postID, ok := parseUUIDParam(c, "id")
	if !ok {
		return nil
	}

	likes, err := s.interactions.Unlike(c.UserContext(), postID, userID)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(likes)
}
