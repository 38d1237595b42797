package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"ripple/internal/config"
	"ripple/internal/models"
	"ripple/internal/repository"
	"ripple/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:         "8460",
		JWTSecret:    "test-secret-for-handler-tests-0123456789",
		StoreBackend: "memory",
		Env:          "test",
	}
}

// newTestServer wires a Server against in-memory stores. The prometheus
// middleware stays nil so repeated test runs do not re-register collectors.
func newTestServer(redisClient *redis.Client) (*fiber.App, *Server) {
	postRepo := repository.NewMemoryPostRepository()
	userRepo := repository.NewMemoryUserRepository()

	s := &Server{
		config:   testConfig(),
		redis:    redisClient,
		postRepo: postRepo,
		userRepo: userRepo,
	}
	s.userService = service.NewUserService(userRepo)
	s.postService = service.NewPostService(postRepo, userRepo, nil)
	s.interactions = service.NewInteractionService(postRepo)

	app := fiber.New()
	s.SetupRoutes(app)
	return app, s
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func registerUser(t *testing.T, app *fiber.App, name, email string) (string, *models.User) {
	t.Helper()
	resp, raw := doJSON(t, app, fiber.MethodPost, "/api/users/", "", fiber.Map{
		"name":     name,
		"email":    email,
		"password": "password123",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))

	var out authResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	require.NotEmpty(t, out.Token)
	return out.Token, out.User
}

func TestRegisterAndLogin(t *testing.T) {
	app, _ := newTestServer(nil)

	token, user := registerUser(t, app, "Alice", "alice@example.com")
	assert.Equal(t, "alice@example.com", user.Email)

	t.Run("CurrentUser", func(t *testing.T) {
		resp, raw := doJSON(t, app, fiber.MethodGet, "/api/auth/", token, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var got models.User
		require.NoError(t, json.Unmarshal(raw, &got))
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("Login", func(t *testing.T) {
		resp, raw := doJSON(t, app, fiber.MethodPost, "/api/auth/", "", fiber.Map{
			"email":    "alice@example.com",
			"password": "password123",
		})
		require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	})

	t.Run("BadPassword", func(t *testing.T) {
		resp, raw := doJSON(t, app, fiber.MethodPost, "/api/auth/", "", fiber.Map{
			"email":    "alice@example.com",
			"password": "nope",
		})
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

		var body models.ErrorResponse
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, models.CodeUnauthenticated, body.Code)
	})

	t.Run("MissingToken", func(t *testing.T) {
		resp, _ := doJSON(t, app, fiber.MethodGet, "/api/auth/", "", nil)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("GarbageToken", func(t *testing.T) {
		resp, _ := doJSON(t, app, fiber.MethodGet, "/api/auth/", "not.a.jwt", nil)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestPostEndpoints(t *testing.T) {
	app, _ := newTestServer(nil)

	aliceToken, _ := registerUser(t, app, "Alice", "alice@example.com")
	bobToken, _ := registerUser(t, app, "Bob", "bob@example.com")

	var postID string

	t.Run("Create", func(t *testing.T) {
		resp, raw := doJSON(t, app, fiber.MethodPost, "/api/posts/", aliceToken, fiber.Map{
			"text": "first post",
		})
		require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))

		var post models.Post
		require.NoError(t, json.Unmarshal(raw, &post))
		assert.Equal(t, "first post", post.Text)
		assert.Equal(t, "Alice", post.AuthorName)
		postID = post.ID.String()
	})

	t.Run("CreateEmptyText", func(t *testing.T) {
		resp, raw := doJSON(t, app, fiber.MethodPost, "/api/posts/", aliceToken, fiber.Map{
			"text": "",
		})
		require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		var body models.ErrorResponse
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, models.CodeValidation, body.Code)
	})

	t.Run("ListAndGet", func(t *testing.T) {
		resp, raw := doJSON(t, app, fiber.MethodGet, "/api/posts/", aliceToken, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		var posts []models.Post
		require.NoError(t, json.Unmarshal(raw, &posts))
		require.Len(t, posts, 1)

		resp, raw = doJSON(t, app, fiber.MethodGet, "/api/posts/"+postID, aliceToken, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	})

	t.Run("GetUnknownPost", func(t *testing.T) {
		resp, _ := doJSON(t, app, fiber.MethodGet, "/api/posts/00000000-0000-0000-0000-000000000001", aliceToken, nil)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})

	t.Run("GetInvalidID", func(t *testing.T) {
		resp, _ := doJSON(t, app, fiber.MethodGet, "/api/posts/not-a-uuid", aliceToken, nil)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("DeleteByNonOwner", func(t *testing.T) {
		resp, raw := doJSON(t, app, fiber.MethodDelete, "/api/posts/"+postID, bobToken, nil)
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

		var body models.ErrorResponse
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, models.CodeNotAuthorized, body.Code)
	})

	t.Run("DeleteByOwner", func(t *testing.T) {
		resp, _ := doJSON(t, app, fiber.MethodDelete, "/api/posts/"+postID, aliceToken, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		resp, _ = doJSON(t, app, fiber.MethodGet, "/api/posts/"+postID, aliceToken, nil)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}

func TestInteractionEndpoints(t *testing.T) {
	app, _ := newTestServer(nil)

	aliceToken, _ := registerUser(t, app, "Alice", "alice@example.com")
	bobToken, _ := registerUser(t, app, "Bob", "bob@example.com")

	_, raw := doJSON(t, app, fiber.MethodPost, "/api/posts/", aliceToken, fiber.Map{
		"text": "like me",
	})
	var post models.Post
	require.NoError(t, json.Unmarshal(raw, &post))
	postID := post.ID.String()

	t.Run("LikeUnlikeCycle", func(t *testing.T) {
		resp, raw := doJSON(t, app, fiber.MethodPut, "/api/posts/like/"+postID, bobToken, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))

		var likes []models.Like
		require.NoError(t, json.Unmarshal(raw, &likes))
		assert.Len(t, likes, 1)

		// Second like from the same user is rejected.
		resp, raw = doJSON(t, app, fiber.MethodPut, "/api/posts/like/"+postID, bobToken, nil)
		require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		var body models.ErrorResponse
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, models.CodeAlreadyLiked, body.Code)

		resp, raw = doJSON(t, app, fiber.MethodPut, "/api/posts/unlike/"+postID, bobToken, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		require.NoError(t, json.Unmarshal(raw, &likes))
		assert.Empty(t, likes)

		resp, raw = doJSON(t, app, fiber.MethodPut, "/api/posts/unlike/"+postID, bobToken, nil)
		require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, models.CodeNotLiked, body.Code)
	})

	t.Run("Comments", func(t *testing.T) {
		resp, raw := doJSON(t, app, fiber.MethodPost, "/api/posts/comment/"+postID, bobToken, fiber.Map{
			"text": "great post",
		})
		require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))

		var comments []models.Comment
		require.NoError(t, json.Unmarshal(raw, &comments))
		require.Len(t, comments, 1)
		assert.Equal(t, "Bob", comments[0].AuthorName)
		commentID := comments[0].ID.String()

		// Only the comment author may delete it.
		path := fmt.Sprintf("/api/posts/comment/%s/%s", postID, commentID)
		resp, raw = doJSON(t, app, fiber.MethodDelete, path, aliceToken, nil)
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		var body models.ErrorResponse
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, models.CodeNotAuthorized, body.Code)

		resp, raw = doJSON(t, app, fiber.MethodDelete, path, bobToken, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		require.NoError(t, json.Unmarshal(raw, &comments))
		assert.Empty(t, comments)
	})

	t.Run("LikeUnknownPost", func(t *testing.T) {
		resp, _ := doJSON(t, app, fiber.MethodPut, "/api/posts/like/00000000-0000-0000-0000-000000000001", bobToken, nil)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}

func TestUserPostsEndpoint(t *testing.T) {
	app, _ := newTestServer(nil)

	aliceToken, alice := registerUser(t, app, "Alice", "alice@example.com")
	_, _ = registerUser(t, app, "Bob", "bob@example.com")

	for i := 0; i < 2; i++ {
		resp, raw := doJSON(t, app, fiber.MethodPost, "/api/posts/", aliceToken, fiber.Map{
			"text": fmt.Sprintf("post %d", i),
		})
		require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	}

	resp, raw := doJSON(t, app, fiber.MethodGet, "/api/users/"+alice.ID.String()+"/posts", aliceToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var posts []models.Post
	require.NoError(t, json.Unmarshal(raw, &posts))
	require.Len(t, posts, 2)
	for _, p := range posts {
		assert.Equal(t, alice.ID, p.AuthorID)
	}
}

func TestHealthEndpoints(t *testing.T) {
	app, _ := newTestServer(nil)

	resp, _ := doJSON(t, app, fiber.MethodGet, "/health/live", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, raw := doJSON(t, app, fiber.MethodGet, "/health/ready", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Status string `json:"status"`
		Checks struct {
			Store string `json:"store"`
			Redis string `json:"redis"`
		} `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "healthy", body.Checks.Store)
	assert.Equal(t, "unavailable", body.Checks.Redis)
}

// failingUserRepo simulates a users store that is up for everything except
// GetByID, which fails with an infrastructure error.
type failingUserRepo struct {
	repository.UserRepository
	err error
}

func (r failingUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return nil, r.err
}

func TestCreateCommentAuthorLookup(t *testing.T) {
	app, s := newTestServer(nil)

	token, _ := registerUser(t, app, "Carol", "carol@example.com")
	resp, raw := doJSON(t, app, fiber.MethodPost, "/api/posts/", token, fiber.Map{"text": "target"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode, string(raw))
	var post models.Post
	require.NoError(t, json.Unmarshal(raw, &post))

	t.Run("UnknownUserRejectedAsUnauthenticated", func(t *testing.T) {
		ghostToken, err := s.generateToken(uuid.New())
		require.NoError(t, err)

		resp, raw := doJSON(t, app, fiber.MethodPost, "/api/posts/comment/"+post.ID.String(), ghostToken, fiber.Map{"text": "hi"})
		require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, string(raw))

		var body models.ErrorResponse
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, models.CodeUnauthenticated, body.Code)
	})

	t.Run("StoreFailureIsNotAnAuthFailure", func(t *testing.T) {
		realRepo := s.userRepo
		s.userRepo = failingUserRepo{UserRepository: realRepo, err: errors.New("connection reset")}
		defer func() { s.userRepo = realRepo }()

		resp, raw := doJSON(t, app, fiber.MethodPost, "/api/posts/comment/"+post.ID.String(), token, fiber.Map{"text": "hi"})
		require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode, string(raw))

		var body models.ErrorResponse
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, models.CodeStoreUnavailable, body.Code)
		assert.NotContains(t, string(raw), "connection reset")
	})
}
