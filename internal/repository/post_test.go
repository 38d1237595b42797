package repository

import (
	"context"
	"testing"
	"time"

	"ripple/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Post{}); err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	return db
}

func makePost(authorID uuid.UUID, text string) *models.Post {
	return &models.Post{
		ID:         uuid.New(),
		AuthorID:   authorID,
		AuthorName: "Author",
		Text:       text,
		Likes:      []models.Like{},
		Comments:   []models.Comment{},
	}
}

func TestPostRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	author := uuid.New()

	t.Run("CreateAndGet", func(t *testing.T) {
		post := makePost(author, "hello")
		require.NoError(t, repo.Create(ctx, post))

		got, err := repo.GetByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, post.ID, got.ID)
		assert.Equal(t, "hello", got.Text)
		assert.Empty(t, got.Likes)
		assert.Empty(t, got.Comments)
	})

	t.Run("GetMissing", func(t *testing.T) {
		_, err := repo.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("SavePersistsLikesAndComments", func(t *testing.T) {
		post := makePost(author, "likeable")
		require.NoError(t, repo.Create(ctx, post))

		liker := uuid.New()
		post.Likes = []models.Like{{UserID: liker, CreatedAt: time.Now().UTC()}}
		post.Comments = []models.Comment{{
			ID:        uuid.New(),
			AuthorID:  author,
			Text:      "nice",
			CreatedAt: time.Now().UTC(),
		}}
		require.NoError(t, repo.Save(ctx, post))
		assert.Equal(t, int64(1), post.Version)

		got, err := repo.GetByID(ctx, post.ID)
		require.NoError(t, err)
		require.Len(t, got.Likes, 1)
		assert.Equal(t, liker, got.Likes[0].UserID)
		require.Len(t, got.Comments, 1)
		assert.Equal(t, "nice", got.Comments[0].Text)
		assert.Equal(t, int64(1), got.Version)
	})

	t.Run("SaveStaleVersionConflicts", func(t *testing.T) {
		post := makePost(author, "contended")
		require.NoError(t, repo.Create(ctx, post))

		copyA, err := repo.GetByID(ctx, post.ID)
		require.NoError(t, err)
		copyB, err := repo.GetByID(ctx, post.ID)
		require.NoError(t, err)

		copyA.Likes = []models.Like{{UserID: uuid.New(), CreatedAt: time.Now().UTC()}}
		require.NoError(t, repo.Save(ctx, copyA))

		copyB.Likes = []models.Like{{UserID: uuid.New(), CreatedAt: time.Now().UTC()}}
		err = repo.Save(ctx, copyB)
		assert.ErrorIs(t, err, ErrConflict)

		// The losing write must not have clobbered the winner.
		got, err := repo.GetByID(ctx, post.ID)
		require.NoError(t, err)
		require.Len(t, got.Likes, 1)
		assert.Equal(t, copyA.Likes[0].UserID, got.Likes[0].UserID)
	})

	t.Run("SaveDeletedPost", func(t *testing.T) {
		post := makePost(author, "doomed")
		require.NoError(t, repo.Create(ctx, post))
		require.NoError(t, repo.Delete(ctx, post.ID))

		post.Text = "too late"
		err := repo.Save(ctx, post)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("DeleteMissing", func(t *testing.T) {
		err := repo.Delete(ctx, uuid.New())
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestPostRepositoryListing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	alice := uuid.New()
	bob := uuid.New()

	old := makePost(alice, "old")
	old.CreatedAt = time.Now().UTC().Add(-time.Hour)
	recent := makePost(bob, "recent")
	recent.CreatedAt = time.Now().UTC()

	require.NoError(t, repo.Create(ctx, old))
	require.NoError(t, repo.Create(ctx, recent))

	t.Run("ListNewestFirst", func(t *testing.T) {
		posts, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, posts, 2)
		assert.Equal(t, "recent", posts[0].Text)
		assert.Equal(t, "old", posts[1].Text)
	})

	t.Run("ListByAuthor", func(t *testing.T) {
		posts, err := repo.ListByAuthor(ctx, alice)
		require.NoError(t, err)
		require.Len(t, posts, 1)
		assert.Equal(t, alice, posts[0].AuthorID)
	})
}
