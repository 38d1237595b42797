package seed

import (
	"time"

	"ripple/internal/models"
	"ripple/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// seedPasswordHash is the bcrypt hash of "password123", precomputed so
// seeding thousands of users does not burn CPU on bcrypt.
var seedPasswordHash = func() string {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(hash)
}()

// BuildUser constructs an unsaved fake user.
func (s *Seeder) BuildUser() *models.User {
	email := gofakeit.Email()
	now := time.Now().UTC()
	return &models.User{
		ID:           uuid.New(),
		Name:         gofakeit.Name(),
		Email:        email,
		PasswordHash: seedPasswordHash,
		AvatarURL:    service.GravatarURL(email),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// BuildPost constructs an unsaved post authored by the given user with a
// created_at spread over the last maxDays days.
func (s *Seeder) BuildPost(author *models.User, maxDays int) *models.Post {
	if maxDays <= 0 {
		maxDays = 90
	}
	createdAt := time.Now().UTC().
		Add(-time.Duration(s.rng.Intn(maxDays)) * 24 * time.Hour).
		Add(-time.Duration(s.rng.Intn(24)) * time.Hour).
		Add(-time.Duration(s.rng.Intn(60)) * time.Minute)

	return &models.Post{
		ID:           uuid.New(),
		AuthorID:     author.ID,
		AuthorName:   author.Name,
		AuthorAvatar: author.AvatarURL,
		Text:         gofakeit.Paragraph(1, 3, 8, "\n"),
		Likes:        []models.Like{},
		Comments:     []models.Comment{},
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
}

// BuildComment constructs a comment by the given user, timestamped after
// the post it belongs to.
func (s *Seeder) BuildComment(author *models.User, postCreatedAt time.Time) models.Comment {
	return models.Comment{
		ID:           uuid.New(),
		AuthorID:     author.ID,
		AuthorName:   author.Name,
		AuthorAvatar: author.AvatarURL,
		Text:         gofakeit.Sentence(s.rng.Intn(12) + 3),
		CreatedAt:    s.timeSince(postCreatedAt),
	}
}
