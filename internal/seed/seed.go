// Package seed provides helpers to create test and demo data for the
// application stores. These helpers are intended for development and
// testing only.
package seed

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"ripple/internal/models"
	"ripple/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
)

// Options controls how much data the seeder generates.
type Options struct {
	Users           int
	Posts           int
	MaxLikesPerPost int
	MaxComments     int
	// MaxDays spreads post timestamps over the recent past.
	MaxDays int
}

// DefaultOptions returns a sensible default seeding profile.
func DefaultOptions() Options {
	return Options{
		Users:           25,
		Posts:           100,
		MaxLikesPerPost: 12,
		MaxComments:     6,
		MaxDays:         60,
	}
}

// Seeder populates the post and user stores with generated data. It goes
// through the repositories rather than raw SQL so every backend can be
// seeded the same way.
type Seeder struct {
	posts repository.PostRepository
	users repository.UserRepository
	rng   *rand.Rand
}

// NewSeeder creates a Seeder bound to the given repositories.
func NewSeeder(posts repository.PostRepository, users repository.UserRepository) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		posts: posts,
		users: users,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run generates users, posts, likes and comments per the options.
func (s *Seeder) Run(ctx context.Context, opts Options) error {
	users, err := s.SeedUsers(ctx, opts.Users)
	if err != nil {
		return fmt.Errorf("seeding users: %w", err)
	}

	if err := s.SeedPosts(ctx, users, opts); err != nil {
		return fmt.Errorf("seeding posts: %w", err)
	}

	return nil
}

// SeedUsers creates n fake accounts. All seeded accounts share the password
// "password123" so they can be logged into during development.
func (s *Seeder) SeedUsers(ctx context.Context, n int) ([]*models.User, error) {
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		user := s.BuildUser()
		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	log.Printf("seeded %d users", len(users))
	return users, nil
}

// SeedPosts creates posts with a spread of likes and comments from the
// given authors.
func (s *Seeder) SeedPosts(ctx context.Context, users []*models.User, opts Options) error {
	if len(users) == 0 {
		return fmt.Errorf("no users to author posts")
	}

	likes := 0
	comments := 0
	for i := 0; i < opts.Posts; i++ {
		author := users[s.rng.Intn(len(users))]
		post := s.BuildPost(author, opts.MaxDays)

		// Likes are unique per user, so sample without replacement.
		for _, u := range s.sampleUsers(users, opts.MaxLikesPerPost) {
			post.Likes = append([]models.Like{{
				UserID:    u.ID,
				CreatedAt: s.timeSince(post.CreatedAt),
			}}, post.Likes...)
			likes++
		}

		nComments := s.rng.Intn(opts.MaxComments + 1)
		for j := 0; j < nComments; j++ {
			commenter := users[s.rng.Intn(len(users))]
			post.Comments = append([]models.Comment{s.BuildComment(commenter, post.CreatedAt)}, post.Comments...)
			comments++
		}

		if err := s.posts.Create(ctx, post); err != nil {
			return err
		}
	}

	log.Printf("seeded %d posts with %d likes and %d comments", opts.Posts, likes, comments)
	return nil
}

// sampleUsers returns up to max distinct users.
func (s *Seeder) sampleUsers(users []*models.User, max int) []*models.User {
	n := s.rng.Intn(max + 1)
	if n > len(users) {
		n = len(users)
	}
	idx := s.rng.Perm(len(users))[:n]
	out := make([]*models.User, 0, n)
	for _, i := range idx {
		out = append(out, users[i])
	}
	return out
}

// timeSince returns a random timestamp between t and now.
func (s *Seeder) timeSince(t time.Time) time.Time {
	window := time.Since(t)
	if window <= 0 {
		return time.Now().UTC()
	}
	return t.Add(time.Duration(s.rng.Int63n(int64(window))))
}
