// Package bootstrap wires storage backends and shared runtime resources
// from configuration.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"ripple/internal/cache"
	"ripple/internal/config"
	"ripple/internal/database"
	"ripple/internal/models"
	"ripple/internal/repository"
	"ripple/internal/service"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Options control runtime initialization behavior.
type Options struct {
	// EnsureDevUser provisions a known login in non-production
	// environments so local frontends can sign in immediately.
	EnsureDevUser bool
}

// Stores bundles the repositories selected by STORE_BACKEND.
type Stores struct {
	Posts repository.PostRepository
	Users repository.UserRepository
}

// InitRuntime selects the store backend, connects Redis and optionally
// provisions the development login. Redis may come back nil; the app runs
// without a cache.
func InitRuntime(cfg *config.Config, opts Options) (*Stores, error) {
	stores, err := initStores(cfg)
	if err != nil {
		return nil, err
	}

	cache.InitRedis(cfg.RedisURL)

	if opts.EnsureDevUser {
		if err := ensureDevUser(cfg, stores.Users); err != nil {
			return nil, fmt.Errorf("failed to bootstrap development user: %w", err)
		}
	}

	return stores, nil
}

func initStores(cfg *config.Config) (*Stores, error) {
	switch cfg.StoreBackend {
	case "mongo":
		// Posts live in Mongo; accounts stay on Postgres.
		mongoDB, err := database.ConnectMongo(cfg)
		if err != nil {
			return nil, fmt.Errorf("mongo connection failed: %w", err)
		}
		db, err := database.Connect(cfg)
		if err != nil {
			return nil, fmt.Errorf("database connection failed: %w", err)
		}
		return &Stores{
			Posts: repository.NewMongoPostRepository(mongoDB),
			Users: repository.NewUserRepository(db),
		}, nil
	case "memory":
		return &Stores{
			Posts: repository.NewMemoryPostRepository(),
			Users: repository.NewMemoryUserRepository(),
		}, nil
	default:
		db, err := database.Connect(cfg)
		if err != nil {
			return nil, fmt.Errorf("database connection failed: %w", err)
		}
		return &Stores{
			Posts: repository.NewPostRepository(db),
			Users: repository.NewUserRepository(db),
		}, nil
	}
}

const (
	devUserEmail    = "dev@ripple.local"
	devUserPassword = "password123"
)

// ensureDevUser creates the well-known development login if it is missing.
// Refuses to run in production.
func ensureDevUser(cfg *config.Config, users repository.UserRepository) error {
	if cfg.Env == "production" || cfg.Env == "prod" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := users.GetByEmail(ctx, devUserEmail); err == nil {
		return nil
	} else if !errors.Is(err, repository.ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(devUserPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &models.User{
		ID:           uuid.New(),
		Name:         "Dev User",
		Email:        devUserEmail,
		PasswordHash: string(hash),
		AvatarURL:    service.GravatarURL(devUserEmail),
	}
	if err := users.Create(ctx, user); err != nil {
		return err
	}

	log.Printf("Provisioned development login %s (password: %s)", devUserEmail, devUserPassword)
	return nil
}
