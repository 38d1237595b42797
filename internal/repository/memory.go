package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"ripple/internal/models"

	"github.com/google/uuid"
)

// MemoryPostRepository is an in-memory PostRepository with the same
// compare-and-swap semantics as the durable stores. It backs unit and
// concurrency tests and local runs without a database.
type MemoryPostRepository struct {
	mu    sync.RWMutex
	posts map[uuid.UUID]*models.Post
}

// NewMemoryPostRepository returns an empty in-memory post repository.
func NewMemoryPostRepository() *MemoryPostRepository {
	return &MemoryPostRepository{posts: make(map[uuid.UUID]*models.Post)}
}

func (r *MemoryPostRepository) Create(_ context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.posts[post.ID] = post.Clone()
	return nil
}

func (r *MemoryPostRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	post, ok := r.posts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return post.Clone(), nil
}

func (r *MemoryPostRepository) List(_ context.Context) ([]*models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	posts := make([]*models.Post, 0, len(r.posts))
	for _, p := range r.posts {
		posts = append(posts, p.Clone())
	}
	sortNewestFirst(posts)
	return posts, nil
}

func (r *MemoryPostRepository) ListByAuthor(_ context.Context, authorID uuid.UUID) ([]*models.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var posts []*models.Post
	for _, p := range r.posts {
		if p.AuthorID == authorID {
			posts = append(posts, p.Clone())
		}
	}
	sortNewestFirst(posts)
	return posts, nil
}

func (r *MemoryPostRepository) Save(_ context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.posts[post.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Version != post.Version {
		return ErrConflict
	}
	next := post.Clone()
	next.Version = post.Version + 1
	r.posts[post.ID] = next
	post.Version = next.Version
	return nil
}

func (r *MemoryPostRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.posts[id]; !ok {
		return ErrNotFound
	}
	delete(r.posts, id)
	return nil
}

func (r *MemoryPostRepository) Ping(_ context.Context) error {
	return nil
}

// sortNewestFirst orders by created_at descending, falling back to id so
// posts created in the same instant still list deterministically.
func sortNewestFirst(posts []*models.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		if posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return strings.Compare(posts[i].ID.String(), posts[j].ID.String()) < 0
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
}

// MemoryUserRepository is the in-memory counterpart of UserRepository.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*models.User
}

// NewMemoryUserRepository returns an empty in-memory user repository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[uuid.UUID]*models.User)}
}

func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (r *MemoryUserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if strings.EqualFold(user.Email, email) {
			cp := *user
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}
