package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"booklend/internal/model"
)

// UserRepository holds the employee credential table.
type UserRepository struct {
	latency Latency

	mu      sync.RWMutex
	users   map[string]*model.User
	byEmail map[string]string // lowered email -> user id
}

// NewUserRepository constructs a UserRepository seeded with the given users.
func NewUserRepository(latency Latency, seed []model.User) *UserRepository {
	r := &UserRepository{
		latency: latency,
		users:   make(map[string]*model.User, len(seed)),
		byEmail: make(map[string]string, len(seed)),
	}
	for i := range seed {
		u := seed[i]
		r.users[u.ID] = &u
		r.byEmail[strings.ToLower(u.Email)] = u.ID
	}
	return r
}

// Get returns a single user or model.ErrNotFound.
func (r *UserRepository) Get(ctx context.Context, id string) (*model.User, error) {
	if err := r.latency.Wait(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %q: %w", id, model.ErrNotFound)
	}
	copied := *u
	return &copied, nil
}

// GetByEmail looks a user up by email, case-insensitively.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if err := r.latency.Wait(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, fmt.Errorf("user %q: %w", email, model.ErrNotFound)
	}
	copied := *r.users[id]
	return &copied, nil
}

// Count returns the number of registered users.
func (r *UserRepository) Count(ctx context.Context) (int, error) {
	if err := r.latency.Wait(ctx); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.users), nil
}
