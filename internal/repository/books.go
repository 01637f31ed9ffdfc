package repository

import (
	"context"
	"fmt"
	"sync"

	"booklend/internal/model"
)

// BookRepository holds the book catalog.
type BookRepository struct {
	latency Latency

	mu    sync.RWMutex
	books map[string]*model.Book
	order []string // insertion order, keeps listing deterministic
}

// NewBookRepository constructs a BookRepository seeded with the given books.
func NewBookRepository(latency Latency, seed []model.Book) *BookRepository {
	r := &BookRepository{
		latency: latency,
		books:   make(map[string]*model.Book, len(seed)),
		order:   make([]string, 0, len(seed)),
	}
	for i := range seed {
		b := seed[i]
		r.books[b.ID] = &b
		r.order = append(r.order, b.ID)
	}
	return r
}

// List returns all books in insertion order.
func (r *BookRepository) List(ctx context.Context) ([]model.Book, error) {
	if err := r.latency.Wait(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Book, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.books[id])
	}
	return out, nil
}

// Get returns a single book or model.ErrNotFound.
func (r *BookRepository) Get(ctx context.Context, id string) (*model.Book, error) {
	if err := r.latency.Wait(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.books[id]
	if !ok {
		return nil, fmt.Errorf("book %q: %w", id, model.ErrNotFound)
	}
	copied := *b
	return &copied, nil
}

// Update replaces a stored book or returns model.ErrNotFound.
func (r *BookRepository) Update(ctx context.Context, b model.Book) error {
	if err := r.latency.Wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.books[b.ID]; !ok {
		return fmt.Errorf("book %q: %w", b.ID, model.ErrNotFound)
	}
	r.books[b.ID] = &b
	return nil
}

// IncrementTimesBorrowed bumps the monotonic popularity counter.
func (r *BookRepository) IncrementTimesBorrowed(ctx context.Context, id string) error {
	if err := r.latency.Wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.books[id]
	if !ok {
		return fmt.Errorf("book %q: %w", id, model.ErrNotFound)
	}
	b.TimesBorrowed++
	return nil
}
