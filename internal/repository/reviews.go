package repository

import (
	"context"
	"sync"

	"booklend/internal/model"
)

// ReviewRepository holds reviews grouped by book.
type ReviewRepository struct {
	latency Latency

	mu     sync.RWMutex
	byBook map[string][]model.Review // newest last
}

// NewReviewRepository constructs a ReviewRepository seeded with reviews.
func NewReviewRepository(latency Latency, seed []model.Review) *ReviewRepository {
	r := &ReviewRepository{
		latency: latency,
		byBook:  make(map[string][]model.Review),
	}
	for _, rev := range seed {
		r.byBook[rev.BookID] = append(r.byBook[rev.BookID], rev)
	}
	return r
}

// Create stores a new review.
func (r *ReviewRepository) Create(ctx context.Context, rev model.Review) error {
	if err := r.latency.Wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byBook[rev.BookID] = append(r.byBook[rev.BookID], rev)
	return nil
}

// ByBook returns a book's reviews, newest first.
func (r *ReviewRepository) ByBook(ctx context.Context, bookID string) ([]model.Review, error) {
	if err := r.latency.Wait(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := r.byBook[bookID]
	out := make([]model.Review, len(stored))
	for i, rev := range stored {
		out[len(stored)-1-i] = rev
	}
	return out, nil
}

// All returns every review grouped by book id.
func (r *ReviewRepository) All(ctx context.Context) (map[string][]model.Review, error) {
	if err := r.latency.Wait(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string][]model.Review, len(r.byBook))
	for bookID, revs := range r.byBook {
		copied := make([]model.Review, len(revs))
		copy(copied, revs)
		out[bookID] = copied
	}
	return out, nil
}

// FavoriteRepository holds the (user, book) favorites set.
type FavoriteRepository struct {
	latency Latency

	mu     sync.RWMutex
	byUser map[string]map[string]bool
}

// NewFavoriteRepository constructs an empty FavoriteRepository.
func NewFavoriteRepository(latency Latency) *FavoriteRepository {
	return &FavoriteRepository{
		latency: latency,
		byUser:  make(map[string]map[string]bool),
	}
}

// Toggle flips the favorite flag and reports the new state.
func (r *FavoriteRepository) Toggle(ctx context.Context, userID, bookID string) (bool, error) {
	if err := r.latency.Wait(ctx); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.byUser[userID]
	if set == nil {
		set = make(map[string]bool)
		r.byUser[userID] = set
	}
	if set[bookID] {
		delete(set, bookID)
		return false, nil
	}
	set[bookID] = true
	return true, nil
}

// ByUser returns the set of book ids the user has favorited.
func (r *FavoriteRepository) ByUser(ctx context.Context, userID string) (map[string]bool, error) {
	if err := r.latency.Wait(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]bool, len(r.byUser[userID]))
	for bookID := range r.byUser[userID] {
		out[bookID] = true
	}
	return out, nil
}

// GoalRepository holds yearly reading goals keyed by (user, year).
type GoalRepository struct {
	latency Latency

	mu    sync.RWMutex
	goals map[string]map[int]*model.ReadingGoal
}

// NewGoalRepository constructs a GoalRepository seeded with goals.
func NewGoalRepository(latency Latency, seed []model.ReadingGoal) *GoalRepository {
	r := &GoalRepository{
		latency: latency,
		goals:   make(map[string]map[int]*model.ReadingGoal),
	}
	for i := range seed {
		g := seed[i]
		r.upsertLocked(g)
	}
	return r
}

// Get returns the user's goal for a year or model.ErrNotFound.
func (r *GoalRepository) Get(ctx context.Context, userID string, year int) (*model.ReadingGoal, error) {
	if err := r.latency.Wait(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.goals[userID][year]
	if !ok {
		return nil, model.ErrNotFound
	}
	copied := *g
	return &copied, nil
}

// Upsert creates or replaces the user's goal for the year.
func (r *GoalRepository) Upsert(ctx context.Context, g model.ReadingGoal) error {
	if err := r.latency.Wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upsertLocked(g)
	return nil
}

// IncrementCurrent bumps goal progress if a goal exists for the year.
// Missing goals are not an error: progress only counts when a target is set.
func (r *GoalRepository) IncrementCurrent(ctx context.Context, userID string, year int) error {
	if err := r.latency.Wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if g, ok := r.goals[userID][year]; ok {
		g.Current++
	}
	return nil
}

func (r *GoalRepository) upsertLocked(g model.ReadingGoal) {
	byYear := r.goals[g.UserID]
	if byYear == nil {
		byYear = make(map[int]*model.ReadingGoal)
		r.goals[g.UserID] = byYear
	}
	byYear[g.Year] = &g
}
