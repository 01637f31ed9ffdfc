package repository

import (
	"context"
	"fmt"
	"sync"

	"booklend/internal/model"
)

// ReservationRepository holds per-book reservation queues. Queue order is
// creation order; only open reservations (queued or offered) hold a place.
type ReservationRepository struct {
	latency Latency

	mu     sync.RWMutex
	byID   map[string]*model.Reservation
	byBook map[string][]string // bookID -> reservation ids in creation order
}

// NewReservationRepository constructs an empty ReservationRepository.
func NewReservationRepository(latency Latency) *ReservationRepository {
	return &ReservationRepository{
		latency: latency,
		byID:    make(map[string]*model.Reservation),
		byBook:  make(map[string][]string),
	}
}

// Create stores a new reservation at the tail of its book's queue.
func (r *ReservationRepository) Create(ctx context.Context, res model.Reservation) error {
	if err := r.latency.Wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID[res.ID] = &res
	r.byBook[res.BookID] = append(r.byBook[res.BookID], res.ID)
	return nil
}

// Update replaces a stored reservation or returns model.ErrNotFound.
func (r *ReservationRepository) Update(ctx context.Context, res model.Reservation) error {
	if err := r.latency.Wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[res.ID]; !ok {
		return fmt.Errorf("reservation %q: %w", res.ID, model.ErrNotFound)
	}
	r.byID[res.ID] = &res
	return nil
}

// QueueFor returns a book's open reservations in queue order.
func (r *ReservationRepository) QueueFor(ctx context.Context, bookID string) ([]model.Reservation, error) {
	if err := r.latency.Wait(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []model.Reservation
	for _, id := range r.byBook[bookID] {
		if res := r.byID[id]; res.Open() {
			out = append(out, *res)
		}
	}
	return out, nil
}

// OpenByUserAndBook returns the user's open reservation of the book, or
// model.ErrNotFound when there is none.
func (r *ReservationRepository) OpenByUserAndBook(ctx context.Context, userID, bookID string) (*model.Reservation, error) {
	if err := r.latency.Wait(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.byBook[bookID] {
		res := r.byID[id]
		if res.UserID == userID && res.Open() {
			copied := *res
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("open reservation of book %q by user %q: %w", bookID, userID, model.ErrNotFound)
}

// OpenByUser returns all of the user's open reservations.
func (r *ReservationRepository) OpenByUser(ctx context.Context, userID string) ([]model.Reservation, error) {
	if err := r.latency.Wait(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []model.Reservation
	for _, res := range r.byID {
		if res.UserID == userID && res.Open() {
			out = append(out, *res)
		}
	}
	return out, nil
}

// OpenAll returns every open reservation, queue order per book.
func (r *ReservationRepository) OpenAll(ctx context.Context) ([]model.Reservation, error) {
	if err := r.latency.Wait(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []model.Reservation
	for _, ids := range r.byBook {
		for _, id := range ids {
			if res := r.byID[id]; res.Open() {
				out = append(out, *res)
			}
		}
	}
	return out, nil
}

// CountQueued returns the number of open reservations across all books.
func (r *ReservationRepository) CountQueued(ctx context.Context) (int, error) {
	if err := r.latency.Wait(ctx); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, res := range r.byID {
		if res.Open() {
			n++
		}
	}
	return n, nil
}
