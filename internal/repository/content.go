package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"booklend/internal/model"
)

// AnnouncementRepository holds admin-posted announcements.
type AnnouncementRepository struct {
	latency Latency

	mu    sync.RWMutex
	items map[string]*model.Announcement
}

// NewAnnouncementRepository constructs a repository seeded with announcements.
func NewAnnouncementRepository(latency Latency, seed []model.Announcement) *AnnouncementRepository {
	r := &AnnouncementRepository{
		latency: latency,
		items:   make(map[string]*model.Announcement, len(seed)),
	}
	for i := range seed {
		a := seed[i]
		r.items[a.ID] = &a
	}
	return r
}

// List returns announcements with pinned ones first, then newest first.
func (r *AnnouncementRepository) List(ctx context.Context) ([]model.Announcement, error) {
	if err := r.latency.Wait(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.Announcement, 0, len(r.items))
	for _, a := range r.items {
		out = append(out, *a)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Pinned != out[j].Pinned {
			return out[i].Pinned
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Get returns a single announcement or model.ErrNotFound.
func (r *AnnouncementRepository) Get(ctx context.Context, id string) (*model.Announcement, error) {
	if err := r.latency.Wait(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("announcement %q: %w", id, model.ErrNotFound)
	}
	copied := *a
	return &copied, nil
}

// Create stores a new announcement.
func (r *AnnouncementRepository) Create(ctx context.Context, a model.Announcement) error {
	if err := r.latency.Wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[a.ID] = &a
	return nil
}

// InquiryRepository holds user inquiries.
type InquiryRepository struct {
	latency Latency

	mu    sync.RWMutex
	items map[string]*model.Inquiry
}

// NewInquiryRepository constructs a repository seeded with inquiries.
func NewInquiryRepository(latency Latency, seed []model.Inquiry) *InquiryRepository {
	r := &InquiryRepository{
		latency: latency,
		items:   make(map[string]*model.Inquiry, len(seed)),
	}
	for i := range seed {
		q := seed[i]
		r.items[q.ID] = &q
	}
	return r
}

// List returns inquiries newest first. An empty userID lists all inquiries,
// otherwise only the user's own.
func (r *InquiryRepository) List(ctx context.Context, userID string) ([]model.Inquiry, error) {
	if err := r.latency.Wait(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []model.Inquiry
	for _, q := range r.items {
		if userID == "" || q.UserID == userID {
			out = append(out, *q)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// Get returns a single inquiry or model.ErrNotFound.
func (r *InquiryRepository) Get(ctx context.Context, id string) (*model.Inquiry, error) {
	if err := r.latency.Wait(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	q, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("inquiry %q: %w", id, model.ErrNotFound)
	}
	copied := *q
	return &copied, nil
}

// Create stores a new inquiry.
func (r *InquiryRepository) Create(ctx context.Context, q model.Inquiry) error {
	if err := r.latency.Wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[q.ID] = &q
	return nil
}

// Update replaces a stored inquiry or returns model.ErrNotFound.
func (r *InquiryRepository) Update(ctx context.Context, q model.Inquiry) error {
	if err := r.latency.Wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[q.ID]; !ok {
		return fmt.Errorf("inquiry %q: %w", q.ID, model.ErrNotFound)
	}
	r.items[q.ID] = &q
	return nil
}
