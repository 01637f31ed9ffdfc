package repository

import (
	"context"
	"fmt"
	"sync"

	"booklend/internal/model"
)

// LoanRepository holds all loans, active and returned.
type LoanRepository struct {
	latency Latency

	mu    sync.RWMutex
	loans map[string]*model.Loan
	order []string // creation order
}

// NewLoanRepository constructs an empty LoanRepository.
func NewLoanRepository(latency Latency) *LoanRepository {
	return &LoanRepository{
		latency: latency,
		loans:   make(map[string]*model.Loan),
	}
}

// Create stores a new loan.
func (r *LoanRepository) Create(ctx context.Context, loan model.Loan) error {
	if err := r.latency.Wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.loans[loan.ID] = &loan
	r.order = append(r.order, loan.ID)
	return nil
}

// Update replaces a stored loan or returns model.ErrNotFound.
func (r *LoanRepository) Update(ctx context.Context, loan model.Loan) error {
	if err := r.latency.Wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.loans[loan.ID]; !ok {
		return fmt.Errorf("loan %q: %w", loan.ID, model.ErrNotFound)
	}
	r.loans[loan.ID] = &loan
	return nil
}

// ActiveByUser returns the user's open loans in borrow order.
func (r *LoanRepository) ActiveByUser(ctx context.Context, userID string) ([]model.Loan, error) {
	return r.filter(ctx, func(l *model.Loan) bool {
		return l.UserID == userID && l.Active()
	})
}

// ByUser returns all of the user's loans, newest first.
func (r *LoanRepository) ByUser(ctx context.Context, userID string) ([]model.Loan, error) {
	loans, err := r.filter(ctx, func(l *model.Loan) bool { return l.UserID == userID })
	if err != nil {
		return nil, err
	}
	// creation order is oldest-first; history lists newest first
	for i, j := 0, len(loans)-1; i < j; i, j = i+1, j-1 {
		loans[i], loans[j] = loans[j], loans[i]
	}
	return loans, nil
}

// ActiveByUserAndBook returns the user's open loan of the book, or
// model.ErrNotFound when there is none.
func (r *LoanRepository) ActiveByUserAndBook(ctx context.Context, userID, bookID string) (*model.Loan, error) {
	loans, err := r.filter(ctx, func(l *model.Loan) bool {
		return l.UserID == userID && l.BookID == bookID && l.Active()
	})
	if err != nil {
		return nil, err
	}
	if len(loans) == 0 {
		return nil, fmt.Errorf("active loan of book %q by user %q: %w", bookID, userID, model.ErrNotFound)
	}
	return &loans[0], nil
}

// ActiveCountByBook returns the number of copies of a book currently out.
func (r *LoanRepository) ActiveCountByBook(ctx context.Context, bookID string) (int, error) {
	loans, err := r.filter(ctx, func(l *model.Loan) bool {
		return l.BookID == bookID && l.Active()
	})
	if err != nil {
		return 0, err
	}
	return len(loans), nil
}

// Active returns all open loans.
func (r *LoanRepository) Active(ctx context.Context) ([]model.Loan, error) {
	return r.filter(ctx, func(l *model.Loan) bool { return l.Active() })
}

func (r *LoanRepository) filter(ctx context.Context, keep func(*model.Loan) bool) ([]model.Loan, error) {
	if err := r.latency.Wait(ctx); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []model.Loan
	for _, id := range r.order {
		if l := r.loans[id]; keep(l) {
			out = append(out, *l)
		}
	}
	return out, nil
}
