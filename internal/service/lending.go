// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"booklend/internal/model"
	"booklend/internal/repository"
)

// LendingService owns the per-book lending state machine: borrow, return,
// extend and the reservation queue with offer promotion.
type LendingService struct {
	books        *repository.BookRepository
	loans        *repository.LoanRepository
	reservations *repository.ReservationRepository
	favorites    *repository.FavoriteRepository
	reviews      *repository.ReviewRepository
	goals        *repository.GoalRepository

	now func() time.Time
}

// NewLendingService constructs a LendingService with its dependencies.
func NewLendingService(
	books *repository.BookRepository,
	loans *repository.LoanRepository,
	reservations *repository.ReservationRepository,
	favorites *repository.FavoriteRepository,
	reviews *repository.ReviewRepository,
	goals *repository.GoalRepository,
) *LendingService {
	return &LendingService{
		books:        books,
		loans:        loans,
		reservations: reservations,
		favorites:    favorites,
		reviews:      reviews,
		goals:        goals,
		now:          time.Now,
	}
}

// Borrow lends one copy of the book to the user.
//
// Guards, in order: the book must exist, the user must not already hold this
// book, the user must hold fewer than MaxActiveLoans books, and a copy must
// be free — either generally available or held by an offer to this user.
// A successful borrow by an offered user converts the reservation.
func (s *LendingService) Borrow(ctx context.Context, user *model.User, bookID string) (*model.Loan, error) {
	book, err := s.books.Get(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if err := s.expireOffers(ctx, bookID); err != nil {
		return nil, err
	}

	if _, err := s.loans.ActiveByUserAndBook(ctx, user.ID, bookID); err == nil {
		return nil, model.ErrAlreadyBorrowed
	} else if !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}

	active, err := s.loans.ActiveByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if len(active) >= model.MaxActiveLoans {
		return nil, fmt.Errorf("%w: at most %d books can be borrowed at once", model.ErrBorrowLimit, model.MaxActiveLoans)
	}

	reservation, err := s.reservations.OpenByUserAndBook(ctx, user.ID, bookID)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return nil, err
	}
	offeredToUser := reservation != nil && reservation.Status == model.ReservationOffered

	if !offeredToUser {
		available, err := s.availableCopies(ctx, book)
		if err != nil {
			return nil, err
		}
		if available <= 0 {
			return nil, model.ErrNoAvailableCopy
		}
	}

	now := s.now()
	loan := model.Loan{
		ID:         uuid.New().String(),
		BookID:     bookID,
		UserID:     user.ID,
		BorrowedAt: now,
		DueAt:      now.AddDate(0, 0, model.LoanDays),
	}
	if err := s.loans.Create(ctx, loan); err != nil {
		return nil, err
	}
	if err := s.books.IncrementTimesBorrowed(ctx, bookID); err != nil {
		return nil, err
	}

	if reservation != nil {
		if offeredToUser {
			reservation.Status = model.ReservationConverted
		} else {
			reservation.Status = model.ReservationCancelled
		}
		reservation.OfferExpiresAt = nil
		if err := s.reservations.Update(ctx, *reservation); err != nil {
			return nil, err
		}
	}

	return &loan, nil
}

// Return closes the user's active loan of the book. A non-blank return
// location is required; an optional review may be attached. Returning a
// copy with a non-empty reservation queue holds the copy and offers it to
// the head reservation.
func (s *LendingService) Return(ctx context.Context, user *model.User, bookID, location string, review *model.ReviewInput) (*model.Loan, error) {
	if strings.TrimSpace(location) == "" {
		return nil, fmt.Errorf("%w: return location is required", model.ErrValidation)
	}
	if review != nil {
		if err := validateReview(review); err != nil {
			return nil, err
		}
	}

	loan, err := s.loans.ActiveByUserAndBook(ctx, user.ID, bookID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.ErrNotBorrowed
		}
		return nil, err
	}

	now := s.now()
	loan.ReturnedAt = &now
	loan.ReturnLocation = strings.TrimSpace(location)
	if err := s.loans.Update(ctx, *loan); err != nil {
		return nil, err
	}

	if review != nil {
		rev := model.Review{
			ID:        uuid.New().String(),
			BookID:    bookID,
			UserID:    user.ID,
			UserName:  user.Name,
			Rating:    review.Rating,
			Content:   strings.TrimSpace(review.Content),
			Recommend: review.Recommend,
			CreatedAt: now,
		}
		if err := s.reviews.Create(ctx, rev); err != nil {
			return nil, err
		}
	}

	// Progress only counts toward a goal the user has set for this year.
	if err := s.goals.IncrementCurrent(ctx, user.ID, now.Year()); err != nil {
		return nil, err
	}

	if err := s.promote(ctx, bookID); err != nil {
		return nil, err
	}
	return loan, nil
}

// Extend pushes the due date of the user's active loan by ExtensionDays.
// A loan can be extended at most MaxExtensions times, and only for books
// flagged extendable.
func (s *LendingService) Extend(ctx context.Context, user *model.User, bookID string) (*model.Loan, error) {
	loan, err := s.loans.ActiveByUserAndBook(ctx, user.ID, bookID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, model.ErrNotBorrowed
		}
		return nil, err
	}
	if loan.ExtensionsUsed >= model.MaxExtensions {
		return nil, model.ErrAlreadyExtended
	}

	book, err := s.books.Get(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !book.Extendable {
		return nil, model.ErrNotExtendable
	}

	loan.DueAt = loan.DueAt.AddDate(0, 0, model.ExtensionDays)
	loan.ExtensionsUsed++
	if err := s.loans.Update(ctx, *loan); err != nil {
		return nil, err
	}
	return loan, nil
}

// ToggleReserve joins or leaves the book's reservation queue and reports
// the new state. Reserving requires a reservable book with no free copies;
// cancelling an offered reservation passes the held copy on.
func (s *LendingService) ToggleReserve(ctx context.Context, user *model.User, bookID string) (bool, error) {
	book, err := s.books.Get(ctx, bookID)
	if err != nil {
		return false, err
	}
	if err := s.expireOffers(ctx, bookID); err != nil {
		return false, err
	}

	existing, err := s.reservations.OpenByUserAndBook(ctx, user.ID, bookID)
	if err == nil {
		wasOffered := existing.Status == model.ReservationOffered
		existing.Status = model.ReservationCancelled
		existing.OfferExpiresAt = nil
		if err := s.reservations.Update(ctx, *existing); err != nil {
			return false, err
		}
		if wasOffered {
			if err := s.promote(ctx, bookID); err != nil {
				return false, err
			}
		}
		return false, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return false, err
	}

	if !book.Reservable {
		return false, model.ErrNotReservable
	}
	if _, err := s.loans.ActiveByUserAndBook(ctx, user.ID, bookID); err == nil {
		return false, model.ErrAlreadyBorrowed
	} else if !errors.Is(err, model.ErrNotFound) {
		return false, err
	}
	available, err := s.availableCopies(ctx, book)
	if err != nil {
		return false, err
	}
	if available > 0 {
		return false, model.ErrCopiesAvailable
	}

	reservation := model.Reservation{
		ID:        uuid.New().String(),
		BookID:    bookID,
		UserID:    user.ID,
		CreatedAt: s.now(),
		Status:    model.ReservationQueued,
	}
	if err := s.reservations.Create(ctx, reservation); err != nil {
		return false, err
	}
	return true, nil
}

// ToggleFavorite flips the user's favorite flag on the book.
func (s *LendingService) ToggleFavorite(ctx context.Context, user *model.User, bookID string) (bool, error) {
	if _, err := s.books.Get(ctx, bookID); err != nil {
		return false, err
	}
	return s.favorites.Toggle(ctx, user.ID, bookID)
}

// availableCopies counts copies not held by an active loan or an
// outstanding offer.
func (s *LendingService) availableCopies(ctx context.Context, book *model.Book) (int, error) {
	out, err := s.loans.ActiveCountByBook(ctx, book.ID)
	if err != nil {
		return 0, err
	}
	queue, err := s.reservations.QueueFor(ctx, book.ID)
	if err != nil {
		return 0, err
	}
	held := 0
	for _, res := range queue {
		if res.Status == model.ReservationOffered {
			held++
		}
	}
	available := book.TotalCopies - out - held
	if available < 0 {
		available = 0
	}
	return available, nil
}

// expireOffers lapses offers past their expiry and passes held copies on.
func (s *LendingService) expireOffers(ctx context.Context, bookID string) error {
	queue, err := s.reservations.QueueFor(ctx, bookID)
	if err != nil {
		return err
	}
	now := s.now()
	expired := false
	for _, res := range queue {
		if res.Status == model.ReservationOffered && res.OfferExpiresAt != nil && now.After(*res.OfferExpiresAt) {
			res.Status = model.ReservationExpired
			res.OfferExpiresAt = nil
			if err := s.reservations.Update(ctx, res); err != nil {
				return err
			}
			expired = true
		}
	}
	if expired {
		return s.promote(ctx, bookID)
	}
	return nil
}

// promote offers free copies to queued reservations in FIFO order.
func (s *LendingService) promote(ctx context.Context, bookID string) error {
	book, err := s.books.Get(ctx, bookID)
	if err != nil {
		return err
	}
	for {
		available, err := s.availableCopies(ctx, book)
		if err != nil {
			return err
		}
		if available <= 0 {
			return nil
		}
		queue, err := s.reservations.QueueFor(ctx, bookID)
		if err != nil {
			return err
		}
		var head *model.Reservation
		for i := range queue {
			if queue[i].Status == model.ReservationQueued {
				head = &queue[i]
				break
			}
		}
		if head == nil {
			return nil
		}
		expires := s.now().Add(model.OfferDays * 24 * time.Hour)
		head.Status = model.ReservationOffered
		head.OfferExpiresAt = &expires
		if err := s.reservations.Update(ctx, *head); err != nil {
			return err
		}
	}
}

func validateReview(review *model.ReviewInput) error {
	if review.Rating < 1 || review.Rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", model.ErrValidation)
	}
	if strings.TrimSpace(review.Content) == "" {
		return fmt.Errorf("%w: review content is required", model.ErrValidation)
	}
	return nil
}
