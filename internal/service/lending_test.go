package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booklend/internal/model"
	"booklend/internal/repository"
	"booklend/internal/service"
)

type lendingFixture struct {
	books        *repository.BookRepository
	loans        *repository.LoanRepository
	reservations *repository.ReservationRepository
	favorites    *repository.FavoriteRepository
	reviews      *repository.ReviewRepository
	goals        *repository.GoalRepository
	lending      *service.LendingService
	catalog      *service.CatalogService
}

func newLendingFixture(t *testing.T, books ...model.Book) *lendingFixture {
	t.Helper()
	f := &lendingFixture{
		books:        repository.NewBookRepository(0, books),
		loans:        repository.NewLoanRepository(0),
		reservations: repository.NewReservationRepository(0),
		favorites:    repository.NewFavoriteRepository(0),
		reviews:      repository.NewReviewRepository(0, nil),
		goals:        repository.NewGoalRepository(0, nil),
	}
	f.lending = service.NewLendingService(f.books, f.loans, f.reservations, f.favorites, f.reviews, f.goals)
	f.catalog = service.NewCatalogService(f.books, f.loans, f.reservations, f.favorites, f.reviews, f.lending)
	return f
}

func testBook(id string, total int, opts ...func(*model.Book)) model.Book {
	b := model.Book{
		ID:          id,
		Title:       "테스트 도서 " + id,
		Author:      "저자",
		Publisher:   "출판사",
		Category:    "개발",
		TotalCopies: total,
		Extendable:  true,
		Reservable:  true,
	}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

var (
	alice = &model.User{ID: "u-alice", Name: "김민지", Role: model.RoleUser}
	bob   = &model.User{ID: "u-bob", Name: "박준호", Role: model.RoleUser}
	carol = &model.User{ID: "u-carol", Name: "이서연", Role: model.RoleUser}
)

func (f *lendingFixture) available(t *testing.T, viewer *model.User, bookID string) int {
	t.Helper()
	view, err := f.catalog.Get(context.Background(), viewer, bookID)
	require.NoError(t, err)
	return view.Available
}

func TestBorrow_Succeeds(t *testing.T) {
	ctx := context.Background()
	f := newLendingFixture(t, testBook("bk-1", 3, func(b *model.Book) { b.TimesBorrowed = 1 }))

	// one copy already out to someone else
	_, err := f.lending.Borrow(ctx, bob, "bk-1")
	require.NoError(t, err)

	loan, err := f.lending.Borrow(ctx, alice, "bk-1")
	require.NoError(t, err)

	assert.Equal(t, "bk-1", loan.BookID)
	assert.Equal(t, alice.ID, loan.UserID)
	assert.Equal(t, model.LoanDays*24*time.Hour, loan.DueAt.Sub(loan.BorrowedAt))
	assert.Equal(t, 0, loan.ExtensionsUsed)

	assert.Equal(t, 1, f.available(t, alice, "bk-1"))

	book, err := f.books.Get(ctx, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, 3, book.TimesBorrowed)

	view, err := f.catalog.Get(ctx, alice, "bk-1")
	require.NoError(t, err)
	assert.True(t, view.BorrowedByMe)
	require.NotNil(t, view.DueDate)
	assert.Equal(t, loan.DueAt, *view.DueDate)
	assert.False(t, view.HasBeenExtended)
}

func TestBorrow_RejectedAtLoanLimit(t *testing.T) {
	ctx := context.Background()
	f := newLendingFixture(t,
		testBook("bk-1", 1), testBook("bk-2", 1), testBook("bk-3", 1))

	_, err := f.lending.Borrow(ctx, alice, "bk-1")
	require.NoError(t, err)
	_, err = f.lending.Borrow(ctx, alice, "bk-2")
	require.NoError(t, err)

	_, err = f.lending.Borrow(ctx, alice, "bk-3")
	require.ErrorIs(t, err, model.ErrBorrowLimit)
	assert.Contains(t, err.Error(), "2")

	// no state change
	assert.Equal(t, 1, f.available(t, alice, "bk-3"))
}

func TestBorrow_RejectedWhenAlreadyHeld(t *testing.T) {
	ctx := context.Background()
	f := newLendingFixture(t, testBook("bk-1", 2))

	_, err := f.lending.Borrow(ctx, alice, "bk-1")
	require.NoError(t, err)

	_, err = f.lending.Borrow(ctx, alice, "bk-1")
	assert.ErrorIs(t, err, model.ErrAlreadyBorrowed)
}

func TestBorrow_RejectedWhenNoCopyFree(t *testing.T) {
	ctx := context.Background()
	f := newLendingFixture(t, testBook("bk-1", 1))

	_, err := f.lending.Borrow(ctx, bob, "bk-1")
	require.NoError(t, err)

	_, err = f.lending.Borrow(ctx, alice, "bk-1")
	assert.ErrorIs(t, err, model.ErrNoAvailableCopy)
}

func TestBorrow_UnknownBook(t *testing.T) {
	f := newLendingFixture(t)
	_, err := f.lending.Borrow(context.Background(), alice, "nope")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestReturn_RequiresLocation(t *testing.T) {
	ctx := context.Background()
	f := newLendingFixture(t, testBook("bk-1", 1))

	_, err := f.lending.Borrow(ctx, alice, "bk-1")
	require.NoError(t, err)

	_, err = f.lending.Return(ctx, alice, "bk-1", "   ", nil)
	require.ErrorIs(t, err, model.ErrValidation)

	// loan untouched
	_, err = f.loans.ActiveByUserAndBook(ctx, alice.ID, "bk-1")
	assert.NoError(t, err)
}

func TestReturn_ClosesLoanAndFreesCopy(t *testing.T) {
	ctx := context.Background()
	f := newLendingFixture(t, testBook("bk-1", 1))

	_, err := f.lending.Borrow(ctx, alice, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, 0, f.available(t, alice, "bk-1"))

	loan, err := f.lending.Return(ctx, alice, "bk-1", "3층 반납함", nil)
	require.NoError(t, err)

	require.NotNil(t, loan.ReturnedAt)
	assert.Equal(t, "3층 반납함", loan.ReturnLocation)
	assert.Equal(t, 1, f.available(t, alice, "bk-1"))

	view, err := f.catalog.Get(ctx, alice, "bk-1")
	require.NoError(t, err)
	assert.False(t, view.BorrowedByMe)
	assert.Nil(t, view.BorrowDate)
	assert.Nil(t, view.DueDate)
}

func TestReturn_AttachesReviewAndUpdatesRating(t *testing.T) {
	ctx := context.Background()
	f := newLendingFixture(t, testBook("bk-1", 1))

	_, err := f.lending.Borrow(ctx, alice, "bk-1")
	require.NoError(t, err)

	_, err = f.lending.Return(ctx, alice, "bk-1", "반납함", &model.ReviewInput{
		Rating:    4,
		Content:   "추천합니다",
		Recommend: true,
	})
	require.NoError(t, err)

	reviews, err := f.reviews.ByBook(ctx, "bk-1")
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	assert.Equal(t, alice.Name, reviews[0].UserName)
	assert.Equal(t, 4, reviews[0].Rating)

	view, err := f.catalog.Get(ctx, alice, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, 4.0, view.Rating)
	assert.Equal(t, 1, view.ReviewCount)
}

func TestReturn_RejectsInvalidReview(t *testing.T) {
	ctx := context.Background()
	f := newLendingFixture(t, testBook("bk-1", 1))

	_, err := f.lending.Borrow(ctx, alice, "bk-1")
	require.NoError(t, err)

	_, err = f.lending.Return(ctx, alice, "bk-1", "반납함", &model.ReviewInput{Rating: 6, Content: "x"})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = f.lending.Return(ctx, alice, "bk-1", "반납함", &model.ReviewInput{Rating: 3, Content: "  "})
	assert.ErrorIs(t, err, model.ErrValidation)

	// loan still active after both rejected attempts
	_, err = f.loans.ActiveByUserAndBook(ctx, alice.ID, "bk-1")
	assert.NoError(t, err)
}

func TestReturn_CountsTowardReadingGoal(t *testing.T) {
	ctx := context.Background()
	f := newLendingFixture(t, testBook("bk-1", 1))
	year := time.Now().Year()
	require.NoError(t, f.goals.Upsert(ctx, model.ReadingGoal{UserID: alice.ID, Year: year, Target: 12, Current: 3}))

	_, err := f.lending.Borrow(ctx, alice, "bk-1")
	require.NoError(t, err)
	_, err = f.lending.Return(ctx, alice, "bk-1", "반납함", nil)
	require.NoError(t, err)

	goal, err := f.goals.Get(ctx, alice.ID, year)
	require.NoError(t, err)
	assert.Equal(t, 4, goal.Current)
}

func TestReturn_NotBorrowed(t *testing.T) {
	f := newLendingFixture(t, testBook("bk-1", 1))
	_, err := f.lending.Return(context.Background(), alice, "bk-1", "반납함", nil)
	assert.ErrorIs(t, err, model.ErrNotBorrowed)
}

func TestExtend_OnceThenRejected(t *testing.T) {
	ctx := context.Background()
	f := newLendingFixture(t, testBook("bk-1", 1))

	original, err := f.lending.Borrow(ctx, alice, "bk-1")
	require.NoError(t, err)

	extended, err := f.lending.Extend(ctx, alice, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, model.ExtensionDays*24*time.Hour, extended.DueAt.Sub(original.DueAt))
	assert.Equal(t, 1, extended.ExtensionsUsed)

	_, err = f.lending.Extend(ctx, alice, "bk-1")
	require.ErrorIs(t, err, model.ErrAlreadyExtended)

	// due date unchanged by the rejected attempt
	loan, err := f.loans.ActiveByUserAndBook(ctx, alice.ID, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, extended.DueAt, loan.DueAt)
}

func TestExtend_RejectedForNonExtendableBook(t *testing.T) {
	ctx := context.Background()
	f := newLendingFixture(t, testBook("bk-1", 1, func(b *model.Book) { b.Extendable = false }))

	_, err := f.lending.Borrow(ctx, alice, "bk-1")
	require.NoError(t, err)

	_, err = f.lending.Extend(ctx, alice, "bk-1")
	assert.ErrorIs(t, err, model.ErrNotExtendable)
}

func TestExtend_RejectedWithoutLoan(t *testing.T) {
	f := newLendingFixture(t, testBook("bk-1", 1))
	_, err := f.lending.Extend(context.Background(), alice, "bk-1")
	assert.ErrorIs(t, err, model.ErrNotBorrowed)
}

func TestReserve_RejectedWhenCopiesAvailable(t *testing.T) {
	f := newLendingFixture(t, testBook("bk-1", 1))
	_, err := f.lending.ToggleReserve(context.Background(), alice, "bk-1")
	assert.ErrorIs(t, err, model.ErrCopiesAvailable)
}

func TestReserve_RejectedForNonReservableBook(t *testing.T) {
	ctx := context.Background()
	f := newLendingFixture(t, testBook("bk-1", 1, func(b *model.Book) { b.Reservable = false }))

	_, err := f.lending.Borrow(ctx, bob, "bk-1")
	require.NoError(t, err)

	_, err = f.lending.ToggleReserve(ctx, alice, "bk-1")
	assert.ErrorIs(t, err, model.ErrNotReservable)
}

func TestReserve_ToggleCancels(t *testing.T) {
	ctx := context.Background()
	f := newLendingFixture(t, testBook("bk-1", 1))

	_, err := f.lending.Borrow(ctx, bob, "bk-1")
	require.NoError(t, err)

	reserved, err := f.lending.ToggleReserve(ctx, alice, "bk-1")
	require.NoError(t, err)
	assert.True(t, reserved)

	view, err := f.catalog.Get(ctx, alice, "bk-1")
	require.NoError(t, err)
	assert.True(t, view.ReservedByMe)
	assert.Equal(t, model.LabelReserved, view.StatusLabel)

	reserved, err = f.lending.ToggleReserve(ctx, alice, "bk-1")
	require.NoError(t, err)
	assert.False(t, reserved)

	view, err = f.catalog.Get(ctx, alice, "bk-1")
	require.NoError(t, err)
	assert.False(t, view.ReservedByMe)
}

func TestReturn_PromotesHeadReservation(t *testing.T) {
	ctx := context.Background()
	f := newLendingFixture(t, testBook("bk-1", 1))

	_, err := f.lending.Borrow(ctx, alice, "bk-1")
	require.NoError(t, err)

	reserved, err := f.lending.ToggleReserve(ctx, bob, "bk-1")
	require.NoError(t, err)
	require.True(t, reserved)

	_, err = f.lending.Return(ctx, alice, "bk-1", "반납함", nil)
	require.NoError(t, err)

	// the returned copy is held for bob
	res, err := f.reservations.OpenByUserAndBook(ctx, bob.ID, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, model.ReservationOffered, res.Status)
	require.NotNil(t, res.OfferExpiresAt)

	view, err := f.catalog.Get(ctx, bob, "bk-1")
	require.NoError(t, err)
	assert.True(t, view.OfferedToMe)
	assert.Equal(t, 0, view.Available)

	// nobody else can take the held copy
	_, err = f.lending.Borrow(ctx, carol, "bk-1")
	require.ErrorIs(t, err, model.ErrNoAvailableCopy)

	// the offered user converts the offer into a loan
	loan, err := f.lending.Borrow(ctx, bob, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, bob.ID, loan.UserID)

	_, err = f.reservations.OpenByUserAndBook(ctx, bob.ID, "bk-1")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestOfferExpiry_PassesCopyToNextReservation(t *testing.T) {
	ctx := context.Background()
	f := newLendingFixture(t, testBook("bk-1", 1))

	_, err := f.lending.Borrow(ctx, alice, "bk-1")
	require.NoError(t, err)
	_, err = f.lending.ToggleReserve(ctx, bob, "bk-1")
	require.NoError(t, err)
	_, err = f.lending.ToggleReserve(ctx, carol, "bk-1")
	require.NoError(t, err)

	_, err = f.lending.Return(ctx, alice, "bk-1", "반납함", nil)
	require.NoError(t, err)

	// lapse bob's offer
	offered, err := f.reservations.OpenByUserAndBook(ctx, bob.ID, "bk-1")
	require.NoError(t, err)
	require.Equal(t, model.ReservationOffered, offered.Status)
	past := time.Now().Add(-time.Hour)
	offered.OfferExpiresAt = &past
	require.NoError(t, f.reservations.Update(ctx, *offered))

	// any detail access sweeps expired offers
	_, err = f.catalog.Get(ctx, carol, "bk-1")
	require.NoError(t, err)

	_, err = f.reservations.OpenByUserAndBook(ctx, bob.ID, "bk-1")
	assert.ErrorIs(t, err, model.ErrNotFound)

	next, err := f.reservations.OpenByUserAndBook(ctx, carol.ID, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, model.ReservationOffered, next.Status)
}

func TestCancelOfferedReservation_PromotesNext(t *testing.T) {
	ctx := context.Background()
	f := newLendingFixture(t, testBook("bk-1", 1))

	_, err := f.lending.Borrow(ctx, alice, "bk-1")
	require.NoError(t, err)
	_, err = f.lending.ToggleReserve(ctx, bob, "bk-1")
	require.NoError(t, err)
	_, err = f.lending.ToggleReserve(ctx, carol, "bk-1")
	require.NoError(t, err)

	_, err = f.lending.Return(ctx, alice, "bk-1", "반납함", nil)
	require.NoError(t, err)

	reserved, err := f.lending.ToggleReserve(ctx, bob, "bk-1")
	require.NoError(t, err)
	assert.False(t, reserved)

	next, err := f.reservations.OpenByUserAndBook(ctx, carol.ID, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, model.ReservationOffered, next.Status)
}

func TestToggleFavorite(t *testing.T) {
	ctx := context.Background()
	f := newLendingFixture(t, testBook("bk-1", 1))

	favorite, err := f.lending.ToggleFavorite(ctx, alice, "bk-1")
	require.NoError(t, err)
	assert.True(t, favorite)

	view, err := f.catalog.Get(ctx, alice, "bk-1")
	require.NoError(t, err)
	assert.True(t, view.Favorite)

	favorite, err = f.lending.ToggleFavorite(ctx, alice, "bk-1")
	require.NoError(t, err)
	assert.False(t, favorite)
}

func TestAvailabilityInvariant_NeverNegativeOrAboveTotal(t *testing.T) {
	ctx := context.Background()
	f := newLendingFixture(t, testBook("bk-1", 2))

	assert.Equal(t, 2, f.available(t, alice, "bk-1"))

	_, err := f.lending.Borrow(ctx, alice, "bk-1")
	require.NoError(t, err)
	_, err = f.lending.Borrow(ctx, bob, "bk-1")
	require.NoError(t, err)
	assert.Equal(t, 0, f.available(t, alice, "bk-1"))

	_, err = f.lending.Return(ctx, alice, "bk-1", "반납함", nil)
	require.NoError(t, err)
	_, err = f.lending.Return(ctx, bob, "bk-1", "반납함", nil)
	require.NoError(t, err)
	assert.Equal(t, 2, f.available(t, alice, "bk-1"))
}
