package service

import (
	"context"
	"sort"
	"time"

	"booklend/internal/model"
	"booklend/internal/repository"
)

const topBorrowedCount = 5

// StatsService computes the admin dashboard summary.
type StatsService struct {
	books        *repository.BookRepository
	loans        *repository.LoanRepository
	reservations *repository.ReservationRepository
	users        *repository.UserRepository

	now func() time.Time
}

// NewStatsService constructs a StatsService with its dependencies.
func NewStatsService(
	books *repository.BookRepository,
	loans *repository.LoanRepository,
	reservations *repository.ReservationRepository,
	users *repository.UserRepository,
) *StatsService {
	return &StatsService{
		books:        books,
		loans:        loans,
		reservations: reservations,
		users:        users,
		now:          time.Now,
	}
}

// Dashboard aggregates the current library state.
func (s *StatsService) Dashboard(ctx context.Context) (*model.DashboardStats, error) {
	books, err := s.books.List(ctx)
	if err != nil {
		return nil, err
	}
	active, err := s.loans.Active(ctx)
	if err != nil {
		return nil, err
	}
	queued, err := s.reservations.CountQueued(ctx)
	if err != nil {
		return nil, err
	}
	userCount, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}

	stats := &model.DashboardStats{
		TotalBooks:         len(books),
		ActiveLoans:        len(active),
		QueuedReservations: queued,
		TotalUsers:         userCount,
		BooksByCategory:    make(map[string]int),
	}

	now := s.now()
	for _, l := range active {
		if l.Overdue(now) {
			stats.OverdueLoans++
		}
	}

	ranked := make([]model.Book, len(books))
	copy(ranked, books)
	for _, b := range books {
		stats.TotalCopies += b.TotalCopies
		stats.BooksByCategory[b.Category]++
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TimesBorrowed > ranked[j].TimesBorrowed
	})
	for i, b := range ranked {
		if i >= topBorrowedCount {
			break
		}
		stats.TopBorrowed = append(stats.TopBorrowed, model.TopBook{
			ID:            b.ID,
			Title:         b.Title,
			TimesBorrowed: b.TimesBorrowed,
		})
	}

	return stats, nil
}
