package service

import (
	"context"
	"math"
	"time"

	"booklend/internal/catalog"
	"booklend/internal/model"
	"booklend/internal/repository"
)

// CatalogService assembles viewer-relative book views and runs the
// query pipeline over them.
type CatalogService struct {
	books        *repository.BookRepository
	loans        *repository.LoanRepository
	reservations *repository.ReservationRepository
	favorites    *repository.FavoriteRepository
	reviews      *repository.ReviewRepository
	lending      *LendingService

	now func() time.Time
}

// NewCatalogService constructs a CatalogService with its dependencies.
func NewCatalogService(
	books *repository.BookRepository,
	loans *repository.LoanRepository,
	reservations *repository.ReservationRepository,
	favorites *repository.FavoriteRepository,
	reviews *repository.ReviewRepository,
	lending *LendingService,
) *CatalogService {
	return &CatalogService{
		books:        books,
		loans:        loans,
		reservations: reservations,
		favorites:    favorites,
		reviews:      reviews,
		lending:      lending,
		now:          time.Now,
	}
}

// viewContext bundles the bulk lookups needed to decorate books for one
// viewer, so that listing the catalog costs a fixed number of store calls.
type viewContext struct {
	now           time.Time
	activeByBook  map[string]int
	viewerLoans   map[string]model.Loan
	openResByBook map[string][]model.Reservation
	viewerRes     map[string]model.Reservation
	favorites     map[string]bool
	reviews       map[string][]model.Review
}

func (s *CatalogService) viewContextFor(ctx context.Context, viewer *model.User) (*viewContext, error) {
	active, err := s.loans.Active(ctx)
	if err != nil {
		return nil, err
	}
	openRes, err := s.reservations.OpenAll(ctx)
	if err != nil {
		return nil, err
	}
	favs, err := s.favorites.ByUser(ctx, viewer.ID)
	if err != nil {
		return nil, err
	}
	reviews, err := s.reviews.All(ctx)
	if err != nil {
		return nil, err
	}

	vc := &viewContext{
		now:           s.now(),
		activeByBook:  make(map[string]int),
		viewerLoans:   make(map[string]model.Loan),
		openResByBook: make(map[string][]model.Reservation),
		viewerRes:     make(map[string]model.Reservation),
		favorites:     favs,
		reviews:       reviews,
	}
	for _, l := range active {
		vc.activeByBook[l.BookID]++
		if l.UserID == viewer.ID {
			vc.viewerLoans[l.BookID] = l
		}
	}
	for _, r := range openRes {
		vc.openResByBook[r.BookID] = append(vc.openResByBook[r.BookID], r)
		if r.UserID == viewer.ID {
			vc.viewerRes[r.BookID] = r
		}
	}
	return vc, nil
}

func (s *CatalogService) buildView(book model.Book, vc *viewContext) model.BookView {
	held := 0
	reserved := false
	for _, r := range vc.openResByBook[book.ID] {
		// An offer past its expiry no longer holds a copy; the mutating
		// paths lapse it properly on their next touch.
		if r.Status == model.ReservationOffered && (r.OfferExpiresAt == nil || vc.now.Before(*r.OfferExpiresAt)) {
			held++
		}
		reserved = true
	}

	available := book.TotalCopies - vc.activeByBook[book.ID] - held
	if available < 0 {
		available = 0
	}

	view := model.BookView{
		Book:        book,
		Available:   available,
		ActiveLoans: vc.activeByBook[book.ID],
		StatusLabel: model.StatusLabelFor(available, reserved),
		Reserved:    reserved,
		Favorite:    vc.favorites[book.ID],
	}

	if revs := vc.reviews[book.ID]; len(revs) > 0 {
		sum := 0
		for _, rev := range revs {
			sum += rev.Rating
		}
		mean := float64(sum) / float64(len(revs))
		view.Rating = math.Round(mean*10) / 10
		view.ReviewCount = len(revs)
	}

	if loan, ok := vc.viewerLoans[book.ID]; ok {
		view.BorrowedByMe = true
		borrowed := loan.BorrowedAt
		due := loan.DueAt
		view.BorrowDate = &borrowed
		view.DueDate = &due
		view.HasBeenExtended = loan.ExtensionsUsed >= model.MaxExtensions
		view.ExtendableNow = book.Extendable && loan.ExtensionsUsed < model.MaxExtensions
	}

	if res, ok := vc.viewerRes[book.ID]; ok {
		view.ReservedByMe = true
		view.OfferedToMe = res.Status == model.ReservationOffered
	}

	return view
}

// List runs the catalog query pipeline for the viewer.
func (s *CatalogService) List(ctx context.Context, viewer *model.User, q catalog.Query) (catalog.Page, error) {
	books, err := s.books.List(ctx)
	if err != nil {
		return catalog.Page{}, err
	}
	vc, err := s.viewContextFor(ctx, viewer)
	if err != nil {
		return catalog.Page{}, err
	}

	views := make([]model.BookView, 0, len(books))
	for _, b := range books {
		views = append(views, s.buildView(b, vc))
	}
	return catalog.Apply(views, q, catalog.PageSizesCatalog), nil
}

// Get returns one decorated book. Detail access lapses stale offers so
// the availability shown is authoritative.
func (s *CatalogService) Get(ctx context.Context, viewer *model.User, bookID string) (model.BookView, error) {
	book, err := s.books.Get(ctx, bookID)
	if err != nil {
		return model.BookView{}, err
	}
	if err := s.lending.expireOffers(ctx, bookID); err != nil {
		return model.BookView{}, err
	}
	vc, err := s.viewContextFor(ctx, viewer)
	if err != nil {
		return model.BookView{}, err
	}
	return s.buildView(*book, vc), nil
}

// Reviews lists a book's reviews, newest first.
func (s *CatalogService) Reviews(ctx context.Context, bookID string) ([]model.Review, error) {
	if _, err := s.books.Get(ctx, bookID); err != nil {
		return nil, err
	}
	return s.reviews.ByBook(ctx, bookID)
}

// RentalItem is one row of a user's rental history.
type RentalItem struct {
	model.Loan
	BookTitle  string `json:"bookTitle"`
	BookAuthor string `json:"bookAuthor"`
	Overdue    bool   `json:"overdue"`
}

// RentalPage is one page of rental history.
type RentalPage struct {
	Items      []RentalItem `json:"items"`
	Total      int          `json:"total"`
	Page       int          `json:"page"`
	PerPage    int          `json:"perPage"`
	TotalPages int          `json:"totalPages"`
}

// Rentals returns the viewer's loan history, newest first, paginated.
func (s *CatalogService) Rentals(ctx context.Context, viewer *model.User, page, perPage int) (RentalPage, error) {
	loans, err := s.loans.ByUser(ctx, viewer.ID)
	if err != nil {
		return RentalPage{}, err
	}
	books, err := s.books.List(ctx)
	if err != nil {
		return RentalPage{}, err
	}
	titles := make(map[string]model.Book, len(books))
	for _, b := range books {
		titles[b.ID] = b
	}

	now := s.now()
	items := make([]RentalItem, 0, len(loans))
	for _, l := range loans {
		b := titles[l.BookID]
		items = append(items, RentalItem{
			Loan:       l,
			BookTitle:  b.Title,
			BookAuthor: b.Author,
			Overdue:    l.Overdue(now),
		})
	}

	perPage = catalog.NormalizeSize(perPage, catalog.PageSizesRentals)
	if page < 1 {
		page = 1
	}
	start := (page - 1) * perPage
	end := start + perPage
	if start > len(items) {
		start = len(items)
	}
	if end > len(items) {
		end = len(items)
	}
	return RentalPage{
		Items:      items[start:end],
		Total:      len(items),
		Page:       page,
		PerPage:    perPage,
		TotalPages: catalog.TotalPages(len(items), perPage),
	}, nil
}
