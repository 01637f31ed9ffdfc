// Package model defines the core domain types for the book lending service.
package model

import "time"

// Lending policy constants.
const (
	// MaxActiveLoans is the number of books a user may hold at once.
	MaxActiveLoans = 2
	// LoanDays is the standard loan period.
	LoanDays = 14
	// ExtensionDays is the number of days a single extension adds.
	ExtensionDays = 7
	// MaxExtensions is the number of extensions allowed per loan.
	MaxExtensions = 1
	// OfferDays is how long a promoted reservation holds a returned copy.
	OfferDays = 3
)

// Role identifies a user's capability set.
type Role string

const (
	RoleUser     Role = "user"
	RoleAdmin    Role = "admin"
	RoleSysAdmin Role = "sysadmin"
)

// Badge is a catalog classification tag attached to a book.
type Badge string

const (
	BadgeRecommended Badge = "recommended"
	BadgeBest        Badge = "best"
	BadgePopular     Badge = "popular"
	BadgeNew         Badge = "new"
)

// FilterAll is the sentinel that disables the category or status filter.
// Clients of the original application send the Korean tokens, so they are
// kept as the wire vocabulary.
const FilterAll = "전체"

// Status filter tokens for catalog queries.
const (
	StatusFilterAvailable = "available"
	StatusFilterBorrowed  = "borrowed"
	StatusFilterReserved  = "reserved"
)

// Sort keys for the catalog.
const (
	SortPopular     = "인기도순"
	SortNewest      = "최신등록순"
	SortRating      = "평점순"
	SortName        = "이름순"
	SortRecommended = "추천순"
	SortBest        = "베스트도서순"
)

// Status labels shown per book, derived from current availability.
const (
	LabelAvailable = "대여가능"
	LabelReserved  = "예약중"
	LabelBorrowed  = "대여중"
)

// Categories is the fixed category set. FilterAll is not a real category.
var Categories = []string{"개발", "경영/경제", "자기계발", "인문", "과학", "기타"}

// Book is a catalog title with aggregate copy counts. Per-user lending
// state lives on Loan, Reservation and the favorites set, not here.
type Book struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Author          string    `json:"author"`
	Publisher       string    `json:"publisher"`
	PublishDate     string    `json:"publishDate"`
	ISBN            string    `json:"isbn"`
	Category        string    `json:"category"`
	Location        string    `json:"location"`
	Description     string    `json:"description"`
	CoverImage      string    `json:"coverImage"`
	RegisteredDate  time.Time `json:"registeredDate"`
	Badges          []Badge   `json:"badges"`
	Recommendations int       `json:"recommendations"`
	Extendable      bool      `json:"extendable"`
	Reservable      bool      `json:"reservable"`
	TotalCopies     int       `json:"totalCopies"`
	TimesBorrowed   int       `json:"timesBorrowed"`
}

// HasBadge reports whether the book carries the given badge.
func (b *Book) HasBadge(badge Badge) bool {
	for _, have := range b.Badges {
		if have == badge {
			return true
		}
	}
	return false
}

// Loan records one user borrowing one copy of a book.
// ReturnedAt is nil while the loan is active.
type Loan struct {
	ID             string     `json:"id"`
	BookID         string     `json:"bookId"`
	UserID         string     `json:"userId"`
	BorrowedAt     time.Time  `json:"borrowedAt"`
	DueAt          time.Time  `json:"dueAt"`
	ExtensionsUsed int        `json:"extensionsUsed"`
	ReturnedAt     *time.Time `json:"returnedAt,omitempty"`
	ReturnLocation string     `json:"returnLocation,omitempty"`
}

// Active reports whether the loan is still open.
func (l *Loan) Active() bool { return l.ReturnedAt == nil }

// Overdue reports whether an active loan has passed its due date.
func (l *Loan) Overdue(now time.Time) bool {
	return l.Active() && now.After(l.DueAt)
}

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	ReservationQueued    ReservationStatus = "queued"
	ReservationOffered   ReservationStatus = "offered"
	ReservationConverted ReservationStatus = "converted"
	ReservationExpired   ReservationStatus = "expired"
	ReservationCancelled ReservationStatus = "cancelled"
)

// Reservation is one user's place in a book's FIFO reservation queue.
// When a copy frees up, the head reservation is offered the copy and
// OfferExpiresAt is set; an unclaimed offer expires and the copy passes on.
type Reservation struct {
	ID             string            `json:"id"`
	BookID         string            `json:"bookId"`
	UserID         string            `json:"userId"`
	CreatedAt      time.Time         `json:"createdAt"`
	Status         ReservationStatus `json:"status"`
	OfferExpiresAt *time.Time        `json:"offerExpiresAt,omitempty"`
}

// Open reports whether the reservation still holds a queue position.
func (r *Reservation) Open() bool {
	return r.Status == ReservationQueued || r.Status == ReservationOffered
}

// Review is a user's rating of a book. Immutable once created.
type Review struct {
	ID        string    `json:"id"`
	BookID    string    `json:"bookId"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName"`
	Rating    int       `json:"rating"`
	Content   string    `json:"content"`
	Recommend bool      `json:"recommend"`
	CreatedAt time.Time `json:"createdAt"`
}

// User is an employee account. PasswordHash is never serialized.
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         Role   `json:"role"`
	Department   string `json:"department"`
	Phone        string `json:"phone"`
	PasswordHash string `json:"-"`
}

// ReadingGoal is a user's yearly reading target.
type ReadingGoal struct {
	UserID  string `json:"userId"`
	Year    int    `json:"year"`
	Target  int    `json:"target"`
	Current int    `json:"current"`
}

// Announcement is an admin-posted notice. Pinned announcements list first.
type Announcement struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	Pinned    bool      `json:"pinned"`
	CreatedAt time.Time `json:"createdAt"`
}

// InquiryStatus is the answer state of an inquiry.
type InquiryStatus string

const (
	InquiryOpen     InquiryStatus = "open"
	InquiryAnswered InquiryStatus = "answered"
)

// Inquiry is a user question to the library admins.
type Inquiry struct {
	ID         string        `json:"id"`
	UserID     string        `json:"userId"`
	Title      string        `json:"title"`
	Content    string        `json:"content"`
	Status     InquiryStatus `json:"status"`
	Answer     string        `json:"answer,omitempty"`
	CreatedAt  time.Time     `json:"createdAt"`
	AnsweredAt *time.Time    `json:"answeredAt,omitempty"`
}

// BookView is a Book decorated with availability and the viewing user's
// relationship to it. Catalog queries operate on views and the API
// returns them.
type BookView struct {
	Book
	Available       int        `json:"available"`
	ActiveLoans     int        `json:"activeLoans"`
	StatusLabel     string     `json:"statusLabel"`
	Rating          float64    `json:"rating"`
	ReviewCount     int        `json:"reviewCount"`
	BorrowedByMe    bool       `json:"borrowedByCurrentUser"`
	BorrowDate      *time.Time `json:"borrowDate,omitempty"`
	DueDate         *time.Time `json:"returnDueDate,omitempty"`
	HasBeenExtended bool       `json:"hasBeenExtended"`
	ExtendableNow   bool       `json:"isExtendable"`
	ReservedByMe    bool       `json:"reservedByCurrentUser"`
	OfferedToMe     bool       `json:"offeredToCurrentUser"`
	Reserved        bool       `json:"reserved"`
	Favorite        bool       `json:"isFavorite"`
}

// StatusLabelFor derives the display label from current availability.
func StatusLabelFor(available int, reserved bool) string {
	switch {
	case available > 0:
		return LabelAvailable
	case reserved:
		return LabelReserved
	default:
		return LabelBorrowed
	}
}

// DashboardStats is the admin dashboard summary.
type DashboardStats struct {
	TotalBooks         int            `json:"totalBooks"`
	TotalCopies        int            `json:"totalCopies"`
	ActiveLoans        int            `json:"activeLoans"`
	OverdueLoans       int            `json:"overdueLoans"`
	QueuedReservations int            `json:"queuedReservations"`
	TotalUsers         int            `json:"totalUsers"`
	BooksByCategory    map[string]int `json:"booksByCategory"`
	TopBorrowed        []TopBook      `json:"topBorrowed"`
}

// TopBook is one entry of the most-borrowed ranking.
type TopBook struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	TimesBorrowed int    `json:"timesBorrowed"`
}

// ErrorResponse is the standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
