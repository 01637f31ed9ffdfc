package model

import "errors"

// Domain errors. Handlers map these to HTTP statuses with errors.Is.

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// ErrValidation marks a rejected input (empty required field, bad range).
var ErrValidation = errors.New("validation")

// ErrInvalidCredentials is returned on a failed login attempt.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrForbidden is returned when the session lacks the required role or
// tries to touch another user's resource.
var ErrForbidden = errors.New("forbidden")

// Business-rule violations. These block the action with no state change.
var (
	ErrBorrowLimit     = errors.New("borrow limit reached")
	ErrNoAvailableCopy = errors.New("no copy available")
	ErrAlreadyBorrowed = errors.New("book already borrowed by this user")
	ErrNotBorrowed     = errors.New("book is not borrowed by this user")
	ErrAlreadyExtended = errors.New("loan has already been extended")
	ErrNotExtendable   = errors.New("book is not extendable")
	ErrNotReservable   = errors.New("book is not reservable")
	ErrCopiesAvailable = errors.New("copies are available to borrow")
)
