// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"

	"booklend/internal/auth"
	"booklend/internal/catalog"
	"booklend/internal/model"
	"booklend/internal/service"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// API holds all HTTP handlers for the book lending service.
type API struct {
	auth    *auth.Service
	catalog *service.CatalogService
	lending *service.LendingService
	content *service.ContentService
	stats   *service.StatsService
}

// New constructs the API handler set.
func New(
	authSvc *auth.Service,
	catalogSvc *service.CatalogService,
	lendingSvc *service.LendingService,
	contentSvc *service.ContentService,
	statsSvc *service.StatsService,
) *API {
	return &API{
		auth:    authSvc,
		catalog: catalogSvc,
		lending: lendingSvc,
		content: contentSvc,
		stats:   statsSvc,
	}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeDomainError maps domain errors to HTTP statuses. Business-rule
// violations are conflicts: the action is blocked with no state change.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, model.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, model.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, model.ErrBorrowLimit),
		errors.Is(err, model.ErrNoAvailableCopy),
		errors.Is(err, model.ErrAlreadyBorrowed),
		errors.Is(err, model.ErrNotBorrowed),
		errors.Is(err, model.ErrAlreadyExtended),
		errors.Is(err, model.ErrNotExtendable),
		errors.Is(err, model.ErrNotReservable),
		errors.Is(err, model.ErrCopiesAvailable):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func intParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

// ─── Auth ─────────────────────────────────────────────────────────────────────

// Login handles POST /auth/login.
func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	user, token, err := a.auth.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.LoginResponse{Token: token, User: *user})
}

// Logout handles POST /auth/logout.
func (a *API) Logout(w http.ResponseWriter, r *http.Request) {
	a.auth.Logout(auth.BearerToken(r))
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Me handles GET /auth/me.
func (a *API) Me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, auth.UserFrom(r.Context()))
}

// ─── Books ────────────────────────────────────────────────────────────────────

// parseCatalogQuery reads the catalog query parameters, including the
// legacy "filter=category=<value>" alias still sent by older clients.
func parseCatalogQuery(r *http.Request) catalog.Query {
	params := r.URL.Query()
	q := catalog.Query{
		Text:         params.Get("query"),
		Category:     params.Get("category"),
		Status:       params.Get("status"),
		Sort:         params.Get("sort"),
		FavoriteOnly: params.Get("favorite") == "true",
		Column:       params.Get("sortBy"),
		ColumnDesc:   params.Get("order") != "asc",
		Page:         intParam(r, "page", 1),
		PerPage:      intParam(r, "perPage", 0),
	}
	if legacy := params.Get("filter"); q.Category == "" {
		if value, ok := strings.CutPrefix(legacy, "category="); ok {
			q.Category = value
		}
	}
	return q
}

// ListBooks handles GET /books.
func (a *API) ListBooks(w http.ResponseWriter, r *http.Request) {
	page, err := a.catalog.List(r.Context(), auth.UserFrom(r.Context()), parseCatalogQuery(r))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// GetBook handles GET /books/{id}.
func (a *API) GetBook(w http.ResponseWriter, r *http.Request) {
	view, err := a.catalog.Get(r.Context(), auth.UserFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// BorrowBook handles POST /books/{id}/borrow.
func (a *API) BorrowBook(w http.ResponseWriter, r *http.Request) {
	loan, err := a.lending.Borrow(r.Context(), auth.UserFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, loan)
}

// ReturnBook handles POST /books/{id}/return.
func (a *API) ReturnBook(w http.ResponseWriter, r *http.Request) {
	var req model.ReturnRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	loan, err := a.lending.Return(r.Context(), auth.UserFrom(r.Context()), chi.URLParam(r, "id"), req.Location, req.Review)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loan)
}

// ExtendLoan handles POST /books/{id}/extend.
func (a *API) ExtendLoan(w http.ResponseWriter, r *http.Request) {
	loan, err := a.lending.Extend(r.Context(), auth.UserFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loan)
}

// ReserveBook handles POST /books/{id}/reserve. It toggles: a second call
// cancels the reservation.
func (a *API) ReserveBook(w http.ResponseWriter, r *http.Request) {
	reserved, err := a.lending.ToggleReserve(r.Context(), auth.UserFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.ToggleResponse{Active: reserved})
}

// FavoriteBook handles POST /books/{id}/favorite. It toggles.
func (a *API) FavoriteBook(w http.ResponseWriter, r *http.Request) {
	favorite, err := a.lending.ToggleFavorite(r.Context(), auth.UserFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, model.ToggleResponse{Active: favorite})
}

// ListReviews handles GET /books/{id}/reviews.
func (a *API) ListReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := a.catalog.Reviews(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if reviews == nil {
		reviews = []model.Review{}
	}
	writeJSON(w, http.StatusOK, reviews)
}

// ListRentals handles GET /rentals.
func (a *API) ListRentals(w http.ResponseWriter, r *http.Request) {
	page, err := a.catalog.Rentals(r.Context(), auth.UserFrom(r.Context()),
		intParam(r, "page", 1), intParam(r, "perPage", 0))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health.
func HealthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
