package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"booklend/internal/auth"
	"booklend/internal/model"
)

// ─── Announcements ────────────────────────────────────────────────────────────

// ListAnnouncements handles GET /announcements.
func (a *API) ListAnnouncements(w http.ResponseWriter, r *http.Request) {
	page, err := a.content.Announcements(r.Context(), intParam(r, "page", 1), intParam(r, "perPage", 0))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// GetAnnouncement handles GET /announcements/{id}.
func (a *API) GetAnnouncement(w http.ResponseWriter, r *http.Request) {
	ann, err := a.content.Announcement(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ann)
}

// CreateAnnouncement handles POST /announcements. Staff only.
func (a *API) CreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	var req model.CreateAnnouncementRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	ann, err := a.content.CreateAnnouncement(r.Context(), auth.UserFrom(r.Context()), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ann)
}

// ─── Inquiries ────────────────────────────────────────────────────────────────

// ListInquiries handles GET /inquiries.
func (a *API) ListInquiries(w http.ResponseWriter, r *http.Request) {
	page, err := a.content.Inquiries(r.Context(), auth.UserFrom(r.Context()),
		intParam(r, "page", 1), intParam(r, "perPage", 0))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// GetInquiry handles GET /inquiries/{id}.
func (a *API) GetInquiry(w http.ResponseWriter, r *http.Request) {
	inquiry, err := a.content.Inquiry(r.Context(), auth.UserFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inquiry)
}

// CreateInquiry handles POST /inquiries.
func (a *API) CreateInquiry(w http.ResponseWriter, r *http.Request) {
	var req model.CreateInquiryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	inquiry, err := a.content.CreateInquiry(r.Context(), auth.UserFrom(r.Context()), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, inquiry)
}

// AnswerInquiry handles POST /inquiries/{id}/answer. Staff only.
func (a *API) AnswerInquiry(w http.ResponseWriter, r *http.Request) {
	var req model.AnswerInquiryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	inquiry, err := a.content.AnswerInquiry(r.Context(), auth.UserFrom(r.Context()), chi.URLParam(r, "id"), req.Answer)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inquiry)
}

// ─── Reading goal ─────────────────────────────────────────────────────────────

// GetGoal handles GET /goal.
func (a *API) GetGoal(w http.ResponseWriter, r *http.Request) {
	goal, err := a.content.Goal(r.Context(), auth.UserFrom(r.Context()), intParam(r, "year", 0))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

// PutGoal handles PUT /goal.
func (a *API) PutGoal(w http.ResponseWriter, r *http.Request) {
	var req model.GoalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	goal, err := a.content.SetGoal(r.Context(), auth.UserFrom(r.Context()), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

// ─── Admin ────────────────────────────────────────────────────────────────────

// AdminStats handles GET /admin/stats. Staff only.
func (a *API) AdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.stats.Dashboard(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
