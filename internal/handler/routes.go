package handler

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"booklend/internal/auth"
	"booklend/internal/model"
)

// Routes assembles the full HTTP surface: middleware stack, public
// endpoints and the session-gated API.
func Routes(api *API, authSvc *auth.Service) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer) // recover from panics, return 500
	r.Use(chimiddleware.RequestID) // attach request IDs
	r.Use(chimiddleware.RealIP)    // trust X-Forwarded-For
	r.Use(Logger)                  // structured access log
	r.Use(CORS)                    // permissive CORS for the browser client

	// Public surface
	r.Get("/health", HealthCheck)
	r.Post("/auth/login", api.Login)

	// Session-gated surface
	r.Group(func(r chi.Router) {
		r.Use(authSvc.RequireSession)

		r.Post("/auth/logout", api.Logout)
		r.Get("/auth/me", api.Me)

		r.Route("/books", func(r chi.Router) {
			r.Get("/", api.ListBooks)
			r.Get("/{id}", api.GetBook)
			r.Get("/{id}/reviews", api.ListReviews)
			r.Post("/{id}/borrow", api.BorrowBook)
			r.Post("/{id}/return", api.ReturnBook)
			r.Post("/{id}/extend", api.ExtendLoan)
			r.Post("/{id}/reserve", api.ReserveBook)
			r.Post("/{id}/favorite", api.FavoriteBook)
		})

		r.Get("/rentals", api.ListRentals)

		r.Route("/announcements", func(r chi.Router) {
			r.Get("/", api.ListAnnouncements)
			r.Get("/{id}", api.GetAnnouncement)
			r.With(auth.RequireRole(model.RoleAdmin, model.RoleSysAdmin)).Post("/", api.CreateAnnouncement)
		})

		r.Route("/inquiries", func(r chi.Router) {
			r.Get("/", api.ListInquiries)
			r.Get("/{id}", api.GetInquiry)
			r.Post("/", api.CreateInquiry)
			r.With(auth.RequireRole(model.RoleAdmin, model.RoleSysAdmin)).Post("/{id}/answer", api.AnswerInquiry)
		})

		r.Get("/goal", api.GetGoal)
		r.Put("/goal", api.PutGoal)

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireRole(model.RoleAdmin, model.RoleSysAdmin))
			r.Get("/stats", api.AdminStats)
		})
	})

	return r
}
