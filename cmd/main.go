// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"booklend/internal/auth"
	"booklend/internal/fixtures"
	"booklend/internal/handler"
	"booklend/internal/repository"
	"booklend/internal/service"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(getEnv("BOOKLEND_LOG_LEVEL", "info")),
	}))
	slog.SetDefault(logger)

	// ── 1. Load the seed dataset ──────────────────────────────────────────
	// There is no backend of record: the in-memory store is seeded from
	// embedded fixtures and resets on restart.
	seed, err := fixtures.Load()
	if err != nil {
		slog.Error("load fixtures", "error", err)
		os.Exit(1)
	}
	slog.Info("fixtures loaded", "books", len(seed.Books), "users", len(seed.Users))

	// ── 2. Wire up layers ────────────────────────────────────────────────
	latency := repository.Latency(parseLatency(getEnv("BOOKLEND_LATENCY", "0")))

	bookRepo := repository.NewBookRepository(latency, seed.Books)
	loanRepo := repository.NewLoanRepository(latency)
	reservationRepo := repository.NewReservationRepository(latency)
	favoriteRepo := repository.NewFavoriteRepository(latency)
	reviewRepo := repository.NewReviewRepository(latency, seed.Reviews)
	userRepo := repository.NewUserRepository(latency, seed.Users)
	goalRepo := repository.NewGoalRepository(latency, seed.Goals)
	announcementRepo := repository.NewAnnouncementRepository(latency, seed.Announcements)
	inquiryRepo := repository.NewInquiryRepository(latency, seed.Inquiries)

	lendingSvc := service.NewLendingService(bookRepo, loanRepo, reservationRepo, favoriteRepo, reviewRepo, goalRepo)
	catalogSvc := service.NewCatalogService(bookRepo, loanRepo, reservationRepo, favoriteRepo, reviewRepo, lendingSvc)
	contentSvc := service.NewContentService(announcementRepo, inquiryRepo, goalRepo)
	statsSvc := service.NewStatsService(bookRepo, loanRepo, reservationRepo, userRepo)
	authSvc := auth.NewService(userRepo)

	api := handler.New(authSvc, catalogSvc, lendingSvc, contentSvc, statsSvc)

	// ── 3. Build the router ───────────────────────────────────────────────
	r := handler.Routes(api, authSvc)

	// ── 4. Start server with graceful shutdown ────────────────────────────
	port := getEnv("PORT", "8080")
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Run in background goroutine so we can listen for shutdown signal.
	go func() {
		slog.Info("server listening", "port", port, "latency", time.Duration(latency).String())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Block until SIGINT or SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// parseLatency reads the simulated store latency, e.g. "500ms".
func parseLatency(raw string) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

func logLevel(raw string) slog.Level {
	switch raw {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
