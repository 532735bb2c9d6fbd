package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/oharel/agencyhub/internal/auth"
	"github.com/oharel/agencyhub/internal/handlers"
	"github.com/oharel/agencyhub/internal/httpx"
	"github.com/oharel/agencyhub/internal/models"
	"github.com/oharel/agencyhub/internal/services"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB, quotes *services.QuoteService) http.Handler {
	mux := http.NewServeMux()

	// RequireAuth rejects sessions whose user has been deleted since login.
	auth.SetUserVerifier(func(_ context.Context, uid uint) bool {
		var count int64
		if err := db.Model(&models.User{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	})

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSONError(w, http.StatusServiceUnavailable, "degraded", nil)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	authHandler := handlers.NewAuthHandler(db)
	authHandler.Register(mux)

	// token-addressed portal, no session required
	handlers.NewPublicHandler(quotes).Register(mux)

	// everything under /api needs a valid session
	api := http.NewServeMux()
	authHandler.RegisterAuthed(api)
	handlers.NewAgencyHandler(db).Register(api)
	handlers.NewClientHandler(db).Register(api)
	handlers.NewLeadHandler(db).Register(api)
	handlers.NewProductHandler(db).Register(api)
	handlers.NewProjectHandler(db).Register(api)
	handlers.NewTaskHandler(db).Register(api)
	handlers.NewQuoteHandler(quotes).Register(api)
	mux.Handle("/api/", auth.Middleware(auth.RequireAuth(api)))

	return withRecover(withLogging(mux))
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("panic: %v", rec)
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
