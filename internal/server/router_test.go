package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oharel/agencyhub/internal/mail"
	"github.com/oharel/agencyhub/internal/models"
	"github.com/oharel/agencyhub/internal/services"
)

func setupRouter(t *testing.T) (http.Handler, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Agency{}, &models.User{}, &models.Client{}, &models.Lead{},
		&models.Product{}, &models.Project{}, &models.Task{}, &models.TimeEntry{},
		&models.Quote{}, &models.QuoteItem{}, &models.QuoteSignature{}, &models.QuoteSequence{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	quotes := services.NewQuoteService(db, &mail.RecordingDispatcher{}, "https://app.test")
	return New(db, quotes), db
}

func TestHealthEndpoints(t *testing.T) {
	h, _ := setupRouter(t)

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("/health: expected 200 got %d", w.Code)
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("/healthz: expected 200 got %d", w.Code)
	}
}

func TestAPIRequiresSession(t *testing.T) {
	h, _ := setupRouter(t)

	for _, path := range []string{"/api/me", "/api/clients", "/api/quotes", "/api/agency"} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s without session: expected 401 got %d", path, w.Code)
		}
	}
}

func TestSessionCookieFlow(t *testing.T) {
	h, db := setupRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/signup",
		strings.NewReader(`{"agency_name":"Northwind","email":"boss@northwind.test","password":"longenough1"}`))
	req.Header.Set("Content-Type", "application/json")
	h.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("signup: expected 201 got %d: %s", w.Code, w.Body)
	}
	cookie := w.Header().Get("Set-Cookie")
	if cookie == "" {
		t.Fatal("no session cookie issued")
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Cookie", cookie)
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("/api/me with cookie: expected 200 got %d: %s", w.Code, w.Body)
	}

	// sessions for deleted users are rejected
	db.Where("email = ?", "boss@northwind.test").Delete(&models.User{})
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Cookie", cookie)
	h.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("stale session: expected 401 got %d", w.Code)
	}
}
