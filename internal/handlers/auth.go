package handlers

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/oharel/agencyhub/internal/auth"
	"github.com/oharel/agencyhub/internal/httpx"
	"github.com/oharel/agencyhub/internal/models"
)

type AuthHandler struct{ DB *gorm.DB }

func NewAuthHandler(db *gorm.DB) *AuthHandler { return &AuthHandler{DB: db} }

func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /signup", h.signup)
	mux.HandleFunc("POST /login", h.login)
	mux.HandleFunc("POST /logout", h.logout)
}

// RegisterAuthed mounts endpoints that need a session.
func (h *AuthHandler) RegisterAuthed(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/me", h.me)
}

type signupRequest struct {
	AgencyName string `json:"agency_name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
}

// signup creates a new agency with its owner user in one transaction.
func (h *AuthHandler) signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.AgencyName = strings.TrimSpace(req.AgencyName)
	fields := map[string]string{}
	if req.AgencyName == "" {
		fields["agency_name"] = "required"
	}
	if req.Email == "" {
		fields["email"] = "required"
	}
	if len(req.Password) < 8 {
		fields["password"] = "min 8 characters"
	}
	if len(fields) > 0 {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", fields)
		return
	}

	var count int64
	if err := h.DB.Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err == nil && count > 0 {
		httpx.JSONError(w, http.StatusConflict, "email_taken", nil)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}

	var user models.User
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		agency := models.Agency{Name: req.AgencyName, Email: req.Email}
		if err := tx.Create(&agency).Error; err != nil {
			return err
		}
		user = models.User{
			AgencyID:  agency.ID,
			Email:     req.Email,
			Password:  string(hash),
			FirstName: strings.TrimSpace(req.FirstName),
			LastName:  strings.TrimSpace(req.LastName),
			Role:      "owner",
		}
		return tx.Create(&user).Error
	})
	if err != nil {
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}

	auth.CreateSession(w, user.ID)
	httpx.JSON(w, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var user models.User
	err := h.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error
	if err != nil || bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}
	auth.CreateSession(w, user.ID)
	httpx.JSON(w, http.StatusOK, user)
}

func (h *AuthHandler) logout(w http.ResponseWriter, _ *http.Request) {
	auth.ClearSession(w)
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(h.DB, r)
	if err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}
