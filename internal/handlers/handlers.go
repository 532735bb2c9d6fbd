package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"gorm.io/gorm"

	"github.com/oharel/agencyhub/internal/auth"
	"github.com/oharel/agencyhub/internal/httpx"
	"github.com/oharel/agencyhub/internal/models"
	"github.com/oharel/agencyhub/internal/services"
)

// currentUser loads the session user. Handlers behind RequireAuth can assume
// a context user id, but the record may have been deleted since login.
func currentUser(db *gorm.DB, r *http.Request) (*models.User, error) {
	uid, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return nil, errors.New("no session")
	}
	var user models.User
	if err := db.First(&user, uid).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// agencyScope resolves the tenant for the request. Every authed handler goes
// through this; nothing below it ever queries without the agency id.
func agencyScope(db *gorm.DB, w http.ResponseWriter, r *http.Request) (uint, bool) {
	user, err := currentUser(db, r)
	if err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return 0, false
	}
	return user.AgencyID, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid_json", nil)
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	id64, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id64 == 0 {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return 0, false
	}
	return uint(id64), true
}

// listParams reads limit/offset with sane caps.
func listParams(r *http.Request) (limit, offset int) {
	limit = 50
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 200 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && v >= 0 {
		offset = v
	}
	return
}

// serviceError maps service sentinel errors onto the JSON error envelope.
func serviceError(w http.ResponseWriter, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", verr.Fields)
	case errors.Is(err, services.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
	case errors.Is(err, services.ErrRecipientNotFound):
		httpx.JSONError(w, http.StatusUnprocessableEntity, "recipient_not_found", nil)
	case errors.Is(err, services.ErrAlreadyProcessed):
		httpx.JSONError(w, http.StatusConflict, "already_processed", nil)
	case errors.Is(err, services.ErrExpired):
		httpx.JSONError(w, http.StatusConflict, "expired", nil)
	case errors.Is(err, services.ErrDispatchFailed):
		httpx.JSONError(w, http.StatusBadGateway, "email_dispatch_failed", nil)
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}
