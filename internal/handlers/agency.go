package handlers

import (
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/oharel/agencyhub/internal/httpx"
	"github.com/oharel/agencyhub/internal/models"
	"github.com/oharel/agencyhub/internal/pdf"
)

type AgencyHandler struct{ DB *gorm.DB }

func NewAgencyHandler(db *gorm.DB) *AgencyHandler { return &AgencyHandler{DB: db} }

func (h *AgencyHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/agency", h.get)
	mux.HandleFunc("PUT /api/agency", h.update)
}

func (h *AgencyHandler) get(w http.ResponseWriter, r *http.Request) {
	agencyID, ok := agencyScope(h.DB, w, r)
	if !ok {
		return
	}
	var agency models.Agency
	if err := h.DB.First(&agency, agencyID).Error; err != nil {
		serviceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, agency)
}

type agencyUpdateRequest struct {
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	Website     *string `json:"website"`
	Address     *string `json:"address"`
	TaxID       *string `json:"tax_id"`
	LogoPath    *string `json:"logo_path"`
	Template    *string `json:"template"`
	AccentColor *string `json:"accent_color"`
}

func (h *AgencyHandler) update(w http.ResponseWriter, r *http.Request) {
	agencyID, ok := agencyScope(h.DB, w, r)
	if !ok {
		return
	}
	var req agencyUpdateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	var agency models.Agency
	if err := h.DB.First(&agency, agencyID).Error; err != nil {
		serviceError(w, err)
		return
	}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", map[string]string{"name": "required"})
			return
		}
		agency.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		agency.Email = strings.TrimSpace(*req.Email)
	}
	if req.Phone != nil {
		agency.Phone = *req.Phone
	}
	if req.Website != nil {
		agency.Website = *req.Website
	}
	if req.Address != nil {
		agency.Address = *req.Address
	}
	if req.TaxID != nil {
		agency.TaxID = *req.TaxID
	}
	if req.LogoPath != nil {
		agency.LogoPath = *req.LogoPath
	}
	if req.Template != nil {
		// unknown names are stored as-is and fall back at render time,
		// but reject obvious garbage early
		if !pdf.KnownTemplate(*req.Template) {
			httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", map[string]string{"template": "unknown template"})
			return
		}
		agency.Template = *req.Template
	}
	if req.AccentColor != nil {
		agency.AccentColor = *req.AccentColor
	}
	if err := h.DB.Save(&agency).Error; err != nil {
		serviceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, agency)
}
