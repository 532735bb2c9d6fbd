package handlers

import (
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/oharel/agencyhub/internal/httpx"
	"github.com/oharel/agencyhub/internal/models"
)

type LeadHandler struct{ DB *gorm.DB }

func NewLeadHandler(db *gorm.DB) *LeadHandler { return &LeadHandler{DB: db} }

func (h *LeadHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/leads", h.list)
	mux.HandleFunc("POST /api/leads", h.create)
	mux.HandleFunc("GET /api/leads/{id}", h.get)
	mux.HandleFunc("PUT /api/leads/{id}", h.update)
	mux.HandleFunc("DELETE /api/leads/{id}", h.remove)
	mux.HandleFunc("POST /api/leads/{id}/convert", h.convert)
}

func (h *LeadHandler) list(w http.ResponseWriter, r *http.Request) {
	agencyID, ok := agencyScope(h.DB, w, r)
	if !ok {
		return
	}
	limit, offset := listParams(r)
	q := h.DB.Where("agency_id = ?", agencyID)
	if st := r.URL.Query().Get("status"); st != "" {
		q = q.Where("status = ?", st)
	}
	var leads []models.Lead
	var total int64
	if err := q.Model(&models.Lead{}).Count(&total).Error; err != nil {
		serviceError(w, err)
		return
	}
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&leads).Error; err != nil {
		serviceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"leads": leads, "total": total})
}

type leadRequest struct {
	Name        string `json:"name"`
	ContactName string `json:"contact_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Source      string `json:"source"`
	Status      string `json:"status"`
	Notes       string `json:"notes"`
}

func validLeadStatus(s string) bool {
	switch models.LeadStatus(s) {
	case models.LeadStatusNew, models.LeadStatusContacted, models.LeadStatusQualified,
		models.LeadStatusWon, models.LeadStatusLost:
		return true
	}
	return false
}

func (h *LeadHandler) create(w http.ResponseWriter, r *http.Request) {
	agencyID, ok := agencyScope(h.DB, w, r)
	if !ok {
		return
	}
	var req leadRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", map[string]string{"name": "required"})
		return
	}
	if req.Status == "" {
		req.Status = string(models.LeadStatusNew)
	}
	if !validLeadStatus(req.Status) {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", map[string]string{"status": "unknown status"})
		return
	}
	lead := models.Lead{
		AgencyID: agencyID, Name: req.Name, ContactName: req.ContactName,
		Email: strings.TrimSpace(req.Email), Phone: req.Phone, Source: req.Source,
		Status: models.LeadStatus(req.Status), Notes: req.Notes,
	}
	if err := h.DB.Create(&lead).Error; err != nil {
		serviceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, lead)
}

func (h *LeadHandler) get(w http.ResponseWriter, r *http.Request) {
	agencyID, ok := agencyScope(h.DB, w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var lead models.Lead
	if err := h.DB.Where("agency_id = ?", agencyID).First(&lead, id).Error; err != nil {
		serviceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) update(w http.ResponseWriter, r *http.Request) {
	agencyID, ok := agencyScope(h.DB, w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var lead models.Lead
	if err := h.DB.Where("agency_id = ?", agencyID).First(&lead, id).Error; err != nil {
		serviceError(w, err)
		return
	}
	var req leadRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", map[string]string{"name": "required"})
		return
	}
	if req.Status != "" && !validLeadStatus(req.Status) {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", map[string]string{"status": "unknown status"})
		return
	}
	lead.Name = req.Name
	lead.ContactName = req.ContactName
	lead.Email = strings.TrimSpace(req.Email)
	lead.Phone = req.Phone
	lead.Source = req.Source
	if req.Status != "" {
		lead.Status = models.LeadStatus(req.Status)
	}
	lead.Notes = req.Notes
	if err := h.DB.Save(&lead).Error; err != nil {
		serviceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) remove(w http.ResponseWriter, r *http.Request) {
	agencyID, ok := agencyScope(h.DB, w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	res := h.DB.Where("agency_id = ?", agencyID).Delete(&models.Lead{}, id)
	if res.Error != nil {
		serviceError(w, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// convert turns a lead into a client. The lead record stays for history with
// the new client id, and converting twice returns the existing client.
func (h *LeadHandler) convert(w http.ResponseWriter, r *http.Request) {
	agencyID, ok := agencyScope(h.DB, w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var lead models.Lead
	if err := h.DB.Where("agency_id = ?", agencyID).First(&lead, id).Error; err != nil {
		serviceError(w, err)
		return
	}
	if lead.ConvertedClientID != nil {
		var existing models.Client
		if err := h.DB.Where("agency_id = ?", agencyID).First(&existing, *lead.ConvertedClientID).Error; err == nil {
			httpx.JSON(w, http.StatusOK, existing)
			return
		}
	}
	var client models.Client
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		client = models.Client{
			AgencyID: agencyID, Name: lead.Name, ContactName: lead.ContactName,
			Email: lead.Email, Phone: lead.Phone, Notes: lead.Notes,
		}
		if err := tx.Create(&client).Error; err != nil {
			return err
		}
		lead.ConvertedClientID = &client.ID
		lead.Status = models.LeadStatusWon
		return tx.Save(&lead).Error
	})
	if err != nil {
		serviceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, client)
}
