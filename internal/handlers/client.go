package handlers

import (
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/oharel/agencyhub/internal/httpx"
	"github.com/oharel/agencyhub/internal/models"
)

type ClientHandler struct{ DB *gorm.DB }

func NewClientHandler(db *gorm.DB) *ClientHandler { return &ClientHandler{DB: db} }

func (h *ClientHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/clients", h.list)
	mux.HandleFunc("POST /api/clients", h.create)
	mux.HandleFunc("GET /api/clients/{id}", h.get)
	mux.HandleFunc("PUT /api/clients/{id}", h.update)
	mux.HandleFunc("DELETE /api/clients/{id}", h.remove)
}

func (h *ClientHandler) list(w http.ResponseWriter, r *http.Request) {
	agencyID, ok := agencyScope(h.DB, w, r)
	if !ok {
		return
	}
	limit, offset := listParams(r)
	q := h.DB.Where("agency_id = ?", agencyID)
	if s := strings.TrimSpace(r.URL.Query().Get("q")); s != "" {
		q = q.Where("name LIKE ?", "%"+s+"%")
	}
	var clients []models.Client
	var total int64
	if err := q.Model(&models.Client{}).Count(&total).Error; err != nil {
		serviceError(w, err)
		return
	}
	if err := q.Order("name").Limit(limit).Offset(offset).Find(&clients).Error; err != nil {
		serviceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"clients": clients, "total": total})
}

type clientRequest struct {
	Name        string `json:"name"`
	ContactName string `json:"contact_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Website     string `json:"website"`
	Address     string `json:"address"`
	TaxID       string `json:"tax_id"`
	Notes       string `json:"notes"`
}

func (h *ClientHandler) create(w http.ResponseWriter, r *http.Request) {
	agencyID, ok := agencyScope(h.DB, w, r)
	if !ok {
		return
	}
	var req clientRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", map[string]string{"name": "required"})
		return
	}
	client := models.Client{
		AgencyID: agencyID, Name: req.Name, ContactName: req.ContactName,
		Email: strings.TrimSpace(req.Email), Phone: req.Phone, Website: req.Website,
		Address: req.Address, TaxID: req.TaxID, Notes: req.Notes,
	}
	if err := h.DB.Create(&client).Error; err != nil {
		serviceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, client)
}

func (h *ClientHandler) get(w http.ResponseWriter, r *http.Request) {
	agencyID, ok := agencyScope(h.DB, w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var client models.Client
	if err := h.DB.Where("agency_id = ?", agencyID).First(&client, id).Error; err != nil {
		serviceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

func (h *ClientHandler) update(w http.ResponseWriter, r *http.Request) {
	agencyID, ok := agencyScope(h.DB, w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var client models.Client
	if err := h.DB.Where("agency_id = ?", agencyID).First(&client, id).Error; err != nil {
		serviceError(w, err)
		return
	}
	var req clientRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", map[string]string{"name": "required"})
		return
	}
	client.Name = req.Name
	client.ContactName = req.ContactName
	client.Email = strings.TrimSpace(req.Email)
	client.Phone = req.Phone
	client.Website = req.Website
	client.Address = req.Address
	client.TaxID = req.TaxID
	client.Notes = req.Notes
	if err := h.DB.Save(&client).Error; err != nil {
		serviceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

func (h *ClientHandler) remove(w http.ResponseWriter, r *http.Request) {
	agencyID, ok := agencyScope(h.DB, w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	res := h.DB.Where("agency_id = ?", agencyID).Delete(&models.Client{}, id)
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
