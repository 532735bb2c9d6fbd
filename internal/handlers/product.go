package handlers

import (
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/oharel/agencyhub/internal/httpx"
	"github.com/oharel/agencyhub/internal/models"
	"github.com/oharel/agencyhub/internal/money"
)

type ProductHandler struct{ DB *gorm.DB }

func NewProductHandler(db *gorm.DB) *ProductHandler { return &ProductHandler{DB: db} }

func (h *ProductHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/products", h.list)
	mux.HandleFunc("POST /api/products", h.create)
	mux.HandleFunc("GET /api/products/{id}", h.get)
	mux.HandleFunc("PUT /api/products/{id}", h.update)
	mux.HandleFunc("DELETE /api/products/{id}", h.remove)
}

func (h *ProductHandler) list(w http.ResponseWriter, r *http.Request) {
	agencyID, ok := agencyScope(h.DB, w, r)
	if !ok {
		return
	}
	limit, offset := listParams(r)
	q := h.DB.Where("agency_id = ?", agencyID)
	if r.URL.Query().Get("active") == "true" {
		q = q.Where("active = ?", true)
	}
	var products []models.Product
	var total int64
	if err := q.Model(&models.Product{}).Count(&total).Error; err != nil {
		serviceError(w, err)
		return
	}
	if err := q.Order("name").Limit(limit).Offset(offset).Find(&products).Error; err != nil {
		serviceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"products": products, "total": total})
}

type productRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	UnitPrice   int64  `json:"unit_price"` // minor units
	PricingMode string `json:"pricing_mode"`
	Active      *bool  `json:"active"`
}

func (r *productRequest) validate() map[string]string {
	fields := map[string]string{}
	if strings.TrimSpace(r.Name) == "" {
		fields["name"] = "required"
	}
	if r.UnitPrice < 0 {
		fields["unit_price"] = "must not be negative"
	}
	switch models.PricingMode(r.PricingMode) {
	case "", models.PricingFixed, models.PricingHourly, models.PricingMonthly:
	default:
		fields["pricing_mode"] = "unknown pricing mode"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func (h *ProductHandler) create(w http.ResponseWriter, r *http.Request) {
	agencyID, ok := agencyScope(h.DB, w, r)
	if !ok {
		return
	}
	var req productRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if fields := req.validate(); fields != nil {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", fields)
		return
	}
	mode := models.PricingMode(req.PricingMode)
	if mode == "" {
		mode = models.PricingFixed
	}
	product := models.Product{
		AgencyID: agencyID, Name: strings.TrimSpace(req.Name), Description: req.Description,
		UnitPrice: money.Amount(req.UnitPrice), PricingMode: mode, Active: true,
	}
	if req.Active != nil {
		product.Active = *req.Active
	}
	if err := h.DB.Create(&product).Error; err != nil {
		serviceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

func (h *ProductHandler) get(w http.ResponseWriter, r *http.Request) {
	agencyID, ok := agencyScope(h.DB, w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var product models.Product
	if err := h.DB.Where("agency_id = ?", agencyID).First(&product, id).Error; err != nil {
		serviceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *ProductHandler) update(w http.ResponseWriter, r *http.Request) {
	agencyID, ok := agencyScope(h.DB, w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var product models.Product
	if err := h.DB.Where("agency_id = ?", agencyID).First(&product, id).Error; err != nil {
		serviceError(w, err)
		return
	}
	var req productRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if fields := req.validate(); fields != nil {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", fields)
		return
	}
	product.Name = strings.TrimSpace(req.Name)
	product.Description = req.Description
	product.UnitPrice = money.Amount(req.UnitPrice)
	if req.PricingMode != "" {
		product.PricingMode = models.PricingMode(req.PricingMode)
	}
	if req.Active != nil {
		product.Active = *req.Active
	}
	if err := h.DB.Save(&product).Error; err != nil {
		serviceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *ProductHandler) remove(w http.ResponseWriter, r *http.Request) {
	agencyID, ok := agencyScope(h.DB, w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	res := h.DB.Where("agency_id = ?", agencyID).Delete(&models.Product{}, id)
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
