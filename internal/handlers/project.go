package handlers

import (
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/oharel/agencyhub/internal/httpx"
	"github.com/oharel/agencyhub/internal/models"
	"github.com/oharel/agencyhub/internal/money"
)

type ProjectHandler struct{ DB *gorm.DB }

func NewProjectHandler(db *gorm.DB) *ProjectHandler { return &ProjectHandler{DB: db} }

func (h *ProjectHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/projects", h.list)
	mux.HandleFunc("POST /api/projects", h.create)
	mux.HandleFunc("GET /api/projects/{id}", h.get)
	mux.HandleFunc("PUT /api/projects/{id}", h.update)
	mux.HandleFunc("DELETE /api/projects/{id}", h.remove)
}

func validProjectStatus(s string) bool {
	switch models.ProjectStatus(s) {
	case models.ProjectStatusActive, models.ProjectStatusOnHold,
		models.ProjectStatusCompleted, models.ProjectStatusArchived:
		return true
	}
	return false
}

func parseDate(s string) (*time.Time, bool) {
	if s == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, false
	}
	return &t, true
}

func (h *ProjectHandler) list(w http.ResponseWriter, r *http.Request) {
	agencyID, ok := agencyScope(h.DB, w, r)
	if !ok {
		return
	}
	limit, offset := listParams(r)
	q := h.DB.Where("agency_id = ?", agencyID)
	if st := r.URL.Query().Get("status"); st != "" {
		q = q.Where("status = ?", st)
	}
	if cid := r.URL.Query().Get("client_id"); cid != "" {
		q = q.Where("client_id = ?", cid)
	}
	var projects []models.Project
	var total int64
	if err := q.Model(&models.Project{}).Count(&total).Error; err != nil {
		serviceError(w, err)
		return
	}
	if err := q.Preload("Client").Order("created_at DESC").Limit(limit).Offset(offset).Find(&projects).Error; err != nil {
		serviceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"projects": projects, "total": total})
}

type projectRequest struct {
	ClientID    uint   `json:"client_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Budget      int64  `json:"budget"` // minor units
	StartDate   string `json:"start_date"`
	DueDate     string `json:"due_date"`
}

func (h *ProjectHandler) create(w http.ResponseWriter, r *http.Request) {
	agencyID, ok := agencyScope(h.DB, w, r)
	if !ok {
		return
	}
	var req projectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	fields := map[string]string{}
	if strings.TrimSpace(req.Name) == "" {
		fields["name"] = "required"
	}
	if req.ClientID == 0 {
		fields["client_id"] = "required"
	}
	if req.Status != "" && !validProjectStatus(req.Status) {
		fields["status"] = "unknown status"
	}
	start, okStart := parseDate(req.StartDate)
	if !okStart {
		fields["start_date"] = "expected YYYY-MM-DD"
	}
	due, okDue := parseDate(req.DueDate)
	if !okDue {
		fields["due_date"] = "expected YYYY-MM-DD"
	}
	if len(fields) > 0 {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", fields)
		return
	}
	// the client must belong to the same agency
	var count int64
	if err := h.DB.Model(&models.Client{}).Where("id = ? AND agency_id = ?", req.ClientID, agencyID).Count(&count).Error; err != nil || count == 0 {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", map[string]string{"client_id": "not found"})
		return
	}
	status := models.ProjectStatusActive
	if req.Status != "" {
		status = models.ProjectStatus(req.Status)
	}
	project := models.Project{
		AgencyID: agencyID, ClientID: req.ClientID, Name: strings.TrimSpace(req.Name),
		Description: req.Description, Status: status, Budget: money.Amount(req.Budget),
		StartDate: start, DueDate: due,
	}
	if err := h.DB.Create(&project).Error; err != nil {
		serviceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, project)
}

func (h *ProjectHandler) get(w http.ResponseWriter, r *http.Request) {
	agencyID, ok := agencyScope(h.DB, w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var project models.Project
	if err := h.DB.Where("agency_id = ?", agencyID).Preload("Client").First(&project, id).Error; err != nil {
		serviceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) update(w http.ResponseWriter, r *http.Request) {
	agencyID, ok := agencyScope(h.DB, w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var project models.Project
	if err := h.DB.Where("agency_id = ?", agencyID).First(&project, id).Error; err != nil {
		serviceError(w, err)
		return
	}
	var req projectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", map[string]string{"name": "required"})
		return
	}
	if req.Status != "" && !validProjectStatus(req.Status) {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", map[string]string{"status": "unknown status"})
		return
	}
	start, okStart := parseDate(req.StartDate)
	due, okDue := parseDate(req.DueDate)
	if !okStart || !okDue {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", map[string]string{"date": "expected YYYY-MM-DD"})
		return
	}
	project.Name = strings.TrimSpace(req.Name)
	project.Description = req.Description
	if req.Status != "" {
		project.Status = models.ProjectStatus(req.Status)
	}
	project.Budget = money.Amount(req.Budget)
	project.StartDate = start
	project.DueDate = due
	if err := h.DB.Save(&project).Error; err != nil {
		serviceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, project)
}

func (h *ProjectHandler) remove(w http.ResponseWriter, r *http.Request) {
	agencyID, ok := agencyScope(h.DB, w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	res := h.DB.Where("agency_id = ?", agencyID).Delete(&models.Project{}, id)
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
