package handlers

import (
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/oharel/agencyhub/internal/httpx"
	"github.com/oharel/agencyhub/internal/models"
)

type TaskHandler struct{ DB *gorm.DB }

func NewTaskHandler(db *gorm.DB) *TaskHandler { return &TaskHandler{DB: db} }

func (h *TaskHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/tasks", h.list)
	mux.HandleFunc("POST /api/tasks", h.create)
	mux.HandleFunc("GET /api/tasks/{id}", h.get)
	mux.HandleFunc("PUT /api/tasks/{id}", h.update)
	mux.HandleFunc("DELETE /api/tasks/{id}", h.remove)

	mux.HandleFunc("GET /api/time-entries", h.listTime)
	mux.HandleFunc("POST /api/time-entries", h.createTime)
	mux.HandleFunc("DELETE /api/time-entries/{id}", h.removeTime)
}

func validTaskStatus(s string) bool {
	switch models.TaskStatus(s) {
	case models.TaskStatusTodo, models.TaskStatusInProgress, models.TaskStatusReview, models.TaskStatusDone:
		return true
	}
	return false
}

func validTaskPriority(s string) bool {
	switch models.TaskPriority(s) {
	case models.TaskPriorityLow, models.TaskPriorityMedium, models.TaskPriorityHigh:
		return true
	}
	return false
}

func (h *TaskHandler) list(w http.ResponseWriter, r *http.Request) {
	agencyID, ok := agencyScope(h.DB, w, r)
	if !ok {
		return
	}
	limit, offset := listParams(r)
	q := h.DB.Where("agency_id = ?", agencyID)
	if pid := r.URL.Query().Get("project_id"); pid != "" {
		q = q.Where("project_id = ?", pid)
	}
	if st := r.URL.Query().Get("status"); st != "" {
		q = q.Where("status = ?", st)
	}
	var tasks []models.Task
	var total int64
	if err := q.Model(&models.Task{}).Count(&total).Error; err != nil {
		serviceError(w, err)
		return
	}
	if err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&tasks).Error; err != nil {
		serviceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"tasks": tasks, "total": total})
}

type taskRequest struct {
	ProjectID   uint   `json:"project_id"`
	AssigneeID  *uint  `json:"assignee_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date"`
}

func (h *TaskHandler) create(w http.ResponseWriter, r *http.Request) {
	agencyID, ok := agencyScope(h.DB, w, r)
	if !ok {
		return
	}
	var req taskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	fields := map[string]string{}
	if strings.TrimSpace(req.Title) == "" {
		fields["title"] = "required"
	}
	if req.ProjectID == 0 {
		fields["project_id"] = "required"
	}
	if req.Status != "" && !validTaskStatus(req.Status) {
		fields["status"] = "unknown status"
	}
	if req.Priority != "" && !validTaskPriority(req.Priority) {
		fields["priority"] = "unknown priority"
	}
	due, okDue := parseDate(req.DueDate)
	if !okDue {
		fields["due_date"] = "expected YYYY-MM-DD"
	}
	if len(fields) > 0 {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", fields)
		return
	}
	var count int64
	if err := h.DB.Model(&models.Project{}).Where("id = ? AND agency_id = ?", req.ProjectID, agencyID).Count(&count).Error; err != nil || count == 0 {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", map[string]string{"project_id": "not found"})
		return
	}
	task := models.Task{
		AgencyID: agencyID, ProjectID: req.ProjectID, AssigneeID: req.AssigneeID,
		Title: strings.TrimSpace(req.Title), Description: req.Description,
		Status: models.TaskStatusTodo, Priority: models.TaskPriorityMedium, DueDate: due,
	}
	if req.Status != "" {
		task.Status = models.TaskStatus(req.Status)
	}
	if req.Priority != "" {
		task.Priority = models.TaskPriority(req.Priority)
	}
	if err := h.DB.Create(&task).Error; err != nil {
		serviceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) get(w http.ResponseWriter, r *http.Request) {
	agencyID, ok := agencyScope(h.DB, w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var task models.Task
	if err := h.DB.Where("agency_id = ?", agencyID).First(&task, id).Error; err != nil {
		serviceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, task)
}

func (h *TaskHandler) update(w http.ResponseWriter, r *http.Request) {
	agencyID, ok := agencyScope(h.DB, w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var task models.Task
	if err := h.DB.Where("agency_id = ?", agencyID).First(&task, id).Error; err != nil {
		serviceError(w, err)
		return
	}
	var req taskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", map[string]string{"title": "required"})
		return
	}
	if req.Status != "" && !validTaskStatus(req.Status) {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", map[string]string{"status": "unknown status"})
		return
	}
	if req.Priority != "" && !validTaskPriority(req.Priority) {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", map[string]string{"priority": "unknown priority"})
		return
	}
	due, okDue := parseDate(req.DueDate)
	if !okDue {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", map[string]string{"due_date": "expected YYYY-MM-DD"})
		return
	}
	task.Title = strings.TrimSpace(req.Title)
	task.Description = req.Description
	task.AssigneeID = req.AssigneeID
	if req.Status != "" {
		task.Status = models.TaskStatus(req.Status)
	}
	if req.Priority != "" {
		task.Priority = models.TaskPriority(req.Priority)
	}
	task.DueDate = due
	if err := h.DB.Save(&task).Error; err != nil {
		serviceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, task)
}

func (h *TaskHandler) remove(w http.ResponseWriter, r *http.Request) {
	agencyID, ok := agencyScope(h.DB, w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	res := h.DB.Where("agency_id = ?", agencyID).Delete(&models.Task{}, id)
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

func (h *TaskHandler) listTime(w http.ResponseWriter, r *http.Request) {
	agencyID, ok := agencyScope(h.DB, w, r)
	if !ok {
		return
	}
	limit, offset := listParams(r)
	q := h.DB.Where("agency_id = ?", agencyID)
	if pid := r.URL.Query().Get("project_id"); pid != "" {
		q = q.Where("project_id = ?", pid)
	}
	var entries []models.TimeEntry
	var total int64
	if err := q.Model(&models.TimeEntry{}).Count(&total).Error; err != nil {
		serviceError(w, err)
		return
	}
	if err := q.Order("worked_on DESC").Limit(limit).Offset(offset).Find(&entries).Error; err != nil {
		serviceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"time_entries": entries, "total": total})
}

type timeEntryRequest struct {
	ProjectID uint   `json:"project_id"`
	TaskID    *uint  `json:"task_id"`
	Minutes   int    `json:"minutes"`
	Billable  *bool  `json:"billable"`
	Note      string `json:"note"`
	WorkedOn  string `json:"worked_on"` // YYYY-MM-DD, defaults to today
}

func (h *TaskHandler) createTime(w http.ResponseWriter, r *http.Request) {
	agencyID, ok := agencyScope(h.DB, w, r)
	if !ok {
		return
	}
	user, err := currentUser(h.DB, r)
	if err != nil {
		httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	var req timeEntryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	fields := map[string]string{}
	if req.ProjectID == 0 {
		fields["project_id"] = "required"
	}
	if req.Minutes <= 0 {
		fields["minutes"] = "must be positive"
	}
	workedOn, okDate := parseDate(req.WorkedOn)
	if !okDate {
		fields["worked_on"] = "expected YYYY-MM-DD"
	}
	if len(fields) > 0 {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", fields)
		return
	}
	var count int64
	if err := h.DB.Model(&models.Project{}).Where("id = ? AND agency_id = ?", req.ProjectID, agencyID).Count(&count).Error; err != nil || count == 0 {
		httpx.JSONError(w, http.StatusUnprocessableEntity, "validation_failed", map[string]string{"project_id": "not found"})
		return
	}
	entry := models.TimeEntry{
		AgencyID: agencyID, UserID: user.ID, ProjectID: req.ProjectID, TaskID: req.TaskID,
		Minutes: req.Minutes, Billable: true, Note: req.Note, WorkedOn: time.Now(),
	}
	if workedOn != nil {
		entry.WorkedOn = *workedOn
	}
	if req.Billable != nil {
		entry.Billable = *req.Billable
	}
	if err := h.DB.Create(&entry).Error; err != nil {
		serviceError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *TaskHandler) removeTime(w http.ResponseWriter, r *http.Request) {
	agencyID, ok := agencyScope(h.DB, w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	res := h.DB.Where("agency_id = ?", agencyID).Delete(&models.TimeEntry{}, id)
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
