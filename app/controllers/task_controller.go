package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"tasks-api/app/models"
	"tasks-api/app/services"
)

const maxBodySize = 1 << 20

// TaskController handles HTTP requests for tasks.
type TaskController struct {
	Service *services.TaskService
	schemas *Schemas
	logger  *log.Logger
}

// NewTaskController creates a new TaskController.
func NewTaskController(service *services.TaskService, schemas *Schemas, logger *log.Logger) *TaskController {
	return &TaskController{Service: service, schemas: schemas, logger: logger}
}

// taskRequest is the JSON body of create and update calls.
type taskRequest struct {
	Title       *string          `json:"title"`
	Category    *string          `json:"category"`
	Priority    *models.Priority `json:"priority"`
	Status      *models.Status   `json:"status"`
	IsCompleted *bool            `json:"is_completed"`
	ParentID    *int64           `json:"parent_id"`
}

// GetTasks handles GET /api/tasks.
func (c *TaskController) GetTasks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := models.TaskFilter{
		Completion: models.CompletionFilter(query.Get("filter_completed")),
		Category:   query.Get("category"),
		Priority:   models.Priority(query.Get("priority")),
	}
	switch filter.Completion {
	case "", models.CompletionAll, models.CompletionCompleted, models.CompletionIncomplete:
	default:
		c.writeError(w, services.ValidationError{
			Field:  "filter_completed",
			Reason: "must be one of all, completed, incomplete",
		})
		return
	}

	list, err := c.Service.GetTasks(r.Context(), filter)
	if err != nil {
		c.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// GetCategories handles GET /api/tasks/categories.
func (c *TaskController) GetCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := c.Service.GetCategories(r.Context())
	if err != nil {
		c.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// GetTaskByID handles GET /api/tasks/{taskID}.
func (c *TaskController) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	taskID, err := parseTaskID(r)
	if err != nil {
		c.writeError(w, err)
		return
	}

	task, err := c.Service.GetTaskByID(r.Context(), taskID)
	if err != nil {
		c.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// CreateTask handles POST /api/tasks.
func (c *TaskController) CreateTask(w http.ResponseWriter, r *http.Request) {
	req, _, err := c.decode(r, c.schemas.CreateTask)
	if err != nil {
		c.writeError(w, err)
		return
	}

	newTask := models.NewTask{ParentID: req.ParentID}
	if req.Title != nil {
		newTask.Title = *req.Title
	}
	if req.Category != nil {
		newTask.Category = *req.Category
	}
	if req.Priority != nil {
		newTask.Priority = *req.Priority
	}
	if req.Status != nil {
		newTask.Status = *req.Status
	}

	task, err := c.Service.CreateTask(r.Context(), newTask)
	if err != nil {
		c.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

// UpdateTask handles PUT /api/tasks/{taskID}.
func (c *TaskController) UpdateTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := parseTaskID(r)
	if err != nil {
		c.writeError(w, err)
		return
	}
	req, present, err := c.decode(r, c.schemas.UpdateTask)
	if err != nil {
		c.writeError(w, err)
		return
	}

	patch := models.TaskPatch{
		Title:       req.Title,
		Category:    req.Category,
		Priority:    req.Priority,
		Status:      req.Status,
		IsCompleted: req.IsCompleted,
		ParentID:    req.ParentID,
	}
	// An explicit null clears the field; an absent key leaves it alone.
	if present["category"] && req.Category == nil {
		empty := ""
		patch.Category = &empty
	}
	if present["parent_id"] && req.ParentID == nil {
		patch.Detach = true
	}

	task, err := c.Service.UpdateTask(r.Context(), taskID, patch)
	if err != nil {
		c.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// ToggleTask handles PATCH /api/tasks/{taskID}/complete.
func (c *TaskController) ToggleTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := parseTaskID(r)
	if err != nil {
		c.writeError(w, err)
		return
	}

	task, err := c.Service.ToggleTask(r.Context(), taskID)
	if err != nil {
		c.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// DeleteTask handles DELETE /api/tasks/{taskID}.
func (c *TaskController) DeleteTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := parseTaskID(r)
	if err != nil {
		c.writeError(w, err)
		return
	}

	if err := c.Service.DeleteTask(r.Context(), taskID); err != nil {
		c.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decode reads the JSON body, validates it against schema and returns the
// typed request plus the set of keys present in the body.
func (c *TaskController) decode(r *http.Request, schema *jsonschema.Schema) (*taskRequest, map[string]bool, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil {
		return nil, nil, services.ValidationError{Reason: "unreadable request body"}
	}
	if len(body) > maxBodySize {
		return nil, nil, services.ValidationError{Reason: "request body too large"}
	}

	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, nil, services.ValidationError{Reason: "invalid request payload"}
	}
	if err := validatePayload(schema, doc); err != nil {
		return nil, nil, err
	}

	var req taskRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, nil, services.ValidationError{Reason: "invalid request payload"}
	}
	present := make(map[string]bool)
	if fields, ok := doc.(map[string]any); ok {
		for k := range fields {
			present[k] = true
		}
	}
	return &req, present, nil
}

func parseTaskID(r *http.Request) (int64, error) {
	raw := mux.Vars(r)["taskID"]
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, services.ValidationError{Field: "task_id", Reason: "must be a positive integer"}
	}
	return id, nil
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// writeError maps domain errors onto HTTP status codes.
func (c *TaskController) writeError(w http.ResponseWriter, err error) {
	var (
		notFound   services.TaskNotFoundError
		noParent   services.ParentNotFoundError
		invalid    services.InvalidTransitionError
		cycle      services.CycleError
		validation services.ValidationError
	)

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &notFound), errors.As(err, &noParent):
		status = http.StatusNotFound
	case errors.As(err, &invalid), errors.As(err, &cycle):
		status = http.StatusBadRequest
	case errors.As(err, &validation):
		status = http.StatusUnprocessableEntity
	}

	detail := err.Error()
	if status == http.StatusInternalServerError {
		c.logger.Error("request failed", "err", err)
		detail = "internal server error"
	}
	writeJSON(w, status, errorResponse{Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
