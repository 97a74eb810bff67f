package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"hustle/internal/domain"
	"hustle/internal/service"
)

// CustomTaskHandler handles HTTP requests for custom errands.
type CustomTaskHandler struct {
	taskService   *service.CustomTaskService
	runnerService *service.RunnerService
}

// NewCustomTaskHandler creates a new CustomTaskHandler.
func NewCustomTaskHandler(taskService *service.CustomTaskService, runnerService *service.RunnerService) *CustomTaskHandler {
	return &CustomTaskHandler{taskService: taskService, runnerService: runnerService}
}

// CreateCustomTaskRequest is the HTTP request body for posting an errand.
// Contact fields default to the session user's.
type CreateCustomTaskRequest struct {
	UserPhone            string           `json:"user_phone"`
	UserEmail            string           `json:"user_email,omitempty"`
	Title                string           `json:"title"`
	Description          string           `json:"description"`
	Category             string           `json:"category"`
	Budget               int64            `json:"budget"`
	EstimatedDurationMin int              `json:"estimated_duration_min,omitempty"`
	PickupLocation       *domain.Location `json:"pickup_location,omitempty"`
	DeliveryLocation     *domain.Location `json:"delivery_location,omitempty"`
}

// Create handles POST /v1/custom-tasks
func (h *CustomTaskHandler) Create(c *gin.Context) {
	user, ok := sessionUser(c)
	if !ok {
		return
	}

	var req CreateCustomTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if req.UserPhone == "" {
		req.UserPhone = user.Phone
	}
	if req.UserEmail == "" {
		req.UserEmail = user.Email
	}

	task, err := h.taskService.Create(c.Request.Context(), service.CreateCustomTaskRequest{
		UserID:               user.ID,
		UserPhone:            req.UserPhone,
		UserEmail:            req.UserEmail,
		Title:                req.Title,
		Description:          req.Description,
		Category:             domain.TaskCategory(req.Category),
		Budget:               req.Budget,
		EstimatedDurationMin: req.EstimatedDurationMin,
		Pickup:               req.PickupLocation,
		Delivery:             req.DeliveryLocation,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, task)
}

// ListOpen handles GET /v1/custom-tasks
func (h *CustomTaskHandler) ListOpen(c *gin.Context) {
	tasks, err := h.taskService.ListOpen(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"tasks": tasks, "count": len(tasks)})
}

// Get handles GET /v1/custom-tasks/:id
// Errands are public so runners can inspect one before accepting it.
func (h *CustomTaskHandler) Get(c *gin.Context) {
	task, err := h.taskService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, task)
}

// Accept handles POST /v1/custom-tasks/:id/accept
func (h *CustomTaskHandler) Accept(c *gin.Context) {
	h.runnerStep(c, h.taskService.Accept)
}

// Start handles POST /v1/custom-tasks/:id/start
func (h *CustomTaskHandler) Start(c *gin.Context) {
	h.runnerStep(c, h.taskService.Start)
}

// Submit handles POST /v1/custom-tasks/:id/submit
func (h *CustomTaskHandler) Submit(c *gin.Context) {
	h.runnerStep(c, h.taskService.Submit)
}

// Confirm handles POST /v1/custom-tasks/:id/confirm
func (h *CustomTaskHandler) Confirm(c *gin.Context) {
	user, ok := sessionUser(c)
	if !ok {
		return
	}

	task, err := h.taskService.Confirm(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, task)
}

// Cancel handles POST /v1/custom-tasks/:id/cancel
func (h *CustomTaskHandler) Cancel(c *gin.Context) {
	user, ok := sessionUser(c)
	if !ok {
		return
	}
	req, ok := bindCancel(c)
	if !ok {
		return
	}

	task, err := h.taskService.Cancel(c.Request.Context(), c.Param("id"), user.ID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, task)
}

// ListByUser handles GET /v1/custom-tasks/users/:userId
func (h *CustomTaskHandler) ListByUser(c *gin.Context) {
	user, ok := requireSelf(c, c.Param("userId"))
	if !ok {
		return
	}

	tasks, err := h.taskService.ListByUser(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"tasks": tasks, "count": len(tasks)})
}

// ListByRunner handles GET /v1/custom-tasks/runners/:runnerId
func (h *CustomTaskHandler) ListByRunner(c *gin.Context) {
	runner, ok := requireOwnRunner(c, h.runnerService, c.Param("runnerId"))
	if !ok {
		return
	}

	tasks, err := h.taskService.ListByRunner(c.Request.Context(), runner.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"tasks": tasks, "count": len(tasks)})
}

func (h *CustomTaskHandler) runnerStep(c *gin.Context, step func(ctx context.Context, taskID, runnerID string) (*domain.CustomTask, error)) {
	runner, ok := sessionRunner(c, h.runnerService)
	if !ok {
		return
	}

	task, err := step(c.Request.Context(), c.Param("id"), runner.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, task)
}
