package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"hustle/internal/domain"
	"hustle/internal/service"
)

// InstantTaskHandler handles HTTP requests for instant tasks.
type InstantTaskHandler struct {
	taskService   *service.InstantTaskService
	runnerService *service.RunnerService
}

// NewInstantTaskHandler creates a new InstantTaskHandler.
func NewInstantTaskHandler(taskService *service.InstantTaskService, runnerService *service.RunnerService) *InstantTaskHandler {
	return &InstantTaskHandler{taskService: taskService, runnerService: runnerService}
}

// QuoteInstantTaskRequest is the HTTP request body for pricing an order.
type QuoteInstantTaskRequest struct {
	ItemID           string           `json:"item_id"`
	PickupLocation   *domain.Location `json:"pickup_location,omitempty"`
	DeliveryLocation domain.Location  `json:"delivery_location"`
}

// CreateInstantTaskRequest is the HTTP request body for ordering an item.
// The order is placed for the session user; user_phone defaults to theirs.
type CreateInstantTaskRequest struct {
	UserPhone           string           `json:"user_phone"`
	ItemID              string           `json:"item_id"`
	PickupLocation      *domain.Location `json:"pickup_location,omitempty"`
	DeliveryLocation    domain.Location  `json:"delivery_location"`
	SpecialInstructions string           `json:"special_instructions,omitempty"`
}

// CancelRequest is the optional HTTP request body for cancelling a task.
type CancelRequest struct {
	Reason string `json:"reason,omitempty"`
}

// Quote handles POST /v1/instant-tasks/quote
func (h *InstantTaskHandler) Quote(c *gin.Context) {
	var req QuoteInstantTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	quote, err := h.taskService.Quote(c.Request.Context(), req.ItemID, req.PickupLocation, req.DeliveryLocation)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, quote)
}

// Create handles POST /v1/instant-tasks
func (h *InstantTaskHandler) Create(c *gin.Context) {
	user, ok := sessionUser(c)
	if !ok {
		return
	}

	var req CreateInstantTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if req.UserPhone == "" {
		req.UserPhone = user.Phone
	}

	task, err := h.taskService.Create(c.Request.Context(), service.CreateInstantTaskRequest{
		UserID:              user.ID,
		UserPhone:           req.UserPhone,
		ItemID:              req.ItemID,
		Pickup:              req.PickupLocation,
		Delivery:            req.DeliveryLocation,
		SpecialInstructions: req.SpecialInstructions,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, task)
}

// Get handles GET /v1/instant-tasks/:id
// Only the customer and the assigned runner can read a task.
func (h *InstantTaskHandler) Get(c *gin.Context) {
	user, ok := sessionUser(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetForUser(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, task)
}

// Start handles POST /v1/instant-tasks/:id/start
func (h *InstantTaskHandler) Start(c *gin.Context) {
	h.runnerStep(c, h.taskService.Start)
}

// Deliver handles POST /v1/instant-tasks/:id/deliver
func (h *InstantTaskHandler) Deliver(c *gin.Context) {
	h.runnerStep(c, h.taskService.MarkDelivered)
}

// Complete handles POST /v1/instant-tasks/:id/complete
func (h *InstantTaskHandler) Complete(c *gin.Context) {
	user, ok := sessionUser(c)
	if !ok {
		return
	}

	task, err := h.taskService.Complete(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, task)
}

// Cancel handles POST /v1/instant-tasks/:id/cancel
func (h *InstantTaskHandler) Cancel(c *gin.Context) {
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

// ListByUser handles GET /v1/instant-tasks/users/:userId
func (h *InstantTaskHandler) ListByUser(c *gin.Context) {
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

// ListByRunner handles GET /v1/instant-tasks/runners/:runnerId
func (h *InstantTaskHandler) ListByRunner(c *gin.Context) {
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

// runnerStep runs a runner-side transition as the caller's runner profile.
func (h *InstantTaskHandler) runnerStep(c *gin.Context, step func(ctx context.Context, taskID, runnerID string) (*domain.InstantTask, error)) {
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

// bindCancel reads the optional cancellation reason. An empty body is fine.
func bindCancel(c *gin.Context) (CancelRequest, bool) {
	var req CancelRequest
	if c.Request.ContentLength == 0 {
		return req, true
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return req, false
	}
	return req, true
}
