package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hustle/internal/domain"
	"hustle/internal/service"
)

// RunnerHandler handles HTTP requests for runners.
type RunnerHandler struct {
	runnerService  *service.RunnerService
	searchRadiusKm float64
}

// NewRunnerHandler creates a new RunnerHandler. searchRadiusKm is used by
// /nearby when the request gives no radius.
func NewRunnerHandler(runnerService *service.RunnerService, searchRadiusKm float64) *RunnerHandler {
	return &RunnerHandler{
		runnerService:  runnerService,
		searchRadiusKm: searchRadiusKm,
	}
}

// RegisterRunnerRequest is the HTTP request body for runner registration.
// The profile is linked to the session user; name and phone default to theirs.
type RegisterRunnerRequest struct {
	Name     string          `json:"name"`
	Phone    string          `json:"phone"`
	Location domain.Location `json:"location"`
}

// UpdateLocationRequest is the HTTP request body for moving a runner.
type UpdateLocationRequest struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address,omitempty"`
	City    string  `json:"city,omitempty"`
}

// UpdateAvailabilityRequest is the HTTP request body for toggling availability.
type UpdateAvailabilityRequest struct {
	IsAvailable *bool `json:"is_available"`
}

// Register handles POST /v1/runners
func (h *RunnerHandler) Register(c *gin.Context) {
	user, ok := sessionUser(c)
	if !ok {
		return
	}

	var req RegisterRunnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if req.Name == "" {
		req.Name = user.Name
	}
	if req.Phone == "" {
		req.Phone = user.Phone
	}

	runner, err := h.runnerService.Register(c.Request.Context(), service.RegisterRunnerRequest{
		UserID:   user.ID,
		Name:     req.Name,
		Phone:    req.Phone,
		Location: req.Location,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, runner)
}

// GetAll handles GET /v1/runners
func (h *RunnerHandler) GetAll(c *gin.Context) {
	runners, err := h.runnerService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"runners": runners,
		"count":   len(runners),
	})
}

// Available handles GET /v1/runners/available
func (h *RunnerHandler) Available(c *gin.Context) {
	runners, err := h.runnerService.ListAvailable(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"runners": runners,
		"count":   len(runners),
	})
}

// Nearby handles GET /v1/runners/nearby?lat=&lng=&radius_km=
func (h *RunnerHandler) Nearby(c *gin.Context) {
	lat, errLat := queryFloat(c, "lat", 0)
	lng, errLng := queryFloat(c, "lng", 0)
	radius, errRadius := queryFloat(c, "radius_km", h.searchRadiusKm)
	if errLat != nil || errLng != nil || errRadius != nil || c.Query("lat") == "" || c.Query("lng") == "" {
		badRequest(c, "lat and lng are required numbers")
		return
	}

	runners, err := h.runnerService.Nearby(c.Request.Context(), domain.Location{Latitude: lat, Longitude: lng}, radius)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"runners":   runners,
		"count":     len(runners),
		"radius_km": radius,
	})
}

// Get handles GET /v1/runners/:id
func (h *RunnerHandler) Get(c *gin.Context) {
	runner, err := h.runnerService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, runner)
}

// UpdateLocation handles POST /v1/runners/:id/location
func (h *RunnerHandler) UpdateLocation(c *gin.Context) {
	if _, ok := requireOwnRunner(c, h.runnerService, c.Param("id")); !ok {
		return
	}

	var req UpdateLocationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	runner, err := h.runnerService.UpdateLocation(c.Request.Context(), c.Param("id"), domain.Location{
		Latitude:  req.Lat,
		Longitude: req.Lng,
		Address:   req.Address,
		City:      req.City,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, runner)
}

// UpdateAvailability handles POST /v1/runners/:id/availability
func (h *RunnerHandler) UpdateAvailability(c *gin.Context) {
	if _, ok := requireOwnRunner(c, h.runnerService, c.Param("id")); !ok {
		return
	}

	var req UpdateAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsAvailable == nil {
		badRequest(c, "is_available is required")
		return
	}

	runner, err := h.runnerService.UpdateAvailability(c.Request.Context(), c.Param("id"), *req.IsAvailable)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, runner)
}
