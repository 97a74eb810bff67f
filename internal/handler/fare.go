package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hustle/internal/domain"
	"hustle/internal/geo"
	"hustle/internal/pricing"
)

// FareHandler handles HTTP requests for price estimates.
type FareHandler struct {
	estimator *pricing.Estimator
}

// NewFareHandler creates a new FareHandler.
func NewFareHandler(estimator *pricing.Estimator) *FareHandler {
	return &FareHandler{estimator: estimator}
}

// EstimateRequest is the HTTP request body for an errand estimate.
type EstimateRequest struct {
	Pickup   domain.Location `json:"pickup"`
	Dropoff  domain.Location `json:"dropoff"`
	ItemCost int64           `json:"item_cost"`
	Coupon   string          `json:"coupon,omitempty"`
}

// DeliveryFareRequest is the HTTP request body for a delivery fare.
type DeliveryFareRequest struct {
	Pickup  domain.Location `json:"pickup"`
	Dropoff domain.Location `json:"dropoff"`
}

// DeliveryFareResponse is the HTTP response for a delivery fare.
type DeliveryFareResponse struct {
	domain.FareCalculation
	EstimatedDeliveryMins int `json:"estimated_delivery_mins"`
}

// Estimate handles POST /v1/fare/estimate
func (h *FareHandler) Estimate(c *gin.Context) {
	var req EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if !req.Pickup.Valid() || !req.Dropoff.Valid() {
		badRequest(c, "invalid location")
		return
	}

	estimate, err := h.estimator.EstimateBetween(req.Pickup, req.Dropoff, req.ItemCost, req.Coupon)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, estimate)
}

// Delivery handles POST /v1/fare/delivery
func (h *FareHandler) Delivery(c *gin.Context) {
	var req DeliveryFareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	if !req.Pickup.Valid() || !req.Dropoff.Valid() {
		badRequest(c, "invalid location")
		return
	}

	fare := h.estimator.DeliveryFare(geo.Distance(req.Pickup, req.Dropoff))
	respondJSON(c, http.StatusOK, DeliveryFareResponse{
		FareCalculation:       fare,
		EstimatedDeliveryMins: geo.EstimateDeliveryTime(fare.DistanceKm),
	})
}
