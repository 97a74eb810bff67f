package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hustle/internal/domain"
	"hustle/internal/middleware"
	"hustle/internal/service"
)

// AuthHandler handles HTTP requests for accounts and sessions.
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// SignupRequest is the HTTP request body for creating an account.
type SignupRequest struct {
	Name     string           `json:"name"`
	Email    string           `json:"email"`
	Phone    string           `json:"phone"`
	Password string           `json:"password"`
	Role     string           `json:"role,omitempty"`
	Location *domain.Location `json:"location,omitempty"`
}

// LoginRequest is the HTTP request body for logging in.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// VerifyOTPRequest is the HTTP request body for confirming a phone number.
type VerifyOTPRequest struct {
	Code string `json:"code"`
}

// KYCRequest is the HTTP request body for submitting an identity document.
type KYCRequest struct {
	IDType   string `json:"id_type"`
	IDNumber string `json:"id_number"`
}

// Signup handles POST /v1/auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	session, err := h.authService.Signup(c.Request.Context(), service.SignupRequest{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		Role:     domain.UserRole(req.Role),
		Location: req.Location,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, session)
}

// Login handles POST /v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	session, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, session)
}

// Logout handles POST /v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	token := middleware.BearerToken(c)
	if token == "" {
		respondError(c, service.ErrUnauthorized)
		return
	}

	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Session handles GET /v1/auth/session
func (h *AuthHandler) Session(c *gin.Context) {
	session, err := h.authService.Session(c.Request.Context(), middleware.BearerToken(c))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, session)
}


// SendOTP handles POST /v1/auth/otp/send
func (h *AuthHandler) SendOTP(c *gin.Context) {
	user, ok := sessionUser(c)
	if !ok {
		return
	}

	if err := h.authService.SendOTP(c.Request.Context(), user.ID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusAccepted)
}

// VerifyOTP handles POST /v1/auth/otp/verify
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		respondError(c, service.ErrUnauthorized)
		return
	}

	var req VerifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	user, err := h.authService.VerifyOTP(c.Request.Context(), session, req.Code)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, user)
}

// CompleteKYC handles POST /v1/auth/kyc
func (h *AuthHandler) CompleteKYC(c *gin.Context) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		respondError(c, service.ErrUnauthorized)
		return
	}

	var req KYCRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	user, err := h.authService.CompleteKYC(c.Request.Context(), session, service.KYCRequest{
		IDType:   req.IDType,
		IDNumber: req.IDNumber,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, user)
}
