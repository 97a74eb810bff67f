package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"hustle/internal/service"
)

// WalletHandler handles HTTP requests for wallets. Callers can only reach
// their own wallet.
type WalletHandler struct {
	walletService *service.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletService *service.WalletService) *WalletHandler {
	return &WalletHandler{walletService: walletService}
}

// DepositRequest is the HTTP request body for a top-up.
type DepositRequest struct {
	Amount int64 `json:"amount"`
}

// Get handles GET /v1/wallets/:userId
func (h *WalletHandler) Get(c *gin.Context) {
	user, ok := requireSelf(c, c.Param("userId"))
	if !ok {
		return
	}

	wallet, err := h.walletService.GetWallet(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, wallet)
}

// Initialize handles POST /v1/wallets/:userId/init
func (h *WalletHandler) Initialize(c *gin.Context) {
	user, ok := requireSelf(c, c.Param("userId"))
	if !ok {
		return
	}

	wallet, err := h.walletService.InitializeWallet(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, wallet)
}

// Deposit handles POST /v1/wallets/:userId/deposit
func (h *WalletHandler) Deposit(c *gin.Context) {
	user, ok := requireSelf(c, c.Param("userId"))
	if !ok {
		return
	}

	var req DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	wallet, err := h.walletService.Deposit(c.Request.Context(), user.ID, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, wallet)
}

// Transactions handles GET /v1/wallets/:userId/transactions
func (h *WalletHandler) Transactions(c *gin.Context) {
	user, ok := requireSelf(c, c.Param("userId"))
	if !ok {
		return
	}

	txns, err := h.walletService.GetTransactions(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"transactions": txns,
		"count":        len(txns),
	})
}
