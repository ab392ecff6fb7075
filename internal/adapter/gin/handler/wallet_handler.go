package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wallet-account-service/internal/usecase/session"
	"wallet-account-service/internal/usecase/wallet"
)

// WalletHandler handles HTTP requests for balance mutations.
type WalletHandler struct {
	engine   *wallet.Engine
	sessions *session.Cache
	log      *zap.Logger
}

// NewWalletHandler creates a new WalletHandler instance
func NewWalletHandler(engine *wallet.Engine, sessions *session.Cache, log *zap.Logger) *WalletHandler {
	return &WalletHandler{engine: engine, sessions: sessions, log: log}
}

// AmountRequest represents the HTTP request body for deposit and withdrawal
type AmountRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// TransferHTTPRequest represents the HTTP request body for a transfer
type TransferHTTPRequest struct {
	ToUserID string `json:"to_user_id" binding:"required"`
	Amount   int64  `json:"amount" binding:"required,gt=0"`
}

// AdminAdjustHTTPRequest represents the HTTP request body for an
// administrative balance adjustment
type AdminAdjustHTTPRequest struct {
	TargetUserID string `json:"target_user_id" binding:"required"`
	NewBalance   int64  `json:"new_balance" binding:"gte=0"`
}

// Deposit handles POST /v1/wallet/deposit
func (h *WalletHandler) Deposit(c *gin.Context) {
	acct, err := h.sessions.Current(c.Request.Context(), bearerToken(c))
	if err != nil {
		writeError(c, err)
		return
	}

	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid deposit request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: err.Error()})
		return
	}

	resp, err := h.engine.Deposit(c.Request.Context(), wallet.DepositRequest{
		UserID: acct.ID,
		Amount: req.Amount,
	})
	if err != nil {
		h.log.Error("deposit failed", zap.String("user_id", acct.ID), zap.Error(err))
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":     resp.UserID,
		"new_balance": resp.NewBalance,
	})
}

// Withdraw handles POST /v1/wallet/withdraw
func (h *WalletHandler) Withdraw(c *gin.Context) {
	acct, err := h.sessions.Current(c.Request.Context(), bearerToken(c))
	if err != nil {
		writeError(c, err)
		return
	}

	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid withdrawal request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: err.Error()})
		return
	}

	resp, err := h.engine.Withdraw(c.Request.Context(), wallet.WithdrawRequest{
		UserID: acct.ID,
		Amount: req.Amount,
	})
	if err != nil {
		h.log.Warn("withdrawal failed", zap.String("user_id", acct.ID), zap.Error(err))
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":     resp.UserID,
		"new_balance": resp.NewBalance,
	})
}

// Transfer handles POST /v1/wallet/transfer
func (h *WalletHandler) Transfer(c *gin.Context) {
	acct, err := h.sessions.Current(c.Request.Context(), bearerToken(c))
	if err != nil {
		writeError(c, err)
		return
	}

	var req TransferHTTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid transfer request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: err.Error()})
		return
	}

	resp, err := h.engine.Transfer(c.Request.Context(), wallet.TransferRequest{
		FromUserID: acct.ID,
		ToUserID:   req.ToUserID,
		Amount:     req.Amount,
	})
	if err != nil {
		h.log.Error("transfer failed",
			zap.String("from", acct.ID), zap.String("to", req.ToUserID), zap.Error(err))
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"from_user_id": resp.FromUserID,
		"to_user_id":   resp.ToUserID,
		"amount":       resp.Amount,
		"from_balance": resp.FromBalance,
		"to_balance":   resp.ToBalance,
	})
}

// AdminAdjust handles POST /v1/admin/balance
func (h *WalletHandler) AdminAdjust(c *gin.Context) {
	acting, err := h.sessions.Current(c.Request.Context(), bearerToken(c))
	if err != nil {
		writeError(c, err)
		return
	}

	var req AdminAdjustHTTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid admin adjust request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: err.Error()})
		return
	}

	resp, err := h.engine.AdminAdjust(c.Request.Context(), wallet.AdminAdjustRequest{
		ActingAdminID: acting.ID,
		TargetUserID:  req.TargetUserID,
		NewBalance:    req.NewBalance,
	})
	if err != nil {
		h.log.Error("admin adjust failed",
			zap.String("acting_admin", acting.ID), zap.String("target", req.TargetUserID), zap.Error(err))
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"target_user_id": resp.TargetUserID,
		"new_balance":    resp.NewBalance,
	})
}
