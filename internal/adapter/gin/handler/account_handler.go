package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	domain "wallet-account-service/internal/domain/account"
	"wallet-account-service/internal/usecase/account"
	"wallet-account-service/internal/usecase/session"
)

// AccountHandler handles HTTP requests for account and profile operations.
type AccountHandler struct {
	uc       *account.Usecase
	sessions *session.Cache
	log      *zap.Logger
}

// NewAccountHandler creates a new AccountHandler instance
func NewAccountHandler(uc *account.Usecase, sessions *session.Cache, log *zap.Logger) *AccountHandler {
	return &AccountHandler{uc: uc, sessions: sessions, log: log}
}

// RegisterRequest represents the HTTP request body for self-registration
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	FullName    string `json:"full_name" binding:"required"`
	PhoneNumber string `json:"phone_number"`
}

// LoginRequest represents the HTTP request body for opening a session
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest represents the HTTP request body for a partial
// profile update; absent fields are left untouched.
type UpdateProfileRequest struct {
	FullName          *string `json:"full_name"`
	PhoneNumber       *string `json:"phone_number"`
	ProfilePictureURL *string `json:"profile_picture_url"`
	IsVerified        *bool   `json:"is_verified"`
}

// AdminCreateRequest represents the HTTP request body for admin-panel
// account creation.
type AdminCreateRequest struct {
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8"`
	FullName        string `json:"full_name" binding:"required"`
	PhoneNumber     string `json:"phone_number"`
	IsAdmin         bool   `json:"is_admin"`
	IsVerified      bool   `json:"is_verified"`
	StartingBalance int64  `json:"starting_balance" binding:"gte=0"`
}

// MarkNotificationRequest represents the HTTP request body for flipping a
// notification read flag.
type MarkNotificationRequest struct {
	Read bool `json:"read"`
}

// NotificationResponse represents a notification in HTTP responses
type NotificationResponse struct {
	ID      string    `json:"id"`
	Message string    `json:"message"`
	Date    time.Time `json:"date"`
	Read    bool      `json:"read"`
}

// AccountResponse represents an account in HTTP responses
type AccountResponse struct {
	ID                string                 `json:"id"`
	Email             string                 `json:"email"`
	FullName          string                 `json:"full_name"`
	Username          string                 `json:"username"`
	PhoneNumber       string                 `json:"phone_number"`
	IsAdmin           bool                   `json:"is_admin"`
	IsVerified        bool                   `json:"is_verified"`
	Balance           int64                  `json:"balance"`
	ProfilePictureURL string                 `json:"profile_picture_url,omitempty"`
	Notifications     []NotificationResponse `json:"notifications"`
}

func toAccountResponse(a *domain.Account) AccountResponse {
	notifications := make([]NotificationResponse, len(a.Notifications))
	for i, n := range a.Notifications {
		notifications[i] = NotificationResponse{
			ID:      n.ID,
			Message: n.Message,
			Date:    n.Date,
			Read:    n.Read,
		}
	}

	return AccountResponse{
		ID:                a.ID,
		Email:             a.Email,
		FullName:          a.FullName,
		Username:          a.Username,
		PhoneNumber:       a.PhoneNumber,
		IsAdmin:           a.IsAdmin,
		IsVerified:        a.IsVerified,
		Balance:           a.Balance,
		ProfilePictureURL: a.ProfilePictureURL,
		Notifications:     notifications,
	}
}

// Register handles POST /v1/auth/register
func (h *AccountHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid register request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: err.Error()})
		return
	}

	acct, err := h.uc.Register(c.Request.Context(), account.RegisterRequest{
		Email:       req.Email,
		Password:    req.Password,
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		h.log.Error("register failed", zap.Error(err))
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toAccountResponse(acct))
}

// Login handles POST /v1/auth/login
func (h *AccountHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid login request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: err.Error()})
		return
	}

	token, acct, err := h.uc.Login(c.Request.Context(), account.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.log.Warn("login failed", zap.String("email", req.Email), zap.Error(err))
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  toAccountResponse(acct),
	})
}

// Logout handles POST /v1/auth/logout
func (h *AccountHandler) Logout(c *gin.Context) {
	if err := h.uc.Logout(c.Request.Context(), bearerToken(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Me handles GET /v1/me, serving the cached current-user view.
func (h *AccountHandler) Me(c *gin.Context) {
	acct, err := h.sessions.Current(c.Request.Context(), bearerToken(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toAccountResponse(acct))
}

// UpdateProfile handles PATCH /v1/me/profile
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	acct, err := h.sessions.Current(c.Request.Context(), bearerToken(c))
	if err != nil {
		writeError(c, err)
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid profile update request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: err.Error()})
		return
	}

	err = h.uc.UpdateProfile(c.Request.Context(), account.UpdateProfileRequest{
		UserID:            acct.ID,
		FullName:          req.FullName,
		PhoneNumber:       req.PhoneNumber,
		ProfilePictureURL: req.ProfilePictureURL,
		IsVerified:        req.IsVerified,
	})
	if err != nil {
		h.log.Error("profile update failed", zap.String("user_id", acct.ID), zap.Error(err))
		writeError(c, err)
		return
	}

	refreshed, err := h.sessions.Refresh(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, toAccountResponse(refreshed))
}

// MarkNotification handles PATCH /v1/me/notifications/:id
func (h *AccountHandler) MarkNotification(c *gin.Context) {
	acct, err := h.sessions.Current(c.Request.Context(), bearerToken(c))
	if err != nil {
		writeError(c, err)
		return
	}

	var req MarkNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: err.Error()})
		return
	}

	if err := h.uc.MarkNotificationRead(c.Request.Context(), acct.ID, c.Param("id"), req.Read); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListUsers handles GET /v1/admin/users
func (h *AccountHandler) ListUsers(c *gin.Context) {
	accounts, err := h.uc.ListAll(c.Request.Context())
	if err != nil {
		h.log.Error("list users failed", zap.Error(err))
		writeError(c, err)
		return
	}

	responses := make([]AccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = toAccountResponse(&accounts[i])
	}

	c.JSON(http.StatusOK, gin.H{"users": responses})
}

// AdminCreateUser handles POST /v1/admin/users
func (h *AccountHandler) AdminCreateUser(c *gin.Context) {
	acting, err := h.sessions.Current(c.Request.Context(), bearerToken(c))
	if err != nil {
		writeError(c, err)
		return
	}

	var req AdminCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid admin create request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: err.Error()})
		return
	}

	acct, err := h.uc.AdminCreate(c.Request.Context(), account.AdminCreateRequest{
		ActingAdminID:   acting.ID,
		Email:           req.Email,
		Password:        req.Password,
		FullName:        req.FullName,
		PhoneNumber:     req.PhoneNumber,
		IsAdmin:         req.IsAdmin,
		IsVerified:      req.IsVerified,
		StartingBalance: req.StartingBalance,
	})
	if err != nil {
		h.log.Error("admin create failed", zap.Error(err))
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toAccountResponse(acct))
}
