package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fintrack/fintrack_service/internal/domain/entities"
)

// AccountService is the account surface used by the auth handlers
type AccountService interface {
	Register(ctx context.Context, req *entities.RegisterRequest) (*entities.AuthResponse, error)
	Login(ctx context.Context, req *entities.LoginRequest) (*entities.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*entities.AuthResponse, error)
	Logout(ctx context.Context, token string, expiresAt time.Time) error
	Overview(ctx context.Context, userID uuid.UUID) (*entities.UserOverview, error)
}

// AuthHandlers handles registration, login and the profile overview
type AuthHandlers struct {
	accounts AccountService
	logger   *zap.Logger
}

func NewAuthHandlers(accounts AccountService, logger *zap.Logger) *AuthHandlers {
	return &AuthHandlers{accounts: accounts, logger: logger}
}

// Register handles POST /user
// @Summary Register a user
// @Tags user
// @Accept json
// @Produce json
// @Param request body entities.RegisterRequest true "Registration"
// @Success 201 {object} entities.AuthResponse
// @Failure 400 {object} entities.ErrorResponse
// @Failure 409 {object} entities.ErrorResponse
// @Router /user [post]
func (h *AuthHandlers) Register(c *gin.Context) {
	var req entities.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.accounts.Register(c.Request.Context(), &req)
	if err != nil {
		h.logger.Warn("Registration failed", zap.Error(err), zap.String("request_id", getRequestID(c)))
		SendDomainError(c, err)
		return
	}
	SendCreated(c, resp)
}

// Login handles POST /user/login
// @Summary Log in
// @Tags user
// @Accept json
// @Produce json
// @Param request body entities.LoginRequest true "Credentials"
// @Success 200 {object} entities.AuthResponse
// @Failure 401 {object} entities.ErrorResponse
// @Failure 429 {object} entities.ErrorResponse
// @Router /user/login [post]
func (h *AuthHandlers) Login(c *gin.Context) {
	var req entities.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.accounts.Login(c.Request.Context(), &req)
	if err != nil {
		h.logger.Info("Login rejected", zap.Error(err), zap.String("request_id", getRequestID(c)))
		SendDomainError(c, err)
		return
	}
	SendSuccess(c, resp)
}

// Refresh handles POST /user/refresh
func (h *AuthHandlers) Refresh(c *gin.Context) {
	var req entities.RefreshTokenRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.accounts.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		SendDomainError(c, err)
		return
	}
	SendSuccess(c, resp)
}

// Logout handles POST /user/logout
func (h *AuthHandlers) Logout(c *gin.Context) {
	token := c.GetString("token")
	expiresAt := c.GetTime("token_expires_at")
	if token == "" {
		SendUnauthorized(c, MsgUnauthorized)
		return
	}

	if err := h.accounts.Logout(c.Request.Context(), token, expiresAt); err != nil {
		h.logger.Error("Logout failed", zap.Error(err))
		SendDomainError(c, err)
		return
	}
	SendNoContent(c)
}

// Overview handles GET /user
// @Summary Current user with budget, transactions and wallet
// @Tags user
// @Produce json
// @Security BearerAuth
// @Success 200 {object} entities.UserOverview
// @Failure 404 {object} entities.ErrorResponse
// @Router /user [get]
func (h *AuthHandlers) Overview(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	overview, err := h.accounts.Overview(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to load overview", zap.Error(err), zap.String("user_id", userID.String()))
		SendDomainError(c, err)
		return
	}
	SendSuccess(c, overview)
}
