package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"workshop-funnel/internal/dto"
	"workshop-funnel/internal/service"
	"workshop-funnel/pkg/response"
)

// AuthHandler admin authentication endpoints
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler creates an AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Login admin login
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, result)
}

// Refresh exchanges a refresh token for a new pair
// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	result, err := h.authSvc.Refresh(c.Request.Context(), &req)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, result)
}

// Logout revokes the current access token
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	jti, expiresAt, ok := MustGetToken(c)
	if !ok {
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), jti, expiresAt); err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, nil)
}

// Me current admin profile
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	adminID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	admin, err := h.authSvc.Me(c.Request.Context(), adminID)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, admin)
}

func (h *AuthHandler) handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(c, 11001, "invalid email or password")
	case errors.Is(err, service.ErrInvalidToken):
		response.Unauthorized(c, 11002, "invalid or expired token")
	case errors.Is(err, service.ErrAdminInactive):
		response.Error(c, http.StatusForbidden, 11003, "admin account is disabled")
	case errors.Is(err, service.ErrAdminNotFound):
		response.NotFound(c, 11004, "admin not found")
	default:
		response.InternalError(c)
	}
}
