package handler

import (
	"errors"
	"net/http"

	"github.com/dropship/backend/internal/infrastructure/auth"
	"github.com/dropship/backend/internal/infrastructure/logger"
	"github.com/dropship/backend/internal/interfaces/http/dto"
	"github.com/dropship/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LoginRequest carries the administrator credentials
type LoginRequest struct {
	Username string `json:"username" binding:"required,max=100"`
	Password string `json:"password" binding:"required,max=200"`
}

// AuthHandler issues and revokes administrator tokens
type AuthHandler struct {
	BaseHandler
	credentials *auth.Credentials
	jwt         *auth.JWTService
	revoker     auth.TokenRevoker
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(credentials *auth.Credentials, jwt *auth.JWTService, revoker auth.TokenRevoker) *AuthHandler {
	return &AuthHandler{credentials: credentials, jwt: jwt, revoker: revoker}
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	log := logger.GetGinLogger(c)
	if err := h.credentials.Verify(req.Username, req.Password); err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			log.Warn("Admin login rejected", zap.String("username", req.Username))
			h.Error(c, http.StatusUnauthorized, dto.ErrCodeInvalidCredentials, "Invalid username or password")
			return
		}
		h.HandleError(c, err)
		return
	}

	token, err := h.jwt.Issue(req.Username, auth.RoleAdmin)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	log.Info("Admin logged in", zap.String("username", req.Username))
	h.Success(c, token)
}

// Logout handles POST /auth/logout. The token stays revoked until it would
// have expired anyway.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
		return
	}

	if ttl := claims.RemainingTTL(); ttl > 0 {
		if err := h.revoker.Revoke(c.Request.Context(), claims.ID, ttl); err != nil {
			h.HandleError(c, err)
			return
		}
	}
	logger.GetGinLogger(c).Info("Admin logged out", zap.String("username", claims.Subject))
	h.NoContent(c)
}
