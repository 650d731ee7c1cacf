// internal/handlers/auth/auth_handler.go
package auth

import (
	"errors"
	"net/http"

	"cobramax-service/internal/domain/user"
	"cobramax-service/internal/middleware"
	xerrors "cobramax-service/internal/pkg/errors"
	"cobramax-service/internal/pkg/response"
	authService "cobramax-service/internal/service/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *authService.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(svc *authService.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: svc,
		logger:      logger,
	}
}

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var req user.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	loginResp, err := h.authService.Login(c.Request.Context(), &req, c.ClientIP())
	if err != nil {
		switch {
		case errors.Is(err, xerrors.ErrRateLimited):
			response.Error(c, http.StatusTooManyRequests, "too many login attempts, please try again in 15 minutes", nil)
		case errors.Is(err, xerrors.ErrForbidden):
			response.Error(c, http.StatusForbidden, "account is inactive", nil)
		case errors.Is(err, xerrors.ErrUnauthorized):
			response.Error(c, http.StatusUnauthorized, "invalid credentials", nil)
		default:
			h.logger.Error("login failed",
				zap.String("email", req.Email),
				zap.Error(err),
			)
			response.Error(c, http.StatusInternalServerError, "login failed", nil)
		}
		return
	}

	h.logger.Info("user logged in",
		zap.Int64("user_id", loginResp.User.ID),
		zap.String("email", loginResp.User.Email),
	)

	response.Success(c, http.StatusOK, "login successful", loginResp)
}

// Me returns the authenticated user's profile
func (h *AuthHandler) Me(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	u, err := h.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to load profile", err)
		return
	}

	response.Success(c, http.StatusOK, "", u)
}
