// internal/service/auth/auth_service.go
package auth

import (
	"context"
	"errors"
	"fmt"

	"cobramax-service/internal/domain/user"
	xerrors "cobramax-service/internal/pkg/errors"
	"cobramax-service/internal/pkg/jwt"
	"cobramax-service/internal/pkg/ratelimit"
	"cobramax-service/internal/repository/postgres"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	userRepo    *postgres.UserRepository
	jwtManager  *jwt.Manager
	rateLimiter *ratelimit.Limiter
	logger      *zap.Logger
}

func NewAuthService(
	userRepo *postgres.UserRepository,
	jwtManager *jwt.Manager,
	rateLimiter *ratelimit.Limiter,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		jwtManager:  jwtManager,
		rateLimiter: rateLimiter,
		logger:      logger,
	}
}

// Login authenticates a user with email/password.
func (s *AuthService) Login(ctx context.Context, req *user.LoginRequest, ipAddress string) (*user.LoginResponse, error) {
	allowed, err := s.rateLimiter.AllowLoginAttempt(ctx, ipAddress, req.Email)
	if err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}
	if !allowed {
		return nil, xerrors.ErrRateLimited
	}

	u, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, xerrors.ErrNotFound) {
			return nil, xerrors.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !u.IsActive {
		return nil, xerrors.ErrForbidden
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, xerrors.ErrUnauthorized
	}

	if err := s.rateLimiter.ResetLoginAttempts(ctx, ipAddress, req.Email); err != nil {
		s.logger.Error("failed to reset login attempts", zap.Error(err))
	}

	token, _, err := s.jwtManager.Generate(u.ID, u.Role, u.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &user.LoginResponse{
		Token: token,
		User:  u,
	}, nil
}

// GetUser fetches a user by id, for the authenticated profile endpoint.
func (s *AuthService) GetUser(ctx context.Context, id int64) (*user.User, error) {
	u, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return u, nil
}
