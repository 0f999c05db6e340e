package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/SaluSL/planimbly/internal/dto"
	"github.com/SaluSL/planimbly/internal/repository"
	"github.com/SaluSL/planimbly/pkg/jwt"
)

var (
	ErrSessionStoreUnavailable = errors.New("会话存储不可用，无法注销")
)

// TokenBlacklist 已注销 Token 的存储
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// AuthService 会话业务接口
type AuthService interface {
	Me(ctx context.Context, caller Caller, claims *jwt.Claims) (*dto.SessionResponse, error)
	Logout(ctx context.Context, claims *jwt.Claims) error
}

type authService struct {
	repo      *repository.Repository
	blacklist TokenBlacklist
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例；blacklist 为 nil 时注销不可用
func NewAuthService(repo *repository.Repository, blacklist TokenBlacklist, logger *zap.Logger) AuthService {
	return &authService{
		repo:      repo,
		blacklist: blacklist,
		logger:    logger,
	}
}

func (s *authService) Me(ctx context.Context, caller Caller, claims *jwt.Claims) (*dto.SessionResponse, error) {
	emp, err := loadEmployee(ctx, s.repo, s.logger, caller.OrganizationID, caller.EmployeeID)
	if err != nil {
		return nil, err
	}

	resp := &dto.SessionResponse{
		Employee:       *toEmployeeResponse(emp),
		Role:           caller.Role,
		OrganizationID: caller.OrganizationID,
	}
	if claims != nil && claims.ExpiresAt != nil {
		resp.ExpiresAt = dto.FormatTime(claims.ExpiresAt.Time)
	}
	return resp, nil
}

// Logout 将 Token 的 jti 加入黑名单，保留到 Token 过期为止
func (s *authService) Logout(ctx context.Context, claims *jwt.Claims) error {
	if s.blacklist == nil {
		return ErrSessionStoreUnavailable
	}
	if claims == nil || claims.ID == "" {
		return jwt.ErrTokenInvalid
	}

	ttl := time.Minute
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl <= 0 {
		return nil
	}

	if err := s.blacklist.BlacklistToken(ctx, claims.ID, ttl); err != nil {
		s.logger.Error("注销 Token 失败", zap.String("user_id", claims.UserID), zap.Error(err))
		return err
	}
	s.logger.Info("用户已注销", zap.String("user_id", claims.UserID))
	return nil
}
