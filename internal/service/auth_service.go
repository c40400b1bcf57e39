package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"workshop-funnel/internal/dto"
	"workshop-funnel/internal/model"
	"workshop-funnel/internal/repository"
	"workshop-funnel/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAdminNotFound      = errors.New("admin not found")
	ErrAdminInactive      = errors.New("admin account is disabled")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// TokenBlacklist revoked-token store
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// AuthService admin authentication
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Refresh(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	// Logout revokes the access token identified by jti until it expires.
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
	Me(ctx context.Context, adminID string) (*dto.AdminResponse, error)
}

type authService struct {
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist
	activity  ActivityService
	now       func() time.Time
	logger    *zap.Logger
}

// NewAuthService creates an AuthService. blacklist may be nil, which disables revocation.
func NewAuthService(
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	activity ActivityService,
	logger *zap.Logger,
) AuthService {
	return &authService{
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		activity:  activity,
		now:       time.Now,
		logger:    logger,
	}
}

// ────────────────────── Login ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	admin, err := s.repo.Admin.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("load admin failed", zap.Error(err))
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)); err != nil {
		s.activity.Record(ctx, ActivityEntry{
			AdminID:      admin.AdminID,
			Action:       ActionAdminLogin,
			ResourceType: ResourceAdmin,
			ResourceID:   admin.AdminID,
			Err:          ErrInvalidCredentials,
		})
		return nil, ErrInvalidCredentials
	}
	if !admin.IsActive {
		return nil, ErrAdminInactive
	}

	resp, err := s.issueTokens(admin)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if err := s.repo.Admin.UpdateLastLogin(ctx, admin.AdminID, now); err != nil {
		s.logger.Warn("update last login failed", zap.String("admin_id", admin.AdminID), zap.Error(err))
	} else {
		admin.LastLoginAt = &now
		resp.Admin = toAdminResponse(admin)
	}

	s.activity.Record(ctx, ActivityEntry{
		AdminID:      admin.AdminID,
		Action:       ActionAdminLogin,
		ResourceType: ResourceAdmin,
		ResourceID:   admin.AdminID,
	})
	return resp, nil
}

// ────────────────────── Refresh ──────────────────────

func (s *authService) Refresh(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	claims, err := s.jwtMgr.ParseToken(req.RefreshToken)
	if err != nil || claims.TokenType != jwt.TokenTypeRefresh {
		return nil, ErrInvalidToken
	}

	if s.blacklist != nil {
		revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
		if err != nil {
			s.logger.Error("check token blacklist failed", zap.Error(err))
			return nil, err
		}
		if revoked {
			return nil, ErrInvalidToken
		}
	}

	admin, err := s.repo.Admin.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		s.logger.Error("load admin failed", zap.Error(err))
		return nil, err
	}
	if !admin.IsActive {
		return nil, ErrAdminInactive
	}

	// refresh tokens are single use
	if s.blacklist != nil && claims.ExpiresAt != nil {
		if err := s.blacklist.BlacklistToken(ctx, claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
			s.logger.Warn("revoke used refresh token failed", zap.Error(err))
		}
	}

	return s.issueTokens(admin)
}

// ────────────────────── Logout ──────────────────────

func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.blacklist == nil || jti == "" {
		return nil
	}
	if err := s.blacklist.BlacklistToken(ctx, jti, expiresAt.Sub(s.now())); err != nil {
		s.logger.Error("blacklist token failed", zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── Me ──────────────────────

func (s *authService) Me(ctx context.Context, adminID string) (*dto.AdminResponse, error) {
	admin, err := s.repo.Admin.GetByID(ctx, adminID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdminNotFound
		}
		s.logger.Error("load admin failed", zap.Error(err))
		return nil, err
	}
	resp := toAdminResponse(admin)
	return &resp, nil
}

func (s *authService) issueTokens(admin *model.Admin) (*dto.TokenResponse, error) {
	accessToken, err := s.jwtMgr.GenerateAccessToken(admin.AdminID, admin.Role, admin.AdminRole)
	if err != nil {
		s.logger.Error("generate access token failed", zap.Error(err))
		return nil, err
	}
	refreshToken, err := s.jwtMgr.GenerateRefreshToken(admin.AdminID, admin.Role, admin.AdminRole)
	if err != nil {
		s.logger.Error("generate refresh token failed", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.jwtMgr.AccessTokenTTL().Seconds()),
		Admin:        toAdminResponse(admin),
	}, nil
}

func toAdminResponse(a *model.Admin) dto.AdminResponse {
	return dto.AdminResponse{
		ID:          a.AdminID,
		Name:        a.Name,
		Email:       a.Email,
		Role:        a.Role,
		AdminRole:   a.AdminRole,
		LastLoginAt: formatTimePtr(a.LastLoginAt),
	}
}
