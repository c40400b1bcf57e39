package service

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"workshop-funnel/internal/dto"
	"workshop-funnel/internal/model"
	"workshop-funnel/internal/repository"
)

var (
	ErrAdminEmailExists = errors.New("an admin with this email already exists")
	ErrWeakPassword     = errors.New("password must contain both letters and digits")
)

// AdminService back-office account provisioning
type AdminService interface {
	Create(ctx context.Context, req *dto.CreateAdminRequest) (*dto.AdminResponse, error)
	ResetPassword(ctx context.Context, email, password string) error
}

type adminService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAdminService creates an AdminService
func NewAdminService(repo *repository.Repository, logger *zap.Logger) AdminService {
	return &adminService{repo: repo, logger: logger}
}

func (s *adminService) Create(ctx context.Context, req *dto.CreateAdminRequest) (*dto.AdminResponse, error) {
	if err := validatePasswordStrength(req.Password); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.repo.Admin.GetByEmail(ctx, email); err == nil {
		return nil, ErrAdminEmailExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("check admin email failed", zap.Error(err))
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	role := req.AdminRole
	if role == "" {
		role = model.AdminRoleAdmin
	}
	admin := &model.Admin{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
		AdminRole:    role,
		IsActive:     true,
	}
	if err := s.repo.Admin.Create(ctx, admin); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAdminEmailExists
		}
		s.logger.Error("create admin failed", zap.Error(err))
		return nil, err
	}

	resp := toAdminResponse(admin)
	return &resp, nil
}

func (s *adminService) ResetPassword(ctx context.Context, email, password string) error {
	if err := validatePasswordStrength(password); err != nil {
		return err
	}
	admin, err := s.repo.Admin.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAdminNotFound
		}
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.Admin.UpdatePassword(ctx, admin.AdminID, string(hash))
}

// validatePasswordStrength requires at least one letter and one digit
func validatePasswordStrength(password string) error {
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit || len(password) < 8 {
		return ErrWeakPassword
	}
	return nil
}
