// Package rbac manages roles and the permissions granted through them.
package rbac

import (
	"context"
	"errors"
	"strings"

	"tradedesk/internal/models"
	"tradedesk/internal/repositories"

	"go.uber.org/zap"
)

var ErrProtectedRole = errors.New("the super admin role always holds every permission")

type CreateRoleRequest struct {
	Name        string   `json:"name" validate:"required,max=50"`
	Description string   `json:"description" validate:"max=255"`
	Permissions []string `json:"permissions" validate:"dive,required"`
}

type SyncPermissionsRequest struct {
	Permissions []string `json:"permissions" validate:"dive,required"`
}

// Service edits roles. Permission changes reach a user's token on the next
// refresh or login.
type Service interface {
	ListRoles(ctx context.Context) ([]models.Role, error)
	ListPermissions(ctx context.Context) ([]models.Permission, error)
	CreateRole(ctx context.Context, req CreateRoleRequest) (*models.Role, error)
	SyncPermissions(ctx context.Context, roleID uint, req SyncPermissionsRequest) (*models.Role, error)
}

type service struct {
	roles  repositories.RoleRepository
	logger *zap.Logger
}

func NewService(roles repositories.RoleRepository, logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{roles: roles, logger: logger}
}

func (s *service) ListRoles(ctx context.Context) ([]models.Role, error) {
	return s.roles.List(ctx)
}

func (s *service) ListPermissions(ctx context.Context) ([]models.Permission, error) {
	return s.roles.ListPermissions(ctx)
}

func (s *service) CreateRole(ctx context.Context, req CreateRoleRequest) (*models.Role, error) {
	role := &models.Role{
		Name:        strings.ToLower(strings.TrimSpace(req.Name)),
		Description: strings.TrimSpace(req.Description),
	}
	if err := s.roles.Create(ctx, role, req.Permissions); err != nil {
		return nil, err
	}
	s.logger.Info("role created", zap.String("role", role.Name), zap.Strings("permissions", req.Permissions))
	return role, nil
}

func (s *service) SyncPermissions(ctx context.Context, roleID uint, req SyncPermissionsRequest) (*models.Role, error) {
	superAdmin, err := s.roles.GetByName(ctx, models.RoleSuperAdmin)
	if err != nil && !errors.Is(err, repositories.ErrRoleNotFound) {
		return nil, err
	}
	if superAdmin != nil && superAdmin.ID == roleID {
		return nil, ErrProtectedRole
	}

	role, err := s.roles.SyncPermissions(ctx, roleID, req.Permissions)
	if err != nil {
		return nil, err
	}
	s.logger.Info("role permissions synced", zap.String("role", role.Name), zap.Strings("permissions", req.Permissions))
	return role, nil
}
