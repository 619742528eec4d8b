package repositories

import (
	"context"
	"errors"
	"fmt"

	"tradedesk/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrRoleExists        = errors.New("role already exists")
	ErrPermissionUnknown = errors.New("unknown permission")
)

// RoleRepository manages roles and their permission sets.
type RoleRepository interface {
	List(ctx context.Context) ([]models.Role, error)
	GetByName(ctx context.Context, name string) (*models.Role, error)
	Create(ctx context.Context, role *models.Role, permissions []string) error
	SyncPermissions(ctx context.Context, roleID uint, permissions []string) (*models.Role, error)
	ListPermissions(ctx context.Context) ([]models.Permission, error)
	// EnsureDefaults upserts every known permission and the built-in roles
	EnsureDefaults(ctx context.Context) error
}

type roleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) List(ctx context.Context) ([]models.Role, error) {
	var roles []models.Role
	if err := r.db.WithContext(ctx).Preload("Permissions").Order("id").Find(&roles).Error; err != nil {
		return nil, dbError(err)
	}
	return roles, nil
}

func (r *roleRepository) GetByName(ctx context.Context, name string) (*models.Role, error) {
	var role models.Role
	if err := r.db.WithContext(ctx).Preload("Permissions").Where("name = ?", name).First(&role).Error; err != nil {
		return nil, notFound(err, ErrRoleNotFound)
	}
	return &role, nil
}

func (r *roleRepository) Create(ctx context.Context, role *models.Role, permissions []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Role{}).Where("name = ?", role.Name).Count(&count).Error; err != nil {
			return dbError(err)
		}
		if count > 0 {
			return ErrRoleExists
		}
		perms, err := findPermissions(tx, permissions)
		if err != nil {
			return err
		}
		role.Permissions = perms
		if err := tx.Create(role).Error; err != nil {
			return dbError(err)
		}
		return nil
	})
}

func (r *roleRepository) SyncPermissions(ctx context.Context, roleID uint, permissions []string) (*models.Role, error) {
	var role models.Role
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&role, roleID).Error; err != nil {
			return notFound(err, ErrRoleNotFound)
		}
		perms, err := findPermissions(tx, permissions)
		if err != nil {
			return err
		}
		if err := tx.Model(&role).Association("Permissions").Replace(perms); err != nil {
			return dbError(err)
		}
		role.Permissions = perms
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *roleRepository) ListPermissions(ctx context.Context) ([]models.Permission, error) {
	var perms []models.Permission
	if err := r.db.WithContext(ctx).Order("name").Find(&perms).Error; err != nil {
		return nil, dbError(err)
	}
	return perms, nil
}

func (r *roleRepository) EnsureDefaults(ctx context.Context) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, name := range models.AllPermissions() {
			p := models.Permission{Name: name}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&p).Error; err != nil {
				return fmt.Errorf("seed permission %s: %w", name, err)
			}
		}

		for name, description := range models.DefaultRoles {
			role := models.Role{Name: name}
			if err := tx.Where(models.Role{Name: name}).
				Attrs(models.Role{Description: description}).
				FirstOrCreate(&role).Error; err != nil {
				return fmt.Errorf("seed role %s: %w", name, err)
			}
			perms, err := findPermissions(tx, models.GetDefaultPermissions(name))
			if err != nil {
				return err
			}
			if err := tx.Model(&role).Association("Permissions").Replace(perms); err != nil {
				return fmt.Errorf("seed role %s permissions: %w", name, err)
			}
		}
		return nil
	})
}

func findPermissions(db *gorm.DB, names []string) ([]models.Permission, error) {
	if len(names) == 0 {
		return []models.Permission{}, nil
	}
	var perms []models.Permission
	if err := db.Where("name IN ?", names).Find(&perms).Error; err != nil {
		return nil, dbError(err)
	}
	if len(perms) != len(uniqueCount(names)) {
		return nil, ErrPermissionUnknown
	}
	return perms, nil
}

func uniqueCount(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}
