package repositories

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"tradedesk/internal/models"
	"tradedesk/internal/repositories/cache"
	"tradedesk/internal/utils/pagination"
	cachekeys "tradedesk/internal/utils/cache"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type userRepository struct {
	db     *gorm.DB
	cache  cache.Store
	logger *zap.Logger
}

// NewUserRepository creates a new instance of UserRepository
func NewUserRepository(db *gorm.DB, store cache.Store, logger *zap.Logger) UserRepository {
	if store == nil {
		store = cache.Noop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &userRepository{
		db:     db,
		cache:  store,
		logger: logger,
	}
}

func (r *userRepository) WithTx(tx *gorm.DB) UserRepository {
	return &userRepository{db: tx, cache: r.cache, logger: r.logger}
}

func (r *userRepository) Create(ctx context.Context, user *models.User, roleNames ...string) error {
	db := r.db.WithContext(ctx)

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return dbError(err)
	}
	if count > 0 {
		return ErrEmailTaken
	}
	if err := db.Model(&models.User{}).Where("phone = ?", user.Phone).Count(&count).Error; err != nil {
		return dbError(err)
	}
	if count > 0 {
		return ErrPhoneTaken
	}

	if len(roleNames) > 0 {
		roles, err := r.findRoles(db, roleNames)
		if err != nil {
			return err
		}
		user.Roles = roles
	}

	if err := db.Create(user).Error; err != nil {
		return dbError(err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Preload("Roles.Permissions").First(&user, id).Error
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &user, nil
}

func (r *userRepository) GetByLogin(ctx context.Context, identifier string) (*models.User, error) {
	identifier = strings.TrimSpace(identifier)
	column := "phone"
	if strings.Contains(identifier, "@") {
		column = "email"
		identifier = strings.ToLower(identifier)
	}

	var user models.User
	err := r.db.WithContext(ctx).Preload("Roles.Permissions").
		Where(column+" = ?", identifier).First(&user).Error
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &user, nil
}

func (r *userRepository) GetByReferralCode(ctx context.Context, code string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("referral_code = ?", strings.ToUpper(strings.TrimSpace(code))).First(&user).Error
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	return &user, nil
}

func (r *userRepository) GetAuthState(ctx context.Context, id uint) (*AuthState, error) {
	key := cachekeys.GenerateKey(cachekeys.EntityUser, cachekeys.KeyID, id)

	var state AuthState
	if found, err := r.cache.Get(ctx, key, &state); err == nil && found {
		return &state, nil
	} else if err != nil {
		r.logger.Warn("user cache read failed", zap.Uint("user_id", id), zap.Error(err))
	}

	var user models.User
	err := r.db.WithContext(ctx).Select("id", "status", "token_version").First(&user, id).Error
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	state = AuthState{UserID: user.ID, Status: user.Status, TokenVersion: user.TokenVersion}
	if err := r.cache.Set(ctx, key, state); err != nil {
		r.logger.Warn("user cache write failed", zap.Uint("user_id", id), zap.Error(err))
	}
	return &state, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Omit("Roles").Save(user).Error; err != nil {
		return dbError(err)
	}
	r.invalidate(ctx, user.ID)
	return nil
}

func (r *userRepository) UpdateStatus(ctx context.Context, userID uint, status string) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"status":        status,
			"token_version": gorm.Expr("token_version + 1"),
		})
	if result.Error != nil {
		return dbError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	r.invalidate(ctx, userID)
	return nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, userID uint, hashedPassword string) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"password":      hashedPassword,
			"token_version": gorm.Expr("token_version + 1"),
		})
	if result.Error != nil {
		return dbError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	r.invalidate(ctx, userID)
	return nil
}

func (r *userRepository) IncrementTokenVersion(ctx context.Context, userID uint) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).
		UpdateColumn("token_version", gorm.Expr("token_version + 1"))
	if result.Error != nil {
		return dbError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	r.invalidate(ctx, userID)
	return nil
}

func (r *userRepository) List(ctx context.Context, q pagination.Query) ([]models.User, int64, error) {
	db := r.db.WithContext(ctx).Model(&models.User{})
	db = q.Filter(db)
	if q.Search != "" {
		like := "%" + strings.ToLower(q.Search) + "%"
		db = db.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR phone LIKE ?", like, like, like)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, dbError(err)
	}

	var users []models.User
	if err := q.Page(db).Preload("Roles").Find(&users).Error; err != nil {
		return nil, 0, dbError(err)
	}
	return users, total, nil
}

func (r *userRepository) SetRoles(ctx context.Context, userID uint, roleNames []string) error {
	db := r.db.WithContext(ctx)
	roles, err := r.findRoles(db, roleNames)
	if err != nil {
		return err
	}
	user := models.User{}
	user.ID = userID
	if err := db.Model(&user).Association("Roles").Replace(roles); err != nil {
		return dbError(err)
	}
	if err := db.Model(&models.User{}).Where("id = ?", userID).
		UpdateColumn("token_version", gorm.Expr("token_version + 1")).Error; err != nil {
		return dbError(err)
	}
	r.invalidate(ctx, userID)
	return nil
}

func (r *userRepository) findRoles(db *gorm.DB, names []string) ([]models.Role, error) {
	names = slices.Compact(slices.Sorted(slices.Values(names)))
	var roles []models.Role
	if err := db.Where("name IN ?", names).Find(&roles).Error; err != nil {
		return nil, dbError(err)
	}
	if len(roles) != len(names) {
		return nil, ErrRoleNotFound
	}
	return roles, nil
}

func (r *userRepository) invalidate(ctx context.Context, userID uint) {
	key := cachekeys.GenerateKey(cachekeys.EntityUser, cachekeys.KeyID, userID)
	if err := r.cache.Delete(ctx, key); err != nil {
		r.logger.Warn("user cache invalidation failed", zap.Uint("user_id", userID), zap.Error(err))
	}
}

func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return dbError(err)
}

func dbError(err error) error {
	return fmt.Errorf("%w: %v", ErrDatabaseOperation, err)
}
