package user

import (
	"context"
	"testing"

	"tradedesk/internal/models"
	"tradedesk/internal/repositories"
	"tradedesk/internal/services/wallet"
	"tradedesk/internal/testutil"
	"tradedesk/internal/utils/pagination"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*gorm.DB, repositories.UserRepository, Service) {
	t.Helper()
	db := testutil.NewDB(t)
	users := repositories.NewUserRepository(db, nil, nil)
	wallets := wallet.NewService(wallet.Deps{DB: db, Users: users}, wallet.Config{Currency: "NGN"})
	return db, users, NewService(db, users, wallets, nil)
}

func TestProfile(t *testing.T) {
	db, _, svc := setup(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "p@example.com", "08070000001")
	testutil.SetBalance(t, db, u.ID, "2500")
	require.NoError(t, db.Create(&models.KYCVerification{UserID: u.ID, DocumentType: "nin", DocumentNumber: "123456", Status: models.KYCPending}).Error)

	profile, err := svc.Profile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, profile.User.Email)
	require.NotNil(t, profile.Wallet)
	assert.Equal(t, "2500.00", profile.Wallet.Balance.StringFixed(2))
	require.NotNil(t, profile.LatestKYC)
	assert.Equal(t, "nin", profile.LatestKYC.DocumentType)

	updated, err := svc.UpdateProfile(ctx, u.ID, UpdateProfileRequest{Name: "  New Name "})
	require.NoError(t, err)
	assert.Equal(t, "New Name", updated.Name)

	_, err = svc.Profile(ctx, 999)
	assert.ErrorIs(t, err, repositories.ErrUserNotFound)
}

func TestBlockBumpsTokenVersion(t *testing.T) {
	db, users, svc := setup(t)
	ctx := context.Background()
	u := testutil.CreateUser(t, db, "b@example.com", "08070000002")

	before, err := users.GetAuthState(ctx, u.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Block(ctx, u.ID, u.ID), ErrSelfAction)
	require.NoError(t, svc.Block(ctx, 1000, u.ID))
	assert.ErrorIs(t, svc.Block(ctx, 1000, u.ID), ErrAlreadyBlocked)

	after, err := users.GetAuthState(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UserStatusBlocked, after.Status)
	assert.Greater(t, after.TokenVersion, before.TokenVersion)

	require.NoError(t, svc.Unblock(ctx, 1000, u.ID))
	assert.ErrorIs(t, svc.Unblock(ctx, 1000, u.ID), ErrNotBlocked)

	blocked, total, err := svc.List(ctx, pagination.NewQuery(map[string]string{"status": models.UserStatusBlocked}))
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, blocked)
}

func TestAdmins(t *testing.T) {
	db, _, svc := setup(t)
	ctx := context.Background()

	admin, err := svc.CreateAdmin(ctx, CreateAdminRequest{
		Name: "Ops", Email: "Ops@Example.com", Phone: "08070000003", Password: "Adm1n!pass", Roles: []string{models.RoleAdmin},
	})
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)
	assert.Equal(t, "ops@example.com", admin.Email)
	assert.Contains(t, admin.Permissions(), models.PermissionGiftcardTradeReview)

	_, err = svc.CreateAdmin(ctx, CreateAdminRequest{
		Name: "X", Email: "x@example.com", Phone: "08070000004", Password: "Adm1n!pass", Roles: []string{"ghost"},
	})
	assert.ErrorIs(t, err, repositories.ErrRoleNotFound)

	customer := testutil.CreateUser(t, db, "c@example.com", "08070000005")
	promoted, err := svc.AssignRoles(ctx, admin.ID, customer.ID, []string{models.RoleSupport})
	require.NoError(t, err)
	assert.True(t, promoted.IsAdmin)
	assert.Equal(t, []string{models.RoleSupport}, promoted.RoleNames())

	demoted, err := svc.AssignRoles(ctx, admin.ID, customer.ID, []string{models.RoleUser})
	require.NoError(t, err)
	assert.False(t, demoted.IsAdmin)

	_, err = svc.AssignRoles(ctx, admin.ID, admin.ID, []string{models.RoleSuperAdmin})
	assert.ErrorIs(t, err, ErrSelfAction)
	_, err = svc.AssignRoles(ctx, admin.ID, customer.ID, nil)
	assert.ErrorIs(t, err, ErrRolesRequired)
}
