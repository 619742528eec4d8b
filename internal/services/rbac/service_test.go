package rbac

import (
	"context"
	"testing"

	"tradedesk/internal/models"
	"tradedesk/internal/repositories"
	"tradedesk/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoles(t *testing.T) {
	db := testutil.NewDB(t)
	roles := repositories.NewRoleRepository(db)
	svc := NewService(roles, nil)
	ctx := context.Background()

	all, err := svc.ListRoles(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(models.DefaultRoles))

	perms, err := svc.ListPermissions(ctx)
	require.NoError(t, err)
	assert.Len(t, perms, len(models.AllPermissions()))

	role, err := svc.CreateRole(ctx, CreateRoleRequest{
		Name:        " Reviewer ",
		Permissions: []string{models.PermissionGiftcardTradeRead, models.PermissionGiftcardTradeReview},
	})
	require.NoError(t, err)
	assert.Equal(t, "reviewer", role.Name)
	assert.Len(t, role.Permissions, 2)

	_, err = svc.CreateRole(ctx, CreateRoleRequest{Name: "reviewer"})
	assert.ErrorIs(t, err, repositories.ErrRoleExists)
	_, err = svc.CreateRole(ctx, CreateRoleRequest{Name: "other", Permissions: []string{"launch:missiles"}})
	assert.ErrorIs(t, err, repositories.ErrPermissionUnknown)

	synced, err := svc.SyncPermissions(ctx, role.ID, SyncPermissionsRequest{Permissions: []string{models.PermissionKYCReview}})
	require.NoError(t, err)
	require.Len(t, synced.Permissions, 1)
	assert.Equal(t, models.PermissionKYCReview, synced.Permissions[0].Name)

	super, err := roles.GetByName(ctx, models.RoleSuperAdmin)
	require.NoError(t, err)
	_, err = svc.SyncPermissions(ctx, super.ID, SyncPermissionsRequest{})
	assert.ErrorIs(t, err, ErrProtectedRole)
	_, err = svc.SyncPermissions(ctx, 999, SyncPermissionsRequest{})
	assert.ErrorIs(t, err, repositories.ErrRoleNotFound)
}
