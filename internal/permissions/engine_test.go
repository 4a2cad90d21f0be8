package permissions

import (
	"context"
	"testing"

	"brandops/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestCanAccessDashboardNoRecordFailsClosed(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()

	allowed, err := svc.Engine.CanAccessDashboard(ctx, uuid.New().String(), models.DashboardTypeCompany, "")
	require.NoError(t, err)
	assert.False(t, allowed, "a user with no permission record must be denied")
}

func TestCanAccessDashboardCoarseGates(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()

	userID := seedPermission(t, svc, func(r *models.UserPermission) {
		r.CanAccessCompanyDashboard = true
		r.CanAccessBrandDashboard = false
	})

	allowed, err := svc.Engine.CanAccessDashboard(ctx, userID, models.DashboardTypeCompany, "")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = svc.Engine.CanAccessDashboard(ctx, userID, models.DashboardTypeBrand, "")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestCanAccessDashboardBrandAllowList(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()

	userID := seedPermission(t, svc, func(r *models.UserPermission) {
		r.CrossPlatform = datatypes.NewJSONType(models.CrossPlatformAccess{
			AllowedBrands: []string{"pizza-palace"},
		})
	})

	allowed, err := svc.Engine.CanAccessDashboard(ctx, userID, models.DashboardTypeBrand, "pizza-palace")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = svc.Engine.CanAccessDashboard(ctx, userID, models.DashboardTypeBrand, "burger-barn")
	require.NoError(t, err)
	assert.False(t, allowed, "brands outside the allow-list are denied")

	// No brand scope given: coarse access decides.
	allowed, err = svc.Engine.CanAccessDashboard(ctx, userID, models.DashboardTypeBrand, "")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestCanAccessDashboardEmptyAllowListIsUnrestricted(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()

	userID := seedPermission(t, svc, nil)

	allowed, err := svc.Engine.CanAccessDashboard(ctx, userID, models.DashboardTypeBrand, "any-brand")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestGlobalAdminBypassesAllowListOnly(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()

	userID := seedPermission(t, svc, func(r *models.UserPermission) {
		r.CrossPlatform = datatypes.NewJSONType(models.CrossPlatformAccess{
			AllowedBrands: []string{"pizza-palace"},
		})
		r.Hybrid = datatypes.NewJSONType(models.HybridPermissions{GlobalAdminAccess: true})
	})

	// Allow-list is bypassed.
	allowed, err := svc.Engine.CanAccessDashboard(ctx, userID, models.DashboardTypeBrand, "burger-barn")
	require.NoError(t, err)
	assert.True(t, allowed)

	// Coarse gates are not.
	gated := seedPermission(t, svc, func(r *models.UserPermission) {
		r.CanAccessCompanyDashboard = false
		r.CanAccessBrandDashboard = false
		r.Hybrid = datatypes.NewJSONType(models.HybridPermissions{GlobalAdminAccess: true})
	})

	allowed, err = svc.Engine.CanAccessDashboard(ctx, gated, models.DashboardTypeCompany, "")
	require.NoError(t, err)
	assert.False(t, allowed, "global admin must not restore a plane the coarse gate excludes")

	allowed, err = svc.Engine.CanAccessDashboard(ctx, gated, models.DashboardTypeBrand, "pizza-palace")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestCanAccessStore(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()

	userID := seedPermission(t, svc, func(r *models.UserPermission) {
		r.CrossPlatform = datatypes.NewJSONType(models.CrossPlatformAccess{
			AllowedStores: []string{"downtown-01"},
		})
	})

	allowed, err := svc.Engine.CanAccessStore(ctx, userID, "downtown-01")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = svc.Engine.CanAccessStore(ctx, userID, "uptown-02")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestHasPermissionModuleGrants(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()

	userID := seedPermission(t, svc, nil) // manager grants

	allowed, err := svc.Engine.HasPermission(ctx, userID, "menu", models.ModuleActionWrite, models.DashboardTypeBrand)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = svc.Engine.HasPermission(ctx, userID, "reports", models.ModuleActionWrite, models.DashboardTypeBrand)
	require.NoError(t, err)
	assert.False(t, allowed, "read-only module must not grant write")

	allowed, err = svc.Engine.HasPermission(ctx, userID, "payroll", models.ModuleActionRead, models.DashboardTypeBrand)
	require.NoError(t, err)
	assert.False(t, allowed, "unknown module is denied")
}

func TestHasPermissionAdminShortCircuit(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()

	userID := seedPermission(t, svc, func(r *models.UserPermission) {
		r.BrandDashboard = datatypes.NewJSONType(models.DashboardGrants{Role: models.DashboardRoleAdmin})
	})

	allowed, err := svc.Engine.HasPermission(ctx, userID, "anything", models.ModuleActionDelete, models.DashboardTypeBrand)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestInvalidInputRejected(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()

	_, err := svc.Engine.CanAccessDashboard(ctx, uuid.New().String(), "kitchen", "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Engine.CanAccessDashboard(ctx, "not-a-uuid", models.DashboardTypeCompany, "")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Engine.HasPermission(ctx, uuid.New().String(), "", models.ModuleActionRead, models.DashboardTypeCompany)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdatePermissionsWritesOneAuditEntry(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()

	userID := seedPermission(t, svc, nil)
	adminID := uuid.New().String()

	record, err := svc.Engine.UpdatePermissions(ctx, userID, PermissionChange{
		ChangedBy:      adminID,
		PermissionType: "coarse_gate",
		Reason:         "offboarding",
	}, func(r *models.UserPermission) {
		r.CanAccessBrandDashboard = false
	})
	require.NoError(t, err)
	assert.False(t, record.CanAccessBrandDashboard)
	assert.Equal(t, adminID, record.UpdatedBy)

	entries := auditEntries(t, svc, userID)
	require.Len(t, entries, 1)
	entry := entries[0]
	assert.Equal(t, models.AuditActionPermissionChange, entry.Action)
	require.NotNil(t, entry.ChangedBy)
	assert.Equal(t, adminID, *entry.ChangedBy)
	assert.NotEmpty(t, entry.OldPermissions)
	assert.NotEmpty(t, entry.NewPermissions)
}

func TestUpdatePermissionsVisibleDespiteCache(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()

	userID := seedPermission(t, svc, nil)

	// Warm the cache.
	allowed, err := svc.Engine.CanAccessDashboard(ctx, userID, models.DashboardTypeBrand, "")
	require.NoError(t, err)
	require.True(t, allowed)

	_, err = svc.Engine.UpdatePermissions(ctx, userID, PermissionChange{PermissionType: "coarse_gate"}, func(r *models.UserPermission) {
		r.CanAccessBrandDashboard = false
	})
	require.NoError(t, err)

	// The update invalidated the cache, so the denial is immediate.
	allowed, err = svc.Engine.CanAccessDashboard(ctx, userID, models.DashboardTypeBrand, "")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestRefreshPermissionsPicksUpDirectStoreChange(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()

	userID := seedPermission(t, svc, nil)

	record, err := svc.Engine.GetUserPermissions(ctx, userID)
	require.NoError(t, err)
	require.True(t, record.CanAccessCompanyDashboard)

	// A change written behind the engine's back stays invisible until
	// refresh (or the TTL lapses).
	record.CanAccessCompanyDashboard = false
	require.NoError(t, svc.Store.SavePermissions(ctx, record))

	require.NoError(t, svc.Engine.RefreshPermissions(ctx, userID))

	fresh, err := svc.Engine.GetUserPermissions(ctx, userID)
	require.NoError(t, err)
	assert.False(t, fresh.CanAccessCompanyDashboard)
}
