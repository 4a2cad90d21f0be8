package permissions

import (
	"context"
	"testing"
	"time"

	"brandops/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestCreateSessionDeactivatesPrevious(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()

	userID := seedPermission(t, svc, nil)

	first, err := svc.Sessions.CreateSession(ctx, userID, models.DashboardTypeBrand, "pizza-palace", RequestMeta{})
	require.NoError(t, err)
	require.True(t, first.IsActive)
	assert.NotEmpty(t, first.SessionToken)

	second, err := svc.Sessions.CreateSession(ctx, userID, models.DashboardTypeBrand, "pizza-palace", RequestMeta{})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	count, err := svc.Store.CountActiveSessions(ctx, userID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count, "last login wins, never two active sessions")

	reloaded, err := svc.Store.GetSession(ctx, first.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsActive)
}

func TestCreateSessionDeniedWritesNothing(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()

	userID := seedPermission(t, svc, func(r *models.UserPermission) {
		r.CanAccessBrandDashboard = false
	})

	_, err := svc.Sessions.CreateSession(ctx, userID, models.DashboardTypeBrand, "", RequestMeta{})
	assert.ErrorIs(t, err, ErrAccessDenied)

	count, err := svc.Store.CountActiveSessions(ctx, userID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
	assert.Empty(t, auditEntries(t, svc, userID), "a denial writes no audit entry")
}

func TestCreateSessionAuditsSwitch(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()

	userID := seedPermission(t, svc, nil)

	_, err := svc.Sessions.CreateSession(ctx, userID, models.DashboardTypeCompany, "", RequestMeta{IPAddress: "10.0.0.9", Reason: "daily review"})
	require.NoError(t, err)

	_, err = svc.Sessions.CreateSession(ctx, userID, models.DashboardTypeBrand, "pizza-palace", RequestMeta{IPAddress: "10.0.0.9"})
	require.NoError(t, err)

	entries := auditEntries(t, svc, userID)
	require.Len(t, entries, 2)

	// Most recent first: company -> brand with both sides recorded.
	latest := entries[0]
	assert.Equal(t, models.AuditActionDashboardSwitch, latest.Action)
	require.NotNil(t, latest.FromDashboard)
	assert.Equal(t, models.DashboardTypeCompany, *latest.FromDashboard)
	require.NotNil(t, latest.ToDashboard)
	assert.Equal(t, models.DashboardTypeBrand, *latest.ToDashboard)
	require.NotNil(t, latest.BrandContext)
	assert.Equal(t, "pizza-palace", *latest.BrandContext)
	assert.Equal(t, "10.0.0.9", latest.IPAddress)
}

func TestSwitchingPlanesRequiresCapability(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()

	userID := seedPermission(t, svc, func(r *models.UserPermission) {
		r.Hybrid = datatypes.NewJSONType(models.HybridPermissions{})
	})

	_, err := svc.Sessions.CreateSession(ctx, userID, models.DashboardTypeCompany, "", RequestMeta{})
	require.NoError(t, err)

	_, err = svc.Sessions.CreateSession(ctx, userID, models.DashboardTypeBrand, "", RequestMeta{})
	assert.ErrorIs(t, err, ErrAccessDenied, "plane switch without the hybrid capability")

	// Re-entering the same plane is not a switch.
	_, err = svc.Sessions.CreateSession(ctx, userID, models.DashboardTypeCompany, "", RequestMeta{})
	require.NoError(t, err)
}

func TestSwitchBrandHappyPath(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()

	userID := seedPermission(t, svc, nil)

	session, err := svc.Sessions.CreateSession(ctx, userID, models.DashboardTypeBrand, "pizza-palace", RequestMeta{})
	require.NoError(t, err)

	switched, err := svc.Sessions.SwitchBrand(ctx, session.ID, "", "burger-barn", "inventory check")
	require.NoError(t, err)
	require.True(t, switched)

	reloaded, err := svc.Store.GetSession(ctx, session.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.BrandContext)
	assert.Equal(t, "burger-barn", *reloaded.BrandContext)
	require.Len(t, reloaded.BrandSwitches, 1)
	assert.Equal(t, "pizza-palace", reloaded.BrandSwitches[0].FromBrand)
	assert.Equal(t, "burger-barn", reloaded.BrandSwitches[0].ToBrand)
	assert.Equal(t, "inventory check", reloaded.BrandSwitches[0].Reason)

	entries := auditEntries(t, svc, userID)
	require.NotEmpty(t, entries)
	assert.Equal(t, models.AuditActionBrandSwitch, entries[0].Action)
}

func TestSwitchBrandDeniedWithoutMutation(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()

	userID := seedPermission(t, svc, func(r *models.UserPermission) {
		r.CrossPlatform = datatypes.NewJSONType(models.CrossPlatformAccess{
			AllowedBrands: []string{"pizza-palace"},
		})
	})

	session, err := svc.Sessions.CreateSession(ctx, userID, models.DashboardTypeBrand, "pizza-palace", RequestMeta{})
	require.NoError(t, err)

	switched, err := svc.Sessions.SwitchBrand(ctx, session.ID, "", "burger-barn", "")
	require.NoError(t, err, "a permission denial is not an error")
	assert.False(t, switched)

	reloaded, err := svc.Store.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "pizza-palace", *reloaded.BrandContext)
	assert.Empty(t, reloaded.BrandSwitches)
}

func TestSwitchBrandRevalidatesTightenedAllowList(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()

	// Both brands are allowed when the session is created.
	userID := seedPermission(t, svc, func(r *models.UserPermission) {
		r.CrossPlatform = datatypes.NewJSONType(models.CrossPlatformAccess{
			AllowedBrands: []string{"pizza-palace", "burger-barn"},
		})
	})

	session, err := svc.Sessions.CreateSession(ctx, userID, models.DashboardTypeBrand, "pizza-palace", RequestMeta{})
	require.NoError(t, err)

	// Tighten the allow-list afterwards; the session must not grandfather
	// access to the now-excluded brand.
	_, err = svc.Engine.UpdatePermissions(ctx, userID, PermissionChange{ChangedBy: "admin", PermissionType: "crossPlatform", Reason: "offboarding"}, func(r *models.UserPermission) {
		r.CrossPlatform = datatypes.NewJSONType(models.CrossPlatformAccess{
			AllowedBrands: []string{"pizza-palace"},
		})
	})
	require.NoError(t, err)

	switched, err := svc.Sessions.SwitchBrand(ctx, session.ID, "pizza-palace", "burger-barn", "")
	require.NoError(t, err)
	assert.False(t, switched)
}

func TestCreateSessionAllowListDeniedWritesNothing(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()

	userID := seedPermission(t, svc, func(r *models.UserPermission) {
		r.CrossPlatform = datatypes.NewJSONType(models.CrossPlatformAccess{
			AllowedBrands: []string{"millab"},
		})
	})

	_, err := svc.Sessions.CreateSession(ctx, userID, models.DashboardTypeBrand, "cafebene", RequestMeta{})
	assert.ErrorIs(t, err, ErrAccessDenied)

	count, err := svc.Store.CountActiveSessions(ctx, userID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
	assert.Empty(t, auditEntries(t, svc, userID))
}

func TestCompanyThenBrandLeavesOneActiveSession(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()

	userID := seedPermission(t, svc, nil)

	company, err := svc.Sessions.CreateSession(ctx, userID, models.DashboardTypeCompany, "", RequestMeta{})
	require.NoError(t, err)

	brand, err := svc.Sessions.CreateSession(ctx, userID, models.DashboardTypeBrand, "pizza-palace", RequestMeta{})
	require.NoError(t, err)
	assert.True(t, brand.IsActive)

	count, err := svc.Store.CountActiveSessions(ctx, userID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	reloaded, err := svc.Store.GetSession(ctx, company.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsActive)
}

func TestSwitchBrandRequiresCapabilityAndActiveSession(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()

	noSwitching := seedPermission(t, svc, func(r *models.UserPermission) {
		r.Hybrid = datatypes.NewJSONType(models.HybridPermissions{CanSwitchBetweenDashboards: true})
	})
	session, err := svc.Sessions.CreateSession(ctx, noSwitching, models.DashboardTypeBrand, "pizza-palace", RequestMeta{})
	require.NoError(t, err)

	switched, err := svc.Sessions.SwitchBrand(ctx, session.ID, "", "burger-barn", "")
	require.NoError(t, err)
	assert.False(t, switched, "brand switching capability is required")

	// Ended sessions refuse the switch too.
	userID := seedPermission(t, svc, nil)
	ended, err := svc.Sessions.CreateSession(ctx, userID, models.DashboardTypeBrand, "pizza-palace", RequestMeta{})
	require.NoError(t, err)
	require.NoError(t, svc.Sessions.EndSession(ctx, ended.ID))

	switched, err = svc.Sessions.SwitchBrand(ctx, ended.ID, "", "burger-barn", "")
	require.NoError(t, err)
	assert.False(t, switched)

	// Unknown session: false, no error.
	switched, err = svc.Sessions.SwitchBrand(ctx, uuid.New().String(), "", "burger-barn", "")
	require.NoError(t, err)
	assert.False(t, switched)
}

func TestEndSessionIdempotent(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()

	userID := seedPermission(t, svc, nil)
	session, err := svc.Sessions.CreateSession(ctx, userID, models.DashboardTypeCompany, "", RequestMeta{})
	require.NoError(t, err)

	require.NoError(t, svc.Sessions.EndSession(ctx, session.ID))
	require.NoError(t, svc.Sessions.EndSession(ctx, session.ID), "second end is a no-op")
	require.NoError(t, svc.Sessions.EndSession(ctx, uuid.New().String()), "unknown session is a no-op")

	ends := 0
	for _, entry := range auditEntries(t, svc, userID) {
		if entry.Action == models.AuditActionSessionEnd {
			ends++
		}
	}
	assert.Equal(t, 1, ends, "exactly one session_end entry despite repeated calls")

	assert.Nil(t, svc.Sessions.CurrentSession())
}

func TestActiveSessionConstraintClosesRace(t *testing.T) {
	svc := newTestService(t, Options{})
	ctx := context.Background()

	userID := seedPermission(t, svc, nil)
	now := time.Now().UTC()

	insert := func(token string) error {
		return svc.Store.InsertSession(ctx, &models.DashboardSession{
			UserID:        userID,
			DashboardType: models.DashboardTypeCompany,
			SessionToken:  token,
			IsActive:      true,
			StartedAt:     now,
		})
	}

	require.NoError(t, insert("token-a"))
	err := insert("token-b")
	require.Error(t, err, "the partial unique index rejects a second active row")
	assert.ErrorIs(t, err, ErrStoreFault)

	count, err := svc.Store.CountActiveSessions(ctx, userID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestSessionExpiryDeadline(t *testing.T) {
	svc := newTestService(t, Options{SessionTimeout: 30 * time.Minute})
	ctx := context.Background()

	userID := seedPermission(t, svc, nil)
	session, err := svc.Sessions.CreateSession(ctx, userID, models.DashboardTypeCompany, "", RequestMeta{})
	require.NoError(t, err)

	require.NotNil(t, session.ExpiresAt)
	assert.WithinDuration(t, session.StartedAt.Add(30*time.Minute), *session.ExpiresAt, time.Second)

	assert.False(t, session.Expired(session.StartedAt.Add(29*time.Minute)))
	assert.True(t, session.Expired(session.StartedAt.Add(31*time.Minute)))
}
