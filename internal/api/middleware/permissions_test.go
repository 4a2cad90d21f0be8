package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"brandops/internal/db"
	"brandops/internal/models"
	"brandops/internal/permissions"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newGuardTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations(gdb))
	return gdb
}

func newGuardService(gdb *gorm.DB) *permissions.Service {
	return permissions.NewService(gdb, permissions.Options{
		SessionTimeout: time.Hour,
		CacheTTL:       time.Minute,
		CacheSize:      16,
	})
}

// guardedEcho mounts a trivial handler behind the guard under test, with a
// stand-in identity middleware that sets the userID claim the way the JWT
// middleware would.
func guardedEcho(userID string, guard echo.MiddlewareFunc) *echo.Echo {
	e := echo.New()
	identity := func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if userID != "" {
				c.Set("userID", userID)
			}
			return next(c)
		}
	}
	e.GET("/guarded", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, identity, guard)
	return e
}

func seedGuardRecord(t *testing.T, gdb *gorm.DB, mutate func(*models.UserPermission)) string {
	t.Helper()

	record := &models.UserPermission{
		UserID:                    uuid.New().String(),
		CanAccessCompanyDashboard: true,
		CanAccessBrandDashboard:   true,
		CompanyDashboard:          datatypes.NewJSONType(models.DefaultGrants(models.DashboardRoleManager)),
		BrandDashboard:            datatypes.NewJSONType(models.DefaultGrants(models.DashboardRoleManager)),
		CrossPlatform:             datatypes.NewJSONType(models.CrossPlatformAccess{}),
		Hybrid:                    datatypes.NewJSONType(models.HybridPermissions{}),
	}
	if mutate != nil {
		mutate(record)
	}
	require.NoError(t, gdb.Create(record).Error)
	return record.UserID
}

func serve(e *echo.Echo, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRequireDashboardStatusMapping(t *testing.T) {
	t.Run("allowed passes through", func(t *testing.T) {
		gdb := newGuardTestDB(t)
		userID := seedGuardRecord(t, gdb, nil)
		e := guardedEcho(userID, RequireDashboard(newGuardService(gdb), models.DashboardTypeBrand))
		assert.Equal(t, http.StatusOK, serve(e, "/guarded").Code)
	})

	t.Run("no record is a generic 403", func(t *testing.T) {
		gdb := newGuardTestDB(t)
		e := guardedEcho(uuid.New().String(), RequireDashboard(newGuardService(gdb), models.DashboardTypeBrand))
		rec := serve(e, "/guarded")
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, rec.Body.String(), "access denied")
	})

	t.Run("missing identity is 401", func(t *testing.T) {
		gdb := newGuardTestDB(t)
		e := guardedEcho("", RequireDashboard(newGuardService(gdb), models.DashboardTypeBrand))
		assert.Equal(t, http.StatusUnauthorized, serve(e, "/guarded").Code)
	})

	t.Run("oversized brand scope is 400", func(t *testing.T) {
		gdb := newGuardTestDB(t)
		userID := seedGuardRecord(t, gdb, nil)
		e := guardedEcho(userID, RequireDashboard(newGuardService(gdb), models.DashboardTypeBrand))
		rec := serve(e, "/guarded?brandId="+strings.Repeat("x", 200))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("store fault is 503", func(t *testing.T) {
		gdb := newGuardTestDB(t)
		svc := newGuardService(gdb)
		require.NoError(t, gdb.Migrator().DropTable(&models.UserPermission{}))
		e := guardedEcho(uuid.New().String(), RequireDashboard(svc, models.DashboardTypeBrand))
		rec := serve(e, "/guarded")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "permission check unavailable")
	})
}

func TestRequireModuleStatusMapping(t *testing.T) {
	t.Run("granted module passes", func(t *testing.T) {
		gdb := newGuardTestDB(t)
		userID := seedGuardRecord(t, gdb, nil)
		e := guardedEcho(userID, RequireModule(newGuardService(gdb), "menu", models.ModuleActionRead, models.DashboardTypeBrand))
		assert.Equal(t, http.StatusOK, serve(e, "/guarded").Code)
	})

	t.Run("missing grant is 403", func(t *testing.T) {
		gdb := newGuardTestDB(t)
		userID := seedGuardRecord(t, gdb, func(r *models.UserPermission) {
			r.BrandDashboard = datatypes.NewJSONType(models.DefaultGrants(models.DashboardRoleViewer))
		})
		e := guardedEcho(userID, RequireModule(newGuardService(gdb), "menu", models.ModuleActionDelete, models.DashboardTypeBrand))
		assert.Equal(t, http.StatusForbidden, serve(e, "/guarded").Code)
	})
}

func TestRequireGlobalAdmin(t *testing.T) {
	t.Run("capability holder passes", func(t *testing.T) {
		gdb := newGuardTestDB(t)
		userID := seedGuardRecord(t, gdb, func(r *models.UserPermission) {
			r.Hybrid = datatypes.NewJSONType(models.HybridPermissions{GlobalAdminAccess: true})
		})
		e := guardedEcho(userID, RequireGlobalAdmin(newGuardService(gdb)))
		assert.Equal(t, http.StatusOK, serve(e, "/guarded").Code)
	})

	t.Run("ordinary record is 403", func(t *testing.T) {
		gdb := newGuardTestDB(t)
		userID := seedGuardRecord(t, gdb, nil)
		e := guardedEcho(userID, RequireGlobalAdmin(newGuardService(gdb)))
		assert.Equal(t, http.StatusForbidden, serve(e, "/guarded").Code)
	})
}
