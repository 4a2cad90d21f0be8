package permissions

import (
	"context"
	"fmt"
	"testing"
	"time"

	"brandops/internal/db"
	"brandops/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database and runs the production
// migrations against it, partial unique index included.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.RunMigrations(gdb))
	return gdb
}

func newTestService(t *testing.T, opts Options) *Service {
	t.Helper()

	if opts.SessionTimeout == 0 {
		opts.SessionTimeout = time.Hour
	}
	if opts.CacheTTL == 0 {
		opts.CacheTTL = time.Minute
	}
	if opts.CacheSize == 0 {
		opts.CacheSize = 64
	}
	return NewService(newTestDB(t), opts)
}

// seedPermission persists a permission record for a fresh user and returns
// the user id. The base record can reach both dashboards with no brand
// restrictions; tests tighten it through mutate.
func seedPermission(t *testing.T, svc *Service, mutate func(*models.UserPermission)) string {
	t.Helper()

	userID := uuid.New().String()
	record := &models.UserPermission{
		UserID:                    userID,
		CanAccessCompanyDashboard: true,
		CanAccessBrandDashboard:   true,
		CompanyDashboard:          datatypes.NewJSONType(models.DefaultGrants(models.DashboardRoleManager)),
		BrandDashboard:            datatypes.NewJSONType(models.DefaultGrants(models.DashboardRoleManager)),
		CrossPlatform:             datatypes.NewJSONType(models.CrossPlatformAccess{}),
		Hybrid: datatypes.NewJSONType(models.HybridPermissions{
			CanSwitchBetweenDashboards: true,
			BrandContextSwitching:      true,
		}),
	}
	if mutate != nil {
		mutate(record)
	}
	require.NoError(t, svc.Store.SavePermissions(context.Background(), record))
	return userID
}

func auditEntries(t *testing.T, svc *Service, userID string) []models.PermissionAuditLog {
	t.Helper()

	entries, err := svc.Store.QueryAuditLog(context.Background(), userID, 100)
	require.NoError(t, err)
	return entries
}
