package permissions

import (
	"context"
	"encoding/json"
	"time"

	"brandops/internal/events"
	"brandops/internal/models"
	console "brandops/internal/utils/logger"

	"gorm.io/datatypes"
)

const maxScopeIDLength = 128

// Engine computes access decisions from a user's permission record. It is
// cache-first and fails closed: no record means no access, and a store fault
// is surfaced as a distinguishable error so callers deny without mistaking
// an outage for a legitimate denial.
type Engine struct {
	store *Store
	cache *Cache
	audit *Recorder
	log   *console.Logger
}

func NewEngine(store *Store, cache *Cache, audit *Recorder) *Engine {
	return &Engine{
		store: store,
		cache: cache,
		audit: audit,
		log:   console.New("PERM-ENGINE"),
	}
}

// GetUserPermissions returns the user's permission record, cache-first.
// Returns nil (not an error) when no record exists.
func (e *Engine) GetUserPermissions(ctx context.Context, userID string) (*models.UserPermission, error) {
	if record, ok := e.cache.Get(userID); ok {
		return record, nil
	}

	record, err := e.store.GetPermissions(ctx, userID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}

	e.cache.Set(userID, record)
	return record, nil
}

// CanAccessDashboard decides whether the user may enter the given dashboard
// plane, optionally scoped to a brand.
//
// The check is two-tier: the coarse CanAccess* gate first, then the brand
// allow-list. GlobalAdminAccess bypasses the allow-list only; it never
// restores a plane the coarse gates exclude. That is a deliberate policy
// reading (the safer one) and changing it needs product sign-off.
func (e *Engine) CanAccessDashboard(ctx context.Context, userID string, dashboardType models.DashboardType, brandID string) (bool, error) {
	if !models.IsValidDashboardType(dashboardType) {
		return false, invalidInput("dashboardType", ErrInvalidInput)
	}
	if len(brandID) > maxScopeIDLength {
		return false, invalidInput("brandId", ErrInvalidInput)
	}

	record, err := e.GetUserPermissions(ctx, userID)
	if err != nil {
		return false, err
	}
	if record == nil {
		return false, nil
	}

	if dashboardType == models.DashboardTypeCompany {
		return record.CanAccessCompanyDashboard, nil
	}

	if !record.CanAccessBrandDashboard {
		return false, nil
	}
	if brandID == "" {
		// Coarse brand access granted; scope check deferred to the caller.
		return true, nil
	}

	if record.Hybrid.Data().GlobalAdminAccess {
		return true, nil
	}
	return record.CrossPlatform.Data().AllowsBrand(brandID), nil
}

// CanAccessStore applies the store allow-list with the same admin-override
// semantics as brands.
func (e *Engine) CanAccessStore(ctx context.Context, userID string, storeID string) (bool, error) {
	if storeID == "" || len(storeID) > maxScopeIDLength {
		return false, invalidInput("storeId", ErrInvalidInput)
	}

	record, err := e.GetUserPermissions(ctx, userID)
	if err != nil {
		return false, err
	}
	if record == nil {
		return false, nil
	}
	if !record.CanAccessBrandDashboard {
		return false, nil
	}
	if record.Hybrid.Data().GlobalAdminAccess {
		return true, nil
	}
	return record.CrossPlatform.Data().AllowsStore(storeID), nil
}

// HasPermission resolves the grant block for the plane and requires both the
// module and the action to be granted, unless the block's role is an admin
// sentinel.
func (e *Engine) HasPermission(ctx context.Context, userID, module string, action models.ModuleAction, dashboardType models.DashboardType) (bool, error) {
	if !models.IsValidDashboardType(dashboardType) {
		return false, invalidInput("dashboardType", ErrInvalidInput)
	}
	if module == "" {
		return false, invalidInput("module", ErrInvalidInput)
	}

	record, err := e.GetUserPermissions(ctx, userID)
	if err != nil {
		return false, err
	}
	if record == nil {
		return false, nil
	}

	return record.GrantsFor(dashboardType).Allows(module, action), nil
}

// RefreshPermissions forces cache invalidation and a fresh store read.
func (e *Engine) RefreshPermissions(ctx context.Context, userID string) error {
	e.cache.Invalidate(userID)

	record, err := e.store.GetPermissions(ctx, userID)
	if err != nil {
		return err
	}
	if record != nil {
		e.cache.Set(userID, record)
	}
	return nil
}

// PermissionChange carries attribution for an audited permission mutation.
type PermissionChange struct {
	ChangedBy      string
	PermissionType string
	Reason         string
	IPAddress      string
}

// UpdatePermissions applies mutate to the user's record (creating a blank
// one when the user has none yet), persists it, writes exactly one
// permission_change audit entry with before/after snapshots, and invalidates
// the cache so the change is visible within the TTL bound.
func (e *Engine) UpdatePermissions(ctx context.Context, userID string, change PermissionChange, mutate func(*models.UserPermission)) (*models.UserPermission, error) {
	record, err := e.store.GetPermissions(ctx, userID)
	if err != nil {
		return nil, err
	}

	var oldSnapshot []byte
	if record == nil {
		record = &models.UserPermission{
			UserID:        userID,
			CrossPlatform: datatypes.NewJSONType(models.CrossPlatformAccess{}),
			Hybrid:        datatypes.NewJSONType(models.HybridPermissions{}),
		}
	} else {
		oldSnapshot, _ = json.Marshal(record)
	}

	mutate(record)
	record.UpdatedBy = change.ChangedBy

	if err := e.store.SavePermissions(ctx, record); err != nil {
		return nil, err
	}

	newSnapshot, _ := json.Marshal(record)
	entry := &models.PermissionAuditLog{
		UserID:         userID,
		Action:         models.AuditActionPermissionChange,
		OccurredAt:     time.Now().UTC(),
		PermissionType: change.PermissionType,
		ChangeReason:   change.Reason,
		IPAddress:      change.IPAddress,
		OldPermissions: oldSnapshot,
		NewPermissions: newSnapshot,
	}
	if change.ChangedBy != "" {
		entry.ChangedBy = &change.ChangedBy
	}
	if err := e.audit.Record(ctx, entry); err != nil {
		e.log.Warn("permission change for %s saved but audit write failed: %v", userID, err)
	}

	e.cache.Invalidate(userID)
	events.Emit(events.TopicPermissionChanged, record)
	return record, nil
}
