package models

import (
	"gorm.io/datatypes"
)

// DashboardGrants is the per-plane grant block: a role tier plus explicit
// per-module action grants and named-action flags. Stored as JSONB.
type DashboardGrants struct {
	Role    DashboardRole             `json:"role" validate:"required"`
	Modules map[string][]ModuleAction `json:"modules"`
	Actions []string                  `json:"actions,omitempty"`
}

// Allows reports whether the block grants the action on the module. An admin
// role tier short-circuits every check; otherwise both the module and the
// action inside it must be explicitly granted.
func (g DashboardGrants) Allows(module string, action ModuleAction) bool {
	if g.Role.IsAdmin() {
		return true
	}
	actions, ok := g.Modules[module]
	if !ok {
		return false
	}
	for _, a := range actions {
		if a == action {
			return true
		}
	}
	return false
}

// HasNamedAction reports whether a named-action flag is granted.
func (g DashboardGrants) HasNamedAction(name string) bool {
	if g.Role.IsAdmin() {
		return true
	}
	for _, a := range g.Actions {
		if a == name {
			return true
		}
	}
	return false
}

// CrossPlatformAccess scopes a user across the brand hierarchy.
//
// An empty AllowedBrands list means "no restriction configured yet" and is
// treated as unrestricted. This open default is deliberate and matches how
// existing records were provisioned; a non-empty list is an explicit
// allow-list and everything outside it is denied.
type CrossPlatformAccess struct {
	AllowedBrands []string `json:"allowedBrands"`
	AllowedStores []string `json:"allowedStores"`
	DataSharing   bool     `json:"dataSharing"`
}

// AllowsBrand applies the allow-list semantics above.
func (c CrossPlatformAccess) AllowsBrand(brandID string) bool {
	if len(c.AllowedBrands) == 0 {
		return true
	}
	for _, b := range c.AllowedBrands {
		if b == brandID {
			return true
		}
	}
	return false
}

// AllowsStore applies the same semantics to stores.
func (c CrossPlatformAccess) AllowsStore(storeID string) bool {
	if len(c.AllowedStores) == 0 {
		return true
	}
	for _, s := range c.AllowedStores {
		if s == storeID {
			return true
		}
	}
	return false
}

// HybridPermissions are the capability flags gating movement between
// dashboards and brands, independent of what a user sees once inside.
//
// GlobalAdminAccess bypasses the brand/store allow-lists only. It never
// restores a plane excluded by the coarse CanAccess* gates; those represent
// deliberate scope exclusion.
type HybridPermissions struct {
	CanSwitchBetweenDashboards bool `json:"canSwitchBetweenDashboards"`
	CrossPlatformDataAccess    bool `json:"crossPlatformDataAccess"`
	BrandContextSwitching      bool `json:"brandContextSwitching"`
	GlobalAdminAccess          bool `json:"globalAdminAccess"`
}

// UserPermission is the single permission record per user. Created lazily on
// first query, mutated only by an authorization change, never deleted.
type UserPermission struct {
	Base
	UserID                    string                                 `gorm:"type:uuid;uniqueIndex;not null" json:"userId" validate:"required,uuid"`
	CanAccessCompanyDashboard bool                                   `gorm:"not null;default:false" json:"canAccessCompanyDashboard"`
	CanAccessBrandDashboard   bool                                   `gorm:"not null;default:false" json:"canAccessBrandDashboard"`
	CompanyDashboard          datatypes.JSONType[DashboardGrants]    `gorm:"type:jsonb" json:"companyDashboardPermissions"`
	BrandDashboard            datatypes.JSONType[DashboardGrants]    `gorm:"type:jsonb" json:"brandDashboardPermissions"`
	CrossPlatform             datatypes.JSONType[CrossPlatformAccess] `gorm:"type:jsonb" json:"crossPlatformAccess"`
	Hybrid                    datatypes.JSONType[HybridPermissions]  `gorm:"type:jsonb" json:"hybridPermissions"`
	// TimeoutExempt marks a narrow "no-timeout" principal class. The expiry
	// watcher skips these sessions entirely, which weakens the session-expiry
	// guarantee for that class; grant it sparingly.
	TimeoutExempt bool   `gorm:"not null;default:false" json:"timeoutExempt"`
	UpdatedBy     string `gorm:"type:uuid;default:NULL" json:"updatedBy,omitempty"`
}

// GrantsFor resolves the grant block for the requested plane.
func (p *UserPermission) GrantsFor(t DashboardType) DashboardGrants {
	if t == DashboardTypeCompany {
		return p.CompanyDashboard.Data()
	}
	return p.BrandDashboard.Data()
}
