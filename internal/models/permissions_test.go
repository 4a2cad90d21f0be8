package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGrantsAllows(t *testing.T) {
	grants := DashboardGrants{
		Role: DashboardRoleManager,
		Modules: map[string][]ModuleAction{
			"menu":    {ModuleActionRead, ModuleActionWrite},
			"reports": {ModuleActionRead},
		},
		Actions: []string{"export_reports"},
	}

	assert.True(t, grants.Allows("menu", ModuleActionWrite))
	assert.False(t, grants.Allows("reports", ModuleActionWrite))
	assert.False(t, grants.Allows("payroll", ModuleActionRead))

	assert.True(t, grants.HasNamedAction("export_reports"))
	assert.False(t, grants.HasNamedAction("close_books"))
}

func TestAdminRoleShortCircuitsGrants(t *testing.T) {
	grants := DashboardGrants{Role: DashboardRoleSuperAdmin}

	assert.True(t, grants.Allows("anything", ModuleActionDelete))
	assert.True(t, grants.HasNamedAction("anything"))
}

func TestAllowListSemantics(t *testing.T) {
	open := CrossPlatformAccess{}
	assert.True(t, open.AllowsBrand("any"), "empty allow-list is unrestricted")
	assert.True(t, open.AllowsStore("any"))

	scoped := CrossPlatformAccess{AllowedBrands: []string{"a"}, AllowedStores: []string{"s"}}
	assert.True(t, scoped.AllowsBrand("a"))
	assert.False(t, scoped.AllowsBrand("b"))
	assert.True(t, scoped.AllowsStore("s"))
	assert.False(t, scoped.AllowsStore("x"))
}

func TestRoleHelpers(t *testing.T) {
	assert.True(t, DashboardRoleAdmin.IsAdmin())
	assert.True(t, DashboardRoleSuperAdmin.IsAdmin())
	assert.False(t, DashboardRoleManager.IsAdmin())

	assert.True(t, IsValidDashboardType(DashboardTypeBrand))
	assert.False(t, IsValidDashboardType("kitchen"))

	assert.True(t, IsValidAuditAction(AuditActionBrandSwitch))
	assert.False(t, IsValidAuditAction("login"))
}

func TestDefaultGrantsTemplates(t *testing.T) {
	manager := DefaultGrants(DashboardRoleManager)
	assert.Equal(t, DashboardRoleManager, manager.Role)
	assert.True(t, manager.Allows("menu", ModuleActionWrite))
	assert.False(t, manager.Allows("stores", ModuleActionWrite))

	viewer := DefaultGrants(DashboardRoleViewer)
	assert.True(t, viewer.Allows("orders", ModuleActionRead))
	assert.False(t, viewer.Allows("orders", ModuleActionWrite))

	admin := DefaultGrants(DashboardRoleSuperAdmin)
	assert.Empty(t, admin.Modules, "admin tiers bypass module checks")
}
