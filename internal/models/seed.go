package models

import (
	"fmt"
	"os"

	console "brandops/internal/utils/logger"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var log = console.New("SEEDER")

// Default per-role module grants. These are templates applied when a
// permission record is provisioned for a role tier; admins bypass module
// checks entirely so their maps stay empty.
var defaultModuleGrants = map[DashboardRole]map[string][]ModuleAction{
	DashboardRoleManager: {
		"menu":      {ModuleActionRead, ModuleActionWrite},
		"orders":    {ModuleActionRead, ModuleActionWrite},
		"inventory": {ModuleActionRead, ModuleActionWrite},
		"stores":    {ModuleActionRead},
		"reports":   {ModuleActionRead},
	},
	DashboardRoleViewer: {
		"menu":    {ModuleActionRead},
		"orders":  {ModuleActionRead},
		"reports": {ModuleActionRead},
	},
}

// DefaultGrants returns the grant block template for a role tier.
func DefaultGrants(role DashboardRole) DashboardGrants {
	grants := DashboardGrants{Role: role, Modules: map[string][]ModuleAction{}}
	if tmpl, ok := defaultModuleGrants[role]; ok {
		for module, actions := range tmpl {
			grants.Modules[module] = append([]ModuleAction(nil), actions...)
		}
	}
	return grants
}

// CreateGlobalAdminFromEnv bootstraps a permission record with global admin
// access for the operator named in the environment. Without it a fresh
// deployment has no principal able to manage anyone else's permissions.
func CreateGlobalAdminFromEnv(db *gorm.DB) error {
	userID, ok := os.LookupEnv("GLOBAL_ADMIN_USER_ID")
	if !ok {
		return fmt.Errorf("GLOBAL_ADMIN_USER_ID not set")
	}

	var count int64
	db.Model(&UserPermission{}).Where("user_id = ?", userID).Count(&count)
	if count > 0 {
		log.Info("Global admin permission record already present")
		return nil
	}

	record := UserPermission{
		UserID:                    userID,
		CanAccessCompanyDashboard: true,
		CanAccessBrandDashboard:   true,
		CompanyDashboard:          datatypes.NewJSONType(DefaultGrants(DashboardRoleSuperAdmin)),
		BrandDashboard:            datatypes.NewJSONType(DefaultGrants(DashboardRoleSuperAdmin)),
		CrossPlatform:             datatypes.NewJSONType(CrossPlatformAccess{DataSharing: true}),
		Hybrid: datatypes.NewJSONType(HybridPermissions{
			CanSwitchBetweenDashboards: true,
			CrossPlatformDataAccess:    true,
			BrandContextSwitching:      true,
			GlobalAdminAccess:          true,
		}),
	}

	if err := db.Create(&record).Error; err != nil {
		return fmt.Errorf("failed to create global admin permission record: %v", err)
	}

	log.Success("Seeded global admin permission record for %s", userID)
	return nil
}
