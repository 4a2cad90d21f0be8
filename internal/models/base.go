package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base contains common columns for all tables
type Base struct {
	ID        string    `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate will set a UUID rather than numeric ID
func (base *Base) BeforeCreate(tx *gorm.DB) error {
	if base.ID == "" {
		base.ID = uuid.New().String()
	}
	return nil
}

// DashboardType is one of the two authorization planes.
type DashboardType string

const (
	DashboardTypeCompany DashboardType = "company"
	DashboardTypeBrand   DashboardType = "brand"
)

// IsValidDashboardType checks if a given dashboard type is valid
func IsValidDashboardType(t DashboardType) bool {
	switch t {
	case DashboardTypeCompany, DashboardTypeBrand:
		return true
	default:
		return false
	}
}

// DashboardRole is the closed set of role tiers with escalating grants.
// All role comparisons go through IsAdmin; never compare raw strings at
// call sites.
type DashboardRole string

const (
	DashboardRoleSuperAdmin DashboardRole = "SUPER_ADMIN"
	DashboardRoleAdmin      DashboardRole = "ADMIN"
	DashboardRoleManager    DashboardRole = "MANAGER"
	DashboardRoleViewer     DashboardRole = "VIEWER"
)

// IsAdmin reports whether the role is an admin sentinel that bypasses
// per-module grant checks.
func (r DashboardRole) IsAdmin() bool {
	return r == DashboardRoleAdmin || r == DashboardRoleSuperAdmin
}

// IsValidDashboardRole checks if a given role is valid
func IsValidDashboardRole(r DashboardRole) bool {
	switch r {
	case DashboardRoleSuperAdmin, DashboardRoleAdmin, DashboardRoleManager, DashboardRoleViewer:
		return true
	default:
		return false
	}
}

// ModuleAction is a grant inside a dashboard module.
type ModuleAction string

const (
	ModuleActionRead   ModuleAction = "read"
	ModuleActionWrite  ModuleAction = "write"
	ModuleActionDelete ModuleAction = "delete"
	ModuleActionAdmin  ModuleAction = "admin"
)

// AuditAction enumerates the permission-relevant transitions.
type AuditAction string

const (
	AuditActionDashboardSwitch  AuditAction = "dashboard_switch"
	AuditActionBrandSwitch      AuditAction = "brand_switch"
	AuditActionPermissionChange AuditAction = "permission_change"
	AuditActionSessionEnd       AuditAction = "session_end"
	AuditActionSessionExpired   AuditAction = "session_expired"
)

// IsValidAuditAction checks if a given audit action is valid
func IsValidAuditAction(a AuditAction) bool {
	switch a {
	case AuditActionDashboardSwitch, AuditActionBrandSwitch, AuditActionPermissionChange,
		AuditActionSessionEnd, AuditActionSessionExpired:
		return true
	default:
		return false
	}
}
