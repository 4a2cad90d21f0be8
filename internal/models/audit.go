package models

import (
	"time"

	"gorm.io/datatypes"
)

// PermissionAuditLog is an append-only record of a permission or session
// transition. Entries are immutable once written; the only sanctioned
// post-write mutation is the Archived flag set by the archive job. Entries
// are never deleted by normal operation.
type PermissionAuditLog struct {
	Base
	UserID     string      `gorm:"type:uuid;index;not null" json:"userId" validate:"required,uuid"`
	Action     AuditAction `gorm:"not null" json:"action" validate:"required,audit_action"`
	OccurredAt time.Time   `gorm:"index;not null" json:"timestamp" validate:"required"`

	// Transition fields
	FromDashboard *DashboardType `json:"fromDashboard,omitempty"`
	ToDashboard   *DashboardType `json:"toDashboard,omitempty"`
	BrandContext  *string        `json:"brandContext,omitempty"`
	Reason        string         `json:"reason,omitempty"`

	// Attribution fields for permission changes performed on behalf of UserID
	ChangedBy      *string        `gorm:"type:uuid;default:NULL" json:"changedBy,omitempty"`
	PermissionType string         `json:"permissionType,omitempty"`
	OldPermissions datatypes.JSON `gorm:"type:jsonb" json:"oldPermissions,omitempty"`
	NewPermissions datatypes.JSON `gorm:"type:jsonb" json:"newPermissions,omitempty"`
	ChangeReason   string         `json:"changeReason,omitempty"`

	// Request metadata
	IPAddress string `json:"ipAddress,omitempty"`

	Archived bool `gorm:"not null;default:false;index" json:"archived"`
}
