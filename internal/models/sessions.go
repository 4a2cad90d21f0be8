package models

import (
	"time"

	"gorm.io/datatypes"
)

// BrandSwitch is one entry in a session's embedded brand-switch trail.
type BrandSwitch struct {
	FromBrand  string    `json:"fromBrand"`
	ToBrand    string    `json:"toBrand"`
	SwitchedAt time.Time `json:"switchedAt"`
	Reason     string    `json:"reason,omitempty"`
}

// DashboardSession records which dashboard plane (and brand context) a user
// is currently in. At most one row per user is active at any time; the
// partial unique index created in db.Connect enforces that at the store
// layer. Rows are never deleted; termination flips IsActive.
type DashboardSession struct {
	Base
	UserID        string        `gorm:"type:uuid;index;not null" json:"userId" validate:"required,uuid"`
	DashboardType DashboardType `gorm:"not null" json:"dashboardType" validate:"required,dashboard_type"`
	BrandContext  *string       `json:"brandContext,omitempty"`
	// SessionToken is opaque and unguessable, generated fresh per session.
	// Never serialized into API responses.
	SessionToken  string                           `gorm:"uniqueIndex;not null" json:"-"`
	BrandSwitches datatypes.JSONSlice[BrandSwitch] `gorm:"type:jsonb" json:"brandSwitches"`
	IsActive      bool                             `gorm:"not null;default:true;index" json:"isActive"`
	StartedAt     time.Time                        `gorm:"not null" json:"startedAt"`
	ExpiresAt     *time.Time                       `json:"expiresAt,omitempty"`
}

// Expired reports whether the session's clock-based deadline has passed.
// A nil ExpiresAt means the session never expires on its own.
func (s *DashboardSession) Expired(now time.Time) bool {
	return s.ExpiresAt != nil && !now.Before(*s.ExpiresAt)
}
