package models

import (
	"brandops/internal/events"

	"gorm.io/gorm"
)

func (a *PermissionAuditLog) AfterCreate(tx *gorm.DB) error {
	events.Emit(events.TopicAuditRecorded, a)
	return nil
}

func (s *DashboardSession) AfterCreate(tx *gorm.DB) error {
	events.Emit(events.TopicSessionCreated, s)
	return nil
}
