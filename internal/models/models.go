package models

import (
	"brandops/internal/events"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Company is the top of the tenant hierarchy: company → brand → store.
type Company struct {
	Base
	Name   string  `gorm:"not null" json:"name" validate:"required,min=2"`
	Slug   string  `gorm:"uniqueIndex;not null" json:"slug" validate:"required,min=2,max=64"`
	Brands []Brand `gorm:"foreignKey:CompanyID;references:ID" json:"brands,omitempty"`
}

func (c *Company) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// Brand is the unit of dashboard scoping. Allow-lists and session brand
// contexts reference its Slug, not its row id.
type Brand struct {
	Base
	CompanyID string   `gorm:"type:uuid;not null" json:"companyId" validate:"required,uuid"`
	Company   *Company `json:"company,omitempty"`
	Name      string   `gorm:"not null" json:"name" validate:"required,min=2"`
	Slug      string   `gorm:"uniqueIndex;not null" json:"slug" validate:"required,min=2,max=64"`
	Stores    []Store  `gorm:"foreignKey:BrandID;references:ID;constraint:OnDelete:CASCADE" json:"stores,omitempty"`
	IsActive  bool     `gorm:"not null;default:true" json:"isActive"`
}

func (b *Brand) AfterCreate(tx *gorm.DB) error {
	events.Emit("brand.created", b)
	return nil
}

// Store is a single restaurant location under a brand.
type Store struct {
	Base
	BrandID  string `gorm:"type:uuid;not null;index" json:"brandId" validate:"required,uuid"`
	Brand    *Brand `json:"brand,omitempty"`
	Name     string `gorm:"not null" json:"name" validate:"required,min=2"`
	Slug     string `gorm:"uniqueIndex;not null" json:"slug" validate:"required,min=2,max=64"`
	Address  string `json:"address,omitempty"`
	IsActive bool   `gorm:"not null;default:true" json:"isActive"`
}
