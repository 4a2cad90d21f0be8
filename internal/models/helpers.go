package models

import (
	"gorm.io/gorm"
)

// GetBrandBySlug retrieves a brand from the database by its slug
func GetBrandBySlug(slug string, db *gorm.DB) (*Brand, error) {
	brand := &Brand{}
	if err := db.Where("slug = ? AND is_active = true", slug).First(brand).Error; err != nil {
		return nil, err
	}
	return brand, nil
}

// GetStoreBySlug retrieves a store from the database by its slug
func GetStoreBySlug(slug string, db *gorm.DB) (*Store, error) {
	store := &Store{}
	if err := db.Where("slug = ? AND is_active = true", slug).First(store).Error; err != nil {
		return nil, err
	}
	return store, nil
}
