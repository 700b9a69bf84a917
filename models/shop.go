package models

import (
	"time"

	"gorm.io/gorm"
)

type Shop struct {
	ID        string         `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"index" json:"name"`
	Slug      string         `gorm:"uniqueIndex" json:"slug"`
	Address   string         `json:"address"`
	City      string         `json:"city"`
	IsActive  bool           `json:"isActive"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Section は店舗内の売り場カテゴリ（例: "Men Casual"）
type Section struct {
	ID           string         `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"uniqueIndex" json:"name"`
	DisplayOrder int            `json:"displayOrder"`
	IsActive     bool           `json:"isActive"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
