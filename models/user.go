package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleSuperAdmin UserRole = "SUPERADMIN"
	RoleAdmin      UserRole = "ADMIN"
	RoleTL         UserRole = "TL"
)

// User はダッシュボードの利用者。TLはセクションの担当者になる
type User struct {
	ID          string         `gorm:"primaryKey" json:"id"`
	Name        string         `json:"name"`
	Email       string         `gorm:"uniqueIndex" json:"email"`
	Role        UserRole       `gorm:"type:varchar(16);index" json:"role"`
	ShopID      *string        `gorm:"index" json:"shopId"`
	SlackUserID string         `json:"slackUserId"` // 通知先の Slack User ID
	IsActive    bool           `json:"isActive"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
