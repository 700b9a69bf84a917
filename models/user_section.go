package models

import (
	"time"
)

// UserSection は (ユーザー, セクション, 店舗) の担当表。店舗ごとにセクションの責任者を引く
type UserSection struct {
	ID        string `gorm:"primaryKey"`
	UserID    string `gorm:"index:idx_user_section_shop,unique:true;not null"`
	SectionID string `gorm:"index:idx_user_section_shop,unique:true;index:idx_shop_section;not null"`
	ShopID    string `gorm:"index:idx_user_section_shop,unique:true;index:idx_shop_section;not null"`
	CreatedAt time.Time
}
