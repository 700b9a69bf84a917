package models

import (
	"time"
)

// NegativeRatingThreshold 未満の評価がタスク化の対象
const NegativeRatingThreshold = 4

// Review は顧客からの評価。作成後に変わるのは IsProcessed だけ
type Review struct {
	ID                string    `gorm:"primaryKey" json:"id"`
	TallySubmissionID *string   `gorm:"uniqueIndex" json:"tallySubmissionId"`
	ShopID            string    `gorm:"index;not null" json:"shopId"`
	SectionID         string    `gorm:"index;not null" json:"sectionId"`
	Rating            int       `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Comment           string    `gorm:"type:text" json:"comment"`
	CustomerName      *string   `json:"customerName"`
	CustomerPhone     *string   `json:"customerPhone"`
	CustomerEmail     *string   `json:"customerEmail"`
	IsProcessed       bool      `gorm:"index;default:false" json:"isProcessed"`
	CreatedAt         time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// IsNegative はタスク化対象の評価かどうか
func (r *Review) IsNegative() bool {
	return r.Rating < NegativeRatingThreshold
}
