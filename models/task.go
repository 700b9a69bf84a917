package models

import (
	"time"
)

type TaskStatus string

const (
	TaskStatusPending TaskStatus = "PENDING"
	TaskStatusOnTime  TaskStatus = "ON_TIME"
	TaskStatusDelayed TaskStatus = "DELAYED"
)

type SLAStatus string

const (
	SLAStatusOnTime  SLAStatus = "ON_TIME"
	SLAStatusDelayed SLAStatus = "DELAYED"
	SLAStatusPending SLAStatus = "PENDING"
)

// Task はネガティブレビュー1件から作られる対応タスク
type Task struct {
	ID           string     `gorm:"primaryKey" json:"id"`
	ReviewID     string     `gorm:"uniqueIndex;not null" json:"reviewId"` // レビューと1対1
	ShopID       string     `gorm:"index;not null" json:"shopId"`
	SectionID    string     `gorm:"index;not null" json:"sectionId"`
	AssignedToID *string    `gorm:"index" json:"assignedToId"` // 担当TLが見つからない場合はnil
	Status       TaskStatus `gorm:"type:varchar(16);index;not null;default:'PENDING'" json:"status"`
	SLAStatus    SLAStatus  `gorm:"column:sla_status;type:varchar(16);index;not null;default:'PENDING'" json:"slaStatus"`
	AssignedAt   time.Time  `gorm:"not null" json:"assignedAt"` // SLAの起点
	ResolvedAt   *time.Time `json:"resolvedAt"`
	Remarks      *string    `json:"remarks"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// IsOpen は未解決（PENDING）のタスクかどうかを返す
func (t *Task) IsOpen() bool {
	return t.Status == TaskStatusPending
}
