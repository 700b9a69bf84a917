package models

import (
	"time"
)

const (
	JobDailyTaskAssignment = "DAILY_TASK_ASSIGNMENT"
	JobSLAUpdate           = "SLA_UPDATE"
)

type CronJobStatus string

const (
	CronJobSuccess        CronJobStatus = "SUCCESS"
	CronJobPartialSuccess CronJobStatus = "PARTIAL_SUCCESS"
	CronJobFailed         CronJobStatus = "FAILED"
)

// CronJobLog はバッチ1回の実行記録。追記のみで更新しない
type CronJobLog struct {
	ID               string        `gorm:"primaryKey" json:"id"`
	JobName          string        `gorm:"index" json:"jobName"`
	Status           CronJobStatus `gorm:"type:varchar(24)" json:"status"`
	Message          *string       `gorm:"type:text" json:"message"`
	ReviewsProcessed int           `json:"reviewsProcessed"`
	TasksCreated     int           `json:"tasksCreated"`
	TasksUpdated     int           `json:"tasksUpdated"`
	StartedAt        time.Time     `gorm:"index" json:"startedAt"`
	CompletedAt      time.Time     `json:"completedAt"`
}

// All は AutoMigrate 対象のモデル一覧
func All() []interface{} {
	return []interface{}{
		&Shop{},
		&Section{},
		&User{},
		&UserSection{},
		&Review{},
		&Task{},
		&CronJobLog{},
	}
}
