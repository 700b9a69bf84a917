package services

import (
	"time"

	"shop-review-tasks/models"
)

// SLAWindow 以内に解決すれば ON_TIME
const SLAWindow = 24 * time.Hour

// OverdueThreshold を超えて未解決のタスクは表示上 overdue
const OverdueThreshold = 48 * time.Hour

type DeadlineStatus string

const (
	DeadlineWithin24h DeadlineStatus = "within_24h"
	DeadlineWithin48h DeadlineStatus = "within_48h"
	DeadlineOverdue   DeadlineStatus = "overdue"
	// DeadlineResolved は解決済みタスクの表示用区分
	DeadlineResolved  DeadlineStatus = "resolved"
)

// ResolveSLAStatus はタスクのSLA判定を返す
// resolvedAt が nil（未解決）の間は経過時間に関係なく PENDING
// 解決済みなら 24時間以内で ON_TIME、それを超えたら 48時間超でも DELAYED
func ResolveSLAStatus(assignedAt time.Time, resolvedAt *time.Time) models.SLAStatus {
	if resolvedAt == nil {
		return models.SLAStatusPending
	}

	if elapsed(assignedAt, *resolvedAt) <= SLAWindow {
		return models.SLAStatusOnTime
	}
	return models.SLAStatusDelayed
}

// DeadlineTier は未解決タスクの緊急度（表示用）を返す。永続化はしない
func DeadlineTier(assignedAt, now time.Time) DeadlineStatus {
	d := elapsed(assignedAt, now)

	switch {
	case d <= SLAWindow:
		return DeadlineWithin24h
	case d <= OverdueThreshold:
		return DeadlineWithin48h
	default:
		return DeadlineOverdue
	}
}

// HoursElapsed は from から to までの経過時間（時間単位、切り捨て）
func HoursElapsed(from, to time.Time) int {
	return int(elapsed(from, to) / time.Hour)
}

// elapsed は時計のずれで負になった場合は0として扱う
func elapsed(from, to time.Time) time.Duration {
	d := to.Sub(from)
	if d < 0 {
		return 0
	}
	return d
}
