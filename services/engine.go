package services

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"shop-review-tasks/models"
)

// Engine はタスク割り当て・SLA再計算・解決処理をまとめる
// 状態は持たず、実行ごとのカウンタはすべてローカル変数
type Engine struct {
	store    Store
	notifier Notifier

	// Now は現在時刻。テストで差し替える
	Now func() time.Time
}

// NewEngine は Engine を作成する。notifier が nil なら通知しない
func NewEngine(store Store, notifier Notifier) *Engine {
	return &Engine{
		store:    store,
		notifier: notifier,
		Now:      time.Now,
	}
}

// appendRunLog はバッチのログを1件追記する。呼び出し元のキャンセルに関係なく書く
func (e *Engine) appendRunLog(ctx context.Context, jobName string, status models.CronJobStatus, messages []string, entry models.CronJobLog) {
	entry.ID = uuid.NewString()
	entry.JobName = jobName
	entry.Status = status
	entry.CompletedAt = e.Now()
	if len(messages) > 0 {
		msg := strings.Join(messages, "\n")
		entry.Message = &msg
	}

	if err := e.store.AppendCronJobLog(context.WithoutCancel(ctx), &entry); err != nil {
		log.Printf("cron job log write error (job: %s): %v", jobName, err)
	}
}

// batchStatus は失敗件数から実行ステータスを決める
func batchStatus(attempted, failed int) models.CronJobStatus {
	switch {
	case failed == 0:
		return models.CronJobSuccess
	case failed >= attempted:
		return models.CronJobFailed
	default:
		return models.CronJobPartialSuccess
	}
}
