package services

import (
	"context"
	"fmt"
	"log"

	"shop-review-tasks/models"
)

// SweepResult はSLA再計算1回分の結果
type SweepResult struct {
	TasksInspected int `json:"tasksInspected"`
	TasksChanged   int `json:"tasksChanged"`
}

// SweepOpenTasks は未解決タスクのSLAステータスを再計算し、変わったものだけ保存する
// 何も変わっていなければ書き込みは発生しないので、連続して実行しても結果は同じ
func (e *Engine) SweepOpenTasks(ctx context.Context) (SweepResult, error) {
	log.Println("🔄 starting SLA update")

	startedAt := e.Now()
	var result SweepResult

	tasks, err := e.store.ListTasksByStatus(ctx, models.TaskStatusPending)
	if err != nil {
		log.Printf("❌ SLA update failed: %v", err)
		e.appendRunLog(ctx, models.JobSLAUpdate, models.CronJobFailed, []string{err.Error()}, models.CronJobLog{
			StartedAt: startedAt,
		})
		return result, err
	}

	result.TasksInspected = len(tasks)
	var failures []string

	for _, task := range tasks {
		next := ResolveSLAStatus(task.AssignedAt, nil)
		if task.SLAStatus == next {
			continue
		}

		// 途中で解決されたタスクは status 条件で更新対象から外れる
		updated, err := e.store.UpdateOpenTask(ctx, task.ID, map[string]interface{}{
			"sla_status": next,
		})
		if err != nil {
			failures = append(failures, fmt.Sprintf("Failed to update task %s: %v", task.ID, err))
			log.Printf("sla status update error (task id: %s): %v", task.ID, err)
			continue
		}
		if updated {
			result.TasksChanged++
			log.Printf("sla status updated (task id: %s): %s -> %s", task.ID, task.SLAStatus, next)
		}
	}

	e.appendRunLog(ctx, models.JobSLAUpdate, batchStatus(result.TasksInspected, len(failures)), failures, models.CronJobLog{
		TasksUpdated: result.TasksChanged,
		StartedAt:    startedAt,
	})

	log.Printf("✅ SLA update completed: %d tasks checked, %d changed", result.TasksInspected, result.TasksChanged)

	return result, nil
}
