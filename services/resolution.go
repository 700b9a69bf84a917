package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"shop-review-tasks/models"
)

// Resolve はタスクを解決済みにし、解決時点の経過時間で最終的なSLAを確定する
// 確定後のタスクはどの処理からも更新されない
func (e *Engine) Resolve(ctx context.Context, taskID string, remarks string) (*models.Task, error) {
	remarks = strings.TrimSpace(remarks)
	if remarks == "" {
		return nil, ErrRemarksRequired
	}

	task, err := e.store.FindTask(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, taskID)
	}
	if !task.IsOpen() {
		return nil, fmt.Errorf("%w: %s", ErrTaskAlreadyResolved, taskID)
	}

	resolvedAt := e.Now()
	slaStatus := ResolveSLAStatus(task.AssignedAt, &resolvedAt)
	status := models.TaskStatusDelayed
	if slaStatus == models.SLAStatusOnTime {
		status = models.TaskStatusOnTime
	}

	updated, err := e.store.UpdateOpenTask(ctx, task.ID, map[string]interface{}{
		"status":      status,
		"sla_status":  slaStatus,
		"resolved_at": resolvedAt,
		"remarks":     remarks,
	})
	if err != nil {
		return nil, err
	}
	// 別のリクエストが先に解決した
	if !updated {
		return nil, fmt.Errorf("%w: %s", ErrTaskAlreadyResolved, taskID)
	}

	task.Status = status
	task.SLAStatus = slaStatus
	task.ResolvedAt = &resolvedAt
	task.Remarks = &remarks

	log.Printf("task resolved: %s - sla status: %s", task.ID, slaStatus)

	return task, nil
}
