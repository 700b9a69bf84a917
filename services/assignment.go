package services

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"shop-review-tasks/models"
)

// AssignmentSummary は日次割り当てバッチの結果
type AssignmentSummary struct {
	Success          bool     `json:"success"`
	ReviewsProcessed int      `json:"reviewsProcessed"`
	TasksCreated     int      `json:"tasksCreated"`
	Errors           []string `json:"errors"`
}

// Assign はネガティブレビュー1件からタスクを作り、担当TLに割り当てる
// 評価4以上のレビューや、既にタスクがあるレビューでは (nil, nil) を返す
func (e *Engine) Assign(ctx context.Context, reviewID string) (*models.Task, error) {
	var (
		created      *models.Task
		owner        *models.User
		notifyReview *models.Review
	)

	err := e.store.WithTx(ctx, func(tx Store) error {
		review, err := tx.FindReview(ctx, reviewID)
		if err != nil {
			return err
		}
		if review == nil {
			return fmt.Errorf("%w: %s", ErrReviewNotFound, reviewID)
		}

		// ポジティブなレビューは処理済みにもしない
		if !review.IsNegative() {
			log.Printf("skipping positive review: %s (rating: %d)", review.ID, review.Rating)
			return nil
		}

		// 1レビュー1タスク。既にあれば処理済みフラグだけ立てる
		existing, err := tx.FindTaskByReview(ctx, review.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			log.Printf("task already exists for review %s (task id: %s)", review.ID, existing.ID)
			return tx.MarkReviewProcessed(ctx, review.ID)
		}

		owner, err = tx.FindResponsibleUser(ctx, review.ShopID, review.SectionID)
		if err != nil {
			return err
		}

		task := &models.Task{
			ID:         uuid.NewString(),
			ReviewID:   review.ID,
			ShopID:     review.ShopID,
			SectionID:  review.SectionID,
			Status:     models.TaskStatusPending,
			SLAStatus:  models.SLAStatusPending,
			AssignedAt: e.Now(),
		}
		if owner != nil {
			ownerID := owner.ID
			task.AssignedToID = &ownerID
		}

		if err := tx.CreateTask(ctx, task); err != nil {
			return err
		}

		// 処理済みフラグは最後に立てる
		if err := tx.MarkReviewProcessed(ctx, review.ID); err != nil {
			return err
		}

		created = task
		notifyReview = review
		return nil
	})
	if err != nil {
		return nil, err
	}

	if created == nil {
		return nil, nil
	}

	log.Printf("task created: %s - assigned to: %s", created.ID, DisplayName(owner))

	if e.notifier != nil && owner != nil {
		if err := e.notifier.NotifyTaskAssigned(ctx, created, notifyReview, owner); err != nil {
			log.Printf("task assigned notification error (task id: %s): %v", created.ID, err)
		}
	}

	return created, nil
}

// RunDailyAssignment は未処理のネガティブレビューを古い順にすべてタスク化する
// 1件の失敗で残りの処理は止めない
func (e *Engine) RunDailyAssignment(ctx context.Context) AssignmentSummary {
	log.Println("🕘 starting daily task assignment")

	startedAt := e.Now()
	summary := AssignmentSummary{Errors: []string{}}
	failed := 0

	reviews, err := e.store.ListUnprocessedNegativeReviews(ctx)
	if err != nil {
		log.Printf("❌ daily task assignment failed: %v", err)
		summary.Errors = append(summary.Errors, err.Error())
		e.appendRunLog(ctx, models.JobDailyTaskAssignment, models.CronJobFailed, summary.Errors, models.CronJobLog{
			StartedAt: startedAt,
		})
		return summary
	}

	log.Printf("found %d unprocessed negative reviews", len(reviews))

	for _, review := range reviews {
		if err := ctx.Err(); err != nil {
			summary.Errors = append(summary.Errors,
				fmt.Sprintf("batch interrupted after %d of %d reviews: %v", summary.ReviewsProcessed, len(reviews), err))
			break
		}

		summary.ReviewsProcessed++

		task, err := e.Assign(ctx, review.ID)
		if err != nil {
			msg := fmt.Sprintf("Failed to process review %s: %v", review.ID, err)
			summary.Errors = append(summary.Errors, msg)
			failed++
			log.Printf("❌ %s", msg)
			continue
		}
		if task != nil {
			summary.TasksCreated++
		}
	}

	summary.Success = len(summary.Errors) == 0
	status := batchStatus(summary.ReviewsProcessed, failed)
	if failed == 0 && len(summary.Errors) > 0 {
		// 途中で中断された
		status = models.CronJobPartialSuccess
	}

	e.appendRunLog(ctx, models.JobDailyTaskAssignment, status, summary.Errors, models.CronJobLog{
		ReviewsProcessed: summary.ReviewsProcessed,
		TasksCreated:     summary.TasksCreated,
		StartedAt:        startedAt,
	})

	log.Printf("✨ daily task assignment completed: %d tasks created from %d reviews (%d errors)",
		summary.TasksCreated, summary.ReviewsProcessed, len(summary.Errors))

	return summary
}
