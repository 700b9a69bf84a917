package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"shop-review-tasks/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// TaskFilter はタスク一覧の絞り込み条件
type TaskFilter struct {
	Status       models.TaskStatus
	SLAStatus    models.SLAStatus
	ShopID       string
	SectionID    string
	AssignedToID string
	StartDate    *time.Time
	EndDate      *time.Time
	Page         int
	PageSize     int
}

// TaskView は表示用の計算値を付けたタスク
type TaskView struct {
	models.Task
	HoursElapsed   int            `json:"hoursElapsed"`
	DeadlineStatus DeadlineStatus `json:"deadlineStatus"`
}

type TaskPage struct {
	Items      []TaskView `json:"items"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"pageSize"`
	TotalPages int        `json:"totalPages"`
}

type ReviewSummary struct {
	ID            string    `json:"id"`
	Rating        int       `json:"rating"`
	Comment       string    `json:"comment"`
	CustomerName  *string   `json:"customerName"`
	CustomerPhone *string   `json:"customerPhone"`
	CreatedAt     time.Time `json:"createdAt"`
}

type NamedRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TaskDetail はタスク詳細（レビュー・店舗・セクション・担当者付き）
type TaskDetail struct {
	TaskView
	Review     *ReviewSummary `json:"review"`
	Shop       *NamedRef      `json:"shop"`
	Section    *NamedRef      `json:"section"`
	AssignedTo *UserRef       `json:"assignedTo"`
}

// NewTaskView は経過時間と期限区分を計算する
// 解決済みなら期限区分は resolved、経過時間は解決にかかった時間
func NewTaskView(task models.Task, now time.Time) TaskView {
	if task.ResolvedAt != nil {
		return TaskView{
			Task:           task,
			HoursElapsed:   HoursElapsed(task.AssignedAt, *task.ResolvedAt),
			DeadlineStatus: DeadlineResolved,
		}
	}

	return TaskView{
		Task:           task,
		HoursElapsed:   HoursElapsed(task.AssignedAt, now),
		DeadlineStatus: DeadlineTier(task.AssignedAt, now),
	}
}

func normalizePaging(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

func applyTaskFilter(q *gorm.DB, f TaskFilter) *gorm.DB {
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.SLAStatus != "" {
		q = q.Where("sla_status = ?", f.SLAStatus)
	}
	if f.ShopID != "" {
		q = q.Where("shop_id = ?", f.ShopID)
	}
	if f.SectionID != "" {
		q = q.Where("section_id = ?", f.SectionID)
	}
	if f.AssignedToID != "" {
		q = q.Where("assigned_to_id = ?", f.AssignedToID)
	}
	if f.StartDate != nil {
		q = q.Where("assigned_at >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		q = q.Where("assigned_at <= ?", *f.EndDate)
	}
	return q
}

// ListTasks は条件に合うタスクを割り当ての新しい順に返す
func ListTasks(ctx context.Context, db *gorm.DB, filter TaskFilter, now time.Time) (*TaskPage, error) {
	page, pageSize := normalizePaging(filter.Page, filter.PageSize)

	var total int64
	if err := applyTaskFilter(db.WithContext(ctx).Model(&models.Task{}), filter).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count tasks: %w", err)
	}

	var tasks []models.Task
	err := applyTaskFilter(db.WithContext(ctx).Model(&models.Task{}), filter).
		Order("assigned_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	items := make([]TaskView, 0, len(tasks))
	for _, task := range tasks {
		items = append(items, NewTaskView(task, now))
	}

	return &TaskPage{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
	}, nil
}

// GetTaskDetail はタスク1件を関連情報付きで返す
func GetTaskDetail(ctx context.Context, db *gorm.DB, id string, now time.Time) (*TaskDetail, error) {
	db = db.WithContext(ctx)

	var task models.Task
	err := db.Where("id = ?", id).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("find task %s: %w", id, err)
	}

	detail := &TaskDetail{TaskView: NewTaskView(task, now)}

	var review models.Review
	found, err := findRelated(db, &review, task.ReviewID)
	if err != nil {
		return nil, fmt.Errorf("find review %s for task %s: %w", task.ReviewID, id, err)
	}
	if found {
		detail.Review = &ReviewSummary{
			ID:            review.ID,
			Rating:        review.Rating,
			Comment:       review.Comment,
			CustomerName:  review.CustomerName,
			CustomerPhone: review.CustomerPhone,
			CreatedAt:     review.CreatedAt,
		}
	}

	var shop models.Shop
	if found, err = findRelated(db, &shop, task.ShopID); err != nil {
		return nil, fmt.Errorf("find shop %s for task %s: %w", task.ShopID, id, err)
	}
	if found {
		detail.Shop = &NamedRef{ID: shop.ID, Name: shop.Name}
	}

	var section models.Section
	if found, err = findRelated(db, &section, task.SectionID); err != nil {
		return nil, fmt.Errorf("find section %s for task %s: %w", task.SectionID, id, err)
	}
	if found {
		detail.Section = &NamedRef{ID: section.ID, Name: section.Name}
	}

	if task.AssignedToID != nil {
		var user models.User
		if found, err = findRelated(db, &user, *task.AssignedToID); err != nil {
			return nil, fmt.Errorf("find user %s for task %s: %w", *task.AssignedToID, id, err)
		}
		if found {
			detail.AssignedTo = &UserRef{ID: user.ID, Name: user.Name, Email: user.Email}
		}
	}

	return detail, nil
}

// findRelated は関連レコードを1件読む。存在しなければ (false, nil)
func findRelated(db *gorm.DB, dest interface{}, id string) (bool, error) {
	err := db.Where("id = ?", id).First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListCronJobLogs は直近のバッチ実行ログを新しい順に返す
func ListCronJobLogs(ctx context.Context, db *gorm.DB, limit int) ([]models.CronJobLog, error) {
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	var logs []models.CronJobLog
	err := db.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("list cron job logs: %w", err)
	}
	return logs, nil
}
