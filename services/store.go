package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"shop-review-tasks/models"
)

// ReviewRepository はレビューの読み取りと処理済みフラグの更新
type ReviewRepository interface {
	FindReview(ctx context.Context, id string) (*models.Review, error)
	ListUnprocessedNegativeReviews(ctx context.Context) ([]models.Review, error)
	MarkReviewProcessed(ctx context.Context, id string) error
}

// Directory は (店舗, セクション) の担当TLを引く
type Directory interface {
	FindResponsibleUser(ctx context.Context, shopID, sectionID string) (*models.User, error)
}

// TaskRepository はタスクの永続化
type TaskRepository interface {
	CreateTask(ctx context.Context, task *models.Task) error
	FindTask(ctx context.Context, id string) (*models.Task, error)
	FindTaskByReview(ctx context.Context, reviewID string) (*models.Task, error)
	ListTasksByStatus(ctx context.Context, status models.TaskStatus) ([]models.Task, error)
	// UpdateOpenTask は status = PENDING の行だけを更新し、更新できたかを返す
	UpdateOpenTask(ctx context.Context, id string, updates map[string]interface{}) (bool, error)
}

// RunLogWriter はバッチ実行ログを追記する
type RunLogWriter interface {
	AppendCronJobLog(ctx context.Context, entry *models.CronJobLog) error
}

// Store はコアが使う永続化の窓口。見つからない場合は (nil, nil) を返す
type Store interface {
	ReviewRepository
	Directory
	TaskRepository
	RunLogWriter
	// WithTx は fn をひとつのトランザクション内で実行する
	WithTx(ctx context.Context, fn func(tx Store) error) error
}

// GormStore は gorm で Store を実装する
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// DB は下位の *gorm.DB を返す（一覧・集計系のクエリ用）
func (s *GormStore) DB() *gorm.DB {
	return s.db
}

func (s *GormStore) WithTx(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func (s *GormStore) FindReview(ctx context.Context, id string) (*models.Review, error) {
	var review models.Review
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&review).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find review %s: %w", id, err)
	}
	return &review, nil
}

func (s *GormStore) ListUnprocessedNegativeReviews(ctx context.Context) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.WithContext(ctx).
		Where("rating < ? AND is_processed = ?", models.NegativeRatingThreshold, false).
		Order("created_at ASC").
		Order("id ASC").
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("list unprocessed negative reviews: %w", err)
	}
	return reviews, nil
}

func (s *GormStore) MarkReviewProcessed(ctx context.Context, id string) error {
	result := s.db.WithContext(ctx).Model(&models.Review{}).
		Where("id = ?", id).
		Update("is_processed", true)
	if result.Error != nil {
		return fmt.Errorf("mark review %s processed: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrReviewNotFound, id)
	}
	return nil
}

func (s *GormStore) CreateTask(ctx context.Context, task *models.Task) error {
	if err := s.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task for review %s: %w", task.ReviewID, err)
	}
	return nil
}

func (s *GormStore) FindTask(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find task %s: %w", id, err)
	}
	return &task, nil
}

func (s *GormStore) FindTaskByReview(ctx context.Context, reviewID string) (*models.Task, error) {
	var task models.Task
	err := s.db.WithContext(ctx).Where("review_id = ?", reviewID).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find task by review %s: %w", reviewID, err)
	}
	return &task, nil
}

func (s *GormStore) ListTasksByStatus(ctx context.Context, status models.TaskStatus) ([]models.Task, error) {
	var tasks []models.Task
	err := s.db.WithContext(ctx).
		Where("status = ?", status).
		Order("assigned_at ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("list %s tasks: %w", status, err)
	}
	return tasks, nil
}

func (s *GormStore) UpdateOpenTask(ctx context.Context, id string, updates map[string]interface{}) (bool, error) {
	result := s.db.WithContext(ctx).Model(&models.Task{}).
		Where("id = ? AND status = ?", id, models.TaskStatusPending).
		Updates(updates)
	if result.Error != nil {
		return false, fmt.Errorf("update task %s: %w", id, result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (s *GormStore) AppendCronJobLog(ctx context.Context, entry *models.CronJobLog) error {
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("append cron job log %s: %w", entry.JobName, err)
	}
	return nil
}
