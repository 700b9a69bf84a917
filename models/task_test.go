package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupModelTestDB(t *testing.T) *gorm.DB {
	db, err := Open("sqlite", ":memory:", &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("fail to open test db: %v", err)
	}

	return db
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("mysql", "", nil)
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestTask_DefaultStatuses(t *testing.T) {
	db := setupModelTestDB(t)

	// ステータスを指定しないTaskを作成
	task := Task{
		ID:         "task-default",
		ReviewID:   "review-1",
		ShopID:     "shop-1",
		SectionID:  "section-1",
		AssignedAt: time.Now(),
	}
	err := db.Create(&task).Error
	assert.NoError(t, err)

	var saved Task
	err = db.Where("id = ?", "task-default").First(&saved).Error
	assert.NoError(t, err)

	// デフォルト値が設定されていることを確認
	assert.Equal(t, TaskStatusPending, saved.Status)
	assert.Equal(t, SLAStatusPending, saved.SLAStatus)
	assert.Nil(t, saved.AssignedToID)
	assert.Nil(t, saved.ResolvedAt)
	assert.True(t, saved.IsOpen())
}

func TestTask_OneTaskPerReview(t *testing.T) {
	db := setupModelTestDB(t)

	first := Task{ID: "task-1", ReviewID: "review-1", ShopID: "shop-1", SectionID: "section-1", AssignedAt: time.Now()}
	assert.NoError(t, db.Create(&first).Error)

	// 同じレビューに2件目のタスクは作れない
	second := Task{ID: "task-2", ReviewID: "review-1", ShopID: "shop-1", SectionID: "section-1", AssignedAt: time.Now()}
	assert.Error(t, db.Create(&second).Error)

	var count int64
	db.Model(&Task{}).Where("review_id = ?", "review-1").Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestUserSection_UniqueTriple(t *testing.T) {
	db := setupModelTestDB(t)

	entry := UserSection{ID: "us-1", UserID: "U1", SectionID: "men-casual", ShopID: "S1"}
	assert.NoError(t, db.Create(&entry).Error)

	dup := UserSection{ID: "us-2", UserID: "U1", SectionID: "men-casual", ShopID: "S1"}
	assert.Error(t, db.Create(&dup).Error)

	// 別店舗なら同じユーザー・セクションでも登録できる
	other := UserSection{ID: "us-3", UserID: "U1", SectionID: "men-casual", ShopID: "S2"}
	assert.NoError(t, db.Create(&other).Error)
}

func TestReview_IsNegative(t *testing.T) {
	tests := []struct {
		rating int
		want   bool
	}{
		{1, true},
		{3, true},
		{4, false},
		{5, false},
	}

	for _, tt := range tests {
		r := Review{Rating: tt.rating}
		assert.Equal(t, tt.want, r.IsNegative(), "rating %d", tt.rating)
	}
}

func TestReview_RatingCheckConstraint(t *testing.T) {
	db := setupModelTestDB(t)

	bad := Review{ID: "r-bad", ShopID: "S1", SectionID: "sec", Rating: 7}
	assert.Error(t, db.Create(&bad).Error)

	good := Review{ID: "r-good", ShopID: "S1", SectionID: "sec", Rating: 2}
	assert.NoError(t, db.Create(&good).Error)
}

func TestUser_SoftDelete(t *testing.T) {
	db := setupModelTestDB(t)

	user := User{ID: "U1", Name: "Priya", Email: "priya@example.com", Role: RoleTL, IsActive: true}
	assert.NoError(t, db.Create(&user).Error)
	assert.NoError(t, db.Delete(&user).Error)

	// 通常のクエリからは見えない
	var found User
	assert.ErrorIs(t, db.Where("id = ?", "U1").First(&found).Error, gorm.ErrRecordNotFound)

	// 行自体は残っている
	assert.NoError(t, db.Unscoped().Where("id = ?", "U1").First(&found).Error)
	assert.True(t, found.DeletedAt.Valid)
}
