package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"gorm.io/gorm"

	"shop-review-tasks/models"
)

type ShopMetrics struct {
	ShopID            string  `json:"shopId"`
	ShopName          string  `json:"shopName"`
	TotalTasks        int     `json:"totalTasks"`
	OnTimeCount       int     `json:"onTimeCount"`
	DelayedCount      int     `json:"delayedCount"`
	PendingCount      int     `json:"pendingCount"`
	OnTimePercentage  float64 `json:"onTimePercentage"`
	DelayedPercentage float64 `json:"delayedPercentage"`
	PendingPercentage float64 `json:"pendingPercentage"`
}

type GlobalMetrics struct {
	TotalShops               int           `json:"totalShops"`
	TotalReviews             int64         `json:"totalReviews"`
	TotalTasks               int           `json:"totalTasks"`
	OverallOnTimePercentage  float64       `json:"overallOnTimePercentage"`
	OverallDelayedPercentage float64       `json:"overallDelayedPercentage"`
	OverallPendingPercentage float64       `json:"overallPendingPercentage"`
	ShopMetrics              []ShopMetrics `json:"shopMetrics"`
}

// calcPercentage は小数第1位で丸めた割合。total が0なら0
func calcPercentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*1000) / 10
}

func (m *ShopMetrics) add(status models.SLAStatus, count int) {
	m.TotalTasks += count
	switch status {
	case models.SLAStatusOnTime:
		m.OnTimeCount += count
	case models.SLAStatusDelayed:
		m.DelayedCount += count
	case models.SLAStatusPending:
		m.PendingCount += count
	}
}

func (m *ShopMetrics) finalize() {
	m.OnTimePercentage = calcPercentage(m.OnTimeCount, m.TotalTasks)
	m.DelayedPercentage = calcPercentage(m.DelayedCount, m.TotalTasks)
	m.PendingPercentage = calcPercentage(m.PendingCount, m.TotalTasks)
}

// GlobalAnalytics は有効な店舗ごとのSLA達成状況と全体の集計を返す
func GlobalAnalytics(ctx context.Context, db *gorm.DB) (*GlobalMetrics, error) {
	db = db.WithContext(ctx)

	var shops []models.Shop
	if err := db.Where("is_active = ?", true).Order("name ASC").Find(&shops).Error; err != nil {
		return nil, fmt.Errorf("list shops: %w", err)
	}

	var rows []struct {
		ShopID    string
		SLAStatus models.SLAStatus `gorm:"column:sla_status"`
		Count     int
	}
	err := db.Model(&models.Task{}).
		Select("shop_id, sla_status, COUNT(*) AS count").
		Group("shop_id, sla_status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count tasks by shop: %w", err)
	}

	byShop := make(map[string][]int, len(rows))
	for i, row := range rows {
		byShop[row.ShopID] = append(byShop[row.ShopID], i)
	}

	shopIDs := make([]string, 0, len(shops))
	result := &GlobalMetrics{
		TotalShops:  len(shops),
		ShopMetrics: make([]ShopMetrics, 0, len(shops)),
	}

	var overall ShopMetrics
	for _, shop := range shops {
		shopIDs = append(shopIDs, shop.ID)

		m := ShopMetrics{ShopID: shop.ID, ShopName: shop.Name}
		for _, i := range byShop[shop.ID] {
			m.add(rows[i].SLAStatus, rows[i].Count)
			overall.add(rows[i].SLAStatus, rows[i].Count)
		}
		m.finalize()
		result.ShopMetrics = append(result.ShopMetrics, m)
	}

	if len(shopIDs) > 0 {
		if err := db.Model(&models.Review{}).Where("shop_id IN ?", shopIDs).Count(&result.TotalReviews).Error; err != nil {
			return nil, fmt.Errorf("count reviews: %w", err)
		}
	}

	overall.finalize()
	result.TotalTasks = overall.TotalTasks
	result.OverallOnTimePercentage = overall.OnTimePercentage
	result.OverallDelayedPercentage = overall.DelayedPercentage
	result.OverallPendingPercentage = overall.PendingPercentage

	return result, nil
}

const (
	defaultTrendDays = 30
	recentTaskLimit  = 20
)

type SectionMetrics struct {
	SectionID        string  `json:"sectionId"`
	SectionName      string  `json:"sectionName"`
	TotalTasks       int     `json:"totalTasks"`
	OnTimeCount      int     `json:"onTimeCount"`
	DelayedCount     int     `json:"delayedCount"`
	PendingCount     int     `json:"pendingCount"`
	OnTimePercentage float64 `json:"onTimePercentage"`
}

type TLMetrics struct {
	UserID                string   `json:"userId"`
	UserName              string   `json:"userName"`
	Sections              []string `json:"sections"`
	TotalTasks            int      `json:"totalTasks"`
	OnTimeCount           int      `json:"onTimeCount"`
	DelayedCount          int      `json:"delayedCount"`
	PendingCount          int      `json:"pendingCount"`
	AverageResolutionTime float64  `json:"averageResolutionTime"` // 時間
}

// ShopReport は店舗管理者向けの集計
type ShopReport struct {
	Shop              NamedRef         `json:"shop"`
	TotalTasks        int              `json:"totalTasks"`
	OnTimePercentage  float64          `json:"onTimePercentage"`
	DelayedPercentage float64          `json:"delayedPercentage"`
	PendingPercentage float64          `json:"pendingPercentage"`
	SectionMetrics    []SectionMetrics `json:"sectionMetrics"`
	TLMetrics         []TLMetrics      `json:"tlMetrics"`
}

// TLReport はTL本人向けの集計。件数は直近のタスクから数える
type TLReport struct {
	TLMetrics
	RecentTasks []TaskView `json:"recentTasks"`
}

// DailyReviewTrend は1日分（UTC）のレビュー件数
type DailyReviewTrend struct {
	Date     string `json:"date"`
	Positive int    `json:"positive"`
	Negative int    `json:"negative"`
	Total    int    `json:"total"`
}

// resolutionTally は解決済みタスクの所要時間を平均する
type resolutionTally struct {
	hours int
	count int
}

func (r *resolutionTally) add(task models.Task) {
	if task.ResolvedAt == nil {
		return
	}
	r.hours += HoursElapsed(task.AssignedAt, *task.ResolvedAt)
	r.count++
}

// average は小数第1位で丸めた平均時間。解決済みがなければ0
func (r resolutionTally) average() float64 {
	if r.count == 0 {
		return 0
	}
	return math.Round(float64(r.hours)/float64(r.count)*10) / 10
}

// countByStatus は SLAステータスごとの件数を数える
func countByStatus(tasks []models.Task) (onTime, delayed, pending int) {
	for _, task := range tasks {
		switch task.SLAStatus {
		case models.SLAStatusOnTime:
			onTime++
		case models.SLAStatusDelayed:
			delayed++
		case models.SLAStatusPending:
			pending++
		}
	}
	return onTime, delayed, pending
}

// sectionNamesByUser は担当表からユーザーごとのセクション名を引く。shopID が空なら全店舗
func sectionNamesByUser(db *gorm.DB, userIDs []string, shopID string) (map[string][]string, error) {
	var rows []struct {
		UserID      string
		SectionName string
	}

	q := db.Model(&models.UserSection{}).
		Select("user_sections.user_id AS user_id, sections.name AS section_name").
		Joins("JOIN sections ON sections.id = user_sections.section_id AND sections.deleted_at IS NULL").
		Where("user_sections.user_id IN ?", userIDs)
	if shopID != "" {
		q = q.Where("user_sections.shop_id = ?", shopID)
	}
	if err := q.Order("sections.name ASC").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list user sections: %w", err)
	}

	names := make(map[string][]string, len(userIDs))
	seen := make(map[string]bool, len(rows))
	for _, row := range rows {
		key := row.UserID + "\x00" + row.SectionName
		if seen[key] {
			continue
		}
		seen[key] = true
		names[row.UserID] = append(names[row.UserID], row.SectionName)
	}
	return names, nil
}

// ShopAnalytics は店舗のセクション別・TL別のSLA達成状況を返す
func ShopAnalytics(ctx context.Context, db *gorm.DB, shopID string) (*ShopReport, error) {
	db = db.WithContext(ctx)

	var shop models.Shop
	err := db.Where("id = ?", shopID).First(&shop).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrShopNotFound, shopID)
	}
	if err != nil {
		return nil, fmt.Errorf("find shop %s: %w", shopID, err)
	}

	var tasks []models.Task
	if err := db.Where("shop_id = ?", shopID).Order("assigned_at ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks for shop %s: %w", shopID, err)
	}

	onTime, delayed, pending := countByStatus(tasks)
	report := &ShopReport{
		Shop:              NamedRef{ID: shop.ID, Name: shop.Name},
		TotalTasks:        len(tasks),
		OnTimePercentage:  calcPercentage(onTime, len(tasks)),
		DelayedPercentage: calcPercentage(delayed, len(tasks)),
		PendingPercentage: calcPercentage(pending, len(tasks)),
		SectionMetrics:    make([]SectionMetrics, 0),
		TLMetrics:         make([]TLMetrics, 0),
	}

	bySection := make(map[string][]models.Task)
	byOwner := make(map[string][]models.Task)
	for _, task := range tasks {
		bySection[task.SectionID] = append(bySection[task.SectionID], task)
		if task.AssignedToID != nil {
			byOwner[*task.AssignedToID] = append(byOwner[*task.AssignedToID], task)
		}
	}

	if len(bySection) > 0 {
		sectionIDs := make([]string, 0, len(bySection))
		for id := range bySection {
			sectionIDs = append(sectionIDs, id)
		}

		var sections []models.Section
		if err := db.Unscoped().Where("id IN ?", sectionIDs).Find(&sections).Error; err != nil {
			return nil, fmt.Errorf("list sections: %w", err)
		}
		sectionNames := make(map[string]string, len(sections))
		for _, section := range sections {
			sectionNames[section.ID] = section.Name
		}

		for _, id := range sectionIDs {
			sectionTasks := bySection[id]
			onTime, delayed, pending := countByStatus(sectionTasks)
			report.SectionMetrics = append(report.SectionMetrics, SectionMetrics{
				SectionID:        id,
				SectionName:      sectionNames[id],
				TotalTasks:       len(sectionTasks),
				OnTimeCount:      onTime,
				DelayedCount:     delayed,
				PendingCount:     pending,
				OnTimePercentage: calcPercentage(onTime, len(sectionTasks)),
			})
		}
		sort.Slice(report.SectionMetrics, func(i, j int) bool {
			return report.SectionMetrics[i].SectionName < report.SectionMetrics[j].SectionName
		})
	}

	if len(byOwner) > 0 {
		ownerIDs := make([]string, 0, len(byOwner))
		for id := range byOwner {
			ownerIDs = append(ownerIDs, id)
		}

		// 削除済みのTLのタスクも集計には含める
		var users []models.User
		if err := db.Unscoped().Where("id IN ?", ownerIDs).Order("name ASC").Find(&users).Error; err != nil {
			return nil, fmt.Errorf("list team leads: %w", err)
		}

		sectionsByUser, err := sectionNamesByUser(db, ownerIDs, shopID)
		if err != nil {
			return nil, err
		}

		for _, user := range users {
			ownerTasks := byOwner[user.ID]
			onTime, delayed, pending := countByStatus(ownerTasks)

			var tally resolutionTally
			for _, task := range ownerTasks {
				tally.add(task)
			}

			report.TLMetrics = append(report.TLMetrics, TLMetrics{
				UserID:                user.ID,
				UserName:              DisplayName(&user),
				Sections:              nonNil(sectionsByUser[user.ID]),
				TotalTasks:            len(ownerTasks),
				OnTimeCount:           onTime,
				DelayedCount:          delayed,
				PendingCount:          pending,
				AverageResolutionTime: tally.average(),
			})
		}
	}

	return report, nil
}

// TLAnalytics はTLの直近タスクと対応状況を返す
func TLAnalytics(ctx context.Context, db *gorm.DB, userID string, now time.Time) (*TLReport, error) {
	db = db.WithContext(ctx)

	var user models.User
	err := db.Where("id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", userID, err)
	}

	var tasks []models.Task
	err = db.Where("assigned_to_id = ?", userID).
		Order("assigned_at DESC").
		Limit(recentTaskLimit).
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("list tasks for user %s: %w", userID, err)
	}

	sectionsByUser, err := sectionNamesByUser(db, []string{userID}, "")
	if err != nil {
		return nil, err
	}

	onTime, delayed, pending := countByStatus(tasks)
	var tally resolutionTally
	views := make([]TaskView, 0, len(tasks))
	for _, task := range tasks {
		tally.add(task)
		views = append(views, NewTaskView(task, now))
	}

	return &TLReport{
		TLMetrics: TLMetrics{
			UserID:                user.ID,
			UserName:              DisplayName(&user),
			Sections:              nonNil(sectionsByUser[user.ID]),
			TotalTasks:            len(tasks),
			OnTimeCount:           onTime,
			DelayedCount:          delayed,
			PendingCount:          pending,
			AverageResolutionTime: tally.average(),
		},
		RecentTasks: views,
	}, nil
}

// ReviewTrends は直近 days 日のレビュー件数を日別に返す。shopID が空なら全店舗
func ReviewTrends(ctx context.Context, db *gorm.DB, shopID string, days int, now time.Time) ([]DailyReviewTrend, error) {
	if days < 1 {
		days = defaultTrendDays
	}
	since := now.AddDate(0, 0, -days)

	q := db.WithContext(ctx).Model(&models.Review{}).Where("created_at >= ?", since)
	if shopID != "" {
		q = q.Where("shop_id = ?", shopID)
	}

	var reviews []models.Review
	if err := q.Select("id", "rating", "created_at").Order("created_at ASC").Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("list reviews since %s: %w", since.Format(time.RFC3339), err)
	}

	trends := make([]DailyReviewTrend, 0)
	index := make(map[string]int)
	for _, review := range reviews {
		date := review.CreatedAt.UTC().Format("2006-01-02")
		i, ok := index[date]
		if !ok {
			trends = append(trends, DailyReviewTrend{Date: date})
			i = len(trends) - 1
			index[date] = i
		}

		if review.IsNegative() {
			trends[i].Negative++
		} else {
			trends[i].Positive++
		}
		trends[i].Total++
	}

	return trends, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
