package handlers

import (
	"crypto/subtle"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"shop-review-tasks/services"
)

// RequireCronSecret は Authorization: Bearer <secret> のリクエストだけ通す
func RequireCronSecret(secret string) gin.HandlerFunc {
	expected := []byte("Bearer " + secret)

	return func(c *gin.Context) {
		got := []byte(c.GetHeader("Authorization"))
		if subtle.ConstantTimeCompare(got, expected) != 1 {
			log.Printf("⚠️ unauthorized cron trigger attempt from %s", c.ClientIP())
			respondError(c, http.StatusUnauthorized, "unauthorized")
			c.Abort()
			return
		}
		c.Next()
	}
}

// HandleRunDailyAssignment は日次割り当てを手動実行する
func HandleRunDailyAssignment(engine *services.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		summary := engine.RunDailyAssignment(c.Request.Context())

		c.JSON(http.StatusOK, gin.H{
			"success": summary.Success,
			"data": gin.H{
				"reviewsProcessed": summary.ReviewsProcessed,
				"tasksCreated":     summary.TasksCreated,
				"errors":           summary.Errors,
				"executedAt":       time.Now().UTC().Format(time.RFC3339),
			},
		})
	}
}

// HandleRunSLAUpdate は未解決タスクのSLA再計算を手動実行する
func HandleRunSLAUpdate(engine *services.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := engine.SweepOpenTasks(c.Request.Context())
		if err != nil {
			respondServiceError(c, err)
			return
		}

		respondOK(c, gin.H{
			"tasksInspected": result.TasksInspected,
			"tasksChanged":   result.TasksChanged,
			"executedAt":     time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// HandleListCronJobLogs は直近のバッチ実行ログを返す
func HandleListCronJobLogs(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid limit")
			return
		}

		logs, err := services.ListCronJobLogs(c.Request.Context(), db, limit)
		if err != nil {
			respondServiceError(c, err)
			return
		}

		respondOK(c, logs)
	}
}
