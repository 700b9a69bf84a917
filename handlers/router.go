package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"shop-review-tasks/services"
)

// SetupRouter はAPIのルーティングを設定する
func SetupRouter(r *gin.Engine, db *gorm.DB, engine *services.Engine, cronSecret string) {
	api := r.Group("/api")

	cron := api.Group("/cron")
	cron.GET("/tasks", HandleListCronJobLogs(db))
	cron.POST("/tasks", RequireCronSecret(cronSecret), HandleRunDailyAssignment(engine))
	cron.POST("/sla", RequireCronSecret(cronSecret), HandleRunSLAUpdate(engine))

	api.GET("/tasks", HandleListTasks(db))
	api.GET("/tasks/:taskId", HandleGetTask(db))
	api.PATCH("/tasks/:taskId", HandleResolveTask(engine))

	api.POST("/webhooks/tally", HandleTallyWebhook(db, services.NewGormStore(db)))
	api.GET("/webhooks/tally", HandleTallyHealth)

	api.GET("/analytics", HandleAnalytics(db))
	api.GET("/analytics/tl/:userId", HandleTLAnalytics(db))
}
