package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"shop-review-tasks/services"
)

// HandleTallyWebhook は Tally.so のフォーム回答をレビューとして保存する
// タスク化は日次バッチで行うので、ここでは保存だけ
func HandleTallyWebhook(db *gorm.DB, dir services.Directory) gin.HandlerFunc {
	return func(c *gin.Context) {
		var payload services.TallyWebhookPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			log.Printf("invalid tally payload: %v", err)
			respondError(c, http.StatusBadRequest, "invalid payload structure")
			return
		}

		log.Printf("📨 tally webhook received: event=%s, type=%s, submission=%s",
			payload.EventID, payload.EventType, payload.Data.SubmissionID)

		if payload.EventType != services.TallyEventFormResponse {
			log.Printf("ignoring non-form-response event: %s", payload.EventType)
			c.JSON(http.StatusOK, gin.H{"success": true, "message": "event type ignored"})
			return
		}

		parsed, err := services.ParseTallyPayload(&payload)
		if err != nil {
			respondServiceError(c, err)
			return
		}

		review, created, err := services.StoreReview(c.Request.Context(), db, parsed)
		if err != nil {
			respondServiceError(c, err)
			return
		}

		isNegative := review.IsNegative()
		message := "positive review stored. no task required"
		if isNegative {
			message = "review stored. task will be created during next assignment run"
			hasOwner, err := services.HasResponsibleUser(c.Request.Context(), dir, review.ShopID, review.SectionID)
			if err != nil {
				// レビューは保存済み。再送されても submission ID で重複しない
				respondServiceError(c, err)
				return
			}
			if !hasOwner {
				log.Printf("⚠️ no team lead responsible for shop %s / section %s", review.ShopID, review.SectionID)
				message = "review stored. no team lead is responsible for this section, task will be unassigned"
			}
		}

		respondOK(c, gin.H{
			"reviewId":   review.ID,
			"rating":     review.Rating,
			"isNegative": isNegative,
			"duplicate":  !created,
			"message":    message,
		})
	}
}

// HandleTallyHealth は webhook エンドポイントの死活確認
func HandleTallyHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "tally webhook endpoint is active",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
