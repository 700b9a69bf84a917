package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"shop-review-tasks/services"
)

type globalAnalyticsResponse struct {
	*services.GlobalMetrics
	Trends []services.DailyReviewTrend `json:"trends,omitempty"`
}

type shopAnalyticsResponse struct {
	*services.ShopReport
	Trends []services.DailyReviewTrend `json:"trends,omitempty"`
}

// HandleAnalytics はSLA達成状況を返す
// scope=global（既定）で全店舗、scope=shop&shopId= で店舗別。trends=true で日別レビュー件数も付ける
func HandleAnalytics(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		scope := c.DefaultQuery("scope", "global")
		shopID := c.Query("shopId")
		withTrends := c.Query("trends") == "true"

		days, err := strconv.Atoi(c.DefaultQuery("days", "30"))
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid days")
			return
		}

		var trends []services.DailyReviewTrend
		loadTrends := func(shopID string) bool {
			if !withTrends {
				return true
			}
			trends, err = services.ReviewTrends(ctx, db, shopID, days, time.Now())
			if err != nil {
				respondServiceError(c, err)
				return false
			}
			return true
		}

		switch scope {
		case "global":
			metrics, err := services.GlobalAnalytics(ctx, db)
			if err != nil {
				respondServiceError(c, err)
				return
			}
			if !loadTrends("") {
				return
			}
			respondOK(c, globalAnalyticsResponse{GlobalMetrics: metrics, Trends: trends})

		case "shop":
			if shopID == "" {
				respondError(c, http.StatusBadRequest, "shopId is required for shop scope")
				return
			}
			report, err := services.ShopAnalytics(ctx, db, shopID)
			if err != nil {
				respondServiceError(c, err)
				return
			}
			if !loadTrends(shopID) {
				return
			}
			respondOK(c, shopAnalyticsResponse{ShopReport: report, Trends: trends})

		default:
			respondError(c, http.StatusBadRequest, `invalid scope. use "global" or "shop"`)
		}
	}
}

// HandleTLAnalytics はTL本人向けのダッシュボード集計を返す
func HandleTLAnalytics(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		report, err := services.TLAnalytics(c.Request.Context(), db, c.Param("userId"), time.Now())
		if err != nil {
			respondServiceError(c, err)
			return
		}

		respondOK(c, report)
	}
}
