package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"shop-review-tasks/models"
	"shop-review-tasks/services"
)

type resolveTaskRequest struct {
	Remarks string `json:"remarks"`
}

// parseDateParam は RFC3339 か YYYY-MM-DD を受け付ける
func parseDateParam(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseTaskFilter(c *gin.Context) (services.TaskFilter, error) {
	filter := services.TaskFilter{
		Status:       models.TaskStatus(c.Query("status")),
		SLAStatus:    models.SLAStatus(c.Query("slaStatus")),
		ShopID:       c.Query("shopId"),
		SectionID:    c.Query("sectionId"),
		AssignedToID: c.Query("assignedToId"),
	}

	var err error
	if filter.StartDate, err = parseDateParam(c.Query("startDate")); err != nil {
		return filter, err
	}
	if filter.EndDate, err = parseDateParam(c.Query("endDate")); err != nil {
		return filter, err
	}
	if page := c.Query("page"); page != "" {
		if filter.Page, err = strconv.Atoi(page); err != nil {
			return filter, err
		}
	}
	if pageSize := c.Query("pageSize"); pageSize != "" {
		if filter.PageSize, err = strconv.Atoi(pageSize); err != nil {
			return filter, err
		}
	}

	return filter, nil
}

// HandleListTasks はタスク一覧を返す
func HandleListTasks(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, err := parseTaskFilter(c)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid query parameter: "+err.Error())
			return
		}

		page, err := services.ListTasks(c.Request.Context(), db, filter, time.Now())
		if err != nil {
			respondServiceError(c, err)
			return
		}

		respondOK(c, page)
	}
}

// HandleGetTask はタスク詳細を返す
func HandleGetTask(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		detail, err := services.GetTaskDetail(c.Request.Context(), db, c.Param("taskId"), time.Now())
		if err != nil {
			respondServiceError(c, err)
			return
		}

		respondOK(c, detail)
	}
}

// HandleResolveTask はタスクを解決済みにする
func HandleResolveTask(engine *services.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req resolveTaskRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body")
			return
		}

		task, err := engine.Resolve(c.Request.Context(), c.Param("taskId"), req.Remarks)
		if err != nil {
			respondServiceError(c, err)
			return
		}

		respondOK(c, services.NewTaskView(*task, time.Now()))
	}
}
