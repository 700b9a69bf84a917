package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shop-review-tasks/models"
	"shop-review-tasks/services"
)

const testCronSecret = "test-cron-secret"

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := models.Open("sqlite", ":memory:", &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("fail to open test db: %v", err)
	}
	return db
}

func setupTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	gin.SetMode(gin.TestMode)

	db := setupTestDB(t)
	engine := services.NewEngine(services.NewGormStore(db), nil)

	r := gin.New()
	SetupRouter(r, db, engine, testCronSecret)
	return r, db
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

func performRequest(t *testing.T, r *gin.Engine, method, path string, body interface{}, headers map[string]string) (*httptest.ResponseRecorder, apiResponse) {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w, resp
}

func seedTask(t *testing.T, db *gorm.DB, id string, status models.TaskStatus, assignedAt time.Time) {
	sla := models.SLAStatusPending
	switch status {
	case models.TaskStatusOnTime:
		sla = models.SLAStatusOnTime
	case models.TaskStatusDelayed:
		sla = models.SLAStatusDelayed
	}

	require.NoError(t, db.Create(&models.Task{
		ID:         id,
		ReviewID:   "review-" + id,
		ShopID:     "S1",
		SectionID:  "men-casual",
		Status:     status,
		SLAStatus:  sla,
		AssignedAt: assignedAt,
	}).Error)
}
