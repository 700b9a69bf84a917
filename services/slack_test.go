package services

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-review-tasks/models"
)

// matchChannel は chat.postMessage の channel パラメータを確認する
func matchChannel(channel string) gock.MatchFunc {
	return func(req *http.Request, _ *gock.Request) (bool, error) {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			return false, err
		}
		req.Body = io.NopCloser(bytes.NewReader(body))

		values, err := url.ParseQuery(string(body))
		if err != nil {
			return false, err
		}
		return values.Get("channel") == channel, nil
	}
}

func testAssignment() (*models.Task, *models.Review, *models.User) {
	ownerID := "U1"
	task := &models.Task{
		ID:           "task-1",
		ReviewID:     "R1",
		ShopID:       "S1",
		SectionID:    "men-casual",
		AssignedToID: &ownerID,
		Status:       models.TaskStatusPending,
		SLAStatus:    models.SLAStatusPending,
		AssignedAt:   time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	review := &models.Review{ID: "R1", ShopID: "S1", SectionID: "men-casual", Rating: 2, Comment: "Rude staff"}
	owner := &models.User{ID: ownerID, Name: "Priya", Email: "priya@example.com", SlackUserID: "UPRIYA"}
	return task, review, owner
}

func TestSlackNotifier_PostsToChannel(t *testing.T) {
	defer gock.Off()

	mockConversationInfo("C-REVIEWS", false)
	gock.New("https://slack.test").
		Post("/api/chat.postMessage").
		AddMatcher(matchChannel("C-REVIEWS")).
		Reply(200).
		JSON(map[string]interface{}{
			"ok":      true,
			"channel": "C-REVIEWS",
			"ts":      "1234.5678",
		})

	notifier := NewSlackNotifier("xoxb-test", "C-REVIEWS", "https://slack.test/api/")
	task, review, owner := testAssignment()

	err := notifier.NotifyTaskAssigned(context.Background(), task, review, owner)
	assert.NoError(t, err)
	assert.True(t, gock.IsDone(), "すべてのモックが使用されていません")
}

func TestSlackNotifier_FallsBackToDirectMessage(t *testing.T) {
	defer gock.Off()

	gock.New("https://slack.test").
		Post("/api/chat.postMessage").
		AddMatcher(matchChannel("UPRIYA")).
		Reply(200).
		JSON(map[string]interface{}{
			"ok":      true,
			"channel": "D-PRIYA",
			"ts":      "1234.5678",
		})

	notifier := NewSlackNotifier("xoxb-test", "", "https://slack.test/api/")
	task, review, owner := testAssignment()

	err := notifier.NotifyTaskAssigned(context.Background(), task, review, owner)
	assert.NoError(t, err)
	assert.True(t, gock.IsDone(), "すべてのモックが使用されていません")
}

func TestSlackNotifier_SkipsWithoutDestination(t *testing.T) {
	defer gock.Off()
	gock.Intercept()

	notifier := NewSlackNotifier("xoxb-test", "", "https://slack.test/api/")
	task, review, owner := testAssignment()
	owner.SlackUserID = ""

	err := notifier.NotifyTaskAssigned(context.Background(), task, review, owner)
	assert.NoError(t, err)
	assert.False(t, gock.HasUnmatchedRequest())
}

func TestSlackNotifier_APIError(t *testing.T) {
	defer gock.Off()

	mockConversationInfo("C-MISSING", false)
	gock.New("https://slack.test").
		Post("/api/chat.postMessage").
		Reply(200).
		JSON(map[string]interface{}{
			"ok":    false,
			"error": "channel_not_found",
		})

	notifier := NewSlackNotifier("xoxb-test", "C-MISSING", "https://slack.test/api/")
	task, review, owner := testAssignment()

	err := notifier.NotifyTaskAssigned(context.Background(), task, review, owner)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel_not_found")
	assert.Contains(t, err.Error(), "C-MISSING")
}
