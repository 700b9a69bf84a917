package services

import (
	"context"
	"fmt"
	"log"

	"github.com/slack-go/slack"

	"shop-review-tasks/models"
)

// Notifier はタスク割り当ての通知先
type Notifier interface {
	NotifyTaskAssigned(ctx context.Context, task *models.Task, review *models.Review, owner *models.User) error
}

// SlackNotifier は Slack にタスク割り当てを投稿する
// channelID が空、またはアーカイブ済みなら担当TLへのDMとして送る
type SlackNotifier struct {
	client    *slack.Client
	channelID string
}

// NewSlackNotifier は SlackNotifier を作成する。apiURL が空なら Slack 本番のAPIを使う
func NewSlackNotifier(token, channelID, apiURL string) *SlackNotifier {
	var opts []slack.Option
	if apiURL != "" {
		opts = append(opts, slack.OptionAPIURL(apiURL))
	}

	return &SlackNotifier{
		client:    slack.New(token, opts...),
		channelID: channelID,
	}
}

func (n *SlackNotifier) NotifyTaskAssigned(ctx context.Context, task *models.Task, review *models.Review, owner *models.User) error {
	channel := n.resolveDestination(ctx, owner)
	if channel == "" {
		log.Printf("no slack destination for task %s. skip", task.ID)
		return nil
	}

	blocks := CreateTaskAssignedBlocks(task, review, owner)
	fallback := fmt.Sprintf("New negative review assigned to %s", DisplayName(owner))

	_, ts, err := n.client.PostMessageContext(ctx, channel,
		slack.MsgOptionText(fallback, false),
		slack.MsgOptionBlocks(blocks...),
	)
	if err != nil {
		return fmt.Errorf("slack post message (channel: %s): %w", channel, err)
	}

	log.Printf("slack message sent: ts=%s, channel=%s, task=%s", ts, channel, task.ID)
	return nil
}
