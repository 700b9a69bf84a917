package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/slack-go/slack"

	"shop-review-tasks/models"
)

// IsChannelArchived はチャンネルがアーカイブされているかどうかを確認します
func (n *SlackNotifier) IsChannelArchived(ctx context.Context, channelID string) (bool, error) {
	channel, err := n.client.GetConversationInfoContext(ctx, &slack.GetConversationInfoInput{
		ChannelID: channelID,
	})
	if err != nil {
		return false, fmt.Errorf("slack conversations.info (channel: %s): %w", channelID, err)
	}
	return channel.IsArchived, nil
}

// resolveDestination は投稿先を決める
// 通知チャンネルが未設定かアーカイブ済みなら担当TLへのDMにする
func (n *SlackNotifier) resolveDestination(ctx context.Context, owner *models.User) string {
	dm := ""
	if owner != nil {
		dm = owner.SlackUserID
	}

	if n.channelID == "" {
		return dm
	}

	// ユーザーID宛て（DM）はアーカイブされない
	if strings.HasPrefix(n.channelID, "U") || strings.HasPrefix(n.channelID, "D") {
		return n.channelID
	}

	isArchived, err := n.IsChannelArchived(ctx, n.channelID)
	if err != nil {
		log.Printf("channel status check error (channel: %s): %v", n.channelID, err)
		return n.channelID
	}
	if isArchived && dm != "" {
		log.Printf("channel %s is archived, sending to %s directly", n.channelID, DisplayName(owner))
		return dm
	}
	if isArchived {
		log.Printf("channel %s is archived and owner has no slack id", n.channelID)
		return ""
	}

	return n.channelID
}
