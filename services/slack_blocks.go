package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/slack-go/slack"

	"shop-review-tasks/models"
)

// SlackBlockBuilder Slack Block Kit構築のヘルパー
type SlackBlockBuilder struct {
	blocks []slack.Block
}

// NewSlackBlockBuilder 新しいビルダーを作成
func NewSlackBlockBuilder() *SlackBlockBuilder {
	return &SlackBlockBuilder{
		blocks: make([]slack.Block, 0),
	}
}

// AddSection セクションブロックを追加
func (b *SlackBlockBuilder) AddSection(text string) *SlackBlockBuilder {
	if text == "" {
		return b
	}
	textObj := slack.NewTextBlockObject(slack.MarkdownType, text, false, false)
	b.blocks = append(b.blocks, slack.NewSectionBlock(textObj, nil, nil))
	return b
}

// AddFields 2列表示のフィールド付きセクションを追加
func (b *SlackBlockBuilder) AddFields(fields ...string) *SlackBlockBuilder {
	if len(fields) == 0 {
		return b
	}

	objs := make([]*slack.TextBlockObject, 0, len(fields))
	for _, f := range fields {
		objs = append(objs, slack.NewTextBlockObject(slack.MarkdownType, f, false, false))
	}
	b.blocks = append(b.blocks, slack.NewSectionBlock(nil, objs, nil))
	return b
}

// AddContext 補足テキストを追加
func (b *SlackBlockBuilder) AddContext(text string) *SlackBlockBuilder {
	if text == "" {
		return b
	}
	b.blocks = append(b.blocks, slack.NewContextBlock("", slack.NewTextBlockObject(slack.MarkdownType, text, false, false)))
	return b
}

// Build ブロック配列を取得
func (b *SlackBlockBuilder) Build() []slack.Block {
	return b.blocks
}

// RatingStars は評価を星で表す（例: ★★☆☆☆）
func RatingStars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}

// CreateTaskAssignedBlocks 担当TL向けのタスク割り当てメッセージを作成
func CreateTaskAssignedBlocks(task *models.Task, review *models.Review, owner *models.User) []slack.Block {
	deadline := task.AssignedAt.Add(SLAWindow)

	comment := "_(no comment)_"
	if review != nil && strings.TrimSpace(review.Comment) != "" {
		comment = fmt.Sprintf("> %s", strings.TrimSpace(review.Comment))
	}

	rating := 0
	if review != nil {
		rating = review.Rating
	}

	return NewSlackBlockBuilder().
		AddSection(fmt.Sprintf("%s *🛎️ New negative review assigned to you*", SlackMention(owner))).
		AddFields(
			fmt.Sprintf("*Rating*\n%s (%d/5)", RatingStars(rating), rating),
			fmt.Sprintf("*Resolve by*\n<!date^%d^{date_short_pretty} {time}|%s>", deadline.Unix(), deadline.UTC().Format(time.RFC1123)),
		).
		AddSection(comment).
		AddContext(fmt.Sprintf("Task ID: `%s`", task.ID)).
		Build()
}
