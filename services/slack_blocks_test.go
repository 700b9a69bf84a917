package services

import (
	"testing"
	"time"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-review-tasks/models"
)

func TestSlackBlockBuilder(t *testing.T) {
	builder := NewSlackBlockBuilder()

	// 空文字は無視される
	result := builder.AddSection("").AddContext("").AddFields()
	assert.Same(t, builder, result)
	assert.Empty(t, builder.Build())

	blocks := builder.
		AddSection("hello").
		AddFields("*a*\n1", "*b*\n2").
		AddContext("footer").
		Build()
	require.Len(t, blocks, 3)

	section, ok := blocks[0].(*slack.SectionBlock)
	require.True(t, ok)
	assert.Equal(t, slack.MarkdownType, section.Text.Type)
	assert.Equal(t, "hello", section.Text.Text)

	fields, ok := blocks[1].(*slack.SectionBlock)
	require.True(t, ok)
	assert.Nil(t, fields.Text)
	require.Len(t, fields.Fields, 2)
	assert.Equal(t, "*b*\n2", fields.Fields[1].Text)

	context, ok := blocks[2].(*slack.ContextBlock)
	require.True(t, ok)
	require.Len(t, context.ContextElements.Elements, 1)
	text, ok := context.ContextElements.Elements[0].(*slack.TextBlockObject)
	require.True(t, ok)
	assert.Equal(t, "footer", text.Text)
}

func TestRatingStars(t *testing.T) {
	tests := []struct {
		rating int
		want   string
	}{
		{1, "★☆☆☆☆"},
		{3, "★★★☆☆"},
		{5, "★★★★★"},
		{0, "☆☆☆☆☆"},
		{9, "★★★★★"},
		{-1, "☆☆☆☆☆"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RatingStars(tt.rating))
	}
}

func TestCreateTaskAssignedBlocks(t *testing.T) {
	assignedAt := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	task := &models.Task{ID: "task-1", AssignedAt: assignedAt}
	review := &models.Review{Rating: 2, Comment: "  Rude staff  "}
	owner := &models.User{ID: "U1", Name: "Priya", SlackUserID: "UPRIYA"}

	blocks := CreateTaskAssignedBlocks(task, review, owner)
	require.Len(t, blocks, 4)

	header := blocks[0].(*slack.SectionBlock)
	assert.Contains(t, header.Text.Text, "<@UPRIYA>")

	fields := blocks[1].(*slack.SectionBlock)
	assert.Contains(t, fields.Fields[0].Text, "★★☆☆☆ (2/5)")
	// 期限は割り当てから24時間後
	assert.Contains(t, fields.Fields[1].Text, "<!date^1741683600^")

	comment := blocks[2].(*slack.SectionBlock)
	assert.Equal(t, "> Rude staff", comment.Text.Text)

	footer := blocks[3].(*slack.ContextBlock)
	assert.Equal(t, "Task ID: `task-1`", footer.ContextElements.Elements[0].(*slack.TextBlockObject).Text)
}

func TestCreateTaskAssignedBlocks_EmptyComment(t *testing.T) {
	task := &models.Task{ID: "task-1", AssignedAt: time.Now()}
	review := &models.Review{Rating: 1}

	blocks := CreateTaskAssignedBlocks(task, review, nil)
	require.Len(t, blocks, 4)

	comment := blocks[2].(*slack.SectionBlock)
	assert.Equal(t, "_(no comment)_", comment.Text.Text)
}
