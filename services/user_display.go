package services

import "shop-review-tasks/models"

// DisplayName はユーザーの表示名を返す
// Name が空なら Email、ユーザーがいなければ "Unassigned"
func DisplayName(user *models.User) string {
	if user == nil {
		return "Unassigned"
	}

	if user.Name != "" {
		return user.Name
	}

	return user.Email
}

// SlackMention は Slack ID があればメンション、なければ表示名を返す
func SlackMention(user *models.User) string {
	if user != nil && user.SlackUserID != "" {
		return "<@" + user.SlackUserID + ">"
	}
	return DisplayName(user)
}
