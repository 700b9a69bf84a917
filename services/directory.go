package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"shop-review-tasks/models"
)

// FindResponsibleUser は店舗・セクションの担当TL（有効なユーザーのみ）を返す
// 担当がいなければ (nil, nil)
func (s *GormStore) FindResponsibleUser(ctx context.Context, shopID, sectionID string) (*models.User, error) {
	var user models.User

	err := s.db.WithContext(ctx).
		Joins("JOIN user_sections ON user_sections.user_id = users.id").
		Where("user_sections.shop_id = ? AND user_sections.section_id = ?", shopID, sectionID).
		Where("users.role = ? AND users.is_active = ?", models.RoleTL, true).
		Order("user_sections.created_at ASC").
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find responsible user (shop: %s, section: %s): %w", shopID, sectionID, err)
	}

	return &user, nil
}

// HasResponsibleUser は担当TLが設定済みか確認する
func HasResponsibleUser(ctx context.Context, dir Directory, shopID, sectionID string) (bool, error) {
	user, err := dir.FindResponsibleUser(ctx, shopID, sectionID)
	if err != nil {
		return false, err
	}
	return user != nil, nil
}
