package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound は参照先（レビュー・タスク・店舗・セクション）が存在しない
	ErrNotFound = errors.New("not found")
	// ErrInvalidState は現在の状態では受け付けられない操作
	ErrInvalidState = errors.New("invalid state")

	ErrReviewNotFound      = fmt.Errorf("review %w", ErrNotFound)
	ErrTaskNotFound        = fmt.Errorf("task %w", ErrNotFound)
	ErrShopNotFound        = fmt.Errorf("shop %w", ErrNotFound)
	ErrSectionNotFound     = fmt.Errorf("section %w", ErrNotFound)
	ErrUserNotFound        = fmt.Errorf("user %w", ErrNotFound)
	ErrTaskAlreadyResolved = fmt.Errorf("task already resolved: %w", ErrInvalidState)

	ErrRemarksRequired = errors.New("remarks are required")
	ErrInvalidPayload  = errors.New("invalid payload structure")
)
