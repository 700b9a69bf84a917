package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-review-tasks/models"
)

func tallyPayload(submissionID string, fields ...TallyField) *TallyWebhookPayload {
	return &TallyWebhookPayload{
		EventID:   "evt-1",
		EventType: TallyEventFormResponse,
		Data: TallyData{
			SubmissionID: submissionID,
			Fields:       fields,
		},
	}
}

func TestParseTallyPayload(t *testing.T) {
	payload := tallyPayload("sub-1",
		TallyField{Key: "q1", Label: "Shop", Type: "DROPDOWN", Value: []interface{}{"opt-a"},
			Options: []TallyOption{{ID: "opt-a", Text: "Downtown Store"}, {ID: "opt-b", Text: "Mall Branch"}}},
		TallyField{Key: "q2", Label: "Section", Type: "DROPDOWN", Value: "Men Casual"},
		TallyField{Key: "q3", Label: "Rating", Type: "RATING", Value: float64(2)},
		TallyField{Key: "q4", Label: "Comment", Type: "LONG_TEXT", Value: "  Fitting room was dirty "},
		TallyField{Key: "q5", Label: "Name", Type: "INPUT_TEXT", Value: "Asha"},
		TallyField{Key: "q6", Label: "Phone", Type: "INPUT_PHONE_NUMBER", Value: "+91 98765 43210"},
		TallyField{Key: "q7", Label: "Email", Type: "INPUT_EMAIL", Value: nil},
	)

	parsed, err := ParseTallyPayload(payload)
	require.NoError(t, err)

	assert.Equal(t, "Downtown Store", parsed.ShopName)
	assert.Equal(t, "Men Casual", parsed.SectionName)
	assert.Equal(t, 2, parsed.Rating)
	assert.Equal(t, "Fitting room was dirty", parsed.Comment)
	require.NotNil(t, parsed.CustomerName)
	assert.Equal(t, "Asha", *parsed.CustomerName)
	require.NotNil(t, parsed.CustomerPhone)
	assert.Equal(t, "+91 98765 43210", *parsed.CustomerPhone)
	assert.Nil(t, parsed.CustomerEmail)
	assert.Equal(t, "sub-1", parsed.SubmissionID)
}

func TestParseTallyPayload_LabelFallbackOrder(t *testing.T) {
	tests := []struct {
		name         string
		fields       []TallyField
		expectShop   string
		expectName   string
		expectRating int
	}{
		{
			name: "店舗名の項目は顧客名に使われない",
			fields: []TallyField{
				{Label: "Shop Name", Value: "Mall Branch"},
				{Label: "Your Name", Value: "Ravi"},
				{Label: "Department", Value: "Gown"},
				{Label: "Star rating", Value: "4 stars"},
			},
			expectShop:   "Mall Branch",
			expectName:   "Ravi",
			expectRating: 4,
		},
		{
			name: "完全一致が部分一致より優先される",
			fields: []TallyField{
				{Label: "Store manager", Value: "Mr. Rao"},
				{Label: "Store", Value: "High Street Outlet"},
				{Label: "Category", Value: "SKD"},
				{Label: "Score", Value: float64(1)},
				{Label: "Customer Name", Value: "Meera"},
			},
			expectShop:   "High Street Outlet",
			expectName:   "Meera",
			expectRating: 1,
		},
		{
			name: "キーワードは先頭から試す",
			fields: []TallyField{
				{Label: "Branch", Value: "Mall Branch"},
				{Label: "Location", Value: "Delhi"},
				{Label: "Section", Value: "Gown"},
				{Label: "Rating", Value: "3"},
			},
			expectShop:   "Delhi",
			expectRating: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := ParseTallyPayload(tallyPayload("sub", tt.fields...))
			require.NoError(t, err)
			assert.Equal(t, tt.expectShop, parsed.ShopName)
			assert.Equal(t, tt.expectRating, parsed.Rating)
			if tt.expectName == "" {
				assert.Nil(t, parsed.CustomerName)
			} else {
				require.NotNil(t, parsed.CustomerName)
				assert.Equal(t, tt.expectName, *parsed.CustomerName)
			}
		})
	}
}

func TestParseTallyPayload_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		fields []TallyField
	}{
		{
			name: "店舗がない",
			fields: []TallyField{
				{Label: "Section", Value: "Gown"},
				{Label: "Rating", Value: float64(2)},
			},
		},
		{
			name: "評価がない",
			fields: []TallyField{
				{Label: "Shop", Value: "Mall Branch"},
				{Label: "Section", Value: "Gown"},
			},
		},
		{
			name: "評価が範囲外",
			fields: []TallyField{
				{Label: "Shop", Value: "Mall Branch"},
				{Label: "Section", Value: "Gown"},
				{Label: "Rating", Value: float64(9)},
			},
		},
		{
			name: "評価が数字でない",
			fields: []TallyField{
				{Label: "Shop", Value: "Mall Branch"},
				{Label: "Section", Value: "Gown"},
				{Label: "Rating", Value: "great"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTallyPayload(tallyPayload("sub", tt.fields...))
			assert.ErrorIs(t, err, ErrInvalidPayload)
		})
	}

	_, err := ParseTallyPayload(nil)
	assert.ErrorIs(t, err, ErrInvalidPayload)
}

func TestStoreReview(t *testing.T) {
	db := setupTestDB(t)
	seedShopAndSection(t, db, "S1", "Downtown Store", "men-casual", "Men Casual")

	parsed := &ParsedReview{
		ShopName:     "downtown store",
		SectionName:  "MEN CASUAL",
		Rating:       2,
		Comment:      "Long queue at billing",
		SubmissionID: "sub-100",
	}

	review, created, err := StoreReview(context.Background(), db, parsed)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "S1", review.ShopID)
	assert.Equal(t, "men-casual", review.SectionID)
	assert.False(t, review.IsProcessed)

	// 同じ submission ID は重複登録しない
	again, created, err := StoreReview(context.Background(), db, parsed)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, review.ID, again.ID)

	var count int64
	db.Model(&models.Review{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestStoreReview_UnknownShopOrSection(t *testing.T) {
	db := setupTestDB(t)
	seedShopAndSection(t, db, "S1", "Downtown Store", "men-casual", "Men Casual")

	_, _, err := StoreReview(context.Background(), db, &ParsedReview{ShopName: "Nowhere", SectionName: "Men Casual", Rating: 2})
	assert.ErrorIs(t, err, ErrShopNotFound)
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = StoreReview(context.Background(), db, &ParsedReview{ShopName: "Downtown Store", SectionName: "Toys", Rating: 2})
	assert.ErrorIs(t, err, ErrSectionNotFound)
}
