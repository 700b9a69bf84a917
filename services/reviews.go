package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"shop-review-tasks/models"
)

const TallyEventFormResponse = "FORM_RESPONSE"

// TallyWebhookPayload は Tally.so のフォーム回答 webhook
type TallyWebhookPayload struct {
	EventID   string    `json:"eventId"`
	EventType string    `json:"eventType"`
	CreatedAt string    `json:"createdAt"`
	Data      TallyData `json:"data"`
}

type TallyData struct {
	ResponseID   string       `json:"responseId"`
	SubmissionID string       `json:"submissionId"`
	RespondentID string       `json:"respondentId"`
	FormID       string       `json:"formId"`
	FormName     string       `json:"formName"`
	CreatedAt    string       `json:"createdAt"`
	Fields       []TallyField `json:"fields"`
}

type TallyField struct {
	Key     string        `json:"key"`
	Label   string        `json:"label"`
	Type    string        `json:"type"`
	Value   interface{}   `json:"value"`
	Options []TallyOption `json:"options,omitempty"`
}

type TallyOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// ParsedReview はフォーム回答から取り出したレビュー
type ParsedReview struct {
	ShopName      string
	SectionName   string
	Rating        int
	Comment       string
	CustomerName  *string
	CustomerPhone *string
	CustomerEmail *string
	SubmissionID  string
}

// reviewField はフォーム項目のラベルと対応付ける対象
type reviewField int

const (
	fieldShop reviewField = iota
	fieldSection
	fieldRating
	fieldComment
	fieldCustomerName
	fieldCustomerPhone
	fieldCustomerEmail
)

// reviewFieldLabels はラベルのキーワード。この順に対象を解決し、キーワードも先頭から試す
var reviewFieldLabels = []struct {
	field    reviewField
	keywords []string
}{
	{fieldShop, []string{"shop", "store", "location", "branch"}},
	{fieldSection, []string{"section", "department", "category"}},
	{fieldRating, []string{"rating", "star", "score"}},
	{fieldComment, []string{"comment", "feedback", "review", "message"}},
	{fieldCustomerName, []string{"customer name", "name"}},
	{fieldCustomerPhone, []string{"phone", "mobile", "contact"}},
	{fieldCustomerEmail, []string{"email"}},
}

var digitsPattern = regexp.MustCompile(`\d+`)

// matchReviewFields はフォーム項目を対象ごとに割り当てる
// 完全一致（大文字小文字無視）を部分一致より優先し、一度使った項目は他の対象に使わない
func matchReviewFields(fields []TallyField) map[reviewField]*TallyField {
	matched := make(map[reviewField]*TallyField)
	claimed := make(map[int]bool)

	find := func(keywords []string, exact bool) int {
		for _, keyword := range keywords {
			for i, f := range fields {
				if claimed[i] {
					continue
				}
				label := strings.ToLower(strings.TrimSpace(f.Label))
				if exact && label == keyword {
					return i
				}
				if !exact && strings.Contains(label, keyword) {
					return i
				}
			}
		}
		return -1
	}

	for _, target := range reviewFieldLabels {
		idx := find(target.keywords, true)
		if idx < 0 {
			idx = find(target.keywords, false)
		}
		if idx < 0 {
			continue
		}
		claimed[idx] = true
		matched[target.field] = &fields[idx]
	}

	return matched
}

// FieldText は項目の値を文字列にする。選択式の項目はオプションIDを表示名に変換する
func FieldText(f *TallyField) string {
	if f == nil {
		return ""
	}

	switch v := f.Value.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case []interface{}:
		texts := make([]string, 0, len(v))
		for _, item := range v {
			id := fmt.Sprint(item)
			text := id
			for _, opt := range f.Options {
				if opt.ID == id {
					text = opt.Text
					break
				}
			}
			texts = append(texts, text)
		}
		return strings.Join(texts, ", ")
	default:
		return fmt.Sprint(v)
	}
}

// parseRating は数値、または "4 stars" のような文字列の最初の数字を評価として読む
func parseRating(f *TallyField) int {
	if f == nil {
		return 0
	}

	if v, ok := f.Value.(float64); ok {
		return int(v)
	}

	match := digitsPattern.FindString(FieldText(f))
	if match == "" {
		return 0
	}
	rating, err := strconv.Atoi(match)
	if err != nil {
		return 0
	}
	return rating
}

func optionalText(f *TallyField) *string {
	text := FieldText(f)
	if text == "" {
		return nil
	}
	return &text
}

// ParseTallyPayload は webhook からレビュー内容を取り出す
func ParseTallyPayload(payload *TallyWebhookPayload) (*ParsedReview, error) {
	if payload == nil {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidPayload)
	}

	matched := matchReviewFields(payload.Data.Fields)

	shopName := FieldText(matched[fieldShop])
	sectionName := FieldText(matched[fieldSection])
	if shopName == "" || sectionName == "" || matched[fieldRating] == nil {
		log.Printf("missing required fields in tally payload (submission: %s)", payload.Data.SubmissionID)
		return nil, fmt.Errorf("%w: shop, section and rating are required", ErrInvalidPayload)
	}

	rating := parseRating(matched[fieldRating])
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating %d out of range", ErrInvalidPayload, rating)
	}

	return &ParsedReview{
		ShopName:      shopName,
		SectionName:   sectionName,
		Rating:        rating,
		Comment:       FieldText(matched[fieldComment]),
		CustomerName:  optionalText(matched[fieldCustomerName]),
		CustomerPhone: optionalText(matched[fieldCustomerPhone]),
		CustomerEmail: optionalText(matched[fieldCustomerEmail]),
		SubmissionID:  payload.Data.SubmissionID,
	}, nil
}

// StoreReview はレビューを保存する。同じ submission ID のレビューが既にあればそれを返す
// 2つ目の戻り値は新規作成したかどうか
func StoreReview(ctx context.Context, db *gorm.DB, parsed *ParsedReview) (*models.Review, bool, error) {
	db = db.WithContext(ctx)

	var shop models.Shop
	err := db.Where("LOWER(name) = LOWER(?) AND is_active = ?", parsed.ShopName, true).First(&shop).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("%w: %s", ErrShopNotFound, parsed.ShopName)
	}
	if err != nil {
		return nil, false, fmt.Errorf("find shop %s: %w", parsed.ShopName, err)
	}

	var section models.Section
	err = db.Where("LOWER(name) = LOWER(?) AND is_active = ?", parsed.SectionName, true).First(&section).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("%w: %s", ErrSectionNotFound, parsed.SectionName)
	}
	if err != nil {
		return nil, false, fmt.Errorf("find section %s: %w", parsed.SectionName, err)
	}

	var submissionID *string
	if parsed.SubmissionID != "" {
		id := parsed.SubmissionID
		submissionID = &id

		var existing models.Review
		err := db.Where("tally_submission_id = ?", id).First(&existing).Error
		if err == nil {
			log.Printf("review already exists: %s", id)
			return &existing, false, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, fmt.Errorf("find review by submission %s: %w", id, err)
		}
	}

	review := models.Review{
		ID:                uuid.NewString(),
		TallySubmissionID: submissionID,
		ShopID:            shop.ID,
		SectionID:         section.ID,
		Rating:            parsed.Rating,
		Comment:           parsed.Comment,
		CustomerName:      parsed.CustomerName,
		CustomerPhone:     parsed.CustomerPhone,
		CustomerEmail:     parsed.CustomerEmail,
	}
	if err := db.Create(&review).Error; err != nil {
		return nil, false, fmt.Errorf("create review: %w", err)
	}

	log.Printf("✅ review stored: id=%s, shop=%s, section=%s, rating=%d", review.ID, shop.Name, section.Name, review.Rating)
	return &review, true, nil
}
