package services

import (
	"context"
	"strings"
	"time"

	"quizpanel/models"
	apperrors "quizpanel/pkg/errors"

	"gorm.io/gorm"
)

type QuestionService struct {
	db *gorm.DB
}

func NewQuestionService(db *gorm.DB) *QuestionService {
	return &QuestionService{db: db}
}

type QuestionContentInput struct {
	LanguageCode string  `json:"language_code" binding:"required"`
	QuestionText string  `json:"question_text" binding:"required"`
	MediaURL     *string `json:"media_url"`
	Explanation  *string `json:"explanation"`
}

type OptionContentInput struct {
	LanguageCode string  `json:"language_code" binding:"required"`
	OptionText   string  `json:"option_text" binding:"required"`
	MediaURL     *string `json:"media_url"`
}

type OptionInput struct {
	OrderIndex *int                 `json:"order_index"`
	IsCorrect  bool                 `json:"is_correct"`
	IsActive   *bool                `json:"is_active"`
	Content    []OptionContentInput `json:"content" binding:"required,min=1,dive"`
}

type CreateQuestionRequest struct {
	QuizID       uint                   `json:"quiz_id" binding:"required"`
	QuestionType string                 `json:"question_type" binding:"required,oneof=text media"`
	OrderIndex   int                    `json:"order_index"`
	IsActive     *bool                  `json:"is_active"`
	Content      []QuestionContentInput `json:"content" binding:"required,min=1,dive"`
	Options      []OptionInput          `json:"options" binding:"required,min=1,dive"`
}

// UpdateQuestionRequest replaces content and options wholesale when they are present.
type UpdateQuestionRequest struct {
	QuestionType *string                `json:"question_type"`
	OrderIndex   *int                   `json:"order_index"`
	IsActive     *bool                  `json:"is_active"`
	Content      []QuestionContentInput `json:"content" binding:"omitempty,dive"`
	Options      []OptionInput          `json:"options" binding:"omitempty,dive"`
}

type QuestionTranslation struct {
	QuestionText string  `json:"question_text"`
	MediaURL     *string `json:"media_url"`
	Explanation  *string `json:"explanation"`
}

type OptionTranslation struct {
	OptionText string  `json:"option_text"`
	MediaURL   *string `json:"media_url"`
}

type OptionDetail struct {
	ID         uint                         `json:"id"`
	OrderIndex int                          `json:"order_index"`
	IsCorrect  bool                         `json:"is_correct"`
	IsActive   bool                         `json:"is_active"`
	Content    map[string]OptionTranslation `json:"content"`
}

type QuestionDetail struct {
	ID           uint                           `json:"id"`
	QuizID       uint                           `json:"quiz_id"`
	QuestionType string                         `json:"question_type"`
	OrderIndex   int                            `json:"order_index"`
	IsActive     bool                           `json:"is_active"`
	CreatedAt    time.Time                      `json:"created_at"`
	UpdatedAt    time.Time                      `json:"updated_at"`
	Content      map[string]QuestionTranslation `json:"content"`
	Options      []OptionDetail                 `json:"options"`
}

func (s *QuestionService) GetQuestion(ctx context.Context, id uint) (*QuestionDetail, error) {
	var question models.Question
	err := s.db.WithContext(ctx).
		Preload("Contents").
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("options.order_index, options.id")
		}).
		Preload("Options.Contents").
		First(&question, id).Error
	if err != nil {
		return nil, lookupError(err, "Question not found")
	}
	detail := newQuestionDetail(question)
	return &detail, nil
}

// CreateQuestion inserts the question, its translations, its options and their translations in one transaction.
func (s *QuestionService) CreateQuestion(ctx context.Context, req *CreateQuestionRequest) (*QuestionDetail, error) {
	if !models.IsValidQuestionType(req.QuestionType) {
		return nil, apperrors.InvalidArgument("Question type must be text or media")
	}
	if len(req.Content) == 0 {
		return nil, apperrors.InvalidArgument("At least one content entry is required")
	}
	if len(req.Options) == 0 {
		return nil, apperrors.InvalidArgument("At least one option is required")
	}

	var questionID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var quiz models.Quiz
		if err := tx.Select("id").First(&quiz, req.QuizID).Error; err != nil {
			return lookupError(err, "Quiz not found")
		}
		if err := validateQuestionContent(tx, req.Content); err != nil {
			return err
		}
		if err := validateOptions(tx, req.Options); err != nil {
			return err
		}

		// Create question
		question := models.Question{
			QuizID:       req.QuizID,
			QuestionType: req.QuestionType,
			OrderIndex:   req.OrderIndex,
			IsActive:     boolOr(req.IsActive, true),
		}
		if err := tx.Create(&question).Error; err != nil {
			return err
		}
		questionID = question.ID

		if err := insertQuestionContent(tx, question.ID, req.Content); err != nil {
			return err
		}
		return insertOptions(tx, question.ID, req.Options)
	})
	if err != nil {
		return nil, storageError(err, "create question")
	}
	return s.GetQuestion(ctx, questionID)
}

func (s *QuestionService) UpdateQuestion(ctx context.Context, id uint, req *UpdateQuestionRequest) (*QuestionDetail, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var question models.Question
		if err := tx.First(&question, id).Error; err != nil {
			return lookupError(err, "Question not found")
		}

		updates := map[string]interface{}{}
		if req.QuestionType != nil {
			if !models.IsValidQuestionType(*req.QuestionType) {
				return apperrors.InvalidArgument("Question type must be text or media")
			}
			updates["question_type"] = *req.QuestionType
		}
		if req.OrderIndex != nil {
			updates["order_index"] = *req.OrderIndex
		}
		if req.IsActive != nil {
			updates["is_active"] = *req.IsActive
		}
		if len(updates) > 0 {
			if err := tx.Model(&question).Updates(updates).Error; err != nil {
				return err
			}
		}

		// Replace translations
		if req.Content != nil {
			if len(req.Content) == 0 {
				return apperrors.InvalidArgument("At least one content entry is required")
			}
			if err := validateQuestionContent(tx, req.Content); err != nil {
				return err
			}
			if err := tx.Where("question_id = ?", id).Delete(&models.QuestionContent{}).Error; err != nil {
				return err
			}
			if err := insertQuestionContent(tx, id, req.Content); err != nil {
				return err
			}
		}

		// Replace options, their translations cascade
		if req.Options != nil {
			if len(req.Options) == 0 {
				return apperrors.InvalidArgument("At least one option is required")
			}
			if err := validateOptions(tx, req.Options); err != nil {
				return err
			}
			if err := tx.Where("question_id = ?", id).Delete(&models.Option{}).Error; err != nil {
				return err
			}
			if err := insertOptions(tx, id, req.Options); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, storageError(err, "update question")
	}
	return s.GetQuestion(ctx, id)
}

func (s *QuestionService) DeleteQuestion(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Question{}, id)
	if result.Error != nil {
		return storageError(result.Error, "delete question")
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("Question not found")
	}
	return nil
}

func (s *QuestionService) DeleteOption(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Option{}, id)
	if result.Error != nil {
		return storageError(result.Error, "delete option")
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("Option not found")
	}
	return nil
}

func insertQuestionContent(tx *gorm.DB, questionID uint, contents []QuestionContentInput) error {
	for _, c := range contents {
		row := models.QuestionContent{
			QuestionID:   questionID,
			LanguageCode: strings.TrimSpace(c.LanguageCode),
			QuestionText: c.QuestionText,
			MediaURL:     nonEmptyPtr(c.MediaURL),
			Explanation:  nonEmptyPtr(c.Explanation),
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

func insertOptions(tx *gorm.DB, questionID uint, options []OptionInput) error {
	for i, o := range options {
		orderIndex := i + 1
		if o.OrderIndex != nil {
			orderIndex = *o.OrderIndex
		}
		option := models.Option{
			QuestionID: questionID,
			OrderIndex: orderIndex,
			IsCorrect:  o.IsCorrect,
			IsActive:   boolOr(o.IsActive, true),
		}
		if err := tx.Create(&option).Error; err != nil {
			return err
		}

		for _, c := range o.Content {
			row := models.OptionContent{
				OptionID:     option.ID,
				LanguageCode: strings.TrimSpace(c.LanguageCode),
				OptionText:   c.OptionText,
				MediaURL:     nonEmptyPtr(c.MediaURL),
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func validateQuestionContent(tx *gorm.DB, contents []QuestionContentInput) error {
	codes := make([]string, 0, len(contents))
	for _, c := range contents {
		if isBlank(c.QuestionText) {
			return apperrors.InvalidArgument("Question text is required for every language")
		}
		codes = append(codes, c.LanguageCode)
	}
	return validateLanguageSet(tx, codes)
}

func validateOptions(tx *gorm.DB, options []OptionInput) error {
	for _, o := range options {
		if len(o.Content) == 0 {
			return apperrors.InvalidArgument("Each option needs at least one content entry")
		}
		codes := make([]string, 0, len(o.Content))
		for _, c := range o.Content {
			if isBlank(c.OptionText) {
				return apperrors.InvalidArgument("Option text is required for every language")
			}
			codes = append(codes, c.LanguageCode)
		}
		if err := validateLanguageSet(tx, codes); err != nil {
			return err
		}
	}
	return nil
}

// validateLanguageSet rejects blank, repeated or unknown language codes.
func validateLanguageSet(tx *gorm.DB, codes []string) error {
	seen := make(map[string]bool, len(codes))
	for _, raw := range codes {
		code := strings.TrimSpace(raw)
		if code == "" {
			return apperrors.InvalidArgument("Language code is required")
		}
		if seen[code] {
			return apperrors.InvalidArgument("Duplicate language code: " + code)
		}
		seen[code] = true

		ok, err := languageExists(tx, code, false)
		if err != nil {
			return err
		}
		if !ok {
			return apperrors.InvalidArgument("Unknown language code: " + code)
		}
	}
	return nil
}

func newQuestionDetail(q models.Question) QuestionDetail {
	detail := QuestionDetail{
		ID:           q.ID,
		QuizID:       q.QuizID,
		QuestionType: q.QuestionType,
		OrderIndex:   q.OrderIndex,
		IsActive:     q.IsActive,
		CreatedAt:    q.CreatedAt,
		UpdatedAt:    q.UpdatedAt,
		Content:      make(map[string]QuestionTranslation, len(q.Contents)),
		Options:      make([]OptionDetail, 0, len(q.Options)),
	}
	for _, c := range q.Contents {
		detail.Content[c.LanguageCode] = QuestionTranslation{
			QuestionText: c.QuestionText,
			MediaURL:     c.MediaURL,
			Explanation:  c.Explanation,
		}
	}
	for _, o := range q.Options {
		option := OptionDetail{
			ID:         o.ID,
			OrderIndex: o.OrderIndex,
			IsCorrect:  o.IsCorrect,
			IsActive:   o.IsActive,
			Content:    make(map[string]OptionTranslation, len(o.Contents)),
		}
		for _, c := range o.Contents {
			option.Content[c.LanguageCode] = OptionTranslation{
				OptionText: c.OptionText,
				MediaURL:   c.MediaURL,
			}
		}
		detail.Options = append(detail.Options, option)
	}
	return detail
}
