package services

import (
	"context"
	"strings"
	"time"

	"quizpanel/models"
	apperrors "quizpanel/pkg/errors"

	"gorm.io/gorm"
)

type QuizService struct {
	db *gorm.DB
}

func NewQuizService(db *gorm.DB) *QuizService {
	return &QuizService{db: db}
}

type CreateQuizRequest struct {
	Title       string `json:"title" binding:"required,notblank"`
	Description string `json:"description"`
	IsActive    *bool  `json:"is_active"`
}

type UpdateQuizRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"is_active"`
}

type QuizSummary struct {
	models.Quiz
	CreatedByName *string `json:"created_by_name"`
	QuestionCount int64   `json:"question_count"`
}

type QuizDetail struct {
	ID            uint             `json:"id"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	IsActive      bool             `json:"is_active"`
	CreatedBy     *uint            `json:"created_by"`
	CreatedByName *string          `json:"created_by_name"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	Questions     []QuestionDetail `json:"questions"`
}

func (s *QuizService) ListQuizzes(ctx context.Context) ([]QuizSummary, error) {
	db := s.db.WithContext(ctx)

	var quizzes []models.Quiz
	if err := db.Order("created_at DESC, id DESC").Find(&quizzes).Error; err != nil {
		return nil, storageError(err, "list quizzes")
	}

	// Question counts per quiz
	var counts []struct {
		QuizID uint
		Total  int64
	}
	if err := db.Model(&models.Question{}).
		Select("quiz_id, COUNT(*) AS total").
		Group("quiz_id").
		Scan(&counts).Error; err != nil {
		return nil, storageError(err, "count questions")
	}
	byQuiz := make(map[uint]int64, len(counts))
	for _, c := range counts {
		byQuiz[c.QuizID] = c.Total
	}

	names, err := s.userNames(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]QuizSummary, 0, len(quizzes))
	for _, q := range quizzes {
		summaries = append(summaries, QuizSummary{
			Quiz:          q,
			CreatedByName: creatorName(names, q.CreatedBy),
			QuestionCount: byQuiz[q.ID],
		})
	}
	return summaries, nil
}

func (s *QuizService) GetQuizByID(ctx context.Context, quizID uint) (*QuizDetail, error) {
	var quiz models.Quiz
	err := s.db.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Order("questions.order_index, questions.id")
		}).
		Preload("Questions.Contents", func(db *gorm.DB) *gorm.DB {
			return db.Order("question_content.language_code")
		}).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("options.order_index, options.id")
		}).
		Preload("Questions.Options.Contents", func(db *gorm.DB) *gorm.DB {
			return db.Order("option_content.language_code")
		}).
		First(&quiz, quizID).Error
	if err != nil {
		return nil, lookupError(err, "Quiz not found")
	}

	names, err := s.userNames(ctx)
	if err != nil {
		return nil, err
	}

	detail := &QuizDetail{
		ID:            quiz.ID,
		Title:         quiz.Title,
		Description:   quiz.Description,
		IsActive:      quiz.IsActive,
		CreatedBy:     quiz.CreatedBy,
		CreatedByName: creatorName(names, quiz.CreatedBy),
		CreatedAt:     quiz.CreatedAt,
		UpdatedAt:     quiz.UpdatedAt,
		Questions:     make([]QuestionDetail, 0, len(quiz.Questions)),
	}
	for _, q := range quiz.Questions {
		detail.Questions = append(detail.Questions, newQuestionDetail(q))
	}
	return detail, nil
}

func (s *QuizService) CreateQuiz(ctx context.Context, userID *uint, req *CreateQuizRequest) (*QuizDetail, error) {
	if isBlank(req.Title) {
		return nil, apperrors.InvalidArgument("Title is required")
	}

	quiz := models.Quiz{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		IsActive:    boolOr(req.IsActive, true),
		CreatedBy:   userID,
	}
	if err := s.db.WithContext(ctx).Create(&quiz).Error; err != nil {
		return nil, storageError(err, "create quiz")
	}
	return s.GetQuizByID(ctx, quiz.ID)
}

func (s *QuizService) UpdateQuiz(ctx context.Context, quizID uint, req *UpdateQuizRequest) (*QuizDetail, error) {
	updates := map[string]interface{}{}
	if req.Title != nil {
		if isBlank(*req.Title) {
			return nil, apperrors.InvalidArgument("Title cannot be empty")
		}
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if len(updates) == 0 {
		return nil, apperrors.InvalidArgument("No fields to update")
	}

	db := s.db.WithContext(ctx)
	var quiz models.Quiz
	if err := db.First(&quiz, quizID).Error; err != nil {
		return nil, lookupError(err, "Quiz not found")
	}
	if err := db.Model(&quiz).Updates(updates).Error; err != nil {
		return nil, storageError(err, "update quiz")
	}
	return s.GetQuizByID(ctx, quizID)
}

// DeleteQuiz removes the quiz; questions, translations, options and sessions cascade.
func (s *QuizService) DeleteQuiz(ctx context.Context, quizID uint) error {
	result := s.db.WithContext(ctx).Delete(&models.Quiz{}, quizID)
	if result.Error != nil {
		return storageError(result.Error, "delete quiz")
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("Quiz not found")
	}
	return nil
}

func (s *QuizService) userNames(ctx context.Context) (map[uint]string, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Select("id", "username").Find(&users).Error; err != nil {
		return nil, storageError(err, "load users")
	}
	names := make(map[uint]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Username
	}
	return names, nil
}

func creatorName(names map[uint]string, id *uint) *string {
	if id == nil {
		return nil
	}
	if name, ok := names[*id]; ok {
		return &name
	}
	return nil
}
