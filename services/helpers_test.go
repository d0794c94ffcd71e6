package services

import (
	"context"
	"path/filepath"
	"testing"

	"quizpanel/config"
	"quizpanel/database"
	"quizpanel/models"
	apperrors "quizpanel/pkg/errors"

	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(config.DatabaseConfig{
		Driver:   config.DriverSQLite,
		Path:     filepath.Join(t.TempDir(), "services.db"),
		LogLevel: "silent",
	})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedLanguages(t *testing.T, db *gorm.DB) {
	t.Helper()
	languages := []models.Language{
		{Code: "en", Name: "English", NativeName: "English", IsActive: true, IsDefault: true},
		{Code: "fr", Name: "French", NativeName: "Français", IsActive: true},
		{Code: "ur", Name: "Urdu", NativeName: "اردو", IsActive: false},
	}
	if err := db.Create(&languages).Error; err != nil {
		t.Fatalf("seed languages: %v", err)
	}
}

// capitalsQuiz is the "Capital of France?" quiz with Paris as the only correct option.
type capitalsQuiz struct {
	QuizID     uint
	QuestionID uint
	Paris      uint
	London     uint
	Berlin     uint
	Madrid     uint
}

func createCapitalsQuiz(t *testing.T, db *gorm.DB) capitalsQuiz {
	t.Helper()
	ctx := context.Background()

	quiz, err := NewQuizService(db).CreateQuiz(ctx, nil, &CreateQuizRequest{Title: "Capitals"})
	if err != nil {
		t.Fatalf("create quiz: %v", err)
	}

	option := func(text string, correct bool) OptionInput {
		return OptionInput{
			IsCorrect: correct,
			Content:   []OptionContentInput{{LanguageCode: "en", OptionText: text}},
		}
	}
	question, err := NewQuestionService(db).CreateQuestion(ctx, &CreateQuestionRequest{
		QuizID:       quiz.ID,
		QuestionType: models.QuestionTypeText,
		OrderIndex:   1,
		Content:      []QuestionContentInput{{LanguageCode: "en", QuestionText: "Capital of France?"}},
		Options: []OptionInput{
			option("Paris", true),
			option("London", false),
			option("Berlin", false),
			option("Madrid", false),
		},
	})
	if err != nil {
		t.Fatalf("create question: %v", err)
	}
	if len(question.Options) != 4 {
		t.Fatalf("expected 4 options, got %d", len(question.Options))
	}

	return capitalsQuiz{
		QuizID:     quiz.ID,
		QuestionID: question.ID,
		Paris:      question.Options[0].ID,
		London:     question.Options[1].ID,
		Berlin:     question.Options[2].ID,
		Madrid:     question.Options[3].ID,
	}
}

// addQuestion appends a two-option english question to a quiz and returns its option ids.
func addQuestion(t *testing.T, db *gorm.DB, quizID uint, order int, text string) (uint, uint, uint) {
	t.Helper()
	question, err := NewQuestionService(db).CreateQuestion(context.Background(), &CreateQuestionRequest{
		QuizID:       quizID,
		QuestionType: models.QuestionTypeText,
		OrderIndex:   order,
		Content:      []QuestionContentInput{{LanguageCode: "en", QuestionText: text}},
		Options: []OptionInput{
			{IsCorrect: true, Content: []OptionContentInput{{LanguageCode: "en", OptionText: "Yes"}}},
			{IsCorrect: false, Content: []OptionContentInput{{LanguageCode: "en", OptionText: "No"}}},
		},
	})
	if err != nil {
		t.Fatalf("create question %q: %v", text, err)
	}
	return question.ID, question.Options[0].ID, question.Options[1].ID
}

func expectCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	if got := apperrors.CodeOf(err); got != code {
		t.Fatalf("expected %s error, got %s (%v)", code, got, err)
	}
}
