package models

import "time"

const (
	QuestionTypeText  = "text"
	QuestionTypeMedia = "media"
)

type Question struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	QuizID       uint      `json:"quiz_id" gorm:"not null;index"`
	QuestionType string    `json:"question_type" gorm:"not null;size:10"`
	OrderIndex   int       `json:"order_index" gorm:"not null;default:0"`
	IsActive     bool      `json:"is_active" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relationships
	Contents []QuestionContent `json:"-" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
	Options  []Option          `json:"options,omitempty" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
	Answers  []Answer          `json:"-" gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
}

func (Question) TableName() string {
	return "questions"
}

// QuestionContent is one translation of a question.
type QuestionContent struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	QuestionID   uint      `json:"question_id" gorm:"not null;uniqueIndex:idx_question_content_lang"`
	LanguageCode string    `json:"language_code" gorm:"not null;size:5;uniqueIndex:idx_question_content_lang"`
	QuestionText string    `json:"question_text" gorm:"not null"`
	MediaURL     *string   `json:"media_url"`
	Explanation  *string   `json:"explanation"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (QuestionContent) TableName() string {
	return "question_content"
}

func IsValidQuestionType(t string) bool {
	return t == QuestionTypeText || t == QuestionTypeMedia
}
