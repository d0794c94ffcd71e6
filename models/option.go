package models

import "time"

type Option struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	QuestionID uint      `json:"question_id" gorm:"not null;index"`
	OrderIndex int       `json:"order_index" gorm:"not null;default:0"`
	IsCorrect  bool      `json:"is_correct" gorm:"not null;default:false"`
	IsActive   bool      `json:"is_active" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	// Relationships
	Contents []OptionContent `json:"-" gorm:"foreignKey:OptionID;constraint:OnDelete:CASCADE"`
	Answers  []Answer        `json:"-" gorm:"foreignKey:SelectedOptionID;constraint:OnDelete:CASCADE"`
}

func (Option) TableName() string {
	return "options"
}

// OptionContent is one translation of an option.
type OptionContent struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	OptionID     uint      `json:"option_id" gorm:"not null;uniqueIndex:idx_option_content_lang"`
	LanguageCode string    `json:"language_code" gorm:"not null;size:5;uniqueIndex:idx_option_content_lang"`
	OptionText   string    `json:"option_text" gorm:"not null"`
	MediaURL     *string   `json:"media_url"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (OptionContent) TableName() string {
	return "option_content"
}
