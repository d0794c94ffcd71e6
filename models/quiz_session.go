package models

import "time"

// UniqueIDLength is the length of the public session token.
const UniqueIDLength = 8

type QuizSession struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	QuizID       uint      `json:"quiz_id" gorm:"not null;index"`
	UniqueID     string    `json:"unique_id" gorm:"not null;size:8;uniqueIndex"`
	UserName     string    `json:"user_name" gorm:"not null"`
	LanguageCode string    `json:"language_code" gorm:"not null;size:5"`
	IsActive     bool      `json:"is_active" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relationships
	Friends []Friend `json:"-" gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`
	Answers []Answer `json:"-" gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`
}

func (QuizSession) TableName() string {
	return "user_quiz_sessions"
}
