package models

import "time"

// Answer holds the latest choice of a friend for one question of a session.
// It goes away with its session, its question or its selected option.
type Answer struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	SessionID        uint      `json:"session_id" gorm:"not null;uniqueIndex:idx_answer_friend_question"`
	FriendName       string    `json:"friend_name" gorm:"not null;uniqueIndex:idx_answer_friend_question"`
	QuestionID       uint      `json:"question_id" gorm:"not null;uniqueIndex:idx_answer_friend_question"`
	SelectedOptionID uint      `json:"selected_option_id" gorm:"not null"`
	IsCorrect        bool      `json:"is_correct" gorm:"not null"`
	AnsweredAt       time.Time `json:"answered_at" gorm:"not null"`
}

func (Answer) TableName() string {
	return "user_answers"
}
