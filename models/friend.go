package models

import "time"

type Friend struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	SessionID  uint      `json:"session_id" gorm:"not null;index"`
	FriendName string    `json:"friend_name" gorm:"not null"`
	IsActive   bool      `json:"is_active" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Friend) TableName() string {
	return "quiz_friends"
}
