package models

import "time"

type Language struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Code       string    `json:"code" gorm:"not null;size:5;uniqueIndex"`
	Name       string    `json:"name" gorm:"not null"`
	NativeName string    `json:"native_name" gorm:"not null"`
	IsActive   bool      `json:"is_active" gorm:"not null"`
	IsDefault  bool      `json:"is_default" gorm:"not null;default:false"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Language) TableName() string {
	return "languages"
}
