package models

import "time"

type Page struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Slug        string    `json:"slug" gorm:"not null;uniqueIndex"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Page) TableName() string {
	return "pages"
}

// ContentItem is one translated string addressed by page, section and key.
type ContentItem struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Page         string    `json:"page" gorm:"not null;uniqueIndex:idx_content_unique"`
	Section      string    `json:"section" gorm:"not null;uniqueIndex:idx_content_unique"`
	Key          string    `json:"key" gorm:"column:key;not null;uniqueIndex:idx_content_unique"`
	LanguageCode string    `json:"language_code" gorm:"not null;size:5;uniqueIndex:idx_content_unique;index"`
	Content      string    `json:"content" gorm:"type:text;not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (ContentItem) TableName() string {
	return "content"
}
