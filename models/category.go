package models

import "time"

// Category groups posts and can be hidden from the public site as a whole
type Category struct {
	ID          uint      `json:"id" db:"id" gorm:"primaryKey"`
	Title       string    `json:"title" db:"title" gorm:"type:varchar(256);not null"`
	Description string    `json:"description" db:"description" gorm:"type:text;not null;default:''"`
	Slug        string    `json:"slug" db:"slug" gorm:"type:varchar(50);not null;uniqueIndex:idx_categories_slug"`
	IsPublished bool      `json:"isPublished" db:"is_published" gorm:"not null"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at" gorm:"type:timestamptz;not null;autoCreateTime"`
}

func (Category) TableName() string { return "categories" }

func (c Category) String() string { return c.Title }
