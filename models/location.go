package models

import "time"

// Location is an optional place tag on a post
type Location struct {
	ID          uint      `json:"id" db:"id" gorm:"primaryKey"`
	Name        string    `json:"name" db:"name" gorm:"type:varchar(256);not null"`
	IsPublished bool      `json:"isPublished" db:"is_published" gorm:"not null"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at" gorm:"type:timestamptz;not null;autoCreateTime"`
}

func (Location) TableName() string { return "locations" }

func (l Location) String() string { return l.Name }
