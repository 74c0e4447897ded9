package models

import "time"

// Post is a publishable content record. Category and Location are
// optional references that are cleared when the referent is removed.
type Post struct {
	ID          uint      `json:"id" db:"id" gorm:"primaryKey"`
	Title       string    `json:"title" db:"title" gorm:"type:varchar(256);not null"`
	Text        string    `json:"text" db:"text" gorm:"type:text;not null"`
	PubDate     time.Time `json:"pubDate" db:"pub_date" gorm:"type:timestamptz;not null;index:idx_posts_pub_date,sort:desc"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at" gorm:"type:timestamptz;not null;autoUpdateTime"`
	ViewsCount  uint      `json:"viewsCount" db:"views_count" gorm:"type:integer;not null;default:0;check:chk_posts_views_count,views_count >= 0"`
	IsPublished bool      `json:"isPublished" db:"is_published" gorm:"not null"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at" gorm:"type:timestamptz;not null;autoCreateTime"`

	AuthorID   uint  `json:"authorId" db:"author_id" gorm:"not null;index:idx_posts_author_id"`
	LocationID *uint `json:"locationId,omitempty" db:"location_id" gorm:"index:idx_posts_location_id"`
	CategoryID *uint `json:"categoryId,omitempty" db:"category_id" gorm:"index:idx_posts_category_id"`

	Author   *User     `json:"author,omitempty" gorm:"foreignKey:AuthorID;references:ID;constraint:OnDelete:CASCADE"`
	Location *Location `json:"location,omitempty" gorm:"foreignKey:LocationID;references:ID;constraint:OnDelete:SET NULL"`
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID;references:ID;constraint:OnDelete:SET NULL"`
}

func (Post) TableName() string { return "posts" }

func (p Post) String() string { return p.Title }

// IsVisibleAt reports whether the post may be shown publicly at now.
// It mirrors database.VisibleAt for posts that are already loaded with
// their Category; a post without a loaded category is never visible.
func (p Post) IsVisibleAt(now time.Time) bool {
	if !p.IsPublished || p.PubDate.After(now) {
		return false
	}
	return p.Category != nil && p.Category.IsPublished
}
