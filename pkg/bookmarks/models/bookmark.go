package models

import (
	"time"
)

// Bookmark is a saved URL owned by a single user.
// The URL is unique across all users and ShortCode is assigned once at creation.
// Bookmarks are hard-deleted so a removed URL can be bookmarked again.
type Bookmark struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	URL       string    `gorm:"type:varchar(2048);uniqueIndex;not null" json:"url"`
	ShortCode string    `gorm:"type:varchar(32);uniqueIndex;not null" json:"short_code"`
	Body      string    `gorm:"type:text" json:"body"`
	Visits    uint      `gorm:"not null;default:0" json:"visits"`

	// Relationships
	User User `gorm:"foreignKey:UserID" json:"-"`
}
