package models

import (
	"time"
)

// Post là một bài viết của user
type Post struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title      string    `gorm:"type:varchar(100);not null" json:"title"`
	DatePosted time.Time `gorm:"not null;index" json:"date_posted"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`

	Author *User `gorm:"foreignKey:UserID" json:"author,omitempty"`
}

// TableName specifies the table name
func (Post) TableName() string {
	return "posts"
}
