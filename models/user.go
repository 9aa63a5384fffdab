package models

import (
	"time"
)

// DefaultImageFile là avatar mặc định khi user chưa upload ảnh
const DefaultImageFile = "default.jpg"

// User represents a blog author
type User struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"type:varchar(120);uniqueIndex;not null" json:"email,omitempty"`
	ImageFile string    `gorm:"type:varchar(255);not null;default:default.jpg" json:"image_file"`
	Password  string    `gorm:"type:varchar(60);not null" json:"-"` // bcrypt hash, không trả về JSON
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}
