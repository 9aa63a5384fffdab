package models

import (
	"time"
)

// PasswordResetToken lưu reset key (sha256 của token gửi qua email).
// Mỗi user chỉ có tối đa một token chưa kích hoạt, ràng buộc bằng partial unique index.
type PasswordResetToken struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	ResetKey     string    `gorm:"type:varchar(128);uniqueIndex;not null" json:"-"`
	UserID       uint      `gorm:"not null;uniqueIndex:idx_password_reset_tokens_pending,where:has_activated = false" json:"user_id"`
	CreatedAt    time.Time `gorm:"not null;index" json:"created_at"`
	HasActivated bool      `gorm:"not null;default:false" json:"has_activated"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

// TableName specifies the table name
func (PasswordResetToken) TableName() string {
	return "password_reset_tokens"
}

// IsExpired trả về true khi token đã tồn tại từ ttl trở lên tính tới now
func (prt *PasswordResetToken) IsExpired(now time.Time, ttl time.Duration) bool {
	return now.Sub(prt.CreatedAt) >= ttl
}
