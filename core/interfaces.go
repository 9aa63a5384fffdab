package core

import (
	"context"
	"time"
)

// NotificationSender là interface để gửi email reset password
// Người dùng có thể implement interface này để tích hợp với hệ thống email của họ
type NotificationSender interface {
	// SendPasswordResetLink gửi link reset password đến user
	// email: Email của user cần reset password
	// link: URL đầy đủ {base}/resetpw/{token}
	// Returns: error nếu không gửi (hoặc không xếp hàng gửi) được
	SendPasswordResetLink(ctx context.Context, email string, link string) error
}

// AvatarStorage lưu ảnh đại diện và trả về reference lưu trong users.image_file
type AvatarStorage interface {
	// Store lưu ảnh với tên filename, trả về reference
	Store(ctx context.Context, filename string, contentType string, data []byte) (string, error)
	// URL trả về địa chỉ public của reference
	URL(ref string) string
	// Delete xóa ảnh đã lưu, reference không tồn tại không phải lỗi
	Delete(ctx context.Context, ref string) error
}

// Clock trả về thời điểm hiện tại, inject được trong tests
type Clock func() time.Time

// SystemClock is the wall clock in UTC
func SystemClock() time.Time {
	return time.Now().UTC()
}
