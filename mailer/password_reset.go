package mailer

import (
	"context"

	"github.com/techmaster-vietnam/blogkit/core"
)

const (
	// ResetSubject là tiêu đề email reset password
	ResetSubject    = "Are you trying to reset your password? Here's how"
	resetBodyPrefix = "Please click on the URL below to reset your password: URL here: "
)

// ResetBody build nội dung email reset password
func ResetBody(link string) string {
	return resetBodyPrefix + link
}

// Enqueuer nhận email để gửi bất đồng bộ
type Enqueuer interface {
	Enqueue(msg Message) error
}

// PasswordResetMailer implement core.NotificationSender bằng cách xếp hàng email vào Queue
type PasswordResetMailer struct {
	sender string
	queue  Enqueuer
}

// NewPasswordResetMailer creates a reset mailer with a fixed sender address
func NewPasswordResetMailer(sender string, queue Enqueuer) *PasswordResetMailer {
	return &PasswordResetMailer{sender: sender, queue: queue}
}

// SendPasswordResetLink implements core.NotificationSender
func (m *PasswordResetMailer) SendPasswordResetLink(ctx context.Context, email string, link string) error {
	return m.queue.Enqueue(Message{
		From:    m.sender,
		To:      email,
		Subject: ResetSubject,
		Body:    ResetBody(link),
	})
}

var _ core.NotificationSender = (*PasswordResetMailer)(nil)
