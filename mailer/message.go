package mailer

import (
	"context"
	"errors"
)

var (
	// ErrQueueFull được trả về khi hàng đợi email đầy, handler không bị block
	ErrQueueFull = errors.New("mail queue is full")
	// ErrQueueClosed được trả về khi hàng đợi đã dừng
	ErrQueueClosed = errors.New("mail queue is closed")
)

// Message là một email text/plain
type Message struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Transport gửi một email ra ngoài (SMTP, log, file...)
type Transport interface {
	Send(ctx context.Context, msg Message) error
}
