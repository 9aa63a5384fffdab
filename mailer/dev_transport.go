package mailer

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/techmaster-vietnam/goerrorkit"
)

// LogTransport chỉ log email ra logger, dùng cho môi trường development
type LogTransport struct{}

// NewLogTransport creates a log transport
func NewLogTransport() *LogTransport {
	return &LogTransport{}
}

// Send implements Transport
func (LogTransport) Send(ctx context.Context, msg Message) error {
	logrus.WithFields(logrus.Fields{
		"from":    msg.From,
		"to":      msg.To,
		"subject": msg.Subject,
	}).Info(msg.Body)
	return nil
}

// FileTransport ghi email vào file JSON (theo địa chỉ nhận) để test script đọc được link reset
type FileTransport struct {
	mu       sync.Mutex
	filePath string
}

// NewFileTransport creates a file transport. filePath rỗng dùng "testscript/outbox.json".
func NewFileTransport(filePath string) *FileTransport {
	if filePath == "" {
		filePath = "testscript/outbox.json"
	}
	return &FileTransport{filePath: filePath}
}

type outboxEntry struct {
	Message
	SentAt string `json:"sent_at"`
}

// Send implements Transport
func (t *FileTransport) Send(ctx context.Context, msg Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(t.filePath), 0755); err != nil {
		return goerrorkit.WrapWithMessage(err, "Failed to create outbox directory")
	}

	outbox := make(map[string]outboxEntry)
	if data, err := os.ReadFile(t.filePath); err == nil {
		if err := json.Unmarshal(data, &outbox); err != nil {
			outbox = make(map[string]outboxEntry)
		}
	}

	outbox[msg.To] = outboxEntry{Message: msg, SentAt: time.Now().UTC().Format(time.RFC3339)}

	data, err := json.MarshalIndent(outbox, "", "  ")
	if err != nil {
		return goerrorkit.WrapWithMessage(err, "Failed to encode outbox")
	}
	if err := os.WriteFile(t.filePath, data, 0644); err != nil {
		return goerrorkit.WrapWithMessage(err, "Failed to write outbox").WithData(map[string]interface{}{
			"path": t.filePath,
		})
	}
	return nil
}
