package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/techmaster-vietnam/blogkit/config"
	"github.com/techmaster-vietnam/blogkit/database"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{
		Driver:     "sqlite",
		SQLitePath: "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=on",
	}, false)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

// MockNotificationSender ghi lại các link đã gửi
type MockNotificationSender struct {
	mu    sync.Mutex
	Sent  []SentLink
	Error error
}

type SentLink struct {
	Email string
	Link  string
}

func (m *MockNotificationSender) SendPasswordResetLink(ctx context.Context, email string, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Error != nil {
		return m.Error
	}
	m.Sent = append(m.Sent, SentLink{Email: email, Link: link})
	return nil
}

func (m *MockNotificationSender) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}

// MockAvatarStorage lưu ảnh trong memory
type MockAvatarStorage struct {
	Files   map[string][]byte
	Deleted []string
	Error   error
	// OnStore chạy sau khi ảnh được lưu
	OnStore func()
}

func NewMockAvatarStorage() *MockAvatarStorage {
	return &MockAvatarStorage{Files: map[string][]byte{}}
}

func (m *MockAvatarStorage) Store(ctx context.Context, filename string, contentType string, data []byte) (string, error) {
	if m.Error != nil {
		return "", m.Error
	}
	ref := "stored-" + filename
	m.Files[ref] = data
	if m.OnStore != nil {
		m.OnStore()
	}
	return ref, nil
}

func (m *MockAvatarStorage) Delete(ctx context.Context, ref string) error {
	delete(m.Files, ref)
	m.Deleted = append(m.Deleted, ref)
	return nil
}

func (m *MockAvatarStorage) URL(ref string) string {
	return "/static/profile_pics/" + ref
}

// fakeClock là đồng hồ điều khiển được trong tests
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var errMailDown = errors.New("mail queue is full")

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{BaseURL: "http://blog.test"},
		Password: config.PasswordConfig{MinLength: 6},
		Reset:    config.ResetConfig{TokenTTL: 24 * time.Hour, PurgeInterval: time.Hour},
	}
}
