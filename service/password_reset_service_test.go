package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techmaster-vietnam/blogkit/models"
	"github.com/techmaster-vietnam/blogkit/repository"
	"github.com/techmaster-vietnam/blogkit/utils"
	"gorm.io/gorm"
)

type resetFixture struct {
	db       *gorm.DB
	accounts *AccountService
	resets   *PasswordResetService
	sender   *MockNotificationSender
	clock    *fakeClock
	alice    *models.User
}

func newResetFixture(t *testing.T) *resetFixture {
	t.Helper()
	db := newTestDB(t)
	users := repository.NewUserRepository(db)
	accounts := NewAccountService(users, NewMockAvatarStorage(), testConfig().Password)
	sender := &MockNotificationSender{}
	clock := newFakeClock(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))
	resets := NewPasswordResetService(db, users, repository.NewPasswordResetTokenRepository(db), sender, testConfig(), clock.Now)

	return &resetFixture{
		db:       db,
		accounts: accounts,
		resets:   resets,
		sender:   sender,
		clock:    clock,
		alice:    registerAlice(t, accounts),
	}
}

// lastToken lấy plain token từ link trong email cuối cùng
func (f *resetFixture) lastToken(t *testing.T) string {
	t.Helper()
	require.NotEmpty(t, f.sender.Sent)
	link := f.sender.Sent[len(f.sender.Sent)-1].Link
	require.True(t, strings.HasPrefix(link, "http://blog.test/resetpw/"), link)
	return strings.TrimPrefix(link, "http://blog.test/resetpw/")
}

func (f *resetFixture) tokenCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(&models.PasswordResetToken{}).Count(&count).Error)
	return count
}

func TestPasswordResetService_RequestReset(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown email", func(t *testing.T) {
		f := newResetFixture(t)
		_, err := f.resets.RequestReset(ctx, "ghost@example.com")
		svcErr, ok := AsError(err)
		require.True(t, ok)
		assert.Equal(t, KindNotFound, svcErr.Kind)
		assert.Equal(t, "No data found for this email", svcErr.Message)
		assert.Zero(t, f.sender.Count())
	})

	t.Run("invalid email", func(t *testing.T) {
		f := newResetFixture(t)
		_, err := f.resets.RequestReset(ctx, "not-an-email")
		assert.True(t, IsKind(err, KindValidation))
	})

	t.Run("sends one link and stores only the hash", func(t *testing.T) {
		f := newResetFixture(t)
		outcome, err := f.resets.RequestReset(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, ResetSent, outcome)
		require.Equal(t, 1, f.sender.Count())
		assert.Equal(t, "alice@example.com", f.sender.Sent[0].Email)

		token := f.lastToken(t)
		assert.Len(t, token, 32)

		var stored models.PasswordResetToken
		require.NoError(t, f.db.First(&stored).Error)
		assert.Equal(t, repository.HashToken(token), stored.ResetKey)
		assert.False(t, stored.HasActivated)
	})

	t.Run("second request within ttl", func(t *testing.T) {
		f := newResetFixture(t)
		_, err := f.resets.RequestReset(ctx, "alice@example.com")
		require.NoError(t, err)

		f.clock.Advance(23 * time.Hour)
		outcome, err := f.resets.RequestReset(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, ResetAlreadySent, outcome)
		assert.Equal(t, 1, f.sender.Count())
		assert.Equal(t, int64(1), f.tokenCount(t))
	})

	t.Run("previous token expired", func(t *testing.T) {
		f := newResetFixture(t)
		_, err := f.resets.RequestReset(ctx, "alice@example.com")
		require.NoError(t, err)
		first := f.lastToken(t)

		f.clock.Advance(24 * time.Hour)
		outcome, err := f.resets.RequestReset(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, ResetPreviousExpired, outcome)
		assert.Equal(t, int64(0), f.tokenCount(t))

		outcome, err = f.resets.RequestReset(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, ResetSent, outcome)
		assert.NotEqual(t, first, f.lastToken(t))
	})

	t.Run("mail failure removes the token", func(t *testing.T) {
		f := newResetFixture(t)
		f.sender.Error = errMailDown

		_, err := f.resets.RequestReset(ctx, "alice@example.com")
		assert.True(t, IsKind(err, KindUnavailable))
		assert.Equal(t, int64(0), f.tokenCount(t))

		f.sender.Error = nil
		outcome, err := f.resets.RequestReset(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, ResetSent, outcome)
	})
}

func TestPasswordResetService_ConcurrentRequestsKeepOneLiveToken(t *testing.T) {
	f := newResetFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	outcomes := make(chan ResetOutcome, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome, err := f.resets.RequestReset(ctx, "alice@example.com")
			if err == nil {
				outcomes <- outcome
			}
		}()
	}
	wg.Wait()
	close(outcomes)

	sent := 0
	for outcome := range outcomes {
		if outcome == ResetSent {
			sent++
		}
	}
	assert.LessOrEqual(t, sent, 1)

	var pending int64
	require.NoError(t, f.db.Model(&models.PasswordResetToken{}).Where("has_activated = ?", false).Count(&pending).Error)
	assert.LessOrEqual(t, pending, int64(1))
}

func TestPasswordResetService_CheckToken(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown token", func(t *testing.T) {
		f := newResetFixture(t)
		_, err := f.resets.CheckToken(ctx, "does-not-exist")
		assert.True(t, IsKind(err, KindNotFound))
	})

	t.Run("valid at 23h, expired and deleted at 25h", func(t *testing.T) {
		f := newResetFixture(t)
		_, err := f.resets.RequestReset(ctx, "alice@example.com")
		require.NoError(t, err)
		token := f.lastToken(t)

		f.clock.Advance(23 * time.Hour)
		record, err := f.resets.CheckToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, f.alice.ID, record.UserID)

		f.clock.Advance(2 * time.Hour)
		_, err = f.resets.CheckToken(ctx, token)
		svcErr, ok := AsError(err)
		require.True(t, ok)
		assert.Equal(t, KindExpired, svcErr.Kind)
		assert.Contains(t, svcErr.Message, "expired")
		assert.Equal(t, int64(0), f.tokenCount(t))

		_, err = f.resets.CheckToken(ctx, token)
		assert.True(t, IsKind(err, KindNotFound))
	})

	t.Run("consumed token expires too", func(t *testing.T) {
		f := newResetFixture(t)
		_, err := f.resets.RequestReset(ctx, "alice@example.com")
		require.NoError(t, err)
		token := f.lastToken(t)
		require.NoError(t, f.resets.ResetPassword(ctx, token, ResetPasswordRequest{Password: "newpass", ConfirmPassword: "newpass"}))

		_, err = f.resets.CheckToken(ctx, token)
		assert.True(t, IsKind(err, KindAlreadyConsumed))

		f.clock.Advance(24 * time.Hour)
		_, err = f.resets.CheckToken(ctx, token)
		assert.True(t, IsKind(err, KindExpired))
		assert.Equal(t, int64(0), f.tokenCount(t))
	})
}

func TestPasswordResetService_ResetPassword(t *testing.T) {
	ctx := context.Background()
	f := newResetFixture(t)

	_, err := f.resets.RequestReset(ctx, "alice@example.com")
	require.NoError(t, err)
	token := f.lastToken(t)

	t.Run("validation keeps token pending", func(t *testing.T) {
		err := f.resets.ResetPassword(ctx, token, ResetPasswordRequest{Password: "newpass", ConfirmPassword: "other"})
		assert.True(t, IsKind(err, KindValidation))

		_, err = f.resets.CheckToken(ctx, token)
		assert.NoError(t, err)
	})

	t.Run("success", func(t *testing.T) {
		require.NoError(t, f.resets.ResetPassword(ctx, token, ResetPasswordRequest{Password: "newpass", ConfirmPassword: "newpass"}))

		user, err := f.accounts.GetByID(ctx, f.alice.ID)
		require.NoError(t, err)
		assert.True(t, utils.CheckPasswordHash("newpass", user.Password))

		_, err = f.accounts.Authenticate(ctx, "alice@example.com", "secret1")
		assert.True(t, IsKind(err, KindInvalidCredentials))
		_, err = f.accounts.Authenticate(ctx, "alice@example.com", "newpass")
		assert.NoError(t, err)
	})

	t.Run("reuse is rejected", func(t *testing.T) {
		err := f.resets.ResetPassword(ctx, token, ResetPasswordRequest{Password: "another", ConfirmPassword: "another"})
		svcErr, ok := AsError(err)
		require.True(t, ok)
		assert.Equal(t, KindAlreadyConsumed, svcErr.Kind)
		assert.Equal(t, "link already used once!!! Please generate a new one.", svcErr.Message)

		_, err = f.accounts.Authenticate(ctx, "alice@example.com", "newpass")
		assert.NoError(t, err)
	})

	t.Run("new request after consumption issues a new token", func(t *testing.T) {
		outcome, err := f.resets.RequestReset(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, ResetSent, outcome)
		assert.NotEqual(t, token, f.lastToken(t))
	})
}

func TestPasswordResetService_PurgeExpired(t *testing.T) {
	ctx := context.Background()
	f := newResetFixture(t)
	accounts := f.accounts

	_, err := f.resets.RequestReset(ctx, "alice@example.com")
	require.NoError(t, err)

	_, err = accounts.Register(ctx, RegisterRequest{Username: "bob", Email: "bob@example.com", Password: "secret1", ConfirmPassword: "secret1"})
	require.NoError(t, err)

	f.clock.Advance(12 * time.Hour)
	_, err = f.resets.RequestReset(ctx, "bob@example.com")
	require.NoError(t, err)

	f.clock.Advance(12 * time.Hour)
	deleted, err := f.resets.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	assert.Equal(t, int64(1), f.tokenCount(t))
}

func TestPasswordResetService_RunJanitorStopsOnCancel(t *testing.T) {
	f := newResetFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		f.resets.RunJanitor(ctx, 10*time.Millisecond)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop after cancel")
	}
}
