package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techmaster-vietnam/blogkit/config"
	"github.com/techmaster-vietnam/blogkit/database"
	"github.com/techmaster-vietnam/blogkit/models"
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

func createUser(t *testing.T, repo *UserRepository, username, email string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: email, Password: "hash", ImageFile: models.DefaultImageFile}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newTestDB(t))

	alice := createUser(t, repo, "alice", "alice@example.com")
	bob := createUser(t, repo, "bob", "bob@example.com")

	t.Run("get by email", func(t *testing.T) {
		user, err := repo.GetByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, user.ID)
	})

	t.Run("get by unknown username", func(t *testing.T) {
		_, err := repo.GetByUsername(ctx, "nobody")
		assert.True(t, IsNotFound(err))
	})

	t.Run("duplicate email is a unique violation", func(t *testing.T) {
		err := repo.Create(ctx, &models.User{Username: "alice2", Email: "alice@example.com", Password: "hash"})
		assert.True(t, IsUniqueViolation(err))
	})

	t.Run("taken excludes own row", func(t *testing.T) {
		taken, err := repo.EmailTaken(ctx, "alice@example.com", alice.ID)
		require.NoError(t, err)
		assert.False(t, taken)

		taken, err = repo.EmailTaken(ctx, "alice@example.com", bob.ID)
		require.NoError(t, err)
		assert.True(t, taken)

		taken, err = repo.UsernameTaken(ctx, "bob", 0)
		require.NoError(t, err)
		assert.True(t, taken)
	})

	t.Run("update profile", func(t *testing.T) {
		require.NoError(t, repo.UpdateProfile(ctx, alice.ID, "alicia", "alicia@example.com", "abc.png"))
		user, err := repo.GetByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "alicia", user.Username)
		assert.Equal(t, "alicia@example.com", user.Email)
		assert.Equal(t, "abc.png", user.ImageFile)
	})

	t.Run("update profile to taken username", func(t *testing.T) {
		err := repo.UpdateProfile(ctx, alice.ID, "bob", "alicia@example.com", "abc.png")
		assert.True(t, IsUniqueViolation(err))
	})

	t.Run("update password of missing user", func(t *testing.T) {
		assert.True(t, IsNotFound(repo.UpdatePassword(ctx, 9999, "hash")))
	})
}

func TestPostRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUserRepository(db)
	repo := NewPostRepository(db)

	alice := createUser(t, users, "alice", "alice@example.com")
	bob := createUser(t, users, "bob", "bob@example.com")

	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	for i, author := range []*models.User{alice, bob, alice} {
		post := &models.Post{
			Title:      "post",
			Content:    "content",
			UserID:     author.ID,
			DatePosted: base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, repo.Create(ctx, post))
	}

	posts, total, err := repo.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, posts, 3)
	assert.True(t, posts[0].DatePosted.After(posts[1].DatePosted))
	require.NotNil(t, posts[0].Author)
	assert.Equal(t, "alice", posts[0].Author.Username)
	assert.Empty(t, posts[0].Author.Email)
	assert.Empty(t, posts[0].Author.Password)

	posts, total, err = repo.ListByAuthor(ctx, alice.ID, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, posts, 1)

	post, err := repo.GetByID(ctx, posts[0].ID)
	require.NoError(t, err)
	require.NotNil(t, post.Author)
	assert.Equal(t, alice.ID, post.Author.ID)
	assert.Empty(t, post.Author.Email)

	_, err = repo.GetByID(ctx, 12345)
	assert.True(t, IsNotFound(err))

	err = repo.Create(ctx, &models.Post{Title: "orphan", Content: "x", UserID: 4242, DatePosted: base})
	assert.Error(t, err)
}

func TestPasswordResetTokenRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	users := NewUserRepository(db)
	repo := NewPasswordResetTokenRepository(db)

	alice := createUser(t, users, "alice", "alice@example.com")
	created := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	token, err := repo.Create(ctx, "plain-token", alice.ID, created)
	require.NoError(t, err)
	assert.Equal(t, HashToken("plain-token"), token.ResetKey)
	assert.NotEqual(t, "plain-token", token.ResetKey)

	t.Run("second pending token is rejected", func(t *testing.T) {
		_, err := repo.Create(ctx, "other-token", alice.ID, created)
		assert.True(t, IsUniqueViolation(err))
	})

	t.Run("lookup by plain token", func(t *testing.T) {
		found, err := repo.GetByToken(ctx, "plain-token")
		require.NoError(t, err)
		assert.Equal(t, token.ID, found.ID)

		_, err = repo.GetByToken(ctx, "unknown")
		assert.True(t, IsNotFound(err))
	})

	t.Run("activate only once", func(t *testing.T) {
		ok, err := repo.Activate(ctx, token.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.Activate(ctx, token.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		_, err = repo.GetPendingByUserID(ctx, alice.ID)
		assert.True(t, IsNotFound(err))
	})

	t.Run("delete created before cutoff", func(t *testing.T) {
		fresh, err := repo.Create(ctx, "fresh-token", alice.ID, created.Add(48*time.Hour))
		require.NoError(t, err)

		n, err := repo.DeleteCreatedBefore(ctx, created.Add(24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		_, err = repo.GetByToken(ctx, "plain-token")
		assert.True(t, IsNotFound(err))

		pending, err := repo.GetPendingByUserID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, fresh.ID, pending.ID)
	})
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"translated", gorm.ErrDuplicatedKey, true},
		{"not found", gorm.ErrRecordNotFound, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUniqueViolation(tt.err))
		})
	}
}
