package utils

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techmaster-vietnam/blogkit/config"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"valid", "alice@example.com", false},
		{"valid with plus", "alice+blog@mail.example.org", false},
		{"empty", "", true},
		{"missing at", "alice.example.com", true},
		{"missing tld", "alice@example", true},
		{"too long", strings.Repeat("a", 110) + "@example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if tt.wantErr {
				var fe *FieldError
				require.True(t, errors.As(err, &fe))
				assert.Equal(t, "email", fe.Field)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	assert.NoError(t, ValidateUsername("al"))
	assert.NoError(t, ValidateUsername("alice_smith.99"))
	assert.Error(t, ValidateUsername("a"))
	assert.Error(t, ValidateUsername(strings.Repeat("a", 21)))
	assert.Error(t, ValidateUsername("alice smith"))
	assert.Error(t, ValidateUsername("   "))
}

func TestValidatePassword(t *testing.T) {
	strict := config.PasswordConfig{
		MinLength:          8,
		RequireUppercase:   true,
		RequireLowercase:   true,
		RequireDigit:       true,
		RequireSpecialChar: true,
		MinSpecialChars:    1,
	}

	tests := []struct {
		name     string
		password string
		cfg      config.PasswordConfig
		wantErr  bool
	}{
		{"relaxed ok", "secret", config.PasswordConfig{MinLength: 6}, false},
		{"too short", "abc", config.PasswordConfig{MinLength: 6}, true},
		{"empty", "", config.PasswordConfig{MinLength: 0}, true},
		{"strict ok", "Secr3t!pw", strict, false},
		{"strict missing digit", "Secret!pw", strict, true},
		{"strict missing special", "Secr3tpw1", strict, true},
		{"longer than bcrypt limit", strings.Repeat("a", 73), config.PasswordConfig{MinLength: 6}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password, tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateConfirmPassword(t *testing.T) {
	assert.NoError(t, ValidateConfirmPassword("secret", "secret"))
	assert.Error(t, ValidateConfirmPassword("secret", "Secret"))
	assert.Error(t, ValidateConfirmPassword("secret", ""))
}

func TestValidateLength(t *testing.T) {
	assert.NoError(t, ValidateLength("title", "Hello", 1, 100))
	assert.Error(t, ValidateLength("title", "", 1, 100))
	assert.Error(t, ValidateLength("title", strings.Repeat("x", 101), 1, 100))
	assert.NoError(t, ValidateLength("content", strings.Repeat("x", 5000), 1, 0))
}

func TestValidatePictureName(t *testing.T) {
	assert.NoError(t, ValidatePictureName("me.JPG"))
	assert.NoError(t, ValidatePictureName("me.png"))
	assert.Error(t, ValidatePictureName("me.gif"))
	assert.Error(t, ValidatePictureName("me"))
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("secret")
	require.NoError(t, err)
	assert.Len(t, hash, 60)
	assert.NotEqual(t, "secret", hash)
	assert.True(t, CheckPasswordHash("secret", hash))
	assert.False(t, CheckPasswordHash("Secret", hash))
}

func TestRandomHex(t *testing.T) {
	a, err := RandomHex(8)
	require.NoError(t, err)
	b, err := RandomHex(8)
	require.NoError(t, err)
	assert.Len(t, a, 16)
	assert.NotEqual(t, a, b)
}

func TestRememberToken(t *testing.T) {
	now := time.Now()
	stamp := PasswordStamp("$2a$10$hash")
	token, err := GenerateRememberToken(42, stamp, "secret", time.Hour, now)
	require.NoError(t, err)

	t.Run("valid", func(t *testing.T) {
		userID, gotStamp, err := ParseRememberToken(token, "secret")
		require.NoError(t, err)
		assert.Equal(t, uint(42), userID)
		assert.Equal(t, stamp, gotStamp)
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, _, err := ParseRememberToken(token, "other")
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		old, err := GenerateRememberToken(42, stamp, "secret", time.Hour, now.Add(-2*time.Hour))
		require.NoError(t, err)
		_, _, err = ParseRememberToken(old, "secret")
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, _, err := ParseRememberToken("not-a-token", "secret")
		assert.Error(t, err)
	})
}

func TestPasswordStamp(t *testing.T) {
	a := PasswordStamp("$2a$10$first")
	assert.Len(t, a, 16)
	assert.Equal(t, a, PasswordStamp("$2a$10$first"))
	assert.NotEqual(t, a, PasswordStamp("$2a$10$second"))
	assert.NotContains(t, a, "first")
}
