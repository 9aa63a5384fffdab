package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const rememberIssuer = "blogkit"

// RememberClaims là claims của remember-me cookie.
// PasswordStamp đổi khi user đổi mật khẩu, token cũ không còn khớp.
type RememberClaims struct {
	PasswordStamp string `json:"pst"`
	jwt.RegisteredClaims
}

// PasswordStamp rút gọn bcrypt hash thành dấu vết không lộ hash
func PasswordStamp(passwordHash string) string {
	sum := sha256.Sum256([]byte(passwordHash))
	return hex.EncodeToString(sum[:8])
}

// GenerateRememberToken ký remember-me token cho userID, hết hạn sau ttl
func GenerateRememberToken(userID uint, stamp, secret string, ttl time.Duration, now time.Time) (string, error) {
	claims := RememberClaims{
		PasswordStamp: stamp,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    rememberIssuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseRememberToken validates a remember-me token and returns the user ID and password stamp
func ParseRememberToken(tokenString, secret string) (uint, string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &RememberClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method to prevent algorithm confusion attacks
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithIssuer(rememberIssuer))
	if err != nil {
		return 0, "", err
	}

	claims, ok := token.Claims.(*RememberClaims)
	if !ok || !token.Valid {
		return 0, "", jwt.ErrSignatureInvalid
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || userID == 0 {
		return 0, "", errors.New("remember token has no valid subject")
	}
	return uint(userID), claims.PasswordStamp, nil
}
