package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// RandomHex trả về chuỗi hex ngẫu nhiên từ n byte crypto/rand (độ dài 2n ký tự)
func RandomHex(n int) (string, error) {
	bytes := make([]byte, n)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
