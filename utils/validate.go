package utils

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/techmaster-vietnam/blogkit/config"
)

// FieldError là lỗi validate gắn với một field của form
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

func fieldError(field, format string, args ...interface{}) *FieldError {
	return &FieldError{Field: field, Message: fmt.Sprintf(format, args...)}
}

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)
)

// AllowedPictureExtensions là các định dạng ảnh đại diện được chấp nhận
var AllowedPictureExtensions = []string{".jpg", ".jpeg", ".png"}

// ValidateUsername kiểm tra username: 2-20 ký tự, chữ/số và _ . -
func ValidateUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return fieldError("username", "This field is required.")
	}
	n := utf8.RuneCountInString(username)
	if n < 2 || n > 20 {
		return fieldError("username", "Field must be between 2 and 20 characters long.")
	}
	if !usernameRegex.MatchString(username) {
		return fieldError("username", "Username may only contain letters, digits, '_', '.' and '-'.")
	}
	return nil
}

// ValidateEmail kiểm tra format email hợp lệ
// Email hợp lệ phải:
// - Không rỗng
// - Có format hợp lệ (local@domain.tld)
// - Không quá 120 ký tự (độ dài cột users.email)
// - Local part tối đa 64 ký tự (RFC 5321)
func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return fieldError("email", "This field is required.")
	}

	if len(email) > 120 {
		return fieldError("email", "Email must be at most 120 characters long.")
	}

	if !emailRegex.MatchString(email) {
		return fieldError("email", "Invalid email address.")
	}

	localPart := email[:strings.LastIndex(email, "@")]
	if len(localPart) > 64 {
		return fieldError("email", "Invalid email address.")
	}

	return nil
}

// ValidatePassword kiểm tra password theo các quy tắc được cấu hình
// Password hợp lệ phải:
// - Đạt độ dài tối thiểu (theo config)
// - Chứa chữ hoa (nếu RequireUppercase = true)
// - Chứa chữ thường (nếu RequireLowercase = true)
// - Chứa chữ số (nếu RequireDigit = true)
// - Chứa ký tự đặc biệt (nếu RequireSpecialChar = true)
// bcrypt chỉ dùng 72 byte đầu nên password dài hơn bị từ chối
func ValidatePassword(password string, cfg config.PasswordConfig) error {
	if strings.TrimSpace(password) == "" {
		return fieldError("password", "This field is required.")
	}

	if len(password) < cfg.MinLength {
		return fieldError("password", "Password must be at least %d characters long.", cfg.MinLength)
	}

	if len(password) > 72 {
		return fieldError("password", "Password must be at most 72 bytes long.")
	}

	var hasUppercase, hasLowercase, hasDigit bool
	specialCharCount := 0

	// Định nghĩa ký tự đặc biệt
	specialChars := "!@#$%^&*()_+-=[]{}|;:,.<>?/~`"

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUppercase = true
		}
		if unicode.IsLower(char) {
			hasLowercase = true
		}
		if unicode.IsDigit(char) {
			hasDigit = true
		}
		if strings.ContainsRune(specialChars, char) {
			specialCharCount++
		}
	}

	var missing []string
	if cfg.RequireUppercase && !hasUppercase {
		missing = append(missing, "an uppercase letter")
	}
	if cfg.RequireLowercase && !hasLowercase {
		missing = append(missing, "a lowercase letter")
	}
	if cfg.RequireDigit && !hasDigit {
		missing = append(missing, "a digit")
	}
	if cfg.RequireSpecialChar && specialCharCount < cfg.MinSpecialChars {
		missing = append(missing, fmt.Sprintf("%d special character(s)", cfg.MinSpecialChars))
	}

	if len(missing) > 0 {
		return fieldError("password", "Password must contain at least %s.", strings.Join(missing, ", "))
	}

	return nil
}

// ValidateConfirmPassword kiểm tra confirm password khớp với password
func ValidateConfirmPassword(password, confirm string) error {
	if confirm == "" {
		return fieldError("confirm_password", "This field is required.")
	}
	if password != confirm {
		return fieldError("confirm_password", "Field must be equal to password.")
	}
	return nil
}

// ValidateLength kiểm tra độ dài (theo ký tự) của field trong [min, max]. max <= 0 nghĩa là không giới hạn.
func ValidateLength(field, value string, min, max int) error {
	n := utf8.RuneCountInString(strings.TrimSpace(value))
	if n == 0 && min > 0 {
		return fieldError(field, "This field is required.")
	}
	if n < min || (max > 0 && n > max) {
		if max > 0 {
			return fieldError(field, "Field must be between %d and %d characters long.", min, max)
		}
		return fieldError(field, "Field must be at least %d characters long.", min)
	}
	return nil
}

// ValidatePictureName kiểm tra phần mở rộng file ảnh đại diện
func ValidatePictureName(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range AllowedPictureExtensions {
		if ext == allowed {
			return nil
		}
	}
	return fieldError("picture", "File does not have an approved extension: jpg, png")
}
