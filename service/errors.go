package service

import (
	"errors"

	"github.com/techmaster-vietnam/blogkit/utils"
)

// ErrorKind phân loại lỗi nghiệp vụ mà handler xử lý thành flash message hoặc re-render form
type ErrorKind string

const (
	KindValidation         ErrorKind = "validation"
	KindDuplicateKey       ErrorKind = "duplicate_key"
	KindInvalidCredentials ErrorKind = "invalid_credentials"
	KindNotFound           ErrorKind = "not_found"
	KindExpired            ErrorKind = "expired"
	KindAlreadyConsumed    ErrorKind = "already_consumed"
	KindUnavailable        ErrorKind = "unavailable"
)

// Error là lỗi nghiệp vụ có thể dự đoán trước.
// Lỗi hệ thống (database, storage, hash) được wrap bằng goerrorkit thay vì dùng type này.
type Error struct {
	Kind    ErrorKind
	Field   string
	Message string
	// Fields chứa toàn bộ lỗi validate theo field (chỉ với KindValidation)
	Fields map[string]string
}

func (e *Error) Error() string {
	if e.Field != "" {
		return string(e.Kind) + ": " + e.Field + ": " + e.Message
	}
	return string(e.Kind) + ": " + e.Message
}

func newError(kind ErrorKind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// AsError trả về *Error nếu err là lỗi nghiệp vụ
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err is a service error of the given kind
func IsKind(err error, kind ErrorKind) bool {
	e, ok := AsError(err)
	return ok && e.Kind == kind
}

// validationError gom các lỗi validate; trả về nil khi tất cả đều nil
func validationError(errs ...error) error {
	var result *Error
	for _, err := range errs {
		if err == nil {
			continue
		}
		field, message := "", err.Error()
		var fe *utils.FieldError
		if errors.As(err, &fe) {
			field, message = fe.Field, fe.Message
		}
		if result == nil {
			result = &Error{Kind: KindValidation, Field: field, Message: message, Fields: map[string]string{}}
		}
		if _, exists := result.Fields[field]; !exists {
			result.Fields[field] = message
		}
	}
	if result == nil {
		return nil
	}
	return result
}
