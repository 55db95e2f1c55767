package service

import "errors"

// 错误类别，handler 根据类别映射 HTTP 状态码
var (
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrNotFound     = errors.New("not found")
	ErrVerification = errors.New("verification failed")
)

// Error 带类别的业务错误
type Error struct {
	kind error
	msg  string
}

func newError(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func (e *Error) Error() string {
	return e.msg
}

func (e *Error) Unwrap() error {
	return e.kind
}

var (
	ErrMissingUser    = newError(ErrValidation, "user id is required")
	ErrMissingDate    = newError(ErrValidation, "date is required")
	ErrInvalidRating  = newError(ErrValidation, "rating must be 1 (bad), 2 (neutral) or 3 (good)")
	ErrInvalidMonth   = newError(ErrValidation, "month must be between 1 and 12")
	ErrSelfFriendship = newError(ErrValidation, "cannot add or remove yourself as a friend")
	ErrInvalidPhone   = newError(ErrValidation, "invalid phone number format")
	ErrMissingCode    = newError(ErrValidation, "verification code is required")

	ErrAlreadyFriends = newError(ErrConflict, "friendship already exists")
	ErrPhoneTaken     = newError(ErrConflict, "phone number already registered")

	ErrUserNotFound = newError(ErrNotFound, "user not found")

	ErrInvalidCode     = newError(ErrVerification, "invalid verification code")
	ErrTooManyAttempts = newError(ErrVerification, "too many verification attempts, request a new code")
)
