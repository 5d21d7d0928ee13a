package api

import (
	"errors"
	"fmt"
)

// ErrUnavailable marks failures where no response was received at all
// (connection refused, timeout). Views show these as "currently
// unavailable", distinct from a server-side rejection.
var ErrUnavailable = errors.New("service currently unavailable")

// 服务端已知的业务错误码（同后端 ErrorCode 枚举）
const (
	CodeParticipantsPresent = "PARTICIPANTS_PRESENT"
	CodeTokenInvalid        = "TOKEN_INVALID"
	CodeTokenExpired        = "TOKEN_EXPIRED"
	CodeEmailUsernameTaken  = "EMAIL_USERNAME_TAKEN"
	CodeWrongCredentials    = "INVALID_CREDENTIALS"
)

// Error is a server-side rejection carrying the structured payload the
// backend returns under its "errors" key.
type Error struct {
	Status           int
	ErrorCode        string
	Message          string
	ValidationErrors map[string][]string
}

func (e *Error) Error() string {
	if e.ErrorCode != "" {
		return fmt.Sprintf("api: %d %s: %s", e.Status, e.ErrorCode, e.Message)
	}
	return fmt.Sprintf("api: %d: %s", e.Status, e.Message)
}

// IsCode reports whether err is a server rejection with the given code.
func IsCode(err error, code string) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.ErrorCode == code
}

// IsUnavailable reports whether err means the service never responded.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}
