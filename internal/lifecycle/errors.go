package lifecycle

import (
	"errors"
	"fmt"
)

// Error carries a business error code in the "NNNNN:message" form so
// handlers can map it onto an HTTP status.
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string { return fmt.Sprintf("%d:%s", e.Code, e.Message) }

func Invalid(format string, args ...interface{}) *Error {
	return &Error{Code: 40001, Message: fmt.Sprintf(format, args...)}
}

func Denied(format string, args ...interface{}) *Error {
	return &Error{Code: 40301, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...interface{}) *Error {
	return &Error{Code: 40901, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *Error {
	return &Error{Code: 40401, Message: fmt.Sprintf(format, args...)}
}

func CodeOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return 50001
}
