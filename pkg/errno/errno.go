package errno

import (
	"errors"
	"fmt"
)

// Errno defines the error code logic
type Errno struct {
	Code    int
	Message string
}

func (e Errno) Error() string {
	return e.Message
}

// Error 是带上下文的错误: 错误码 + 发生在哪个操作 + 原始错误
// 原始错误通过 Unwrap 保留，不会被吞掉
type Error struct {
	Errno
	Op    string
	Cause error
}

// New wraps cause with an error code and the operation that failed.
func New(code Errno, op string, cause error) *Error {
	return &Error{Errno: code, Op: op, Cause: cause}
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches on the error code, so errors.Is(err, errno.ErrUserRejected)
// works whatever the operation or cause.
func (e *Error) Is(target error) bool {
	switch t := target.(type) {
	case Errno:
		return t.Code == e.Code
	case *Errno:
		return t != nil && t.Code == e.Code
	}
	return false
}

// Decode tries to convert an error to Errno
func Decode(err error) (int, string) {
	if err == nil {
		return OK.Code, OK.Message
	}

	var wrapped *Error
	if errors.As(err, &wrapped) {
		return wrapped.Code, wrapped.Error()
	}

	switch typed := err.(type) {
	case *Errno:
		return typed.Code, typed.Message
	case Errno:
		return typed.Code, typed.Message
	default:
		return InternalServerError.Code, err.Error()
	}
}

// CodeOf returns the code carried by err, or InternalServerError.
func CodeOf(err error) Errno {
	var wrapped *Error
	if errors.As(err, &wrapped) {
		return wrapped.Errno
	}
	var plain Errno
	if errors.As(err, &plain) {
		return plain
	}
	return InternalServerError
}

// Common Errors
var (
	OK                  = Errno{Code: 0, Message: "Success"}
	InternalServerError = Errno{Code: 10001, Message: "Internal server error"}
	ErrBind             = Errno{Code: 10002, Message: "Error occurred while binding the request body to the struct"}
	ErrStorage          = Errno{Code: 10004, Message: "Storage error"}
)

// Wallet / provider errors (20000+)
var (
	ErrMissingProvider = Errno{Code: 20001, Message: "No wallet provider detected"}
	ErrUserRejected    = Errno{Code: 20002, Message: "User rejected the request"}
	ErrNetwork         = Errno{Code: 20003, Message: "Network error"}
	ErrContractRevert  = Errno{Code: 20004, Message: "Contract call reverted"}
	ErrProvider        = Errno{Code: 20005, Message: "Provider call failed"}
	ErrNoAccounts      = Errno{Code: 20006, Message: "No authorized accounts"}
)

// Session errors (20100+)
var (
	ErrInvalidAmount  = Errno{Code: 20101, Message: "Invalid amount"}
	ErrInvalidAddress = Errno{Code: 20102, Message: "Invalid address"}
	ErrUnknownField   = Errno{Code: 20103, Message: "Unknown form field"}
	ErrNotConnected   = Errno{Code: 20104, Message: "Wallet not connected"}
)
