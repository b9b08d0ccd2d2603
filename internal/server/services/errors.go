package services

import (
	"errors"
	"fmt"
)

// Kind classifies workflow failures; the transport maps it to a status.
type Kind int

const (
	KindBadRequest Kind = iota + 1
	KindConflict
	KindUnauthorized
	KindNotFound
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Error is returned by every AccountService operation. Message is safe to
// show to the caller; Err keeps the cause for logs.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the Kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

const (
	MsgAllFieldsRequired   = "All fields are required"
	MsgInvalidEmail        = "Invalid email format"
	MsgPasswordTooShort    = "Password must be at least 6 characters"
	MsgInvalidContact      = "Invalid contact number"
	MsgInvalidDOB          = "Invalid date of birth"
	MsgEmailExists         = "Email already exists"
	MsgCredentialsRequired = "Email and password are required"
	MsgInvalidCredentials  = "Invalid credentials"
	MsgUserNotFound        = "User not found"
	MsgMissingToken        = "Unauthorized"
	MsgInvalidToken        = "Invalid token"
	MsgServerError         = "Server error"
	MsgUserRegistered      = "User registered successfully"
	MsgProfileUpdated      = "Profile updated successfully"
	minPasswordLength      = 6
)

func badRequest(msg string) *Error { return &Error{Kind: KindBadRequest, Message: msg} }

func internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: MsgServerError, Err: err}
}
