package util

import (
	"errors"
	"fmt"
)

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindValidation
	KindNotFound
	KindForbidden
	KindConflict
	KindInvalidState
	KindUnauthenticated
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindInvalidState:
		return "invalid_state"
	case KindUnauthenticated:
		return "unauthenticated"
	}
	return "internal"
}

// AppError carries a kind for transport mapping and a message safe to show
// to the caller. Err is kept for logs only.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches another AppError of the same kind and message, so sentinels work with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

func NewValidationError(format string, args ...interface{}) error {
	return &AppError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(format string, args ...interface{}) error {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func NewForbiddenError(format string, args ...interface{}) error {
	return &AppError{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func NewConflictError(format string, args ...interface{}) error {
	return &AppError{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func NewInvalidStateError(format string, args ...interface{}) error {
	return &AppError{Kind: KindInvalidState, Message: fmt.Sprintf(format, args...)}
}

func NewInternalError(op string, err error) error {
	return &AppError{Kind: KindInternal, Message: op, Err: err}
}

// KindOf returns KindInternal for errors that are not AppErrors.
func KindOf(err error) ErrorKind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

var (
	ErrUserNotFound          = &AppError{Kind: KindNotFound, Message: "user not found"}
	ErrComplaintNotFound     = &AppError{Kind: KindNotFound, Message: "complaint not found"}
	ErrEmailRegistered       = &AppError{Kind: KindConflict, Message: "email already registered"}
	ErrInvalidCredentials    = &AppError{Kind: KindUnauthenticated, Message: "invalid credentials"}
	ErrTokenRevoked          = &AppError{Kind: KindUnauthenticated, Message: "token revoked"}
	ErrPermissionDenied      = &AppError{Kind: KindForbidden, Message: "permission denied"}
	ErrComplaintClosed       = &AppError{Kind: KindInvalidState, Message: "Cannot edit resolved or rejected complaints"}
	ErrComplaintNotResolved  = &AppError{Kind: KindInvalidState, Message: "Complaint is not resolved yet"}
	ErrResolutionNotFound    = &AppError{Kind: KindNotFound, Message: "No resolved status update found for this complaint"}
	ErrFeedbackNotFound      = &AppError{Kind: KindNotFound, Message: "No feedback found for this complaint"}
	ErrFeedbackAlreadyExists = &AppError{Kind: KindConflict, Message: "Feedback already submitted"}
)
