package service

import (
	"errors"
	"fmt"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindForbidden
	KindNotFound
	KindUnauthorized
	KindDependency
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConflict:
		return "conflict"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindDependency:
		return "dependency"
	}
	return "internal"
}

// Error is a classified failure whose Message is safe to show to clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func ErrValidation(msg string) error {
	return &Error{Kind: KindValidation, Message: msg}
}

func ErrConflict(msg string) error {
	return &Error{Kind: KindConflict, Message: msg}
}

func ErrForbidden(msg string) error {
	return &Error{Kind: KindForbidden, Message: msg}
}

func ErrNotFound(msg string) error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func ErrUnauthorized(msg string) error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

// ErrDependency reports a failing store or external tool; cause stays internal.
func ErrDependency(msg string, cause error) error {
	return &Error{Kind: KindDependency, Message: msg, Err: cause}
}

// KindOf classifies err, treating unclassified errors as internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the client-facing message of a classified error.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal server error"
}
