// Package apperr defines the error classes every portal command reports.
//
// Domain packages declare their own sentinel errors with New so callers can
// match either the precise error or its class:
//
//	errors.Is(err, meetingdomain.ErrMeetingNotFound) // precise
//	errors.Is(err, apperr.ErrNotFound)               // class
package apperr

import "errors"

var (
	ErrNotFound          = errors.New("not_found")
	ErrInvalidTransition = errors.New("invalid_transition")
	ErrInvalidAmount     = errors.New("invalid_amount")
	ErrInvalidStep       = errors.New("invalid_step")
	ErrValidation        = errors.New("validation_error")
)

// Error is a coded error that unwraps to its class.
type Error struct {
	Class error
	Code  string
}

func (e *Error) Error() string { return e.Code }

func (e *Error) Unwrap() error { return e.Class }

// New creates a sentinel error with the given code belonging to class.
func New(class error, code string) error {
	return &Error{Class: class, Code: code}
}

// ClassOf returns the class an error belongs to, or nil for unclassified errors.
func ClassOf(err error) error {
	for _, class := range []error{
		ErrNotFound,
		ErrInvalidTransition,
		ErrInvalidAmount,
		ErrInvalidStep,
		ErrValidation,
	} {
		if errors.Is(err, class) {
			return class
		}
	}
	return nil
}

// Code returns the machine readable code of err, falling back to its message.
func Code(err error) string {
	if err == nil {
		return ""
	}
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}
	return err.Error()
}
