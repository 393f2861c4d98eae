package model

import (
	"errors"
	"fmt"
)

// Sentinel error kinds shared by the domain, service and transport layers.
var (
	ErrMissingTournamentContext = errors.New("missing tournament context")
	ErrInvalidStateTransition   = errors.New("invalid state transition")
	ErrAuthorizationFailure     = errors.New("authorization failure")
	ErrPersistenceUnavailable   = errors.New("persistence unavailable")
	ErrInvalidInput             = errors.New("invalid input")
	ErrNotFound                 = errors.New("not found")
)

// Error carries the failing operation, its kind and a human-readable message.
type Error struct {
	Op   string
	Kind error
	Msg  string
	Err  error
}

// NewError builds an Error with a formatted message.
func NewError(op string, kind error, format string, args ...any) error {
	return &Error{Op: op, Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// WrapError attaches op and kind to an underlying error. A nil err yields nil.
func WrapError(op string, kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Kind: kind, Err: err}
}

func (e *Error) Error() string {
	s := e.Op + ": "
	if e.Kind != nil {
		s += e.Kind.Error()
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

// Is matches the error kind.
func (e *Error) Is(target error) bool {
	return e.Kind != nil && target == e.Kind
}

func (e *Error) Unwrap() error { return e.Err }

// Message returns the human-readable part of err without the op prefix.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		switch {
		case e.Msg != "" && e.Err != nil:
			return e.Msg + ": " + e.Err.Error()
		case e.Msg != "":
			return e.Msg
		case e.Err != nil:
			return Message(e.Err)
		}
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
