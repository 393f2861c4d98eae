package api

import (
	"errors"

	"github.com/okian/scorebook/internal/domain/model"
)

// ErrBadRequest marks a request the handler could not decode or validate.
var ErrBadRequest = errors.New("bad request")

// WrapKind attaches op and kind to err.
func WrapKind(op string, kind, err error) error {
	return model.WrapError(op, kind, err)
}

// NewKind builds an error of kind with a formatted message.
func NewKind(op string, kind error, format string, args ...any) error {
	return model.NewError(op, kind, format, args...)
}
