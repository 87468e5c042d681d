package utils

import (
	"github.com/pkg/errors"
)

// NewUnexpectedTypeError is used when there is a type mismatch.
func NewUnexpectedTypeError[T any](actual interface{}) error {
	var expected T
	return errors.Errorf("expected %T but got %T", expected, actual)
}

// AssertType returns v as a T, or an unexpected type error when it holds something else.
func AssertType[T any](v interface{}) (T, error) {
	t, ok := v.(T)
	if !ok {
		return t, NewUnexpectedTypeError[T](v)
	}
	return t, nil
}
