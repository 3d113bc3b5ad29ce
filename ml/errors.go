package ml

import (
	"errors"
	"fmt"
)

var (
	ErrCorruptArtifact = errors.New("corrupt artifact")
	ErrMissingColumn   = errors.New("missing column")
	ErrNonNumeric      = errors.New("non-numeric value")
	ErrUnseenCategory  = errors.New("unseen category")
	ErrModelNotLoaded  = errors.New("model not loaded")
)

// UnseenCategoryError is returned when a value was not in the encoder's training classes.
type UnseenCategoryError struct {
	Column string
	Value  string
}

func (e *UnseenCategoryError) Error() string {
	return fmt.Sprintf("unseen category %q in column %s", e.Value, e.Column)
}

func (e *UnseenCategoryError) Unwrap() error {
	return ErrUnseenCategory
}

type NonNumericError struct {
	Column string
	Row    int
	Value  string
}

func (e *NonNumericError) Error() string {
	return fmt.Sprintf("non-numeric value %q in column %s row %d", e.Value, e.Column, e.Row)
}

func (e *NonNumericError) Unwrap() error {
	return ErrNonNumeric
}
