package todo

import (
	"errors"
	"fmt"
)

var (
	ErrTodoNotFound     = errors.New("todo does not exist")
	ErrNoFieldsProvided = errors.New("no fields provided to update")
	ErrInvalidFieldName = errors.New("invalid field name")
	ErrKeyFieldUpdate   = errors.New("key fields cannot be updated")
	ErrFieldNotMutable  = errors.New("field cannot be updated")
	ErrInvalidFieldType = errors.New("invalid value for field")
	ErrMissingUserID    = errors.New("user id is required")
	ErrMissingName      = errors.New("name is required")
)

// UpdateReason classifies why an update could not be compiled.
type UpdateReason string

const (
	ReasonNoFieldsProvided UpdateReason = "NoFieldsProvided"
	ReasonInvalidFieldName  UpdateReason = "InvalidFieldName"
	ReasonInvalidFieldValue UpdateReason = "InvalidFieldValue"
)

// UpdateError is returned by ValidateFields and CompileUpdate. It is not
// retried; callers report it to the client.
type UpdateError struct {
	Reason UpdateReason
	Field  string
	Err    error
}

func (e *UpdateError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%v: %q", e.Err, e.Field)
	}
	return e.Err.Error()
}

func (e *UpdateError) Unwrap() error {
	return e.Err
}
