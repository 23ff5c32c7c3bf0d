// Package errors provides custom errors for types implementing SlotGetter, SlotSetter, SlotDeleter and SlotStorage interfaces.
package errors

import (
	"fmt"
)

type (
	NotFoundError struct {
		ClientID string
		Key      string
		Err      error
	}
	ContextTimeoutExceededError struct {
		Err error
	}
	ExecutionSQLError struct {
		Err error
	}
	FileWriteError struct {
		Err error
	}
)

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s/%s: not found in storage", e.ClientID, e.Key)
}

func (e *ContextTimeoutExceededError) Error() string {
	return fmt.Sprintf("%s: context timeout exceeded", e.Err.Error())
}

func (e *ExecutionSQLError) Error() string {
	return fmt.Sprintf("%s: could not query", e.Err.Error())
}

func (e *FileWriteError) Error() string {
	return fmt.Sprintf("%s: could not add to file", e.Err.Error())
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

func (e *ContextTimeoutExceededError) Unwrap() error {
	return e.Err
}

func (e *ExecutionSQLError) Unwrap() error {
	return e.Err
}

func (e *FileWriteError) Unwrap() error {
	return e.Err
}
