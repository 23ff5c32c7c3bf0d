// Package errors provides custom errors for types implementing Fetcher, Processor and Secretary interfaces.
package errors

import (
	"fmt"
)

type (
	ServiceFoundNilStorage struct {
		Msg string
	}
	ServiceFoundNilFetcher struct {
		Msg string
	}
	ServiceFoundNilSecretary struct {
		Msg string
	}
	ServiceInitCipherError struct {
		Err error
	}
	InvalidUserIDError struct {
		Input string
	}
	RequestFailedError struct {
		StatusCode int
	}
	ConnectionError struct {
		Err error
	}
	FormatError struct {
		Msg string
	}
)

func (e *ServiceFoundNilStorage) Error() string {
	return e.Msg
}

func (e *ServiceFoundNilFetcher) Error() string {
	return e.Msg
}

func (e *ServiceFoundNilSecretary) Error() string {
	return e.Msg
}

func (e *ServiceInitCipherError) Error() string {
	return fmt.Sprintf("%s: could not initialize cipher", e.Err.Error())
}

func (e *InvalidUserIDError) Error() string {
	return fmt.Sprintf("%q: user id must be an integer between 1 and 10", e.Input)
}

func (e *RequestFailedError) Error() string {
	return fmt.Sprintf("request failed with status %d", e.StatusCode)
}

func (e *ConnectionError) Error() string {
	return e.Err.Error()
}

func (e *FormatError) Error() string {
	return e.Msg
}

func (e *ServiceInitCipherError) Unwrap() error {
	return e.Err
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}
