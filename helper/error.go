package helper

import "fmt"

// Error wraps an underlying error with the operation that failed.
type Error struct {
	Context string
	Err     error
}

// NewError returns an error reading "<context>: <err>".
func NewError(context string, err error) error {
	return &Error{Context: context, Err: err}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Context
	}
	return fmt.Sprintf("%s: %v", e.Context, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
