package generator

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
)

var (
	// ErrUnavailable means the backend could not be reached.
	ErrUnavailable = errors.New("generation backend unavailable")
	// ErrTimeout means the backend did not answer within the request timeout.
	ErrTimeout = errors.New("generation backend timed out")
)

// StatusError is returned when the backend answers with a non-success status
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("generation backend returned status %d: %s", e.Code, strings.TrimSpace(e.Body))
}

// Classify wraps a transport error into ErrTimeout or ErrUnavailable
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// HasModel reports whether name is in models, also matching the implicit ":latest" tag
func HasModel(models []string, name string) bool {
	for _, m := range models {
		if m == name || m == name+":latest" {
			return true
		}
	}
	return false
}
