package rowstore

import (
	"errors"
	"fmt"
)

var (
	ErrNoRows       = errors.New("rowstore: no rows in result")
	ErrMultipleRows = errors.New("rowstore: more than one row in result")
	// ErrConflict is returned when a guarded update keeps losing to
	// concurrent writers.
	ErrConflict = errors.New("rowstore: concurrent update conflict")
)

// HTTPError is a non-2xx response from the hosted backend.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsStatus reports whether err wraps an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}
