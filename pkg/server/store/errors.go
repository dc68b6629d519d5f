package store

import (
	"errors"
	"fmt"
)

// ErrFlowNotAllowed is returned when an operation targets a flow that is not
// on the administratively declared allow-list.
var ErrFlowNotAllowed = errors.New("flow is not allowed")

// ValidationError marks a client-caused input failure, such as a malformed
// public key. Server names the submission entry that failed so the caller can
// fix its file.
type ValidationError struct {
	Server string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Server == "" {
		return e.Reason
	}
	return fmt.Sprintf("invalid key for server %q: %s", e.Server, e.Reason)
}

// ConnectionError wraps a connection-class persistence failure. These are
// fatal: the process must terminate rather than risk serving stale reads over
// a broken connection.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("database connection failure: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// IsConnectionError reports whether err is (or wraps) a ConnectionError.
func IsConnectionError(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}
