package gorm

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/keyflow/keyflow/pkg/server/store"
)

// classify wraps connection-class failures in store.ConnectionError so the
// HTTP boundary can tell "the database is gone" apart from an ordinary
// persistence error. Everything else passes through unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if store.IsConnectionError(err) {
		return err
	}
	if isConnectionFailure(err) {
		return &store.ConnectionError{Err: err}
	}
	return err
}

func isConnectionFailure(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	// Driver-specific failures that only surface as message text.
	msg := err.Error()
	for _, fragment := range []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"database is closed",
		"the database connection is closed",
	} {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}
