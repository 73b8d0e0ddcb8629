package source

import (
	"errors"
	"fmt"
)

// ErrEmptySchema is returned when a catalog query is attempted without a schema name.
var ErrEmptySchema = errors.New("schema name is required")

// ConnectionError reports that the database could not be reached or refused the credentials.
type ConnectionError struct {
	Driver string
	Addr   string
	Err    error
}

func (e *ConnectionError) Error() string {
	if e.Addr == "" {
		return fmt.Sprintf("%s connection failed: %v", e.Driver, e.Err)
	}
	return fmt.Sprintf("%s connection to %s failed: %v", e.Driver, e.Addr, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// QueryError reports a failed catalog query.
type QueryError struct {
	Op    string
	Table string
	Err   error
}

func (e *QueryError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Table, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// IsConnectionError reports whether err is, or wraps, a ConnectionError.
func IsConnectionError(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}
