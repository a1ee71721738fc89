package storage

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidKey is returned when a logical object key is empty.
	ErrInvalidKey = errors.New("object key must not be empty")
	// ErrNotFound marks a missing object. Exists maps it to false; other
	// operations surface it.
	ErrNotFound = errors.New("object not found")
)

// ConfigError reports invalid construction parameters. It is raised at
// construction or first use and never retried.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string { return "storage config: " + e.Reason }

// OpError wraps a collaborator failure with the operation and key it occurred
// on. The underlying error is preserved unmodified as the cause.
type OpError struct {
	Op  string
	Key string
	Err error
}

func (e *OpError) Error() string { return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err) }

func (e *OpError) Unwrap() error { return e.Err }

// KeyError is a single failed key inside a batch delete.
type KeyError struct {
	Key string
	Err error
}

func (e KeyError) Error() string { return fmt.Sprintf("%s: %v", e.Key, e.Err) }

func (e KeyError) Unwrap() error { return e.Err }

// PartialDeleteError aggregates the keys that failed across all batches of a
// bulk delete. Keys not listed were deleted; callers can retry the failed
// subset only.
type PartialDeleteError struct {
	Failed []KeyError
}

func (e *PartialDeleteError) Error() string {
	keys := make([]string, len(e.Failed))
	for i, f := range e.Failed {
		keys[i] = f.Key
	}
	return fmt.Sprintf("batch delete: %d object(s) failed: %s", len(e.Failed), strings.Join(keys, ", "))
}
