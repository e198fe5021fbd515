package wordcache

import (
	"fmt"
	"strings"
)

// StorageError indicates a cache store failure (connection, permission, corruption).
// The gateway never retries or suppresses it.
type StorageError struct {
	Op    string // Store operation: "get", "put", "ensure_schema", ...
	Key   Key    // Key involved, zero for schema or listing operations
	Cause error
}

func (e *StorageError) Error() string {
	if e.Key != (Key{}) {
		return fmt.Sprintf("storage error: %s %s: %v", e.Op, e.Key, e.Cause)
	}
	return fmt.Sprintf("storage error: %s: %v", e.Op, e.Cause)
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

// ProviderError indicates a batch provider failure (network, quota, unsupported
// language, malformed response).
type ProviderError struct {
	Message  string
	Cause    error
	Attempts int      // Number of attempts made before giving up, 0 when raised by a provider
	Batch    []string // Words of the failing batch, set by the gateway
}

func (e *ProviderError) Error() string {
	msg := "provider error: " + e.Message
	if e.Attempts > 0 {
		msg += fmt.Sprintf(" (after %d attempts)", e.Attempts)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// ValidationError indicates invalid gateway configuration or arguments.
type ValidationError struct {
	Fields  []string // Offending fields
	Message string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) > 0 {
		return fmt.Sprintf("validation error: %s (%s)", e.Message, strings.Join(e.Fields, ", "))
	}
	return "validation error: " + e.Message
}

// CountMismatchError indicates the provider returned a different number of
// translations than words requested.
type CountMismatchError struct {
	Expected int
	Got      int
}

func (e *CountMismatchError) Error() string {
	return fmt.Sprintf("translation count mismatch: expected %d, got %d", e.Expected, e.Got)
}
