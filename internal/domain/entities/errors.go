package entities

import "fmt"

// Error kinds used across the subsystem. Each wraps an underlying cause so
// callers can unwrap with errors.As at CLI boundaries.

// ConfigurationError means a required setting is absent or malformed
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Field, e.Reason)
}

// ConnectivityError means an endpoint was unreachable or timed out
type ConnectivityError struct {
	Endpoint string
	Err      error
}

func (e *ConnectivityError) Error() string {
	return fmt.Sprintf("connectivity error: %s: %v", e.Endpoint, e.Err)
}

func (e *ConnectivityError) Unwrap() error { return e.Err }

// IntegrityError means a consistency check or row-count comparison failed
type IntegrityError struct {
	Path   string
	Reason string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity error: %s: %s", e.Path, e.Reason)
}

// FilesystemError means a path is missing, unreadable or unwritable
type FilesystemError struct {
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("filesystem error: %s: %v", e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error { return e.Err }

// ParseError means a JSON body or log line could not be decoded
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
