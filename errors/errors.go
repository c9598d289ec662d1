// Package errors provides error types and handling for transfer operations.
package errors

import (
	"errors"
	"fmt"
)

// Error represents a transfer operation error with context about the operation
// that failed. It wraps the underlying error from a collaborator (cloud SDK,
// SMTP transport, SQL driver) with additional context for better debugging.
type Error struct {
	// Op is the operation that failed (e.g., "package", "upload", "notify")
	Op string

	// Path is the local filesystem path involved (if applicable)
	Path string

	// Key is the remote object key involved (if applicable)
	Key string

	// Err is the underlying error from a collaborator or other source
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Path != "" && e.Key != "" {
		return fmt.Sprintf("nifty.%s %s -> %s: %v", e.Op, e.Path, e.Key, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("nifty.%s %s: %v", e.Op, e.Path, e.Err)
	}
	if e.Key != "" {
		return fmt.Sprintf("nifty.%s %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("nifty.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithPath adds local path context to an existing error.
func (e *Error) WithPath(path string) *Error {
	e.Path = path
	return e
}

// WithKey adds remote object key context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// New creates a new Error with the given operation and underlying error.
func New(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// Sentinel errors for common transfer operation failures.
// These can be used with errors.Is() for error checking.
var (
	// ErrInvalidRequest indicates that a transfer request failed validation
	// at construction time (missing source path, missing recipient, or an
	// unknown provider name)
	ErrInvalidRequest = errors.New("nifty: invalid request")

	// ErrFileNotFound indicates that a local file scheduled for upload does
	// not exist
	ErrFileNotFound = errors.New("nifty: file not found")

	// ErrNotDirectory indicates that an archive was requested for a path
	// that is not a directory
	ErrNotDirectory = errors.New("nifty: not a directory")

	// ErrArchive indicates that archive creation failed
	ErrArchive = errors.New("nifty: archive creation failed")

	// ErrUpload indicates that an upload to the storage provider failed
	ErrUpload = errors.New("nifty: upload failed")

	// ErrLinkUnavailable indicates that no shareable link could be generated
	ErrLinkUnavailable = errors.New("nifty: shareable link unavailable")

	// ErrTemplateNotFound indicates that the requested email template does
	// not exist in the template directory
	ErrTemplateNotFound = errors.New("nifty: template not found")

	// ErrMailAuth indicates that SMTP authentication failed
	ErrMailAuth = errors.New("nifty: mail authentication failed")

	// ErrMailSend indicates that the email could not be transmitted
	ErrMailSend = errors.New("nifty: mail transmission failed")

	// ErrLedger indicates a ledger connection or statement failure
	ErrLedger = errors.New("nifty: ledger operation failed")

	// ErrNotImplemented indicates that the requested provider is declared
	// but has no working implementation
	ErrNotImplemented = errors.New("nifty: provider not implemented")

	// ErrInvalidObjectKey indicates that the remote object key is invalid
	ErrInvalidObjectKey = errors.New("nifty: invalid object key")
)

// IsInvalidRequest checks if an error indicates a failed request validation.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsInvalidRequest(err error) bool {
	return errors.Is(err, ErrInvalidRequest)
}

// IsFileNotFound checks if an error indicates a missing local file.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsFileNotFound(err error) bool {
	return errors.Is(err, ErrFileNotFound)
}

// IsNotImplemented checks if an error indicates an unimplemented provider.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsNotImplemented(err error) bool {
	return errors.Is(err, ErrNotImplemented)
}

// IsTemplateNotFound checks if an error indicates a missing email template.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsTemplateNotFound(err error) bool {
	return errors.Is(err, ErrTemplateNotFound)
}
