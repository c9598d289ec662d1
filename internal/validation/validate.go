// Package validation provides centralized input validation logic.
// This includes object key validation, recipient address validation, and
// security checks.
//
// All user inputs are validated before being handed to a storage provider
// or the mail transport.
package validation

import (
	"net/mail"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/niftyshare/nifty/errors"
)

// ValidateObjectKey validates that a remote object key is safe to send to a
// storage provider. This includes preventing path traversal attacks and
// ensuring valid characters.
func ValidateObjectKey(key string) error {
	if key == "" {
		return errors.New("validateObjectKey", errors.ErrInvalidObjectKey).
			WithKey(key).
			WithMessage("object key cannot be empty")
	}

	if hasPathTraversal(key) {
		return errors.New("validateObjectKey", errors.ErrInvalidObjectKey).
			WithKey(key).
			WithMessage("object key cannot contain path traversal sequences")
	}

	// Providers accept up to 1024 bytes
	if len(key) > 1024 {
		return errors.New("validateObjectKey", errors.ErrInvalidObjectKey).
			WithKey(key).
			WithMessage("object key cannot exceed 1024 characters")
	}

	// Keys can contain any UTF-8 character but control characters are
	// rejected outright
	if hasControlCharacters(key) {
		return errors.New("validateObjectKey", errors.ErrInvalidObjectKey).
			WithKey(key).
			WithMessage("object key cannot contain control characters")
	}

	return nil
}

// ValidateRecipient validates that a recipient is present and parses as an
// email address.
func ValidateRecipient(recipient string) error {
	if recipient == "" {
		return errors.New("validateRecipient", errors.ErrInvalidRequest).
			WithMessage("recipient is required")
	}

	if _, err := mail.ParseAddress(recipient); err != nil {
		return errors.New("validateRecipient", errors.ErrInvalidRequest).
			WithMessage("recipient is not a valid email address")
	}

	return nil
}

// ValidateSourcePath validates that a source path is present. Existence on
// the filesystem is checked later, at packaging time.
func ValidateSourcePath(path string) error {
	if path == "" {
		return errors.New("validateSourcePath", errors.ErrInvalidRequest).
			WithMessage("source path is required")
	}
	return nil
}

// hasPathTraversal checks for path traversal attempts in object keys
func hasPathTraversal(key string) bool {
	if strings.Contains(key, "..") {
		return true
	}

	cleaned := filepath.Clean(key)

	if strings.HasPrefix(cleaned, "..") {
		return true
	}

	if strings.HasPrefix(cleaned, "/") {
		return true
	}

	// Windows-style absolute paths
	if len(cleaned) >= 3 && cleaned[1] == ':' && (cleaned[2] == '\\' || cleaned[2] == '/') {
		return true
	}

	return false
}

// hasControlCharacters checks for control characters in the key
func hasControlCharacters(key string) bool {
	for _, char := range key {
		if unicode.IsControl(char) {
			return true
		}
	}
	return false
}
