// Package transfer orchestrates the share pipeline: package the source,
// upload it, notify the recipient, persist the transfer, clean up.
package transfer

import (
	"github.com/niftyshare/nifty/internal/validation"
	"github.com/niftyshare/nifty/upload"
)

// DefaultTemplate is the mail template used when none is requested.
const DefaultTemplate = "mailer.html"

// Request is a validated transfer request. Construct it with NewRequest;
// a zero Request is not valid.
type Request struct {
	// SourcePath is the local file or directory to share
	SourcePath string

	// Recipient is the notification email address
	Recipient string

	// Provider is the storage backend the upload goes to
	Provider upload.Provider

	// Template is the mail template name within the template directory
	Template string
}

// NewRequest validates the inputs and returns a transfer request. The
// source path and recipient are required; an empty provider defaults to
// google and an empty template to DefaultTemplate. Validation failures are
// ErrInvalidRequest and have no side effects.
func NewRequest(sourcePath, recipient, providerName, template string) (*Request, error) {
	if err := validation.ValidateSourcePath(sourcePath); err != nil {
		return nil, err
	}
	if err := validation.ValidateRecipient(recipient); err != nil {
		return nil, err
	}

	if providerName == "" {
		providerName = string(upload.ProviderGoogle)
	}
	provider, err := upload.ParseProvider(providerName)
	if err != nil {
		return nil, err
	}

	if template == "" {
		template = DefaultTemplate
	}

	return &Request{
		SourcePath: sourcePath,
		Recipient:  recipient,
		Provider:   provider,
		Template:   template,
	}, nil
}
