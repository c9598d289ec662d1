// Package upload provides the capability-polymorphic gateway over named
// cloud-storage providers. Every variant can upload a local file and mint
// an expiring shareable link for it.
package upload

import (
	"context"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/niftyshare/nifty/config"
	"github.com/niftyshare/nifty/errors"
)

const (
	// DefaultContentType is used when content type detection fails
	DefaultContentType = "application/octet-stream"

	// LinkExpiry is how long shareable links remain valid
	LinkExpiry = 7 * 24 * time.Hour
)

// Provider identifies a storage backend. The set is closed: resolution of
// anything outside the declared constants fails with ErrInvalidRequest.
type Provider string

// Declared providers
const (
	// ProviderAWS uploads to S3 (or an S3-compatible endpoint via the
	// endpoint override)
	ProviderAWS Provider = "aws"

	// ProviderGoogle uploads to Google Cloud Storage
	ProviderGoogle Provider = "google"

	// ProviderMinio uploads to an S3-compatible endpoint through the MinIO
	// client
	ProviderMinio Provider = "minio"

	// ProviderAzure is declared but not implemented; resolving it fails
	// with ErrNotImplemented
	ProviderAzure Provider = "azure"
)

// ParseProvider converts a user-supplied provider name to a Provider.
// Unknown names fail with ErrInvalidRequest.
func ParseProvider(name string) (Provider, error) {
	switch Provider(strings.ToLower(name)) {
	case ProviderAWS:
		return ProviderAWS, nil
	case ProviderGoogle:
		return ProviderGoogle, nil
	case ProviderMinio:
		return ProviderMinio, nil
	case ProviderAzure:
		return ProviderAzure, nil
	default:
		return "", errors.New("parseProvider", errors.ErrInvalidRequest).
			WithMessage("unknown provider " + name)
	}
}

// Result contains the result of an upload operation.
type Result struct {
	// Key is the remote object key that was uploaded
	Key string

	// Size is the size of the uploaded object in bytes
	Size int64

	// ETag is the entity tag reported by the provider, if any
	ETag string

	// Duration is how long the upload took
	Duration time.Duration
}

// ProgressTracker defines the interface for tracking transfer progress.
// Implementations can provide real-time progress updates during uploads.
type ProgressTracker interface {
	// Update is called periodically with transfer progress
	Update(bytesTransferred, totalBytes int64)

	// Complete is called when the transfer completes successfully
	Complete()

	// Error is called when the transfer fails
	Error(err error)
}

// Gateway is the capability set shared by every provider variant.
type Gateway interface {
	// Upload sends the file at localPath to the provider under key.
	// It fails fast with ErrFileNotFound when localPath does not exist.
	Upload(ctx context.Context, localPath, key string, opts ...Option) (*Result, error)

	// ShareableLink returns a signed URL granting read access to key,
	// expiring after the given duration.
	ShareableLink(ctx context.Context, key string, expiry time.Duration) (string, error)

	// RootFolder is the provider-specific key prefix under which uploads
	// are namespaced.
	RootFolder() string
}

// Resolve returns the gateway variant for the requested provider.
// An unknown provider fails with ErrInvalidRequest; the Azure stub fails
// with ErrNotImplemented instead of returning a silent no-op.
func Resolve(cfg *config.Config, provider Provider) (Gateway, error) {
	switch provider {
	case ProviderAWS:
		return NewS3Gateway(cfg.AWS)
	case ProviderGoogle:
		return NewGCSGateway(cfg.Google)
	case ProviderMinio:
		return NewMinioGateway(cfg.Minio)
	case ProviderAzure:
		return nil, errors.New("resolve", errors.ErrNotImplemented).
			WithMessage("azure uploads are not implemented")
	default:
		return nil, errors.New("resolve", errors.ErrInvalidRequest).
			WithMessage("unknown provider " + string(provider))
	}
}

// Key joins a provider root folder and an object basename into the remote
// key used for both the upload and its shareable link.
func Key(rootFolder, basename string) string {
	if rootFolder == "" {
		return basename
	}
	return strings.TrimSuffix(rootFolder, "/") + "/" + basename
}

// detectContentType determines the content type by sniffing the file where
// possible, falling back to extension-based lookup.
func detectContentType(path string) string {
	file, err := os.Open(path)
	if err == nil {
		defer file.Close()
		buf := make([]byte, 512)
		n, _ := file.Read(buf)
		if n > 0 {
			if mt := mimetype.Detect(buf[:n]); mt != nil {
				return mt.String()
			}
		}
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != "" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			return byExt
		}
	}

	return DefaultContentType
}

// statLocal stats localPath for an upload, converting a missing file into
// the fail-fast ErrFileNotFound.
func statLocal(op, localPath string) (os.FileInfo, error) {
	info, err := os.Stat(localPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(op, errors.ErrFileNotFound).WithPath(localPath)
		}
		return nil, errors.New(op, err).WithPath(localPath)
	}
	if info.IsDir() {
		return nil, errors.New(op, errors.ErrUpload).
			WithPath(localPath).
			WithMessage("path points to a directory, not a file")
	}
	return info, nil
}
