package transfer

import (
	"math"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/niftyshare/nifty/ledger"
	"github.com/niftyshare/nifty/upload"
)

// expiryLayout renders link expiry for humans, e.g.
// "Monday, January 02, 2006".
const expiryLayout = "Monday, January 02, 2006"

// TransferContext carries the state assembled by the pipeline steps. The
// renderer and the ledger never see it directly; they get the narrow
// TemplateData and Record projections.
type TransferContext struct {
	// Inputs
	SourcePath string
	Recipient  string
	Provider   upload.Provider

	// FileBasename is the basename of the original source
	FileBasename string

	// UploadPath is the local path actually uploaded: the source file
	// itself, or the archive created from a source directory
	UploadPath string

	// ArchiveCreated reports whether the pipeline created UploadPath and
	// therefore owns its removal
	ArchiveCreated bool

	// Key is the remote object key
	Key string

	// FilesList is every file included in the transfer
	FilesList []string

	// DownloadLink is the shareable link; empty when the upload or link
	// step failed
	DownloadLink string

	// FileSizeBytes is the size of the uploaded object
	FileSizeBytes int64

	// Sender identity, from mail configuration
	SenderName    string
	SenderAddress string

	// ExpiryDate is when the shareable link stops working
	ExpiryDate time.Time

	// CompletedAt is the pipeline completion timestamp, second precision
	CompletedAt time.Time
}

// FileSizeMB is the upload size in mebibytes, rounded to two decimals.
func (c *TransferContext) FileSizeMB() float64 {
	mb := float64(c.FileSizeBytes) / 1024 / 1024
	return math.Round(mb*100) / 100
}

// FileSizeHuman is the upload size in human form, e.g. "10 kB".
func (c *TransferContext) FileSizeHuman() string {
	return humanize.Bytes(uint64(c.FileSizeBytes))
}

// FileCount is how many files the transfer includes.
func (c *TransferContext) FileCount() int {
	return len(c.FilesList)
}

// Plural is "File" or "Files" depending on the file count.
func (c *TransferContext) Plural() string {
	if c.FileCount() == 1 {
		return "File"
	}
	return "Files"
}

// TemplateData is the renderer projection of the context.
func (c *TransferContext) TemplateData() map[string]any {
	return map[string]any{
		"SenderName":     c.SenderName,
		"SenderAddress":  c.SenderAddress,
		"RecipientEmail": c.Recipient,
		"FileBasename":   c.FileBasename,
		"DownloadLink":   c.DownloadLink,
		"ExpiryDate":     c.ExpiryDate.Format(expiryLayout),
		"FileSizeBytes":  c.FileSizeBytes,
		"FileSizeMB":     c.FileSizeMB(),
		"FileSizeHuman":  c.FileSizeHuman(),
		"FileCount":      c.FileCount(),
		"Plural":         c.Plural(),
		"FilesList":      c.FilesList,
		"Provider":       string(c.Provider),
		"CompletedAt":    c.CompletedAt.Format("2006-01-02 15:04:05"),
	}
}

// Record is the ledger projection of the context.
func (c *TransferContext) Record() *ledger.Record {
	return &ledger.Record{
		SenderName:     c.SenderName,
		FileBasename:   c.FileBasename,
		SenderAddress:  c.SenderAddress,
		DownloadLink:   c.DownloadLink,
		RecipientEmail: c.Recipient,
		ExpiryDate:     c.ExpiryDate,
		FileSizeBytes:  c.FileSizeBytes,
		FilesList:      c.FilesList,
	}
}
