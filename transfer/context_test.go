package transfer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/niftyshare/nifty/upload"
)

func TestTransferContextDerivedFields(t *testing.T) {
	tc := &TransferContext{
		FileSizeBytes: 10240,
		FilesList:     []string{"report.txt"},
	}

	assert.Equal(t, 0.01, tc.FileSizeMB())
	assert.Equal(t, 1, tc.FileCount())
	assert.Equal(t, "File", tc.Plural())

	tc.FilesList = append(tc.FilesList, "notes.txt")
	assert.Equal(t, "Files", tc.Plural())
}

func TestTransferContextExpiryRendering(t *testing.T) {
	tc := &TransferContext{
		ExpiryDate: time.Date(2024, time.March, 4, 15, 30, 0, 0, time.UTC),
	}

	data := tc.TemplateData()
	assert.Equal(t, "Monday, March 04, 2024", data["ExpiryDate"])
}

func TestTransferContextProjections(t *testing.T) {
	expiry := time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC)
	tc := &TransferContext{
		Recipient:     "bob@example.com",
		Provider:      upload.ProviderAWS,
		FileBasename:  "bundle.zip",
		DownloadLink:  "https://example.com/d/abc",
		FileSizeBytes: 3 * 1024 * 1024,
		FilesList:     []string{"a.txt", "b.txt"},
		SenderName:    "Ada",
		SenderAddress: "ada@example.com",
		ExpiryDate:    expiry,
		CompletedAt:   time.Date(2024, time.February, 26, 10, 11, 12, 0, time.UTC),
	}

	data := tc.TemplateData()
	assert.Equal(t, "Ada", data["SenderName"])
	assert.Equal(t, "bundle.zip", data["FileBasename"])
	assert.Equal(t, 3.0, data["FileSizeMB"])
	assert.Equal(t, 2, data["FileCount"])
	assert.Equal(t, "2024-02-26 10:11:12", data["CompletedAt"])

	rec := tc.Record()
	assert.Equal(t, "Ada", rec.SenderName)
	assert.Equal(t, "bundle.zip", rec.FileBasename)
	assert.Equal(t, "ada@example.com", rec.SenderAddress)
	assert.Equal(t, "https://example.com/d/abc", rec.DownloadLink)
	assert.Equal(t, "bob@example.com", rec.RecipientEmail)
	assert.Equal(t, expiry, rec.ExpiryDate)
	assert.Equal(t, []string{"a.txt", "b.txt"}, rec.FilesList)
}
