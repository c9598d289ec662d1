package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "op only",
			err:  New("upload", ErrUpload),
			want: "nifty.upload: nifty: upload failed",
		},
		{
			name: "with path",
			err:  New("package", ErrNotDirectory).WithPath("/tmp/report.txt"),
			want: "nifty.package /tmp/report.txt: nifty: not a directory",
		},
		{
			name: "with key",
			err:  New("link", ErrLinkUnavailable).WithKey("testfolder/report.txt"),
			want: "nifty.link testfolder/report.txt: nifty: shareable link unavailable",
		},
		{
			name: "with path and key",
			err:  New("upload", ErrFileNotFound).WithPath("photos.zip").WithKey("testfolder/photos.zip"),
			want: "nifty.upload photos.zip -> testfolder/photos.zip: nifty: file not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	underlying := fmt.Errorf("connection reset")
	err := New("notify", underlying)

	require.ErrorIs(t, err, underlying)
	assert.Equal(t, underlying, errors.Unwrap(err))
}

func TestError_WithMessage(t *testing.T) {
	err := New("persist", ErrLedger).WithMessage("insert failed")

	assert.Contains(t, err.Error(), "insert failed")
	assert.ErrorIs(t, err, ErrLedger)
}

func TestSentinelHelpers(t *testing.T) {
	assert.True(t, IsInvalidRequest(New("request", ErrInvalidRequest)))
	assert.True(t, IsFileNotFound(New("upload", ErrFileNotFound).WithPath("missing.txt")))
	assert.True(t, IsNotImplemented(New("resolve", ErrNotImplemented)))
	assert.True(t, IsTemplateNotFound(New("render", ErrTemplateNotFound)))

	assert.False(t, IsInvalidRequest(New("upload", ErrUpload)))
	assert.False(t, IsFileNotFound(errors.New("unrelated")))
}
