package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/niftyshare/nifty/errors"
)

func TestValidateObjectKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{name: "simple key", key: "testfolder/report.txt"},
		{name: "nested key", key: "shared/2024/photos.zip"},
		{name: "unicode key", key: "testfolder/résumé.pdf"},
		{name: "empty key", key: "", wantErr: true},
		{name: "traversal", key: "../etc/passwd", wantErr: true},
		{name: "embedded traversal", key: "folder/../../secret", wantErr: true},
		{name: "absolute path", key: "/etc/passwd", wantErr: true},
		{name: "control characters", key: "folder/bad\x00name", wantErr: true},
		{name: "too long", key: strings.Repeat("k", 1025), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateObjectKey(tt.key)
			if tt.wantErr {
				assert.ErrorIs(t, err, errors.ErrInvalidObjectKey)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateRecipient(t *testing.T) {
	assert.NoError(t, ValidateRecipient("a@example.com"))
	assert.NoError(t, ValidateRecipient("First Last <a@example.com>"))

	assert.ErrorIs(t, ValidateRecipient(""), errors.ErrInvalidRequest)
	assert.ErrorIs(t, ValidateRecipient("not-an-address"), errors.ErrInvalidRequest)
}

func TestValidateSourcePath(t *testing.T) {
	assert.NoError(t, ValidateSourcePath("report.txt"))
	assert.ErrorIs(t, ValidateSourcePath(""), errors.ErrInvalidRequest)
}
