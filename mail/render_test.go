package mail

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niftyshare/nifty/errors"
)

func writeTemplate(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestRender(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "mailer.html",
		`<p>{{.SenderName}} shared {{.FileBasename}} with you.</p><a href="{{.DownloadLink}}">Download</a>`)

	r := NewRenderer(dir)
	body, err := r.Render("mailer.html", map[string]string{
		"SenderName":   "Ada",
		"FileBasename": "report.txt",
		"DownloadLink": "https://example.com/d/abc",
	})
	require.NoError(t, err)

	assert.Contains(t, body, "Ada shared report.txt with you.")
	assert.Contains(t, body, `href="https://example.com/d/abc"`)
}

func TestRenderEscapesContent(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "mailer.html", `<p>{{.SenderName}}</p>`)

	r := NewRenderer(dir)
	body, err := r.Render("mailer.html", map[string]string{
		"SenderName": `<script>alert("x")</script>`,
	})
	require.NoError(t, err)

	assert.NotContains(t, body, "<script>")
}

func TestRenderTemplateNotFound(t *testing.T) {
	r := NewRenderer(t.TempDir())

	_, err := r.Render("missing.html", nil)
	require.Error(t, err)
	assert.True(t, errors.IsTemplateNotFound(err))
}

func TestRenderIgnoresPathComponents(t *testing.T) {
	dir := t.TempDir()
	writeTemplate(t, dir, "mailer.html", `ok`)

	r := NewRenderer(dir)
	body, err := r.Render("../../mailer.html", nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", body)
}
