// Package mail renders notification bodies from HTML templates and delivers
// them over authenticated SMTP.
package mail

import (
	"bytes"
	"html/template"
	"os"
	"path/filepath"

	"github.com/niftyshare/nifty/errors"
)

// Renderer loads named HTML templates from a directory and renders them
// against a data value.
type Renderer struct {
	dir string
}

// NewRenderer creates a renderer rooted at the given template directory.
func NewRenderer(dir string) *Renderer {
	return &Renderer{dir: dir}
}

// Render parses the named template from the directory and executes it with
// data. A missing template fails with ErrTemplateNotFound.
func (r *Renderer) Render(name string, data any) (string, error) {
	path := filepath.Join(r.dir, filepath.Base(name))

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", errors.New("render", errors.ErrTemplateNotFound).WithPath(path)
		}
		return "", errors.New("render", err).WithPath(path)
	}

	tmpl, err := template.ParseFiles(path)
	if err != nil {
		return "", errors.New("render", err).WithPath(path)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", errors.New("render", err).WithPath(path)
	}

	return buf.String(), nil
}
