// Package archive turns a directory tree into a single deflate-compressed
// zip container, the upload unit used when the transfer source is a
// directory.
package archive

import (
	"archive/zip"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	xerrors "github.com/niftyshare/nifty/errors"
)

// List walks the directory tree rooted at root and returns the relative
// paths of every regular file found, slash-normalized and sorted. A fresh
// call re-walks the tree.
func List(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, xerrors.New("list", err).WithPath(root)
	}
	if !info.IsDir() {
		return nil, xerrors.New("list", xerrors.ErrNotDirectory).WithPath(root)
	}

	var entries []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		entries = append(entries, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, xerrors.New("list", err).WithPath(root)
	}

	// Traversal order is filesystem-dependent; sort so that the file list
	// rendered into emails and ledger rows is deterministic.
	sort.Strings(entries)
	return entries, nil
}

// Create writes every file under root into a zip archive at destination,
// each entry stored under the root's basename followed by its relative
// path. An existing file at destination is truncated. Create fails with
// ErrNotDirectory when root is not a directory and wraps any I/O failure
// in ErrArchive.
func Create(root, destination string) (string, error) {
	entries, err := List(root)
	if err != nil {
		return "", err
	}

	out, err := os.Create(destination)
	if err != nil {
		return "", xerrors.New("create", xerrors.ErrArchive).
			WithPath(destination).
			WithMessage(err.Error())
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	prefix := filepath.Base(root)

	for _, entry := range entries {
		if err := addEntry(zw, root, prefix, entry); err != nil {
			zw.Close()
			return "", xerrors.New("create", xerrors.ErrArchive).
				WithPath(filepath.Join(root, filepath.FromSlash(entry))).
				WithMessage(err.Error())
		}
	}

	if err := zw.Close(); err != nil {
		return "", xerrors.New("create", xerrors.ErrArchive).
			WithPath(destination).
			WithMessage(err.Error())
	}
	if err := out.Close(); err != nil {
		return "", xerrors.New("create", xerrors.ErrArchive).
			WithPath(destination).
			WithMessage(err.Error())
	}

	return destination, nil
}

func addEntry(zw *zip.Writer, root, prefix, entry string) error {
	src, err := os.Open(filepath.Join(root, filepath.FromSlash(entry)))
	if err != nil {
		return err
	}
	defer src.Close()

	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:   prefix + "/" + entry,
		Method: zip.Deflate,
	})
	if err != nil {
		return err
	}

	_, err = io.Copy(w, src)
	return err
}
