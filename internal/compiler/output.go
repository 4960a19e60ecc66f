package compiler

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/evyataryagoni/iplocation/internal/ipdb"
)

// WriteBlob encodes both zones as a database blob
func (r *Result) WriteBlob(w io.Writer) (int64, error) {
	return ipdb.Encode(w, r.V4, r.V6)
}

// WriteFiles writes the blob and the JSON dictionaries. Both files are
// written to temporary names first and renamed together, so readers never
// see a blob next to dictionaries from another compilation.
func (r *Result) WriteFiles(blobPath, dictPath string) error {
	blobTmp, err := writeTemp(blobPath, func(w io.Writer) error {
		_, err := r.WriteBlob(w)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to write database: %w", err)
	}

	dictTmp, err := writeTemp(dictPath, r.Dictionaries.WriteJSON)
	if err != nil {
		os.Remove(blobTmp)
		return fmt.Errorf("failed to write dictionaries: %w", err)
	}

	if err := os.Rename(blobTmp, blobPath); err != nil {
		os.Remove(blobTmp)
		os.Remove(dictTmp)
		return fmt.Errorf("failed to install database: %w", err)
	}
	if err := os.Rename(dictTmp, dictPath); err != nil {
		os.Remove(dictTmp)
		return fmt.Errorf("failed to install dictionaries: %w", err)
	}
	return nil
}

// WriteGo writes the dictionaries as Go source in package pkg
func (r *Result) WriteGo(path, pkg string) error {
	tmp, err := writeTemp(path, func(w io.Writer) error {
		return r.Dictionaries.WriteGo(w, pkg)
	})
	if err != nil {
		return fmt.Errorf("failed to write Go dictionaries: %w", err)
	}
	return os.Rename(tmp, path)
}

// writeTemp writes a sibling temporary file of path and returns its name
func writeTemp(path string, write func(io.Writer) error) (string, error) {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return "", err
	}
	if err := f.Chmod(0644); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}

// RangeImporter receives the compiled zones, e.g. *store.MySQLStore
type RangeImporter interface {
	Import(v4 []ipdb.V4Record, v6 []ipdb.V6Record) error
}

// ExportMySQL replaces the ranges held by dst with this compilation.
// The dictionaries must be published alongside for the rows to resolve.
func (r *Result) ExportMySQL(dst RangeImporter) error {
	if err := r.CheckOrder(); err != nil {
		return err
	}
	if err := dst.Import(r.V4, r.V6); err != nil {
		return fmt.Errorf("failed to export ranges: %w", err)
	}
	return nil
}
