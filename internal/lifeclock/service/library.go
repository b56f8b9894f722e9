package service

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrInvalidFilename rejects names that are empty or attempt to escape
	// the library directory.
	ErrInvalidFilename = errors.New("invalid file name")

	// ErrFileNotFound means the name is valid but no such file exists.
	ErrFileNotFound = errors.New("file not found")
)

// LibraryService reads binary assets (PDFs) from the two library
// directories: the public books shelf and the payment-gated docs shelf.
// Which routes sit behind the access-token guard is the router's concern;
// this service only validates names and reads bytes.
type LibraryService struct {
	BooksDir string
	DocsDir  string
}

// ReadBook reads a file from the public books directory.
func (s *LibraryService) ReadBook(name string) ([]byte, error) {
	return readAsset(s.BooksDir, name)
}

// ReadDoc reads a file from the gated docs directory.
func (s *LibraryService) ReadDoc(name string) ([]byte, error) {
	return readAsset(s.DocsDir, name)
}

func readAsset(dir, name string) ([]byte, error) {
	if err := ValidateFilename(name); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	return data, nil
}

// ValidateFilename rejects empty names, path traversal, and any path
// separator. Names are plain file names, never paths.
func ValidateFilename(name string) error {
	if name == "" ||
		strings.Contains(name, "..") ||
		strings.ContainsAny(name, `/\`) {
		return ErrInvalidFilename
	}
	return nil
}

// ContentTypeFor infers the response content type from the file extension.
// The library is PDF-first; anything else is served as opaque bytes.
func ContentTypeFor(name string) string {
	if strings.EqualFold(filepath.Ext(name), ".pdf") {
		return "application/pdf"
	}
	return "application/octet-stream"
}
