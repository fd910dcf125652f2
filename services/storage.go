package services

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"kanzlei_app_go/models"
)

// Permission bits for the storage tree. Restrictive towards others but
// group-writable, so every directory and file stays accessible to the single
// service-owner group.
const (
	StorageDirPerm  = 0o770
	StorageFilePerm = 0o660
)

// Store is the global document store instance
var Store *DocumentStore

// InitializeStorage sets up the document store on the configured root
func InitializeStorage(root string) error {
	Store = NewDocumentStore(root)
	if err := Store.EnsureRoot(); err != nil {
		return err
	}
	log.Printf("Storage root established (%s)", root)
	return nil
}

// DocumentStore maps cases to directories under a single storage root and
// mediates safe upload, download and rename of those directories.
type DocumentStore struct {
	root string
}

// NewDocumentStore creates a store for the given storage root
func NewDocumentStore(root string) *DocumentStore {
	return &DocumentStore{root: root}
}

// Root returns the configured storage root
func (s *DocumentStore) Root() string {
	return s.root
}

// SanitizeFileNumber maps a file number to a safe directory name. Path
// separators are a formatting convention in some file numbers and must not
// let the directory escape the storage root.
func SanitizeFileNumber(fileNumber string) string {
	safe := strings.ReplaceAll(fileNumber, "/", "_")
	safe = strings.ReplaceAll(safe, "\\", "_")
	return safe
}

// EnsureRoot creates the storage root on first use
func (s *DocumentStore) EnsureRoot() error {
	if err := os.MkdirAll(s.root, StorageDirPerm); err != nil {
		return &StorageError{Op: "failed to create storage root", Err: err}
	}
	// MkdirAll is subject to the umask; fix the bits up explicitly
	if err := os.Chmod(s.root, StorageDirPerm); err != nil {
		return &StorageError{Op: "failed to set storage root permissions", Err: err}
	}
	return nil
}

// DirectoryFor returns the absolute directory path for a file number
func (s *DocumentStore) DirectoryFor(fileNumber string) string {
	return filepath.Join(s.root, SanitizeFileNumber(fileNumber))
}

// EnsureDirectory provisions the case directory, creating the root if absent
func (s *DocumentStore) EnsureDirectory(fileNumber string) (string, error) {
	if err := s.EnsureRoot(); err != nil {
		return "", err
	}
	dir := s.DirectoryFor(fileNumber)
	if err := os.MkdirAll(dir, StorageDirPerm); err != nil {
		return "", &StorageError{Op: "failed to create case directory", Err: err}
	}
	if err := os.Chmod(dir, StorageDirPerm); err != nil {
		return "", &StorageError{Op: "failed to set case directory permissions", Err: err}
	}
	return dir, nil
}

// Store writes an uploaded file into the case directory using only the base
// name of the supplied filename, and returns the root-relative path
// ("<directory name>/<filename>") persisted on the Document record.
func (s *DocumentStore) Store(fileNumber string, reader io.Reader, filename string) (string, int64, error) {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	if base == "" || base == "." || base == ".." || base == string(filepath.Separator) {
		return "", 0, &ValidationError{Msg: "invalid file name"}
	}

	dir, err := s.EnsureDirectory(fileNumber)
	if err != nil {
		return "", 0, err
	}

	target := filepath.Join(dir, base)
	dst, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, StorageFilePerm)
	if err != nil {
		return "", 0, &StorageError{Op: "failed to create file", Err: err}
	}

	written, err := io.Copy(dst, reader)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(target)
		return "", 0, &StorageError{Op: "failed to write file", Err: err}
	}
	if err := os.Chmod(target, StorageFilePerm); err != nil {
		return "", 0, &StorageError{Op: "failed to set file permissions", Err: err}
	}

	relative := SanitizeFileNumber(fileNumber) + "/" + base
	return relative, written, nil
}

// Rename moves the case directory when the file number changes. A missing
// old directory means there is nothing to move and is not an error. Callers
// serialize per-case mutation, so no upload can race the move.
func (s *DocumentStore) Rename(oldFileNumber, newFileNumber string) error {
	oldDir := s.DirectoryFor(oldFileNumber)
	newDir := s.DirectoryFor(newFileNumber)
	if oldDir == newDir {
		return nil
	}

	if _, err := os.Stat(oldDir); os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return &StorageError{Op: "failed to stat case directory", Err: err}
	}

	if err := s.EnsureRoot(); err != nil {
		return err
	}
	if err := os.Rename(oldDir, newDir); err != nil {
		return &StorageError{Op: fmt.Sprintf("failed to move case directory %s -> %s", oldDir, newDir), Err: err}
	}
	return nil
}

// ResolveForDownload reconstructs the absolute path of a stored document and
// verifies it is still contained in the storage root. If the stored relative
// path does not resolve, a narrow fallback re-derives the path from the
// case's current file number and the document's base filename; this covers
// documents recorded before renames moved their directory.
func (s *DocumentStore) ResolveForDownload(document *models.Document, kase *models.Case) (string, error) {
	if path, err := s.resolveRelative(document.FilePath); err != nil {
		return "", err
	} else if fileExists(path) {
		return path, nil
	}

	fallback := SanitizeFileNumber(kase.FileNumber) + "/" + filepath.Base(document.FileOriginalName)
	path, err := s.resolveRelative(fallback)
	if err != nil {
		return "", err
	}
	if !fileExists(path) {
		return "", &NotFoundError{Resource: "document file", ID: document.ID}
	}
	return path, nil
}

// resolveRelative joins a stored relative path with the storage root and
// fails closed if the canonical result escapes the root
func (s *DocumentStore) resolveRelative(relative string) (string, error) {
	rootAbs, err := filepath.Abs(s.root)
	if err != nil {
		return "", &StorageError{Op: "failed to resolve storage root", Err: err}
	}

	pathAbs, err := filepath.Abs(filepath.Join(rootAbs, filepath.FromSlash(relative)))
	if err != nil {
		return "", &StorageError{Op: "failed to resolve document path", Err: err}
	}

	if pathAbs != rootAbs && !strings.HasPrefix(pathAbs, rootAbs+string(filepath.Separator)) {
		return "", &PathValidationError{Path: relative}
	}
	if pathAbs == rootAbs {
		return "", &PathValidationError{Path: relative}
	}
	return pathAbs, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
