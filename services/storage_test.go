package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"kanzlei_app_go/models"

	"github.com/stretchr/testify/assert"
)

func newTestStore(t *testing.T) *DocumentStore {
	return NewDocumentStore(filepath.Join(t.TempDir(), "akten"))
}

func TestSanitizeFileNumber(t *testing.T) {
	assert.Equal(t, "0007.25.awr", SanitizeFileNumber("0007.25.awr"))
	assert.Equal(t, "12_C_34", SanitizeFileNumber("12/C/34"))
	assert.Equal(t, "12_C_34", SanitizeFileNumber(`12\C\34`))
}

func TestStoreWritesIntoCaseDirectory(t *testing.T) {
	store := newTestStore(t)

	relative, size, err := store.Store("0007.25.awr", strings.NewReader("pdf bytes"), "scan.pdf")
	assert.NoError(t, err)
	assert.Equal(t, "0007.25.awr/scan.pdf", relative)
	assert.Equal(t, int64(9), size)

	target := filepath.Join(store.Root(), "0007.25.awr", "scan.pdf")
	content, err := os.ReadFile(target)
	assert.NoError(t, err)
	assert.Equal(t, "pdf bytes", string(content))

	info, err := os.Stat(target)
	assert.NoError(t, err)
	assert.Equal(t, os.FileMode(StorageFilePerm), info.Mode().Perm())

	dirInfo, err := os.Stat(filepath.Join(store.Root(), "0007.25.awr"))
	assert.NoError(t, err)
	assert.Equal(t, os.FileMode(StorageDirPerm), dirInfo.Mode().Perm())
}

func TestStoreStripsDirectoryComponents(t *testing.T) {
	store := newTestStore(t)

	relative, _, err := store.Store("0007.25.awr", strings.NewReader("x"), "../../evil.txt")
	assert.NoError(t, err)
	assert.Equal(t, "0007.25.awr/evil.txt", relative)

	// The file landed inside the case directory, not above the root
	_, err = os.Stat(filepath.Join(store.Root(), "0007.25.awr", "evil.txt"))
	assert.NoError(t, err)

	_, _, err = store.Store("0007.25.awr", strings.NewReader("x"), "..")
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestStoreSanitizesFileNumberWithSeparators(t *testing.T) {
	store := newTestStore(t)

	relative, _, err := store.Store("12/C/34", strings.NewReader("x"), "scan.pdf")
	assert.NoError(t, err)
	assert.Equal(t, "12_C_34/scan.pdf", relative)
	_, err = os.Stat(filepath.Join(store.Root(), "12_C_34", "scan.pdf"))
	assert.NoError(t, err)
}

func TestRenameMovesDirectory(t *testing.T) {
	store := newTestStore(t)

	_, _, err := store.Store("0001.25.awr", strings.NewReader("x"), "scan.pdf")
	assert.NoError(t, err)

	assert.NoError(t, store.Rename("0001.25.awr", "0002.25.awr"))

	_, err = os.Stat(store.DirectoryFor("0001.25.awr"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(store.DirectoryFor("0002.25.awr"), "scan.pdf"))
	assert.NoError(t, err)
}

func TestRenameMissingDirectoryIsNoop(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.Rename("0001.25.awr", "0002.25.awr"))
	assert.NoError(t, store.Rename("same", "same"))
}

func TestResolveForDownloadTraversalFailsClosed(t *testing.T) {
	store := newTestStore(t)
	assert.NoError(t, store.EnsureRoot())

	// A sibling of the storage root must never be reachable
	outside := filepath.Join(filepath.Dir(store.Root()), "secret.txt")
	assert.NoError(t, os.WriteFile(outside, []byte("secret"), 0o660))

	document := &models.Document{FilePath: "../secret.txt", FileOriginalName: "../secret.txt"}
	kase := &models.Case{FileNumber: "0001.25.awr"}

	_, err := store.ResolveForDownload(document, kase)
	var pathErr *PathValidationError
	assert.ErrorAs(t, err, &pathErr)
}

func TestResolveForDownloadFallsBackToCurrentDirectory(t *testing.T) {
	store := newTestStore(t)

	// File lives under the case's current number, but the record still
	// carries the pre-rename path
	_, _, err := store.Store("0002.25.awr", strings.NewReader("pdf"), "scan.pdf")
	assert.NoError(t, err)

	document := &models.Document{FilePath: "0001.25.awr/scan.pdf", FileOriginalName: "scan.pdf"}
	kase := &models.Case{FileNumber: "0002.25.awr"}

	path, err := store.ResolveForDownload(document, kase)
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join(mustAbs(t, store.Root()), "0002.25.awr", "scan.pdf"), path)

	// Neither path resolves to a file
	missing := &models.Document{ID: "doc-1", FilePath: "0001.25.awr/gone.pdf", FileOriginalName: "gone.pdf"}
	_, err = store.ResolveForDownload(missing, kase)
	var notFoundErr *NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}

func mustAbs(t *testing.T, path string) string {
	abs, err := filepath.Abs(path)
	assert.NoError(t, err)
	return abs
}
