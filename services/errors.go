package services

import "fmt"

// The error kinds surfaced by the case core. Handlers map these to HTTP
// statuses; nothing in this package returns a bare "unexpected" error in
// place of one of them.

// ValidationError reports malformed or unacceptable input, rejected before
// any write
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// ConflictError reports a violated business invariant; the case is never
// persisted
type ConflictError struct {
	Rule string
	Msg  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: %s", e.Rule, e.Msg)
}

// NotFoundError reports that a referenced record does not resolve
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// WriteError reports a persistence-layer failure; the enclosing transaction
// is rolled back
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// StorageError reports a failed filesystem operation
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// PathValidationError reports a resolved path escaping the storage root.
// Always fails closed; the file is never served.
type PathValidationError struct {
	Path string
}

func (e *PathValidationError) Error() string {
	return fmt.Sprintf("path %q resolves outside the storage root", e.Path)
}
