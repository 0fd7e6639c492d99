package sync

import "errors"

var (
	// ErrConflictNotFound indicates the conflict doesn't exist, is out of
	// tenant scope, or was already resolved. Callers must not assume
	// resolution is idempotent.
	ErrConflictNotFound = errors.New("conflict not found")
	// ErrSyncNotConfigured indicates the document has no provider binding.
	ErrSyncNotConfigured = errors.New("sync not configured for document")
	// ErrAlreadyInitialized indicates a provider binding already exists.
	ErrAlreadyInitialized = errors.New("sync already initialized for document")
	// ErrConflictPending indicates a status change was attempted while an
	// unresolved conflict holds the document.
	ErrConflictPending = errors.New("document has an unresolved conflict")
	// ErrInvalidResolution indicates an unknown resolution strategy.
	ErrInvalidResolution = errors.New("invalid conflict resolution")
	// ErrMergedSnapshotRequired indicates a merge resolution without a
	// caller-supplied merged snapshot.
	ErrMergedSnapshotRequired = errors.New("merge resolution requires a merged snapshot")
	// ErrInvalidInput indicates invalid input for sync operations.
	ErrInvalidInput = errors.New("invalid sync input")
)
