package version

import "errors"

var (
	// ErrDocumentNotFound indicates the document doesn't exist in the
	// caller's tenant. Cross-tenant access reports this same error.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrVersionNotFound indicates the requested version doesn't exist.
	ErrVersionNotFound = errors.New("version not found")
	// ErrDocumentMismatch indicates a diff was requested across versions of
	// two different documents.
	ErrDocumentMismatch = errors.New("versions belong to different documents")
	// ErrInvalidInput indicates invalid input for version operations.
	ErrInvalidInput = errors.New("invalid version input")
)
