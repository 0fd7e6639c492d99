package mcp

import (
	"errors"
	"fmt"

	"github.com/propside/syncd/internal/domain/coordination"
	syncdom "github.com/propside/syncd/internal/domain/sync"
	"github.com/propside/syncd/internal/domain/version"
)

// APIError represents a tool error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to API error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}

	var partial *coordination.PartialCascadeError
	if errors.As(err, &partial) {
		return &APIError{
			Code:         "PARTIAL_CASCADE",
			Message:      partial.Error(),
			Details:      partial.Applied,
			RecoveryHint: "Updates listed in details are already applied; re-run the rule to retry the rest",
		}
	}

	switch {
	case errors.Is(err, version.ErrDocumentNotFound):
		return &APIError{Code: "DOCUMENT_NOT_FOUND", Message: "document not found", RecoveryHint: "Check the document ID"}
	case errors.Is(err, version.ErrVersionNotFound):
		return &APIError{Code: "VERSION_NOT_FOUND", Message: "version not found", RecoveryHint: "Check the version ID"}
	case errors.Is(err, version.ErrDocumentMismatch):
		return &APIError{Code: "DOCUMENT_MISMATCH", Message: "versions belong to different documents", RecoveryHint: "Diff versions of the same document"}
	case errors.Is(err, version.ErrInvalidInput):
		return &APIError{Code: "VALIDATION_ERROR", Message: err.Error()}
	case errors.Is(err, syncdom.ErrSyncNotConfigured):
		return &APIError{Code: "SYNC_NOT_CONFIGURED", Message: "document has no sync binding", RecoveryHint: "Call init_sync first"}
	case errors.Is(err, syncdom.ErrAlreadyInitialized):
		return &APIError{Code: "SYNC_ALREADY_INITIALIZED", Message: "document is already bound to a cloud file"}
	case errors.Is(err, syncdom.ErrConflictPending):
		return &APIError{Code: "CONFLICT_PENDING", Message: "document has an unresolved conflict", RecoveryHint: "Resolve the conflict first"}
	case errors.Is(err, syncdom.ErrConflictNotFound):
		return &APIError{Code: "CONFLICT_NOT_FOUND", Message: "no pending conflict with that ID"}
	case errors.Is(err, syncdom.ErrInvalidResolution):
		return &APIError{Code: "VALIDATION_ERROR", Message: "resolution must be keep_mp, keep_cloud, or merge"}
	case errors.Is(err, syncdom.ErrMergedSnapshotRequired):
		return &APIError{Code: "VALIDATION_ERROR", Message: "merge resolution requires a merged snapshot"}
	case errors.Is(err, syncdom.ErrInvalidInput):
		return &APIError{Code: "VALIDATION_ERROR", Message: err.Error()}
	case errors.Is(err, coordination.ErrRuleNotFound):
		return &APIError{Code: "RULE_NOT_FOUND", Message: "coordination rule not found or inactive"}
	case errors.Is(err, coordination.ErrUnknownTransform):
		return &APIError{Code: "VALIDATION_ERROR", Message: err.Error()}
	case errors.Is(err, coordination.ErrTooManyTargets):
		return &APIError{Code: "TOO_MANY_TARGETS", Message: err.Error(), RecoveryHint: "Narrow the rule or raise the cascade limit"}
	case errors.Is(err, coordination.ErrInvalidInput):
		return &APIError{Code: "VALIDATION_ERROR", Message: err.Error()}
	default:
		return nil
	}
}
