package coordination

import (
	"errors"
	"fmt"
)

var (
	ErrRuleNotFound     = errors.New("coordination rule not found")
	ErrUnknownTransform = errors.New("unknown transform")
	ErrTooManyTargets   = errors.New("cascade target count exceeds limit")
	ErrInvalidInput     = errors.New("invalid coordination input")
)

// PartialCascadeError reports a cascade that stopped partway. Updates in
// Applied are already durable; targets after the failure were not touched.
type PartialCascadeError struct {
	RuleID  string
	Applied []Change
	Err     error
}

func (e *PartialCascadeError) Error() string {
	return fmt.Sprintf("cascade for rule %s failed after %d update(s): %v", e.RuleID, len(e.Applied), e.Err)
}

func (e *PartialCascadeError) Unwrap() error { return e.Err }
