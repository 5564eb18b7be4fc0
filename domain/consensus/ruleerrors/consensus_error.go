package ruleerrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// ConsensusError indicates a checkpoint mismatch, a best-head inconsistency,
// a proposal-nesting overflow, or a failed fork-switch restore (spec §7).
// Unlike ValidationError, a ConsensusError is fatal for the offending block
// but the engine continues (except for a failed restore, which is
// undefined-state and should abort the process per spec §7).
type ConsensusError struct {
	message string
	inner   error
}

func (e ConsensusError) Error() string {
	if e.inner != nil {
		return fmt.Sprintf("%s: %s", e.message, e.inner)
	}
	return e.message
}

// Unwrap allows errors.As/errors.Is to reach the inner cause.
func (e ConsensusError) Unwrap() error { return e.inner }

// Cause allows github.com/pkg/errors call sites to reach the inner cause.
func (e ConsensusError) Cause() error { return e.inner }

func newConsensusError(message string) error {
	return errors.WithStack(ConsensusError{message: message})
}

var (
	ErrCheckpointMismatch       = newConsensusError("ErrCheckpointMismatch")
	ErrProposalNestingExceeded  = newConsensusError("ErrProposalNestingExceeded")
	ErrEmptyForkDatabase        = newConsensusError("ErrEmptyForkDatabase")
	ErrUnknownBlock             = newConsensusError("ErrUnknownBlock")
	ErrForkAncestorMismatch     = newConsensusError("ErrForkAncestorMismatch")
	ErrForkSwitchRestoreFailed  = newConsensusError("ErrForkSwitchRestoreFailed")
	ErrNestedSessionNotTop      = newConsensusError("ErrNestedSessionNotTop")
	ErrNoActivePendingSession   = newConsensusError("ErrNoActivePendingSession")
)

// NewErrCheckpointMismatch reports that a block's id does not match a
// configured checkpoint at its height (spec §4.4.6).
func NewErrCheckpointMismatch(blockNum uint32, want, got string) error {
	return errors.WithStack(ConsensusError{
		message: fmt.Sprintf("block %d did not match checkpoint: want %s, got %s", blockNum, want, got),
	})
}

// NewErrForkSwitchRestoreFailed wraps a failure to restore the old branch
// after a fork switch attempt failed partway through (spec §4.4.1(d), §7).
// This is the one error kind the spec says leaves the engine undefined.
func NewErrForkSwitchRestoreFailed(switchErr, restoreErr error) error {
	return errors.WithStack(ConsensusError{
		message: fmt.Sprintf("fork switch failed (%s) and restoring the old branch also failed", switchErr),
		inner:   restoreErr,
	})
}
