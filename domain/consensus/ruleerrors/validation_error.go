// Package ruleerrors defines the two error families spec §7 distinguishes:
// ValidationErrors, which roll back only the offending transaction or block,
// and ConsensusErrors, which are fatal to the offending block but leave the
// engine running. Both are grounded on
// domain/consensus/ruleerrors/rule_error.go's RuleError from the teacher:
// a named wrapper around an optional typed inner cause, built with
// errors.WithStack so every error carries a stack trace from its origin.
package ruleerrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// ValidationError indicates a malformed transaction, unsatisfied authority,
// expired or duplicate transaction, bad TaPoS, oversized block, bad merkle
// root, or wrong producer/slot (spec §7).
type ValidationError struct {
	message string
	inner   error
}

func (e ValidationError) Error() string {
	if e.inner != nil {
		return fmt.Sprintf("%s: %s", e.message, e.inner)
	}
	return e.message
}

// Unwrap allows errors.As/errors.Is to reach the inner cause.
func (e ValidationError) Unwrap() error { return e.inner }

// Cause allows github.com/pkg/errors call sites to reach the inner cause.
func (e ValidationError) Cause() error { return e.inner }

func newValidationError(message string) error {
	return errors.WithStack(ValidationError{message: message})
}

func newValidationErrorf(message string, inner error) error {
	return errors.WithStack(ValidationError{message: message, inner: inner})
}

// Sentinel validation errors, named after the checks in spec §4.3 and §4.4.5
// that produce them.
var (
	ErrTransactionEmpty          = newValidationError("ErrTransactionEmpty")
	ErrDuplicateSignatures       = newValidationError("ErrDuplicateSignatures")
	ErrDuplicateTransaction      = newValidationError("ErrDuplicateTransaction")
	ErrAuthorityUnsatisfied      = newValidationError("ErrAuthorityUnsatisfied")
	ErrAuthorityDepthExceeded    = newValidationError("ErrAuthorityDepthExceeded")
	ErrTaposMismatch             = newValidationError("ErrTaposMismatch")
	ErrTransactionExpired        = newValidationError("ErrTransactionExpired")
	ErrExpirationTooFarInFuture  = newValidationError("ErrExpirationTooFarInFuture")
	ErrTransactionTooLarge       = newValidationError("ErrTransactionTooLarge")
	ErrBlockTooLarge             = newValidationError("ErrBlockTooLarge")
	ErrBadMerkleRoot             = newValidationError("ErrBadMerkleRoot")
	ErrWrongPrevious             = newValidationError("ErrWrongPrevious")
	ErrTimestampNotIncreasing    = newValidationError("ErrTimestampNotIncreasing")
	ErrBadProducerSignature      = newValidationError("ErrBadProducerSignature")
	ErrWrongScheduledProducer    = newValidationError("ErrWrongScheduledProducer")
	ErrZeroSlot                  = newValidationError("ErrZeroSlot")
	ErrNoRegisteredEvaluator     = newValidationError("ErrNoRegisteredEvaluator")
	ErrNegativeOperationTag      = newValidationError("ErrNegativeOperationTag")
)

// NewErrNoRegisteredEvaluator wraps a missing-evaluator failure for a
// specific operation tag (spec §4.3 step 7).
func NewErrNoRegisteredEvaluator(tag int) error {
	return newValidationErrorf(fmt.Sprintf("no registered evaluator for operation tag %d", tag), nil)
}

// NewErrEvaluatorFailed wraps an evaluator's own error as a ValidationError
// so the enclosing session discards per spec §7.
func NewErrEvaluatorFailed(tag int, cause error) error {
	return newValidationErrorf(fmt.Sprintf("evaluator for operation tag %d failed", tag), cause)
}

// NewErrSignatureVerificationFailed wraps a Verifier's error.
func NewErrSignatureVerificationFailed(cause error) error {
	return newValidationErrorf("signature verification failed", cause)
}
