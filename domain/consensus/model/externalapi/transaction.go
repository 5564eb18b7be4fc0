package externalapi

import "time"

// TransactionID uniquely identifies a Transaction by content hash.
type TransactionID [BlockIDSize]byte

// String returns the hex encoding of the id.
func (id TransactionID) String() string {
	return BlockID(id).String()
}

// AccountID identifies an account that can be an operation's authorizer or
// target. Operation semantics are out of scope (spec §1); this module only
// needs enough of an account model to walk authority graphs.
type AccountID string

// Operation is a single, opaque, evaluator-dispatched action inside a
// transaction. Its concrete shape (transfer, order placement, proposal vote,
// ...) is defined by the operation evaluators this module consumes, not
// produces (spec §1 "Out of scope: Operation evaluators").
type Operation struct {
	// Tag selects the OperationEvaluatorRegistry entry that knows how to
	// evaluate this operation (spec §6).
	Tag int
	// Payload is the evaluator-specific operation body.
	Payload interface{}
	// RequiredAuths lists the accounts whose active authority must sign the
	// enclosing transaction for this operation to be valid.
	RequiredAuths []AccountID
	// RequiredOwnerAuths lists the accounts whose owner authority must sign.
	RequiredOwnerAuths []AccountID
}

// OperationResult is an evaluator's outcome for a single Operation.
type OperationResult struct {
	Payload interface{}
}

// Signature is a single signature over a Transaction's digest.
type Signature struct {
	Key   []byte
	Bytes []byte
}

// Transaction is an immutable, signed batch of Operations (spec §3).
type Transaction struct {
	RefBlockNum    uint32
	RefBlockPrefix uint32
	Expiration     time.Time
	Operations     []Operation
	Signatures     []Signature

	id         *TransactionID
	packedSize int
}

// SetPrecomputedID caches this transaction's id, as computed by
// precomputation (spec §4.5).
func (t *Transaction) SetPrecomputedID(id TransactionID) {
	t.id = &id
}

// PrecomputedID returns the cached id and whether one was set.
func (t *Transaction) PrecomputedID() (TransactionID, bool) {
	if t.id == nil {
		return TransactionID{}, false
	}
	return *t.id, true
}

// SetPrecomputedPackedSize caches this transaction's packed size.
func (t *Transaction) SetPrecomputedPackedSize(size int) {
	t.packedSize = size
}

// PrecomputedPackedSize returns the cached packed size and whether one was set.
func (t *Transaction) PrecomputedPackedSize() (int, bool) {
	if t.packedSize == 0 {
		return 0, false
	}
	return t.packedSize, true
}

// Clone returns a shallow copy of the transaction, safe to mutate the
// Operations/Signatures slices of independently from the original.
func (t *Transaction) Clone() *Transaction {
	clone := *t
	clone.Operations = append([]Operation(nil), t.Operations...)
	clone.Signatures = append([]Signature(nil), t.Signatures...)
	return &clone
}
