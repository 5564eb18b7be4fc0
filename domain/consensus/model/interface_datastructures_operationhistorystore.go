package model

import "github.com/discretemind/graphene-core/domain/consensus/model/externalapi"

// OperationHistoryStore accumulates OperationHistoryEntry records during a
// single block's apply pass and is cleared at the boundaries spec §3
// ("OperationHistory ... appended during apply; cleared at end of block")
// and §4.4.5 steps 1 and 11 describe.
type OperationHistoryStore interface {
	// Push appends op, stamped with the given block/trx/op-in-trx
	// coordinates and the next virtual-op counter value, and returns the
	// index of the newly appended entry so its Result can be set once the
	// evaluator returns (spec §4.4.5 step 6, mirroring
	// push_applied_operation/set_applied_operation_result).
	Push(blockNum, trxInBlock, opInTrx uint32, op externalapi.Operation) int

	// SetResult fills in the result of a previously pushed entry.
	SetResult(index int, result externalapi.OperationResult)

	// Entries returns the accumulated entries in append order.
	Entries() []externalapi.OperationHistoryEntry

	// Truncate drops entries at or after index (used by post-cutover
	// proposal-apply failure handling, spec §9 "Proposal apply").
	Truncate(index int)

	// Reset blanks entries at or after index to their zero value without
	// shrinking the buffer (used by pre-cutover proposal-apply failure
	// handling, spec §9 "Proposal apply").
	Reset(index int)

	// Clear empties the buffer.
	Clear()
}
